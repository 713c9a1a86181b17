package httpapi

import "net/http"

type dialogRequest struct {
	Accept     bool   `json:"accept"`
	PromptText string `json:"prompt_text"`
}

func (s *Server) handleDialog(w http.ResponseWriter, r *http.Request) {
	var req dialogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.HandleDialog(r.Context(), req.Accept, req.PromptText); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type emulateRequest struct {
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	Mobile            bool    `json:"mobile"`
	DeviceScaleFactor float64 `json:"device_scale_factor"`
	UserAgent         string  `json:"user_agent"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Accuracy          float64 `json:"accuracy"`
}

// handleEmulate covers device-metrics override plus the optional
// user-agent and geolocation overrides the emulate operation also exposes.
func (s *Server) handleEmulate(w http.ResponseWriter, r *http.Request) {
	var req emulateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	if req.DeviceScaleFactor == 0 {
		req.DeviceScaleFactor = 1
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if req.Width > 0 || req.Height > 0 {
		if err := sess.EmulateDevice(r.Context(), req.Width, req.Height, req.Mobile, req.DeviceScaleFactor); err != nil {
			writeAppErr(w, err)
			return
		}
	}
	if req.UserAgent != "" {
		if err := sess.EmulateUserAgent(r.Context(), req.UserAgent); err != nil {
			writeAppErr(w, err)
			return
		}
	}
	if req.Latitude != 0 || req.Longitude != 0 {
		if err := sess.EmulateGeolocation(r.Context(), req.Latitude, req.Longitude, req.Accuracy); err != nil {
			writeAppErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Tap(r.Context(), req.Selector); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type swipeRequest struct {
	Selector  string  `json:"selector"`
	Direction string  `json:"direction"`
	Distance  float64 `json:"distance"`
}

func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Swipe(r.Context(), req.Selector, req.Direction, req.Distance); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
