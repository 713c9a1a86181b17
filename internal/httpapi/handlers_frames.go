package httpapi

import "net/http"

func (s *Server) handleGetFrames(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	frames, err := sess.GetFrames(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frames)
}

type switchFrameRequest struct {
	FrameID string `json:"frame_id"`
}

func (s *Server) handleSwitchFrame(w http.ResponseWriter, r *http.Request) {
	var req switchFrameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.SwitchFrame(r.Context(), req.FrameID); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleMainFrame(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	frameID, err := sess.MainFrame(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"frame_id": frameID})
}
