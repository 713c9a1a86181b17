package httpapi

import "net/http"

func (s *Server) handleListTabs(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	tabs, err := sess.ListTabs(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tabs)
}

type newTabRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleNewTab(w http.ResponseWriter, r *http.Request) {
	var req newTabRequest
	decodeJSON(r, &req) // url optional, defaults to about:blank
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	targetID, err := sess.NewTab(r.Context(), req.URL)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"target_id": targetID})
}

type switchTabRequest struct {
	TargetID string `json:"target_id"`
}

func (s *Server) handleSwitchTab(w http.ResponseWriter, r *http.Request) {
	var req switchTabRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.SwitchTab(r.Context(), req.TargetID); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	var req switchTabRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.CloseTab(r.Context(), req.TargetID); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
