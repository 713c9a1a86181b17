package httpapi

import "net/http"

type blockURLRequest struct {
	Pattern string `json:"pattern"`
}

func (s *Server) handleBlockURL(w http.ResponseWriter, r *http.Request) {
	var req blockURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.BlockURL(r.Context(), req.Pattern); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type mockURLRequest struct {
	Pattern     string `json:"pattern"`
	Status      int    `json:"status"`
	Body        string `json:"body"`
	ContentType string `json:"content_type"`
}

func (s *Server) handleMockURL(w http.ResponseWriter, r *http.Request) {
	var req mockURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	if req.Status == 0 {
		req.Status = 200
	}
	if req.ContentType == "" {
		req.ContentType = "application/json"
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.MockURL(r.Context(), req.Pattern, req.Status, req.Body, req.ContentType); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleClearIntercepts(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	sess.ClearIntercepts()
	w.WriteHeader(http.StatusNoContent)
}
