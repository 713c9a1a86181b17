package httpapi

import "net/http"

func (s *Server) handleActionLog(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profile_id")
	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 100)
	writeJSON(w, http.StatusOK, s.Actions.Filtered(profileID, limit))
}

func (s *Server) handleActionLogClear(w http.ResponseWriter, r *http.Request) {
	profileID := r.URL.Query().Get("profile_id")
	s.Actions.Clear(profileID)
	w.WriteHeader(http.StatusNoContent)
}
