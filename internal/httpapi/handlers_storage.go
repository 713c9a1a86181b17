package httpapi

import (
	"net/http"

	"github.com/browsion/browsion/internal/apperr"
)

func storageKindParam(r *http.Request) string {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "local"
	}
	return kind
}

func (s *Server) handleGetStorage(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	items, err := sess.GetStorage(r.Context(), storageKindParam(r))
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type storageItemRequest struct {
	Kind  string `json:"kind"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleSetStorageItem(w http.ResponseWriter, r *http.Request) {
	var req storageItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	if req.Kind == "" {
		req.Kind = "local"
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.SetStorageItem(r.Context(), req.Kind, req.Key, req.Value); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRemoveStorageItem(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeAppErr(w, apperr.Wrap(apperr.ErrValidation, "key query param required", nil))
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveStorageItem(r.Context(), storageKindParam(r), key); err != nil {
		writeAppErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearStorage(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.ClearStorage(r.Context(), storageKindParam(r)); err != nil {
		writeAppErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
