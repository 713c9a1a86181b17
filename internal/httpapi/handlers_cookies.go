package httpapi

import (
	"net/http"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/browsion/browsion/internal/cdp"
)

func (s *Server) handleCookiesList(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	cookies, err := sess.Cookies(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cookies)
}

type setCookieRequest struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// handleCookiesSet implements the reduced-argument set_cookie operation.
// set_cookie_full exposes the rest of Cookie's fields via handleCookiesSetFull.
func (s *Server) handleCookiesSet(w http.ResponseWriter, r *http.Request) {
	var req setCookieRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.SetCookieSimple(r.Context(), req.Name, req.Value, req.Domain, req.Path); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCookiesSetFull(w http.ResponseWriter, r *http.Request) {
	var c cdp.Cookie
	if err := decodeJSON(r, &c); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.SetCookie(r.Context(), c); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleCookiesDelete(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	domain := r.URL.Query().Get("domain")
	path := r.URL.Query().Get("path")
	if name == "" || domain == "" {
		writeAppErr(w, apperr.Wrap(apperr.ErrValidation, "name and domain query params required", nil))
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteCookie(r.Context(), name, domain, path); err != nil {
		writeAppErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCookiesExport(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	cookies, err := sess.Cookies(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cookies)
}

func (s *Server) handleCookiesImport(w http.ResponseWriter, r *http.Request) {
	var cookies []cdp.Cookie
	if err := decodeJSON(r, &cookies); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.ImportCookies(r.Context(), cookies); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
