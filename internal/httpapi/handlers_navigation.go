package httpapi

import (
	"net/http"
	"time"
)

type navigateRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Navigate(r.Context(), req.URL); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type reloadRequest struct {
	IgnoreCache bool `json:"ignore_cache"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req reloadRequest
	decodeJSON(r, &req) // optional body
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Reload(r.Context(), req.IgnoreCache); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Back(r.Context()); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Forward(r.Context()); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type waitForTextRequest struct {
	Text          string `json:"text"`
	TimeoutMillis int    `json:"timeout_ms"`
}

func (s *Server) handleWaitForText(w http.ResponseWriter, r *http.Request) {
	var req waitForTextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.WaitForText(r.Context(), req.Text, timeoutOrDefault(req.TimeoutMillis)); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type waitForURLRequest struct {
	Substr        string `json:"substr"`
	TimeoutMillis int    `json:"timeout_ms"`
}

func (s *Server) handleWaitForURL(w http.ResponseWriter, r *http.Request) {
	var req waitForURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.WaitForURL(r.Context(), req.Substr, timeoutOrDefault(req.TimeoutMillis)); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func timeoutOrDefault(ms int) time.Duration {
	if ms <= 0 {
		return 5 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

type navigateWaitRequest struct {
	URL           string `json:"url"`
	WaitUntil     string `json:"wait_until"`
	TimeoutMillis int    `json:"timeout_ms"`
}

func (s *Server) handleNavigateWait(w http.ResponseWriter, r *http.Request) {
	var req navigateWaitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	result, err := sess.NavigateWait(r.Context(), req.URL, req.WaitUntil, timeoutOrDefault(req.TimeoutMillis))
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetURL(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	url, err := sess.GetURL(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleGetTitle(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	title, err := sess.GetTitle(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"title": title})
}

type timeoutRequest struct {
	TimeoutMillis int `json:"timeout_ms"`
}

func (s *Server) handleWaitForNavigation(w http.ResponseWriter, r *http.Request) {
	var req timeoutRequest
	decodeJSON(r, &req) // optional body
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	result, err := sess.WaitForNavigation(r.Context(), timeoutOrDefault(req.TimeoutMillis))
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWaitForNewTab(w http.ResponseWriter, r *http.Request) {
	var req timeoutRequest
	decodeJSON(r, &req) // optional body
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	targetID, err := sess.WaitForNewTab(r.Context(), timeoutOrDefault(req.TimeoutMillis))
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"target_id": targetID})
}

type waitForElementRequest struct {
	Selector      string `json:"selector"`
	TimeoutMillis int    `json:"timeout_ms"`
}

func (s *Server) handleWaitForElement(w http.ResponseWriter, r *http.Request) {
	var req waitForElementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.WaitForElement(r.Context(), req.Selector, timeoutOrDefault(req.TimeoutMillis)); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
