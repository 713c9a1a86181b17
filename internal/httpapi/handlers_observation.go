package httpapi

import (
	"net/http"
	"strconv"

	"github.com/browsion/browsion/internal/apperr"
)

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	fullPage := r.URL.Query().Get("full_page") == "true"
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	data, err := sess.Screenshot(r.Context(), fullPage)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleHTML(w http.ResponseWriter, r *http.Request) {
	selector := r.URL.Query().Get("selector")
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	html, err := sess.HTML(r.Context(), selector)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (s *Server) handlePageText(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	text, err := sess.PageText(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

type evalRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	result, err := sess.Eval(r.Context(), req.Expression)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result)
}

func (s *Server) handleComputedStyle(w http.ResponseWriter, r *http.Request) {
	selector := r.URL.Query().Get("selector")
	if selector == "" {
		writeAppErr(w, apperr.Wrap(apperr.ErrValidation, "selector query param required", nil))
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	styles, err := sess.ComputedStyle(r.Context(), selector)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, styles)
}

func (s *Server) handleAXTree(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	tree, err := sess.AXTree(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handlePageState(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	state, err := sess.GetPageState(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleScreenshotElement(w http.ResponseWriter, r *http.Request) {
	selector := r.URL.Query().Get("selector")
	if selector == "" {
		writeAppErr(w, apperr.Wrap(apperr.ErrValidation, "selector query param required", nil))
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	data, err := sess.ScreenshotElement(r.Context(), selector)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handlePrintToPDF(w http.ResponseWriter, r *http.Request) {
	landscape := r.URL.Query().Get("landscape") == "true"
	printBackground := r.URL.Query().Get("print_background") == "true"
	scale := 1.0
	if v := r.URL.Query().Get("scale"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			scale = f
		}
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	data, err := sess.PrintToPDF(r.Context(), landscape, printBackground, scale)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleGetDOMContext(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	ctx, err := sess.GetDOMContext(r.Context())
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctx)
}

func (s *Server) handleEnableConsoleCapture(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.EnableConsoleCapture(r.Context()); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type refRequest struct {
	Ref string `json:"ref"`
}

func (s *Server) handleClickRef(w http.ResponseWriter, r *http.Request) {
	var req refRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.ClickRef(r.Context(), req.Ref); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type typeRefRequest struct {
	Ref  string `json:"ref"`
	Text string `json:"text"`
}

func (s *Server) handleTypeRef(w http.ResponseWriter, r *http.Request) {
	var req typeRefRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.TypeRef(r.Context(), req.Ref, req.Text); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleFocusRef(w http.ResponseWriter, r *http.Request) {
	var req refRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.FocusRef(r.Context(), req.Ref); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.ConsoleEntries())
}

func (s *Server) handleConsoleClear(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	sess.ClearConsole()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.EnableNetworkOnce(r.Context()); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.NetworkEntries())
}

func (s *Server) handleNetworkClear(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	sess.ClearNetwork()
	w.WriteHeader(http.StatusNoContent)
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
