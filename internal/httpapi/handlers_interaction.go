package httpapi

import (
	"net/http"
	"time"
)

type selectorRequest struct {
	Selector string `json:"selector"`
}

type clickResponse struct {
	Covered bool `json:"covered"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	covered, err := sess.Click(r.Context(), req.Selector)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clickResponse{Covered: covered})
}

func (s *Server) handleDoubleClick(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.DoubleClick(r.Context(), req.Selector); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRightClick(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.RightClick(r.Context(), req.Selector); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Hover(r.Context(), req.Selector); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type pointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleClickAt(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.ClickAt(r.Context(), req.X, req.Y); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type dragRequest struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Drag(r.Context(), req.X1, req.Y1, req.X2, req.Y2); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Focus(r.Context(), req.Selector); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type typeRequest struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Clear    bool   `json:"clear"`
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Type(r.Context(), req.Selector, req.Text, req.Clear); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type keyRequest struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Key(r.Context(), req.Key, req.Modifiers); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type scrollRequest struct {
	Selector string  `json:"selector"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Scroll(r.Context(), req.Selector, req.DX, req.DY); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type selectRequest struct {
	Selector string `json:"selector"`
	Value    string `json:"value"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.Select(r.Context(), req.Selector, req.Value); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type slowTypeRequest struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
	DelayMs  int    `json:"delay_ms"`
}

func (s *Server) handleSlowType(w http.ResponseWriter, r *http.Request) {
	var req slowTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	delay := time.Duration(req.DelayMs) * time.Millisecond
	if req.DelayMs <= 0 {
		delay = 50 * time.Millisecond
	}
	if err := sess.SlowType(r.Context(), req.Selector, req.Text, delay); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type uploadFileRequest struct {
	Selector string   `json:"selector"`
	Paths    []string `json:"paths"`
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	var req uploadFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.UploadFile(r.Context(), req.Selector, req.Paths); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type scrollDirectionRequest struct {
	Direction string  `json:"direction"`
	Amount    float64 `json:"amount"`
}

func (s *Server) handleScrollDirection(w http.ResponseWriter, r *http.Request) {
	var req scrollDirectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.ScrollDirection(r.Context(), req.Direction, req.Amount); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleScrollIntoView(w http.ResponseWriter, r *http.Request) {
	var req selectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppErr(w, err)
		return
	}
	sess, _, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if err := sess.ScrollIntoView(r.Context(), req.Selector); err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
