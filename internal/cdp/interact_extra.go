package cdp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/browsion/browsion/internal/apperr"
)

// UploadFile attaches local file paths to a <input type="file"> element
// matching selector, via DOM.setFileInputFiles.
func (s *Session) UploadFile(ctx context.Context, selector string, paths []string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	docResult, err := s.Send(ctx, "DOM.getDocument", nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "upload file", err)
	}
	var doc struct {
		Root struct {
			NodeID int `json:"nodeId"`
		} `json:"root"`
	}
	if err := json.Unmarshal(docResult, &doc); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "upload file", err)
	}

	qsResult, err := s.Send(ctx, "DOM.querySelector", map[string]any{
		"nodeId": doc.Root.NodeID, "selector": selector,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "upload file", err)
	}
	var qs struct {
		NodeID int `json:"nodeId"`
	}
	if err := json.Unmarshal(qsResult, &qs); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "upload file", err)
	}
	if qs.NodeID == 0 {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}

	_, err = s.Send(ctx, "DOM.setFileInputFiles", map[string]any{
		"files": paths, "nodeId": qs.NodeID,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "upload file", err)
	}
	return nil
}

// SlowType focuses selector and types text one character at a time with a
// delay between keystrokes, for inputs whose JS listeners depend on
// realistic per-character timing (autocomplete, masked inputs).
func (s *Session) SlowType(ctx context.Context, selector, text string, delay time.Duration) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if selector != "" {
		if err := s.Focus(ctx, selector); err != nil {
			return err
		}
	}
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}
	for _, r := range text {
		ch := string(r)
		for _, typ := range []string{"keyDown", "char", "keyUp"} {
			if _, err := s.Send(ctx, "Input.dispatchKeyEvent", map[string]any{"type": typ, "text": ch}); err != nil {
				return apperr.Wrap(apperr.ErrTransport, "slow type", err)
			}
		}
		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.ErrTimeout, "slow type cancelled", ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil
}

// ScreenshotElement captures just the bounding box of the element matching
// selector, as PNG bytes.
func (s *Session) ScreenshotElement(ctx context.Context, selector string) ([]byte, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return null;
		const r = el.getBoundingClientRect();
		return {x: r.left, y: r.top, width: r.width, height: r.height};
	})()`, selector)
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": js, "returnByValue": true})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "screenshot element", err)
	}
	var resp struct {
		Result struct {
			Value *struct {
				X      float64 `json:"x"`
				Y      float64 `json:"y"`
				Width  float64 `json:"width"`
				Height float64 `json:"height"`
			} `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "screenshot element", err)
	}
	if resp.Result.Value == nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	rect := resp.Result.Value

	shotResult, err := s.Send(ctx, "Page.captureScreenshot", map[string]any{
		"format": "png",
		"clip": map[string]any{
			"x": rect.X, "y": rect.Y, "width": rect.Width, "height": rect.Height, "scale": 1,
		},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "screenshot element", err)
	}
	var shot struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(shotResult, &shot); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "screenshot element", err)
	}
	data, err := base64.StdEncoding.DecodeString(shot.Data)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "screenshot element", err)
	}
	return data, nil
}

// PrintToPDF renders the page to a PDF document.
func (s *Session) PrintToPDF(ctx context.Context, landscape, printBackground bool, scale float64) ([]byte, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	if scale <= 0 {
		scale = 1
	}
	result, err := s.Send(ctx, "Page.printToPDF", map[string]any{
		"landscape": landscape, "printBackground": printBackground, "scale": scale,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "print to pdf", err)
	}
	var resp struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "print to pdf", err)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "print to pdf", err)
	}
	return data, nil
}

// DOMContext is a lightweight snapshot of the page's interactive surface,
// used by agent-style callers that need an overview without a full AX tree.
type DOMContext struct {
	URL      string              `json:"url"`
	Title    string              `json:"title"`
	Elements []map[string]string `json:"elements"`
	Forms    []map[string]string `json:"forms"`
	Links    []map[string]string `json:"links"`
}

const domContextScript = `(() => {
	const elements = Array.from(document.querySelectorAll('button, input, select, textarea, a[href]')).slice(0, 200).map(el => ({
		tag: el.tagName.toLowerCase(),
		text: (el.innerText || el.value || '').trim().slice(0, 120),
		id: el.id || '',
		name: el.getAttribute('name') || '',
	}));
	const forms = Array.from(document.forms).map(f => ({
		id: f.id || '', action: f.action || '', method: f.method || '',
	}));
	const links = Array.from(document.querySelectorAll('a[href]')).slice(0, 200).map(a => ({
		href: a.href, text: (a.innerText || '').trim().slice(0, 120),
	}));
	return {url: location.href, title: document.title, elements, forms, links};
})()`

// GetDOMContext returns a structured snapshot of the page's interactive
// elements, forms, and links.
func (s *Session) GetDOMContext(ctx context.Context) (DOMContext, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression": domContextScript, "returnByValue": true,
	})
	if err != nil {
		return DOMContext{}, apperr.Wrap(apperr.ErrTransport, "dom context", err)
	}
	var resp struct {
		Result struct {
			Value DOMContext `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return DOMContext{}, apperr.Wrap(apperr.ErrProtocol, "dom context", err)
	}
	return resp.Result.Value, nil
}

// Tap dispatches a touch tap at the center of the element matching selector.
func (s *Session) Tap(ctx context.Context, selector string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	x, y, _, err := s.elementRect(ctx, selector)
	if err != nil {
		return err
	}
	point := []map[string]any{{"x": x, "y": y}}
	if _, err := s.Send(ctx, "Input.dispatchTouchEvent", map[string]any{"type": "touchStart", "touchPoints": point}); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "tap", err)
	}
	if _, err := s.Send(ctx, "Input.dispatchTouchEvent", map[string]any{"type": "touchEnd", "touchPoints": []map[string]any{}}); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "tap", err)
	}
	return nil
}

// Swipe dispatches a touch swipe from the center of selector in the given
// direction ("up", "down", "left", "right") over distance pixels.
func (s *Session) Swipe(ctx context.Context, selector, direction string, distance float64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	x, y, _, err := s.elementRect(ctx, selector)
	if err != nil {
		return err
	}
	x2, y2 := x, y
	switch direction {
	case "up":
		y2 = y - distance
	case "down":
		y2 = y + distance
	case "left":
		x2 = x - distance
	case "right":
		x2 = x + distance
	default:
		return apperr.Wrap(apperr.ErrValidation, fmt.Sprintf("unknown swipe direction: %s", direction), nil)
	}

	start := []map[string]any{{"x": x, "y": y}}
	move := []map[string]any{{"x": x2, "y": y2}}
	if _, err := s.Send(ctx, "Input.dispatchTouchEvent", map[string]any{"type": "touchStart", "touchPoints": start}); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "swipe", err)
	}
	if _, err := s.Send(ctx, "Input.dispatchTouchEvent", map[string]any{"type": "touchMove", "touchPoints": move}); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "swipe", err)
	}
	if _, err := s.Send(ctx, "Input.dispatchTouchEvent", map[string]any{"type": "touchEnd", "touchPoints": []map[string]any{}}); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "swipe", err)
	}
	return nil
}
