package cdp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/browsion/browsion/internal/apperr"
)

// Op timeout, matching webctl's per-handler 30s deadline.
const opTimeout = 30 * time.Second

func withOpTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// Navigate sends the page to url. Returns immediately after Chrome
// acknowledges the command, matching webctl's handleNavigate: waiting
// for frameNavigated here would block on Chrome's own internal navigation
// lock in a way that makes fast iterative automation painful.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if url == "" {
		return apperr.ErrValidation
	}
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	result, err := s.Send(ctx, "Page.navigate", map[string]any{"url": url})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "navigate", err)
	}
	var resp struct {
		ErrorText string `json:"errorText"`
	}
	if err := json.Unmarshal(result, &resp); err == nil && resp.ErrorText != "" {
		return apperr.Wrap(apperr.ErrProtocol, "navigate", fmt.Errorf("%s", resp.ErrorText))
	}
	return nil
}

// Reload reloads the current page, optionally bypassing cache.
func (s *Session) Reload(ctx context.Context, ignoreCache bool) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err := s.Send(ctx, "Page.reload", map[string]any{"ignoreCache": ignoreCache})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "reload", err)
	}
	return nil
}

// Back navigates one step back in history.
func (s *Session) Back(ctx context.Context) error { return s.historyStep(ctx, -1) }

// Forward navigates one step forward in history.
func (s *Session) Forward(ctx context.Context) error { return s.historyStep(ctx, 1) }

func (s *Session) historyStep(ctx context.Context, delta int) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	result, err := s.Send(ctx, "Page.getNavigationHistory", nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "history", err)
	}
	var hist struct {
		CurrentIndex int `json:"currentIndex"`
		Entries      []struct {
			ID int `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(result, &hist); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "history", err)
	}
	target := hist.CurrentIndex + delta
	if target < 0 || target >= len(hist.Entries) {
		if delta < 0 {
			return apperr.Wrap(apperr.ErrValidation, "no previous page in history", nil)
		}
		return apperr.Wrap(apperr.ErrValidation, "no next page in history", nil)
	}
	_, err = s.Send(ctx, "Page.navigateToHistoryEntry", map[string]any{
		"entryId": hist.Entries[target].ID,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "history", err)
	}
	return nil
}

// WaitForURL polls the current document location until it matches substr
// or the deadline elapses.
func (s *Session) WaitForURL(ctx context.Context, substr string, timeout time.Duration) error {
	return s.pollEval(ctx, fmt.Sprintf("location.href.includes(%q)", substr), timeout)
}

// WaitForText polls document.body for the given substring.
func (s *Session) WaitForText(ctx context.Context, substr string, timeout time.Duration) error {
	return s.pollEval(ctx, fmt.Sprintf("document.body && document.body.innerText.includes(%q)", substr), timeout)
}

func (s *Session) pollEval(ctx context.Context, expr string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = opTimeout
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		result, err := s.Send(opCtx, "Runtime.evaluate", map[string]any{
			"expression":    expr,
			"returnByValue": true,
		})
		cancel()
		if err == nil {
			var r struct {
				Result struct {
					Value bool `json:"value"`
				} `json:"result"`
			}
			if json.Unmarshal(result, &r) == nil && r.Result.Value {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return apperr.Wrap(apperr.ErrTimeout, "wait condition not met", nil)
		}
		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.ErrTimeout, "wait cancelled", ctx.Err())
		case <-ticker.C:
		}
	}
}

// elementRect resolves a selector to its center coordinates, scrolling it
// into view first, and reports whether another element currently covers
// it. Shared by Click/DoubleClick/RightClick/Hover, grounded on the
// webctl's handleClick JS snippet.
func (s *Session) elementRect(ctx context.Context, selector string) (x, y float64, covered bool, err error) {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return {error: 'not_found'};
		el.scrollIntoView({block: 'center', behavior: 'instant'});
		const rect = el.getBoundingClientRect();
		const x = rect.left + rect.width / 2;
		const y = rect.top + rect.height / 2;
		const topEl = document.elementFromPoint(x, y);
		const isCovered = topEl !== el && !el.contains(topEl);
		return {x, y, covered: isCovered};
	})()`, selector)

	result, sendErr := s.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression":    js,
		"returnByValue": true,
	})
	if sendErr != nil {
		return 0, 0, false, apperr.Wrap(apperr.ErrTransport, "locate element", sendErr)
	}
	var resp struct {
		Result struct {
			Type  string `json:"type"`
			Value struct {
				Error   string  `json:"error"`
				X       float64 `json:"x"`
				Y       float64 `json:"y"`
				Covered bool    `json:"covered"`
			} `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return 0, 0, false, apperr.Wrap(apperr.ErrProtocol, "locate element", err)
	}
	if resp.Result.Type == "undefined" || resp.Result.Value.Error == "not_found" {
		return 0, 0, false, apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return resp.Result.Value.X, resp.Result.Value.Y, resp.Result.Value.Covered, nil
}

func (s *Session) mouseClick(ctx context.Context, x, y float64, button string, clickCount int) error {
	for _, typ := range []string{"mousePressed", "mouseReleased"} {
		_, err := s.Send(ctx, "Input.dispatchMouseEvent", map[string]any{
			"type": typ, "x": x, "y": y, "button": button, "clickCount": clickCount,
		})
		if err != nil {
			return apperr.Wrap(apperr.ErrTransport, "click", err)
		}
	}
	return nil
}

// Click performs a left click on the element matching selector.
func (s *Session) Click(ctx context.Context, selector string) (covered bool, err error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	x, y, covered, err := s.elementRect(ctx, selector)
	if err != nil {
		return false, err
	}
	return covered, s.mouseClick(ctx, x, y, "left", 1)
}

// DoubleClick double-clicks the element matching selector.
func (s *Session) DoubleClick(ctx context.Context, selector string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	x, y, _, err := s.elementRect(ctx, selector)
	if err != nil {
		return err
	}
	return s.mouseClick(ctx, x, y, "left", 2)
}

// RightClick right-clicks the element matching selector, e.g. to open a
// context menu.
func (s *Session) RightClick(ctx context.Context, selector string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	x, y, _, err := s.elementRect(ctx, selector)
	if err != nil {
		return err
	}
	return s.mouseClick(ctx, x, y, "right", 1)
}

// Hover moves the mouse over the element matching selector without clicking.
func (s *Session) Hover(ctx context.Context, selector string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	x, y, _, err := s.elementRect(ctx, selector)
	if err != nil {
		return err
	}
	_, err = s.Send(ctx, "Input.dispatchMouseEvent", map[string]any{
		"type": "mouseMoved", "x": x, "y": y,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "hover", err)
	}
	return nil
}

// ClickAt clicks at raw viewport coordinates, bypassing selector lookup.
func (s *Session) ClickAt(ctx context.Context, x, y float64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	return s.mouseClick(ctx, x, y, "left", 1)
}

// Drag performs a press-move-release sequence from (x1,y1) to (x2,y2).
func (s *Session) Drag(ctx context.Context, x1, y1, x2, y2 float64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	steps := []struct {
		typ  string
		x, y float64
	}{
		{"mousePressed", x1, y1},
		{"mouseMoved", x2, y2},
		{"mouseReleased", x2, y2},
	}
	for _, st := range steps {
		_, err := s.Send(ctx, "Input.dispatchMouseEvent", map[string]any{
			"type": st.typ, "x": st.x, "y": st.y, "button": "left", "clickCount": 1,
		})
		if err != nil {
			return apperr.Wrap(apperr.ErrTransport, "drag", err)
		}
	}
	return nil
}

// Focus focuses the element matching selector.
func (s *Session) Focus(ctx context.Context, selector string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.focus();
		return true;
	})()`, selector)
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": js, "returnByValue": true})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "focus", err)
	}
	var resp struct {
		Result struct {
			Value bool `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "focus", err)
	}
	if !resp.Result.Value {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return nil
}

// Type focuses selector (if given) and types text, optionally clearing the
// field first.
func (s *Session) Type(ctx context.Context, selector, text string, clear bool) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if selector != "" {
		if err := s.Focus(ctx, selector); err != nil {
			return err
		}
	}
	if clear {
		if err := s.selectAllAndDelete(ctx); err != nil {
			return err
		}
	}
	_, err := s.Send(ctx, "Input.insertText", map[string]any{"text": text})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "type", err)
	}
	return nil
}

func (s *Session) selectAllAndDelete(ctx context.Context) error {
	if err := s.Key(ctx, "a", []string{"ctrl"}); err != nil {
		return err
	}
	return s.Key(ctx, "Backspace", nil)
}

// keyCodeTable maps a small set of named keys to their CDP windowsVirtualKeyCode.
var keyCodeTable = map[string]int{
	"Enter": 13, "Tab": 9, "Escape": 27, "Backspace": 8,
	"ArrowUp": 38, "ArrowDown": 40, "ArrowLeft": 37, "ArrowRight": 39,
	"Delete": 46, "Home": 36, "End": 35, "PageUp": 33, "PageDown": 34,
}

// Key dispatches a keydown+keyup pair for a named key, with optional
// modifiers ("ctrl", "shift", "alt", "meta").
func (s *Session) Key(ctx context.Context, key string, modifiers []string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	mod := 0
	for _, m := range modifiers {
		switch m {
		case "alt":
			mod |= 1
		case "ctrl":
			mod |= 2
		case "meta":
			mod |= 4
		case "shift":
			mod |= 8
		}
	}
	code, hasCode := keyCodeTable[key]
	for _, typ := range []string{"keyDown", "keyUp"} {
		params := map[string]any{"type": typ, "key": key, "modifiers": mod}
		if hasCode {
			params["windowsVirtualKeyCode"] = code
		}
		if _, err := s.Send(ctx, "Input.dispatchKeyEvent", params); err != nil {
			return apperr.Wrap(apperr.ErrTransport, "key", err)
		}
	}
	return nil
}

// Scroll scrolls the page (or, if selector is non-empty, a specific
// element) by the given pixel deltas.
func (s *Session) Scroll(ctx context.Context, selector string, dx, dy float64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	var js string
	if selector != "" {
		js = fmt.Sprintf(`(() => {
			const el = document.querySelector(%q);
			if (!el) return false;
			el.scrollBy(%f, %f);
			return true;
		})()`, selector, dx, dy)
	} else {
		js = fmt.Sprintf(`(() => { window.scrollBy(%f, %f); return true; })()`, dx, dy)
	}
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": js, "returnByValue": true})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "scroll", err)
	}
	var resp struct {
		Result struct {
			Value bool `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "scroll", err)
	}
	if !resp.Result.Value {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return nil
}

// Select sets a <select> element's value.
func (s *Session) Select(ctx context.Context, selector, value string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.value = %q;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, selector, value)
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": js, "returnByValue": true})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "select", err)
	}
	var resp struct {
		Result struct {
			Value bool `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "select", err)
	}
	if !resp.Result.Value {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return nil
}

// Screenshot captures the viewport (or, if fullPage, the entire
// scrollable page) as PNG bytes.
func (s *Session) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	params := map[string]any{"format": "png", "captureBeyondViewport": fullPage}
	result, err := s.Send(ctx, "Page.captureScreenshot", params)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "screenshot", err)
	}
	var resp struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "screenshot", err)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "screenshot", err)
	}
	return data, nil
}

// HTML returns the full outer HTML of the document, or of the element
// matching selector if given.
func (s *Session) HTML(ctx context.Context, selector string) (string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	expr := "document.documentElement.outerHTML"
	if selector != "" {
		expr = fmt.Sprintf(`(() => { const el = document.querySelector(%q); return el ? el.outerHTML : null; })()`, selector)
	}
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": expr, "returnByValue": true})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrTransport, "html", err)
	}
	var resp struct {
		Result struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrProtocol, "html", err)
	}
	if resp.Result.Type == "undefined" {
		return "", apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return resp.Result.Value, nil
}

// PageText returns document.body.innerText, the visible rendered text.
func (s *Session) PageText(ctx context.Context) (string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression":    "document.body ? document.body.innerText : ''",
		"returnByValue": true,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrTransport, "page text", err)
	}
	var resp struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrProtocol, "page text", err)
	}
	return resp.Result.Value, nil
}

// Eval evaluates an arbitrary JS expression and returns its JSON-encoded
// result value.
func (s *Session) Eval(ctx context.Context, expression string) (json.RawMessage, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression":    expression,
		"returnByValue": true,
		"awaitPromise":  true,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "eval", err)
	}
	var resp struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
		ExceptionDetails *struct {
			Text string `json:"text"`
		} `json:"exceptionDetails"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "eval", err)
	}
	if resp.ExceptionDetails != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "eval threw", fmt.Errorf("%s", resp.ExceptionDetails.Text))
	}
	return resp.Result.Value, nil
}

// ComputedStyle returns the computed CSS style of the element matching
// selector as a flat property->value map.
func (s *Session) ComputedStyle(ctx context.Context, selector string) (map[string]string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return null;
		const cs = getComputedStyle(el);
		const out = {};
		for (let i = 0; i < cs.length; i++) {
			const prop = cs[i];
			out[prop] = cs.getPropertyValue(prop);
		}
		return out;
	})()`, selector)
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": js, "returnByValue": true})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "computed style", err)
	}
	var resp struct {
		Result struct {
			Type  string            `json:"type"`
			Value map[string]string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "computed style", err)
	}
	if resp.Result.Type == "undefined" || resp.Result.Value == nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return resp.Result.Value, nil
}

// AXNode is a flattened entry from the accessibility tree, addressable by
// Ref in subsequent ClickRef/TypeRef/FocusRef calls.
type AXNode struct {
	Ref   string `json:"ref"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

// AXTree returns a flattened accessibility tree rooted at the document,
// assigning a stable ref id, for later interaction, to each node that is
// backed by a DOM node (other nodes get an empty ref).
func (s *Session) AXTree(ctx context.Context) ([]AXNode, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	result, err := s.Send(ctx, "Accessibility.getFullAXTree", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "ax tree", err)
	}
	var resp struct {
		Nodes []struct {
			NodeID           string `json:"nodeId"`
			BackendDOMNodeID int    `json:"backendDOMNodeId"`
			Role             struct {
				Value string `json:"value"`
			} `json:"role"`
			Name struct {
				Value string `json:"value"`
			} `json:"name"`
			ChildIDs []string `json:"childIds"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "ax tree", err)
	}

	byID := make(map[string]int, len(resp.Nodes))
	for i, n := range resp.Nodes {
		byID[n.NodeID] = i
	}
	var out []AXNode
	var walk func(id string, depth int)
	visited := make(map[string]bool)
	walk = func(id string, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		idx, ok := byID[id]
		if !ok {
			return
		}
		n := resp.Nodes[idx]
		ref := ""
		if n.BackendDOMNodeID != 0 {
			ref = s.storeRef(n.BackendDOMNodeID)
		}
		out = append(out, AXNode{Ref: ref, Role: n.Role.Value, Name: n.Name.Value, Depth: depth})
		for _, child := range n.ChildIDs {
			walk(child, depth+1)
		}
	}
	if len(resp.Nodes) > 0 {
		walk(resp.Nodes[0].NodeID, 0)
	}
	return out, nil
}

// resolveRefObjectID turns a ref id into the remote object id of its DOM
// node, via DOM.resolveNode on the stored backend node id. callOnRef then
// invokes methods on that object directly with Runtime.callFunctionOn, so
// refs keep working for elements with no stable CSS selector.
func (s *Session) resolveRefObjectID(ctx context.Context, ref string) (string, error) {
	backendID, ok := s.resolveRef(ref)
	if !ok {
		return "", apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("unknown ref: %s", ref), nil)
	}
	result, err := s.Send(ctx, "DOM.resolveNode", map[string]any{"backendNodeId": backendID})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrTransport, "resolve ref", err)
	}
	var resp struct {
		Object struct {
			ObjectID string `json:"objectId"`
		} `json:"object"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrProtocol, "resolve ref", err)
	}
	if resp.Object.ObjectID == "" {
		return "", apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("ref no longer attached: %s", ref), nil)
	}
	return resp.Object.ObjectID, nil
}

func (s *Session) callOnRef(ctx context.Context, ref, fnDecl string, args ...any) (json.RawMessage, error) {
	objectID, err := s.resolveRefObjectID(ctx, ref)
	if err != nil {
		return nil, err
	}
	argList := make([]map[string]any, len(args))
	for i, a := range args {
		argList[i] = map[string]any{"value": a}
	}
	result, err := s.Send(ctx, "Runtime.callFunctionOn", map[string]any{
		"objectId":            objectID,
		"functionDeclaration": fnDecl,
		"arguments":           argList,
		"returnByValue":       true,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "ref call", err)
	}
	return result, nil
}

// ClickRef clicks the element identified by an accessibility-tree ref.
func (s *Session) ClickRef(ctx context.Context, ref string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err := s.callOnRef(ctx, ref, `function() { this.scrollIntoView({block:'center'}); this.click(); return true; }`)
	return err
}

// TypeRef focuses and types into the element identified by ref.
func (s *Session) TypeRef(ctx context.Context, ref, text string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err := s.callOnRef(ctx, ref, `function(text) { this.focus(); this.value = text; this.dispatchEvent(new Event('input', {bubbles:true})); return true; }`, text)
	return err
}

// FocusRef focuses the element identified by ref.
func (s *Session) FocusRef(ctx context.Context, ref string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err := s.callOnRef(ctx, ref, `function() { this.focus(); return true; }`)
	return err
}

// Cookie mirrors CDP's Network.Cookie shape, trimmed to the fields the
// control plane's import/export surface exposes.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
}

// Cookies returns all cookies visible to the page.
func (s *Session) Cookies(ctx context.Context) ([]Cookie, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Network.getCookies", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "cookies", err)
	}
	var resp struct {
		Cookies []Cookie `json:"cookies"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "cookies", err)
	}
	return resp.Cookies, nil
}

// SetCookie installs a single cookie.
func (s *Session) SetCookie(ctx context.Context, c Cookie) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	params := map[string]any{"name": c.Name, "value": c.Value, "domain": c.Domain}
	if c.Path != "" {
		params["path"] = c.Path
	}
	if c.Expires > 0 {
		params["expires"] = c.Expires
	}
	params["httpOnly"] = c.HTTPOnly
	params["secure"] = c.Secure
	if c.SameSite != "" {
		params["sameSite"] = c.SameSite
	}
	_, err := s.Send(ctx, "Network.setCookie", params)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "set cookie", err)
	}
	return nil
}

// DeleteCookie removes a cookie by name (and optional domain/path scoping).
func (s *Session) DeleteCookie(ctx context.Context, name, domain, path string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	params := map[string]any{"name": name}
	if domain != "" {
		params["domain"] = domain
	}
	if path != "" {
		params["path"] = path
	}
	_, err := s.Send(ctx, "Network.deleteCookies", params)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "delete cookie", err)
	}
	return nil
}

// ImportCookies installs a full cookie jar in one call, for session
// restoration workflows.
func (s *Session) ImportCookies(ctx context.Context, cookies []Cookie) error {
	for _, c := range cookies {
		if err := s.SetCookie(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// HandleDialog accepts or dismisses the currently pending JS dialog,
// optionally supplying prompt text.
func (s *Session) HandleDialog(ctx context.Context, accept bool, promptText string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	if s.PendingDialog() == nil {
		return apperr.Wrap(apperr.ErrValidation, "no pending dialog", nil)
	}
	params := map[string]any{"accept": accept}
	if promptText != "" {
		params["promptText"] = promptText
	}
	_, err := s.Send(ctx, "Page.handleJavaScriptDialog", params)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "handle dialog", err)
	}
	s.clearDialog()
	return nil
}

// EmulateDevice applies viewport/device metric overrides, used to emulate
// a fixed screen size or mobile device.
func (s *Session) EmulateDevice(ctx context.Context, width, height int, mobile bool, deviceScaleFactor float64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	if deviceScaleFactor <= 0 {
		deviceScaleFactor = 1
	}
	_, err := s.Send(ctx, "Emulation.setDeviceMetricsOverride", map[string]any{
		"width": width, "height": height, "mobile": mobile, "deviceScaleFactor": deviceScaleFactor,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "emulate device", err)
	}
	return nil
}

// EmulateUserAgent overrides navigator.userAgent for the page.
func (s *Session) EmulateUserAgent(ctx context.Context, userAgent string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err := s.Send(ctx, "Emulation.setUserAgentOverride", map[string]any{"userAgent": userAgent})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "emulate user agent", err)
	}
	return nil
}

// EmulateGeolocation overrides the page's geolocation results.
func (s *Session) EmulateGeolocation(ctx context.Context, lat, lon, accuracy float64) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	_, err := s.Send(ctx, "Emulation.setGeolocationOverride", map[string]any{
		"latitude": lat, "longitude": lon, "accuracy": accuracy,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "emulate geolocation", err)
	}
	return nil
}

// GetURL returns the page's current location.href.
func (s *Session) GetURL(ctx context.Context) (string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression": "location.href", "returnByValue": true,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrTransport, "get url", err)
	}
	var resp struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrProtocol, "get url", err)
	}
	return resp.Result.Value, nil
}

// GetTitle returns the page's current document.title.
func (s *Session) GetTitle(ctx context.Context) (string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{
		"expression": "document.title", "returnByValue": true,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrTransport, "get title", err)
	}
	var resp struct {
		Result struct {
			Value string `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrProtocol, "get title", err)
	}
	return resp.Result.Value, nil
}

// PageState is the combined result of get_url + get_title + get_ax_tree(),
// returned in one round trip by the page_state operation.
type PageState struct {
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	AXTree []AXNode `json:"ax_tree"`
}

// GetPageState combines GetURL, GetTitle, and AXTree into a single response.
func (s *Session) GetPageState(ctx context.Context) (PageState, error) {
	url, err := s.GetURL(ctx)
	if err != nil {
		return PageState{}, err
	}
	title, err := s.GetTitle(ctx)
	if err != nil {
		return PageState{}, err
	}
	tree, err := s.AXTree(ctx)
	if err != nil {
		return PageState{}, err
	}
	return PageState{URL: url, Title: title, AXTree: tree}, nil
}

// NavigateResult is returned by NavigateWait and WaitForNavigation.
type NavigateResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// NavigateWait sends the page to url and waits for the chosen load
// milestone before returning, registering the waiter before Page.navigate
// is sent so a load event that fires between the send and the wait can
// never be missed.
func (s *Session) NavigateWait(ctx context.Context, url, waitUntil string, timeout time.Duration) (NavigateResult, error) {
	if url == "" {
		return NavigateResult{}, apperr.ErrValidation
	}
	if timeout <= 0 {
		timeout = opTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var waiter chan struct{}
	switch waitUntil {
	case "", "load":
		waiter = s.addLoadWaiter()
		defer s.removeLoadWaiter(waiter)
	case "domcontentloaded":
		waiter = s.addDOMWaiter()
		defer s.removeDOMWaiter(waiter)
	case "none":
		waiter = nil
	default:
		return NavigateResult{}, apperr.Wrap(apperr.ErrValidation, fmt.Sprintf("unknown wait_until: %s", waitUntil), nil)
	}

	result, err := s.Send(ctx, "Page.navigate", map[string]any{"url": url})
	if err != nil {
		return NavigateResult{}, apperr.Wrap(apperr.ErrTransport, "navigate", err)
	}
	var resp struct {
		ErrorText string `json:"errorText"`
	}
	if json.Unmarshal(result, &resp) == nil && resp.ErrorText != "" {
		return NavigateResult{}, apperr.Wrap(apperr.ErrProtocol, "navigate", fmt.Errorf("%s", resp.ErrorText))
	}

	if waiter != nil {
		select {
		case <-waiter:
		case <-ctx.Done():
			return NavigateResult{}, apperr.Wrap(apperr.ErrTimeout, "navigate_wait timed out", ctx.Err())
		}
	}

	gotURL, err := s.GetURL(ctx)
	if err != nil {
		return NavigateResult{}, err
	}
	title, err := s.GetTitle(ctx)
	if err != nil {
		return NavigateResult{}, err
	}
	return NavigateResult{URL: gotURL, Title: title}, nil
}

// WaitForNavigation blocks until the next Page.loadEventFired on this
// session, useful after an action (e.g. clicking a link) that triggers a
// navigation indirectly rather than through Navigate/NavigateWait.
func (s *Session) WaitForNavigation(ctx context.Context, timeout time.Duration) (NavigateResult, error) {
	if timeout <= 0 {
		timeout = opTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	waiter := s.addLoadWaiter()
	defer s.removeLoadWaiter(waiter)

	select {
	case <-waiter:
	case <-ctx.Done():
		return NavigateResult{}, apperr.Wrap(apperr.ErrTimeout, "wait_for_navigation timed out", ctx.Err())
	}

	url, err := s.GetURL(ctx)
	if err != nil {
		return NavigateResult{}, err
	}
	title, err := s.GetTitle(ctx)
	if err != nil {
		return NavigateResult{}, err
	}
	return NavigateResult{URL: url, Title: title}, nil
}

// WaitForElement polls for selector to appear in the DOM.
func (s *Session) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	return s.pollEval(ctx, fmt.Sprintf("!!document.querySelector(%q)", selector), timeout)
}

// WaitForNewTab blocks until a new page target is created (e.g. by a
// window.open() call or a link with target="_blank"), returning its
// target id.
func (s *Session) WaitForNewTab(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = opTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	waiter := s.addTabWaiter()
	defer s.removeTabWaiter(waiter)

	select {
	case targetID := <-waiter:
		return targetID, nil
	case <-ctx.Done():
		return "", apperr.Wrap(apperr.ErrTimeout, "wait_for_new_tab timed out", ctx.Err())
	}
}
