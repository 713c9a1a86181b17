package cdp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browsion/browsion/internal/apperr"
)

// SetCookieSimple installs a cookie given just name/value/domain/path, the
// set_cookie operation's reduced argument set (set_cookie_full exposes the
// rest of Cookie's fields via SetCookie).
func (s *Session) SetCookieSimple(ctx context.Context, name, value, domain, path string) error {
	return s.SetCookie(ctx, Cookie{Name: name, Value: value, Domain: domain, Path: path})
}

// ScrollDirection scrolls the window by amount pixels in a named direction
// ("up", "down", "left", "right"), the scroll(direction, amount) operation.
func (s *Session) ScrollDirection(ctx context.Context, direction string, amount float64) error {
	var dx, dy float64
	switch direction {
	case "up":
		dy = -amount
	case "down":
		dy = amount
	case "left":
		dx = -amount
	case "right":
		dx = amount
	default:
		return apperr.Wrap(apperr.ErrValidation, fmt.Sprintf("unknown scroll direction: %s", direction), nil)
	}
	return s.Scroll(ctx, "", dx, dy)
}

// ScrollIntoView scrolls selector into view without otherwise moving the
// page, the scroll_into_view(selector) operation.
func (s *Session) ScrollIntoView(ctx context.Context, selector string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.scrollIntoView({block: 'center', behavior: 'instant'});
		return true;
	})()`, selector)
	result, err := s.Send(ctx, "Runtime.evaluate", map[string]any{"expression": js, "returnByValue": true})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "scroll into view", err)
	}
	var resp struct {
		Result struct {
			Value bool `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "scroll into view", err)
	}
	if !resp.Result.Value {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("element not found: %s", selector), nil)
	}
	return nil
}

// EnableConsoleCapture is a no-op acknowledgement: console forwarding into
// the ring buffer is already wired unconditionally in AttachEventHandlers,
// so this operation exists purely so callers that expect an explicit
// enable step (matching get_console_logs/clear_console_logs) have one to
// call before relying on the ring being populated.
func (s *Session) EnableConsoleCapture(ctx context.Context) error {
	return nil
}
