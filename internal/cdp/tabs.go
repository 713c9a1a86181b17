package cdp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browsion/browsion/internal/apperr"
)

// TabInfo describes one browser-level page target.
type TabInfo struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ListTabs returns every open page target in the browser this session is
// attached to, not just this session's own target.
func (s *Session) ListTabs(ctx context.Context) ([]TabInfo, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Target.getTargets", nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrTransport, "list tabs", err)
	}
	var resp struct {
		TargetInfos []struct {
			TargetID string `json:"targetId"`
			Type     string `json:"type"`
			URL      string `json:"url"`
			Title    string `json:"title"`
		} `json:"targetInfos"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrProtocol, "list tabs", err)
	}
	out := make([]TabInfo, 0, len(resp.TargetInfos))
	for _, t := range resp.TargetInfos {
		if t.Type != "page" {
			continue
		}
		out = append(out, TabInfo{ID: t.TargetID, URL: t.URL, Title: t.Title})
	}
	return out, nil
}

// NewTab opens a new page target at url, returning its target id.
func (s *Session) NewTab(ctx context.Context, url string) (string, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	if url == "" {
		url = "about:blank"
	}
	result, err := s.Send(ctx, "Target.createTarget", map[string]any{"url": url})
	if err != nil {
		return "", apperr.Wrap(apperr.ErrTransport, "new tab", err)
	}
	var resp struct {
		TargetID string `json:"targetId"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", apperr.Wrap(apperr.ErrProtocol, "new tab", err)
	}
	return resp.TargetID, nil
}

// SwitchTab brings targetID to the foreground and re-attaches this
// session's CDP commands to it, so subsequent operations (click, eval,
// screenshot, ...) act on the switched-to tab.
func (s *Session) SwitchTab(ctx context.Context, targetID string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	if _, err := s.Send(ctx, "Target.activateTarget", map[string]any{"targetId": targetID}); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "switch tab", err)
	}
	result, err := s.client.SendContext(ctx, "Target.attachToTarget", map[string]any{
		"targetId": targetID, "flatten": true,
	})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "switch tab", err)
	}
	var attached struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(result, &attached); err != nil {
		return apperr.Wrap(apperr.ErrProtocol, "switch tab", err)
	}
	s.SessionID = attached.SessionID
	s.TargetID = targetID
	return s.Enable(ctx)
}

// CloseTab closes the page target identified by targetID.
func (s *Session) CloseTab(ctx context.Context, targetID string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()
	result, err := s.Send(ctx, "Target.closeTarget", map[string]any{"targetId": targetID})
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "close tab", err)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if json.Unmarshal(result, &resp) == nil && !resp.Success {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("tab not found: %s", targetID), nil)
	}
	return nil
}
