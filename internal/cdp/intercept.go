package cdp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path"
)

// interceptRule is one block_url/mock_url rule installed against the Fetch
// domain. Session keeps these in request order; the first pattern match
// wins, mirroring how DevTools' own request-blocking list behaves.
type interceptRule struct {
	pattern     string
	block       bool
	status      int
	body        string
	contentType string
}

// BlockURL installs a rule that fails every request whose URL matches
// pattern (a shell glob, same syntax Fetch.requestPaused callers match
// against in DevTools Protocol examples).
func (s *Session) BlockURL(ctx context.Context, pattern string) error {
	if err := s.ensureFetchEnabled(ctx); err != nil {
		return err
	}
	s.interceptMu.Lock()
	s.intercepts = append(s.intercepts, interceptRule{pattern: pattern, block: true})
	s.interceptMu.Unlock()
	return nil
}

// MockURL installs a rule that fulfills every request whose URL matches
// pattern with the given status, body, and content type instead of letting
// it reach the network.
func (s *Session) MockURL(ctx context.Context, pattern string, status int, body, contentType string) error {
	if err := s.ensureFetchEnabled(ctx); err != nil {
		return err
	}
	if status == 0 {
		status = 200
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	s.interceptMu.Lock()
	s.intercepts = append(s.intercepts, interceptRule{
		pattern: pattern, status: status, body: body, contentType: contentType,
	})
	s.interceptMu.Unlock()
	return nil
}

// ClearIntercepts removes every installed block_url/mock_url rule. Requests
// continue to pass through Fetch.requestPaused unmodified afterward rather
// than disabling the Fetch domain, since a second block_url/mock_url call
// later in the same session must not pay the enable cost again.
func (s *Session) ClearIntercepts() {
	s.interceptMu.Lock()
	s.intercepts = nil
	s.interceptMu.Unlock()
}

func (s *Session) ensureFetchEnabled(ctx context.Context) error {
	var err error
	s.fetchOnce.Do(func() {
		_, err = s.Send(ctx, "Fetch.enable", map[string]any{
			"patterns": []map[string]any{{"urlPattern": "*"}},
		})
	})
	return err
}

func (s *Session) matchIntercept(url string) (interceptRule, bool) {
	s.interceptMu.Lock()
	defer s.interceptMu.Unlock()
	for _, rule := range s.intercepts {
		if ok, _ := path.Match(rule.pattern, url); ok {
			return rule, true
		}
	}
	return interceptRule{}, false
}

// handleRequestPaused responds to one Fetch.requestPaused event by
// consulting the rule table and either failing, fulfilling, or letting the
// request continue unmodified.
func (s *Session) handleRequestPaused(evt Event) {
	var params struct {
		RequestID string `json:"requestId"`
		Request   struct {
			URL string `json:"url"`
		} `json:"request"`
	}
	if json.Unmarshal(evt.Params, &params) != nil {
		return
	}

	ctx := context.Background()
	rule, matched := s.matchIntercept(params.Request.URL)
	if !matched {
		_, _ = s.Send(ctx, "Fetch.continueRequest", map[string]any{"requestId": params.RequestID})
		return
	}
	if rule.block {
		_, _ = s.Send(ctx, "Fetch.failRequest", map[string]any{
			"requestId":  params.RequestID,
			"errorReason": "BlockedByClient",
		})
		return
	}
	_, _ = s.Send(ctx, "Fetch.fulfillRequest", map[string]any{
		"requestId":      params.RequestID,
		"responseCode":   rule.status,
		"responseHeaders": []map[string]string{{"name": "Content-Type", "value": rule.contentType}},
		"body":           base64.StdEncoding.EncodeToString([]byte(rule.body)),
	})
}
