package httpapi

import (
	"net/http"
	"regexp"
	"strings"
	"time"
)

// apiKeyAuth requires the X-API-Key header to exactly match Config.APIKey
// on every route except /api/health, matching the original's api_key_auth
// middleware (which exempts health checks so orchestrators can probe
// liveness without a credential). A server with no configured API key
// allows all requests.
func (s *Server) apiKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Config.APIKey == "" || r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("X-API-Key") != s.Config.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// launchPathPattern extracts id out of /api/launch/:id.
var launchPathPattern = regexp.MustCompile(`^/api/launch/([^/]+)$`)

// killPathPattern extracts id out of /api/kill/:id.
var killPathPattern = regexp.MustCompile(`^/api/kill/([^/]+)$`)

// browserPathPattern extracts (id, tool) out of /api/browser/:id/<tool>.
var browserPathPattern = regexp.MustCompile(`^/api/browser/([^/]+)/([^/?]+)`)

// profileIDPathPattern matches /api/profiles/:id (but not the bare
// /api/profiles collection route).
var profileIDPathPattern = regexp.MustCompile(`^/api/profiles/([^/]+)$`)

// parsePathForLog implements the action-log middleware's path-to-(id,tool)
// rule: /api/browser/:id/<tool> -> (id, tool); /api/launch/:id ->
// (id, "launch"); /api/kill/:id -> (id, "kill"); /api/profiles/:id ->
// ("", "profiles/:id"); the bare /api/profiles collection route ->
// ("", "profiles"); otherwise -> ("", path). The two profiles routes
// match with or without a trailing slash.
func parsePathForLog(path string) (profileID, tool string) {
	if m := browserPathPattern.FindStringSubmatch(path); m != nil {
		return m[1], m[2]
	}
	if m := launchPathPattern.FindStringSubmatch(path); m != nil {
		return m[1], "launch"
	}
	if m := killPathPattern.FindStringSubmatch(path); m != nil {
		return m[1], "kill"
	}
	trimmed := strings.TrimSuffix(path, "/")
	if m := profileIDPathPattern.FindStringSubmatch(trimmed); m != nil {
		return "", "profiles/:id"
	}
	if trimmed == "/api/profiles" {
		return "", "profiles"
	}
	return "", path
}

// skipActionLog reports whether path is exempt from action-log recording.
func skipActionLog(path string) bool {
	return path == "/api/health" || strings.HasPrefix(path, "/api/action_log")
}

type statusCapturingWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusCapturingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// actionLogMiddleware records every request to the action log once it
// completes, matching the original's action_log_middleware. Only
// /api/health and /api/action_log* are exempt.
func (s *Server) actionLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if skipActionLog(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		profileID, tool := parsePathForLog(r.URL.Path)

		start := time.Now()
		sw := &statusCapturingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		var err error
		if sw.status >= 400 {
			err = errStatus(sw.status)
		}
		s.recordAction(profileID, tool, start, err)
	})
}
