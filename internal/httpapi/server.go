// Package httpapi is the HTTP Front-End component: a chi-routed REST +
// WebSocket API in front of the profile store, process supervisor, and
// session pool. Grounded almost entirely on the original browsion
// product's api/mod.rs, whose router(), middleware stack, and per-handler
// "resolve port -> pool lookup -> CDP op -> JSON" shape this package
// follows route-for-route. webctl has no HTTP front end at all (it's
// a Unix-socket daemon), so this package is new, not adapted.
package httpapi

import (
	"net/http"
	"time"

	"github.com/browsion/browsion/internal/actionlog"
	"github.com/browsion/browsion/internal/config"
	"github.com/browsion/browsion/internal/eventbus"
	"github.com/browsion/browsion/internal/pool"
	"github.com/browsion/browsion/internal/profile"
	"github.com/browsion/browsion/internal/supervisor"
	"github.com/rs/zerolog"
)

// Server holds everything an HTTP handler needs to service a request.
type Server struct {
	Config   config.Config
	Profiles *profile.Store
	Procs    *supervisor.Manager
	Pool     *pool.Pool
	Actions  *actionlog.Log
	Bus      *eventbus.Bus
	Log      zerolog.Logger

	handler http.Handler
}

// New builds the HTTP server, wiring its router.
func New(cfg config.Config, profiles *profile.Store, procs *supervisor.Manager, p *pool.Pool, actions *actionlog.Log, bus *eventbus.Bus, log zerolog.Logger) *Server {
	s := &Server{
		Config:   cfg,
		Profiles: profiles,
		Procs:    procs,
		Pool:     p,
		Actions:  actions,
		Bus:      bus,
		Log:      log,
	}
	s.handler = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// recordAction logs a completed operation to the action log and fans a
// WebSocket event out to subscribers, matching the original's
// action_log_middleware + broadcaster.broadcast(WsEvent::ActionLogEntry).
func (s *Server) recordAction(profileID, tool string, start time.Time, err error) {
	if s.Actions == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	entry := s.Actions.Record(profileID, tool, time.Since(start), err == nil, msg)
	if s.Bus != nil {
		s.Bus.Broadcast(eventbus.Event{Type: eventbus.EventActionLogEntry, Data: entry})
	}
}
