package httpapi

import (
	"context"
	"net/http"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/browsion/browsion/internal/cdp"
)

// resolveSession looks up the profile's CDP port and returns a pooled
// session for it, writing an error response and returning ok=false on
// failure. Every browser-domain handler starts with this call, matching
// the original's resolve_session helper in api/handlers.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request) (*cdp.Session, string, bool) {
	profileID := profileIDParam(r)
	if profileID == "" {
		writeAppErr(w, apperr.Wrap(apperr.ErrValidation, "profile id", nil))
		return nil, "", false
	}
	port, err := s.Procs.GetCDPPort(profileID)
	if err != nil {
		writeAppErr(w, err)
		return nil, "", false
	}
	sess, err := s.Pool.Get(context.Background(), profileID, port)
	if err != nil {
		writeAppErr(w, err)
		return nil, "", false
	}
	return sess, profileID, true
}
