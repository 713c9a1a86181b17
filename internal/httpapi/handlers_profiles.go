package httpapi

import (
	"net/http"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/browsion/browsion/internal/browser"
	"github.com/browsion/browsion/internal/eventbus"
	"github.com/browsion/browsion/internal/profile"
	"github.com/browsion/browsion/internal/supervisor"
)

// profileWithStatus is a Profile plus whether its browser is currently
// running, the shape GET /api/profiles returns.
type profileWithStatus struct {
	profile.Profile
	IsRunning bool `json:"is_running"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list := s.Profiles.List()
	out := make([]profileWithStatus, len(list))
	for i, p := range list {
		out[i] = profileWithStatus{Profile: p, IsRunning: s.Procs.IsRunning(p.ID)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if err := decodeJSON(r, &p); err != nil {
		writeAppErr(w, err)
		return
	}
	created, err := s.Profiles.Create(p)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	s.Bus.Broadcast(eventbus.Event{Type: eventbus.EventProfilesChanged})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Profiles.Get(profileIDParam(r))
	if err != nil {
		writeAppErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProfile implements PUT /api/profiles/:id: a full replace of
// the stored profile with the request body, rejecting a body whose id
// doesn't match the path.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	pathID := profileIDParam(r)
	var body profile.Profile
	if err := decodeJSON(r, &body); err != nil {
		writeAppErr(w, err)
		return
	}
	if body.ID != "" && body.ID != pathID {
		writeAppErr(w, apperr.Wrap(apperr.ErrValidation, "body id does not match path id", nil))
		return
	}
	updated, err := s.Profiles.Update(pathID, func(p *profile.Profile) {
		*p = body
		p.ID = pathID
	})
	if err != nil {
		writeAppErr(w, err)
		return
	}
	s.Bus.Broadcast(eventbus.Event{Type: eventbus.EventProfilesChanged})
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID := profileIDParam(r)
	if s.Procs.IsRunning(profileID) {
		writeAppErr(w, apperr.Wrap(apperr.ErrAlreadyRunning, "delete profile", nil))
		return
	}
	if err := s.Profiles.Delete(profileID); err != nil {
		writeAppErr(w, err)
		return
	}
	s.Bus.Broadcast(eventbus.Event{Type: eventbus.EventProfilesChanged})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	profileID := profileIDParam(r)
	p, err := s.Profiles.Get(profileID)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	if s.Procs.IsRunning(profileID) {
		writeAppErr(w, apperr.Wrap(apperr.ErrAlreadyRunning, "launch profile", nil))
		return
	}
	chromePath, err := browser.FindChrome()
	if err != nil {
		writeAppErr(w, apperr.Wrap(apperr.ErrTransport, "locate chrome binary", err))
		return
	}
	opts := browser.LaunchOptions{
		Headless:    p.Headless,
		UserDataDir: p.UserDataDir,
		ProxyServer: p.ProxyServer,
		Lang:        p.Lang,
		Timezone:    p.Timezone,
		Fingerprint: p.Fingerprint,
		CustomArgs:  p.CustomArgs,
	}
	rec, err := s.Procs.LaunchProfile(profileID, chromePath, opts)
	if err != nil {
		writeAppErr(w, err)
		return
	}
	s.Bus.Broadcast(eventbus.Event{Type: eventbus.EventBrowserStatusChanged, Data: eventbus.BrowserStatusChangedData{ProfileID: profileID, Running: true}})
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleKill(w http.ResponseWriter, r *http.Request) {
	profileID := profileIDParam(r)
	if err := s.Procs.KillProfile(profileID); err != nil {
		writeAppErr(w, err)
		return
	}
	s.Pool.Disconnect(profileID)
	s.Bus.Broadcast(eventbus.Event{Type: eventbus.EventBrowserStatusChanged, Data: eventbus.BrowserStatusChangedData{ProfileID: profileID, Running: false}})
	w.WriteHeader(http.StatusNoContent)
}

// handleRunning implements GET /api/running, listing every profile with a
// currently live browser process.
func (s *Server) handleRunning(w http.ResponseWriter, r *http.Request) {
	ids := s.Procs.GetRunningProfiles()
	out := make([]supervisor.ProcessRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.Procs.GetProcessInfo(id); ok {
			out = append(out, rec)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
