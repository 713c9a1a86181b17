package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/browsion/browsion/internal/actionlog"
	"github.com/browsion/browsion/internal/config"
	"github.com/browsion/browsion/internal/eventbus"
	"github.com/browsion/browsion/internal/pool"
	"github.com/browsion/browsion/internal/profile"
	"github.com/browsion/browsion/internal/supervisor"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	dir := t.TempDir()

	profiles, err := profile.Open(dir)
	if err != nil {
		t.Fatalf("profile.Open: %v", err)
	}
	procs, err := supervisor.New(dir)
	if err != nil {
		t.Fatalf("supervisor.New: %v", err)
	}
	bus := eventbus.New()
	t.Cleanup(bus.Close)

	cfg := config.Default()
	cfg.APIKey = apiKey

	return New(cfg, profiles, procs, pool.New(), actionlog.New(dir), bus, zerolog.Nop())
}

func doRequest(s *Server, method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := doRequest(s, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/health = %d, want 200", rec.Code)
	}
}

func TestAPIKeyAuth_RejectsMissingKey(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := doRequest(s, http.MethodGet, "/api/profiles/", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/profiles/ without key = %d, want 401", rec.Code)
	}
}

func TestAPIKeyAuth_RejectsWrongScheme(t *testing.T) {
	s := newTestServer(t, "secret")
	req := httptest.NewRequest(http.MethodGet, "/api/profiles/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("GET /api/profiles/ with Authorization header instead of X-API-Key = %d, want 401", rec.Code)
	}
}

func TestAPIKeyAuth_AcceptsCorrectKey(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := doRequest(s, http.MethodGet, "/api/profiles/", nil, "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/profiles/ with key = %d, want 200", rec.Code)
	}
}

func TestAPIKeyAuth_DisabledWhenNoKeyConfigured(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(s, http.MethodGet, "/api/profiles/", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/profiles/ with auth disabled = %d, want 200", rec.Code)
	}
}

func TestProfileCRUD(t *testing.T) {
	s := newTestServer(t, "")

	createRec := doRequest(s, http.MethodPost, "/api/profiles/", map[string]any{
		"name":          "work",
		"user_data_dir": "/tmp/work",
	}, "")
	if createRec.Code != http.StatusOK && createRec.Code != http.StatusCreated {
		t.Fatalf("POST /api/profiles/ = %d, body %s", createRec.Code, createRec.Body.String())
	}
	var created profile.Profile
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created profile: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected created profile to have an ID")
	}

	listRec := doRequest(s, http.MethodGet, "/api/profiles/", nil, "")
	var list []profileWithStatus
	if err := json.Unmarshal(listRec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode profile list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(list))
	}
	if list[0].IsRunning {
		t.Error("expected freshly created profile to not be running")
	}

	getRec := doRequest(s, http.MethodGet, "/api/profiles/"+created.ID+"/", nil, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET profile = %d", getRec.Code)
	}

	created.Name = "renamed"
	putRec := doRequest(s, http.MethodPut, "/api/profiles/"+created.ID+"/", created, "")
	if putRec.Code != http.StatusOK {
		t.Fatalf("PUT profile = %d, body %s", putRec.Code, putRec.Body.String())
	}
	var updated profile.Profile
	if err := json.Unmarshal(putRec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode updated profile: %v", err)
	}
	if updated.Name != "renamed" {
		t.Errorf("updated.Name = %q, want renamed", updated.Name)
	}

	delRec := doRequest(s, http.MethodDelete, "/api/profiles/"+created.ID+"/", nil, "")
	if delRec.Code != http.StatusOK && delRec.Code != http.StatusNoContent {
		t.Fatalf("DELETE profile = %d, body %s", delRec.Code, delRec.Body.String())
	}

	getAfterDelete := doRequest(s, http.MethodGet, "/api/profiles/"+created.ID+"/", nil, "")
	if getAfterDelete.Code != http.StatusNotFound {
		t.Fatalf("GET profile after delete = %d, want 404", getAfterDelete.Code)
	}
}

func TestProfileUpdate_RejectsBodyIDMismatch(t *testing.T) {
	s := newTestServer(t, "")
	createRec := doRequest(s, http.MethodPost, "/api/profiles/", map[string]any{"name": "p", "user_data_dir": "/tmp/p"}, "")
	var created profile.Profile
	json.Unmarshal(createRec.Body.Bytes(), &created)

	rec := doRequest(s, http.MethodPut, "/api/profiles/mismatched-path/", created, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PUT with mismatched body/path id = %d, want 400", rec.Code)
	}
}

func TestProfileCreate_RejectsMissingName(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(s, http.MethodPost, "/api/profiles/", map[string]any{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST profile with no name = %d, want 400", rec.Code)
	}
}

func TestRunning_EmptyWhenNothingLaunched(t *testing.T) {
	s := newTestServer(t, "")
	createRec := doRequest(s, http.MethodPost, "/api/profiles/", map[string]any{"name": "p", "user_data_dir": "/tmp/p"}, "")
	var created profile.Profile
	json.Unmarshal(createRec.Body.Bytes(), &created)

	rec := doRequest(s, http.MethodGet, "/api/running", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/running = %d, body %s", rec.Code, rec.Body.String())
	}
	var running []supervisor.ProcessRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &running); err != nil {
		t.Fatalf("decode running list: %v", err)
	}
	if len(running) != 0 {
		t.Errorf("expected no running profiles, got %d", len(running))
	}
}

func TestKill_NotRunningReturnsConflict(t *testing.T) {
	s := newTestServer(t, "")
	createRec := doRequest(s, http.MethodPost, "/api/profiles/", map[string]any{"name": "p", "user_data_dir": "/tmp/p"}, "")
	var created profile.Profile
	json.Unmarshal(createRec.Body.Bytes(), &created)

	rec := doRequest(s, http.MethodPost, "/api/kill/"+created.ID, nil, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("POST kill on non-running profile = %d, want 409", rec.Code)
	}
}

func TestBrowserAction_UnknownProfileNotFound(t *testing.T) {
	s := newTestServer(t, "")
	rec := doRequest(s, http.MethodPost, "/api/browser/nope/navigate", map[string]any{
		"url": "https://example.com",
	}, "")
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusConflict {
		t.Fatalf("navigate on unknown profile = %d, want 404 or 409", rec.Code)
	}
}

func TestActionLog_EmptyThenRecorded(t *testing.T) {
	s := newTestServer(t, "")

	emptyRec := doRequest(s, http.MethodGet, "/api/action_log", nil, "")
	if emptyRec.Code != http.StatusOK {
		t.Fatalf("GET /api/action_log = %d", emptyRec.Code)
	}

	createRec := doRequest(s, http.MethodPost, "/api/profiles/", map[string]any{"name": "p", "user_data_dir": "/tmp/p"}, "")
	var created profile.Profile
	json.Unmarshal(createRec.Body.Bytes(), &created)

	// POST /api/kill/:id matches the lifecycle path the action log
	// middleware records against.
	doRequest(s, http.MethodPost, "/api/kill/"+created.ID, nil, "")

	rec := doRequest(s, http.MethodGet, "/api/action_log", nil, "")
	var entries []actionlog.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode action log: %v", err)
	}
	if len(entries) == 0 {
		t.Error("expected the kill attempt to have been recorded in the action log")
	}
	found := false
	for _, e := range entries {
		if e.Tool == "kill" {
			found = true
		}
	}
	if !found {
		t.Error(`expected an action log entry with tool "kill"`)
	}

	clearRec := doRequest(s, http.MethodDelete, "/api/action_log", nil, "")
	if clearRec.Code != http.StatusOK && clearRec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /api/action_log = %d", clearRec.Code)
	}
}

func TestActionLog_ListProfilesLogsBareProfilesTool(t *testing.T) {
	s := newTestServer(t, "")
	doRequest(s, http.MethodGet, "/api/profiles/", nil, "")

	rec := doRequest(s, http.MethodGet, "/api/action_log", nil, "")
	var entries []actionlog.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode action log: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Tool == "profiles" {
			found = true
		}
	}
	if !found {
		t.Error(`expected GET /api/profiles to log tool "profiles"`)
	}
}
