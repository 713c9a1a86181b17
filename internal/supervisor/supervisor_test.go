package supervisor

import (
	"os"
	"testing"
)

func TestManager_RegisterExternalAndQuery(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := m.RegisterExternal("profile-1", os.Getpid(), 9222); err != nil {
		t.Fatalf("RegisterExternal: %v", err)
	}

	port, err := m.GetCDPPort("profile-1")
	if err != nil {
		t.Fatalf("GetCDPPort: %v", err)
	}
	if port != 9222 {
		t.Errorf("GetCDPPort = %d, want 9222", port)
	}

	rec, ok := m.GetProcessInfo("profile-1")
	if !ok {
		t.Fatal("expected GetProcessInfo to find profile-1")
	}
	if !rec.External {
		t.Error("expected record registered via RegisterExternal to be marked External")
	}
}

func TestManager_GetCDPPort_UnknownProfile(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := m.GetCDPPort("nope"); err == nil {
		t.Error("expected GetCDPPort to fail for a profile with no running browser")
	}
}

func TestManager_KillProfile_NotRunning(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.KillProfile("nope"); err == nil {
		t.Error("expected KillProfile to fail for a profile that is not running")
	}
}

// The test binary itself is a live, non-zombie process whose name never
// contains "chrome"/"chromium", so registering its own PID lets
// IsRunning/CleanupDeadProcesses exercise the "process exists but isn't
// Chrome" reap path without needing a real browser.
func TestManager_IsRunning_ReapsNonChromeProcess(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.RegisterExternal("profile-1", os.Getpid(), 9222); err != nil {
		t.Fatalf("RegisterExternal: %v", err)
	}

	if m.IsRunning("profile-1") {
		t.Error("expected IsRunning to be false for a PID that isn't a Chrome process")
	}
	if _, ok := m.GetProcessInfo("profile-1"); ok {
		t.Error("expected the record to be reaped after IsRunning found it dead")
	}
}

func TestManager_CleanupDeadProcesses(t *testing.T) {
	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.RegisterExternal("profile-1", os.Getpid(), 9222); err != nil {
		t.Fatalf("RegisterExternal: %v", err)
	}
	if err := m.RegisterExternal("profile-2", 999999999, 9223); err != nil {
		t.Fatalf("RegisterExternal: %v", err)
	}

	removed := m.CleanupDeadProcesses()
	if len(removed) != 2 {
		t.Errorf("CleanupDeadProcesses removed %d profiles, want 2", len(removed))
	}
	if len(m.GetRunningProfiles()) != 0 {
		t.Error("expected no running profiles after cleanup")
	}
}

func TestManager_RestoresFromPersistedState(t *testing.T) {
	dir := t.TempDir()
	if err := saveSessions(dir, map[string]sessionEntry{
		"profile-1": {PID: os.Getpid(), CDPPort: 9222},
		"profile-2": {PID: 999999999, CDPPort: 9223},
	}); err != nil {
		t.Fatalf("saveSessions: %v", err)
	}

	m, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// profile-1's PID is alive but isn't a Chrome process, so restore
	// should not adopt it; profile-2's PID doesn't exist at all.
	if _, ok := m.GetProcessInfo("profile-1"); ok {
		t.Error("expected restore to skip a PID that isn't recognized as Chrome")
	}
	if _, ok := m.GetProcessInfo("profile-2"); ok {
		t.Error("expected restore to skip a PID that no longer exists")
	}
}
