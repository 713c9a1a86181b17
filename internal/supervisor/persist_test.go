package supervisor

import "testing"

func TestLoadSessions_MissingFileReturnsEmpty(t *testing.T) {
	m, err := loadSessions(t.TempDir())
	if err != nil {
		t.Fatalf("loadSessions: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("expected empty map for missing file, got %v", m)
	}
}

func TestSaveThenLoadSessions_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	want := map[string]sessionEntry{
		"profile-a": {PID: 1234, CDPPort: 9222},
		"profile-b": {PID: 5678, CDPPort: 9223},
	}

	if err := saveSessions(dir, want); err != nil {
		t.Fatalf("saveSessions: %v", err)
	}
	got, err := loadSessions(dir)
	if err != nil {
		t.Fatalf("loadSessions: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loadSessions returned %d entries, want %d", len(got), len(want))
	}
	for id, entry := range want {
		if got[id] != entry {
			t.Errorf("entry %s = %+v, want %+v", id, got[id], entry)
		}
	}
}

func TestSaveSessions_OverwritesPreviousContent(t *testing.T) {
	dir := t.TempDir()
	if err := saveSessions(dir, map[string]sessionEntry{"x": {PID: 1, CDPPort: 9222}}); err != nil {
		t.Fatalf("first saveSessions: %v", err)
	}
	if err := saveSessions(dir, map[string]sessionEntry{"y": {PID: 2, CDPPort: 9223}}); err != nil {
		t.Fatalf("second saveSessions: %v", err)
	}
	got, err := loadSessions(dir)
	if err != nil {
		t.Fatalf("loadSessions: %v", err)
	}
	if _, ok := got["x"]; ok {
		t.Error("expected first entry to be overwritten, not merged")
	}
	if _, ok := got["y"]; !ok {
		t.Error("expected second entry to be present")
	}
}
