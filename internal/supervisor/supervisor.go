// Package supervisor manages the lifecycle of per-profile browser
// processes: launching, killing, liveness checks, crash-recovery
// persistence, and periodic reaping of dead processes. Grounded on the
// original browsion product's process/manager.rs; webctl has no
// equivalent of this, since it launches exactly one browser process for
// its own lifetime and never multiplexes several.
package supervisor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/browsion/browsion/internal/browser"
	"github.com/shirou/gopsutil/v3/process"
)

// Manager owns the set of running browser processes, one per profile.
type Manager struct {
	mu       sync.Mutex
	procs    map[string]*ProcessRecord
	recent   []LaunchedProfile
	stateDir string
}

// New creates a Manager persisting its process table under stateDir
// (typically ~/.browsion).
func New(stateDir string) (*Manager, error) {
	m := &Manager{
		procs:    make(map[string]*ProcessRecord),
		stateDir: stateDir,
	}
	if err := m.restore(); err != nil {
		return nil, err
	}
	return m, nil
}

// restore re-adopts processes that survived a prior control-plane crash,
// dropping any entry whose PID is no longer a live Chrome process.
func (m *Manager) restore() error {
	entries, err := loadSessions(m.stateDir)
	if err != nil {
		return err
	}
	for profileID, e := range entries {
		if isChromeProcess(e.PID) {
			m.procs[profileID] = &ProcessRecord{
				ProfileID:  profileID,
				PID:        e.PID,
				CDPPort:    e.CDPPort,
				LaunchedAt: time.Now(),
				External:   true,
			}
		}
	}
	return nil
}

func (m *Manager) persistLocked() error {
	entries := make(map[string]sessionEntry, len(m.procs))
	for id, p := range m.procs {
		entries[id] = sessionEntry{PID: p.PID, CDPPort: p.CDPPort}
	}
	return saveSessions(m.stateDir, entries)
}

// LaunchProfile starts Chrome for a profile not already running, using
// chromePath and the given launch options (port is assigned here,
// overwriting opts.Port).
func (m *Manager) LaunchProfile(profileID, chromePath string, opts browser.LaunchOptions) (ProcessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.procs[profileID]; ok && isChromeProcess(rec.PID) {
		return ProcessRecord{}, apperr.Wrap(apperr.ErrAlreadyRunning, fmt.Sprintf("profile %s already running", profileID), nil)
	}

	opts.Port = allocateCDPPort()
	b, err := browser.StartWithBinary(chromePath, opts)
	if err != nil {
		return ProcessRecord{}, apperr.Wrap(apperr.ErrTransport, "launch chrome", err)
	}

	rec := &ProcessRecord{
		ProfileID:  profileID,
		PID:        b.PID(),
		CDPPort:    b.Port(),
		LaunchedAt: time.Now(),
	}
	m.procs[profileID] = rec
	m.recent = append(m.recent, LaunchedProfile{ProfileID: profileID, LaunchedAt: rec.LaunchedAt})
	if len(m.recent) > recentLaunchesCap {
		m.recent = m.recent[len(m.recent)-recentLaunchesCap:]
	}

	if err := m.persistLocked(); err != nil {
		return ProcessRecord{}, err
	}
	return *rec, nil
}

// KillProfile terminates the running browser for profileID, if any.
func (m *Manager) KillProfile(profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.procs[profileID]
	if !ok {
		return apperr.Wrap(apperr.ErrNotRunning, fmt.Sprintf("profile %s is not running", profileID), nil)
	}
	if err := killPID(rec.PID); err != nil {
		return apperr.Wrap(apperr.ErrTransport, "kill chrome process", err)
	}
	delete(m.procs, profileID)
	return m.persistLocked()
}

// IsRunning reports whether profileID currently has a live Chrome process,
// reaping the record first if the process has died.
func (m *Manager) IsRunning(profileID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.procs[profileID]
	if !ok {
		return false
	}
	if isChromeProcess(rec.PID) {
		return true
	}
	delete(m.procs, profileID)
	_ = m.persistLocked()
	return false
}

// GetProcessInfo returns the process record for profileID, if running.
func (m *Manager) GetProcessInfo(profileID string) (ProcessRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.procs[profileID]
	if !ok {
		return ProcessRecord{}, false
	}
	return *rec, true
}

// GetCDPPort returns the CDP port for a running profile.
func (m *Manager) GetCDPPort(profileID string) (int, error) {
	rec, ok := m.GetProcessInfo(profileID)
	if !ok {
		return 0, apperr.Wrap(apperr.ErrBrowserNotRunning, fmt.Sprintf("profile %s has no running browser", profileID), nil)
	}
	return rec.CDPPort, nil
}

// GetRunningProfiles lists all profile IDs with a currently live process,
// reaping any that have died.
func (m *Manager) GetRunningProfiles() []string {
	m.cleanupLocked()
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.procs))
	for id := range m.procs {
		ids = append(ids, id)
	}
	return ids
}

// GetRecentLaunches returns up to the last 10 profile launches, newest last.
func (m *Manager) GetRecentLaunches() []LaunchedProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LaunchedProfile, len(m.recent))
	copy(out, m.recent)
	return out
}

// RegisterExternal adopts an already-running Chrome process (e.g. one the
// user launched by hand with --remote-debugging-port) under profileID.
func (m *Manager) RegisterExternal(profileID string, pid, cdpPort int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.procs[profileID] = &ProcessRecord{
		ProfileID:  profileID,
		PID:        pid,
		CDPPort:    cdpPort,
		LaunchedAt: time.Now(),
		External:   true,
	}
	return m.persistLocked()
}

// CleanupDeadProcesses scans all tracked profiles and removes any whose
// process has exited, returning the profile IDs that were removed.
func (m *Manager) CleanupDeadProcesses() []string {
	return m.cleanupLocked()
}

func (m *Manager) cleanupLocked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id, rec := range m.procs {
		if !isChromeProcess(rec.PID) {
			removed = append(removed, id)
			delete(m.procs, id)
		}
	}
	if len(removed) > 0 {
		_ = m.persistLocked()
	}
	return removed
}

// isChromeProcess reports whether pid is alive, has a process name
// containing "chrome"/"chromium", and is not a zombie. Ported from
// manager.rs's is_running predicate, which used the Rust `sysinfo` crate
// for the same three checks; here we use gopsutil/v3/process, its direct
// Go analogue.
func isChromeProcess(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := proc.Status()
	if err != nil {
		return false
	}
	for _, s := range status {
		if s == process.Zombie {
			return false
		}
	}
	name, err := proc.Name()
	if err != nil {
		return false
	}
	lower := strings.ToLower(name)
	return strings.Contains(lower, "chrome") || strings.Contains(lower, "chromium")
}

func killPID(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		return proc.Kill()
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !isChromeProcess(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return proc.Kill()
}

// StateDir returns the directory Chrome profile data and the sessions
// sidecar file are rooted under, typically ~/.browsion.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".browsion"), nil
}
