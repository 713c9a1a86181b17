// Package profile implements the Profile CRUD store: named, persistent
// Chrome launch configurations backed by ~/.browsion/profiles.json.
// webctl has no profile concept (it drives whatever user-data-dir is
// passed on its own command line); this package's field set and
// persistence style are grounded on the original browsion product's
// config/schema.rs BrowserProfile struct.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/google/uuid"
)

// Profile is one named browser launch configuration.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserDataDir string    `json:"user_data_dir"`
	ProxyServer string    `json:"proxy_server,omitempty"`
	Lang        string    `json:"lang,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Color       string    `json:"color,omitempty"`
	CustomArgs  []string  `json:"custom_args,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Headless    bool      `json:"headless"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const fileName = "profiles.json"

// Store is a file-backed, concurrency-safe Profile CRUD store.
type Store struct {
	mu       sync.RWMutex
	stateDir string
	profiles map[string]*Profile
}

// Open loads (or creates) the profile store rooted at stateDir.
func Open(stateDir string) (*Store, error) {
	s := &Store{stateDir: stateDir, profiles: make(map[string]*Profile)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) path() string {
	return filepath.Join(s.stateDir, fileName)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read profiles file: %w", err)
	}
	var list []*Profile
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse profiles file: %w", err)
	}
	for _, p := range list {
		s.profiles[p.ID] = p
	}
	return nil
}

// saveLocked atomically rewrites the profiles file. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	if err := os.MkdirAll(s.stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	list := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		list = append(list, p)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}
	tmp, err := os.CreateTemp(s.stateDir, ".profiles-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp profiles file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp profiles file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, s.path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename profiles file: %w", err)
	}
	return nil
}

// Create adds a new profile, assigning it a fresh UUID.
func (s *Store) Create(p Profile) (Profile, error) {
	if p.Name == "" {
		return Profile{}, apperr.Wrap(apperr.ErrValidation, "profile name is required", nil)
	}
	if p.UserDataDir == "" {
		return Profile{}, apperr.Wrap(apperr.ErrValidation, "user_data_dir is required", nil)
	}
	if p.Lang == "" {
		p.Lang = "en-US"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles[p.ID] = &p
	if err := s.saveLocked(); err != nil {
		delete(s.profiles, p.ID)
		return Profile{}, err
	}
	return p, nil
}

// Get returns the profile with the given ID.
func (s *Store) Get(id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("profile %s not found", id), nil)
	}
	return *p, nil
}

// List returns all profiles, unordered.
func (s *Store) List() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out
}

// Update applies fn to the stored profile (if found) and persists the result.
func (s *Store) Update(id string, fn func(*Profile)) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("profile %s not found", id), nil)
	}
	updated := *p
	fn(&updated)
	updated.ID = id
	updated.UpdatedAt = time.Now()
	s.profiles[id] = &updated
	if err := s.saveLocked(); err != nil {
		s.profiles[id] = p
		return Profile{}, err
	}
	return updated, nil
}

// Delete removes a profile permanently.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return apperr.Wrap(apperr.ErrNotFound, fmt.Sprintf("profile %s not found", id), nil)
	}
	delete(s.profiles, id)
	return s.saveLocked()
}
