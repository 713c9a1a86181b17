// Package pool implements the Session Pool: one shared, lazily-connected
// CDP session handle per running profile. Generalized from webctl's
// internal/daemon session/connection management (a single package-global
// session) to a registry keyed by profile ID, matching how daemon.go's own
// SessionRegistry already multiplexes several page sessions within one
// browser — the pool applies that same idiom one level up, across several
// browsers.
package pool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/browsion/browsion/internal/apperr"
	"github.com/browsion/browsion/internal/browser"
	"github.com/browsion/browsion/internal/cdp"
)

// entry holds the connection state for one profile's attached page.
type entry struct {
	mu      sync.Mutex
	client  *cdp.Client
	session *cdp.Session
}

// Pool manages CDP connections to running browser profiles.
type Pool struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{entries: make(map[string]*entry)}
}

// Get returns the live session for profileID, connecting lazily (waiting
// up to 15s for a page target, dialing that page target's WebSocket,
// discovering targets, and attaching in flattened mode) on first use and
// on any previously-dropped connection.
func (p *Pool) Get(ctx context.Context, profileID string, cdpPort int) (*cdp.Session, error) {
	p.mu.Lock()
	e, ok := p.entries[profileID]
	if !ok {
		e = &entry{}
		p.entries[profileID] = e
	}
	p.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && e.client.Err() == nil {
		return e.session, nil
	}

	if err := p.connectLocked(ctx, e, cdpPort); err != nil {
		return nil, err
	}
	return e.session, nil
}

func (p *Pool) connectLocked(ctx context.Context, e *entry, cdpPort int) error {
	target, err := firstPageTarget(ctx, cdpPort)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "find page target", err)
	}

	client, err := cdp.Dial(ctx, target.WebSocketURL)
	if err != nil {
		return apperr.Wrap(apperr.ErrTransport, "connect to browser", err)
	}

	if _, err := client.SendContext(ctx, "Target.setDiscoverTargets", map[string]any{"discover": true}); err != nil {
		client.Close()
		return apperr.Wrap(apperr.ErrTransport, "discover targets", err)
	}
	result, err := client.SendContext(ctx, "Target.attachToTarget", map[string]any{
		"targetId": target.ID,
		"flatten":  true,
	})
	if err != nil {
		client.Close()
		return apperr.Wrap(apperr.ErrTransport, "attach to target", err)
	}
	var attached struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(result, &attached); err != nil {
		client.Close()
		return apperr.Wrap(apperr.ErrProtocol, "attach to target", err)
	}

	session := cdp.NewSession(client, attached.SessionID, target.ID)
	session.AttachEventHandlers()
	if err := session.Enable(ctx); err != nil {
		client.Close()
		return apperr.Wrap(apperr.ErrTransport, "enable domains", err)
	}

	e.client = client
	e.session = session
	return nil
}

func firstPageTarget(ctx context.Context, cdpPort int) (*browser.Target, error) {
	deadline := time.Now().Add(15 * time.Second)
	for {
		targets, err := browser.FetchTargets(ctx, "127.0.0.1", cdpPort)
		if err == nil {
			if t := browser.FindPageTarget(targets); t != nil {
				return t, nil
			}
			err = fmt.Errorf("no page target available")
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Disconnect tears down the pooled connection for profileID, if any,
// without affecting the underlying browser process.
func (p *Pool) Disconnect(profileID string) {
	p.mu.Lock()
	e, ok := p.entries[profileID]
	delete(p.entries, profileID)
	p.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Close()
	}
}

// Active reports whether profileID currently has a live pooled connection.
func (p *Pool) Active(profileID string) bool {
	p.mu.RLock()
	e, ok := p.entries[profileID]
	p.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client != nil && e.client.Err() == nil
}
