package cdp

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// RingBuffer is a thread-safe circular buffer with fixed capacity.
// When full, new items overwrite the oldest. Relocated from webctl's
// internal/daemon package, where it served exactly this role for
// console/network log buffering.
type RingBuffer[T any] struct {
	items []T
	head  int
	count int
	cap   int
	mu    sync.RWMutex
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer[T]{items: make([]T, capacity), cap: capacity}
}

// Push adds an item, overwriting the oldest entry once full.
func (b *RingBuffer[T]) Push(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[b.head] = item
	b.head = (b.head + 1) % b.cap
	if b.count < b.cap {
		b.count++
	}
}

// All returns all items oldest-first.
func (b *RingBuffer[T]) All() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return nil
	}
	result := make([]T, b.count)
	start := 0
	if b.count == b.cap {
		start = b.head
	}
	for i := 0; i < b.count; i++ {
		result[i] = b.items[(start+i)%b.cap]
	}
	return result
}

// Update iterates items newest-to-oldest, calling fn with a pointer to
// each so it can be modified in place. Iteration stops as soon as fn
// returns true.
func (b *RingBuffer[T]) Update(fn func(*T) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return
	}
	for i := 0; i < b.count; i++ {
		idx := (b.head - 1 - i + b.cap) % b.cap
		if fn(&b.items[idx]) {
			return
		}
	}
}

// Len returns the number of items currently buffered.
func (b *RingBuffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Clear empties the buffer.
func (b *RingBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head, b.count = 0, 0
}

// ConsoleEntry is one buffered Runtime.consoleAPICalled event.
type ConsoleEntry struct {
	SessionID string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Text      string    `json:"text"`
}

// NetworkEntry is one buffered request/response pair.
type NetworkEntry struct {
	SessionID string    `json:"-"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Method    string    `json:"method"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	Status    int       `json:"status"`
}

// DialogInfo describes a pending JavaScript dialog (alert/confirm/prompt/beforeunload).
type DialogInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Session represents one browser page target attached in flattened mode:
// a sessionID multiplexed over a shared browser-level Client, plus the
// per-page state (log rings, AX ref table, pending dialog) the operation
// catalog below needs. Session Pool (internal/pool) owns the lifetime of
// these; internal/cdp only knows how to talk CDP through one.
type Session struct {
	client    *Client
	SessionID string
	TargetID  string

	consoleBuf *RingBuffer[ConsoleEntry]
	networkBuf *RingBuffer[NetworkEntry]

	refMu   sync.Mutex
	refs    map[string]int // ref id -> DOM backend node id
	nextRef int

	dialogMu sync.Mutex
	dialog   *DialogInfo

	networkOnce sync.Once

	waitMu      sync.Mutex
	loadWaiters map[chan struct{}]struct{}
	domWaiters  map[chan struct{}]struct{}

	tabMu      sync.Mutex
	tabWaiters map[chan string]struct{}

	interceptMu sync.Mutex
	intercepts  []interceptRule
	fetchOnce   sync.Once

	frameMu        sync.Mutex
	currentFrameID string
}

// ConsoleLogCapacity and NetworkLogCapacity match spec.md's per-session
// buffer sizes (smaller than the 2000-entry action log, since these mirror
// DevTools' own rolling panels rather than an audit trail).
const (
	ConsoleLogCapacity = 100
	NetworkLogCapacity = 200
)

// NewSession attaches console/network buffering to an already-attached
// CDP session. The caller (internal/pool) is responsible for calling
// Target.attachToTarget and obtaining sessionID first.
func NewSession(client *Client, sessionID, targetID string) *Session {
	s := &Session{
		client:      client,
		SessionID:   sessionID,
		TargetID:    targetID,
		consoleBuf:  NewRingBuffer[ConsoleEntry](ConsoleLogCapacity),
		networkBuf:  NewRingBuffer[NetworkEntry](NetworkLogCapacity),
		refs:        make(map[string]int),
		loadWaiters: make(map[chan struct{}]struct{}),
		domWaiters:  make(map[chan struct{}]struct{}),
		tabWaiters:  make(map[chan string]struct{}),
	}
	return s
}

// Send issues a CDP command flattened onto this session.
func (s *Session) Send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return s.client.SendToSession(ctx, s.SessionID, method, params)
}

// Enable turns on the CDP domains the operation catalog depends on:
// Page (navigation events), Runtime (console/eval), DOM (selectors),
// Accessibility (AX tree refs). Network is enabled lazily on first use,
// matching webctl's handleNetwork, which avoided paying Network's
// overhead on sessions that never inspect traffic.
func (s *Session) Enable(ctx context.Context) error {
	for _, domain := range []string{"Page.enable", "Runtime.enable", "DOM.enable", "Accessibility.enable"} {
		if _, err := s.Send(ctx, domain, nil); err != nil {
			return err
		}
	}
	return nil
}

// AttachEventHandlers subscribes to the browser-level client's events that
// feed this session's console/network rings and pending-dialog slot,
// filtering every event by sessionID since one Client may in principle be
// flattened across several attached targets. Called once by the session
// pool right after a session is created.
func (s *Session) AttachEventHandlers() {
	s.client.Subscribe("Runtime.consoleAPICalled", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		var params struct {
			Type string `json:"type"`
			Args []struct {
				Value       json.RawMessage `json:"value"`
				Description string          `json:"description"`
			} `json:"args"`
		}
		if json.Unmarshal(evt.Params, &params) != nil {
			return
		}
		text := ""
		for i, a := range params.Args {
			if i > 0 {
				text += " "
			}
			if len(a.Value) > 0 {
				text += string(a.Value)
			} else {
				text += a.Description
			}
		}
		s.recordConsole(ConsoleEntry{Timestamp: time.Now(), Level: params.Type, Text: text})
	})

	s.client.Subscribe("Network.requestWillBeSent", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		var params struct {
			RequestID string `json:"requestId"`
			Request   struct {
				URL    string `json:"url"`
				Method string `json:"method"`
			} `json:"request"`
			Type string `json:"type"`
		}
		if json.Unmarshal(evt.Params, &params) != nil {
			return
		}
		s.recordNetwork(NetworkEntry{
			RequestID: params.RequestID,
			Timestamp: time.Now(),
			Method:    params.Request.Method,
			URL:       params.Request.URL,
			Type:      params.Type,
		})
	})

	s.client.Subscribe("Network.responseReceived", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		var params struct {
			RequestID string `json:"requestId"`
			Response  struct {
				Status int `json:"status"`
			} `json:"response"`
		}
		if json.Unmarshal(evt.Params, &params) != nil {
			return
		}
		s.networkBuf.Update(func(e *NetworkEntry) bool {
			if e.RequestID == params.RequestID {
				e.Status = params.Response.Status
				return true
			}
			return false
		})
	})

	s.client.Subscribe("Page.javascriptDialogOpening", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		var params struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if json.Unmarshal(evt.Params, &params) != nil {
			return
		}
		s.setDialog(&DialogInfo{Type: params.Type, Message: params.Message})
	})

	s.client.Subscribe("Page.loadEventFired", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		s.fireLoadWaiters()
	})

	s.client.Subscribe("Page.domContentEventFired", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		s.fireDOMWaiters()
	})

	s.client.Subscribe("Target.targetCreated", func(evt Event) {
		var params struct {
			TargetInfo struct {
				TargetID string `json:"targetId"`
				Type     string `json:"type"`
			} `json:"targetInfo"`
		}
		if json.Unmarshal(evt.Params, &params) != nil {
			return
		}
		if params.TargetInfo.Type != "page" {
			return
		}
		s.fireTabWaiters(params.TargetInfo.TargetID)
	})

	s.client.Subscribe("Fetch.requestPaused", func(evt Event) {
		if evt.SessionID != s.SessionID {
			return
		}
		s.handleRequestPaused(evt)
	})
}

// fireLoadWaiters wakes every goroutine currently blocked in a load-event
// wait (navigate_wait, wait_for_navigation). Waiters remove themselves from
// the map once woken; a non-blocking send guards against a waiter that
// already timed out and stopped receiving.
func (s *Session) fireLoadWaiters() {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	for ch := range s.loadWaiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) fireDOMWaiters() {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	for ch := range s.domWaiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *Session) addLoadWaiter() chan struct{} {
	ch := make(chan struct{}, 1)
	s.waitMu.Lock()
	s.loadWaiters[ch] = struct{}{}
	s.waitMu.Unlock()
	return ch
}

func (s *Session) removeLoadWaiter(ch chan struct{}) {
	s.waitMu.Lock()
	delete(s.loadWaiters, ch)
	s.waitMu.Unlock()
}

func (s *Session) addDOMWaiter() chan struct{} {
	ch := make(chan struct{}, 1)
	s.waitMu.Lock()
	s.domWaiters[ch] = struct{}{}
	s.waitMu.Unlock()
	return ch
}

func (s *Session) removeDOMWaiter(ch chan struct{}) {
	s.waitMu.Lock()
	delete(s.domWaiters, ch)
	s.waitMu.Unlock()
}

func (s *Session) fireTabWaiters(targetID string) {
	s.tabMu.Lock()
	defer s.tabMu.Unlock()
	for ch := range s.tabWaiters {
		select {
		case ch <- targetID:
		default:
		}
	}
}

func (s *Session) addTabWaiter() chan string {
	ch := make(chan string, 1)
	s.tabMu.Lock()
	s.tabWaiters[ch] = struct{}{}
	s.tabMu.Unlock()
	return ch
}

func (s *Session) removeTabWaiter(ch chan string) {
	s.tabMu.Lock()
	delete(s.tabWaiters, ch)
	s.tabMu.Unlock()
}

// EnableNetworkOnce lazily turns on the Network domain, exactly once per
// session, mirroring webctl's sync.Map-guarded lazy-enable in
// handleNetwork.
func (s *Session) EnableNetworkOnce(ctx context.Context) error {
	var err error
	s.networkOnce.Do(func() {
		_, err = s.Send(ctx, "Network.enable", nil)
	})
	return err
}

func (s *Session) recordConsole(e ConsoleEntry) {
	e.SessionID = s.SessionID
	s.consoleBuf.Push(e)
}

func (s *Session) recordNetwork(e NetworkEntry) {
	e.SessionID = s.SessionID
	s.networkBuf.Push(e)
}

// ConsoleEntries returns the buffered console log, oldest-first.
func (s *Session) ConsoleEntries() []ConsoleEntry { return s.consoleBuf.All() }

// NetworkEntries returns the buffered network log, oldest-first.
func (s *Session) NetworkEntries() []NetworkEntry { return s.networkBuf.All() }

// ClearConsole empties the console log ring.
func (s *Session) ClearConsole() { s.consoleBuf.Clear() }

// ClearNetwork empties the network log ring.
func (s *Session) ClearNetwork() { s.networkBuf.Clear() }

// setDialog records a pending dialog surfaced by Page.javascriptDialogOpening.
func (s *Session) setDialog(d *DialogInfo) {
	s.dialogMu.Lock()
	s.dialog = d
	s.dialogMu.Unlock()
}

// PendingDialog returns the currently pending dialog, if any.
func (s *Session) PendingDialog() *DialogInfo {
	s.dialogMu.Lock()
	defer s.dialogMu.Unlock()
	return s.dialog
}

func (s *Session) clearDialog() {
	s.dialogMu.Lock()
	s.dialog = nil
	s.dialogMu.Unlock()
}

// storeRef assigns (or reuses, if already assigned) a stable ref id for an
// accessibility node's backend DOM node id, so subsequent click_ref/
// type_ref/focus_ref calls can address elements by ref instead of by
// selector. Mirrors the accessibility-tree "ref" addressing scheme the
// original product's ax_tree/click_ref handlers expose.
func (s *Session) storeRef(backendNodeID int) string {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	for ref, id := range s.refs {
		if id == backendNodeID {
			return ref
		}
	}
	s.nextRef++
	ref := refName(s.nextRef)
	s.refs[ref] = backendNodeID
	return ref
}

func (s *Session) resolveRef(ref string) (int, bool) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	id, ok := s.refs[ref]
	return id, ok
}

func refName(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if n <= 0 {
		n = 1
	}
	s := ""
	for n > 0 {
		n--
		s = string(letters[n%26]) + s
		n /= 26
	}
	return "e" + s
}
