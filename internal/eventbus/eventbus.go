// Package eventbus implements the Event Bus half of the Event Bus &
// Action Log component: a bounded broadcast fan-out of typed events to
// WebSocket subscribers, plus a 30s heartbeat. Grounded on the original
// browsion product's api/ws.rs WsBroadcaster (a tokio::sync::broadcast
// wrapper, capacity 100) and its send/receive goroutine-pair pattern,
// translated to Go channels since Go has no broadcast channel primitive.
package eventbus

import (
	"sync"
	"time"
)

// ChannelCapacity bounds each subscriber's buffered channel, matching
// ws.rs's CHANNEL_CAPACITY.
const ChannelCapacity = 100

// EventType discriminates the event variants the front end pushes to
// subscribers, mirroring ws.rs's #[serde(tag = "type", content = "data")] enum.
type EventType string

const (
	EventBrowserStatusChanged EventType = "BrowserStatusChanged"
	EventActionLogEntry       EventType = "ActionLogEntry"
	EventProfilesChanged      EventType = "ProfilesChanged"
	EventHeartbeat            EventType = "Heartbeat"
)

// Event is the envelope delivered to every subscriber.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// BrowserStatusChangedData reports a profile's running state transition.
type BrowserStatusChangedData struct {
	ProfileID string `json:"profile_id"`
	Running   bool   `json:"running"`
}

// Bus is a bounded, drop-when-full broadcast fan-out.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}

	stopHeartbeat chan struct{}
	once          sync.Once
}

// New creates a Bus and starts its 30s heartbeat goroutine.
func New() *Bus {
	b := &Bus{
		subs:          make(map[chan Event]struct{}),
		stopHeartbeat: make(chan struct{}),
	}
	go b.heartbeatLoop()
	return b
}

// Subscribe registers a new subscriber channel. The caller must call the
// returned unsubscribe function when done, typically on WebSocket close.
func (b *Bus) Subscribe() (ch chan Event, unsubscribe func()) {
	ch = make(chan Event, ChannelCapacity)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}
}

// Broadcast delivers evt to every current subscriber, dropping it for any
// subscriber whose channel is currently full rather than blocking —
// matching tokio::broadcast's lagged-receiver semantics, adapted to Go's
// lack of a native broadcast channel.
func (b *Bus) Broadcast(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *Bus) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.Broadcast(Event{Type: EventHeartbeat})
		case <-b.stopHeartbeat:
			return
		}
	}
}

// Close stops the heartbeat goroutine and disconnects all subscribers.
func (b *Bus) Close() {
	b.once.Do(func() {
		close(b.stopHeartbeat)
	})
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
