// Package actionlog implements the Event Bus & Action Log's durable side:
// a bounded in-memory ring of recent actions plus a daily-rotating JSONL
// file log. The ring buffer is a copy of webctl's internal/daemon
// RingBuffer[T], specialized to Entry; the entry shape, filtering API,
// and daily-file naming are grounded on the original browsion product's
// api/action_log.rs.
package actionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxEntries bounds the in-memory ring, matching action_log.rs's
// MAX_ENTRIES.
const MaxEntries = 2000

// Entry records one completed control-plane operation.
type Entry struct {
	ID         string `json:"id"`
	Timestamp  int64  `json:"ts"`
	ProfileID  string `json:"profile_id"`
	Tool       string `json:"tool"`
	DurationMs int64  `json:"duration_ms"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// ringBuffer is a minimal copy of webctl's generic ring buffer,
// specialized to Entry since actionlog is the only consumer that needs
// the newest-to-oldest iteration actionlog's filtering relies on.
type ringBuffer struct {
	items []Entry
	head  int
	count int
	cap   int
	mu    sync.RWMutex
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{items: make([]Entry, capacity), cap: capacity}
}

func (b *ringBuffer) push(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[b.head] = e
	b.head = (b.head + 1) % b.cap
	if b.count < b.cap {
		b.count++
	}
}

// filtered returns up to limit entries, newest first, optionally
// restricted to profileID.
func (b *ringBuffer) filtered(profileID string, limit int) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Entry
	for i := 0; i < b.count; i++ {
		idx := (b.head - 1 - i + b.cap) % b.cap
		e := b.items[idx]
		if profileID != "" && e.ProfileID != profileID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (b *ringBuffer) clear(profileID string) {
	if profileID == "" {
		b.mu.Lock()
		var zero Entry
		for i := range b.items {
			b.items[i] = zero
		}
		b.head, b.count = 0, 0
		b.mu.Unlock()
		return
	}

	b.mu.Lock()
	kept := make([]Entry, 0, b.count)
	for i := 0; i < b.count; i++ {
		idx := (b.head - 1 - i + b.cap) % b.cap
		e := b.items[idx]
		if e.ProfileID != profileID {
			kept = append(kept, e)
		}
	}
	// kept is newest-first; reverse to oldest-first before replaying.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	var zero Entry
	for i := range b.items {
		b.items[i] = zero
	}
	b.head, b.count = 0, 0
	b.mu.Unlock()

	for _, e := range kept {
		b.push(e)
	}
}

// Log is the action log: bounded in-memory ring plus fire-and-forget
// append to a daily JSONL file.
type Log struct {
	buf     *ringBuffer
	logsDir string
}

// New creates a Log writing daily files under stateDir/logs.
func New(stateDir string) *Log {
	return &Log{
		buf:     newRingBuffer(MaxEntries),
		logsDir: filepath.Join(stateDir, "logs"),
	}
}

// Record appends an entry to the in-memory ring and asynchronously to
// today's JSONL file, matching action_log.rs's push + fire-and-forget
// append_to_file.
func (l *Log) Record(profileID, tool string, duration time.Duration, success bool, errMsg string) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UnixMilli(),
		ProfileID:  profileID,
		Tool:       tool,
		DurationMs: duration.Milliseconds(),
		Success:    success,
		Error:      errMsg,
	}
	l.buf.push(e)
	go l.appendToFile(e)
	return e
}

// Filtered returns up to limit entries, newest first, optionally scoped
// to profileID (empty string means all profiles).
func (l *Log) Filtered(profileID string, limit int) []Entry {
	return l.buf.filtered(profileID, limit)
}

// Clear empties the in-memory ring, optionally scoped to profileID.
func (l *Log) Clear(profileID string) {
	l.buf.clear(profileID)
}

func (l *Log) appendToFile(e Entry) {
	if err := os.MkdirAll(l.logsDir, 0o755); err != nil {
		return
	}
	y, m, d := daysToYMD(daysSinceEpoch(time.UnixMilli(e.Timestamp)))
	name := fmt.Sprintf("%04d-%02d-%02d.jsonl", y, m, d)
	f, err := os.OpenFile(filepath.Join(l.logsDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	f.Write(append(data, '\n'))
}

// daysSinceEpoch returns the number of whole days between the Unix epoch
// and t's UTC calendar date.
func daysSinceEpoch(t time.Time) int64 {
	u := t.UTC()
	return int64(u.Unix() / 86400)
}

// daysToYMD converts a day count since 1970-01-01 into a (year, month,
// day) civil calendar date. Ported arithmetic-for-arithmetic (not
// line-for-line Rust) from the original browsion product's
// api/action_log.rs days_to_ymd, itself Howard Hinnant's well-known
// "civil_from_days" algorithm.
func daysToYMD(days int64) (year, month, day int) {
	z := days + 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}
