package tracking

import (
	"sync"
	"time"
)

// HistoryCapacity is the number of records kept for the debug view.
const HistoryCapacity = 50

const subscriberBuffer = 16

// HistoryRecord is one entry of the History.
type HistoryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	EventName string    `json:"event"`
	Data      Event     `json:"data"`
}

// History is a bounded, most-recent-first log of emitted events. It is safe
// for concurrent use.
type History struct {
	mu       sync.RWMutex
	ring     []HistoryRecord
	head     int // index of the next write
	size     int
	now      func() time.Time
	subs     map[chan HistoryRecord]struct{}
	onResize func(int)
}

// NewHistory returns an empty History holding at most capacity records.
// A non-positive capacity falls back to HistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &History{
		ring: make([]HistoryRecord, capacity),
		now:  time.Now,
		subs: make(map[chan HistoryRecord]struct{}),
	}
}

// Record stamps e with the current time and inserts it at the front,
// evicting the oldest record once the buffer is full.
func (h *History) Record(e Event) HistoryRecord {
	rec := HistoryRecord{
		Timestamp: h.now().UTC(),
		EventName: e.Name,
		Data:      e,
	}

	h.mu.Lock()
	h.ring[h.head] = rec
	h.head = (h.head + 1) % len(h.ring)
	if h.size < len(h.ring) {
		h.size++
	}
	size := h.size
	for ch := range h.subs {
		select {
		case ch <- rec:
		default:
			// Slow subscriber; drop.
		}
	}
	h.mu.Unlock()

	if h.onResize != nil {
		h.onResize(size)
	}
	return rec
}

// Query returns at most limit records, most recent first. An empty
// eventType matches every record. The buffer is not modified.
func (h *History) Query(eventType string, limit int) []HistoryRecord {
	if limit <= 0 {
		return []HistoryRecord{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HistoryRecord, 0, min(limit, h.size))
	for i := range h.size {
		idx := (h.head - 1 - i + len(h.ring)) % len(h.ring)
		rec := h.ring[idx]
		if eventType != "" && rec.EventName != eventType {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of records held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Subscribe returns a channel receiving every record inserted after the
// call, and a function that unsubscribes and closes the channel.
func (h *History) Subscribe() (<-chan HistoryRecord, func()) {
	ch := make(chan HistoryRecord, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}
