package audit

import (
	"sync"

	"github.com/gbawo/finance-core/internal/pkg/logger"
)

const defaultCapacity = 1000

// RingBuffer is an in-memory Sink retaining the most recent events in a
// bounded buffer. It offers no durability across restarts; it exists for live
// inspection and forensic replay of recent activity.
type RingBuffer struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	next     int
	full     bool
}

// NewRingBuffer creates a ring buffer sink with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RingBuffer{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Record appends an event, overwriting the oldest when full. It never panics
// out to the caller; an internal failure is reported through the fallback
// logger and swallowed.
func (r *RingBuffer) Record(eventType string, severity Severity, payload map[string]interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Audit sink failure swallowed",
				logger.String("event_type", eventType),
				logger.Any("panic", rec))
		}
	}()

	event := newEvent(eventType, severity, payload)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.next] = event
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns up to n events, newest first.
func (r *RingBuffer) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.len()
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.next - 1 - i + r.capacity) % r.capacity
		out = append(out, r.events[idx])
	}
	return out
}

// Len returns the number of retained events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.len()
}

func (r *RingBuffer) len() int {
	if r.full {
		return r.capacity
	}
	return r.next
}
