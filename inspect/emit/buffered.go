package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// This emitter captures events and provides query capabilities for
// analysis. The buffer is bounded: when capacity is reached the oldest
// events are dropped first, so a long-running gateway cannot grow without
// limit.
//
// Features:
//   - Thread-safe concurrent access
//   - Bounded capacity with drop-oldest semantics
//   - Query with optional filtering by request ID, path, or message
//
// Use cases:
//   - Development and debugging
//   - Testing and validation
//   - Lightweight "recent decisions" dashboards
//
// Example usage:
//
//	emitter := emit.NewBufferedEmitter(1000)
//
//	// After traffic has flowed:
//	rejects := emitter.Events(emit.Filter{Msg: emit.MsgReject})
type BufferedEmitter struct {
	mu      sync.RWMutex
	events  []Event
	cap     int
	dropped int
}

// Filter specifies criteria for querying buffered events.
//
// All fields are optional. When multiple fields are set they are combined
// with AND logic.
type Filter struct {
	// RequestID restricts results to one request (empty = no filter).
	RequestID string

	// Path restricts results to one request path (empty = no filter).
	Path string

	// Msg restricts results to one event name (empty = no filter).
	Msg string
}

// DefaultBufferCapacity is used when NewBufferedEmitter receives a
// non-positive capacity.
const DefaultBufferCapacity = 1024

// NewBufferedEmitter creates a new BufferedEmitter holding at most capacity
// events. A non-positive capacity falls back to DefaultBufferCapacity.
func NewBufferedEmitter(capacity int) *BufferedEmitter {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &BufferedEmitter{
		events: make([]Event, 0, capacity),
		cap:    capacity,
	}
}

// Emit stores an event in the buffer, dropping the oldest event when the
// buffer is full. Thread-safe.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) >= b.cap {
		copy(b.events, b.events[1:])
		b.events[len(b.events)-1] = event
		b.dropped++
		return
	}
	b.events = append(b.events, event)
}

// Events returns a copy of the buffered events matching the filter, oldest
// first.
func (b *BufferedEmitter) Events(filter Filter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, ev := range b.events {
		if filter.RequestID != "" && ev.RequestID != filter.RequestID {
			continue
		}
		if filter.Path != "" && ev.Path != filter.Path {
			continue
		}
		if filter.Msg != "" && ev.Msg != filter.Msg {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Len returns the number of currently buffered events.
func (b *BufferedEmitter) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// Dropped returns how many events have been evicted due to the capacity
// bound since construction.
func (b *BufferedEmitter) Dropped() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Clear removes all buffered events. The drop counter is preserved.
func (b *BufferedEmitter) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = b.events[:0]
}
