package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemStore is an in-memory implementation of Store.
//
// Designed for:
//   - Testing and development
//   - Single-process gateways where an audit trail is useful but
//     persistence across restarts is not
//
// MemStore is thread-safe and supports concurrent access.
//
// Limitations:
//   - Data is lost when the process terminates
//   - Memory usage grows with traffic; cap with NewMemStoreWithCap
type MemStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
	cap     int
	closed  bool
	now     func() time.Time
}

// NewMemStore creates a new unbounded in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, now: time.Now}
}

// NewMemStoreWithCap creates an in-memory store retaining at most capacity
// records; the oldest records are evicted first.
func NewMemStoreWithCap(capacity int) *MemStore {
	st := NewMemStore()
	st.cap = capacity
	return st
}

// SaveDecision persists one record (implements Store).
func (m *MemStore) SaveDecision(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}

	rec.ID = m.nextID
	m.nextID++
	rec.CreatedAt = m.now()

	m.records = append(m.records, rec)
	if m.cap > 0 && len(m.records) > m.cap {
		m.records = m.records[len(m.records)-m.cap:]
	}
	return nil
}

// ListRecent returns up to limit records, newest first (implements Store).
func (m *MemStore) ListRecent(_ context.Context, limit int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}
	if limit <= 0 {
		return nil, nil
	}

	n := len(m.records)
	if limit > n {
		limit = n
	}

	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// FindByRequestID returns the record for one request (implements Store).
//
// When a request ID was recorded more than once, the newest record wins.
func (m *MemStore) FindByRequestID(_ context.Context, requestID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, fmt.Errorf("store is closed")
	}

	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].RequestID == requestID {
			return m.records[i], nil
		}
	}
	return Record{}, ErrNotFound
}

// CountByKind returns persisted decision counts per kind (implements Store).
func (m *MemStore) CountByKind(_ context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("store is closed")
	}

	counts := make(map[string]int)
	for _, rec := range m.records {
		counts[rec.Kind]++
	}
	return counts, nil
}

// Ping always succeeds while the store is open (implements Store).
func (m *MemStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// Close marks the store closed (implements Store). Double-close is a no-op.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
