// Package store provides persistence backends for the gateway audit trail.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/gatewall/gatewall-go/inspect"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Record is one persisted inspection decision.
//
// Records capture the decision and transport metadata only; request body
// content is never stored.
type Record struct {
	// ID is the store-assigned record identifier.
	ID int64

	// RequestID is the transport-assigned request identifier.
	RequestID string

	// Verdict is "accept" or "reject".
	Verdict string

	// Kind is the rejection kind; empty for accepts.
	Kind string

	// RuleID names the rule group that matched; empty for accepts.
	RuleID string

	// Path is the request path.
	Path string

	// Remote is the client address.
	Remote string

	// BodyBytes is the size of the inspected body.
	BodyBytes int

	// CreatedAt is when the decision was recorded.
	CreatedAt time.Time
}

// Store persists inspection decisions for later analysis.
//
// The store is a passive sink: it is written after a decision is made and is
// never consulted on the request path, so validation stays stateless.
//
// Implementations:
//   - In-memory (testing and development, see memory.go)
//   - SQLite (single-process deployments, see sqlite.go)
//   - MySQL/MariaDB (shared deployments, see mysql.go)
type Store interface {
	// SaveDecision persists one decision record. The record's ID and
	// CreatedAt are assigned by the store.
	SaveDecision(ctx context.Context, rec Record) error

	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)

	// FindByRequestID returns the record for one request.
	// Returns ErrNotFound if the request ID was never recorded.
	FindByRequestID(ctx context.Context, requestID string) (Record, error)

	// CountByKind returns the number of persisted decisions per rejection
	// kind. Accepts are counted under the empty kind.
	CountByKind(ctx context.Context) (map[string]int, error)

	// Ping verifies the backend is reachable. Useful for health checks.
	Ping(ctx context.Context) error

	// Close releases backend resources. After Close, all operations
	// return an error. Double-close is a no-op.
	Close() error
}

// AuditObserver adapts a Store into an inspect.Observer, persisting one
// Record per decision.
//
// Write failures are counted but otherwise swallowed: the decision has
// already been made and audit persistence must never affect the request.
//
// Usage:
//
//	st, err := store.NewSQLiteStore("./audit.db")
//	v, err := inspect.New(
//	    inspect.WithObserver(store.NewAuditObserver(st)),
//	)
type AuditObserver struct {
	store       Store
	errs        func(error)
	onlyRejects bool
}

// AuditOption configures an AuditObserver.
type AuditOption func(*AuditObserver)

// WithErrorHandler installs a callback invoked with each failed write.
// Default: failures are dropped silently.
func WithErrorHandler(fn func(error)) AuditOption {
	return func(o *AuditObserver) {
		o.errs = fn
	}
}

// WithRejectsOnly restricts the audit trail to rejected requests. Accepts
// still flow through metrics and emitters.
func WithRejectsOnly() AuditOption {
	return func(o *AuditObserver) {
		o.onlyRejects = true
	}
}

// NewAuditObserver wraps st as an inspect.Observer.
func NewAuditObserver(st Store, opts ...AuditOption) *AuditObserver {
	obs := &AuditObserver{store: st}
	for _, opt := range opts {
		opt(obs)
	}
	return obs
}

// ObserveDecision implements inspect.Observer.
func (o *AuditObserver) ObserveDecision(ctx context.Context, req inspect.Request, d inspect.Decision, bodyBytes int) {
	if o.onlyRejects && d.Accepted() {
		return
	}

	rec := Record{
		RequestID: req.ID,
		Verdict:   d.Verdict.String(),
		Kind:      string(d.Kind),
		RuleID:    d.RuleID,
		Path:      req.Path,
		Remote:    req.Remote,
		BodyBytes: bodyBytes,
	}

	if err := o.store.SaveDecision(ctx, rec); err != nil && o.errs != nil {
		o.errs(err)
	}
}
