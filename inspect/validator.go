// Package inspect provides the core request-body validation engine for Gatewall.
package inspect

import (
	"context"
	"time"
)

// Verdict is the outcome of inspecting a request body.
type Verdict int

const (
	// Accept indicates the body matched no suspicious pattern and may proceed.
	Accept Verdict = iota

	// Reject indicates the body matched a suspicious pattern and must not
	// reach application logic.
	Reject
)

// String returns a human-readable verdict name.
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Kind tags why a request was refused.
//
// Kinds are stable strings suitable for metric labels and audit records.
type Kind string

const (
	// KindNone is the kind carried by accepting decisions.
	KindNone Kind = ""

	// KindSQLInjection marks a body containing a SQL keyword or SQL
	// metacharacter (SELECT, INSERT, UPDATE, DELETE, DROP, ";", "--", "#",
	// matched case-insensitively).
	KindSQLInjection Kind = "sql_injection_suspected"

	// KindXSS marks a body containing an HTML-tag-shaped substring
	// ("<" followed by one or more non-">" characters, followed by ">").
	KindXSS Kind = "xss_suspected"
)

// Decision is the explicit result of inspecting a single request body.
//
// Decisions are plain values: the validator never signals rejection through
// errors or panics. Translating a Decision into a transport response (status
// code, body) is the caller's responsibility.
type Decision struct {
	// Verdict is Accept or Reject.
	Verdict Verdict

	// Kind identifies why the body was rejected. KindNone for accepts.
	Kind Kind

	// RuleID names the rule group that produced the rejection. Empty for
	// accepts.
	RuleID string
}

// Accepted reports whether the decision allows the request to proceed.
func (d Decision) Accepted() bool {
	return d.Verdict == Accept
}

// Request carries transport metadata about the request whose body is being
// inspected. It is observability-only: no field influences the decision.
type Request struct {
	// ID uniquely identifies the request (typically a UUID assigned by the
	// transport layer). Empty when inspecting outside a server context.
	ID string

	// Path is the request path, e.g. "/submit".
	Path string

	// Remote is the client address.
	Remote string
}

// Observer receives each decision after it is made.
//
// Observers are fan-out sinks for logging, tracing, and audit trails.
// Implementations should be:
//   - Non-blocking: avoid slowing down request handling
//   - Thread-safe: decisions for distinct requests arrive concurrently
//   - Resilient: a failing sink must not affect the decision already made
//
// ObserveDecision must not panic.
type Observer interface {
	ObserveDecision(ctx context.Context, req Request, d Decision, bodyBytes int)
}

// Validator inspects raw request bodies and decides accept or reject.
//
// The decision itself is a pure function of the body bytes: two fixed pattern
// groups are evaluated in order (SQL tokens first, then HTML-tag shapes), and
// the first match wins. A body matching both groups is therefore reported as
// SQL injection. An empty body always accepts.
//
// This is a blunt substring scan, not a parser. It has no understanding of
// structured SQL or HTML, no allowlist, and no escaping awareness: it will
// miss real attacks and flag benign content (any text containing "delete" in
// any case, or any angle-bracket pair). It makes no security claim.
//
// Observability sinks (metrics, observers) attach via functional options and
// see decisions after they are made; they never influence the outcome. A
// Validator is stateless and safe for concurrent use from multiple goroutines
// without locking.
//
// Construct with New and inject into the transport layer explicitly; there is
// no package-level default instance.
//
// Example:
//
//	v, err := inspect.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := v.Inspect(ctx, body)
//	if !d.Accepted() {
//	    // translate d.Kind into a response
//	}
type Validator struct {
	rules     []Rule
	metrics   *PrometheusMetrics
	observers []Observer
	now       func() time.Time
}

// New creates a Validator carrying the two built-in rule groups.
//
// The pattern groups are fixed by contract and cannot be replaced or
// extended; options configure observability only.
func New(opts ...Option) (*Validator, error) {
	cfg := &validatorConfig{
		now: time.Now,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &Validator{
		rules:     BuiltinRules(),
		metrics:   cfg.metrics,
		observers: cfg.observers,
		now:       cfg.now,
	}, nil
}

// MustNew is like New but panics on option error.
//
// Intended for wiring code where options are static.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Inspect scans body and returns the resulting Decision.
//
// The scan operates on raw bytes; invalid UTF-8 cannot fail, it simply
// matches or does not. A nil or empty body accepts.
//
// The context is passed through to the attached observers (e.g. audit store
// writes); the decision itself never blocks.
func (v *Validator) Inspect(ctx context.Context, body []byte) Decision {
	return v.InspectRequest(ctx, Request{}, body)
}

// InspectRequest is Inspect with transport metadata attached for the
// observers. The metadata does not influence the decision.
func (v *Validator) InspectRequest(ctx context.Context, req Request, body []byte) Decision {
	start := v.now()

	decision := Decision{Verdict: Accept}
	for _, rule := range v.rules {
		if rule.Pattern.Match(body) {
			decision = Decision{
				Verdict: Reject,
				Kind:    rule.Kind,
				RuleID:  rule.ID,
			}
			break
		}
	}

	if v.metrics != nil {
		v.metrics.RecordDecision(decision, len(body), v.now().Sub(start))
	}
	for _, obs := range v.observers {
		obs.ObserveDecision(ctx, req, decision, len(body))
	}

	return decision
}
