package inspect

import "time"

// Option is a functional option for configuring a Validator.
//
// Options configure observability only; the pattern groups themselves are
// fixed. Options compose:
//
//	v, err := inspect.New(
//	    inspect.WithMetrics(metrics),
//	    inspect.WithObserver(auditObserver, logObserver),
//	)
type Option func(*validatorConfig) error

// validatorConfig collects options before they are applied to a Validator.
// The indirection allows validation of option arguments.
type validatorConfig struct {
	metrics   *PrometheusMetrics
	observers []Observer
	now       func() time.Time
}

// WithMetrics enables Prometheus metrics collection for every decision.
//
// Metrics exposed (namespace "gatewall"): requests_total, inspect_latency_ms,
// body_bytes. See NewPrometheusMetrics.
//
// Example:
//
//	registry := prometheus.NewRegistry()
//	metrics := inspect.NewPrometheusMetrics(registry)
//	v, err := inspect.New(inspect.WithMetrics(metrics))
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(cfg *validatorConfig) error {
		if metrics == nil {
			return &InspectError{
				Message: "metrics cannot be nil",
				Code:    "NIL_METRICS",
			}
		}
		cfg.metrics = metrics
		return nil
	}
}

// WithObserver attaches one or more decision observers.
//
// Observers see every decision after it is made, in registration order.
// Typical observers: emit.NewDecisionObserver for structured events,
// store.NewAuditObserver for a persisted audit trail.
func WithObserver(observers ...Observer) Option {
	return func(cfg *validatorConfig) error {
		for _, obs := range observers {
			if obs == nil {
				return &InspectError{
					Message: "observer cannot be nil",
					Code:    "NIL_OBSERVER",
				}
			}
			cfg.observers = append(cfg.observers, obs)
		}
		return nil
	}
}

// WithClock overrides the time source used for latency measurement.
//
// Intended for tests; production code should rely on the default.
func WithClock(now func() time.Time) Option {
	return func(cfg *validatorConfig) error {
		if now == nil {
			return &InspectError{
				Message: "clock cannot be nil",
				Code:    "NIL_CLOCK",
			}
		}
		cfg.now = now
		return nil
	}
}
