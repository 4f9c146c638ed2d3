// Package server provides the HTTP surface of the gateway.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatewall/gatewall-go/inspect"
	"github.com/gatewall/gatewall-go/inspect/store"
)

// submitMessage is the fixed acknowledgment returned for accepted
// submissions.
const submitMessage = "Data submitted successfully!"

// DefaultMaxBodyBytes caps request bodies at 1 MiB unless configured
// otherwise.
const DefaultMaxBodyBytes = int64(1 << 20)

// Server is the HTTP gateway around an injected Validator.
//
// The validator, metrics, and audit store are constructor parameters: the
// server holds no package-level state and several servers can coexist in one
// process (useful in tests).
//
// Routes:
//   - POST /submit: fixed acknowledgment, reachable only when the body
//     passes inspection
//   - GET /healthz: liveness (and audit store reachability when configured)
//   - GET /metrics: Prometheus scrape endpoint, only when a gatherer is
//     configured
//
// Example:
//
//	v, _ := inspect.New()
//	srv, err := server.New(v)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx, ":8080"); err != nil {
//	    log.Fatal(err)
//	}
type Server struct {
	validator    *inspect.Validator
	engine       *gin.Engine
	metrics      *inspect.PrometheusMetrics
	gatherer     prometheus.Gatherer
	audit        store.Store
	maxBodyBytes int64
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server) error

// WithMaxBodyBytes caps the request body size read by the validation
// middleware. Bodies over the cap are refused with 500 before inspection.
// Zero disables the cap; negative values are rejected.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) error {
		if n < 0 {
			return errors.New("server: max body bytes cannot be negative")
		}
		s.maxBodyBytes = n
		return nil
	}
}

// WithMetrics attaches the inflight gauge and exposes GET /metrics from the
// given gatherer. Pass the same registry the validator metrics were
// registered with:
//
//	registry := prometheus.NewRegistry()
//	metrics := inspect.NewPrometheusMetrics(registry)
//	v, _ := inspect.New(inspect.WithMetrics(metrics))
//	srv, _ := server.New(v, server.WithMetrics(metrics, registry))
func WithMetrics(metrics *inspect.PrometheusMetrics, gatherer prometheus.Gatherer) ServerOption {
	return func(s *Server) error {
		if metrics == nil || gatherer == nil {
			return errors.New("server: metrics and gatherer cannot be nil")
		}
		s.metrics = metrics
		s.gatherer = gatherer
		return nil
	}
}

// WithAuditStore includes the audit backend in /healthz reachability checks.
// The store itself is wired to the validator via store.NewAuditObserver;
// this option only affects health reporting.
func WithAuditStore(st store.Store) ServerOption {
	return func(s *Server) error {
		if st == nil {
			return errors.New("server: audit store cannot be nil")
		}
		s.audit = st
		return nil
	}
}

// New creates a Server around the injected validator.
func New(validator *inspect.Validator, opts ...ServerOption) (*Server, error) {
	if validator == nil {
		return nil, errors.New("server: validator cannot be nil")
	}

	s := &Server{
		validator:    validator,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.inflightMiddleware())

	engine.GET("/healthz", s.handleHealthz)
	if s.gatherer != nil {
		engine.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	// The validation middleware guards the submission route only; health
	// and metrics stay reachable for rejected clients.
	submit := engine.Group("/", s.validationMiddleware())
	submit.POST("/submit", s.handleSubmit)

	s.engine = engine
	return s, nil
}

// Handler returns the underlying http.Handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully with a short drain window.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

// handleSubmit produces the fixed acknowledgment. It performs no inspection
// of its own: the validation middleware has already run, and the body
// content is deliberately ignored.
func (s *Server) handleSubmit(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": submitMessage})
}

// handleHealthz reports liveness, including audit backend reachability when
// one is configured.
func (s *Server) handleHealthz(c *gin.Context) {
	if s.audit != nil {
		if err := s.audit.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"audit":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// inflightMiddleware maintains the inflight_requests gauge when metrics are
// configured.
func (s *Server) inflightMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.metrics != nil {
			s.metrics.IncInflight()
			defer s.metrics.DecInflight()
		}
		c.Next()
	}
}
