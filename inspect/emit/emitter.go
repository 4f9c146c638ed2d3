package emit

// Emitter receives and processes observability events from request inspection.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files, syslog
//   - Distributed tracing: OpenTelemetry, Jaeger, Zipkin
//   - In-memory capture: tests, dashboards
//
// Implementations should be:
//   - Non-blocking: avoid slowing down request handling
//   - Thread-safe: may be called concurrently for distinct requests
//   - Resilient: handle failures gracefully (never fail the request)
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	//
	// Implementations should not block request handling. If the backend is
	// unavailable or slow, events should be buffered, dropped with internal
	// error logging, or sent asynchronously.
	//
	// Emit should not panic. Errors should be handled internally.
	Emit(event Event)
}
