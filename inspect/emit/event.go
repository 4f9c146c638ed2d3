// Package emit provides event emission and observability for request inspection.
package emit

// Event represents an observability event emitted for an inspected request.
//
// Events provide per-request insight into gateway behavior:
//   - Accept/reject decisions and rejection kinds
//   - Request metadata (path, client address)
//   - Body sizes
//
// Events are emitted to an Emitter which can:
//   - Log to stdout/stderr
//   - Send to OpenTelemetry
//   - Buffer in memory for tests and dashboards
type Event struct {
	// RequestID identifies the request that produced this event.
	RequestID string

	// Path is the request path, e.g. "/submit". Empty for events emitted
	// outside a server context.
	Path string

	// Remote is the client address.
	Remote string

	// Msg is a short machine-readable event name, e.g. "request_accept",
	// "request_reject".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "kind": rejection kind for request_reject events
	//   - "rule_id": rule group that matched
	//   - "body_bytes": size of the inspected body
	Meta map[string]interface{}
}

// Event names emitted by the gateway.
const (
	// MsgAccept is emitted when a request body passes inspection.
	MsgAccept = "request_accept"

	// MsgReject is emitted when a request body is refused.
	MsgReject = "request_reject"
)
