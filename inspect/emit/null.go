package emit

// NullEmitter implements Emitter by discarding all events.
//
// This is a no-op emitter for deployments where decision logging is not
// desired, and for tests that do not capture events.
//
// Example usage:
//
//	emitter := emit.NewNullEmitter()
type NullEmitter struct{}

// NewNullEmitter creates a new NullEmitter.
//
// Returns a NullEmitter that discards all events without any processing.
// Safe for concurrent use; zero overhead.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event without any processing.
func (n *NullEmitter) Emit(event Event) {
	// No-op: discard the event
}
