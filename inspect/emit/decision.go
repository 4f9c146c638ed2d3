package emit

import (
	"context"

	"github.com/gatewall/gatewall-go/inspect"
)

// DecisionObserver adapts an Emitter into an inspect.Observer, translating
// each decision into one Event.
//
// Accepts become MsgAccept events; rejects become MsgReject events carrying
// the rejection kind and rule ID in Meta.
//
// Usage:
//
//	emitter := emit.NewLogEmitter(os.Stdout, true)
//	v, err := inspect.New(
//	    inspect.WithObserver(emit.NewDecisionObserver(emitter)),
//	)
type DecisionObserver struct {
	emitter Emitter
}

// NewDecisionObserver wraps emitter as an inspect.Observer. A nil emitter
// falls back to NullEmitter.
func NewDecisionObserver(emitter Emitter) *DecisionObserver {
	if emitter == nil {
		emitter = NewNullEmitter()
	}
	return &DecisionObserver{emitter: emitter}
}

// ObserveDecision implements inspect.Observer.
func (o *DecisionObserver) ObserveDecision(_ context.Context, req inspect.Request, d inspect.Decision, bodyBytes int) {
	event := Event{
		RequestID: req.ID,
		Path:      req.Path,
		Remote:    req.Remote,
		Msg:       MsgAccept,
		Meta: map[string]interface{}{
			"body_bytes": bodyBytes,
		},
	}
	if !d.Accepted() {
		event.Msg = MsgReject
		event.Meta["kind"] = string(d.Kind)
		event.Meta["rule_id"] = d.RuleID
	}

	o.emitter.Emit(event)
}
