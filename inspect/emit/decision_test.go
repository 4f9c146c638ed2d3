package emit

import (
	"context"
	"testing"

	"github.com/gatewall/gatewall-go/inspect"
)

// TestDecisionObserver verifies decisions translate into events.
func TestDecisionObserver(t *testing.T) {
	t.Run("accept decision", func(t *testing.T) {
		buf := NewBufferedEmitter(8)
		obs := NewDecisionObserver(buf)

		req := inspect.Request{ID: "req-1", Path: "/submit", Remote: "1.2.3.4"}
		obs.ObserveDecision(context.Background(), req, inspect.Decision{Verdict: inspect.Accept}, 12)

		events := buf.Events(Filter{})
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		ev := events[0]
		if ev.Msg != MsgAccept {
			t.Errorf("msg = %q, want %q", ev.Msg, MsgAccept)
		}
		if ev.RequestID != "req-1" || ev.Path != "/submit" || ev.Remote != "1.2.3.4" {
			t.Errorf("request metadata not carried: %+v", ev)
		}
		if ev.Meta["body_bytes"] != 12 {
			t.Errorf("body_bytes = %v, want 12", ev.Meta["body_bytes"])
		}
		if _, present := ev.Meta["kind"]; present {
			t.Error("accept event should not carry a kind")
		}
	})

	t.Run("reject decision", func(t *testing.T) {
		buf := NewBufferedEmitter(8)
		obs := NewDecisionObserver(buf)

		d := inspect.Decision{
			Verdict: inspect.Reject,
			Kind:    inspect.KindXSS,
			RuleID:  "html-tags",
		}
		obs.ObserveDecision(context.Background(), inspect.Request{ID: "req-2"}, d, 30)

		events := buf.Events(Filter{Msg: MsgReject})
		if len(events) != 1 {
			t.Fatalf("expected 1 reject event, got %d", len(events))
		}
		if events[0].Meta["kind"] != string(inspect.KindXSS) {
			t.Errorf("kind = %v, want %q", events[0].Meta["kind"], inspect.KindXSS)
		}
		if events[0].Meta["rule_id"] != "html-tags" {
			t.Errorf("rule_id = %v, want %q", events[0].Meta["rule_id"], "html-tags")
		}
	})

	t.Run("nil emitter falls back to null", func(t *testing.T) {
		obs := NewDecisionObserver(nil)
		obs.ObserveDecision(context.Background(), inspect.Request{}, inspect.Decision{}, 0)
	})
}

// TestDecisionObserver_WithValidator verifies the full wiring through
// inspect.WithObserver.
func TestDecisionObserver_WithValidator(t *testing.T) {
	buf := NewBufferedEmitter(8)
	v := inspect.MustNew(inspect.WithObserver(NewDecisionObserver(buf)))

	v.InspectRequest(context.Background(), inspect.Request{ID: "r1", Path: "/submit"}, []byte("; DROP"))
	v.InspectRequest(context.Background(), inspect.Request{ID: "r2", Path: "/submit"}, []byte("fine"))

	if got := len(buf.Events(Filter{Msg: MsgReject})); got != 1 {
		t.Errorf("reject events = %d, want 1", got)
	}
	if got := len(buf.Events(Filter{Msg: MsgAccept})); got != 1 {
		t.Errorf("accept events = %d, want 1", got)
	}
}
