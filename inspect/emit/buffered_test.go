package emit

import (
	"fmt"
	"sync"
	"testing"
)

// TestBufferedEmitter_CaptureAndFilter verifies capture and query filtering.
func TestBufferedEmitter_CaptureAndFilter(t *testing.T) {
	emitter := NewBufferedEmitter(16)

	emitter.Emit(Event{RequestID: "a", Path: "/submit", Msg: MsgAccept})
	emitter.Emit(Event{RequestID: "b", Path: "/submit", Msg: MsgReject})
	emitter.Emit(Event{RequestID: "c", Path: "/other", Msg: MsgReject})

	if emitter.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", emitter.Len())
	}

	t.Run("filter by msg", func(t *testing.T) {
		rejects := emitter.Events(Filter{Msg: MsgReject})
		if len(rejects) != 2 {
			t.Errorf("rejects = %d, want 2", len(rejects))
		}
	})

	t.Run("filter by path and msg", func(t *testing.T) {
		got := emitter.Events(Filter{Path: "/submit", Msg: MsgReject})
		if len(got) != 1 || got[0].RequestID != "b" {
			t.Errorf("got %+v, want single event for request b", got)
		}
	})

	t.Run("filter by request id", func(t *testing.T) {
		got := emitter.Events(Filter{RequestID: "c"})
		if len(got) != 1 || got[0].Path != "/other" {
			t.Errorf("got %+v, want single event for request c", got)
		}
	})

	t.Run("empty filter returns all", func(t *testing.T) {
		if got := emitter.Events(Filter{}); len(got) != 3 {
			t.Errorf("got %d events, want 3", len(got))
		}
	})
}

// TestBufferedEmitter_DropOldest verifies the capacity bound evicts oldest
// events first.
func TestBufferedEmitter_DropOldest(t *testing.T) {
	emitter := NewBufferedEmitter(3)

	for i := 0; i < 5; i++ {
		emitter.Emit(Event{RequestID: fmt.Sprintf("req-%d", i), Msg: MsgAccept})
	}

	if emitter.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", emitter.Len())
	}
	if emitter.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", emitter.Dropped())
	}

	events := emitter.Events(Filter{})
	if events[0].RequestID != "req-2" || events[2].RequestID != "req-4" {
		t.Errorf("unexpected retained window: %+v", events)
	}
}

// TestBufferedEmitter_Clear verifies Clear empties the buffer but keeps the
// drop counter.
func TestBufferedEmitter_Clear(t *testing.T) {
	emitter := NewBufferedEmitter(1)
	emitter.Emit(Event{RequestID: "a"})
	emitter.Emit(Event{RequestID: "b"})

	emitter.Clear()

	if emitter.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", emitter.Len())
	}
	if emitter.Dropped() != 1 {
		t.Errorf("Dropped() = %d after Clear, want 1", emitter.Dropped())
	}
}

// TestBufferedEmitter_Concurrent exercises concurrent emit and query.
func TestBufferedEmitter_Concurrent(t *testing.T) {
	emitter := NewBufferedEmitter(128)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				emitter.Emit(Event{RequestID: fmt.Sprintf("g%d-%d", n, j), Msg: MsgAccept})
				_ = emitter.Events(Filter{Msg: MsgAccept})
			}
		}(i)
	}
	wg.Wait()

	if emitter.Len() != 128 {
		t.Errorf("Len() = %d, want full buffer 128", emitter.Len())
	}
	if emitter.Dropped() != 400-128 {
		t.Errorf("Dropped() = %d, want %d", emitter.Dropped(), 400-128)
	}
}

// TestNullEmitter verifies the no-op emitter accepts events silently.
func TestNullEmitter(t *testing.T) {
	emitter := NewNullEmitter()
	emitter.Emit(Event{RequestID: "ignored", Msg: MsgReject})
}
