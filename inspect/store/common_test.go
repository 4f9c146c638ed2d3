package store

import (
	"context"
	"fmt"
	"testing"
)

// runStoreContract exercises the Store interface behaviors shared by all
// backends.
func runStoreContract(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and list newest first", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			rec := Record{
				RequestID: fmt.Sprintf("req-%d", i),
				Verdict:   "reject",
				Kind:      "sql_injection_suspected",
				RuleID:    "sql-tokens",
				Path:      "/submit",
				Remote:    "10.0.0.1",
				BodyBytes: 10 + i,
			}
			if err := st.SaveDecision(ctx, rec); err != nil {
				t.Fatalf("SaveDecision failed: %v", err)
			}
		}

		records, err := st.ListRecent(ctx, 3)
		if err != nil {
			t.Fatalf("ListRecent failed: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("ListRecent returned %d records, want 3", len(records))
		}
		if records[0].RequestID != "req-4" {
			t.Errorf("newest record = %q, want req-4", records[0].RequestID)
		}
		if records[0].CreatedAt.IsZero() {
			t.Error("CreatedAt not assigned")
		}
		if records[0].ID == 0 {
			t.Error("ID not assigned")
		}
	})

	t.Run("list with zero limit", func(t *testing.T) {
		records, err := st.ListRecent(ctx, 0)
		if err != nil {
			t.Fatalf("ListRecent(0) failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("ListRecent(0) returned %d records, want 0", len(records))
		}
	})

	t.Run("count by kind", func(t *testing.T) {
		if err := st.SaveDecision(ctx, Record{RequestID: "req-ok", Verdict: "accept"}); err != nil {
			t.Fatalf("SaveDecision failed: %v", err)
		}
		if err := st.SaveDecision(ctx, Record{
			RequestID: "req-xss", Verdict: "reject", Kind: "xss_suspected", RuleID: "html-tags",
		}); err != nil {
			t.Fatalf("SaveDecision failed: %v", err)
		}

		counts, err := st.CountByKind(ctx)
		if err != nil {
			t.Fatalf("CountByKind failed: %v", err)
		}
		if counts["sql_injection_suspected"] != 5 {
			t.Errorf("sql count = %d, want 5", counts["sql_injection_suspected"])
		}
		if counts["xss_suspected"] != 1 {
			t.Errorf("xss count = %d, want 1", counts["xss_suspected"])
		}
		if counts[""] != 1 {
			t.Errorf("accept count = %d, want 1", counts[""])
		}
	})

	t.Run("find by request id", func(t *testing.T) {
		rec, err := st.FindByRequestID(ctx, "req-xss")
		if err != nil {
			t.Fatalf("FindByRequestID failed: %v", err)
		}
		if rec.Kind != "xss_suspected" {
			t.Errorf("kind = %q, want xss_suspected", rec.Kind)
		}

		if _, err := st.FindByRequestID(ctx, "no-such-request"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ping while open", func(t *testing.T) {
		if err := st.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("operations after close fail", func(t *testing.T) {
		if err := st.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := st.Close(); err != nil {
			t.Errorf("double Close should be a no-op, got: %v", err)
		}
		if err := st.SaveDecision(ctx, Record{RequestID: "late"}); err == nil {
			t.Error("SaveDecision after Close should fail")
		}
		if _, err := st.ListRecent(ctx, 1); err == nil {
			t.Error("ListRecent after Close should fail")
		}
		if err := st.Ping(ctx); err == nil {
			t.Error("Ping after Close should fail")
		}
	})
}
