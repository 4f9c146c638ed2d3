package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStore_Contract(t *testing.T) {
	st, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	runStoreContract(t, st)
}

// TestSQLiteStore_FileBacked verifies records survive reopening the file.
func TestSQLiteStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()

	st, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if st.Path() != path {
		t.Errorf("Path() = %q, want %q", st.Path(), path)
	}

	rec := Record{
		RequestID: "req-persist",
		Verdict:   "reject",
		Kind:      "xss_suspected",
		RuleID:    "html-tags",
		Path:      "/submit",
		BodyBytes: 27,
	}
	if err := st.SaveDecision(ctx, rec); err != nil {
		t.Fatalf("SaveDecision failed: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	records, err := reopened.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", len(records))
	}
	got := records[0]
	if got.RequestID != "req-persist" || got.Kind != "xss_suspected" || got.BodyBytes != 27 {
		t.Errorf("unexpected record after reopen: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt lost across reopen")
	}
}
