package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store.
//
// It keeps the audit trail in a single-file database. Designed for:
//   - Development and testing with zero setup
//   - Single-process gateways
//   - Deployments where the trail must survive restarts without a
//     database server
//
// SQLiteStore uses WAL mode for concurrent reads and auto-migrates its
// schema on first use.
//
// Schema:
//   - audit_decisions: one row per inspected request
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore creates a new SQLite-backed store.
//
// The path parameter specifies the database file location:
//   - "./audit.db" - file in current directory
//   - ":memory:" - in-memory database (data lost on close)
//
// The store automatically creates the file, the schema, and enables WAL
// mode with a busy timeout.
//
// Example:
//
//	st, err := store.NewSQLiteStore("./audit.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	st := &SQLiteStore{db: db, path: path}
	if err := st.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return st, nil
}

// createTables creates the schema if it doesn't exist.
func (s *SQLiteStore) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS audit_decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			verdict TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT '',
			rule_id TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '',
			remote TEXT NOT NULL DEFAULT '',
			body_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create audit_decisions table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_decisions(kind)"); err != nil {
		return fmt.Errorf("failed to create idx_audit_kind: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_decisions(created_at)"); err != nil {
		return fmt.Errorf("failed to create idx_audit_created: %w", err)
	}

	return nil
}

// SaveDecision persists one record (implements Store).
//
// Thread-safe for concurrent writes.
func (s *SQLiteStore) SaveDecision(ctx context.Context, rec Record) error {
	if err := s.guard(); err != nil {
		return err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO audit_decisions (request_id, verdict, kind, rule_id, path, remote, body_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.RequestID, rec.Verdict, rec.Kind, rec.RuleID, rec.Path, rec.Remote, rec.BodyBytes,
		createdAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first (implements Store).
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, request_id, verdict, kind, rule_id, path, remote, body_bytes, created_at
		FROM audit_decisions
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Verdict, &rec.Kind,
			&rec.RuleID, &rec.Path, &rec.Remote, &rec.BodyBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decision rows: %w", err)
	}

	return records, nil
}

// FindByRequestID returns the record for one request (implements Store).
//
// Returns ErrNotFound for unknown request IDs. When a request ID was
// recorded more than once, the newest record wins.
func (s *SQLiteStore) FindByRequestID(ctx context.Context, requestID string) (Record, error) {
	if err := s.guard(); err != nil {
		return Record{}, err
	}

	query := `
		SELECT id, request_id, verdict, kind, rule_id, path, remote, body_bytes, created_at
		FROM audit_decisions
		WHERE request_id = ?
		ORDER BY id DESC
		LIMIT 1
	`
	var rec Record
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, requestID).Scan(
		&rec.ID, &rec.RequestID, &rec.Verdict, &rec.Kind,
		&rec.RuleID, &rec.Path, &rec.Remote, &rec.BodyBytes, &createdAt)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load decision: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return rec, nil
}

// CountByKind returns persisted decision counts per kind (implements Store).
func (s *SQLiteStore) CountByKind(ctx context.Context) (map[string]int, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM audit_decisions GROUP BY kind")
	if err != nil {
		return nil, fmt.Errorf("failed to count decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating count rows: %w", err)
	}

	return counts, nil
}

// Ping verifies the database connection is alive (implements Store).
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection (implements Store).
//
// Calling Close multiple times is safe.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the database file path. Useful for debugging and logging.
func (s *SQLiteStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

func (s *SQLiteStore) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}
