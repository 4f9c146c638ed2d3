package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store.
//
// It keeps the audit trail in a relational database. Designed for:
//   - Deployments where several gateway instances share one trail
//   - Long retention with external reporting tools
//   - Compliance requirements around rejected traffic
//
// MySQLStore uses connection pooling; writes are single-row inserts.
//
// Schema:
//   - audit_decisions: one row per inspected request
type MySQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a new MySQL-backed store.
//
// The DSN (Data Source Name) format is:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param1=value1&...]
//
// Example:
//
//	st, err := store.NewMySQLStore("gatewall:secret@tcp(localhost:3306)/gatewall?parseTime=true")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
// The DSN should include parseTime=true so created_at scans into time.Time.
// The store pings the server and auto-migrates its schema before returning.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	st := &MySQLStore{db: db}
	if err := st.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return st, nil
}

// createTables creates the schema if it doesn't exist.
func (s *MySQLStore) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS audit_decisions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			request_id VARCHAR(64) NOT NULL,
			verdict VARCHAR(16) NOT NULL,
			kind VARCHAR(64) NOT NULL DEFAULT '',
			rule_id VARCHAR(64) NOT NULL DEFAULT '',
			path VARCHAR(255) NOT NULL DEFAULT '',
			remote VARCHAR(64) NOT NULL DEFAULT '',
			body_bytes INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_audit_kind (kind),
			INDEX idx_audit_created (created_at)
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create audit_decisions table: %w", err)
	}
	return nil
}

// SaveDecision persists one record (implements Store).
func (s *MySQLStore) SaveDecision(ctx context.Context, rec Record) error {
	if err := s.guard(); err != nil {
		return err
	}

	query := `
		INSERT INTO audit_decisions (request_id, verdict, kind, rule_id, path, remote, body_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.RequestID, rec.Verdict, rec.Kind, rec.RuleID, rec.Path, rec.Remote, rec.BodyBytes)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first (implements Store).
func (s *MySQLStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
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
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Verdict, &rec.Kind,
			&rec.RuleID, &rec.Path, &rec.Remote, &rec.BodyBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision row: %w", err)
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
func (s *MySQLStore) FindByRequestID(ctx context.Context, requestID string) (Record, error) {
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
	err := s.db.QueryRowContext(ctx, query, requestID).Scan(
		&rec.ID, &rec.RequestID, &rec.Verdict, &rec.Kind,
		&rec.RuleID, &rec.Path, &rec.Remote, &rec.BodyBytes, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load decision: %w", err)
	}
	return rec, nil
}

// CountByKind returns persisted decision counts per kind (implements Store).
func (s *MySQLStore) CountByKind(ctx context.Context) (map[string]int, error) {
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
func (s *MySQLStore) Ping(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection (implements Store).
//
// Calling Close multiple times is safe.
func (s *MySQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *MySQLStore) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}
