package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository. The special path
// ":memory:" opens a private in-memory database.
func NewSQLite(dbPath string) (Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// WAL mode for concurrent readers during writes.
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS shell_sessions (
		session_id TEXT PRIMARY KEY,
		active_view TEXT NOT NULL DEFAULT 'home',
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shell_sessions_last_seen ON shell_sessions(last_seen_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetShellSession retrieves a shell session by id.
func (s *SQLiteStore) GetShellSession(ctx context.Context, sessionID string) (*domain.ShellSession, error) {
	query := `
		SELECT session_id, active_view, last_seen_at, created_at, updated_at
		FROM shell_sessions WHERE session_id = ?`

	var sess domain.ShellSession
	var lastSeen, createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&sess.SessionID, &sess.ActiveView, &lastSeen, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan shell session row: %w", err)
	}

	sess.LastSeenAt = time.Unix(lastSeen, 0)
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)
	return &sess, nil
}

// UpsertShellSession creates or updates a shell session record.
func (s *SQLiteStore) UpsertShellSession(ctx context.Context, sess *domain.ShellSession) error {
	query := `
	INSERT INTO shell_sessions (session_id, active_view, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		active_view = excluded.active_view,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	return withRetry(ctx, "upsert shell session", func() error {
		_, err := s.db.ExecContext(ctx, query,
			sess.SessionID, sess.ActiveView,
			sess.LastSeenAt.Unix(), sess.CreatedAt.Unix(), sess.UpdatedAt.Unix(),
		)
		return err
	})
}

// UpdateActiveView records the active view of a shell session.
func (s *SQLiteStore) UpdateActiveView(ctx context.Context, sessionID, view string) error {
	now := time.Now().Unix()
	return withRetry(ctx, "update active view", func() error {
		_, err := s.db.ExecContext(ctx,
			`UPDATE shell_sessions SET active_view = ?, last_seen_at = ?, updated_at = ? WHERE session_id = ?`,
			view, now, now, sessionID)
		return err
	})
}

// UpdateLastSeen updates the last_seen_at timestamp of a shell session.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, sessionID string, lastSeen time.Time) error {
	return withRetry(ctx, "update last seen", func() error {
		_, err := s.db.ExecContext(ctx,
			`UPDATE shell_sessions SET last_seen_at = ? WHERE session_id = ?`,
			lastSeen.Unix(), sessionID)
		return err
	})
}

// DeleteShellSession removes a shell session.
func (s *SQLiteStore) DeleteShellSession(ctx context.Context, sessionID string) error {
	return withRetry(ctx, "delete shell session", func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM shell_sessions WHERE session_id = ?`, sessionID)
		return err
	})
}

// GetExpiredShellSessions retrieves sessions idle for longer than ttl.
func (s *SQLiteStore) GetExpiredShellSessions(ctx context.Context, ttl time.Duration) ([]*domain.ShellSession, error) {
	cutoff := time.Now().Add(-ttl).Unix()
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, active_view, last_seen_at, created_at, updated_at
		FROM shell_sessions WHERE last_seen_at < ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query expired shell sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Debug("Failed to close rows", "error", closeErr)
		}
	}()

	var sessions []*domain.ShellSession
	for rows.Next() {
		var sess domain.ShellSession
		var lastSeen, createdAt, updatedAt int64
		if err := rows.Scan(&sess.SessionID, &sess.ActiveView, &lastSeen, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan shell session row: %w", err)
		}
		sess.LastSeenAt = time.Unix(lastSeen, 0)
		sess.CreatedAt = time.Unix(createdAt, 0)
		sess.UpdatedAt = time.Unix(updatedAt, 0)
		sessions = append(sessions, &sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shell session rows: %w", err)
	}
	return sessions, nil
}

// withRetry retries op with exponential backoff while SQLite reports lock
// contention.
func withRetry(ctx context.Context, what string, op func() error) error {
	const maxRetries = 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = op()
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}
		delay := baseDelay * time.Duration(1<<i) // 50ms, 100ms
		slog.Debug("Database locked, retrying", "op", what, "attempt", i+1, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", what, ctx.Err())
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
