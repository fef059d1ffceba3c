// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/joblink/internal/domain"
)

// Repository persists dashboard shell sessions.
type Repository interface {
	// GetShellSession retrieves a shell session by id. It returns nil, nil
	// when the session does not exist.
	GetShellSession(ctx context.Context, sessionID string) (*domain.ShellSession, error)

	// UpsertShellSession creates or updates a shell session record.
	UpsertShellSession(ctx context.Context, session *domain.ShellSession) error

	// UpdateActiveView records the active view of a shell session.
	UpdateActiveView(ctx context.Context, sessionID, view string) error

	// UpdateLastSeen updates the last_seen_at timestamp of a shell session.
	UpdateLastSeen(ctx context.Context, sessionID string, lastSeen time.Time) error

	// DeleteShellSession removes a shell session.
	DeleteShellSession(ctx context.Context, sessionID string) error

	// GetExpiredShellSessions retrieves sessions idle for longer than ttl.
	GetExpiredShellSessions(ctx context.Context, ttl time.Duration) ([]*domain.ShellSession, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
