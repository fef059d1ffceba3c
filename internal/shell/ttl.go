package shell

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/joblink/internal/store"
)

// StartTTLWorker runs a background goroutine that periodically tears down
// shells whose device session has been idle for longer than ttl. onExpire,
// when set, is called with each expired session id after teardown.
func StartTTLWorker(ctx context.Context, repo store.Repository, mgr *Manager, ttl, interval time.Duration, onExpire func(sessionID string)) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				cleanupExpiredShells(ctx, repo, mgr, ttl, onExpire)
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func cleanupExpiredShells(ctx context.Context, repo store.Repository, mgr *Manager, ttl time.Duration, onExpire func(string)) int {
	expired, err := repo.GetExpiredShellSessions(ctx, ttl)
	if err != nil {
		slog.Error("TTL worker failed to get expired shell sessions", "error", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	slog.Info("TTL worker found expired shell sessions", "count", len(expired))
	now := time.Now()
	for _, sess := range expired {
		slog.Info("Expiring idle shell", "session_id", sess.SessionID, "idle", sess.IdleFor(now).Round(time.Second))
		mgr.Teardown(ctx, sess.SessionID)
		if onExpire != nil {
			onExpire(sess.SessionID)
		}
	}
	slog.Info("TTL worker cleanup completed", "cleaned", len(expired))
	return len(expired)
}
