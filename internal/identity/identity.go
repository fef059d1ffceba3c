// Package identity assigns each browser a dashboard device session.
package identity

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/store"
	"github.com/ashureev/joblink/internal/views"
)

const (
	ShellCookieName = "joblink_shell_id"
	shellCookieAge  = 30 * 24 * time.Hour
)

type contextKey int

const sessionIDKey contextKey = iota

var shellIDPattern = regexp.MustCompile(`^shell_[a-f0-9]{32}$`)

// SessionIDFromContext extracts the device session id from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID stores a device session id in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func generateShellID() string {
	return "shell_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValidShellID reports whether id has the shape of a generated session id.
func IsValidShellID(id string) bool {
	return shellIDPattern.MatchString(id)
}

func setShellCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ShellCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(shellCookieAge.Seconds()),
		Expires:  time.Now().Add(shellCookieAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

func getOrCreateShellID(w http.ResponseWriter, r *http.Request, secure bool) string {
	id := ""
	if c, err := r.Cookie(ShellCookieName); err == nil && IsValidShellID(c.Value) {
		id = c.Value
	} else {
		id = generateShellID()
	}
	// Refresh the expiry on every visit.
	setShellCookie(w, id, secure)
	return id
}

// ensureSession touches an existing record or creates a new one on the
// default view. created reports which happened.
func ensureSession(ctx context.Context, repo store.Repository, id string) (created bool, err error) {
	sess, err := repo.GetShellSession(ctx, id)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if sess != nil {
		return false, repo.UpdateLastSeen(ctx, id, now)
	}
	return true, repo.UpsertShellSession(ctx, &domain.ShellSession{
		SessionID:  id,
		ActiveView: string(views.Default),
		LastSeenAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// Middleware injects the device session id and keeps its record alive.
func Middleware(repo store.Repository, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := getOrCreateShellID(w, r, secure)

			created, err := ensureSession(r.Context(), repo, id)
			if err != nil {
				slog.Error("Failed to initialize dashboard session", "error", err, "session_id", id)
				http.Error(w, `{"error":"failed to initialize dashboard session"}`, http.StatusInternalServerError)
				return
			}
			if created {
				slog.Info("Dashboard session created", "session_id", id, "ip", clientIP(r))
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// clientIP is the remote address without its port. Behind chi's RealIP the
// address is already bare and is returned as is.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
