package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	g "maragu.dev/gomponents"

	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/identity"
	"github.com/ashureev/joblink/internal/shell"
	"github.com/ashureev/joblink/internal/store"
)

// Message types sent to the browser.
const (
	TypeShell  = "shell"
	TypeClosed = "closed"
)

const (
	writeTimeout = 5 * time.Second
	maxTabIDLen  = 64
	// An open tab keeps its device session alive at this rate.
	touchInterval = time.Minute
)

// Message is the push payload. HTML replaces the #shell element.
type Message struct {
	Type string `json:"type"`
	HTML string `json:"html,omitempty"`
	View string `json:"view,omitempty"`
}

// WebSocketHandler streams re-rendered shell chrome whenever the shell changes.
type WebSocketHandler struct {
	mgr           *shell.Manager
	hub           *Hub
	repo          store.Repository
	cookies       credential.CookieOptions
	allowedOrigin string
	isDev         bool
	touchEvery    time.Duration
}

// NewWebSocketHandler creates a new WebSocket handler. repo, when set, has
// the session's last-seen time refreshed while a tab stays connected, so the
// TTL worker does not expire a dashboard that is still open.
func NewWebSocketHandler(mgr *shell.Manager, hub *Hub, repo store.Repository, cookies credential.CookieOptions, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		mgr:           mgr,
		hub:           hub,
		repo:          repo,
		cookies:       cookies,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		touchEvery:    touchInterval,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	sh := h.mgr.Acquire(r.Context(), sessionID)
	// A socket opened before the page mounted the shell still resolves the session.
	sh.Mount(credential.NewCookieStore(w, r, h.cookies))

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	tabID := tabIDFromRequest(r)
	h.hub.Register(sessionID, tabID, ws)
	defer h.hub.Unregister(sessionID, tabID, ws)

	events, unsubscribe := sh.Subscribe()
	defer unsubscribe()

	// The browser never sends anything; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := ws.CloseRead(r.Context())

	h.touch(ctx, sessionID)
	if err := h.push(ctx, ws, sh); err != nil {
		slog.Debug("Initial push failed", "error", err, "session_id", sessionID)
		return
	}

	ticker := time.NewTicker(h.touchEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.touch(ctx, sessionID)
		case _, ok := <-events:
			if !ok {
				if err := writeJSON(ctx, ws, Message{Type: TypeClosed}); err != nil {
					slog.Debug("Failed to send closed message", "error", err, "session_id", sessionID)
				}
				return
			}
			if err := h.push(ctx, ws, sh); err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Debug("Push failed", "error", err, "session_id", sessionID)
				}
				return
			}
		case <-ctx.Done():
			slog.Debug("Live connection ended", "session_id", sessionID, "tab_id", tabID)
			return
		}
	}
}

func (h *WebSocketHandler) touch(ctx context.Context, sessionID string) {
	if h.repo == nil {
		return
	}
	if err := h.repo.UpdateLastSeen(ctx, sessionID, time.Now()); err != nil {
		slog.Warn("Failed to touch live session", "error", err, "session_id", sessionID)
	}
}

func (h *WebSocketHandler) push(ctx context.Context, ws *websocket.Conn, sh *shell.Shell) error {
	markup, err := renderString(sh.Render())
	if err != nil {
		return err
	}
	return writeJSON(ctx, ws, Message{Type: TypeShell, HTML: markup, View: string(sh.Active())})
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func tabIDFromRequest(r *http.Request) string {
	tab := strings.TrimSpace(r.URL.Query().Get("tab"))
	if tab == "" || len(tab) > maxTabIDLen {
		return uuid.NewString()
	}
	return tab
}

func renderString(n g.Node) (string, error) {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
