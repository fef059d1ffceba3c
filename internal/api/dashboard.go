package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	g "maragu.dev/gomponents"

	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/identity"
	"github.com/ashureev/joblink/internal/shell"
	"github.com/ashureev/joblink/internal/views"
)

// PageTitle is the document title of the dashboard.
const PageTitle = "JobLink Dashboard"

// DashboardHandler serves the shell and dispatches its actions.
type DashboardHandler struct {
	*Handler
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *Handler) *DashboardHandler {
	return &DashboardHandler{Handler: base}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get(shell.DashboardPath, h.Page)
	r.Get(shell.DashboardPath+"/content", h.Content)
	r.Post(shell.NavigateBase+"{view}", h.Navigate)
	r.Post(views.RefreshPath, h.Refresh)
	r.Post(shell.LogoutPath, h.Logout)
	r.Get("/api/shell", h.Snapshot)
}

// httpNavigator answers a form post with a 303 to the target route.
type httpNavigator struct {
	w       http.ResponseWriter
	r       *http.Request
	written bool
}

func (n *httpNavigator) Navigate(path string) {
	n.written = true
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

func (n *httpNavigator) Redirect(path string) {
	n.written = true
	n.w.Header().Set("Cache-Control", "no-store")
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

func (h *DashboardHandler) shellFor(w http.ResponseWriter, r *http.Request) (*shell.Shell, bool) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		Error(w, http.StatusUnauthorized, "missing dashboard session")
		return nil, false
	}
	return h.mgr.Acquire(r.Context(), sessionID), true
}

// acquire returns the mounted shell of the requesting device session.
func (h *DashboardHandler) acquire(w http.ResponseWriter, r *http.Request) (*shell.Shell, bool) {
	sh, ok := h.shellFor(w, r)
	if ok {
		sh.Mount(h.credentials(w, r))
	}
	return sh, ok
}

// Page renders the full dashboard document. A page load counts as a mount:
// credentials that changed since the shell last resolved, for example after
// a login, are resolved again. The user may still be resolving; the live
// socket pushes the chrome again once it is known.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.shellFor(w, r)
	if !ok {
		return
	}
	sh.Reload(h.credentials(w, r))
	writeHTML(w, sh.Page(PageTitle))
}

// Content renders only the shell chrome, for clients that poll.
func (h *DashboardHandler) Content(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.acquire(w, r)
	if !ok {
		return
	}
	writeHTML(w, sh.Render())
}

// Navigate dispatches a navigation entry selection.
func (h *DashboardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.acquire(w, r)
	if !ok {
		return
	}

	nav := &httpNavigator{w: w, r: r}
	if err := sh.Navigate(chi.URLParam(r, "view"), nav); err != nil {
		if errors.Is(err, shell.ErrClosed) {
			http.Redirect(w, r, shell.DashboardPath, http.StatusSeeOther)
			return
		}
		slog.Error("Navigation failed", "error", err, "session_id", sh.ID())
		Error(w, http.StatusInternalServerError, "navigation failed")
		return
	}
	if !nav.written {
		http.Redirect(w, r, shell.DashboardPath, http.StatusSeeOther)
	}
}

// Refresh re-resolves the session with the current request's credentials.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.acquire(w, r)
	if !ok {
		return
	}
	sh.Refresh(h.credentials(w, r))
	http.Redirect(w, r, shell.DashboardPath, http.StatusSeeOther)
}

// Logout clears the session credentials, redirects to the root and discards
// the device session.
func (h *DashboardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		Error(w, http.StatusUnauthorized, "missing dashboard session")
		return
	}
	sh := h.mgr.Acquire(r.Context(), sessionID)
	sh.Logout(h.credentials(w, r), &httpNavigator{w: w, r: r})

	h.mgr.Teardown(r.Context(), sessionID)
	if h.hub != nil {
		h.hub.CloseSession(sessionID)
	}
}

type navItem struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	External bool   `json:"external,omitempty"`
	Slot     string `json:"slot"`
	Active   bool   `json:"active"`
}

type snapshot struct {
	SessionID       string         `json:"session_id"`
	ActiveView      string         `json:"active_view"`
	User            *domain.User   `json:"user"`
	Initial         string         `json:"initial"`
	ProfileStrength shell.Strength `json:"profile_strength"`
	Navigation      []navItem      `json:"navigation"`
	LiveConnections int            `json:"live_connections"`
}

// Snapshot returns the shell state as JSON.
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	sh, ok := h.acquire(w, r)
	if !ok {
		return
	}

	user := sh.User()
	active := sh.Active()
	entries := views.Entries()
	nav := make([]navItem, 0, len(entries))
	for _, e := range entries {
		slot := "sidebar"
		if e.Slot == views.SlotTopBar {
			slot = "topbar"
		}
		nav = append(nav, navItem{
			ID:       e.ID,
			Label:    e.Label,
			Icon:     e.Icon,
			External: e.External,
			Slot:     slot,
			Active:   !e.External && e.ID == string(active),
		})
	}

	conns := 0
	if h.hub != nil {
		conns = h.hub.Count(sh.ID())
	}

	JSON(w, http.StatusOK, snapshot{
		SessionID:       sh.ID(),
		ActiveView:      string(active),
		User:            user,
		Initial:         user.Initial(),
		ProfileStrength: shell.ProfileStrength(user),
		Navigation:      nav,
		LiveConnections: conns,
	})
}

func writeHTML(w http.ResponseWriter, n g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := n.Render(w); err != nil {
		slog.Error("Failed to render dashboard", "error", err)
	}
}
