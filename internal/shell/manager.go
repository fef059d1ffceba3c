package shell

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ashureev/joblink/internal/session"
	"github.com/ashureev/joblink/internal/store"
	"github.com/ashureev/joblink/internal/views"
)

// Manager keeps one shell per device session.
type Manager struct {
	base    context.Context
	catalog views.Catalog
	resolve session.ResolveFunc
	repo    store.Repository
	opts    Options

	mu     sync.RWMutex
	shells map[string]*Shell
}

// NewManager creates a manager. Shells resolve sessions on contexts derived
// from ctx. repo may be nil, in which case nothing is persisted.
func NewManager(ctx context.Context, catalog views.Catalog, resolve session.ResolveFunc, repo store.Repository, opts Options) *Manager {
	return &Manager{
		base:    ctx,
		catalog: catalog,
		resolve: resolve,
		repo:    repo,
		opts:    opts,
		shells:  make(map[string]*Shell),
	}
}

// Acquire returns the live shell for sessionID, creating it when there is
// none or the previous one was torn down. New shells restore the persisted
// active view.
func (m *Manager) Acquire(ctx context.Context, sessionID string) *Shell {
	m.mu.RLock()
	sh, ok := m.shells[sessionID]
	m.mu.RUnlock()
	if ok && !sh.Closed() {
		return sh
	}

	restored := ""
	if m.repo != nil {
		rec, err := m.repo.GetShellSession(ctx, sessionID)
		if err != nil {
			slog.Warn("Failed to load shell session", "session_id", sessionID, "error", err)
		} else if rec != nil {
			restored = rec.ActiveView
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sh, ok := m.shells[sessionID]; ok && !sh.Closed() {
		return sh
	}

	opts := m.opts
	opts.OnSelect = func(id views.ViewID) {
		m.persistView(sessionID, id)
	}
	sh = New(m.base, sessionID, m.catalog, m.resolve, opts)
	if restored != "" {
		sh.Restore(restored)
	}
	m.shells[sessionID] = sh
	slog.Info("Shell created", "session_id", sessionID, "active_view", sh.Active())
	return sh
}

// Get returns the live shell for sessionID or nil.
func (m *Manager) Get(sessionID string) *Shell {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sh, ok := m.shells[sessionID]
	if !ok || sh.Closed() {
		return nil
	}
	return sh
}

// Teardown removes the shell for sessionID and deletes its persisted state.
func (m *Manager) Teardown(ctx context.Context, sessionID string) {
	m.mu.Lock()
	sh, ok := m.shells[sessionID]
	delete(m.shells, sessionID)
	m.mu.Unlock()

	if ok {
		sh.Teardown()
	}
	if m.repo != nil {
		if err := m.repo.DeleteShellSession(ctx, sessionID); err != nil {
			slog.Warn("Failed to delete shell session", "session_id", sessionID, "error", err)
		}
	}
	slog.Info("Shell torn down", "session_id", sessionID)
}

// Len returns the number of live shells.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shells)
}

// Close tears down every shell without touching persisted state.
func (m *Manager) Close() {
	m.mu.Lock()
	shells := m.shells
	m.shells = make(map[string]*Shell)
	m.mu.Unlock()

	for _, sh := range shells {
		sh.Teardown()
	}
}

func (m *Manager) persistView(sessionID string, id views.ViewID) {
	if m.repo == nil {
		return
	}
	if err := m.repo.UpdateActiveView(m.base, sessionID, string(id)); err != nil {
		slog.Warn("Failed to persist active view", "session_id", sessionID, "view", id, "error", err)
	}
}
