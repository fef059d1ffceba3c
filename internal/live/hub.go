// Package live pushes dashboard shell updates to browsers over WebSocket.
package live

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Hub tracks open WebSocket connections per device session and tab.
type Hub struct {
	mu     sync.RWMutex
	active map[string]map[string]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		active: make(map[string]map[string]*websocket.Conn),
	}
}

// Count returns the number of open tabs for a session.
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.active[sessionID])
}

// Register adds a connection, replacing any previous one for the same tab.
func (h *Hub) Register(sessionID, tabID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.active[sessionID]; !exists {
		h.active[sessionID] = make(map[string]*websocket.Conn)
	}

	if existing, exists := h.active[sessionID][tabID]; exists && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "tab replaced")
	}

	h.active[sessionID][tabID] = conn
	slog.Debug("Live connection registered", "session_id", sessionID, "tab_id", tabID)
}

// Unregister removes a connection if it is still the current one for its tab.
func (h *Hub) Unregister(sessionID, tabID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tabs, ok := h.active[sessionID]; ok {
		if current, exists := tabs[tabID]; exists && current == conn {
			delete(tabs, tabID)
			if len(tabs) == 0 {
				delete(h.active, sessionID)
			}
			slog.Debug("Live connection unregistered", "session_id", sessionID, "tab_id", tabID)
		}
	}
}

// CloseSession closes every connection of a device session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	tabs, ok := h.active[sessionID]
	delete(h.active, sessionID)
	h.mu.Unlock()

	if !ok {
		return
	}
	for tabID, conn := range tabs {
		_ = conn.Close(websocket.StatusNormalClosure, "session closed")
		slog.Info("Live connection closed", "session_id", sessionID, "tab_id", tabID)
	}
}
