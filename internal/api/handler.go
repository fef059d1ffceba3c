// Package api provides HTTP handlers for the JobLink dashboard.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/live"
	"github.com/ashureev/joblink/internal/shell"
)

// Handler provides common handler utilities.
type Handler struct {
	mgr     *shell.Manager
	hub     *live.Hub
	cookies credential.CookieOptions
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(mgr *shell.Manager, hub *live.Hub, cookies credential.CookieOptions) *Handler {
	return &Handler{
		mgr:     mgr,
		hub:     hub,
		cookies: cookies,
	}
}

// credentials binds the session credential store to one HTTP exchange.
func (h *Handler) credentials(w http.ResponseWriter, r *http.Request) *credential.CookieStore {
	return credential.NewCookieStore(w, r, h.cookies)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
