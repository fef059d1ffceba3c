//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/identity"
	"github.com/ashureev/joblink/internal/live"
	"github.com/ashureev/joblink/internal/session"
	"github.com/ashureev/joblink/internal/shell"
	"github.com/ashureev/joblink/internal/store"
	"github.com/ashureev/joblink/internal/views"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusUnauthorized, "nope")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), `"error":"nope"`) {
		t.Errorf("Unexpected body %q", w.Body.String())
	}
}

type testEnv struct {
	router http.Handler
	repo   store.Repository
	mgr    *shell.Manager
	hub    *live.Hub
	calls  *atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	calls := &atomic.Int32{}
	ids := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != session.MePath || r.Header.Get("Authorization") != "Bearer valid" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"user":{"id":7,"email":"alice@example.com","name":"Alice","skills":["go"],"email_verified":true}}`)
	}))
	t.Cleanup(ids.Close)

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	resolver := session.NewResolver(ids.URL, nil, nil)
	mgr := shell.NewManager(context.Background(), views.DefaultCatalog(), resolver.Resolve, repo, shell.Options{})
	t.Cleanup(mgr.Close)
	hub := live.NewHub()

	r := chi.NewRouter()
	r.Use(identity.Middleware(repo, false))
	NewDashboardHandler(NewHandler(mgr, hub, credential.CookieOptions{})).RegisterRoutes(r)
	NewHealthHandler(repo, mgr).RegisterHealth(r)

	return &testEnv{router: r, repo: repo, mgr: mgr, hub: hub, calls: calls}
}

// do sends a request carrying the given cookies and returns the recorder.
func (e *testEnv) do(method, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func shellCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == identity.ShellCookieName {
			return c
		}
	}
	t.Fatal("Expected a shell session cookie")
	return nil
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var token = &http.Cookie{Name: credential.TokenKey, Value: "valid"}

func TestDashboardPageMountsAndResolves(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, shell.DashboardPath, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML, got %q", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.Contains(body, `id="shell"`) {
		t.Errorf("Expected full document, got %s", body)
	}

	sid := shellCookie(t, w)
	sh := env.mgr.Get(sid.Value)
	if sh == nil {
		t.Fatal("Expected a shell for the session")
	}
	sh.Wait()

	content := env.do(http.MethodGet, shell.DashboardPath+"/content", sid, token)
	html := content.Body.String()
	if !strings.Contains(html, `data-avatar="">A</div>`) {
		t.Errorf("Expected avatar A after resolution, got %s", html)
	}
	if !strings.Contains(html, `data-active-view="home"`) {
		t.Errorf("Expected home view, got %s", html)
	}
	if n := env.calls.Load(); n != 1 {
		t.Errorf("Expected one identity call across requests, got %d", n)
	}
}

func TestDashboardReloadAfterLogin(t *testing.T) {
	env := newTestEnv(t)

	// The dashboard is opened before the login has stored a token.
	w := env.do(http.MethodGet, shell.DashboardPath)
	sid := shellCookie(t, w)
	sh := env.mgr.Get(sid.Value)
	if sh == nil {
		t.Fatal("Expected a shell for the session")
	}
	sh.Wait()
	if sh.User() != nil {
		t.Fatalf("Expected no user before login, got %+v", sh.User())
	}
	before := env.calls.Load()

	// Reloading with the token resolves the session again.
	env.do(http.MethodGet, shell.DashboardPath, sid, token)
	sh.Wait()
	if u := sh.User(); u == nil || u.Email != "alice@example.com" {
		t.Fatalf("Expected alice after reload, got %+v", u)
	}
	if n := env.calls.Load() - before; n != 1 {
		t.Errorf("Expected one identity call for the reload, got %d", n)
	}

	// A second reload with the same token is served from the shell.
	env.do(http.MethodGet, shell.DashboardPath, sid, token)
	sh.Wait()
	if n := env.calls.Load() - before; n != 1 {
		t.Errorf("Expected no identity call for an unchanged reload, got %d", n)
	}
}

func TestDashboardWithoutTokenShowsPlaceholder(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, shell.DashboardPath)
	sid := shellCookie(t, w)
	env.mgr.Get(sid.Value).Wait()

	html := env.do(http.MethodGet, shell.DashboardPath+"/content", sid).Body.String()
	if !strings.Contains(html, `data-avatar="">U</div>`) {
		t.Errorf("Expected placeholder avatar, got %s", html)
	}
}

func TestNavigateInShell(t *testing.T) {
	env := newTestEnv(t)
	sid := shellCookie(t, env.do(http.MethodGet, shell.DashboardPath, token))

	w := env.do(http.MethodPost, shell.NavigatePath("applications"), sid, token)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != shell.DashboardPath {
		t.Fatalf("Expected 303 to dashboard, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if got := env.mgr.Get(sid.Value).Active(); got != views.Applications {
		t.Errorf("Expected applications, got %q", got)
	}

	rec, err := env.repo.GetShellSession(context.Background(), sid.Value)
	if err != nil || rec == nil || rec.ActiveView != "applications" {
		t.Errorf("Expected persisted applications view, got %+v (%v)", rec, err)
	}
}

func TestNavigateExternalResume(t *testing.T) {
	env := newTestEnv(t)
	sid := shellCookie(t, env.do(http.MethodGet, shell.DashboardPath, token))
	env.do(http.MethodPost, shell.NavigatePath("saved"), sid, token)

	w := env.do(http.MethodPost, shell.NavigatePath(views.ResumeID), sid, token)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != shell.DefaultResumePath {
		t.Fatalf("Expected 303 to resume builder, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if got := env.mgr.Get(sid.Value).Active(); got != views.Saved {
		t.Errorf("Expected active view unchanged, got %q", got)
	}
}

func TestNavigateUnknownFallsBackHome(t *testing.T) {
	env := newTestEnv(t)
	sid := shellCookie(t, env.do(http.MethodGet, shell.DashboardPath, token))
	env.do(http.MethodPost, shell.NavigatePath("profile"), sid, token)

	env.do(http.MethodPost, shell.NavigatePath("does-not-exist"), sid, token)
	if got := env.mgr.Get(sid.Value).Active(); got != views.Home {
		t.Errorf("Expected home for unknown id, got %q", got)
	}
}

func TestRefreshReResolves(t *testing.T) {
	env := newTestEnv(t)
	sid := shellCookie(t, env.do(http.MethodGet, shell.DashboardPath, token))
	sh := env.mgr.Get(sid.Value)
	sh.Wait()
	first := sh.User()

	w := env.do(http.MethodPost, views.RefreshPath, sid, token)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", w.Code)
	}
	sh.Wait()

	if second := sh.User(); second == nil || second == first {
		t.Errorf("Expected a new user reference after refresh, got %p then %p", first, second)
	}
	if n := env.calls.Load(); n != 2 {
		t.Errorf("Expected 2 identity calls, got %d", n)
	}
}

func TestLogoutClearsCredentialsAndSession(t *testing.T) {
	env := newTestEnv(t)
	sid := shellCookie(t, env.do(http.MethodGet, shell.DashboardPath, token))
	sh := env.mgr.Get(sid.Value)

	w := env.do(http.MethodPost, shell.LogoutPath, sid, token, &http.Cookie{Name: credential.UserTypeKey, Value: "jobseeker"})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("Expected 303 to /, got %d %q", w.Code, w.Header().Get("Location"))
	}

	for _, key := range credential.Keys {
		c := findCookie(w, key)
		if c == nil || c.MaxAge >= 0 || c.Value != "" {
			t.Errorf("Expected %s cookie cleared, got %+v", key, c)
		}
	}
	if !sh.Closed() {
		t.Error("Expected shell torn down")
	}
	if rec, _ := env.repo.GetShellSession(context.Background(), sid.Value); rec != nil {
		t.Errorf("Expected persisted session removed, got %+v", rec)
	}
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t)
	sid := shellCookie(t, env.do(http.MethodGet, shell.DashboardPath, token))
	env.mgr.Get(sid.Value).Wait()

	w := env.do(http.MethodGet, "/api/shell", sid, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got struct {
		SessionID       string `json:"session_id"`
		ActiveView      string `json:"active_view"`
		Initial         string `json:"initial"`
		ProfileStrength struct {
			Percent int `json:"percent"`
		} `json:"profile_strength"`
		User *struct {
			Email string `json:"email"`
		} `json:"user"`
		Navigation []struct {
			ID       string `json:"id"`
			External bool   `json:"external"`
			Slot     string `json:"slot"`
			Active   bool   `json:"active"`
		} `json:"navigation"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode snapshot: %v", err)
	}

	if got.SessionID != sid.Value || got.ActiveView != "home" || got.Initial != "A" {
		t.Errorf("Unexpected snapshot header: %+v", got)
	}
	if got.User == nil || got.User.Email != "alice@example.com" {
		t.Errorf("Expected resolved user, got %+v", got.User)
	}
	// Verified email and skills, no resume.
	if got.ProfileStrength.Percent != 80 {
		t.Errorf("Expected strength 80, got %d", got.ProfileStrength.Percent)
	}
	if len(got.Navigation) != len(views.Entries()) {
		t.Fatalf("Expected %d entries, got %d", len(views.Entries()), len(got.Navigation))
	}
	for _, n := range got.Navigation {
		if n.Active != (n.ID == "home") {
			t.Errorf("Unexpected active flag on %s", n.ID)
		}
		if n.ID == views.ResumeID && !n.External {
			t.Error("Expected resume entry to be external")
		}
		if n.ID == "messages" && n.Slot != "topbar" {
			t.Errorf("Expected messages in the top bar, got %q", n.Slot)
		}
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var got map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "healthy" {
		t.Errorf("Expected healthy, got %v", got["status"])
	}
}

func TestMissingSessionIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	h := NewDashboardHandler(NewHandler(env.mgr, env.hub, credential.CookieOptions{}))

	for _, fn := range []http.HandlerFunc{h.Page, h.Logout, h.Snapshot} {
		w := httptest.NewRecorder()
		fn(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 without a session, got %d", w.Code)
		}
	}
}
