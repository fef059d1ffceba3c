// Package credential provides the persisted key/value storage that holds the
// session token and user-type marker.
package credential

import (
	"net/http"
	"sync"
	"time"
)

// Storage keys shared with the login flow.
const (
	TokenKey    = "token"
	UserTypeKey = "userType"
)

// Keys lists every key owned by the dashboard.
var Keys = []string{TokenKey, UserTypeKey}

// Store is the persisted credential storage.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Clear(key string)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key or "".
func (m *MemoryStore) Get(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Clear removes key.
func (m *MemoryStore) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// Snapshot copies the dashboard keys out of src so they can be read after
// src is no longer valid (e.g. once an HTTP handler has returned).
func Snapshot(src Store) *MemoryStore {
	snap := NewMemoryStore()
	if src == nil {
		return snap
	}
	for _, key := range Keys {
		if v := src.Get(key); v != "" {
			snap.Set(key, v)
		}
	}
	return snap
}

// CookieStore is a Store bound to a single HTTP exchange. Reads see the
// request cookies plus any writes made through the store; writes are emitted
// as Set-Cookie headers.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	prefix  string
	secure  bool
	maxAge  time.Duration
	pending map[string]*string
}

// CookieOptions configures a CookieStore.
type CookieOptions struct {
	// Prefix is prepended to every key to form the cookie name.
	Prefix string
	Secure bool
	MaxAge time.Duration
}

// NewCookieStore binds a store to w and r.
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	return &CookieStore{
		w:       w,
		r:       r,
		prefix:  opts.Prefix,
		secure:  opts.Secure,
		maxAge:  opts.MaxAge,
		pending: make(map[string]*string),
	}
}

// CookieName returns the cookie name used for key.
func (c *CookieStore) CookieName(key string) string {
	return c.prefix + key
}

// Get returns the value for key or "".
func (c *CookieStore) Get(key string) string {
	if v, ok := c.pending[key]; ok {
		if v == nil {
			return ""
		}
		return *v
	}
	cookie, err := c.r.Cookie(c.CookieName(key))
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set writes key as an HTTP-only cookie.
func (c *CookieStore) Set(key, value string) {
	v := value
	c.pending[key] = &v
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.CookieName(key),
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.maxAge.Seconds()),
		Expires:  time.Now().Add(c.maxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
	})
}

// Clear expires the cookie for key.
func (c *CookieStore) Clear(key string) {
	c.pending[key] = nil
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.CookieName(key),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
	})
}
