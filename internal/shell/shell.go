// Package shell implements the dashboard shell: it owns the resolved user and
// the active view for one browser, dispatches navigation, and renders the
// chrome around the active view.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/metrics"
	"github.com/ashureev/joblink/internal/session"
	"github.com/ashureev/joblink/internal/views"
)

// Default navigation targets.
const (
	DefaultResumePath = "/resume-builder"
	DefaultRootPath   = "/"
)

// ErrClosed is returned when a torn-down shell is asked to navigate.
var ErrClosed = errors.New("shell is torn down")

// Navigator is the host application's router.
type Navigator interface {
	// Navigate moves to another route of the host application.
	Navigate(path string)
	// Redirect performs a full top-level navigation, discarding shell state.
	Redirect(path string)
}

// Options configures a Shell.
type Options struct {
	ResumePath string
	RootPath   string
	// ResolveTimeout bounds each session resolution; 0 means no bound.
	ResolveTimeout time.Duration
	// Notifications renders the notification panel; nil uses the bell.
	Notifications views.View
	// OnSelect is called after the active view changes. Calls are serialized
	// and a selection superseded before its call starts is skipped, so the
	// last call always carries the current view.
	OnSelect func(id views.ViewID)
	Metrics  *metrics.Metrics
}

// EventKind says what changed in a shell.
type EventKind string

// Shell events.
const (
	EventUser EventKind = "user"
	EventView EventKind = "view"
)

// Event notifies subscribers of a state change.
type Event struct {
	Kind EventKind
}

// Shell is one browser's dashboard. All methods are safe for concurrent use.
type Shell struct {
	id      string
	catalog views.Catalog
	opts    Options
	loader  *session.Loader

	mu        sync.Mutex
	user      *domain.User
	selector  *views.Selector
	creds     *credential.MemoryStore
	mounted   bool
	closed    bool
	subs      map[int]chan Event
	nextSub   int
	selectSeq uint64

	selectMu     sync.Mutex
	persistedSeq uint64
}

// New creates an unmounted shell. Resolutions run on contexts derived from
// ctx, which should outlive individual requests.
func New(ctx context.Context, id string, catalog views.Catalog, resolve session.ResolveFunc, opts Options) *Shell {
	if opts.ResumePath == "" {
		opts.ResumePath = DefaultResumePath
	}
	if opts.RootPath == "" {
		opts.RootPath = DefaultRootPath
	}
	if opts.Notifications == nil {
		opts.Notifications = views.ViewFunc(notificationBell)
	}
	s := &Shell{
		id:       id,
		catalog:  catalog,
		opts:     opts,
		selector: views.NewSelector(),
		creds:    credential.NewMemoryStore(),
		subs:     make(map[int]chan Event),
	}
	s.loader = session.NewLoader(ctx, resolve, s.commitUser, opts.ResolveTimeout)
	return s
}

// ID returns the device session id the shell belongs to.
func (s *Shell) ID() string {
	return s.id
}

// Mount resolves the session once per shell lifetime. It never blocks; the
// returned channel closes when the first resolution has been applied or
// dropped. Later calls return an already closed channel.
func (s *Shell) Mount(store credential.Store) <-chan struct{} {
	s.mu.Lock()
	if s.mounted || s.closed {
		s.mu.Unlock()
		return closedChan()
	}
	s.mounted = true
	s.creds = credential.Snapshot(store)
	creds := s.creds
	s.mu.Unlock()

	s.opts.Metrics.ShellMounted(1)
	slog.Debug("Shell mounted", "session_id", s.id)
	return s.loader.Trigger(creds)
}

// Reload handles a full page load. The first load mounts; later loads resolve
// again only when the request carries credentials other than the ones last
// resolved with, such as a token set by a login since the shell was mounted.
func (s *Shell) Reload(store credential.Store) <-chan struct{} {
	s.mu.Lock()
	if !s.mounted || s.closed {
		s.mu.Unlock()
		return s.Mount(store)
	}
	same := sameCredentials(s.creds, credential.Snapshot(store))
	s.mu.Unlock()

	if same {
		return closedChan()
	}
	slog.Info("Credentials changed, resolving session again", "session_id", s.id)
	return s.Refresh(store)
}

func sameCredentials(a, b credential.Store) bool {
	for _, key := range credential.Keys {
		if a.Get(key) != b.Get(key) {
			return false
		}
	}
	return true
}

// Refresh resolves the session again. A non-nil store replaces the
// remembered credentials first. The latest refresh wins over older ones
// still in flight.
func (s *Shell) Refresh(store credential.Store) <-chan struct{} {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return closedChan()
	}
	if store != nil {
		s.creds = credential.Snapshot(store)
	}
	creds := s.creds
	s.mu.Unlock()

	return s.loader.Trigger(creds)
}

// commitUser runs under the loader lock; it must not call into the loader.
func (s *Shell) commitUser(user *domain.User) {
	if user == nil {
		// Failed resolutions keep whatever was there before.
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.user = user
	s.notifyLocked(Event{Kind: EventUser})
	s.mu.Unlock()
}

// Navigate dispatches a navigation selection. The external entry goes to the
// host router with no local change; unknown ids fall back to the default
// view.
func (s *Shell) Navigate(id string, nav Navigator) error {
	entry, known := views.Lookup(id)
	if known && entry.External {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return ErrClosed
		}
		s.opts.Metrics.ObserveNavigation(entry.ID, "external")
		nav.Navigate(s.opts.ResumePath)
		return nil
	}

	target := views.Normalize(id)
	kind := "view"
	if !known {
		kind = "normalized"
		slog.Warn("Unknown navigation id, using default view", "session_id", s.id, "view", id, "default", target)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	changed := s.selector.Active() != target
	if err := s.selector.Select(string(target)); err != nil {
		s.mu.Unlock()
		return err
	}
	var seq uint64
	if changed {
		s.selectSeq++
		seq = s.selectSeq
		s.notifyLocked(Event{Kind: EventView})
	}
	s.mu.Unlock()

	s.opts.Metrics.ObserveNavigation(string(target), kind)
	if changed {
		s.selected(seq, target)
	}
	return nil
}

// selected runs OnSelect outside s.mu. Selections are numbered under s.mu, and
// one that lost the race to a newer selection is dropped here.
func (s *Shell) selected(seq uint64, target views.ViewID) {
	if s.opts.OnSelect == nil {
		return
	}
	s.selectMu.Lock()
	defer s.selectMu.Unlock()
	if seq <= s.persistedSeq {
		slog.Debug("Skipping superseded view selection", "session_id", s.id, "view", target)
		return
	}
	s.persistedSeq = seq
	s.opts.OnSelect(target)
}

// Restore sets the active view without notifying, for shells rebuilt from
// persisted state. Invalid ids restore the default view.
func (s *Shell) Restore(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.selector.Select(string(views.Normalize(id)))
}

// Logout clears both credential keys, then hard-redirects to the root and
// tears the shell down.
func (s *Shell) Logout(store credential.Store, nav Navigator) {
	store.Clear(credential.TokenKey)
	store.Clear(credential.UserTypeKey)
	nav.Redirect(s.opts.RootPath)
	s.opts.Metrics.ObserveLogout()
	slog.Info("Shell logged out", "session_id", s.id)
	s.Teardown()
}

// Teardown discards the shell. In-flight resolutions are dropped and
// subscriber channels are closed.
func (s *Shell) Teardown() {
	s.loader.Unmount()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wasMounted := s.mounted
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	if wasMounted {
		s.opts.Metrics.ShellMounted(-1)
	}
}

// Closed reports whether the shell was torn down.
func (s *Shell) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// User returns the resolved user, or nil.
func (s *Shell) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Active returns the active view.
func (s *Shell) Active() views.ViewID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.Active()
}

// Props returns what the active view receives.
func (s *Shell) Props() views.Props {
	return views.Props{
		User:    s.User(),
		Refresh: func() <-chan struct{} { return s.Refresh(nil) },
	}
}

// ActiveView returns the view implementation for the active view.
func (s *Shell) ActiveView() views.View {
	return s.catalog.Resolve(s.Active())
}

// Subscribe registers for change events. Events are coalesced: a slow
// subscriber sees at least one event after any number of changes. The
// channel is closed on teardown; call the returned func to unsubscribe.
func (s *Shell) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Shell) notifyLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Wait blocks until all started resolutions have finished.
func (s *Shell) Wait() {
	s.loader.Wait()
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
