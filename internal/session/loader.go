package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/domain"
)

// ResolveFunc resolves the user for the credentials in store.
type ResolveFunc func(ctx context.Context, store credential.Store) *domain.User

// CommitFunc receives a resolution result. It is called with the loader lock
// held, so it must not call back into the Loader.
type CommitFunc func(user *domain.User)

// Loader runs resolutions in the background and delivers only results that
// are still wanted: the loader must be mounted and the result must belong to
// the most recently issued trigger.
type Loader struct {
	base    context.Context
	resolve ResolveFunc
	commit  CommitFunc
	timeout time.Duration

	mu      sync.Mutex
	issued  uint64
	mounted bool
	wg      sync.WaitGroup
}

// NewLoader creates a mounted loader. Resolutions run on contexts derived
// from base, each bounded by timeout when timeout > 0.
func NewLoader(base context.Context, resolve ResolveFunc, commit CommitFunc, timeout time.Duration) *Loader {
	if base == nil {
		base = context.Background()
	}
	return &Loader{
		base:    base,
		resolve: resolve,
		commit:  commit,
		timeout: timeout,
		mounted: true,
	}
}

// Trigger starts a resolution and returns immediately. The credentials are
// copied before returning, so store may be request-scoped. The returned
// channel is closed once the result has been committed or discarded.
func (l *Loader) Trigger(store credential.Store) <-chan struct{} {
	done := make(chan struct{})
	snap := credential.Snapshot(store)

	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		close(done)
		return done
	}
	l.issued++
	gen := l.issued
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer close(done)

		ctx := l.base
		if l.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.timeout)
			defer cancel()
		}
		user := l.resolve(ctx, snap)

		l.mu.Lock()
		defer l.mu.Unlock()
		switch {
		case !l.mounted:
			slog.Debug("Discarding resolution for unmounted shell", "generation", gen)
		case gen != l.issued:
			slog.Debug("Discarding superseded resolution", "generation", gen, "latest", l.issued)
		default:
			l.commit(user)
		}
	}()
	return done
}

// Unmount stops delivery. In-flight resolutions finish but are discarded.
func (l *Loader) Unmount() {
	l.mu.Lock()
	l.mounted = false
	l.mu.Unlock()
}

// Wait blocks until every started resolution has finished.
func (l *Loader) Wait() {
	l.wg.Wait()
}
