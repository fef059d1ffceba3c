package views

import (
	"errors"
	"fmt"

	g "maragu.dev/gomponents"

	"github.com/ashureev/joblink/internal/domain"
)

var (
	// ErrExternalView is returned when the external entry is selected as a view.
	ErrExternalView = errors.New("external navigation entry cannot be selected")
	// ErrUnknownView is returned for ids outside the registry.
	ErrUnknownView = errors.New("unknown view")
)

// Selector holds the active in-shell view. It is not safe for concurrent use;
// the owning shell serializes access.
type Selector struct {
	active ViewID
}

// NewSelector starts on the default view.
func NewSelector() *Selector {
	return &Selector{active: Default}
}

// Select makes id the active view. The external entry and unknown ids are
// rejected and leave the active view unchanged.
func (s *Selector) Select(id string) error {
	if e, ok := Lookup(id); ok && e.External {
		return fmt.Errorf("select %q: %w", id, ErrExternalView)
	}
	view, ok := ParseViewID(id)
	if !ok {
		return fmt.Errorf("select %q: %w", id, ErrUnknownView)
	}
	s.active = view
	return nil
}

// Active returns the active view.
func (s *Selector) Active() ViewID {
	return s.active
}

// Props is what the shell hands to every view.
type Props struct {
	// User is nil until the session resolves, or when resolution failed.
	User *domain.User
	// Refresh re-resolves the session. The channel closes when the new
	// result has been applied or dropped.
	Refresh func() <-chan struct{}
}

// View renders one in-shell view.
type View interface {
	Render(p Props) g.Node
}

// ViewFunc adapts a function to View.
type ViewFunc func(p Props) g.Node

// Render calls f.
func (f ViewFunc) Render(p Props) g.Node {
	return f(p)
}

// Catalog maps every in-shell view to its implementation. Adding a view means
// adding a field here and a case in Resolve.
type Catalog struct {
	Home         View
	Search       View
	Applications View
	Saved        View
	Profile      View
	Messages     View
}

// Resolve returns the view for id. Unknown ids get the home view.
func (c Catalog) Resolve(id ViewID) View {
	switch id {
	case Home:
		return c.Home
	case Search:
		return c.Search
	case Applications:
		return c.Applications
	case Saved:
		return c.Saved
	case Profile:
		return c.Profile
	case Messages:
		return c.Messages
	default:
		return c.Home
	}
}

// Validate checks that every view is set.
func (c Catalog) Validate() error {
	for _, id := range All() {
		if c.Resolve(id) == nil {
			return fmt.Errorf("catalog has no view for %q", id)
		}
	}
	return nil
}
