// Package views defines the dashboard navigation catalog, the active view
// selector, and the contract every in-shell view implements.
package views

import "slices"

// ViewID identifies an in-shell view. The set is closed: only the constants
// below are valid.
type ViewID string

// In-shell views.
const (
	Home         ViewID = "home"
	Search       ViewID = "search"
	Applications ViewID = "applications"
	Saved        ViewID = "saved"
	Profile      ViewID = "profile"
	Messages     ViewID = "messages"
)

// Default is the view a new shell starts on.
const Default = Home

// ResumeID is the navigation id of the external resume builder.
const ResumeID = "resume"

// Slot says where the chrome renders an entry.
type Slot int

const (
	// SlotSidebar entries are listed in the left navigation.
	SlotSidebar Slot = iota
	// SlotTopBar entries are icon buttons in the top bar.
	SlotTopBar
)

// Entry is one navigation item. Entries are static.
type Entry struct {
	ID       string
	Label    string
	Icon     string
	External bool
	Slot     Slot
}

// View returns the in-shell view id for the entry, or false for the
// external entry.
func (e Entry) View() (ViewID, bool) {
	if e.External {
		return "", false
	}
	return ParseViewID(e.ID)
}

var registry = []Entry{
	{ID: string(Home), Label: "Home", Icon: "home"},
	{ID: string(Search), Label: "Search Jobs", Icon: "search"},
	{ID: string(Applications), Label: "My Applications", Icon: "briefcase"},
	{ID: string(Saved), Label: "Saved Jobs", Icon: "bookmark"},
	{ID: ResumeID, Label: "My Resume", Icon: "file-text", External: true},
	{ID: string(Profile), Label: "Profile", Icon: "user"},
	{ID: string(Messages), Label: "Messages", Icon: "message-square", Slot: SlotTopBar},
}

var inShell = []ViewID{Home, Search, Applications, Saved, Profile, Messages}

// Entries returns the registry in render order.
func Entries() []Entry {
	return slices.Clone(registry)
}

// Lookup finds an entry by id.
func Lookup(id string) (Entry, bool) {
	for _, e := range registry {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Sidebar returns the entries rendered in the left navigation.
func Sidebar() []Entry {
	return bySlot(SlotSidebar)
}

// TopBar returns the entries rendered as top bar buttons.
func TopBar() []Entry {
	return bySlot(SlotTopBar)
}

func bySlot(slot Slot) []Entry {
	out := make([]Entry, 0, len(registry))
	for _, e := range registry {
		if e.Slot == slot {
			out = append(out, e)
		}
	}
	return out
}

// ExternalEntry returns the single external entry.
func ExternalEntry() Entry {
	for _, e := range registry {
		if e.External {
			return e
		}
	}
	panic("views: registry has no external entry")
}

// All returns every in-shell view id.
func All() []ViewID {
	return slices.Clone(inShell)
}

// ParseViewID converts s to an in-shell view id.
func ParseViewID(s string) (ViewID, bool) {
	id := ViewID(s)
	if slices.Contains(inShell, id) {
		return id, true
	}
	return "", false
}

// Normalize returns id when it is an in-shell view and Default otherwise.
func Normalize(s string) ViewID {
	if id, ok := ParseViewID(s); ok {
		return id
	}
	return Default
}
