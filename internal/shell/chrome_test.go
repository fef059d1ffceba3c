package shell

import (
	"strings"
	"testing"

	"github.com/xraph/forgeui/icons"
	g "maragu.dev/gomponents"

	"github.com/ashureev/joblink/internal/views"
)

func renderNode(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return b.String()
}

func TestNavIconCoversEveryEntry(t *testing.T) {
	for _, e := range views.Entries() {
		got := renderNode(t, navIcon(e.Icon, 20))
		if !strings.HasPrefix(got, "<svg") {
			t.Errorf("Expected an svg icon for %q (%s), got %s", e.ID, e.Icon, got)
		}
	}
	if got := renderNode(t, navIcon("unknown", 20)); !strings.Contains(got, "•") {
		t.Errorf("Expected placeholder for unknown icon, got %s", got)
	}
}

func TestNavIconMatchesNamedGlyph(t *testing.T) {
	tests := []struct {
		name string
		want g.Node
	}{
		{"briefcase", icons.Briefcase(icons.WithSize(20))},
		{"bookmark", icons.Bookmark(icons.WithSize(20))},
		{"message-square", icons.MessageSquare(icons.WithSize(20))},
		{"file-text", icons.FileText(icons.WithSize(20))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, want := renderNode(t, navIcon(tt.name, 20)), renderNode(t, tt.want); got != want {
				t.Errorf("navIcon(%q) = %s, want %s", tt.name, got, want)
			}
		})
	}
}

func TestTopBarLogoIsBriefcase(t *testing.T) {
	html := renderNode(t, topBar(nil, views.Home, g.Text("")))
	logo := renderNode(t, icons.Briefcase(icons.WithSize(32), icons.WithClass("text-indigo-600")))
	if !strings.Contains(html, logo) {
		t.Errorf("Expected briefcase logo in top bar, got %s", html)
	}
}
