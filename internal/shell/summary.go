package shell

import (
	"fmt"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/xraph/forgeui/icons"

	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/views"
)

// ChecklistItem is one profile completion step.
type ChecklistItem struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Strength summarizes profile completion.
type Strength struct {
	Percent int             `json:"percent"`
	Items   []ChecklistItem `json:"items"`
}

const (
	strengthBase    = 40
	strengthPerItem = 20
)

// ProfileStrength scores a profile. A resolved account starts at 40% and each
// completed step adds 20%. An unresolved user scores 0.
func ProfileStrength(u *domain.User) Strength {
	if u == nil {
		return Strength{Items: []ChecklistItem{
			{Label: "Email verified"},
			{Label: "Add skills"},
			{Label: "Upload resume"},
		}}
	}
	items := []ChecklistItem{
		{Label: "Email verified", Done: u.EmailVerified},
		{Label: "Add skills", Done: len(u.Skills) > 0},
		{Label: "Upload resume", Done: u.HasResume},
	}
	pct := strengthBase
	for _, it := range items {
		if it.Done {
			pct += strengthPerItem
		}
	}
	return Strength{Percent: pct, Items: items}
}

func summaryPanel(u *domain.User) g.Node {
	strength := ProfileStrength(u)
	var apps, saved, viewsCount int
	if u != nil {
		apps, saved, viewsCount = u.ApplicationCount, u.SavedCount, u.ProfileViews
	}

	return html.Aside(
		html.Class("w-80 flex-shrink-0"),
		html.Div(
			html.Class("space-y-4 sticky top-20"),
			html.Div(
				html.Class("bg-white rounded-xl shadow-sm border border-gray-200 p-6"),
				g.Attr("data-summary", "strength"),
				html.H3(html.Class("font-semibold text-gray-900 mb-4"), g.Text("Profile Strength")),
				html.Div(
					html.Class("mb-3"),
					html.Div(
						html.Class("w-full bg-gray-200 rounded-full h-2"),
						html.Div(
							html.Class("bg-indigo-600 h-2 rounded-full"),
							html.Style(fmt.Sprintf("width: %d%%", strength.Percent)),
						),
					),
					html.P(html.Class("text-sm text-gray-600 mt-2"), g.Textf("%d%% Complete", strength.Percent)),
				),
				html.Ul(
					html.Class("space-y-2 text-sm"),
					g.Map(strength.Items, checklistItem),
				),
				navForm(views.ExternalEntry(), html.Button(
					html.Type("submit"),
					html.Class("w-full mt-4 px-4 py-2 bg-gradient-to-r from-indigo-600 to-purple-600 text-white rounded-lg font-medium flex items-center justify-center gap-2"),
					icons.FileText(icons.WithSize(18)),
					g.Text("Build Resume"),
				)),
			),
			html.Div(
				html.Class("bg-white rounded-xl shadow-sm border border-gray-200 p-6"),
				g.Attr("data-summary", "stats"),
				html.H3(html.Class("font-semibold text-gray-900 mb-4"), g.Text("Quick Stats")),
				html.Div(
					html.Class("space-y-3"),
					stat("Applications", apps),
					stat("Saved Jobs", saved),
					stat("Profile Views", viewsCount),
				),
			),
		),
	)
}

func checklistItem(it ChecklistItem) g.Node {
	dot := "w-2 h-2 bg-gray-300 rounded-full"
	if it.Done {
		dot = "w-2 h-2 bg-green-500 rounded-full"
	}
	return html.Li(
		html.Class("flex items-center gap-2 text-gray-600"),
		g.If(it.Done, g.Attr("data-done", "")),
		html.Div(html.Class(dot)),
		g.Text(it.Label),
	)
}

func stat(label string, n int) g.Node {
	return html.Div(
		html.Class("flex justify-between items-center"),
		html.Span(html.Class("text-gray-600"), g.Text(label)),
		html.Span(html.Class("font-semibold text-gray-900"), g.Textf("%d", n)),
	)
}
