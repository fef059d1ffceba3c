package views

import (
	"strings"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// RefreshPath is where the profile view posts to re-resolve the session.
const RefreshPath = "/dashboard/refresh"

// DefaultCatalog returns placeholder views that show who they are rendering
// for. Real view implementations replace these field by field.
func DefaultCatalog() Catalog {
	return Catalog{
		Home:         ViewFunc(recommendations),
		Search:       ViewFunc(jobSearch),
		Applications: ViewFunc(applications),
		Saved:        ViewFunc(savedJobs),
		Profile:      ViewFunc(profile),
		Messages:     ViewFunc(messages),
	}
}

func panel(id ViewID, title string, children ...g.Node) g.Node {
	return html.Section(
		html.Class("bg-white rounded-xl shadow-sm border border-gray-200 p-6"),
		g.Attr("data-view", string(id)),
		html.H2(html.Class("text-xl font-semibold text-gray-900 mb-4"), g.Text(title)),
		g.Group(children),
	)
}

func loading() g.Node {
	return html.P(
		html.Class("text-sm text-gray-500"),
		g.Attr("data-state", "loading"),
		g.Text("Loading your account..."),
	)
}

func recommendations(p Props) g.Node {
	if p.User == nil {
		return panel(Home, "Recommended Jobs", loading())
	}
	return panel(Home, "Recommended Jobs",
		html.P(
			html.Class("text-gray-600"),
			g.Attr("data-user-email", p.User.Email),
			g.Textf("Recommendations for %s", p.User.Email),
		),
	)
}

func jobSearch(p Props) g.Node {
	if p.User == nil {
		return panel(Search, "Search Jobs", loading())
	}
	return panel(Search, "Search Jobs",
		html.P(html.Class("text-gray-600"), g.Text("Search by title, company, or skill.")),
	)
}

func applications(p Props) g.Node {
	if p.User == nil {
		return panel(Applications, "My Applications", loading())
	}
	return panel(Applications, "My Applications",
		html.P(html.Class("text-gray-600"), g.Textf("%d applications submitted", p.User.ApplicationCount)),
	)
}

func savedJobs(p Props) g.Node {
	if p.User == nil {
		return panel(Saved, "Saved Jobs", loading())
	}
	return panel(Saved, "Saved Jobs",
		html.P(html.Class("text-gray-600"), g.Textf("%d jobs saved", p.User.SavedCount)),
	)
}

func profile(p Props) g.Node {
	if p.User == nil {
		return panel(Profile, "Profile", loading(), refreshForm())
	}
	return panel(Profile, "Profile",
		html.Dl(
			html.Class("grid grid-cols-3 gap-2 text-sm"),
			field("Email", p.User.Email),
			g.If(p.User.Name != "", field("Name", p.User.Name)),
			g.If(len(p.User.Skills) > 0, field("Skills", strings.Join(p.User.Skills, ", "))),
		),
		refreshForm(),
	)
}

func messages(p Props) g.Node {
	if p.User == nil {
		return panel(Messages, "Messages", loading())
	}
	return panel(Messages, "Messages",
		html.P(html.Class("text-gray-600"), g.Text("No conversations yet.")),
	)
}

func field(label, value string) g.Node {
	return g.Group([]g.Node{
		html.Dt(html.Class("text-gray-500"), g.Text(label)),
		html.Dd(html.Class("col-span-2 text-gray-900"), g.Text(value)),
	})
}

func refreshForm() g.Node {
	return html.Form(
		html.Method("post"),
		html.Action(RefreshPath),
		html.Class("mt-4"),
		html.Button(
			html.Type("submit"),
			html.Class("px-4 py-2 rounded-lg bg-indigo-600 text-white text-sm font-medium"),
			g.Text("Reload profile"),
		),
	)
}
