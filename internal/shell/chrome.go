package shell

import (
	"fmt"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/xraph/forgeui/icons"

	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/views"
)

// Routes the chrome links to.
const (
	DashboardPath = "/dashboard"
	NavigateBase  = "/dashboard/navigate/"
	LogoutPath    = "/logout"
	ContentID     = "shell"
)

// NavigatePath returns the dispatch route for a navigation entry.
func NavigatePath(id string) string {
	return NavigateBase + id
}

// Page renders the full HTML document for the shell.
func (s *Shell) Page(title string) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
				html.TitleEl(g.Text(title)),
				html.Script(html.Src("https://cdn.tailwindcss.com")),
				html.Script(html.Src("/static/shell.js"), html.Defer()),
			),
			html.Body(
				html.Class("min-h-screen bg-gray-50"),
				g.Attr("data-ws", "/ws/dashboard"),
				html.Div(html.ID(ContentID), s.Render()),
			),
		),
	})
}

// Render renders the chrome around the active view.
func (s *Shell) Render() g.Node {
	props := s.Props()
	active := s.Active()
	view := s.catalog.Resolve(active)

	return html.Div(
		g.Attr("data-active-view", string(active)),
		topBar(props.User, active, s.opts.Notifications.Render(props)),
		html.Div(
			html.Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 pt-20 pb-8"),
			html.Div(
				html.Class("flex gap-6"),
				sideNav(active),
				html.Main(html.Class("flex-1"), view.Render(props)),
				summaryPanel(props.User),
			),
		),
	)
}

func topBar(user *domain.User, active views.ViewID, notifications g.Node) g.Node {
	return html.Nav(
		html.Class("bg-white border-b border-gray-200 fixed w-full top-0 z-50"),
		html.Div(
			html.Class("max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 flex justify-between items-center h-16"),
			html.Div(
				html.Class("flex items-center gap-2"),
				icons.Briefcase(icons.WithSize(32), icons.WithClass("text-indigo-600")),
				html.Span(html.Class("text-2xl font-bold text-gray-900"), g.Text("JobLink")),
			),
			html.Div(
				html.Class("flex-1 max-w-2xl mx-8 relative"),
				html.Input(
					html.Type("text"),
					html.Name("q"),
					html.Placeholder("Search jobs, companies, skills..."),
					html.Class("w-full pl-4 pr-4 py-2 border border-gray-300 rounded-lg"),
				),
			),
			html.Div(
				html.Class("flex items-center gap-4"),
				notifications,
				g.Map(views.TopBar(), func(e views.Entry) g.Node {
					return topBarButton(e, active)
				}),
				avatar(user),
				logoutButton(),
			),
		),
	)
}

func topBarButton(e views.Entry, active views.ViewID) g.Node {
	class := "p-2 rounded-lg text-gray-600 hover:text-gray-900 hover:bg-gray-100"
	if isActive(e, active) {
		class = "p-2 rounded-lg bg-indigo-100 text-indigo-600"
	}
	return navForm(e, html.Button(
		html.Type("submit"),
		html.Class(class),
		g.Attr("aria-label", e.Label),
		g.If(isActive(e, active), g.Attr("aria-current", "page")),
		navIcon(e.Icon, 24),
	))
}

func avatar(user *domain.User) g.Node {
	return html.Div(
		html.Class("w-10 h-10 bg-indigo-600 rounded-full flex items-center justify-center text-white font-semibold"),
		g.If(user != nil, html.Title(user.DisplayName())),
		g.Attr("data-avatar", ""),
		g.Text(user.Initial()),
	)
}

func logoutButton() g.Node {
	return html.Form(
		html.Method("post"),
		html.Action(LogoutPath),
		html.Button(
			html.Type("submit"),
			html.Class("p-2 text-gray-600 hover:text-red-600 hover:bg-red-50 rounded-lg"),
			html.Title("Logout"),
			icons.LogOut(icons.WithSize(20)),
		),
	)
}

func sideNav(active views.ViewID) g.Node {
	return html.Aside(
		html.Class("w-64 flex-shrink-0"),
		html.Div(
			html.Class("bg-white rounded-xl shadow-sm border border-gray-200 sticky top-20"),
			html.Nav(
				html.Class("p-4 space-y-1"),
				g.Map(views.Sidebar(), func(e views.Entry) g.Node {
					return sideNavItem(e, active)
				}),
			),
		),
	)
}

func sideNavItem(e views.Entry, active views.ViewID) g.Node {
	class := "w-full flex items-center gap-3 px-4 py-3 rounded-lg text-gray-700 hover:bg-gray-50"
	switch {
	case e.External:
		class = "w-full flex items-center gap-3 px-4 py-3 rounded-lg text-gray-700 hover:bg-indigo-50 hover:text-indigo-600"
	case isActive(e, active):
		class = "w-full flex items-center gap-3 px-4 py-3 rounded-lg bg-indigo-50 text-indigo-600"
	}
	return navForm(e, html.Button(
		html.Type("submit"),
		html.Class(class),
		g.Attr("data-nav", e.ID),
		g.If(e.External, g.Attr("data-external", "")),
		g.If(isActive(e, active), g.Attr("aria-current", "page")),
		navIcon(e.Icon, 20),
		html.Span(html.Class("font-medium"), g.Text(e.Label)),
	))
}

func navForm(e views.Entry, button g.Node) g.Node {
	return html.Form(
		html.Method("post"),
		html.Action(NavigatePath(e.ID)),
		button,
	)
}

func isActive(e views.Entry, active views.ViewID) bool {
	id, ok := e.View()
	return ok && id == active
}

// navIcon maps an icon name to its icon node.
func navIcon(name string, size int) g.Node {
	opt := icons.WithSize(size)
	switch name {
	case "home":
		return icons.Home(opt)
	case "search":
		return icons.Search(opt)
	case "briefcase":
		return icons.Briefcase(opt)
	case "bookmark":
		return icons.Bookmark(opt)
	case "file-text":
		return icons.FileText(opt)
	case "user":
		return icons.User(opt)
	case "message-square":
		return icons.MessageSquare(opt)
	default:
		return html.Span(
			html.Class(fmt.Sprintf("inline-flex h-[%dpx] w-[%dpx] items-center justify-center text-xs", size, size)),
			g.Text("•"),
		)
	}
}

func notificationBell(p views.Props) g.Node {
	var owner g.Node
	if p.User != nil {
		owner = g.Attr("data-user-email", p.User.Email)
	}
	return html.Div(
		html.Class("relative"),
		g.Attr("data-notifications", ""),
		owner,
		html.Button(
			html.Type("button"),
			html.Class("p-2 rounded-lg text-gray-600 hover:text-gray-900 hover:bg-gray-100"),
			g.Attr("aria-label", "Notifications"),
			icons.Bell(icons.WithSize(24)),
		),
	)
}
