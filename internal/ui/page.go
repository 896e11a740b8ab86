package ui

import (
	"io"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/harrylevesque/navshell/internal/nav"
)

// Page renders the full shell document: navbar, the sidebar menu of mounted
// apps and the outlet the active micro-app is loaded into.
func Page(v View) g.Node {
	fr := v.Frame
	bodyClass := "shell"
	if fr.Layout.NoSidebar {
		bodyClass += " no-sidebar"
	}
	title := "Topcoder"
	if fr.ActiveApp != nil {
		title = fr.ActiveApp.Title + " | Topcoder"
	}
	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(g.Text(title)),
		),
		html.Body(
			html.Class(bodyClass),
			NavBar(v),
			mainMenu(v),
			outlet(v),
			notificationsModal(v),
		),
	))
}

// Render writes the page for v to w.
func Render(w io.Writer, v View) error {
	return Page(v).Render(w)
}

func mainMenu(v View) g.Node {
	fr := v.Frame
	if fr.Layout.NoSidebar {
		return nil
	}
	cls := "main-menu-wrapper"
	if fr.UI.SidebarCollapsed {
		cls += " collapsed"
	}
	return html.Aside(
		html.Class(cls),
		html.Form(
			html.Method("post"),
			html.Action("/api/sidebar/toggle"),
			html.Button(html.Type("submit"), html.Class("sidebar-toggle"), g.Text("Toggle menu")),
		),
		html.Ul(g.Map(fr.Routes, func(m nav.Mount) g.Node {
			cls := "route"
			if fr.Current != nil && fr.Current.Pattern == m.Pattern {
				cls += " active"
			}
			return html.Li(
				html.Class(cls),
				g.Attr("data-route", m.Pattern),
				html.A(html.Href(m.App.Path), g.Text(m.App.Title)),
			)
		})),
	)
}

func outlet(v View) g.Node {
	fr := v.Frame
	attrs := []g.Node{html.ID("app-outlet")}
	if fr.Current != nil {
		attrs = append(attrs,
			g.Attr("data-route", fr.Current.Pattern),
			g.Attr("data-app", fr.Current.App.Path),
		)
	}
	return html.Main(attrs...)
}

func notificationsModal(v View) g.Node {
	n := v.Frame.Notifications
	if !n.Open {
		return nil
	}
	body := g.Node(html.P(html.Class("notifications-empty"), g.Text("No new notifications")))
	if !n.IsEmpty {
		body = html.Ul(html.Class("notifications-list"))
	}
	return html.Div(
		html.Class("notifications-modal"),
		g.Attr("role", "dialog"),
		html.H2(g.Text("Notifications")),
		body,
	)
}
