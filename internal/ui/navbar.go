package ui

import (
	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"github.com/harrylevesque/navshell/internal/auth"
	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/nav"
	"github.com/harrylevesque/navshell/internal/shell"
)

// TestMarker is the text of the hidden heading rendered in test environments.
const TestMarker = "Navbar App Test"

const logoSrc = AssetsPrefix + "logo.svg"

// View is one frame plus the request details the chrome links depend on.
type View struct {
	Frame shell.Frame
	// AuthURL is the base of the login and logout URLs.
	AuthURL string
	// Host is the public host logout returns to.
	Host string
	// ReturnURL is where login returns to.
	ReturnURL string
}

// NavBar renders the top navigation bar. Desktop and mobile are separate
// branches; flags decide what appears in each.
func NavBar(v View) g.Node {
	f := v.Frame.Flags
	if v.Frame.Viewport == models.ViewportMobile {
		return html.Header(
			html.Class("navbar navbar-mobile"),
			html.Div(html.Class("navbar-left"), switchTools(v)),
			html.Div(html.Class("navbar-center"), logo(f), testMarker(f)),
			html.Div(html.Class("navbar-right"), account(v)),
		)
	}
	return html.Header(
		html.Class("navbar navbar-desktop"),
		html.Div(html.Class("navbar-left"), logo(f), appTitle(v.Frame)),
		html.Div(html.Class("navbar-center"), testMarker(f)),
		html.Div(html.Class("navbar-right"), switchTools(v), account(v)),
	)
}

func logo(f nav.Flags) g.Node {
	img := html.Img(html.Src(logoSrc), html.Alt("Topcoder"), html.Class("logo"))
	if !f.ShowLogoAsLink {
		return html.Span(html.Class("logo-static logo-"+string(f.LogoPlacement)), img)
	}
	return html.A(html.Href("/"), html.Class("logo-link logo-"+string(f.LogoPlacement)), img)
}

func appTitle(fr shell.Frame) g.Node {
	if !fr.Flags.ShowAppTitle || fr.ActiveApp == nil {
		return nil
	}
	return html.Span(html.Class("app-title"), g.Text(fr.ActiveApp.Title))
}

func testMarker(f nav.Flags) g.Node {
	if !f.ShowTestMarker {
		return nil
	}
	return html.H1(g.Attr("hidden"), g.Attr("data-testid", "navbar-app-test"), g.Text(TestMarker))
}

func switchTools(v View) g.Node {
	switch v.Frame.Flags.SwitchTools {
	case nav.SwitchToolsFull:
		return html.Nav(
			html.Class("switch-tools switch-tools-full"),
			g.Map(v.Frame.Categories, func(c models.MenuCategory) g.Node {
				return html.Div(
					html.Class("switch-tools-category"),
					g.If(c.Name != "", html.H3(g.Text(c.Name))),
					appList(c.Apps, v.Frame.ActiveApp),
				)
			}),
		)
	case nav.SwitchToolsCompact:
		var apps []models.AppDescriptor
		for _, c := range v.Frame.Categories {
			apps = append(apps, c.Apps...)
		}
		return html.Nav(
			html.Class("switch-tools switch-tools-compact"),
			html.Button(html.Type("button"), html.Class("switch-tools-toggle"), g.Text("Tools")),
			appList(apps, v.Frame.ActiveApp),
		)
	default:
		return nil
	}
}

func appList(apps []models.AppDescriptor, active *models.AppDescriptor) g.Node {
	return html.Ul(g.Map(apps, func(app models.AppDescriptor) g.Node {
		cls := "app-link"
		if active != nil && active.Path == app.Path {
			cls += " active"
		}
		return html.Li(html.A(html.Href(app.Path), html.Class(cls), g.Text(app.Title)))
	}))
}

// account renders the login link, or the user menu with notifications, or
// nothing while auth is still initializing.
func account(v View) g.Node {
	f := v.Frame.Flags
	switch {
	case f.ShowLoginLink:
		return html.Div(
			html.Class("login-links"),
			html.A(
				html.Class("login-link"),
				html.Href(auth.LoginURL(v.AuthURL, v.ReturnURL)),
				g.Text("Log in"),
			),
			html.A(
				html.Class("business-login-link"),
				html.Href(auth.BusinessLoginURL(v.AuthURL, v.ReturnURL)),
				g.Text("Business login"),
			),
		)
	case f.ShowAuthenticatedMenu:
		p := v.Frame.Auth.Profile
		return html.Div(
			html.Class("user-menu"),
			g.If(v.Frame.Auth.NewProfile, html.Data("new-profile", "true")),
			g.If(f.ShowNotifications, html.A(
				html.Class("notifications-link"),
				html.Href("/"+nav.NotificationsPattern),
				g.Text("Notifications"),
			)),
			html.Span(html.Class("user-handle"), g.Text(p.Handle)),
			g.If(p.PhotoURL != "", html.Img(html.Class("user-photo"), html.Src(p.PhotoURL), html.Alt(p.Handle))),
			html.A(
				html.Class("logout-link"),
				html.Href(auth.LogoutURL(v.AuthURL, v.Host)),
				g.Text("Log out"),
			),
		)
	default:
		return nil
	}
}
