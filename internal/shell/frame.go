package shell

import (
	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/nav"
)

var notificationsRoute, _ = nav.Compile(nav.NotificationsPattern)

// LayoutContext is the layout state shared between the shell and its
// descendants for one session.
type LayoutContext struct {
	NoSidebar bool `json:"no_sidebar"`
}

// NotificationsModal describes the modal mounted at the notifications route.
type NotificationsModal struct {
	Open    bool `json:"open"`
	IsEmpty bool `json:"is_empty"`
}

// Frame is everything needed to render the shell for one navigation.
type Frame struct {
	Version       uint64                `json:"version"`
	Path          string                `json:"path"`
	Viewport      models.Viewport       `json:"viewport"`
	Flags         nav.Flags             `json:"flags"`
	ActiveApp     *models.AppDescriptor `json:"active_app"`
	Routes        []nav.Mount           `json:"routes"`
	Current       *nav.Mount            `json:"current,omitempty"`
	Categories    []models.MenuCategory `json:"categories"`
	Notifications NotificationsModal    `json:"notifications"`
	Auth          models.Auth           `json:"auth"`
	UI            models.UIState        `json:"ui"`
	Layout        LayoutContext         `json:"layout"`
}

// BuildFrame evaluates nc against a single snapshot. On sidebar-disabled
// routes no app routes are mounted at all.
func BuildFrame(snap *Snapshot, nc models.NavigationContext) Frame {
	f := Frame{
		Version:  snap.Version,
		Path:     nc.CurrentPath,
		Viewport: nc.Viewport,
		Flags:    snap.Policy.Evaluate(nc),
		Routes:   []nav.Mount{},
		Auth:     nc.Auth,
	}
	if snap.Menu != nil {
		f.Categories = snap.Menu.Categories
	}
	if app, ok := nav.Resolve(snap.Apps, nc.CurrentPath); ok {
		f.ActiveApp = &app
	}
	if !f.Flags.SidebarDisabled {
		f.Routes = snap.Mounts.Mounts()
		if m, ok := snap.Mounts.Match(nc.CurrentPath); ok {
			f.Current = &m
		}
	}
	f.Notifications = NotificationsModal{
		Open:    notificationsRoute.Match(nc.CurrentPath),
		IsEmpty: nc.Notifications.IsEmpty(),
	}
	return f
}
