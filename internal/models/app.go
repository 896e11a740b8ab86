package models

// AppDescriptor is a single routable micro-app entry. Path is its identity.
type AppDescriptor struct {
	Path  string `json:"path" yaml:"path"`
	Title string `json:"title" yaml:"title"`
}

// MenuCategory groups apps in the switch-tools menu.
type MenuCategory struct {
	Name string          `json:"name,omitempty" yaml:"name,omitempty"`
	Apps []AppDescriptor `json:"apps" yaml:"apps"`
}

// Menu is one configuration version delivered by the external store.
// A *Menu is treated as immutable once published; updates replace the pointer.
type Menu struct {
	Categories     []MenuCategory `json:"categories" yaml:"categories"`
	DisabledRoutes []string       `json:"disabled_routes" yaml:"disabled_routes"`
}

// Viewport is the layout class the client reported.
type Viewport int

const (
	ViewportDesktop Viewport = iota
	ViewportMobile
)

func (v Viewport) String() string {
	if v == ViewportMobile {
		return "mobile"
	}
	return "desktop"
}

// ParseViewport accepts "mobile" or "desktop"; anything else is desktop.
func ParseViewport(s string) Viewport {
	if s == "mobile" {
		return ViewportMobile
	}
	return ViewportDesktop
}

func (v Viewport) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Viewport) UnmarshalText(b []byte) error {
	*v = ParseViewport(string(b))
	return nil
}

// NavigationContext is recomputed on every location or viewport change.
type NavigationContext struct {
	CurrentPath   string             `json:"current_path"`
	Viewport      Viewport           `json:"viewport"`
	Auth          Auth               `json:"auth"`
	Notifications NotificationsState `json:"notifications"`
}

// UIState lives for the lifetime of one shell session.
type UIState struct {
	SidebarCollapsed bool           `json:"sidebar_collapsed"`
	ActiveApp        *AppDescriptor `json:"active_app"`
	HideSwitchTools  bool           `json:"hide_switch_tools"`
}
