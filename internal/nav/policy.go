package nav

import (
	"github.com/harrylevesque/navshell/internal/models"
)

const (
	// OnboardingPattern marks paths where switch-tools and notifications are
	// suppressed.
	OnboardingPattern = "onboard/*"
	// NotificationsPattern is where the notifications modal is mounted.
	NotificationsPattern = "notifications"
	// MobileMaxWidth is the widest viewport, in CSS pixels, rendered as mobile.
	MobileMaxWidth = 1023
)

// ClassifyViewport maps a reported viewport width to a layout class. Unknown
// widths (<= 0) are treated as desktop.
func ClassifyViewport(width int) models.Viewport {
	if width > 0 && width <= MobileMaxWidth {
		return models.ViewportMobile
	}
	return models.ViewportDesktop
}

type SwitchToolsVariant string

const (
	SwitchToolsNone    SwitchToolsVariant = "none"
	SwitchToolsFull    SwitchToolsVariant = "full"
	SwitchToolsCompact SwitchToolsVariant = "compact"
)

type LogoPlacement string

const (
	LogoLeft   LogoPlacement = "left"
	LogoCenter LogoPlacement = "center"
)

// Flags are the chrome visibility decisions for one navigation context.
type Flags struct {
	SidebarDisabled       bool               `json:"sidebar_disabled"`
	HideSwitchTools       bool               `json:"hide_switch_tools"`
	ShowLoginLink         bool               `json:"show_login_link"`
	ShowAuthenticatedMenu bool               `json:"show_authenticated_menu"`
	ShowNotifications     bool               `json:"show_notifications"`
	ShowSwitchToolsMenu   bool               `json:"show_switch_tools_menu"`
	SwitchTools           SwitchToolsVariant `json:"switch_tools"`
	ShowLogoAsLink        bool               `json:"show_logo_as_link"`
	LogoPlacement         LogoPlacement      `json:"logo_placement"`
	ShowAppTitle          bool               `json:"show_app_title"`
	ShowTestMarker        bool               `json:"show_test_marker"`
}

// Policy combines route membership, auth and viewport into Flags.
type Policy struct {
	disabled   *Matcher
	onboarding *Matcher
	testMarker bool
}

type PolicyOption func(*Policy)

// WithTestMarker enables the hidden diagnostic marker in the navbar.
func WithTestMarker(on bool) PolicyOption {
	return func(p *Policy) { p.testMarker = on }
}

// NewPolicy compiles the disabled-route patterns. Malformed patterns are left
// out and returned so the caller can report them.
func NewPolicy(disabledRoutes []string, opts ...PolicyOption) (*Policy, []string) {
	var valid, rejected []string
	for _, p := range disabledRoutes {
		if _, err := Template(p); err != nil {
			rejected = append(rejected, p)
			continue
		}
		valid = append(valid, p)
	}
	disabled, err := Compile(valid...)
	if err != nil {
		// Template accepted every pattern, so this only happens if mux
		// rejects a template; fall back to no disabled routes.
		disabled = nil
		rejected = append(rejected, valid...)
	}
	onboarding, _ := Compile(OnboardingPattern)

	p := &Policy{disabled: disabled, onboarding: onboarding}
	for _, opt := range opts {
		opt(p)
	}
	return p, rejected
}

// SidebarDisabled reports whether currentPath is a sidebar-disabled route.
func (p *Policy) SidebarDisabled(currentPath string) bool {
	if p == nil {
		return false
	}
	return p.disabled.Match(currentPath)
}

// DisabledRoutes lists the sidebar-disabled patterns that compiled.
func (p *Policy) DisabledRoutes() []string {
	if p == nil {
		return nil
	}
	return p.disabled.Patterns()
}

// HideSwitchTools reports whether currentPath is an onboarding path.
func (p *Policy) HideSwitchTools(currentPath string) bool {
	if p == nil {
		return false
	}
	return p.onboarding.Match(currentPath)
}

// Evaluate derives the chrome flags. A nil Policy behaves like one with no
// disabled routes.
func (p *Policy) Evaluate(ctx models.NavigationContext) Flags {
	var f Flags
	f.SidebarDisabled = p.SidebarDisabled(ctx.CurrentPath)
	f.HideSwitchTools = p.HideSwitchTools(ctx.CurrentPath)

	auth := ctx.Auth
	f.ShowLoginLink = auth.IsInitialized && !auth.HasToken()
	f.ShowAuthenticatedMenu = auth.IsInitialized && auth.HasToken() && auth.Profile != nil
	f.ShowNotifications = f.ShowAuthenticatedMenu && !f.HideSwitchTools

	mobile := ctx.Viewport == models.ViewportMobile
	f.ShowSwitchToolsMenu = !f.HideSwitchTools
	switch {
	case !f.ShowSwitchToolsMenu:
		f.SwitchTools = SwitchToolsNone
	case mobile:
		f.SwitchTools = SwitchToolsCompact
	default:
		f.SwitchTools = SwitchToolsFull
	}

	f.ShowLogoAsLink = !f.HideSwitchTools
	f.LogoPlacement = LogoLeft
	if mobile {
		f.LogoPlacement = LogoCenter
	}
	f.ShowAppTitle = !mobile
	f.ShowTestMarker = p != nil && p.testMarker
	return f
}
