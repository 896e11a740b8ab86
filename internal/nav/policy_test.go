package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrylevesque/navshell/internal/models"
)

func loggedIn() models.Auth {
	return models.Auth{IsInitialized: true, TokenV3: "tok", Profile: &models.Profile{Handle: "jdoe"}}
}

func TestPolicyLoggedOut(t *testing.T) {
	p, _ := NewPolicy(nil)
	for _, vp := range []models.Viewport{models.ViewportDesktop, models.ViewportMobile} {
		for _, path := range []string{"/", "/onboard/step", "/work"} {
			f := p.Evaluate(models.NavigationContext{
				CurrentPath: path,
				Viewport:    vp,
				Auth:        models.Auth{IsInitialized: true},
			})
			assert.True(t, f.ShowLoginLink, path)
			assert.False(t, f.ShowAuthenticatedMenu, path)
			assert.False(t, f.ShowNotifications, path)
		}
	}
}

func TestPolicyUninitializedAuthHidesEverything(t *testing.T) {
	f := (&Policy{}).Evaluate(models.NavigationContext{CurrentPath: "/work"})
	assert.False(t, f.ShowLoginLink)
	assert.False(t, f.ShowAuthenticatedMenu)
	assert.False(t, f.ShowNotifications)
}

func TestPolicyTokenWithoutProfile(t *testing.T) {
	p, _ := NewPolicy(nil)
	f := p.Evaluate(models.NavigationContext{
		CurrentPath: "/work",
		Auth:        models.Auth{IsInitialized: true, TokenV3: "tok"},
	})
	assert.False(t, f.ShowLoginLink)
	assert.False(t, f.ShowAuthenticatedMenu)
}

func TestPolicyDisabledRoutes(t *testing.T) {
	p, rejected := NewPolicy([]string{"checkout/*", "bad/*/route"})
	assert.Equal(t, []string{"bad/*/route"}, rejected)
	assert.Equal(t, []string{"checkout/*"}, p.DisabledRoutes())

	var nilPolicy *Policy
	assert.Nil(t, nilPolicy.DisabledRoutes())

	f := p.Evaluate(models.NavigationContext{CurrentPath: "checkout/confirm"})
	assert.True(t, f.SidebarDisabled)

	f = p.Evaluate(models.NavigationContext{CurrentPath: "/work"})
	assert.False(t, f.SidebarDisabled)
}

func TestPolicyOnboarding(t *testing.T) {
	p, _ := NewPolicy(nil)

	desktop := p.Evaluate(models.NavigationContext{CurrentPath: "/onboard/skills", Auth: loggedIn()})
	assert.True(t, desktop.HideSwitchTools)
	assert.False(t, desktop.ShowSwitchToolsMenu)
	assert.Equal(t, SwitchToolsNone, desktop.SwitchTools)
	assert.False(t, desktop.ShowLogoAsLink)
	assert.True(t, desktop.ShowAuthenticatedMenu)
	assert.False(t, desktop.ShowNotifications)

	mobile := p.Evaluate(models.NavigationContext{CurrentPath: "/onboard", Viewport: models.ViewportMobile, Auth: loggedIn()})
	assert.True(t, mobile.HideSwitchTools)
	assert.Equal(t, SwitchToolsNone, mobile.SwitchTools)
}

func TestPolicyViewport(t *testing.T) {
	p, _ := NewPolicy(nil)

	desktop := p.Evaluate(models.NavigationContext{CurrentPath: "/work", Auth: loggedIn()})
	assert.Equal(t, SwitchToolsFull, desktop.SwitchTools)
	assert.Equal(t, LogoLeft, desktop.LogoPlacement)
	assert.True(t, desktop.ShowAppTitle)
	assert.True(t, desktop.ShowLogoAsLink)
	assert.True(t, desktop.ShowNotifications)

	mobile := p.Evaluate(models.NavigationContext{CurrentPath: "/work", Viewport: models.ViewportMobile, Auth: loggedIn()})
	assert.Equal(t, SwitchToolsCompact, mobile.SwitchTools)
	assert.Equal(t, LogoCenter, mobile.LogoPlacement)
	assert.False(t, mobile.ShowAppTitle)
	assert.True(t, mobile.ShowNotifications)
}

func TestPolicyTestMarker(t *testing.T) {
	p, _ := NewPolicy(nil, WithTestMarker(true))
	assert.True(t, p.Evaluate(models.NavigationContext{}).ShowTestMarker)

	var nilPolicy *Policy
	assert.False(t, nilPolicy.Evaluate(models.NavigationContext{}).ShowTestMarker)
}

func TestClassifyViewport(t *testing.T) {
	assert.Equal(t, models.ViewportMobile, ClassifyViewport(375))
	assert.Equal(t, models.ViewportMobile, ClassifyViewport(1023))
	assert.Equal(t, models.ViewportDesktop, ClassifyViewport(1024))
	assert.Equal(t, models.ViewportDesktop, ClassifyViewport(0))
}
