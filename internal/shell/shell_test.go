package shell

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/nav"
)

func testMenu() *models.Menu {
	return &models.Menu{
		Categories: []models.MenuCategory{
			{Name: "Work", Apps: []models.AppDescriptor{
				{Path: "/work", Title: "Work Manager"},
				{Path: "/taas", Title: "Talent as a Service"},
			}},
			{Name: "Earn", Apps: []models.AppDescriptor{
				{Path: "/earn/find/challenges", Title: "Challenges"},
				{Path: "/work", Title: "Shadowed"},
			}},
		},
		DisabledRoutes: []string{"checkout/*", "account/:id/edit", "bad/*/x"},
	}
}

func loggedIn() models.Auth {
	return models.Auth{IsInitialized: true, TokenV3: "t", Profile: &models.Profile{Handle: "jdoe"}}
}

func TestNewShellIsEmpty(t *testing.T) {
	s := New()
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Version)
	assert.Empty(t, snap.Apps)
	assert.Equal(t, 0, snap.Mounts.Len())

	sess, _ := s.Sessions().Get("")
	f := sess.Navigate(models.NavigationContext{CurrentPath: "/work"})
	assert.Nil(t, f.ActiveApp)
	assert.Empty(t, f.Routes)
}

func TestApply(t *testing.T) {
	s := New()
	menu := testMenu()

	snap := s.Apply(menu)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Len(t, snap.Apps, 4)
	assert.Equal(t, 3, snap.Mounts.Len(), "duplicate path is mounted once")

	m, ok := snap.Mounts.Match("/work/projects")
	require.True(t, ok)
	assert.Equal(t, "Work Manager", m.App.Title)

	// Same menu pointer: nothing is recomputed.
	again := s.Apply(menu)
	assert.Same(t, snap, again)
	assert.Equal(t, 2, s.Recomputations())

	assert.True(t, snap.Policy.SidebarDisabled("/checkout/cart"))
	assert.True(t, snap.Policy.SidebarDisabled("/account/42/edit"))
	assert.False(t, snap.Policy.SidebarDisabled("/bad/a/x"), "malformed pattern is ignored")
}

func TestNavigateDisabledRouteMountsNothing(t *testing.T) {
	s := New()
	s.Apply(testMenu())
	sess, _ := s.Sessions().Get("")

	f := sess.Navigate(models.NavigationContext{CurrentPath: "/checkout/work", Auth: loggedIn()})
	assert.True(t, f.Flags.SidebarDisabled)
	assert.Empty(t, f.Routes)
	assert.Nil(t, f.Current)
	assert.True(t, f.Layout.NoSidebar)
	// Active app resolution is independent of mounting.
	require.NotNil(t, f.ActiveApp)
	assert.Equal(t, "/work", f.ActiveApp.Path)

	f = sess.Navigate(models.NavigationContext{CurrentPath: "/work/projects", Auth: loggedIn()})
	assert.False(t, f.Flags.SidebarDisabled)
	assert.Len(t, f.Routes, 3)
	require.NotNil(t, f.Current)
	assert.Equal(t, "/work/*", f.Current.Pattern)
	assert.False(t, f.Layout.NoSidebar)
	assert.Equal(t, f.ActiveApp, sess.State().ActiveApp)
}

func TestNavigateOnboarding(t *testing.T) {
	s := New()
	s.Apply(testMenu())
	sess, _ := s.Sessions().Get("")

	f := sess.Navigate(models.NavigationContext{CurrentPath: "/onboard/step-1", Auth: loggedIn()})
	assert.True(t, f.Flags.HideSwitchTools)
	assert.False(t, f.Flags.ShowNotifications)
	assert.Equal(t, nav.SwitchToolsNone, f.Flags.SwitchTools)
	assert.True(t, sess.State().HideSwitchTools)
}

func TestNavigateNotificationsModal(t *testing.T) {
	s := New()
	s.Apply(testMenu())
	sess, _ := s.Sessions().Get("")

	f := sess.Navigate(models.NavigationContext{
		CurrentPath:   "/notifications",
		Auth:          loggedIn(),
		Notifications: models.NotificationsState{Initialized: true},
	})
	assert.True(t, f.Notifications.Open)
	assert.False(t, f.Notifications.IsEmpty)

	f = sess.Navigate(models.NavigationContext{CurrentPath: "/work"})
	assert.False(t, f.Notifications.Open)
	assert.True(t, f.Notifications.IsEmpty)
}

func TestToggleSidebarRoundTrip(t *testing.T) {
	s := New()
	sess, _ := s.Sessions().Get("")

	assert.False(t, sess.State().SidebarCollapsed)
	assert.True(t, sess.ToggleSidebar().SidebarCollapsed)
	assert.False(t, sess.ToggleSidebar().SidebarCollapsed)

	// Navigation does not touch the collapsed flag.
	sess.ToggleSidebar()
	f := sess.Navigate(models.NavigationContext{CurrentPath: "/x"})
	assert.True(t, f.UI.SidebarCollapsed)
}

func TestSubscribeLayoutOnlyOnChange(t *testing.T) {
	s := New()
	s.Apply(testMenu())
	sess, _ := s.Sessions().Get("")
	ch, cancel := sess.SubscribeLayout()
	defer cancel()

	sess.Navigate(models.NavigationContext{CurrentPath: "/work"})
	select {
	case <-ch:
		t.Fatal("layout did not change")
	default:
	}

	sess.Navigate(models.NavigationContext{CurrentPath: "/checkout"})
	select {
	case l := <-ch:
		assert.True(t, l.NoSidebar)
	default:
		t.Fatal("expected layout change")
	}

	sess.Navigate(models.NavigationContext{CurrentPath: "/checkout/pay"})
	select {
	case <-ch:
		t.Fatal("layout did not change")
	default:
	}

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestRunAppliesUpdates(t *testing.T) {
	s := New(WithSessionTTL(0))
	snaps, unsubscribe := s.Subscribe()
	defer unsubscribe()

	updates := make(chan *models.Menu)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, updates) }()

	updates <- testMenu()
	select {
	case snap := <-snaps:
		assert.Equal(t, uint64(1), snap.Version)
	case <-time.After(5 * time.Second):
		t.Fatal("no snapshot published")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunStopsWhenUpdatesClose(t *testing.T) {
	s := New(WithSessionTTL(0))
	updates := make(chan *models.Menu)
	close(updates)
	assert.NoError(t, s.Run(context.Background(), updates))
}

func TestFramesSeeOneSnapshot(t *testing.T) {
	s := New()
	a := testMenu()
	b := &models.Menu{Categories: []models.MenuCategory{{Apps: []models.AppDescriptor{{Path: "/learn", Title: "Academy"}}}}}
	s.Apply(a)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				s.Apply(b)
			} else {
				s.Apply(a)
			}
		}
	}()

	sess, _ := s.Sessions().Get("")
	for i := 0; i < 500; i++ {
		f := sess.Navigate(models.NavigationContext{CurrentPath: "/work"})
		// Either menu a (three mounts, /work active) or menu b (one mount,
		// nothing active), never a mix.
		if f.ActiveApp != nil {
			assert.Len(t, f.Routes, 3)
		} else {
			assert.Len(t, f.Routes, 1)
		}
	}
	close(stop)
	wg.Wait()
}

func TestSessions(t *testing.T) {
	s := New()
	ss := s.Sessions()

	a, created := ss.Get("")
	assert.True(t, created)
	b, created := ss.Get(a.ID)
	assert.False(t, created)
	assert.Same(t, a, b)

	c, created := ss.Get("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, 2, ss.Len())

	_, ok := ss.Lookup(c.ID)
	assert.True(t, ok)

	assert.Equal(t, 0, ss.Prune(time.Now().Add(-time.Hour)))
	assert.Equal(t, 2, ss.Prune(time.Now().Add(time.Second)))
	assert.Equal(t, 0, ss.Len())
}

func TestApplyWarnsOnTrailingSlashDuplicate(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(WithLogger(zap.New(core)))

	snap := s.Apply(&models.Menu{Categories: []models.MenuCategory{
		{Name: "Work", Apps: []models.AppDescriptor{
			{Path: "/work", Title: "Work"},
			{Path: "/work/", Title: "Work again"},
		}},
	}})
	assert.Equal(t, 1, snap.Mounts.Len())

	dups := logs.FilterMessage("duplicate app path, keeping first registration").All()
	require.Len(t, dups, 1)
	assert.Equal(t, "/work/", dups[0].ContextMap()["path"])
}

func TestPreviewLeavesNoSession(t *testing.T) {
	s := New()
	s.Apply(testMenu())

	f := s.Preview(models.NavigationContext{CurrentPath: "/checkout/cart", Viewport: models.ViewportDesktop})
	assert.True(t, f.Layout.NoSidebar)
	assert.Empty(t, f.Routes)

	f = s.Preview(models.NavigationContext{CurrentPath: "/taas/requests", Viewport: models.ViewportDesktop})
	require.NotNil(t, f.UI.ActiveApp)
	assert.Equal(t, "/taas", f.UI.ActiveApp.Path)
	assert.False(t, f.Layout.NoSidebar)
	assert.Equal(t, 0, s.Sessions().Len())
}

func TestSessionsEvictLeastRecentlySeen(t *testing.T) {
	s := New(WithMaxSessions(2))
	ss := s.Sessions()

	a, _ := ss.Get("")
	b, _ := ss.Get("")
	time.Sleep(time.Millisecond)
	a.ToggleSidebar()

	c, created := ss.Get("")
	require.True(t, created)
	assert.Equal(t, 2, ss.Len())

	_, ok := ss.Lookup(b.ID)
	assert.False(t, ok, "idle session is evicted first")
	_, ok = ss.Lookup(a.ID)
	assert.True(t, ok)
	_, ok = ss.Lookup(c.ID)
	assert.True(t, ok)
}
