package shell

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/nav"
)

// Snapshot is one menu configuration together with everything derived from
// it. Snapshots are immutable; a request works against exactly one.
type Snapshot struct {
	Version uint64
	Menu    *models.Menu
	Apps    []models.AppDescriptor
	Mounts  *nav.MountTable
	Policy  *nav.Policy
}

// Shell is the composition root. It owns the current Snapshot, replaces it
// whenever a new menu arrives and hands out per-browser Sessions.
type Shell struct {
	logger      *zap.Logger
	registry    *nav.Registry
	policyOpts  []nav.PolicyOption
	sessionTTL  time.Duration
	maxSessions int

	applyMu sync.Mutex
	current atomic.Pointer[Snapshot]

	subsMu  sync.Mutex
	subs    map[int]chan *Snapshot
	nextSub int

	sessions *Sessions
}

type Option func(*Shell)

func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithTestMarker turns on the hidden navbar marker used by UI tests.
func WithTestMarker(on bool) Option {
	return func(s *Shell) { s.policyOpts = append(s.policyOpts, nav.WithTestMarker(on)) }
}

// WithSessionTTL sets how long an idle session is kept. Zero keeps sessions
// forever.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Shell) { s.sessionTTL = d }
}

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Shell) { s.maxSessions = n }
}

// New returns a Shell holding an empty menu.
func New(opts ...Option) *Shell {
	s := &Shell{
		logger:      zap.NewNop(),
		registry:    nav.NewRegistry(),
		sessionTTL:  12 * time.Hour,
		maxSessions: 10000,
		subs:        make(map[int]chan *Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = newSessions(s)
	s.current.Store(s.build(nil, 0))
	return s
}

// Snapshot returns the current configuration snapshot.
func (s *Shell) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Shell) Sessions() *Sessions {
	return s.sessions
}

// Preview computes the frame for nc without a session: the UI state and
// layout are what a fresh session would hold after navigating there.
func (s *Shell) Preview(nc models.NavigationContext) Frame {
	f := BuildFrame(s.Snapshot(), nc)
	f.UI = models.UIState{ActiveApp: f.ActiveApp, HideSwitchTools: f.Flags.HideSwitchTools}
	f.Layout = LayoutContext{NoSidebar: f.Flags.SidebarDisabled}
	return f
}

// Recomputations reports how often the flat app list was rebuilt.
func (s *Shell) Recomputations() int {
	return s.registry.Recomputations()
}

// Apply publishes menu as the new configuration. Applying the menu that is
// already current is a no-op.
func (s *Shell) Apply(menu *models.Menu) *Snapshot {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	prev := s.current.Load()
	if prev.Menu == menu {
		return prev
	}
	snap := s.build(menu, prev.Version+1)
	s.current.Store(snap)
	s.logger.Info("menu applied",
		zap.Uint64("version", snap.Version),
		zap.Int("apps", len(snap.Apps)),
		zap.Int("routes", snap.Mounts.Len()),
	)
	s.publish(snap)
	return snap
}

func (s *Shell) build(menu *models.Menu, version uint64) *Snapshot {
	apps := s.registry.Apps(menu)

	mounts, conflicts := nav.NewMountTable(apps)
	for _, p := range conflicts.Duplicates {
		s.logger.Warn("duplicate app path, keeping first registration", zap.String("path", p))
	}
	for _, p := range conflicts.Invalid {
		s.logger.Warn("app path cannot be mounted", zap.String("path", p))
	}

	var disabled []string
	if menu != nil {
		disabled = menu.DisabledRoutes
	}
	policy, rejected := nav.NewPolicy(disabled, s.policyOpts...)
	for _, p := range rejected {
		s.logger.Warn("ignoring malformed disabled route", zap.String("pattern", p))
	}

	return &Snapshot{
		Version: version,
		Menu:    menu,
		Apps:    apps,
		Mounts:  mounts,
		Policy:  policy,
	}
}

// Subscribe delivers every new Snapshot. Slow subscribers only see the latest
// one. The returned func unsubscribes.
func (s *Shell) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Shell) publish(snap *Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		sendLatest(ch, snap)
	}
}

// Run applies menus from updates until ctx is done or updates is closed, and
// prunes idle sessions in between.
func (s *Shell) Run(ctx context.Context, updates <-chan *models.Menu) error {
	var prune <-chan time.Time
	if s.sessionTTL > 0 {
		t := time.NewTicker(s.sessionTTL / 2)
		defer t.Stop()
		prune = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case menu, ok := <-updates:
			if !ok {
				return nil
			}
			s.Apply(menu)
		case now := <-prune:
			if n := s.sessions.Prune(now.Add(-s.sessionTTL)); n > 0 {
				s.logger.Debug("pruned idle sessions", zap.Int("count", n))
			}
		}
	}
}

// sendLatest replaces whatever is buffered in ch with v.
func sendLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
