package shell

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/navshell/internal/models"
)

// Session is the shell state of one browser: collapsed sidebar, last active
// app and the layout context its descendants observe.
type Session struct {
	ID string

	shell *Shell

	mu       sync.Mutex
	ui       models.UIState
	layout   LayoutContext
	lastSeen time.Time
	subs     map[int]chan LayoutContext
	nextSub  int
}

// Navigate handles a location or viewport change. The frame is computed from
// one snapshot even if the menu is replaced concurrently.
func (s *Session) Navigate(nc models.NavigationContext) Frame {
	f := BuildFrame(s.shell.Snapshot(), nc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.ui.ActiveApp = f.ActiveApp
	s.ui.HideSwitchTools = f.Flags.HideSwitchTools
	if s.layout.NoSidebar != f.Flags.SidebarDisabled {
		s.layout.NoSidebar = f.Flags.SidebarDisabled
		s.notifyLocked()
	}
	f.UI = s.ui
	f.Layout = s.layout
	return f
}

// ToggleSidebar flips the collapsed flag and returns the new state.
func (s *Session) ToggleSidebar() models.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.ui.SidebarCollapsed = !s.ui.SidebarCollapsed
	return s.ui
}

func (s *Session) State() models.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

func (s *Session) Layout() LayoutContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// SubscribeLayout reports every change of the layout context. The channel
// holds only the latest value.
func (s *Session) SubscribeLayout() (<-chan LayoutContext, func()) {
	ch := make(chan LayoutContext, 1)
	s.mu.Lock()
	if s.subs == nil {
		s.subs = make(map[int]chan LayoutContext)
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) notifyLocked() {
	for _, ch := range s.subs {
		sendLatest(ch, s.layout)
	}
}

func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(t)
}

// Sessions indexes live sessions by id. When max is set, creating a session
// beyond it evicts the one idle the longest.
type Sessions struct {
	shell *Shell
	max   int

	mu   sync.Mutex
	byID map[string]*Session
}

func newSessions(sh *Shell) *Sessions {
	return &Sessions{shell: sh, max: sh.maxSessions, byID: make(map[string]*Session)}
}

// Get returns the session for id, creating a new one when id is unknown or
// not a valid session id. created reports whether a new session was made.
func (ss *Sessions) Get(id string) (sess *Session, created bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := ss.byID[id]; ok {
			return sess, false
		}
	}
	if ss.max > 0 && len(ss.byID) >= ss.max {
		ss.evictLocked()
	}
	sess = &Session{ID: uuid.NewString(), shell: ss.shell, lastSeen: time.Now()}
	ss.byID[sess.ID] = sess
	return sess, true
}

func (ss *Sessions) evictLocked() {
	var oldest *Session
	var oldestSeen time.Time
	for _, sess := range ss.byID {
		sess.mu.Lock()
		seen := sess.lastSeen
		sess.mu.Unlock()
		if oldest == nil || seen.Before(oldestSeen) {
			oldest, oldestSeen = sess, seen
		}
	}
	if oldest != nil {
		delete(ss.byID, oldest.ID)
	}
}

// Lookup returns an existing session without creating one.
func (ss *Sessions) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	sess, ok := ss.byID[id]
	return sess, ok
}

func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.byID)
}

// Prune drops sessions not seen since before and returns how many were
// removed.
func (ss *Sessions) Prune(before time.Time) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	n := 0
	for id, sess := range ss.byID {
		if sess.idleSince(before) {
			delete(ss.byID, id)
			n++
		}
	}
	return n
}
