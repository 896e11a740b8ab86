package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/nav"
	"github.com/harrylevesque/navshell/internal/shell"
	"github.com/harrylevesque/navshell/internal/ui"
	"github.com/harrylevesque/navshell/internal/utils"
)

// viewportHint is the client hint carrying the layout viewport width.
const viewportHint = "Sec-CH-Viewport-Width"

// RouteEntry is one row of the produced route table.
type RouteEntry struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
	Title   string `json:"title"`
}

// NavHandler returns the frame for ?path= as JSON.
func (s *Server) NavHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := q.Get("path")
	if p == "" {
		writeError(w, utils.New(http.StatusBadRequest, "missing path"))
		return
	}
	nc, err := s.navigationContext(r, p)
	if err != nil {
		writeError(w, err)
		return
	}
	if sess, ok := s.lookupSession(r); ok {
		writeJSON(w, http.StatusOK, sess.Navigate(nc))
		return
	}
	writeJSON(w, http.StatusOK, s.shell.Preview(nc))
}

// RoutesHandler lists the routes mounted for the current menu.
func (s *Server) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	mounts := s.shell.Snapshot().Mounts.Mounts()
	out := make([]RouteEntry, 0, len(mounts))
	for _, m := range mounts {
		out = append(out, RouteEntry{Pattern: m.Pattern, Path: m.App.Path, Title: m.App.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

// LayoutHandler reports the session's layout context. Callers without a
// session get the default layout.
func (s *Server) LayoutHandler(w http.ResponseWriter, r *http.Request) {
	var layout shell.LayoutContext
	if sess, ok := s.lookupSession(r); ok {
		layout = sess.Layout()
	}
	writeJSON(w, http.StatusOK, layout)
}

// ToggleSidebarHandler flips the session's sidebar. Form posts from the page
// are redirected back; API callers get the new UI state.
func (s *Server) ToggleSidebarHandler(w http.ResponseWriter, r *http.Request) {
	state := s.session(w, r).ToggleSidebar()
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, sameHostReferer(r), http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// PageHandler renders the shell page for the requested location. Subresource
// fetches that reach it are answered with 404 and leave the session alone.
func (s *Server) PageHandler(w http.ResponseWriter, r *http.Request) {
	if !s.isNavigation(r) {
		http.NotFound(w, r)
		return
	}
	nc, err := s.navigationContext(r, r.URL.Path)
	if err != nil {
		writeError(w, err)
		return
	}
	frame := s.session(w, r).Navigate(nc)

	var buf bytes.Buffer
	v := ui.View{
		Frame:     frame,
		AuthURL:   s.authURL,
		Host:      r.Host,
		ReturnURL: requestURL(r),
	}
	if err := ui.Render(&buf, v); err != nil {
		s.logger.Error("render page", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write page", zap.Error(err))
	}
}

// session returns the caller's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *shell.Session {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	sess, created := s.shell.Sessions().Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// lookupSession returns the caller's session if it already has one.
func (s *Server) lookupSession(r *http.Request) (*shell.Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	return s.shell.Sessions().Lookup(c.Value)
}

// isNavigation reports whether r loads a page. Requests the browser marks as
// non-document fetches, and paths with a file extension outside any mounted
// app, are not navigations.
func (s *Server) isNavigation(r *http.Request) bool {
	if dest := r.Header.Get("Sec-Fetch-Dest"); dest != "" && dest != "document" {
		return false
	}
	if path.Ext(r.URL.Path) == "" {
		return true
	}
	_, mounted := s.shell.Snapshot().Mounts.Match(r.URL.Path)
	return mounted
}

// sameHostReferer returns the path and query of the Referer when it points
// at this host, and "/" otherwise.
func sameHostReferer(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if ref.Scheme != "" && ref.Scheme != "http" && ref.Scheme != "https" {
		return "/"
	}
	back := &url.URL{Path: ref.Path, RawQuery: ref.RawQuery}
	return back.String()
}

func (s *Server) navigationContext(r *http.Request, p string) (models.NavigationContext, error) {
	vp, err := viewport(r)
	if err != nil {
		return models.NavigationContext{}, err
	}
	return models.NavigationContext{
		CurrentPath:   p,
		Viewport:      vp,
		Auth:          s.auth.Resolve(r),
		Notifications: notificationsState(r.URL.Query().Get("notifications")),
	}, nil
}

// viewport reads ?viewport=, then ?width=, then the viewport width client
// hint. Without any of them the request is treated as desktop.
func viewport(r *http.Request) (models.Viewport, error) {
	q := r.URL.Query()
	if v := q.Get("viewport"); v != "" {
		if v != "mobile" && v != "desktop" {
			return 0, utils.New(http.StatusBadRequest, "viewport must be mobile or desktop")
		}
		return models.ParseViewport(v), nil
	}
	width := q.Get("width")
	if width == "" {
		width = r.Header.Get(viewportHint)
	}
	if width == "" {
		return models.ViewportDesktop, nil
	}
	n, err := strconv.Atoi(width)
	if err != nil || n < 0 {
		return 0, utils.New(http.StatusBadRequest, "invalid viewport width")
	}
	return nav.ClassifyViewport(n), nil
}

// notificationsState parses a comma separated list of notification load
// states, e.g. "initialized,community-loading".
func notificationsState(s string) models.NotificationsState {
	var st models.NotificationsState
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case "loading":
			st.IsLoading = true
		case "community-loading":
			st.IsCommunityLoading = true
		case "initialized":
			st.Initialized = true
		case "community-initialized":
			st.CommunityInitialized = true
		}
	}
	return st
}

func requestURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := utils.StatusOf(err)
	writeJSON(w, code, map[string]string{"error": msg})
}
