package nav

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/mux"
)

var ErrInvalidPattern = errors.New("nav: invalid route pattern")

// Matcher tests paths against a fixed set of route patterns.
//
// Patterns use the router syntax of the menu configuration: plain segments
// match exactly, ":name" matches one segment and a trailing "*" matches any
// remaining suffix, including none. Leading and trailing slashes are ignored
// and matching is case-sensitive. Each pattern is compiled into a mux route
// template so membership checks and route mounting share one engine.
type Matcher struct {
	patterns []string
	routes   []*mux.Route
}

// Compile builds a Matcher. It fails on the first malformed pattern.
func Compile(patterns ...string) (*Matcher, error) {
	r := mux.NewRouter()
	m := &Matcher{
		patterns: make([]string, 0, len(patterns)),
		routes:   make([]*mux.Route, 0, len(patterns)),
	}
	for _, p := range patterns {
		tpl, err := Template(p)
		if err != nil {
			return nil, err
		}
		route := r.NewRoute().Path(tpl)
		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
		m.patterns = append(m.patterns, p)
		m.routes = append(m.routes, route)
	}
	return m, nil
}

// Match reports whether path matches any compiled pattern. A nil or empty
// Matcher never matches.
func (m *Matcher) Match(p string) bool {
	if m == nil || len(m.routes) == 0 {
		return false
	}
	req := matchRequest(p)
	for _, route := range m.routes {
		if route.Match(req, &mux.RouteMatch{}) {
			return true
		}
	}
	return false
}

func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Matches is the one-shot form of Compile+Match. Malformed patterns are
// skipped rather than reported.
func Matches(patterns []string, p string) bool {
	for _, pattern := range patterns {
		m, err := Compile(pattern)
		if err != nil {
			continue
		}
		if m.Match(p) {
			return true
		}
	}
	return false
}

// Template converts a route pattern into a mux path template.
func Template(pattern string) (string, error) {
	p := strings.Trim(strings.TrimSpace(pattern), "/")
	if p == "" {
		return "/", nil
	}
	if strings.ContainsAny(p, "{}") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	segs := strings.Split(p, "/")
	params := make(map[string]bool)
	var b strings.Builder
	for i, seg := range segs {
		switch {
		case seg == "":
			continue
		case seg == "*":
			if i != len(segs)-1 {
				return "", fmt.Errorf("%w: %q: wildcard must be the last segment", ErrInvalidPattern, pattern)
			}
			if b.Len() == 0 {
				return "/{splat:.*}", nil
			}
			b.WriteString("{splat:(?:/.*)?}")
			return b.String(), nil
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if !validParam(name) || params[name] {
				return "", fmt.Errorf("%w: %q: bad parameter %q", ErrInvalidPattern, pattern, seg)
			}
			params[name] = true
			b.WriteString("/{" + name + "}")
		default:
			b.WriteString("/" + seg)
		}
	}
	return b.String(), nil
}

// NormalizePath gives a path a single leading slash and no trailing slash.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func matchRequest(p string) *http.Request {
	return &http.Request{
		Method: http.MethodGet,
		URL:    &url.URL{Path: NormalizePath(p)},
		Header: http.Header{},
	}
}

func validParam(name string) bool {
	if name == "" || name == "splat" {
		return false
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
