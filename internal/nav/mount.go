package nav

import (
	"strings"

	"github.com/harrylevesque/navshell/internal/models"
)

// Mount is one entry of the produced route table.
type Mount struct {
	Pattern string               `json:"pattern"`
	App     models.AppDescriptor `json:"app"`
}

// MountPattern is the route an app panel is mounted on: its path plus "/*".
func MountPattern(app models.AppDescriptor) string {
	return strings.TrimRight(app.Path, "/") + "/*"
}

// MountTable is the route table derived from one flat app list.
type MountTable struct {
	mounts   []Mount
	matchers []*Matcher
}

// Conflicts lists the app paths a MountTable could not mount.
type Conflicts struct {
	Duplicates []string
	Invalid    []string
}

func (c Conflicts) Empty() bool {
	return len(c.Duplicates) == 0 && len(c.Invalid) == 0
}

// NewMountTable mounts one route per app. When several apps share a path the
// first one registered keeps the route.
func NewMountTable(apps []models.AppDescriptor) (*MountTable, Conflicts) {
	var c Conflicts
	t := &MountTable{
		mounts:   make([]Mount, 0, len(apps)),
		matchers: make([]*Matcher, 0, len(apps)),
	}
	taken := make(map[string]bool, len(apps))
	for _, app := range apps {
		if app.Path == "" {
			c.Invalid = append(c.Invalid, app.Path)
			continue
		}
		pattern := MountPattern(app)
		if taken[pattern] {
			c.Duplicates = append(c.Duplicates, app.Path)
			continue
		}
		m, err := Compile(pattern)
		if err != nil {
			c.Invalid = append(c.Invalid, app.Path)
			continue
		}
		taken[pattern] = true
		t.mounts = append(t.mounts, Mount{Pattern: pattern, App: app})
		t.matchers = append(t.matchers, m)
	}
	return t, c
}

func (t *MountTable) Mounts() []Mount {
	if t == nil {
		return nil
	}
	out := make([]Mount, len(t.mounts))
	copy(out, t.mounts)
	return out
}

func (t *MountTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.mounts)
}

// Match returns the first mount whose pattern matches p.
func (t *MountTable) Match(p string) (Mount, bool) {
	if t == nil {
		return Mount{}, false
	}
	for i, m := range t.matchers {
		if m.Match(p) {
			return t.mounts[i], true
		}
	}
	return Mount{}, false
}
