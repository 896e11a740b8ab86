package nav

import (
	"sync"

	"github.com/harrylevesque/navshell/internal/models"
)

// Flatten lists every app across categories, in category order and then app
// order within a category. Duplicates are kept.
func Flatten(categories []models.MenuCategory) []models.AppDescriptor {
	n := 0
	for _, c := range categories {
		n += len(c.Apps)
	}
	apps := make([]models.AppDescriptor, 0, n)
	for _, c := range categories {
		apps = append(apps, c.Apps...)
	}
	return apps
}

// Registry memoizes the flat app list of the last menu it was given. The cache
// key is the *models.Menu pointer, not its contents: publishing a new pointer
// recomputes even when nothing changed, and mutating a published menu in place
// is not observed.
type Registry struct {
	mu    sync.Mutex
	menu  *models.Menu
	apps  []models.AppDescriptor
	count int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Apps returns the flat app list for menu. The returned slice is shared
// between callers holding the same menu and must not be modified.
func (r *Registry) Apps(menu *models.Menu) []models.AppDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if menu == r.menu && r.count > 0 {
		return r.apps
	}

	var categories []models.MenuCategory
	if menu != nil {
		categories = menu.Categories
	}
	r.menu = menu
	r.apps = Flatten(categories)
	r.count++
	return r.apps
}

// Recomputations counts how many times Apps had to flatten a new menu.
func (r *Registry) Recomputations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
