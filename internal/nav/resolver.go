package nav

import (
	"strings"

	"github.com/harrylevesque/navshell/internal/models"
)

// Resolve picks the active app for currentPath: the first app, in list order,
// whose path occurs anywhere in currentPath.
//
// First match wins even when a later app is more specific, so with "/a" listed
// before "/a/b" the path "/a/b/detail" resolves to "/a". Menus that nest app
// paths must list the longer path first.
func Resolve(apps []models.AppDescriptor, currentPath string) (models.AppDescriptor, bool) {
	for _, app := range apps {
		if app.Path == "" {
			continue
		}
		if strings.Contains(currentPath, app.Path) {
			return app, true
		}
	}
	return models.AppDescriptor{}, false
}
