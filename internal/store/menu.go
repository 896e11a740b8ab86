package store

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/navshell/internal/models"
)

var (
	// ErrMenuNotFound is returned when the source holds no menu yet.
	ErrMenuNotFound = errors.New("store: menu not found")
	// ErrProfileNotFound is returned when no profile is stored for a token.
	ErrProfileNotFound = errors.New("store: profile not found")
)

// MenuSource delivers menu configuration versions. Every value sent on the
// Watch channel is a fresh *models.Menu that is never modified afterwards.
type MenuSource interface {
	Load(ctx context.Context) (*models.Menu, error)
	// Watch streams new menus until ctx is done, then closes the channel.
	Watch(ctx context.Context) (<-chan *models.Menu, error)
}

// ParseMenu decodes a YAML (or JSON) menu document and validates it.
func ParseMenu(data []byte) (*models.Menu, error) {
	var m models.Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if err := ValidateMenu(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ValidateMenu rejects apps without a path. Duplicate paths are allowed here
// and reported by the shell when the menu is mounted.
func ValidateMenu(m *models.Menu) error {
	for ci, c := range m.Categories {
		for ai, a := range c.Apps {
			if a.Path == "" {
				return fmt.Errorf("invalid menu: categories[%d].apps[%d].path is required", ci, ai)
			}
		}
	}
	return nil
}
