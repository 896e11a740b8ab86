package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/navshell/internal/api"
	"github.com/harrylevesque/navshell/internal/models"
	"github.com/harrylevesque/navshell/internal/nav"
	"github.com/harrylevesque/navshell/internal/shell"
	"github.com/harrylevesque/navshell/internal/store"
)

// loadMenu reads path, or the configured menu file when path is empty.
func loadMenu(cmd *cobra.Command, app *App, path string) (*models.Menu, error) {
	if path == "" {
		cfg, err := app.loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Menu.File
	}
	return store.NewFileMenuSource(path, nil).Load(cmd.Context())
}

type routesOutput struct {
	Routes     []api.RouteEntry `json:"routes"`
	Duplicates []string         `json:"duplicates,omitempty"`
	Invalid    []string         `json:"invalid,omitempty"`
	Disabled   []string         `json:"disabled_routes"`
	Rejected   []string         `json:"rejected_disabled_routes,omitempty"`
}

func newRoutesCmd(app *App) *cobra.Command {
	var menuPath string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table a menu produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			menu, err := loadMenu(cmd, app, menuPath)
			if err != nil {
				return err
			}
			table, conflicts := nav.NewMountTable(nav.Flatten(menu.Categories))
			policy, rejected := nav.NewPolicy(menu.DisabledRoutes)

			out := routesOutput{
				Routes:     make([]api.RouteEntry, 0, table.Len()),
				Duplicates: conflicts.Duplicates,
				Invalid:    conflicts.Invalid,
				Disabled:   policy.DisabledRoutes(),
				Rejected:   rejected,
			}
			for _, m := range table.Mounts() {
				out.Routes = append(out.Routes, api.RouteEntry{Pattern: m.Pattern, Path: m.App.Path, Title: m.App.Title})
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&menuPath, "menu", "", "Menu file (default: menu.file from config)")
	return cmd
}

func newResolveCmd(app *App) *cobra.Command {
	var (
		menuPath      string
		path          string
		viewport      string
		width         int
		authenticated bool
		testMarker    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the frame the shell renders for a location",
		Example: strings.TrimSpace(`
navshell resolve --menu menu.yaml --path /checkout/cart
navshell resolve --menu menu.yaml --path /onboard/start --width 600 --authenticated
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("resolve: missing --path")
			}
			menu, err := loadMenu(cmd, app, menuPath)
			if err != nil {
				return err
			}

			nc := models.NavigationContext{
				CurrentPath: path,
				Auth:        models.Auth{IsInitialized: true},
			}
			switch {
			case viewport != "":
				nc.Viewport = models.ParseViewport(viewport)
			case width > 0:
				nc.Viewport = nav.ClassifyViewport(width)
			}
			if authenticated {
				nc.Auth.TokenV3 = "cli"
				nc.Auth.Profile = &models.Profile{Handle: "cli"}
			}

			sh := shell.New(shell.WithTestMarker(testMarker))
			sh.Apply(menu)
			return writeOut(cmd, app, sh.Preview(nc))
		},
	}
	cmd.Flags().StringVar(&menuPath, "menu", "", "Menu file (default: menu.file from config)")
	cmd.Flags().StringVar(&path, "path", "", "Current location path")
	cmd.Flags().StringVar(&viewport, "viewport", "", "Viewport class (mobile|desktop)")
	cmd.Flags().IntVar(&width, "width", 0, "Viewport width in CSS pixels")
	cmd.Flags().BoolVar(&authenticated, "authenticated", false, "Resolve as a logged-in user")
	cmd.Flags().BoolVar(&testMarker, "test-marker", false, "Include the test environment marker")
	return cmd
}

func newPublishCmd(app *App) *cobra.Command {
	var menuPath string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a menu file to the Redis menu key and notify running shells",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if menuPath == "" {
				menuPath = cfg.Menu.File
			}
			menu, err := store.NewFileMenuSource(menuPath, nil).Load(cmd.Context())
			if err != nil {
				return err
			}

			client := newRedisClient(cfg.Redis)
			defer client.Close()
			src := store.NewRedisMenuSource(client, cfg.Redis.MenuKey, cfg.Redis.MenuChannel, nil)
			if err := src.Publish(cmd.Context(), menu); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"key":     cfg.Redis.MenuKey,
				"channel": cfg.Redis.MenuChannel,
				"apps":    len(nav.Flatten(menu.Categories)),
			})
		},
	}
	cmd.Flags().StringVar(&menuPath, "menu", "", "Menu file (default: menu.file from config)")
	return cmd
}
