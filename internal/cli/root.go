package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/navshell/internal/utils"
)

type App struct {
	ConfigPath string
	Pretty     bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "navshell",
		Short:        "Navigation shell for the platform's micro-apps",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the shell with navshell.yaml from the project root
  navshell serve

  # Inspect the route table a menu produces
  navshell routes --menu menu.yaml

  # Show what the shell renders for a location
  navshell resolve --menu menu.yaml --path /work/projects --viewport mobile
`),
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("NAVSHELL_CONFIG", ""), "Path to the config file (default: navshell.yaml in the project root)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newRoutesCmd(app))
	cmd.AddCommand(newResolveCmd(app))
	cmd.AddCommand(newPublishCmd(app))

	return cmd
}

func (app *App) loadConfig() (utils.Config, error) {
	return utils.LoadConfig(app.ConfigPath)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
