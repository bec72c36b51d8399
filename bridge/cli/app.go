// Package cli implements the meshbridge command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/meshbridge/bridge/config"
	"github.com/spaghettifunk/meshbridge/bridge/core"
	"github.com/spaghettifunk/meshbridge/bridge/exchange"
	"github.com/spaghettifunk/meshbridge/bridge/reconcile"
	"github.com/spaghettifunk/meshbridge/bridge/scene"
	"github.com/spaghettifunk/meshbridge/bridge/scene/sqlstore"
)

// App holds the state shared by every command of one invocation.
type App struct {
	configPath string
	logLevel   string

	out io.Writer
	cfg *config.Config
}

func New(out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	return &App{out: out}
}

// Execute runs the command line with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(a.out)
	return root.ExecuteContext(ctx)
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "meshbridge",
		Short: "Round-trip meshes between a scene and an external sculpting tool",
		Long: `meshbridge exports selected meshes to OBJ files for an external
sculpting tool, then imports the re-exported result and merges it back into
the original objects, keeping shape keys when the topology is unchanged.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is ./"+config.DefaultFileName+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the config)")

	root.AddCommand(
		a.newImportCommand(),
		a.newExportCommand(),
		a.newWatchCommand(),
		a.newSceneCommand(),
		a.newConfigCommand(),
	)
	return root
}

// setup loads the configuration and applies the log level. Commands that
// must work without a valid config are annotated to skip it.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] == "true" {
		if a.logLevel != "" {
			core.SetLogLevel(a.logLevel)
		}
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	core.SetLogLevel(level)
	return nil
}

const skipConfig = "skip-config"

// openScene opens the headless scene database named by the config.
func (a *App) openScene() (*sqlstore.Store, error) {
	return sqlstore.Open(a.cfg.Scene.Database, scene.ImportOptions{Orientation: a.cfg.ImportOrientation()})
}

func (a *App) newCoordinator(s scene.Scene) *exchange.Coordinator {
	return exchange.NewCoordinator(a.cfg.Exchange, s, reconcile.New(a.cfg.Import.PromotedName))
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}
