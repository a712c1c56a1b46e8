// Package cli provides the Cobra commands of the charlist binary.
package cli

import (
	"context"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-character-list/config"
	"github.com/goliatone/go-character-list/internal/logging"
	"github.com/goliatone/go-character-list/pkg/di"
)

// App holds the state shared by every subcommand.
type App struct {
	configPath string
	logLevel   string

	container *di.Container
}

// Container returns the container built for the running command.
func (a *App) Container() *di.Container {
	return a.container
}

// NewRootCommand builds the charlist command tree.
func NewRootCommand() *cobra.Command {
	a := &App{}

	root := &cobra.Command{
		Use:   "charlist",
		Short: "Browse the Rick and Morty characters from the terminal",
		Long: `charlist pages through the character API, filters the accumulated list
as you type and resolves avatars through a memory cache, a local database
and finally the network.

Run 'charlist browse' for the interactive list, or use the subcommands
for scripted listings, image lookups and cache maintenance.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a charlist.{yaml,toml,json} file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		a.browseCommand(),
		a.listCommand(),
		a.imageCommand(),
		a.prefetchCommand(),
		a.storeCommand(),
	)
	return root
}

// Execute runs the command tree with ctx and os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	// Skip initialization for commands that don't need the container
	switch cmd.Name() {
	case "help", "completion":
		return nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).
		With().Str("command", cmd.Name()).Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	container, err := di.NewContainerWithLogger(ctx, cfg, logger)
	if err != nil {
		return err
	}

	a.container = container
	cmd.SetContext(container.Context(ctx))
	return nil
}

func (a *App) close() error {
	if a.container == nil {
		return nil
	}
	err := a.container.Close()
	a.container = nil
	return err
}

// withContainer adapts fn to a RunE that closes the container when fn returns.
func (a *App) withContainer(fn func(cmd *cobra.Command, c *di.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if a.container == nil {
			return errors.New(errors.CodeInternal, "app not initialized")
		}
		defer func() {
			if closeErr := a.close(); err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, a.container, args)
	}
}
