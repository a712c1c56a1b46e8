package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-character-list/internal/tui"
	"github.com/goliatone/go-character-list/pkg/di"
)

func (a *App) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive character list",
		Long: `Open the interactive character list.

Keys:
  ↑/↓ or k/j   move; reaching the last row loads the next page
  /            search (applied after typing pauses)
  enter        resolve the avatar of the selected character
  r            retry the current page
  c            clear the in-memory image cache
  esc          dismiss the current alert
  q            quit`,
		Args: cobra.NoArgs,
		RunE: a.withContainer(func(cmd *cobra.Command, c *di.Container, _ []string) error {
			ctrl := c.NewController(cmd.Context())
			defer ctrl.Close()

			return tui.Run(cmd.Context(), ctrl,
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
		}),
	}
}
