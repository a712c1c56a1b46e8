package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-character-list/pkg/di"
)

func (a *App) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and prune the persistent image store",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of stored images",
			Args:  cobra.NoArgs,
			RunE: a.withContainer(func(cmd *cobra.Command, c *di.Container, _ []string) error {
				n, err := c.Store().Count(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d images stored\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "purge <url>",
			Short: "Delete every stored copy of an image URL",
			Args:  cobra.ExactArgs(1),
			RunE: a.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
				n, err := c.Store().DeleteByURL(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records for %s\n", n, args[0])
				return nil
			}),
		},
	)
	return cmd
}
