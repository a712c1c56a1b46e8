package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-character-list/imagepipeline"
	"github.com/goliatone/go-character-list/pkg/di"
)

const imageOwner = "cli-image"

func (a *App) imageCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "image <url>",
		Short: "Resolve an avatar through the memory, store and network tiers",
		Long: `Resolve an avatar URL and report which tier served it.

Images fetched from the network are saved in the local store, so a second
run is served from the store without a download.`,
		Args: cobra.ExactArgs(1),
		RunE: a.withContainer(func(cmd *cobra.Command, c *di.Container, args []string) error {
			url := args[0]
			w := cmd.OutOrStdout()

			res := c.Pipeline().ResolveResult(cmd.Context(), imageOwner, url)
			reportAlert(w, c)
			if res.Data == nil {
				return errors.WithContext(errors.New(errors.CodeNotFound, "no image could be resolved"), "url", url)
			}

			info, err := imagepipeline.Inspect(res.Data)
			if err != nil {
				fmt.Fprintf(w, "%s: %d bytes from %s (unrecognised format)\n", url, len(res.Data), res.Tier)
			} else {
				fmt.Fprintf(w, "%s: %s %dx%d, %d bytes from %s\n", url, info.Format, info.Width, info.Height, info.Size, res.Tier)
			}

			if out != "" {
				if err := os.WriteFile(out, res.Data, 0o600); err != nil {
					return errors.Wrapf(err, errors.CodeInternal, "write %s", out)
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the image bytes to this file")
	return cmd
}

func reportAlert(w io.Writer, c *di.Container) {
	a, ok := c.Alerts().Pending()
	if !ok {
		return
	}
	if a.HasSubtitle() {
		fmt.Fprintf(w, "warning: %s: %s\n", a.Title, a.Subtitle)
	} else {
		fmt.Fprintf(w, "warning: %s\n", a.Title)
	}
	c.Alerts().Dismiss()
}
