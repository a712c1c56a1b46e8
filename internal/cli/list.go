package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-character-list/characterlist"
	"github.com/goliatone/go-character-list/characters"
	"github.com/goliatone/go-character-list/pkg/di"
)

type listOptions struct {
	pages  int
	search string
	json   bool
}

func (a *App) listCommand() *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the characters of the first pages",
		Long: `Load pages through the list controller and print the accumulated list.

With --search the list is filtered the same way the interactive search does:
a case-insensitive substring match on the name.`,
		Args: cobra.NoArgs,
		RunE: a.withContainer(func(cmd *cobra.Command, c *di.Container, _ []string) error {
			if opts.pages < 1 {
				return errors.New(errors.CodeInvalidInput, "--pages must be at least 1")
			}

			ctrl := c.NewController(cmd.Context())
			defer ctrl.Close()

			snap, err := collect(cmd.Context(), ctrl, opts.pages, opts.search)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), snap.Filtered)
			}
			writeTable(cmd.OutOrStdout(), snap)
			return nil
		}),
	}

	cmd.Flags().IntVar(&opts.pages, "pages", 1, "number of pages to load")
	cmd.Flags().StringVar(&opts.search, "search", "", "only print names containing this text")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	return cmd
}

// collect loads up to pages pages through ctrl and applies search. It stops
// early when the API has no more pages.
func collect(ctx context.Context, ctrl *characterlist.Controller, pages int, search string) (characterlist.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snaps := make(chan characterlist.Snapshot, 16)
	ctrl.Subscribe(func(s characterlist.Snapshot) {
		select {
		case snaps <- s:
		case <-ctx.Done():
		}
	})
	defer ctrl.Subscribe(nil)

	wait := func(done func(characterlist.Snapshot) bool) (characterlist.Snapshot, error) {
		for {
			select {
			case s := <-snaps:
				if done(s) {
					return s, nil
				}
			case <-ctx.Done():
				return characterlist.Snapshot{}, ctx.Err()
			}
		}
	}
	settled := func(page int) func(characterlist.Snapshot) bool {
		return func(s characterlist.Snapshot) bool {
			return !s.Fetching &&
				s.Pagination.CurrentPage == page &&
				!s.State.Is(characterlist.StateIdle) &&
				!s.State.Is(characterlist.StateLoading)
		}
	}

	ctrl.Load()
	snap, err := wait(settled(1))
	for page := 2; err == nil && page <= pages && !snap.State.Is(characterlist.StateError) && snap.Pagination.HasMore(); page++ {
		if !ctrl.FetchNextPage() {
			break
		}
		snap, err = wait(settled(page))
	}
	if err != nil {
		return characterlist.Snapshot{}, err
	}
	if snap.State.Is(characterlist.StateError) {
		return snap, errors.New(errors.CodeNetwork, snap.State.Message)
	}

	if search != "" {
		ctrl.SetSearchText(search)
		return wait(func(s characterlist.Snapshot) bool { return s.SearchText == search })
	}
	return snap, nil
}

func writeJSON(w io.Writer, list []characters.Character) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

func writeTable(w io.Writer, snap characterlist.Snapshot) {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#97ce4c"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))

	if len(snap.Filtered) == 0 {
		fmt.Fprintln(w, muted.Render("No characters found."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(muted).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ID", "Name", "Species", "Status")
	for _, ch := range snap.Filtered {
		t.Row(strconv.Itoa(ch.ID), ch.Name, ch.Species, ch.Status)
	}

	fmt.Fprintln(w, t.String())
	p := snap.Pagination
	fmt.Fprintln(w, muted.Render(fmt.Sprintf("page %d of %d, %d loaded, %d shown", p.CurrentPage, p.TotalPages, len(snap.Characters), len(snap.Filtered))))
}
