package cli

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-character-list/imagepipeline"
	"github.com/goliatone/go-character-list/internal/logging"
	"github.com/goliatone/go-character-list/pkg/di"
)

const defaultPrefetchConcurrency = 4

// prefetchSummary counts resolutions per serving tier.
type prefetchSummary struct {
	mu    sync.Mutex
	tiers map[imagepipeline.Tier]int
	total int
}

func (s *prefetchSummary) add(t imagepipeline.Tier) {
	s.mu.Lock()
	s.tiers[t]++
	s.total++
	s.mu.Unlock()
}

func (a *App) prefetchCommand() *cobra.Command {
	var (
		pages       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Warm the image store with the avatars of the first pages",
		Args:  cobra.NoArgs,
		RunE: a.withContainer(func(cmd *cobra.Command, c *di.Container, _ []string) error {
			if pages < 1 {
				return errors.New(errors.CodeInvalidInput, "--pages must be at least 1")
			}
			if concurrency < 1 {
				return errors.New(errors.CodeInvalidInput, "--concurrency must be at least 1")
			}

			summary, err := prefetch(cmd.Context(), c, pages, concurrency)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "resolved %d avatars: %d memory, %d store, %d network, %d missing\n",
				summary.total,
				summary.tiers[imagepipeline.TierMemory],
				summary.tiers[imagepipeline.TierStore],
				summary.tiers[imagepipeline.TierNetwork],
				summary.tiers[imagepipeline.TierNone],
			)
			reportAlert(w, c)
			return nil
		}),
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages whose avatars are resolved")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultPrefetchConcurrency, "resolutions running at once")
	return cmd
}

// prefetch resolves every avatar of the first pages. Each character is its
// own pipeline owner so resolutions never cancel each other.
func prefetch(ctx context.Context, c *di.Container, pages, concurrency int) (*prefetchSummary, error) {
	log := logging.FromContext(ctx)
	summary := &prefetchSummary{tiers: map[imagepipeline.Tier]int{}}

	for page := 1; page <= pages; page++ {
		result, err := c.Client().FetchCharacters(ctx, page)
		if err != nil {
			return nil, err
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(concurrency)
		for _, ch := range result.Items {
			owner := "prefetch-" + strconv.Itoa(ch.ID)
			url := ch.Image
			eg.Go(func() error {
				res := c.Pipeline().ResolveResult(egCtx, owner, url)
				summary.add(res.Tier)
				return egCtx.Err()
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		log.Debug().Int("page", page).Int("items", len(result.Items)).Msg("page prefetched")
		if !result.HasNext() {
			break
		}
	}

	return summary, nil
}
