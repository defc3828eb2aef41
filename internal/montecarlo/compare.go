package montecarlo

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/copyleftdev/SARSIM/internal/search"
)

// Result is the outcome of one strategy's batch.
type Result struct {
	Strategy  search.Strategy `json:"strategy"`
	Histogram Histogram       `json:"histogram"`
	Summary   Summary         `json:"summary"`
}

// Compare runs the same number of trials for every strategy concurrently and
// returns the results in the order given. With no strategies every built-in
// one is run. All strategies share the base seed, so trial i hides the target
// in the same place for each of them.
func (h *Harness) Compare(ctx context.Context, trials int, strategies ...search.Strategy) ([]Result, error) {
	if len(strategies) == 0 {
		strategies = search.Strategies()
	}
	for _, s := range strategies {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	results := make([]Result, len(strategies))
	g, gCtx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		g.Go(func() error {
			hist, err := h.Run(gCtx, trials, s)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", s, err)
			}
			results[i] = Result{
				Strategy:  s,
				Histogram: hist,
				Summary:   hist.Summary(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
