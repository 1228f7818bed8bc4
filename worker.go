package pathviz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Comparison is the outcome of one strategy on a maze shared with the others.
type Comparison struct {
	Strategy StrategyKind
	Result   Result
	// Optimal is the cheapest path on the same maze, if one exists.
	Optimal      Path
	OptimalFound bool
}

// Overhead returns how much more the strategy's path costs than the optimal
// one, as a ratio. It is 0 when either path is missing.
func (c Comparison) Overhead() float64 {
	if !c.Result.Found || !c.OptimalFound || c.Optimal.Cost == 0 {
		return 0
	}
	return c.Result.TotalCost/c.Optimal.Cost - 1
}

// Compare searches the same maze with each strategy in kinds (all of them when
// empty). Searches run in parallel, at most WithWorkers at a time; an
// Observer passed in options must be safe for concurrent use. A zero seed is
// resolved once so every strategy sees the same walls. An exhausted search is
// reported as not found, not as an error.
func Compare(ctx context.Context, cfg Config, kinds []StrategyKind, options ...Option) ([]Comparison, error) {
	if len(kinds) == 0 {
		kinds = StrategyKinds
	}
	opts := applyOptions(options)
	if opts.Grid != nil {
		return nil, fmt.Errorf("%w: Compare generates its own maze", ErrInvalidConfig)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	reference, err := NewStepper(cfg)
	if err != nil {
		return nil, err
	}
	optimal, optimalFound := ShortestPath(reference.Grid(), cfg.AllowDiagonal)

	comparisons := make([]Comparison, len(kinds))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.NumberOfWorkers)
	for i, kind := range kinds {
		group.Go(func() error {
			runCfg := cfg
			runCfg.Strategy = kind
			result, err := Search(groupCtx, runCfg, WithObserver(opts.Observer))
			if err != nil && !errors.Is(err, ErrNoPath) {
				return fmt.Errorf("%s: %w", kind, err)
			}
			comparisons[i] = Comparison{
				Strategy:     kind,
				Result:       result,
				Optimal:      optimal,
				OptimalFound: optimalFound,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return comparisons, nil
}
