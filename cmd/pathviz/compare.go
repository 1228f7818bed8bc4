package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/pathviz"
)

func (a *app) compareCmd() *cobra.Command {
	var (
		strategies []string
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run several strategies on the same maze and tabulate the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := make([]pathviz.StrategyKind, 0, len(strategies))
			for _, name := range strategies {
				kind, err := pathviz.ParseStrategyKind(name)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}
			return a.compare(cmd.Context(), cmd.OutOrStdout(), kinds, workers)
		},
	}
	cmd.Flags().StringSliceVar(&strategies, "strategies", nil, "strategies to run, all when empty")
	cmd.Flags().IntVar(&workers, "workers", 0, "searches to run at once, 0 uses every CPU")
	return cmd
}

func (a *app) compare(ctx context.Context, out io.Writer, kinds []pathviz.StrategyKind, workers int) error {
	options := []pathviz.Option{}
	if workers > 0 {
		options = append(options, pathviz.WithWorkers(workers))
	}
	comparisons, err := pathviz.Compare(ctx, a.core, kinds, options...)
	if err != nil {
		return err
	}
	if len(comparisons) > 0 {
		a.logger.Info("comparison finished",
			"seed", comparisons[0].Result.Seed,
			"strategies", len(comparisons),
			"reachable", comparisons[0].OptimalFound)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tFOUND\tCOST\tOPTIMAL\tOVERHEAD\tEXPANDED\tSTEPS")
	for _, c := range comparisons {
		cost, optimal, overhead := "-", "-", "-"
		if c.Result.Found {
			cost = fmt.Sprintf("%.3f", c.Result.TotalCost)
		}
		if c.OptimalFound {
			optimal = fmt.Sprintf("%.3f", c.Optimal.Cost)
		}
		if c.Result.Found && c.OptimalFound {
			overhead = fmt.Sprintf("%.1f%%", c.Overhead()*100)
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%d\t%d\n",
			c.Strategy, c.Result.Found, cost, optimal, overhead, c.Result.ExpandedNodes, c.Result.Steps)
	}
	return tw.Flush()
}
