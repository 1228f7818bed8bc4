package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/pathviz"
	"github.com/pdrpinto/pathviz/internal/config"
	"github.com/pdrpinto/pathviz/render"
)

func (a *app) snapshotCmd() *cobra.Command {
	defaults := config.Default()
	var (
		output   string
		maxSteps int
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Run a search without a screen and save the final frame as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.snapshot(cmd.Context(), output, maxSteps)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "pathviz.png", "PNG file to write")
	cmd.Flags().IntVar(&maxSteps, "steps", 0, "stop after this many steps, 0 runs to completion")
	cmd.Flags().Int("resolution", defaults.Resolution, "image side in pixels, a multiple of the grid size")
	cmd.Flags().Int("border", defaults.Border, "gap between cells in pixels")
	return cmd
}

func (a *app) snapshot(ctx context.Context, output string, maxSteps int) error {
	if maxSteps < 0 {
		return fmt.Errorf("%w: steps must not be negative", pathviz.ErrInvalidConfig)
	}
	stepper, err := pathviz.NewStepper(a.core)
	if err != nil {
		return err
	}
	img, err := render.NewImage(stepper.Size(), a.settings.Resolution, a.settings.Border)
	if err != nil {
		return err
	}
	if err := img.Draw(stepper.InitialUpdates()); err != nil {
		return err
	}

	for !stepper.Done() && (maxSteps == 0 || stepper.Steps() < maxSteps) {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, err := stepper.Step()
		if err != nil {
			return err
		}
		if err := img.Draw(updates); err != nil {
			return err
		}
	}
	if err := img.SavePNG(output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}

	a.logger.Info("snapshot written",
		"file", output,
		"strategy", a.core.Strategy.String(),
		"seed", stepper.Seed(),
		"steps", stepper.Steps(),
		"phase", stepper.Phase().String(),
		"found", stepper.PathEmitted())
	return nil
}
