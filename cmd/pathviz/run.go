package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/pathviz"
	"github.com/pdrpinto/pathviz/internal/config"
	"github.com/pdrpinto/pathviz/internal/metrics"
	"github.com/pdrpinto/pathviz/render"
)

func (a *app) runCmd() *cobra.Command {
	defaults := config.Default()
	var exitWhenDone bool
	cmd := &cobra.Command{
		Use:         "run",
		Short:       "Animate a search in the terminal (Esc, q or Ctrl-C quits)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{screenAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.runInTerminal(ctx, cmd, exitWhenDone)
		},
	}
	cmd.Flags().Int("fps", defaults.FPS, "search steps per second")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&exitWhenDone, "exit-when-done", false, "quit as soon as the search finishes")
	return cmd
}

func (a *app) runInTerminal(ctx context.Context, cmd *cobra.Command, exitWhenDone bool) error {
	defer a.releaseLogs(cmd.ErrOrStderr())

	recorder := metrics.New()
	stepper, err := pathviz.NewStepper(a.core, pathviz.WithObserver(recorder))
	if err != nil {
		return err
	}
	logger := a.logger.With("strategy", a.core.Strategy.String(), "seed", stepper.Seed())

	if a.settings.MetricsAddr != "" {
		srv := &http.Server{Addr: a.settings.MetricsAddr, Handler: recorder.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", "addr", a.settings.MetricsAddr)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()

	loop := frameLoop{
		screen:       screen,
		stepper:      stepper,
		interval:     time.Second / time.Duration(a.settings.FPS),
		exitWhenDone: exitWhenDone,
		logger:       logger,
	}
	return loop.run(ctx)
}

// frameLoop advances the stepper one step per frame and draws each step's
// updates.
type frameLoop struct {
	screen       tcell.Screen
	stepper      *pathviz.Stepper
	interval     time.Duration
	exitWhenDone bool
	logger       *slog.Logger
}

func (l *frameLoop) run(ctx context.Context) error {
	term, err := render.NewTerminal(l.screen, l.stepper.Size())
	if err != nil {
		return err
	}
	l.screen.Clear()
	if err := term.Draw(l.stepper.InitialUpdates()); err != nil {
		return err
	}
	term.Status(l.status())

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := l.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	reported := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				l.screen.Sync()
				if term, err = render.NewTerminal(l.screen, l.stepper.Size()); err != nil {
					return err
				}
				l.screen.Clear()
				if err := term.Draw(l.stepper.Repaint()); err != nil {
					return err
				}
				term.Status(l.status())
			}

		case <-ticker.C:
			if l.stepper.Done() {
				if !reported {
					reported = true
					l.report()
				}
				if l.exitWhenDone {
					return nil
				}
				continue
			}
			updates, err := l.stepper.Step()
			if err != nil {
				return err
			}
			if err := term.Draw(updates); err != nil {
				return err
			}
			term.Status(l.status())
		}
	}
}

func (l *frameLoop) status() string {
	s := l.stepper
	text := fmt.Sprintf("%s  seed %d  step %d  open %d  %s",
		s.Config().Strategy, s.Seed(), s.Steps(), len(s.Open()), s.Phase())
	switch {
	case s.Exhausted():
		text += "  no path"
	case s.PathEmitted():
		text += fmt.Sprintf("  cost %.3f", s.PathCost())
	}
	return text + "  [q quits]"
}

func (l *frameLoop) report() {
	s := l.stepper
	if err := s.Err(); err != nil {
		l.logger.Error("search aborted", "error", err)
		return
	}
	if s.PathEmitted() {
		l.logger.Info("path found", "steps", s.Steps(), "cells", len(s.Path()), "cost", s.PathCost())
		return
	}
	l.logger.Info("no path", "steps", s.Steps(), "expanded", len(s.Closed()))
}
