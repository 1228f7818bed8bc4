package main

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/pathviz"
	"github.com/pdrpinto/pathviz/internal/config"
	"github.com/pdrpinto/pathviz/internal/logging"
)

// screenAnnotation marks commands that own the terminal; their logs are held
// back until the screen is released.
const screenAnnotation = "pathviz/screen"

type app struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string

	gridSize   int
	diagonal   bool
	wallChance float64
	generator  string
	strategy   string
	seed       int64

	settings config.File
	core     pathviz.Config
	logger   *slog.Logger
	heldLogs *bytes.Buffer
	closeLog func() error
}

func newApp() *app {
	return &app{logger: logging.Discard(), closeLog: func() error { return nil }}
}

func (a *app) rootCmd() *cobra.Command {
	defaults := config.Default()
	root := &cobra.Command{
		Use:           "pathviz",
		Short:         "Visualize random-walk, best-first and A* searches on generated mazes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML settings file")
	flags.StringVar(&a.logLevel, "log-level", defaults.Log.Level, "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", defaults.Log.Format, "log format: text or json")
	flags.StringVar(&a.logFile, "log-file", "", "append logs to this file")
	flags.IntVar(&a.gridSize, "size", defaults.GridSize, "cells per grid side")
	flags.BoolVar(&a.diagonal, "diagonal", defaults.AllowDiagonal, "allow diagonal moves")
	flags.Float64Var(&a.wallChance, "wall-chance", defaults.WallChance, "wall probability in [0,1]")
	flags.StringVar(&a.generator, "generator", defaults.WallGenerator, "wall generator: uniform, perlin or simplex")
	flags.StringVar(&a.strategy, "strategy", defaults.Strategy, "frontier strategy: random-walk, best-first or a-star")
	flags.Int64Var(&a.seed, "seed", 0, "random seed, 0 picks one from the clock")

	root.AddCommand(a.runCmd(), a.snapshotCmd(), a.compareCmd(), versionCmd())
	return root
}

// setup loads settings, applies explicitly set flags over them and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	settings, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		settings.GridSize = a.gridSize
	}
	if flags.Changed("diagonal") {
		settings.AllowDiagonal = a.diagonal
	}
	if flags.Changed("wall-chance") {
		settings.WallChance = a.wallChance
	}
	if flags.Changed("generator") {
		settings.WallGenerator = a.generator
	}
	if flags.Changed("strategy") {
		settings.Strategy = a.strategy
	}
	if flags.Changed("seed") {
		settings.Seed = a.seed
	}
	if flags.Changed("log-level") {
		settings.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		settings.Log.Format = a.logFormat
	}
	if flags.Changed("log-file") {
		settings.Log.File = a.logFile
	}
	if err := a.applyLocalFlags(cmd, &settings); err != nil {
		return err
	}

	core, err := settings.Core()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	var out io.Writer = cmd.ErrOrStderr()
	if _, ok := cmd.Annotations[screenAnnotation]; ok && settings.Log.File == "" {
		a.heldLogs = &bytes.Buffer{}
		out = a.heldLogs
	}
	logger, closeLog, err := logging.New(logging.Config{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		File:   settings.Log.File,
		Output: out,
	})
	if err != nil {
		return err
	}

	a.settings = settings
	a.core = core
	a.logger = logger
	a.closeLog = closeLog
	return nil
}

// applyLocalFlags copies the render flags a subcommand was given.
func (a *app) applyLocalFlags(cmd *cobra.Command, settings *config.File) error {
	flags := cmd.Flags()
	for name, dst := range map[string]*int{"fps": &settings.FPS, "resolution": &settings.Resolution, "border": &settings.Border} {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		v, err := flags.GetString("metrics-addr")
		if err != nil {
			return err
		}
		settings.MetricsAddr = v
	}
	return nil
}

// releaseLogs writes logs held back while the screen was active.
func (a *app) releaseLogs(w io.Writer) {
	if a.heldLogs == nil {
		return
	}
	_, _ = a.heldLogs.WriteTo(w)
	a.heldLogs = nil
}

func (a *app) close() error { return a.closeLog() }
