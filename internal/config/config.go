// Package config loads run settings from defaults, a YAML file, a .env file
// and PATHVIZ_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/pathviz"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PATHVIZ_"

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// File is the full settings document.
type File struct {
	GridSize      int     `yaml:"grid_size"`
	AllowDiagonal bool    `yaml:"allow_diagonal"`
	WallChance    float64 `yaml:"wall_chance"`
	WallGenerator string  `yaml:"wall_generator"`
	Strategy      string  `yaml:"strategy"`
	Seed          int64   `yaml:"seed"`

	FPS        int `yaml:"fps"`
	Resolution int `yaml:"resolution"`
	Border     int `yaml:"border"`

	MetricsAddr string `yaml:"metrics_addr"`
	ListenAddr  string `yaml:"listen_addr"`

	Log Log `yaml:"log"`
}

// Default returns the settings used when nothing overrides them.
func Default() File {
	core := pathviz.DefaultConfig()
	return File{
		GridSize:      core.GridSize,
		AllowDiagonal: core.AllowDiagonal,
		WallChance:    core.WallChance,
		WallGenerator: core.WallGenerator.String(),
		Strategy:      core.Strategy.String(),
		FPS:           60,
		Resolution:    1000,
		Border:        1,
		ListenAddr:    ":8080",
		Log:           Log{Level: "info", Format: "text"},
	}
}

// Load applies, over the defaults, the YAML file at path (skipped when path
// is empty), then ./.env if present, then the process environment.
func Load(path string) (File, error) {
	f := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return File{}, fmt.Errorf("load .env: %w", err)
	}
	if err := f.applyEnv(os.LookupEnv); err != nil {
		return File{}, err
	}
	return f, nil
}

func (f *File) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s must be an integer: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	if err := num("GRID_SIZE", &f.GridSize); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "ALLOW_DIAGONAL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sALLOW_DIAGONAL must be a boolean: %w", EnvPrefix, err)
		}
		f.AllowDiagonal = b
	}
	if v, ok := lookup(EnvPrefix + "WALL_CHANCE"); ok {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sWALL_CHANCE must be a number: %w", EnvPrefix, err)
		}
		f.WallChance = c
	}
	str("WALL_GENERATOR", &f.WallGenerator)
	str("STRATEGY", &f.Strategy)
	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED must be an integer: %w", EnvPrefix, err)
		}
		f.Seed = s
	}
	for key, dst := range map[string]*int{"FPS": &f.FPS, "RESOLUTION": &f.Resolution, "BORDER": &f.Border} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	str("METRICS_ADDR", &f.MetricsAddr)
	str("LISTEN_ADDR", &f.ListenAddr)
	str("LOG_LEVEL", &f.Log.Level)
	str("LOG_FORMAT", &f.Log.Format)
	str("LOG_FILE", &f.Log.File)
	return nil
}

// Core converts the search settings and validates them.
func (f File) Core() (pathviz.Config, error) {
	gen, err := pathviz.ParseGeneratorKind(f.WallGenerator)
	if err != nil {
		return pathviz.Config{}, err
	}
	strategy, err := pathviz.ParseStrategyKind(f.Strategy)
	if err != nil {
		return pathviz.Config{}, err
	}
	cfg := pathviz.Config{
		GridSize:      f.GridSize,
		AllowDiagonal: f.AllowDiagonal,
		WallChance:    f.WallChance,
		WallGenerator: gen,
		Strategy:      strategy,
		Seed:          f.Seed,
	}
	if err := cfg.Validate(); err != nil {
		return pathviz.Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings outside the search itself.
func (f File) Validate() error {
	if f.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", pathviz.ErrInvalidConfig, f.FPS)
	}
	if f.Border < 0 {
		return fmt.Errorf("%w: border must not be negative, got %d", pathviz.ErrInvalidConfig, f.Border)
	}
	if f.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %d", pathviz.ErrInvalidConfig, f.Resolution)
	}
	_, err := f.Core()
	return err
}
