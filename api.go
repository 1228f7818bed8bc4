package pathviz

import (
	"context"
	"fmt"
	"runtime"
)

// Config fixes every parameter of a run. It is not changed after a Stepper
// is built.
type Config struct {
	GridSize      int
	AllowDiagonal bool
	// WallChance is the probability in [0,1] that a cell becomes a wall.
	WallChance    float64
	WallGenerator GeneratorKind
	Strategy      StrategyKind
	// Seed drives wall generation and the random walk. Zero means unset and
	// picks one from the clock, so seed 0 itself cannot be requested;
	// Stepper.Seed and Result.Seed report the seed actually used.
	Seed int64
}

// DefaultConfig returns a 50×50 simplex maze searched by A* with diagonals.
func DefaultConfig() Config {
	return Config{
		GridSize:      50,
		AllowDiagonal: true,
		WallChance:    0.35,
		WallGenerator: GeneratorSimplex,
		Strategy:      AStar,
	}
}

// Validate reports the first unusable parameter, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if err := validateSize(c.GridSize); err != nil {
		return err
	}
	if c.WallChance < 0 || c.WallChance > 1 {
		return fmt.Errorf("%w: wall chance %v outside [0,1]", ErrInvalidConfig, c.WallChance)
	}
	if c.WallGenerator < GeneratorUniform || c.WallGenerator > GeneratorSimplex {
		return fmt.Errorf("%w: unknown wall generator %v", ErrInvalidConfig, c.WallGenerator)
	}
	if c.Strategy < RandomWalk || c.Strategy > AStar {
		return fmt.Errorf("%w: unknown strategy %v", ErrInvalidConfig, c.Strategy)
	}
	return nil
}

// Result contains the outcome of a search
type Result struct {
	Path          []Coord
	TotalCost     float64
	ExpandedNodes int
	Steps         int
	Seed          int64
	Found         bool
}

// Options defines parameters for building and running searches.
type Options struct {
	NumberOfWorkers int
	Grid            *Grid
	Observer        Observer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many searches Compare may run at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithGrid searches the walls of grid instead of generating a maze. The grid
// is copied; start and goal are cleared.
func WithGrid(grid *Grid) Option {
	return func(options *Options) { options.Grid = grid }
}

// WithObserver installs an observer notified after each step.
func WithObserver(observer Observer) Option {
	return func(options *Options) { options.Observer = observer }
}

func applyOptions(options []Option) Options {
	opts := Options{NumberOfWorkers: runtime.NumCPU()}
	for _, option := range options {
		option(&opts)
	}
	if opts.NumberOfWorkers < 1 {
		opts.NumberOfWorkers = 1
	}
	return opts
}

// Search runs a Stepper until the path is emitted or the open set runs out.
// ctx is checked between steps.
func Search(ctx context.Context, cfg Config, options ...Option) (Result, error) {
	stepper, err := NewStepper(cfg, options...)
	if err != nil {
		return Result{}, err
	}
	return Run(ctx, stepper)
}

// Run drives an existing Stepper to completion.
func Run(ctx context.Context, stepper *Stepper) (Result, error) {
	for !stepper.Done() {
		if err := ctx.Err(); err != nil {
			return result(stepper), err
		}
		if _, err := stepper.Step(); err != nil {
			return result(stepper), err
		}
	}
	if stepper.Exhausted() {
		return result(stepper), ErrNoPath
	}
	return result(stepper), nil
}

func result(s *Stepper) Result {
	return Result{
		Path:          s.Path(),
		TotalCost:     s.PathCost(),
		ExpandedNodes: s.closedCount,
		Steps:         s.Steps(),
		Seed:          s.Seed(),
		Found:         s.PathEmitted(),
	}
}
