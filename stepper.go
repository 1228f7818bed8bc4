package pathviz

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pdrpinto/pathviz/internal"
)

// Phase is the state of a Stepper.
type Phase int

const (
	// PhaseExpanding expands one open cell per step until the goal is selected.
	PhaseExpanding Phase = iota
	// PhaseBacktracking rebuilds and emits the path on the next step.
	PhaseBacktracking
	// PhaseIdle is terminal; steps emit nothing.
	PhaseIdle
	// PhaseAborted is terminal; the predecessor links were inconsistent.
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseExpanding:
		return "expanding"
	case PhaseBacktracking:
		return "backtracking"
	case PhaseIdle:
		return "idle"
	case PhaseAborted:
		return "aborted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// StepSnapshot exposes the state of the search after a step.
type StepSnapshot struct {
	Current     Coord   `json:"current"`
	Open        []Coord `json:"open"`
	Closed      []Coord `json:"closed"`
	Path        []Coord `json:"path,omitempty"`
	Phase       Phase   `json:"phase"`
	GoalReached bool    `json:"goalReached"`
	Exhausted   bool    `json:"exhausted"`
	StepIndex   int     `json:"step"`
}

// StepEvent describes a step that changed the search state.
type StepEvent struct {
	Strategy   StrategyKind
	Phase      Phase
	StepIndex  int
	Expanded   Coord
	Discovered int
	OpenSize   int
	ClosedSize int
	PathLength int
	Exhausted  bool
}

// Observer is notified after every step that did work.
type Observer interface {
	ObserveStep(StepEvent)
}

// Stepper runs one search, one expansion per call to Step.
// A Stepper is not safe for concurrent use.
type Stepper struct {
	cfg      Config
	seed     int64
	grid     *Grid
	strategy Strategy
	observer Observer

	open        *openSet
	closed      []bool
	closedCount int

	phase     Phase
	exhausted bool
	current   Coord
	path      []Coord
	err       error
	stepCount int
}

// NewStepper validates cfg, generates the maze and returns a Stepper with the
// start cell as the only open cell. WithGrid replaces maze generation.
func NewStepper(cfg Config, options ...Option) (*Stepper, error) {
	opts := applyOptions(options)
	if opts.Grid != nil {
		cfg.GridSize = opts.Grid.Size()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	var grid *Grid
	if opts.Grid != nil {
		grid = freshCopy(opts.Grid)
	} else {
		var err error
		if grid, err = NewGrid(cfg.GridSize); err != nil {
			return nil, err
		}
		gen, err := NewWallGenerator(cfg.WallGenerator, cfg.WallChance, rng)
		if err != nil {
			return nil, err
		}
		GenerateWalls(grid, gen)
	}

	strategy, err := NewStrategy(cfg.Strategy, grid, cfg.AllowDiagonal, rng)
	if err != nil {
		return nil, err
	}

	s := &Stepper{
		cfg:      cfg,
		seed:     seed,
		grid:     grid,
		strategy: strategy,
		observer: opts.Observer,
		open:     newOpenSet(grid.Size()),
		closed:   make([]bool, grid.Size()*grid.Size()),
		current:  grid.Start(),
	}
	s.open.add(grid.Start())
	return s, nil
}

// freshCopy clones a caller's grid keeping only its walls.
func freshCopy(src *Grid) *Grid {
	g, _ := NewGrid(src.Size())
	for i, cell := range src.cells {
		g.cells[i].Wall = cell.Wall
	}
	g.SetWall(g.Start(), false)
	g.SetWall(g.Goal(), false)
	return g
}

// Step advances the search and returns the cells to repaint this frame.
//
// While expanding it closes one cell and returns it as visited followed by
// the newly discovered cells as frontier. Selecting the goal returns nothing;
// the following step returns the whole path. After that, and when the open
// set has run out, steps return nothing.
func (s *Stepper) Step() ([]Update, error) {
	switch s.phase {
	case PhaseIdle:
		return nil, nil
	case PhaseAborted:
		return nil, s.err
	case PhaseBacktracking:
		return s.backtrack()
	}

	if s.open.len() == 0 {
		if !s.exhausted {
			s.exhausted = true
			s.notify(0)
		}
		return nil, nil
	}

	current, err := s.strategy.Select(s.open.items)
	if err != nil {
		return nil, err
	}
	s.stepCount++
	s.current = current

	if current == s.grid.Goal() {
		s.phase = PhaseBacktracking
		s.notify(0)
		return nil, nil
	}

	diagonal := s.cfg.AllowDiagonal
	var candidates []Coord
	for _, n := range s.grid.neighbors(current, diagonal) {
		if !s.closed[s.grid.index(n)] {
			candidates = append(candidates, n)
		}
	}

	// open cells are relaxed too, but are not discovered twice
	discovered := make([]Coord, 0, len(candidates))
	for _, c := range candidates {
		s.grid.relax(c, current, diagonal)
		if !s.open.contains(c) {
			discovered = append(discovered, c)
		}
	}

	s.open.remove(current)
	s.closed[s.grid.index(current)] = true
	s.closedCount++
	for _, c := range discovered {
		s.open.add(c)
	}

	updates := make([]Update, 0, len(discovered)+1)
	updates = append(updates, Update{At: current, Marker: MarkerVisited})
	for _, c := range discovered {
		updates = append(updates, Update{At: c, Marker: MarkerFrontier})
	}
	s.notify(len(discovered))
	return updates, nil
}

func (s *Stepper) backtrack() ([]Update, error) {
	size := s.grid.Size()
	path, err := internal.ReconstructPath(func(c Coord) (Coord, bool) {
		cell := s.grid.Cell(c)
		return cell.Prev, cell.HasPrev
	}, s.grid.Goal(), s.grid.Start(), size*size)
	if err != nil {
		s.phase = PhaseAborted
		s.err = fmt.Errorf("%w: %w", ErrInconsistentPredecessors, err)
		s.notify(0)
		return nil, s.err
	}

	s.path = path
	s.phase = PhaseIdle
	updates := make([]Update, len(path))
	for i, c := range path {
		updates[i] = Update{At: c, Marker: MarkerPath}
	}
	s.notify(0)
	return updates, nil
}

func (s *Stepper) notify(discovered int) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveStep(StepEvent{
		Strategy:   s.cfg.Strategy,
		Phase:      s.phase,
		StepIndex:  s.stepCount,
		Expanded:   s.current,
		Discovered: discovered,
		OpenSize:   s.open.len(),
		ClosedSize: s.closedCount,
		PathLength: len(s.path),
		Exhausted:  s.exhausted,
	})
}

// InitialUpdates paints the whole grid before the first step.
func (s *Stepper) InitialUpdates() []Update { return gridUpdates(s.grid) }

// Repaint returns updates that redraw the current state on a blank surface.
// Applying them gives the same picture as applying every update so far.
func (s *Stepper) Repaint() []Update {
	updates := gridUpdates(s.grid)
	if s.stepCount == 0 {
		// the open start cell is still painted as the start
		return updates
	}
	for _, c := range s.Closed() {
		updates = append(updates, Update{At: c, Marker: MarkerVisited})
	}
	for _, c := range s.open.items {
		updates = append(updates, Update{At: c, Marker: MarkerFrontier})
	}
	for _, c := range s.path {
		updates = append(updates, Update{At: c, Marker: MarkerPath})
	}
	return updates
}

// Phase returns the current phase.
func (s *Stepper) Phase() Phase { return s.phase }

// GoalReached reports whether the goal has been selected for expansion.
func (s *Stepper) GoalReached() bool { return s.phase != PhaseExpanding }

// PathEmitted reports whether the path has been returned by Step.
func (s *Stepper) PathEmitted() bool { return s.phase == PhaseIdle }

// Exhausted reports whether the open set ran out before the goal was reached.
// An exhausted Stepper stays in PhaseExpanding and returns no more updates.
func (s *Stepper) Exhausted() bool { return s.exhausted }

// Done reports whether further steps can change anything.
func (s *Stepper) Done() bool {
	return s.exhausted || s.phase == PhaseIdle || s.phase == PhaseAborted
}

// Err returns the error that aborted the run, if any.
func (s *Stepper) Err() error { return s.err }

// Steps returns how many cells have been selected so far.
func (s *Stepper) Steps() int { return s.stepCount }

// Seed returns the seed the run was built from, after resolving a zero seed.
func (s *Stepper) Seed() int64 { return s.seed }

// Config returns the configuration of the run.
func (s *Stepper) Config() Config { return s.cfg }

// Size returns the grid side length.
func (s *Stepper) Size() int { return s.grid.Size() }

// Cell returns the record at c.
func (s *Stepper) Cell(c Coord) Cell { return s.grid.Cell(c) }

// Grid returns a copy of the grid in its current state.
func (s *Stepper) Grid() *Grid { return s.grid.Clone() }

// Open lists the open cells in discovery order.
func (s *Stepper) Open() []Coord { return s.open.list() }

// IsOpen reports whether c is waiting to be expanded.
func (s *Stepper) IsOpen(c Coord) bool { return s.grid.InBounds(c) && s.open.contains(c) }

// IsClosed reports whether c has been expanded.
func (s *Stepper) IsClosed(c Coord) bool { return s.grid.InBounds(c) && s.closed[s.grid.index(c)] }

// Closed lists the expanded cells in row-major order.
func (s *Stepper) Closed() []Coord {
	out := make([]Coord, 0, s.closedCount)
	for i, closed := range s.closed {
		if closed {
			out = append(out, Coord{i % s.grid.size, i / s.grid.size})
		}
	}
	return out
}

// Path returns the reconstructed path from start to goal once emitted.
func (s *Stepper) Path() []Coord {
	if s.path == nil {
		return nil
	}
	out := make([]Coord, len(s.path))
	copy(out, s.path)
	return out
}

// PathCost returns the cost of the emitted path, or 0 before that.
func (s *Stepper) PathCost() float64 {
	if s.path == nil {
		return 0
	}
	return s.grid.Cell(s.grid.Goal()).Cost
}

// Snapshot copies the search state.
func (s *Stepper) Snapshot() StepSnapshot {
	return StepSnapshot{
		Current:     s.current,
		Open:        s.Open(),
		Closed:      s.Closed(),
		Path:        s.Path(),
		Phase:       s.phase,
		GoalReached: s.GoalReached(),
		Exhausted:   s.exhausted,
		StepIndex:   s.stepCount,
	}
}
