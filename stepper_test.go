package pathviz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openConfig(size int, strategy StrategyKind, diagonal bool) Config {
	return Config{
		GridSize:      size,
		AllowDiagonal: diagonal,
		WallChance:    0,
		WallGenerator: GeneratorUniform,
		Strategy:      strategy,
		Seed:          1,
	}
}

// drive steps s until it is done, failing after limit steps.
func drive(t *testing.T, s *Stepper, limit int) {
	t.Helper()
	for i := 0; !s.Done(); i++ {
		require.Less(t, i, limit, "stepper did not finish")
		_, err := s.Step()
		require.NoError(t, err)
	}
}

func TestStepper_FirstStepExpandsStart(t *testing.T) {
	s, err := NewStepper(openConfig(5, AStar, false))
	require.NoError(t, err)
	assert.Equal(t, []Coord{{0, 0}}, s.Open())

	updates, err := s.Step()
	require.NoError(t, err)

	assert.Equal(t, []Update{
		{At: Coord{0, 0}, Marker: MarkerVisited},
		{At: Coord{1, 0}, Marker: MarkerFrontier},
		{At: Coord{0, 1}, Marker: MarkerFrontier},
	}, updates)
	assert.Equal(t, []Coord{{1, 0}, {0, 1}}, s.Open())
	assert.Equal(t, []Coord{{0, 0}}, s.Closed())
	assert.Equal(t, Coord{0, 0}, s.Cell(Coord{1, 0}).Prev)
	assert.Equal(t, 1, s.Steps())
}

func TestStepper_GreedyStrategiesExpandForwardNeighborSecond(t *testing.T) {
	for _, kind := range []StrategyKind{BestFirst, AStar} {
		t.Run(kind.String(), func(t *testing.T) {
			for run := 0; run < 3; run++ {
				s, err := NewStepper(openConfig(6, kind, false))
				require.NoError(t, err)

				_, err = s.Step()
				require.NoError(t, err)
				updates, err := s.Step()
				require.NoError(t, err)

				require.NotEmpty(t, updates)
				assert.Equal(t, Update{At: Coord{1, 0}, Marker: MarkerVisited}, updates[0])
			}
		})
	}
}

func TestStepper_AStarStaircaseOnOpenGrid(t *testing.T) {
	const n = 5
	s, err := NewStepper(openConfig(n, AStar, false))
	require.NoError(t, err)
	drive(t, s, n*n+2)

	require.True(t, s.PathEmitted())
	path := s.Path()
	require.Len(t, path, 2*(n-1)+1)
	assert.Equal(t, Coord{0, 0}, path[0])
	assert.Equal(t, Coord{n - 1, n - 1}, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		assert.GreaterOrEqual(t, path[i].X, path[i-1].X)
		assert.GreaterOrEqual(t, path[i].Y, path[i-1].Y)
		assert.Equal(t, 1, manhattan(path[i], path[i-1]))
	}
	assert.Equal(t, float64(2*(n-1)), s.PathCost())
}

func TestStepper_TerminatesWithinGridArea(t *testing.T) {
	const n = 15
	for _, kind := range StrategyKinds {
		for _, diagonal := range []bool{false, true} {
			for seed := int64(1); seed <= 10; seed++ {
				cfg := Config{GridSize: n, AllowDiagonal: diagonal, WallChance: 0.3,
					WallGenerator: GeneratorUniform, Strategy: kind, Seed: seed}
				s, err := NewStepper(cfg)
				require.NoError(t, err)
				_, reachable := ShortestPath(s.Grid(), diagonal)

				for !s.GoalReached() && !s.Exhausted() {
					_, err := s.Step()
					require.NoError(t, err)
					require.LessOrEqual(t, s.Steps(), n*n)
				}
				assert.Equal(t, reachable, s.GoalReached(), "%s seed %d", kind, seed)
			}
		}
	}
}

func TestStepper_OpenAndClosedStayDisjoint(t *testing.T) {
	for _, kind := range StrategyKinds {
		cfg := Config{GridSize: 12, AllowDiagonal: true, WallChance: 0.25,
			WallGenerator: GeneratorSimplex, Strategy: kind, Seed: 3}
		s, err := NewStepper(cfg)
		require.NoError(t, err)

		frozen := make(map[Coord]float64)
		for !s.Done() {
			updates, err := s.Step()
			require.NoError(t, err)

			for _, u := range updates {
				if u.Marker == MarkerVisited {
					frozen[u.At] = s.Cell(u.At).Cost
				}
			}
			for _, c := range s.Open() {
				assert.False(t, s.IsClosed(c), "%v open and closed", c)
			}
			for c, cost := range frozen {
				assert.True(t, s.IsClosed(c))
				assert.Equal(t, cost, s.Cell(c).Cost, "closed cost of %v changed", c)
			}
		}
	}
}

func TestStepper_UnreachableGoalExhausts(t *testing.T) {
	g, err := NewGrid(5)
	require.NoError(t, err)
	g.SetWall(Coord{3, 4}, true)
	g.SetWall(Coord{4, 3}, true)
	g.SetWall(Coord{3, 3}, true)

	s, err := NewStepper(openConfig(5, AStar, true), WithGrid(g))
	require.NoError(t, err)
	drive(t, s, 100)

	assert.True(t, s.Exhausted())
	assert.False(t, s.GoalReached())
	assert.Equal(t, PhaseExpanding, s.Phase())
	assert.Empty(t, s.Open())

	updates, err := s.Step()
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestStepper_PathEmittedOnceAfterGoal(t *testing.T) {
	s, err := NewStepper(openConfig(4, BestFirst, true))
	require.NoError(t, err)

	for s.Phase() == PhaseExpanding {
		_, err := s.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseBacktracking, s.Phase())
	assert.True(t, s.GoalReached())
	assert.False(t, s.PathEmitted())

	updates, err := s.Step()
	require.NoError(t, err)
	require.NotEmpty(t, updates)
	for _, u := range updates {
		assert.Equal(t, MarkerPath, u.Marker)
	}
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Len(t, updates, len(s.Path()))

	updates, err = s.Step()
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestStepper_SingleCellGrid(t *testing.T) {
	s, err := NewStepper(openConfig(1, AStar, false))
	require.NoError(t, err)
	drive(t, s, 3)

	assert.Equal(t, []Coord{{0, 0}}, s.Path())
	assert.Equal(t, 0.0, s.PathCost())
}

func TestStepper_ReconstructsHandBuiltChain(t *testing.T) {
	s, err := NewStepper(openConfig(4, AStar, true))
	require.NoError(t, err)

	// goal -> (2,2) -> (1,1) -> start, three links
	for _, link := range [][2]Coord{{{3, 3}, {2, 2}}, {{2, 2}, {1, 1}}, {{1, 1}, {0, 0}}} {
		cell := &s.grid.cells[s.grid.index(link[0])]
		cell.Prev, cell.HasPrev = link[1], true
	}
	s.phase = PhaseBacktracking

	updates, err := s.Step()
	require.NoError(t, err)
	assert.Len(t, updates, 4)
	assert.Equal(t, []Coord{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, s.Path())
}

func TestStepper_AbortsOnBrokenPredecessors(t *testing.T) {
	s, err := NewStepper(openConfig(3, AStar, false))
	require.NoError(t, err)

	// goal <-> (1,2) cycle never reaches the start
	goal := &s.grid.cells[s.grid.index(Coord{2, 2})]
	goal.Prev, goal.HasPrev = Coord{1, 2}, true
	mid := &s.grid.cells[s.grid.index(Coord{1, 2})]
	mid.Prev, mid.HasPrev = Coord{2, 2}, true
	s.phase = PhaseBacktracking

	_, err = s.Step()
	assert.ErrorIs(t, err, ErrInconsistentPredecessors)
	assert.Equal(t, PhaseAborted, s.Phase())
	assert.True(t, s.Done())

	_, again := s.Step()
	assert.ErrorIs(t, again, ErrInconsistentPredecessors)
}

func TestStepper_AStarMatchesShortestPath(t *testing.T) {
	for _, diagonal := range []bool{false, true} {
		for seed := int64(1); seed <= 15; seed++ {
			cfg := Config{GridSize: 20, AllowDiagonal: diagonal, WallChance: 0.3,
				WallGenerator: GeneratorUniform, Strategy: AStar, Seed: seed}
			s, err := NewStepper(cfg)
			require.NoError(t, err)
			optimal, found := ShortestPath(s.Grid(), diagonal)

			drive(t, s, 20*20+2)
			require.Equal(t, found, s.PathEmitted(), "seed %d", seed)
			if found {
				assert.InDelta(t, optimal.Cost, s.PathCost(), 1e-9, "seed %d diagonal %v", seed, diagonal)
			}
		}
	}
}

func TestStepper_InitialUpdates(t *testing.T) {
	g, err := NewGrid(3)
	require.NoError(t, err)
	g.SetWall(Coord{1, 1}, true)
	g.SetWall(Coord{0, 0}, true) // cleared by the stepper

	s, err := NewStepper(openConfig(3, AStar, false), WithGrid(g))
	require.NoError(t, err)

	counts := make(map[Marker]int)
	for _, u := range s.InitialUpdates() {
		counts[u.Marker]++
	}
	assert.Equal(t, map[Marker]int{MarkerStart: 1, MarkerGoal: 1, MarkerWall: 1, MarkerOpen: 6}, counts)
}

func TestNewStepper_WithGridUsesItsSize(t *testing.T) {
	g, err := NewGrid(7)
	require.NoError(t, err)
	g.SetWall(g.Goal(), true)

	cfg := openConfig(0, BestFirst, false)
	s, err := NewStepper(cfg, WithGrid(g))
	require.NoError(t, err)

	assert.Equal(t, 7, s.Size())
	assert.False(t, s.Grid().IsWall(Coord{6, 6}))
	assert.True(t, g.IsWall(Coord{6, 6}), "caller's grid is not modified")
}

func TestNewStepper_RejectsBadConfig(t *testing.T) {
	cases := map[string]Config{
		"zero size":     {GridSize: 0, WallChance: 0.2},
		"negative size": {GridSize: -1, WallChance: 0.2},
		"above max":     {GridSize: MaxGridSize + 1, WallChance: 0.2},
		"square wraps":  {GridSize: math.MaxInt, WallChance: 0.2},
		"chance high":   {GridSize: 5, WallChance: 1.2},
		"chance low":    {GridSize: 5, WallChance: -0.2},
		"strategy":      {GridSize: 5, Strategy: StrategyKind(9)},
		"generator":     {GridSize: 5, WallGenerator: GeneratorKind(-1)},
	}
	for name, cfg := range cases {
		_, err := NewStepper(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestNewStepper_ResolvesZeroSeed(t *testing.T) {
	cfg := openConfig(3, RandomWalk, false)
	cfg.Seed = 0

	s, err := NewStepper(cfg)
	require.NoError(t, err)
	assert.NotZero(t, s.Seed())
}

type recordingObserver struct {
	events []StepEvent
}

func (r *recordingObserver) ObserveStep(e StepEvent) { r.events = append(r.events, e) }

func TestStepper_NotifiesObserver(t *testing.T) {
	obs := &recordingObserver{}
	s, err := NewStepper(openConfig(3, AStar, false), WithObserver(obs))
	require.NoError(t, err)
	drive(t, s, 20)

	require.NotEmpty(t, obs.events)
	first := obs.events[0]
	assert.Equal(t, AStar, first.Strategy)
	assert.Equal(t, Coord{0, 0}, first.Expanded)
	assert.Equal(t, 2, first.Discovered)
	assert.Equal(t, 1, first.ClosedSize)

	last := obs.events[len(obs.events)-1]
	assert.Equal(t, PhaseIdle, last.Phase)
	assert.Equal(t, len(s.Path()), last.PathLength)
	assert.Equal(t, PhaseBacktracking, obs.events[len(obs.events)-2].Phase)
}

func TestStepper_Snapshot(t *testing.T) {
	s, err := NewStepper(openConfig(3, AStar, false))
	require.NoError(t, err)
	_, err = s.Step()
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, Coord{0, 0}, snap.Current)
	assert.Equal(t, []Coord{{1, 0}, {0, 1}}, snap.Open)
	assert.Equal(t, []Coord{{0, 0}}, snap.Closed)
	assert.Equal(t, PhaseExpanding, snap.Phase)
	assert.Equal(t, 1, snap.StepIndex)
	assert.Nil(t, snap.Path)
}

func paintAll(canvas map[Coord]Marker, updates []Update) {
	for _, u := range updates {
		canvas[u.At] = u.Marker
	}
}

func TestStepper_RepaintMatchesStreamedUpdates(t *testing.T) {
	cfg := Config{GridSize: 12, AllowDiagonal: true, WallChance: 0.3,
		WallGenerator: GeneratorUniform, Strategy: BestFirst, Seed: 5}
	s, err := NewStepper(cfg)
	require.NoError(t, err)

	streamed := make(map[Coord]Marker)
	paintAll(streamed, s.InitialUpdates())
	before := make(map[Coord]Marker)
	paintAll(before, s.Repaint())
	require.Equal(t, streamed, before)

	for i := 0; !s.Done(); i++ {
		updates, err := s.Step()
		require.NoError(t, err)
		paintAll(streamed, updates)

		if i%7 == 0 || s.Done() {
			repainted := make(map[Coord]Marker)
			paintAll(repainted, s.Repaint())
			require.Equal(t, streamed, repainted, "after step %d", s.Steps())
		}
	}
}
