package pathviz

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// StrategyKind selects a frontier strategy.
type StrategyKind int

const (
	// RandomWalk expands a uniformly random open cell.
	RandomWalk StrategyKind = iota
	// BestFirst expands the open cell closest to the goal (Manhattan).
	BestFirst
	// AStar expands the open cell with the lowest cost plus heuristic.
	AStar
)

// StrategyKinds lists every strategy in declaration order.
var StrategyKinds = []StrategyKind{RandomWalk, BestFirst, AStar}

func (k StrategyKind) String() string {
	switch k {
	case RandomWalk:
		return "random-walk"
	case BestFirst:
		return "best-first"
	case AStar:
		return "a-star"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// ParseStrategyKind accepts "random-walk", "best-first" and "a-star".
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random-walk", "random", "randomwalk":
		return RandomWalk, nil
	case "best-first", "bestfirst", "greedy":
		return BestFirst, nil
	case "a-star", "astar", "a*":
		return AStar, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
}

// Strategy picks the next cell to expand from the open cells, which are given
// in discovery order.
type Strategy interface {
	Select(open []Coord) (Coord, error)
}

// NewStrategy builds the strategy for kind. The A* strategy reads path costs
// from grid as they change.
func NewStrategy(kind StrategyKind, grid *Grid, diagonal bool, rng *rand.Rand) (Strategy, error) {
	switch kind {
	case RandomWalk:
		return randomWalk{rng: rng}, nil
	case BestFirst:
		return bestFirst{goal: grid.Goal()}, nil
	case AStar:
		return aStar{grid: grid, diagonal: diagonal}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %v", ErrInvalidConfig, kind)
}

type randomWalk struct {
	rng *rand.Rand
}

func (r randomWalk) Select(open []Coord) (Coord, error) {
	if len(open) == 0 {
		return Coord{}, ErrEmptyOpenSet
	}
	return open[r.rng.Intn(len(open))], nil
}

type bestFirst struct {
	goal Coord
}

func (b bestFirst) Select(open []Coord) (Coord, error) {
	return selectMin(open, func(c Coord) float64 {
		return float64(manhattan(c, b.goal))
	})
}

type aStar struct {
	grid     *Grid
	diagonal bool
}

func (a aStar) Select(open []Coord) (Coord, error) {
	goal := a.grid.Goal()
	origin := a.grid.Start()
	return selectMin(open, func(c Coord) float64 {
		var h float64
		if a.diagonal {
			h = euclidean(c, goal)
		} else {
			// the distance-to-origin term is intentional
			h = float64(manhattan(c, goal) + manhattan(c, origin))
		}
		return a.grid.Cell(c).Cost + h
	})
}

// selectMin returns the first cell with the strictly smallest score.
func selectMin(open []Coord, score func(Coord) float64) (Coord, error) {
	if len(open) == 0 {
		return Coord{}, ErrEmptyOpenSet
	}
	best := open[0]
	bestScore := math.Inf(1)
	for i, c := range open {
		s := score(c)
		if i == 0 || s < bestScore {
			best, bestScore = c, s
		}
	}
	return best, nil
}

// openSet keeps discovered cells in discovery order with O(1) membership.
type openSet struct {
	items  []Coord
	member []bool
	size   int
}

func newOpenSet(size int) *openSet {
	return &openSet{member: make([]bool, size*size), size: size}
}

func (o *openSet) contains(c Coord) bool { return o.member[c.Y*o.size+c.X] }

func (o *openSet) len() int { return len(o.items) }

func (o *openSet) add(c Coord) {
	if o.contains(c) {
		return
	}
	o.member[c.Y*o.size+c.X] = true
	o.items = append(o.items, c)
}

// remove drops c and keeps the order of the remaining cells.
func (o *openSet) remove(c Coord) {
	if !o.contains(c) {
		return
	}
	o.member[c.Y*o.size+c.X] = false
	for i, item := range o.items {
		if item == c {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return
		}
	}
}

func (o *openSet) list() []Coord {
	out := make([]Coord, len(o.items))
	copy(out, o.items)
	return out
}
