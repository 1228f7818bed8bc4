package pathviz

import (
	"fmt"
	"math"
)

// Coord addresses a grid cell. X is the column, Y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell is the per-cell record of a run.
type Cell struct {
	Wall bool
	// Cost is the cheapest known distance from the start; +Inf until reached.
	Cost float64
	// Prev is the neighbor Cost was reached from. Only meaningful when HasPrev.
	Prev    Coord
	HasPrev bool
}

// Grid is a square grid of cells stored row-major in a flat slice.
type Grid struct {
	size  int
	cells []Cell
}

// cardinal and diagonal neighbor offsets, in expansion order.
var (
	cardinalOffsets = []Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalOffsets = []Coord{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// MaxGridSize is the largest accepted grid side.
const MaxGridSize = 4096

// NewGrid creates an open size×size grid with the start cell at cost 0.
func NewGrid(size int) (*Grid, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	g := &Grid{size: size, cells: make([]Cell, size*size)}
	for i := range g.cells {
		g.cells[i].Cost = math.Inf(1)
	}
	g.cells[0].Cost = 0
	return g, nil
}

func validateSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: grid size must be positive, got %d", ErrInvalidConfig, size)
	}
	if size > MaxGridSize {
		return fmt.Errorf("%w: grid size %d exceeds %d", ErrInvalidConfig, size, MaxGridSize)
	}
	return nil
}

// Size returns the side length N.
func (g *Grid) Size() int { return g.size }

// Start returns the start cell (0,0).
func (g *Grid) Start() Coord { return Coord{0, 0} }

// Goal returns the goal cell (N-1,N-1).
func (g *Grid) Goal() Coord { return Coord{g.size - 1, g.size - 1} }

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.size && c.Y >= 0 && c.Y < g.size
}

func (g *Grid) index(c Coord) int { return c.Y*g.size + c.X }

// Cell returns a copy of the record at c. c must be in bounds.
func (g *Grid) Cell(c Coord) Cell { return g.cells[g.index(c)] }

// IsWall reports whether c is a wall. Out-of-bounds cells are not walls.
func (g *Grid) IsWall(c Coord) bool {
	return g.InBounds(c) && g.cells[g.index(c)].Wall
}

// SetWall marks or clears a wall. Out-of-bounds coordinates are ignored.
func (g *Grid) SetWall(c Coord, wall bool) {
	if g.InBounds(c) {
		g.cells[g.index(c)].Wall = wall
	}
}

// Walls lists every wall cell in row-major order.
func (g *Grid) Walls() []Coord {
	var walls []Coord
	for i, cell := range g.cells {
		if cell.Wall {
			walls = append(walls, Coord{i % g.size, i / g.size})
		}
	}
	return walls
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{size: g.size, cells: make([]Cell, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// neighbors returns the candidate cells around c that are on the grid and not
// walls, cardinal first.
func (g *Grid) neighbors(c Coord, diagonal bool) []Coord {
	out := make([]Coord, 0, 8)
	add := func(offsets []Coord) {
		for _, d := range offsets {
			n := Coord{c.X + d.X, c.Y + d.Y}
			if g.InBounds(n) && !g.cells[g.index(n)].Wall {
				out = append(out, n)
			}
		}
	}
	add(cardinalOffsets)
	if diagonal {
		add(diagonalOffsets)
	}
	return out
}

// relax offers from as a predecessor of c. The record only changes on a strict
// improvement, so the first predecessor found wins ties.
func (g *Grid) relax(c, from Coord, diagonal bool) bool {
	candidate := g.cells[g.index(from)].Cost + stepDistance(c, from, diagonal)
	cell := &g.cells[g.index(c)]
	if candidate < cell.Cost {
		cell.Cost = candidate
		cell.Prev = from
		cell.HasPrev = true
		return true
	}
	return false
}

func stepDistance(a, b Coord, diagonal bool) float64 {
	if diagonal {
		return euclidean(a, b)
	}
	return float64(manhattan(a, b))
}

func manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func euclidean(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
