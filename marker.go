package pathviz

import "fmt"

// Marker is the semantic color of a cell. Renderers map markers to pixels.
type Marker int

const (
	MarkerOpen Marker = iota
	MarkerStart
	MarkerGoal
	MarkerWall
	MarkerVisited
	MarkerFrontier
	MarkerPath
)

// Markers lists every marker in declaration order.
var Markers = []Marker{MarkerOpen, MarkerStart, MarkerGoal, MarkerWall, MarkerVisited, MarkerFrontier, MarkerPath}

func (m Marker) String() string {
	switch m {
	case MarkerOpen:
		return "open"
	case MarkerStart:
		return "start"
	case MarkerGoal:
		return "goal"
	case MarkerWall:
		return "wall"
	case MarkerVisited:
		return "visited"
	case MarkerFrontier:
		return "frontier"
	case MarkerPath:
		return "path"
	default:
		return fmt.Sprintf("Marker(%d)", int(m))
	}
}

// MarshalText encodes the marker by name.
func (m Marker) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Update asks a renderer to paint one cell.
type Update struct {
	At     Coord  `json:"at"`
	Marker Marker `json:"marker"`
}

// gridUpdates paints every cell of g: walls, start, goal and open floor.
func gridUpdates(g *Grid) []Update {
	out := make([]Update, 0, g.size*g.size)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			c := Coord{x, y}
			m := MarkerOpen
			switch {
			case g.IsWall(c):
				m = MarkerWall
			case c == g.Start():
				m = MarkerStart
			case c == g.Goal():
				m = MarkerGoal
			}
			out = append(out, Update{At: c, Marker: m})
		}
	}
	return out
}
