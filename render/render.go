// Package render paints search updates. The search core only produces
// pathviz.Update values; everything here turns them into pixels or terminal
// cells.
package render

import (
	"errors"
	"image/color"

	"github.com/pdrpinto/pathviz"
)

// ErrTooSmall is returned when the target surface cannot hold the grid.
var ErrTooSmall = errors.New("render target too small for grid")

// Renderer draws a batch of updates. Updates are applied in order, so a later
// update to the same cell wins.
type Renderer interface {
	Draw(updates []pathviz.Update) error
}

// Background fills the gaps between cells.
var Background = color.RGBA{R: 190, G: 190, B: 190, A: 255}

var palette = map[pathviz.Marker]color.RGBA{
	pathviz.MarkerOpen:     {R: 255, G: 255, B: 255, A: 255},
	pathviz.MarkerStart:    {R: 255, G: 255, B: 0, A: 255},
	pathviz.MarkerGoal:     {R: 255, G: 165, B: 0, A: 255},
	pathviz.MarkerWall:     {A: 255},
	pathviz.MarkerVisited:  {B: 255, A: 255},
	pathviz.MarkerFrontier: {R: 160, G: 32, B: 240, A: 255},
	pathviz.MarkerPath:     {G: 255, A: 255},
}

// Color returns the fill colour of a marker. Unknown markers get the
// background colour.
func Color(m pathviz.Marker) color.RGBA {
	if c, ok := palette[m]; ok {
		return c
	}
	return Background
}
