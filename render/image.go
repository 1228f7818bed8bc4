package render

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/pdrpinto/pathviz"
)

// Image draws updates onto an in-memory square picture. Each cell is drawn as
// a filled square inset by the border on its top and left edges, leaving the
// background visible as grid lines.
type Image struct {
	dc     *gg.Context
	size   int
	cell   int
	border int
}

// NewImage creates a resolution×resolution picture for a size×size grid.
// resolution must be a multiple of size.
func NewImage(size, resolution, border int) (*Image, error) {
	if size <= 0 || resolution <= 0 {
		return nil, fmt.Errorf("%w: grid %d, resolution %d", ErrTooSmall, size, resolution)
	}
	if resolution%size != 0 {
		return nil, fmt.Errorf("resolution %d is not a multiple of grid size %d", resolution, size)
	}
	cell := resolution / size
	if border < 0 || border >= cell {
		return nil, fmt.Errorf("%w: border %d leaves no room in %dpx cells", ErrTooSmall, border, cell)
	}

	dc := gg.NewContext(resolution, resolution)
	dc.SetColor(Background)
	dc.Clear()
	return &Image{dc: dc, size: size, cell: cell, border: border}, nil
}

// Draw paints updates.
func (im *Image) Draw(updates []pathviz.Update) error {
	inner := float64(im.cell - im.border)
	for _, u := range updates {
		if u.At.X < 0 || u.At.Y < 0 || u.At.X >= im.size || u.At.Y >= im.size {
			return fmt.Errorf("update outside %dx%d grid: %+v", im.size, im.size, u.At)
		}
		x := float64(im.border + u.At.X*im.cell)
		y := float64(im.border + u.At.Y*im.cell)
		im.dc.SetColor(Color(u.Marker))
		im.dc.DrawRectangle(x, y, inner, inner)
		im.dc.Fill()
	}
	return nil
}

// Image returns the current picture.
func (im *Image) Image() image.Image { return im.dc.Image() }

// SavePNG writes the current picture to path.
func (im *Image) SavePNG(path string) error { return im.dc.SavePNG(path) }
