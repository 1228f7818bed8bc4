package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pdrpinto/pathviz"
)

// cellWidth is the number of terminal columns per grid cell; two columns
// make cells roughly square.
const cellWidth = 2

// Terminal draws updates onto a tcell screen. Row 0 of the screen is the
// status line and the grid starts on the row below it.
type Terminal struct {
	screen tcell.Screen
	size   int
}

// NewTerminal prepares screen for a size×size grid. It fails with ErrTooSmall
// when the screen cannot hold the grid and the status line.
func NewTerminal(screen tcell.Screen, size int) (*Terminal, error) {
	w, h := screen.Size()
	if w < size*cellWidth || h < size+1 {
		return nil, fmt.Errorf("%w: need %dx%d cells, have %dx%d", ErrTooSmall, size*cellWidth, size+1, w, h)
	}
	return &Terminal{screen: screen, size: size}, nil
}

// Draw paints updates and shows the screen.
func (t *Terminal) Draw(updates []pathviz.Update) error {
	for _, u := range updates {
		if u.At.X < 0 || u.At.Y < 0 || u.At.X >= t.size || u.At.Y >= t.size {
			return fmt.Errorf("update outside %dx%d grid: %+v", t.size, t.size, u.At)
		}
		style := tcell.StyleDefault.Background(terminalColor(u.Marker))
		for dx := 0; dx < cellWidth; dx++ {
			t.screen.SetContent(u.At.X*cellWidth+dx, u.At.Y+1, ' ', nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// Status replaces the status line.
func (t *Terminal) Status(text string) {
	w, _ := t.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	col := 0
	for _, r := range text {
		if col >= w {
			break
		}
		t.screen.SetContent(col, 0, r, nil, style)
		col++
	}
	for ; col < w; col++ {
		t.screen.SetContent(col, 0, ' ', nil, style)
	}
	t.screen.Show()
}

func terminalColor(m pathviz.Marker) tcell.Color {
	c := Color(m)
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
