package display

import (
	"errors"
	"image"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

// ErrOutOfBounds is returned for a draw that lies entirely off the surface.
var ErrOutOfBounds = errors.New("draw outside surface")

var (
	Black = color.RGBA{A: 0xff}
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Red   = color.RGBA{R: 0xff, A: 0xff}
)

// Surface is what the render task draws on. Nothing becomes visible until
// Display commits the frame.
type Surface interface {
	Size() (width, height int16)
	FillRect(rect image.Rectangle, c color.RGBA) error
	DrawText(text string, origin image.Point, style TextStyle) error
	Display() error
}

// TextStyle describes one line of text. Origin points passed to DrawText are
// the top-left of the line box; the baseline sits Ascent pixels below it.
type TextStyle struct {
	Font    tinyfont.Fonter
	Color   color.RGBA
	Ascent  int16
	Descent int16
}

// LineHeight is the height of one line of text.
func (style TextStyle) LineHeight() int16 {
	return style.Ascent + style.Descent
}

// LargeText is white FreeMono Bold 18pt, used for the heading, labels and
// countdowns.
var LargeText = TextStyle{Font: &freemono.Bold18pt7b, Color: White, Ascent: 25, Descent: 8}
