package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"os"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"departureboard.app/internal/logging"
)

// Framebuffer is an in-memory Surface. Drawing goes to a back buffer owned by
// the single drawing goroutine; Display copies it to the front image that
// other goroutines read through Frame.
type Framebuffer struct {
	width  int16
	height int16
	back   *image.RGBA

	frontMutex sync.RWMutex
	front      *image.RGBA
	commits    uint64
}

var (
	_ Surface            = (*Framebuffer)(nil)
	_ drivers.Displayer = (*Framebuffer)(nil)
)

// NewFramebuffer returns a black framebuffer of the given size.
func NewFramebuffer(width, height int16) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}

	bounds := image.Rect(0, 0, int(width), int(height))
	fb := &Framebuffer{
		width:  width,
		height: height,
		back:   image.NewRGBA(bounds),
		front:  image.NewRGBA(bounds),
	}
	draw.Draw(fb.back, bounds, image.NewUniform(Black), image.Point{}, draw.Src)
	draw.Draw(fb.front, bounds, image.NewUniform(Black), image.Point{}, draw.Src)
	return fb, nil
}

func (fb *Framebuffer) Size() (int16, int16) {
	return fb.width, fb.height
}

// SetPixel ignores coordinates outside the surface.
func (fb *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	fb.back.SetRGBA(int(x), int(y), c)
}

// Display publishes the back buffer.
func (fb *Framebuffer) Display() error {
	fb.frontMutex.Lock()
	defer fb.frontMutex.Unlock()
	copy(fb.front.Pix, fb.back.Pix)
	fb.commits++
	return nil
}

// FillRect clips rect to the surface and fills what remains.
func (fb *Framebuffer) FillRect(rect image.Rectangle, c color.RGBA) error {
	clipped := rect.Canon().Intersect(fb.back.Bounds())
	if clipped.Empty() {
		return fmt.Errorf("fill %v: %w", rect, ErrOutOfBounds)
	}
	draw.Draw(fb.back, clipped, image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

func (fb *Framebuffer) DrawText(text string, origin image.Point, style TextStyle) error {
	if style.Font == nil {
		return fmt.Errorf("draw %q: no font", text)
	}
	if !origin.In(fb.back.Bounds()) {
		return fmt.Errorf("draw %q at %v: %w", text, origin, ErrOutOfBounds)
	}

	tinyfont.WriteLine(fb, style.Font, int16(origin.X), int16(origin.Y)+style.Ascent, text, style.Color)
	return nil
}

// Frame returns a copy of the last committed frame.
func (fb *Framebuffer) Frame() *image.RGBA {
	fb.frontMutex.RLock()
	defer fb.frontMutex.RUnlock()
	frame := image.NewRGBA(fb.front.Bounds())
	copy(frame.Pix, fb.front.Pix)
	return frame
}

// Commits counts calls to Display. It doubles as the sequence number of the
// frame returned by Frame.
func (fb *Framebuffer) Commits() uint64 {
	fb.frontMutex.RLock()
	defer fb.frontMutex.RUnlock()
	return fb.commits
}

// WritePNG encodes the last committed frame.
func (fb *Framebuffer) WritePNG(w io.Writer) error {
	return png.Encode(w, fb.Frame())
}

// SavePNG writes the last committed frame to path.
func (fb *Framebuffer) SavePNG(path string, logger *slog.Logger) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	defer logging.HandleDeferredError(&err, file.Close, logger, "frame_file_close")

	return fb.WritePNG(file)
}
