// Package render draws the departure board and keeps its countdowns ticking.
package render

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"slices"
	"sync"
	"time"

	"departureboard.app/internal/board"
	"departureboard.app/internal/departures"
	"departureboard.app/internal/display"
	"departureboard.app/internal/logging"
)

const (
	DefaultTick        = time.Second
	DefaultWindowTicks = 20
)

// Source is the snapshot the renderer reads. *board.Manager and
// *board.Snapshot implement it.
type Source interface {
	Load() board.View
}

type Clock interface {
	Now() time.Time
}

type Config struct {
	// Tick is the pause between countdown redraws.
	Tick time.Duration
	// WindowTicks is how many ticks run before the snapshot is reloaded.
	WindowTicks int
	// Style is used for the heading, labels and countdowns.
	Style display.TextStyle
}

func (config Config) withDefaults() Config {
	if config.Tick <= 0 {
		config.Tick = DefaultTick
	}
	if config.WindowTicks <= 0 {
		config.WindowTicks = DefaultWindowTicks
	}
	if config.Style.Font == nil {
		config.Style = display.LargeText
	}
	return config
}

// State is what the renderer last put on screen.
type State struct {
	Generation uint64                 `json:"generation"`
	RenderedAt time.Time              `json:"renderedAt"`
	Rows       []string               `json:"rows"`
	Departures []departures.Departure `json:"departures"`
	Hidden     int                    `json:"hidden"`
}

// Renderer is the only goroutine that draws on its surface.
type Renderer struct {
	config  Config
	source  Source
	surface display.Surface
	clock   Clock
	logger  *slog.Logger

	generation uint64
	departures []departures.Departure
	labels     []string

	stateMutex sync.RWMutex
	state      State
}

func NewRenderer(config Config, source Source, surface display.Surface, clock Clock, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		config:  config.withDefaults(),
		source:  source,
		surface: surface,
		clock:   clock,
		logger:  logger.With(slog.String("component", "renderer")),
	}
}

// Run draws until ctx is done. Each window loads the snapshot once, lays out
// the rows if a new generation arrived, then redraws the countdowns every
// tick.
func (r *Renderer) Run(ctx context.Context) {
	r.drawHeading()

	ticker := time.NewTicker(r.config.Tick)
	defer ticker.Stop()

	for {
		view := r.source.Load()
		if view.Generation != r.generation {
			r.layoutRows(view)
		}

		for range r.config.WindowTicks {
			r.tick(r.clock.Now())

			select {
			case <-ticker.C:
			case <-ctx.Done():
				logging.LogOperation(r.logger, "renderer_stopped",
					slog.Uint64("generation", r.generation))
				return
			}
		}
	}
}

// State returns a copy of what was last drawn.
func (r *Renderer) State() State {
	r.stateMutex.RLock()
	defer r.stateMutex.RUnlock()
	state := r.state
	state.Rows = slices.Clone(r.state.Rows)
	state.Departures = slices.Clone(r.state.Departures)
	return state
}

// Rows returns the row text last drawn, label then countdown.
func (r *Renderer) Rows() []string {
	return r.State().Rows
}

func (r *Renderer) drawHeading() {
	if err := r.surface.DrawText(headingText, headingOrigin, r.config.Style); err != nil {
		logging.LogError(r.logger, "failed to draw heading", err)
	}
}

// layoutRows extracts departures from view and redraws the label column. Rows
// whose label is unchanged are left alone; rows that disappeared are cleared.
func (r *Renderer) layoutRows(view board.View) {
	width, height := r.surface.Size()
	next := departures.Extract(&view.Response, r.clock.Now())
	nextLabels := departures.Labels(next)

	visible := min(len(next), visibleRows(height))
	if hidden := len(next) - visible; hidden > 0 {
		r.logger.Warn("departures do not fit on the display",
			slog.Int("shown", visible),
			slog.Int("hidden", hidden))
	}
	drawn := min(len(r.labels), visibleRows(height))

	for i := range max(visible, drawn) {
		if i < visible && i < drawn && nextLabels[i] == r.labels[i] {
			continue
		}
		r.fill(i, rowRect(i, width), display.Black)
		if i >= visible {
			continue
		}
		r.fill(i, labelRect(i), display.Red)
		r.text(i, nextLabels[i], image.Pt(labelTextX, textTop(i, r.config.Style)), r.config.Style)
	}

	logging.LogOperation(r.logger, "rows_laid_out",
		slog.Uint64("generation", view.Generation),
		slog.Int("rows", visible))

	r.generation = view.Generation
	r.departures = next[:visible]
	r.labels = nextLabels
	r.stateMutex.Lock()
	r.state.Generation = view.Generation
	r.state.Hidden = len(next) - visible
	r.stateMutex.Unlock()
}

// tick erases and redraws every countdown cell against now, then commits.
func (r *Renderer) tick(now time.Time) {
	width, _ := r.surface.Size()
	current := departures.Recompute(r.departures, now)
	rows := make([]string, len(current))

	for i, d := range current {
		countdown := d.Countdown()
		rows[i] = d.LineNumber + " " + countdown

		cell := timeCell(i, width, r.config.Style)
		r.fill(i, cell, display.Black)
		r.text(i, countdown, cell.Min, r.config.Style)
	}

	if err := r.surface.Display(); err != nil {
		logging.LogError(r.logger, "failed to commit frame", err)
	}

	r.stateMutex.Lock()
	r.state.RenderedAt = now
	r.state.Rows = rows
	r.state.Departures = current
	r.stateMutex.Unlock()
}

func (r *Renderer) fill(row int, rect image.Rectangle, c color.RGBA) {
	if err := r.surface.FillRect(rect, c); err != nil {
		logging.LogError(r.logger, "failed to fill row", err, slog.Int("row", row))
	}
}

func (r *Renderer) text(row int, text string, origin image.Point, style display.TextStyle) {
	if err := r.surface.DrawText(text, origin, style); err != nil {
		logging.LogError(r.logger, "failed to draw text", err,
			slog.Int("row", row),
			slog.String("text", text))
	}
}
