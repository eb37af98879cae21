package app

import (
	"log/slog"

	"departureboard.app/internal/board"
	"departureboard.app/internal/display"
	"departureboard.app/internal/render"
)

// Application holds the dependencies for the status server handlers,
// helpers and middleware.
type Application struct {
	Config   Config
	Logger   *slog.Logger
	Board    *board.Manager
	Renderer *render.Renderer
	Surface  *display.Framebuffer
}
