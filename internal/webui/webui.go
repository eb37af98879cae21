// Package webui serves a debug page that dumps the board's internal state.
package webui

import "departureboard.app/internal/app"

type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}
