package restapi

import (
	"net/http"
	"time"

	"departureboard.app/internal/models"
	"departureboard.app/internal/render"
)

// healthHandler reports the snapshot generation, fetch statistics and what
// the renderer last drew. A stale snapshot is a 503.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	var state render.State
	if api.Renderer != nil {
		state = api.Renderer.State()
	}

	entry := models.NewHealthEntry(api.Board.Load(), api.Board.Stats(), state, time.Now(), api.staleAfter)
	if entry.Stale {
		api.sendResponse(w, r, models.NewResponse(http.StatusServiceUnavailable,
			map[string]interface{}{"entry": entry}, "snapshot is stale"))
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}
