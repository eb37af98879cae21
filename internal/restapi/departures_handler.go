package restapi

import (
	"net/http"
	"time"

	"departureboard.app/internal/departures"
	"departureboard.app/internal/models"
)

func (api *RestAPI) departuresHandler(w http.ResponseWriter, r *http.Request) {
	view := api.Board.Load()
	list := departures.Extract(&view.Response, time.Now())
	api.sendResponse(w, r, models.NewEntryResponse(models.NewDeparturesEntry(view.Generation, list)))
}
