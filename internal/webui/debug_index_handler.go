package webui

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"

	"departureboard.app/internal/departures"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title     string
	Pre       string
	ShowFrame bool
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}, showFrame bool) {
	w.Header().Set("Content-Type", "text/html")
	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		ShowFrame: showFrame,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string
	showFrame := false

	switch dataType {
	case "snapshot":
		data = webUI.Board.Load()
		title = "Snapshot"
	case "departures":
		view := webUI.Board.Load()
		data = departures.Extract(&view.Response, time.Now())
		title = "Departures"
	case "stats":
		data = webUI.Board.Stats()
		title = "Fetch statistics"
	case "render":
		if webUI.Renderer != nil {
			data = webUI.Renderer.State()
		}
		title = "Renderer"
		showFrame = webUI.Surface != nil
	default:
		data = map[string]string{
			"error": "Please use one of the following: snapshot, departures, stats, render.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data, showFrame)
}
