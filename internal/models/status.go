package models

import (
	"time"

	"departureboard.app/internal/board"
	"departureboard.app/internal/departures"
	"departureboard.app/internal/render"
)

// HealthEntry describes the snapshot and fetch task.
type HealthEntry struct {
	Generation uint64           `json:"generation"`
	FetchedAt  CurrentTimeModel `json:"fetchedAt"`
	Stale      bool             `json:"stale"`
	Fetch      board.Stats      `json:"fetch"`
	Render     RenderEntry      `json:"render"`
}

type RenderEntry struct {
	Generation uint64   `json:"generation"`
	Rows       []string `json:"rows"`
	Hidden     int      `json:"hidden"`
}

// NewHealthEntry builds the health entry. The snapshot is stale when it is
// older than staleAfter.
func NewHealthEntry(view board.View, stats board.Stats, state render.State, now time.Time, staleAfter time.Duration) HealthEntry {
	rows := state.Rows
	if rows == nil {
		rows = []string{}
	}
	return HealthEntry{
		Generation: view.Generation,
		FetchedAt:  NewCurrentTime(view.FetchedAt),
		Stale:      staleAfter > 0 && now.Sub(view.FetchedAt) > staleAfter,
		Fetch:      stats,
		Render: RenderEntry{
			Generation: state.Generation,
			Rows:       rows,
			Hidden:     state.Hidden,
		},
	}
}

// DepartureModel is one departure as served by the status API.
type DepartureModel struct {
	LineNumber       string `json:"lineNumber"`
	StartTime        int64  `json:"startTime"`
	LeavingInSeconds int64  `json:"leavingInSeconds"`
	LeavingIn        string `json:"leavingIn"`
}

type DeparturesEntry struct {
	Generation uint64           `json:"generation"`
	Departures []DepartureModel `json:"departures"`
}

// NewDeparturesEntry converts departures already recomputed against now.
func NewDeparturesEntry(generation uint64, list []departures.Departure) DeparturesEntry {
	models := make([]DepartureModel, len(list))
	for i, d := range list {
		models[i] = DepartureModel{
			LineNumber:       d.LineNumber,
			StartTime:        d.StartTime.UnixMilli(),
			LeavingInSeconds: int64(d.LeavingIn / time.Second),
			LeavingIn:        departures.FormatLeavingIn(d.LeavingIn),
		}
	}
	return DeparturesEntry{Generation: generation, Departures: models}
}
