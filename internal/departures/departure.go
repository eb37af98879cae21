// Package departures turns trip responses into display rows.
package departures

import (
	"fmt"
	"time"

	"departureboard.app/internal/journey"
)

// Departure is a display-ready record derived from one vehicle leg.
// Values are never mutated; At produces a fresh one.
type Departure struct {
	StartTime  time.Time     `json:"startTime"`
	LeavingIn  time.Duration `json:"leavingIn"`
	LineNumber string        `json:"lineNumber"`
}

// At returns the departure with LeavingIn recomputed against now.
func (d Departure) At(now time.Time) Departure {
	return Departure{
		StartTime:  d.StartTime,
		LeavingIn:  d.StartTime.Sub(now),
		LineNumber: d.LineNumber,
	}
}

// Countdown renders LeavingIn right-aligned in a five character field.
func (d Departure) Countdown() string {
	return fmt.Sprintf("%5s", FormatLeavingIn(d.LeavingIn))
}

// Extract flattens the legs of trip1 and then trip2, in pattern and leg
// order, into departures. Legs without a line code and legs whose start time
// does not parse are skipped. The result is never nil.
func Extract(resp *journey.TripResponse, now time.Time) []Departure {
	departures := make([]Departure, 0, resp.LegCount())
	for _, trip := range resp.Trips() {
		for _, pattern := range trip.TripPatterns {
			for _, leg := range pattern.Legs {
				departure, ok := fromLeg(leg, now)
				if !ok {
					continue
				}
				departures = append(departures, departure)
			}
		}
	}
	return departures
}

func fromLeg(leg journey.Leg, now time.Time) (Departure, bool) {
	if leg.Line == nil || leg.Line.PublicCode == "" {
		return Departure{}, false
	}

	start, err := ParseStartTime(leg.ExpectedStartTime)
	if err != nil {
		return Departure{}, false
	}

	return Departure{
		StartTime:  start,
		LeavingIn:  start.Sub(now),
		LineNumber: leg.Line.PublicCode,
	}, true
}

// ParseStartTime parses an ISO-8601 timestamp with a zone offset, with or
// without fractional seconds.
func ParseStartTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// Recompute returns a new slice with every LeavingIn measured from now.
func Recompute(departures []Departure, now time.Time) []Departure {
	recomputed := make([]Departure, len(departures))
	for i, d := range departures {
		recomputed[i] = d.At(now)
	}
	return recomputed
}

// Labels returns the line numbers in row order.
func Labels(departures []Departure) []string {
	labels := make([]string, len(departures))
	for i, d := range departures {
		labels[i] = d.LineNumber
	}
	return labels
}
