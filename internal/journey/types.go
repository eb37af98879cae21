package journey

// TripResponse is the decoded journey-planner payload for the two named trip
// queries. It is treated as immutable once decoded.
type TripResponse struct {
	Data   *TripData   `json:"data"`
	Errors QueryErrors `json:"errors,omitempty"`
}

// TripData holds the two aliased sub-queries in display order.
type TripData struct {
	Trip1 Trip `json:"trip1"`
	Trip2 Trip `json:"trip2"`
}

type Trip struct {
	TripPatterns []TripPattern `json:"tripPatterns"`
}

// TripPattern is one candidate itinerary for an origin/destination pair.
type TripPattern struct {
	Legs []Leg `json:"legs"`
}

// Leg is one segment of a trip pattern. Walking segments carry no Line.
type Leg struct {
	ExpectedStartTime string `json:"expectedStartTime"`
	Line              *Line  `json:"line"`
}

type Line struct {
	PublicCode string `json:"publicCode"`
}

// Trips returns trip1 and trip2 in that order. A response without data
// yields two empty trips.
func (r *TripResponse) Trips() []Trip {
	if r == nil || r.Data == nil {
		return []Trip{{}, {}}
	}
	return []Trip{r.Data.Trip1, r.Data.Trip2}
}

// LegCount returns the number of legs across both trips, usable or not.
func (r *TripResponse) LegCount() int {
	count := 0
	for _, trip := range r.Trips() {
		for _, pattern := range trip.TripPatterns {
			count += len(pattern.Legs)
		}
	}
	return count
}

// Clone returns a deep copy that shares no slices or pointers with r.
func (r *TripResponse) Clone() TripResponse {
	if r == nil {
		return TripResponse{}
	}

	clone := TripResponse{}
	if r.Data != nil {
		clone.Data = &TripData{
			Trip1: r.Data.Trip1.clone(),
			Trip2: r.Data.Trip2.clone(),
		}
	}
	if r.Errors != nil {
		clone.Errors = make(QueryErrors, len(r.Errors))
		copy(clone.Errors, r.Errors)
	}
	return clone
}

func (t Trip) clone() Trip {
	if t.TripPatterns == nil {
		return Trip{}
	}

	patterns := make([]TripPattern, len(t.TripPatterns))
	for i, pattern := range t.TripPatterns {
		if pattern.Legs == nil {
			continue
		}
		legs := make([]Leg, len(pattern.Legs))
		for j, leg := range pattern.Legs {
			legs[j] = Leg{ExpectedStartTime: leg.ExpectedStartTime}
			if leg.Line != nil {
				line := *leg.Line
				legs[j].Line = &line
			}
		}
		patterns[i].Legs = legs
	}
	return Trip{TripPatterns: patterns}
}
