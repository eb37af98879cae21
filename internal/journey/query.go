package journey

import (
	"encoding/json"
	"fmt"
	"strings"

	"departureboard.app/internal/utils"
)

// MaxTripPatterns is the number of itineraries requested per route.
const MaxTripPatterns = 4

// RouteCount is the number of named sub-queries in one request.
const RouteCount = 2

// Route is an origin/destination pair of journey-planner place ids.
type Route struct {
	From string
	To   string
}

const tripQueryTemplate = `trip(
		from: { place: %q }
		to: { place: %q }
		numTripPatterns: %d
		modes: {
			accessMode: foot
			egressMode: foot
			transportModes: [{ transportMode: bus, transportSubModes: [localBus] }]
		}
	) {
		tripPatterns {
			legs {
				expectedStartTime
				line {
					publicCode
				}
			}
		}
	}`

// BuildTripQuery composes the GraphQL document with one aliased trip query
// per route: trip1 for routes[0] and trip2 for routes[1].
func BuildTripQuery(routes []Route) (string, error) {
	if len(routes) != RouteCount {
		return "", fmt.Errorf("expected %d routes, got %d", RouteCount, len(routes))
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, route := range routes {
		if err := utils.ValidatePlaceID(route.From); err != nil {
			return "", fmt.Errorf("route %d origin: %w", i+1, err)
		}
		if err := utils.ValidatePlaceID(route.To); err != nil {
			return "", fmt.Errorf("route %d destination: %w", i+1, err)
		}
		fmt.Fprintf(&b, "\ttrip%d: "+tripQueryTemplate+"\n", i+1, route.From, route.To, MaxTripPatterns)
	}
	b.WriteString("}")
	return b.String(), nil
}

type requestBody struct {
	Query string `json:"query"`
}

// RequestBody encodes query as the {"query": ...} POST body.
func RequestBody(query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	return json.Marshal(requestBody{Query: query})
}
