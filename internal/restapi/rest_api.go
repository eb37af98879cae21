package restapi

import (
	"net/http"
	"time"

	"departureboard.app/internal/app"
)

// staleIntervals is how many fetch intervals may pass without a successful
// fetch before the health check reports the snapshot as stale.
const staleIntervals = 3

type RestAPI struct {
	*app.Application
	rateLimiter func(http.Handler) http.Handler
	staleAfter  time.Duration
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	api := &RestAPI{
		Application: app,
		staleAfter:  staleIntervals * app.Config.Fetch.Interval,
	}
	api.rateLimiter = NewRateLimitMiddleware(app.Config.Status.RateLimit, time.Second, api.rateLimitKey)
	return api
}

// rateLimitKey buckets requests by API key when keys are configured and
// shares one bucket otherwise.
func (api *RestAPI) rateLimitKey(r *http.Request) string {
	if len(api.Config.Status.APIKeys) == 0 {
		return ""
	}
	return r.URL.Query().Get("key")
}
