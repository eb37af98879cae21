package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"departureboard.app/internal/webui"
)

func validateAPIKey(api *RestAPI, finalHandler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// Routes returns the status server handler with all middleware applied.
func (api *RestAPI) Routes() http.Handler {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, recovered interface{}) {
		api.Logger.Error("panic in handler", "panic", recovered, "path", r.URL.Path)
		api.serverErrorResponse(w, r, nil)
	}

	router.Handler(http.MethodGet, "/healthz", validateAPIKey(api, api.healthHandler))
	router.Handler(http.MethodGet, "/api/departures.json", api.rateLimiter(validateAPIKey(api, api.departuresHandler)))
	router.Handler(http.MethodGet, "/api/frame.png", api.rateLimiter(validateAPIKey(api, api.frameHandler)))
	if webui.Enabled(api.Config.Env) {
		router.Handler(http.MethodGet, webui.DebugPath, validateAPIKey(api, webui.New(api.Application).Handler().ServeHTTP))
	}

	handler := CompressionMiddleware(router)
	handler = api.WithSecurityHeaders(handler)
	return NewRequestLoggingMiddleware(api.Logger)(handler)
}
