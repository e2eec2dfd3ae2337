package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/webui"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// SetRoutes registers every API endpoint on the router.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/where/plan.json", validateAPIKey(api, api.planHandler))
	router.Handler(http.MethodGet, "/api/where/stops-for-location.json", validateAPIKey(api, api.stopsForLocationHandler))
	router.Handler(http.MethodGet, "/api/where/stop/:id", validateAPIKey(api, api.stopHandler))
	router.Handler(http.MethodGet, "/api/where/route/:id", validateAPIKey(api, api.routeHandler))
	router.Handler(http.MethodGet, "/api/where/current-time.json", validateAPIKey(api, api.currentTimeHandler))

	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.metricsHandler())
	}
}

// Handler wraps the routed API in the request logging middleware.
func (api *RestAPI) Handler() http.Handler {
	router := httprouter.New()
	api.SetRoutes(router)

	// Debug pages dump internal state, so they stay off outside development.
	if api.Config.Server.Env == "development" {
		webui.NewWebUI(api.Application).SetRoutes(router)
	}

	return NewRequestLoggingMiddleware(api.Logger, api.Metrics)(router)
}
