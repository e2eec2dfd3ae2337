package restapi

import (
	"net/http"
	"time"
)

// metricsHandler refreshes the status gauges from the live components
// before handing the scrape to the registry.
func (api *RestAPI) metricsHandler() http.Handler {
	inner := api.Metrics.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		_, fresh := api.Realtime.TripUpdates(now)
		modelAge := now.Sub(api.Reliability.Current().ComputedAt())
		api.Metrics.SetRuntimeStatus(fresh, modelAge, api.Realtime.FetchFailures())
		inner.ServeHTTP(w, r)
	})
}
