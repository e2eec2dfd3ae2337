package restapi

import (
	"net/http"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

// routeHandler returns one route with its current reliability score.
func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(routeID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	route, ok := api.Schedules.Current().RouteInfo(routeID)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	score := api.Reliability.Current().ScoreFor(routeID, time.Now())

	entry := struct {
		Route       models.Route            `json:"route"`
		Reliability models.ReliabilityScore `json:"reliability"`
	}{Route: route, Reliability: score}

	api.sendResponse(w, r, models.NewEntryResponse(entry))
}
