package restapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/planner"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

// planHandler runs one itinerary planning request from query parameters.
func (api *RestAPI) planHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	queryParams := r.URL.Query()

	fieldErrors := utils.RequireParams(queryParams, nil, "fromLat", "fromLon", "toLat", "toLon")
	fromLat, fieldErrors := utils.ParseFloatParam(queryParams, "fromLat", fieldErrors)
	fromLon, _ := utils.ParseFloatParam(queryParams, "fromLon", fieldErrors)
	toLat, _ := utils.ParseFloatParam(queryParams, "toLat", fieldErrors)
	toLon, _ := utils.ParseFloatParam(queryParams, "toLon", fieldErrors)
	requestedTime, _ := utils.ParseTimeParam(queryParams, "time", time.Now(), fieldErrors)
	arriveBy, _ := utils.ParseBoolParam(queryParams, "arriveBy", false, fieldErrors)

	opts := models.DefaultPlanOptions()
	maxWalk, _ := utils.ParseFloatParam(queryParams, "maxWalkingDistance", fieldErrors)
	if maxWalk > 0 {
		opts.MaxWalkingDistanceMeters = maxWalk
	}
	opts.MaxTransfers, _ = utils.ParseIntParam(queryParams, "maxTransfers", opts.MaxTransfers, fieldErrors)
	opts.WheelchairAccessibleOnly, _ = utils.ParseBoolParam(queryParams, "wheelchairAccessible", false, fieldErrors)
	if agencies, ok := queryParams["agency"]; ok {
		opts.PreferredAgencies = agencies
	}
	if mode := queryParams.Get("mode"); mode != "" {
		opts.TripMode = models.TripMode(mode)
	}

	if len(fieldErrors) > 0 {
		api.Metrics.ObservePlan("invalid", 0, time.Since(start))
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	req := models.PlanRequest{
		Origin:        models.NewLocation(fromLat, fromLon),
		Destination:   models.NewLocation(toLat, toLon),
		RequestedTime: requestedTime,
		ArriveBy:      arriveBy,
		Options:       opts,
	}

	result, err := api.Planner.Plan(r.Context(), req)
	if err != nil {
		var invalid *planner.InvalidRequestError
		switch {
		case errors.As(err, &invalid):
			api.Metrics.ObservePlan("invalid", 0, time.Since(start))
			api.validationErrorResponse(w, r, invalid.FieldErrors)
		case errors.Is(err, planner.ErrCancelled):
			api.Metrics.ObservePlan("cancelled", 0, time.Since(start))
			api.serverErrorResponse(w, r, err)
		default:
			api.Metrics.ObservePlan("error", 0, time.Since(start))
			api.serverErrorResponse(w, r, err)
		}
		return
	}

	outcome := "ok"
	if len(result.Itineraries) == 0 {
		outcome = "empty"
	}
	api.Metrics.ObservePlan(outcome, len(result.Itineraries), time.Since(start))

	api.sendResponse(w, r, models.NewEntryResponse(result))
}
