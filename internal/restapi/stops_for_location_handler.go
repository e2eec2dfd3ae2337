package restapi

import (
	"net/http"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

const defaultStopSearchRadiusMeters = 500

// coverageRadiusMeters is how far from the nearest stop a location can be
// before the feed is considered not to cover it at all.
const coverageRadiusMeters = 50000

func (api *RestAPI) stopsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.ParseFloatParam(queryParams, "lat", nil)
	lon, _ := utils.ParseFloatParam(queryParams, "lon", fieldErrors)
	radius, _ := utils.ParseFloatParam(queryParams, "radius", fieldErrors)

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if err := utils.ValidateLatitude(lat); err != nil {
		fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
	}
	if err := utils.ValidateLongitude(lon); err != nil {
		fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
	}
	if radius == 0 {
		radius = defaultStopSearchRadiusMeters
	}
	if err := utils.ValidateRadius(radius); err != nil {
		fieldErrors["radius"] = append(fieldErrors["radius"], err.Error())
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if r.Context().Err() != nil {
		api.serverErrorResponse(w, r, r.Context().Err())
		return
	}

	idx := api.Schedules.Current()
	location := models.NewLocation(lat, lon)

	stops := idx.StopsNear(location, radius)
	if stops == nil {
		stops = []models.Stop{}
	}

	outOfRange := false
	if len(stops) == 0 {
		outOfRange = len(idx.StopsNear(location, coverageRadiusMeters)) == 0
	}

	api.sendResponse(w, r, models.NewStopsResponse(models.StopsResponse{
		List:       stops,
		OutOfRange: outOfRange,
	}))
}
