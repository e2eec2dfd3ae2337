package restapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

const upcomingArrivalsLimit = 10

// stopHandler returns one stop with its next scheduled arrivals, merged
// with live predictions where fresh data exists.
func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	stopID := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(stopID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"id": {err.Error()}})
		return
	}

	idx := api.Schedules.Current()
	stop, ok := idx.StopByID(stopID)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var arrivals []models.Arrival
	for _, dep := range idx.TripsServing(stopID, now.Sub(midnight), upcomingArrivalsLimit) {
		scheduled := midnight.Add(dep.StopTime.Arrival)
		arrivals = append(arrivals, api.Merger.Arrival(dep.Trip.ID, stopID, dep.Trip.RouteID, scheduled, now))
	}

	// Live delays can reorder the board relative to the schedule.
	sort.Slice(arrivals, func(i, j int) bool {
		return arrivals[i].EffectiveTime().Before(arrivals[j].EffectiveTime())
	})

	entry := struct {
		Stop     models.Stop      `json:"stop"`
		Arrivals []models.Arrival `json:"arrivals"`
	}{Stop: stop, Arrivals: arrivals}

	api.sendResponse(w, r, models.NewEntryResponse(entry))
}
