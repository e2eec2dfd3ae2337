package realtime

import (
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// EffectiveArrival merges one scheduled arrival with live data. Absent or
// unusable live data yields a scheduled-only arrival, never an error.
func EffectiveArrival(tripID, stopID, routeID string, scheduled time.Time, update *TripUpdate, now time.Time) models.Arrival {
	if update == nil {
		return models.NewScheduledArrival(tripID, stopID, routeID, scheduled, now)
	}

	if prediction, ok := update.Stops[stopID]; ok && !prediction.Skipped {
		predicted := prediction.ArrivalTime
		if predicted.IsZero() {
			predicted = prediction.DepartureTime
		}
		if !predicted.IsZero() {
			return models.NewPredictedArrival(tripID, stopID, routeID, scheduled, predicted, now)
		}
	}

	if update.DelaySeconds != 0 {
		predicted := scheduled.Add(time.Duration(update.DelaySeconds) * time.Second)
		return models.NewPredictedArrival(tripID, stopID, routeID, scheduled, predicted, now)
	}

	return models.NewScheduledArrival(tripID, stopID, routeID, scheduled, now)
}

// Merger answers arrival questions against whatever live data is fresh.
type Merger struct {
	manager *Manager
}

// NewMerger wraps a realtime manager.
func NewMerger(manager *Manager) *Merger {
	return &Merger{manager: manager}
}

// UpdateFor returns the fresh update for a trip, or nil when the trip has
// none or the cache has gone stale.
func (m *Merger) UpdateFor(tripID string, now time.Time) *TripUpdate {
	updates, ok := m.manager.TripUpdates(now)
	if !ok {
		return nil
	}
	update, ok := updates[tripID]
	if !ok {
		return nil
	}
	return &update
}

// Arrival merges the schedule with live data for one (trip, stop) pair.
func (m *Merger) Arrival(tripID, stopID, routeID string, scheduled, now time.Time) models.Arrival {
	return EffectiveArrival(tripID, stopID, routeID, scheduled, m.UpdateFor(tripID, now), now)
}

// TripCanceled reports whether fresh live data marks the trip canceled.
func (m *Merger) TripCanceled(tripID string, now time.Time) bool {
	update := m.UpdateFor(tripID, now)
	return update != nil && update.Canceled
}
