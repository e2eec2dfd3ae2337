package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

// ScheduleIntegrityError describes malformed or inconsistent static schedule
// input. It is fatal to building that schedule version; the previous valid
// snapshot stays in service.
type ScheduleIntegrityError struct {
	Reason string
}

func (e *ScheduleIntegrityError) Error() string {
	return fmt.Sprintf("schedule integrity error: %s", e.Reason)
}

func integrityErrorf(format string, args ...any) error {
	return &ScheduleIntegrityError{Reason: fmt.Sprintf(format, args...)}
}

// Departure is one trip calling at one stop.
type Departure struct {
	Trip     models.Trip
	StopTime models.StopTime
}

// Index is an immutable snapshot of one schedule version. It is built once
// per version and replaced wholesale; concurrent readers never observe a
// partially built index.
type Index struct {
	version   string
	expiresAt time.Time

	stops            map[string]models.Stop
	routes           map[string]models.Route
	trips            map[string]models.Trip
	stopTimesByTrip  map[string][]models.StopTime
	departuresByStop map[string][]Departure
	grid             *stopGrid
}

// Build validates the supplied records and assembles the index. Stop times
// referencing unknown stops or trips, or out-of-sequence calls, reject the
// whole schedule version with a ScheduleIntegrityError.
func Build(version string, expiresAt time.Time, stops []models.Stop, routes []models.Route, trips []models.Trip, stopTimes []models.StopTime) (*Index, error) {
	idx := &Index{
		version:          version,
		expiresAt:        expiresAt,
		stops:            make(map[string]models.Stop, len(stops)),
		routes:           make(map[string]models.Route, len(routes)),
		trips:            make(map[string]models.Trip, len(trips)),
		stopTimesByTrip:  make(map[string][]models.StopTime, len(trips)),
		departuresByStop: make(map[string][]Departure),
	}

	for _, stop := range stops {
		if _, dup := idx.stops[stop.ID]; dup {
			return nil, integrityErrorf("duplicate stop id %q", stop.ID)
		}
		if err := utils.ValidateLatitude(stop.Lat); err != nil {
			return nil, integrityErrorf("stop %q: %v", stop.ID, err)
		}
		if err := utils.ValidateLongitude(stop.Lon); err != nil {
			return nil, integrityErrorf("stop %q: %v", stop.ID, err)
		}
		idx.stops[stop.ID] = stop
	}

	for _, route := range routes {
		if !route.Type.Valid() {
			return nil, integrityErrorf("route %q has unknown type %d", route.ID, route.Type)
		}
		idx.routes[route.ID] = route
	}

	for _, trip := range trips {
		if _, ok := idx.routes[trip.RouteID]; !ok {
			return nil, integrityErrorf("trip %q references unknown route %q", trip.ID, trip.RouteID)
		}
		idx.trips[trip.ID] = trip
	}

	for _, st := range stopTimes {
		if _, ok := idx.trips[st.TripID]; !ok {
			return nil, integrityErrorf("stop time references unknown trip %q", st.TripID)
		}
		if _, ok := idx.stops[st.StopID]; !ok {
			return nil, integrityErrorf("stop time on trip %q references unknown stop %q", st.TripID, st.StopID)
		}
		if st.Departure < st.Arrival {
			return nil, integrityErrorf("trip %q stop %q departs before it arrives", st.TripID, st.StopID)
		}
		idx.stopTimesByTrip[st.TripID] = append(idx.stopTimesByTrip[st.TripID], st)
	}

	routeIDsByStop := make(map[string]map[string]bool)
	for tripID, calls := range idx.stopTimesByTrip {
		sort.Slice(calls, func(i, j int) bool {
			return calls[i].StopSequence < calls[j].StopSequence
		})
		for i, st := range calls {
			if i > 0 && st.StopSequence <= calls[i-1].StopSequence {
				return nil, integrityErrorf("trip %q stop sequence not strictly increasing at stop %q", tripID, st.StopID)
			}
		}
		idx.stopTimesByTrip[tripID] = calls

		trip := idx.trips[tripID]
		for _, st := range calls {
			idx.departuresByStop[st.StopID] = append(idx.departuresByStop[st.StopID], Departure{Trip: trip, StopTime: st})
			if routeIDsByStop[st.StopID] == nil {
				routeIDsByStop[st.StopID] = make(map[string]bool)
			}
			routeIDsByStop[st.StopID][trip.RouteID] = true
		}
	}

	// Departure boards are sorted once so lookups can binary search.
	for stopID, board := range idx.departuresByStop {
		sort.Slice(board, func(i, j int) bool {
			if board[i].StopTime.Departure != board[j].StopTime.Departure {
				return board[i].StopTime.Departure < board[j].StopTime.Departure
			}
			return board[i].Trip.ID < board[j].Trip.ID
		})
		idx.departuresByStop[stopID] = board
	}

	for stopID, routeSet := range routeIDsByStop {
		stop := idx.stops[stopID]
		if len(stop.RouteIDs) == 0 {
			ids := make([]string, 0, len(routeSet))
			for id := range routeSet {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			stop.RouteIDs = ids
			idx.stops[stopID] = stop
		}
	}

	idx.grid = newStopGrid(idx.stops)

	return idx, nil
}

// Version returns the schedule version token this index was built from.
func (idx *Index) Version() string { return idx.version }

// ExpiresAt returns when this schedule version expires.
func (idx *Index) ExpiresAt() time.Time { return idx.expiresAt }

// StopCount returns the number of indexed stops.
func (idx *Index) StopCount() int { return len(idx.stops) }

// StopByID looks up a stop.
func (idx *Index) StopByID(id string) (models.Stop, bool) {
	stop, ok := idx.stops[id]
	return stop, ok
}

// RouteInfo looks up a route.
func (idx *Index) RouteInfo(routeID string) (models.Route, bool) {
	route, ok := idx.routes[routeID]
	return route, ok
}

// TripByID looks up a trip.
func (idx *Index) TripByID(tripID string) (models.Trip, bool) {
	trip, ok := idx.trips[tripID]
	return trip, ok
}

// Stops returns every stop in the snapshot, ordered by id.
func (idx *Index) Stops() []models.Stop {
	out := make([]models.Stop, 0, len(idx.stops))
	for _, stop := range idx.stops {
		out = append(out, stop)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Routes returns every route in the snapshot, ordered by id.
func (idx *Index) Routes() []models.Route {
	out := make([]models.Route, 0, len(idx.routes))
	for _, route := range idx.routes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Trips returns every trip in the snapshot, ordered by id.
func (idx *Index) Trips() []models.Trip {
	out := make([]models.Trip, 0, len(idx.trips))
	for _, trip := range idx.trips {
		out = append(out, trip)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StopsNear returns stops within radiusMeters of the location, ordered by
// distance. The spatial grid keeps the candidate set small.
func (idx *Index) StopsNear(loc models.Location, radiusMeters float64) []models.Stop {
	return idx.grid.near(loc.Lat, loc.Lon, radiusMeters)
}

// TripsServing returns up to limit departures from the stop at or after the
// given offset from local midnight, in departure order.
func (idx *Index) TripsServing(stopID string, after time.Duration, limit int) []Departure {
	board := idx.departuresByStop[stopID]
	start := sort.Search(len(board), func(i int) bool {
		return board[i].StopTime.Departure >= after
	})

	end := len(board)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	out := make([]Departure, end-start)
	copy(out, board[start:end])
	return out
}

// StopTimesForTrip returns the full ordered call sequence of a trip.
func (idx *Index) StopTimesForTrip(tripID string) []models.StopTime {
	return idx.stopTimesByTrip[tripID]
}

// RideFrom returns the calls of a trip strictly after the given stop
// sequence, in order. These are the stops reachable by staying on board.
func (idx *Index) RideFrom(tripID string, afterSequence int) []models.StopTime {
	calls := idx.stopTimesByTrip[tripID]
	start := sort.Search(len(calls), func(i int) bool {
		return calls[i].StopSequence > afterSequence
	})
	return calls[start:]
}
