package planner

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/realtime"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/schedule"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

const (
	// WalkingSpeedMetersPerSecond is the fixed pace for walk edges.
	WalkingSpeedMetersPerSecond = 1.4

	// minTransferSlack is the smallest gap allowed between arriving at a
	// stop and boarding a departure there.
	minTransferSlack = time.Minute

	// searchWindow bounds how far past the requested time departures are
	// considered before the search gives up.
	searchWindow = 3 * time.Hour

	// departuresPerStop caps how many upcoming departures each marked stop
	// contributes per round.
	departuresPerStop = 8
)

func walkDuration(meters float64) time.Duration {
	return time.Duration(meters / WalkingSpeedMetersPerSecond * float64(time.Second))
}

// label is one Pareto-optimal way of reaching a stop within a round. A
// label either alights from a trip or walks in from another stop reached
// earlier in the same round (or from the origin, in round zero).
type label struct {
	arrival    time.Duration
	tripID     string
	boardStop  string
	boardTime  time.Duration
	fromStop   string
	walkMeters float64
}

type destCandidate struct {
	round      int
	stopID     string
	arrival    time.Duration
	walkMeters float64
}

// searcher runs one round-based search over a single schedule snapshot.
type searcher struct {
	index   *schedule.Index
	model   ReliabilityModel
	live    LiveSource
	request models.PlanRequest

	dayStart time.Time
	deadline time.Time
	now      time.Time
}

// ReliabilityModel is the slice of the reliability model the search needs.
type ReliabilityModel interface {
	ScoreFor(routeID string, departure time.Time) models.ReliabilityScore
}

func (s *searcher) run(ctx context.Context) ([]models.Itinerary, error) {
	req := s.request
	s.now = time.Now()

	departAt := req.RequestedTime
	if req.ArriveBy {
		s.deadline = req.RequestedTime
		departAt = s.deadline.Add(-searchWindow)
	}

	y, m, d := departAt.Date()
	s.dayStart = time.Date(y, m, d, 0, 0, 0, 0, departAt.Location())
	departOffset := departAt.Sub(s.dayStart)

	maxWalk := req.Options.MaxWalkingDistanceMeters
	maxRounds := req.Options.MaxTransfers + 1

	// Round zero walks from the origin to every stop in range. Access
	// walks stay out of the best map: they are boarding points, and a
	// fast walk to a stop must not prune transit arrivals there. The
	// walk-only trip competes as its own itinerary instead.
	rounds := make([]map[string]label, 1, maxRounds+1)
	rounds[0] = make(map[string]label)
	best := make(map[string]time.Duration)

	for _, stop := range s.index.StopsNear(req.Origin, maxWalk) {
		meters := utils.Haversine(req.Origin.Lat, req.Origin.Lon, stop.Lat, stop.Lon)
		arrival := departOffset + walkDuration(meters)
		rounds[0][stop.ID] = label{arrival: arrival, walkMeters: meters}
	}

	horizon := departOffset + searchWindow
	var candidates []destCandidate

	marked := rounds[0]
	for round := 1; round <= maxRounds && len(marked) > 0; round++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		next := make(map[string]label)
		for stopID, prev := range marked {
			s.expandStop(stopID, prev, next, best, horizon)
		}

		s.relaxWalks(next, best, maxWalk)
		rounds = append(rounds, next)
		marked = next

		candidates = append(candidates, s.destinationCandidates(round, next, maxWalk)...)
	}

	candidates = paretoFilter(candidates)

	var itineraries []models.Itinerary
	for _, cand := range candidates {
		itineraries = append(itineraries, s.reconstruct(rounds, cand))
	}

	if walkOnly, ok := s.walkOnlyItinerary(departAt); ok {
		itineraries = append(itineraries, walkOnly)
	}

	if req.ArriveBy {
		itineraries = filterByDeadline(itineraries, s.deadline)
	}
	return itineraries, nil
}

// expandStop boards upcoming departures at one stop and relaxes every
// downstream stop of each boarded trip.
func (s *searcher) expandStop(stopID string, prev label, next map[string]label, best map[string]time.Duration, horizon time.Duration) {
	boardAfter := prev.arrival + minTransferSlack
	seenRoutes := make(map[string]bool)

	for _, dep := range s.index.TripsServing(stopID, boardAfter, departuresPerStop) {
		if dep.StopTime.Departure > horizon {
			break
		}
		if seenRoutes[dep.Trip.RouteID] {
			continue
		}

		// Only a boarded departure retires its route for the round. A
		// canceled or filtered trip falls through to the route's next one.
		if !s.boardable(dep.Trip) {
			continue
		}
		seenRoutes[dep.Trip.RouteID] = true

		for _, st := range s.index.RideFrom(dep.Trip.ID, dep.StopTime.StopSequence) {
			current, seen := best[st.StopID]
			if seen && st.Arrival >= current {
				continue
			}
			best[st.StopID] = st.Arrival
			next[st.StopID] = label{
				arrival:   st.Arrival,
				tripID:    dep.Trip.ID,
				boardStop: stopID,
				boardTime: dep.StopTime.Departure,
			}
		}
	}
}

func (s *searcher) boardable(trip models.Trip) bool {
	if s.request.Options.WheelchairAccessibleOnly && !trip.WheelchairAccessible {
		return false
	}
	if s.live.TripCanceled(trip.ID, s.now) {
		return false
	}
	if agencies := s.request.Options.PreferredAgencies; len(agencies) > 0 {
		route, ok := s.index.RouteInfo(trip.RouteID)
		if !ok {
			return false
		}
		allowed := false
		for _, agency := range agencies {
			if route.AgencyID == agency {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

// relaxWalks extends each ride label with walking transfers to nearby
// stops. Walk labels never chain off other walk labels.
func (s *searcher) relaxWalks(next map[string]label, best map[string]time.Duration, maxWalk float64) {
	additions := make(map[string]label)

	for stopID, lab := range next {
		if lab.tripID == "" {
			continue
		}
		from, ok := s.index.StopByID(stopID)
		if !ok {
			continue
		}
		for _, near := range s.index.StopsNear(models.NewLocation(from.Lat, from.Lon), maxWalk) {
			if near.ID == stopID {
				continue
			}
			meters := utils.Haversine(from.Lat, from.Lon, near.Lat, near.Lon)
			arrival := lab.arrival + walkDuration(meters)
			current, seen := best[near.ID]
			if seen && arrival >= current {
				continue
			}
			best[near.ID] = arrival
			additions[near.ID] = label{
				arrival:    arrival,
				fromStop:   stopID,
				walkMeters: meters,
			}
		}
	}

	for stopID, lab := range additions {
		next[stopID] = lab
	}
}

// destinationCandidates collects ride labels within walking range of the
// destination after one round.
func (s *searcher) destinationCandidates(round int, next map[string]label, maxWalk float64) []destCandidate {
	dest := s.request.Destination
	var out []destCandidate
	for stopID, lab := range next {
		if lab.tripID == "" {
			continue
		}
		stop, ok := s.index.StopByID(stopID)
		if !ok {
			continue
		}
		meters := utils.Haversine(stop.Lat, stop.Lon, dest.Lat, dest.Lon)
		if meters > maxWalk {
			continue
		}
		out = append(out, destCandidate{
			round:      round,
			stopID:     stopID,
			arrival:    lab.arrival + walkDuration(meters),
			walkMeters: meters,
		})
	}
	return out
}

// paretoFilter drops candidates dominated on (arrival, transfers). The
// input is ordered by round, so a later candidate survives only by
// arriving strictly earlier than everything with fewer transfers.
func paretoFilter(candidates []destCandidate) []destCandidate {
	bestPerRound := make(map[int]destCandidate)
	var roundsSeen []int
	for _, cand := range candidates {
		current, ok := bestPerRound[cand.round]
		if !ok {
			roundsSeen = append(roundsSeen, cand.round)
		}
		if !ok || cand.arrival < current.arrival {
			bestPerRound[cand.round] = cand
		}
	}
	sort.Ints(roundsSeen)

	var kept []destCandidate
	bestArrival := time.Duration(math.MaxInt64)
	for _, round := range roundsSeen {
		cand := bestPerRound[round]
		if cand.arrival < bestArrival {
			bestArrival = cand.arrival
			kept = append(kept, cand)
		}
	}
	return kept
}

// reconstruct walks the label chain backward and emits legs in order.
func (s *searcher) reconstruct(rounds []map[string]label, cand destCandidate) models.Itinerary {
	var reversed []models.Leg

	stop, _ := s.index.StopByID(cand.stopID)
	alight := models.NewStopLocation(stop.Lat, stop.Lon, stop.ID, stop.Name)
	walkStart := cand.arrival - walkDuration(cand.walkMeters)
	finalWalk := models.NewWalkLeg(alight, s.request.Destination,
		s.toTime(walkStart), s.toTime(cand.arrival), cand.walkMeters)
	finalWalk.Heading = utils.CompassDirection(stop.Lat, stop.Lon, s.request.Destination.Lat, s.request.Destination.Lon)
	reversed = append(reversed, finalWalk)

	stopID := cand.stopID
	round := cand.round
	for {
		lab := rounds[round][stopID]

		if lab.tripID != "" {
			reversed = append(reversed, s.transitLeg(lab, stopID))
			stopID = lab.boardStop
			round--
			continue
		}

		if round == 0 {
			to, _ := s.index.StopByID(stopID)
			toLoc := models.NewStopLocation(to.Lat, to.Lon, to.ID, to.Name)

			// For arriveBy requests the access walk is anchored to the
			// first boarding, minus the transfer slack, so the rider
			// leaves as late as possible.
			end := s.toTime(lab.arrival)
			if s.request.ArriveBy && len(reversed) > 0 {
				if boarding := reversed[len(reversed)-1]; boarding.Mode == models.LegModeTransit {
					end = time.UnixMilli(boarding.StartTime).Add(-minTransferSlack)
				}
			}
			start := end.Add(-walkDuration(lab.walkMeters))

			leg := models.NewWalkLeg(s.request.Origin, toLoc, start, end, lab.walkMeters)
			leg.Heading = utils.CompassDirection(s.request.Origin.Lat, s.request.Origin.Lon, to.Lat, to.Lon)
			reversed = append(reversed, leg)
			break
		}

		// Transfer walk within the same round.
		from, _ := s.index.StopByID(lab.fromStop)
		to, _ := s.index.StopByID(stopID)
		start := lab.arrival - walkDuration(lab.walkMeters)
		leg := models.NewWalkLeg(
			models.NewStopLocation(from.Lat, from.Lon, from.ID, from.Name),
			models.NewStopLocation(to.Lat, to.Lon, to.ID, to.Name),
			s.toTime(start), s.toTime(lab.arrival), lab.walkMeters)
		leg.Heading = utils.CompassDirection(from.Lat, from.Lon, to.Lat, to.Lon)
		reversed = append(reversed, leg)
		stopID = lab.fromStop
	}

	legs := make([]models.Leg, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		legs = append(legs, reversed[i])
	}
	return models.NewItinerary(legs)
}

func (s *searcher) transitLeg(lab label, alightStopID string) models.Leg {
	boardStop, _ := s.index.StopByID(lab.boardStop)
	alightStop, _ := s.index.StopByID(alightStopID)
	trip, _ := s.index.TripByID(lab.tripID)

	var shortName string
	if route, ok := s.index.RouteInfo(trip.RouteID); ok {
		shortName = route.DisplayName()
	}

	leg := models.NewTransitLeg(
		models.NewStopLocation(boardStop.Lat, boardStop.Lon, boardStop.ID, boardStop.Name),
		models.NewStopLocation(alightStop.Lat, alightStop.Lon, alightStop.ID, alightStop.Name),
		s.toTime(lab.boardTime), s.toTime(lab.arrival),
		trip.RouteID, shortName, trip.ID, trip.Headsign)

	score := s.model.ScoreFor(trip.RouteID, s.toTime(lab.boardTime))
	leg.Reliability = score.Reliability
	leg.ExpectedDelayMinutes = score.AverageDelayMinutes

	if update := s.live.UpdateFor(trip.ID, s.now); update != nil {
		arrival := realtime.EffectiveArrival(trip.ID, alightStopID, trip.RouteID, s.toTime(lab.arrival), update, s.now)
		leg.Predicted = arrival.Predicted
		if arrival.Predicted {
			leg.ExpectedDelayMinutes = arrival.DelayMinutes
		}
	}
	return leg
}

func (s *searcher) walkOnlyItinerary(departAt time.Time) (models.Itinerary, bool) {
	req := s.request
	meters := utils.Haversine(req.Origin.Lat, req.Origin.Lon, req.Destination.Lat, req.Destination.Lon)
	if meters > req.Options.MaxWalkingDistanceMeters {
		return models.Itinerary{}, false
	}

	dur := walkDuration(meters)
	if req.ArriveBy {
		// Leave as late as the deadline allows.
		departAt = s.deadline.Add(-dur)
	}

	leg := models.NewWalkLeg(req.Origin, req.Destination, departAt, departAt.Add(dur), meters)
	leg.Heading = utils.CompassDirection(req.Origin.Lat, req.Origin.Lon, req.Destination.Lat, req.Destination.Lon)
	return models.NewItinerary([]models.Leg{leg}), true
}

func (s *searcher) toTime(sinceMidnight time.Duration) time.Time {
	return s.dayStart.Add(sinceMidnight)
}

func filterByDeadline(itineraries []models.Itinerary, deadline time.Time) []models.Itinerary {
	deadlineMs := deadline.UnixMilli()
	var kept []models.Itinerary
	for _, itin := range itineraries {
		if itin.EndTime <= deadlineMs {
			kept = append(kept, itin)
		}
	}
	return kept
}
