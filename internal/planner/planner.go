package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/realtime"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/reliability"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/schedule"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/utils"
)

// ErrCancelled is returned when the request context fires mid-plan.
// Partial results are discarded, never returned.
var ErrCancelled = errors.New("plan cancelled")

// InvalidRequestError rejects a malformed request before any search work.
type InvalidRequestError struct {
	FieldErrors map[string][]string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid plan request: %d invalid fields", len(e.FieldErrors))
}

// ScheduleSource yields the current immutable schedule snapshot.
type ScheduleSource interface {
	Current() *schedule.Index
}

// ReliabilitySource yields the current immutable reliability model.
type ReliabilitySource interface {
	Current() *reliability.Model
}

// LiveSource answers realtime questions, degrading to nothing when stale.
type LiveSource interface {
	UpdateFor(tripID string, now time.Time) *realtime.TripUpdate
	TripCanceled(tripID string, now time.Time) bool
}

// Engine plans trips over one schedule snapshot per request. It holds no
// per-request state; concurrent Plan calls are independent.
type Engine struct {
	schedules ScheduleSource
	scores    ReliabilitySource
	live      LiveSource
}

// NewEngine wires a planning engine from its three data sources.
func NewEngine(schedules ScheduleSource, scores ReliabilitySource, live LiveSource) *Engine {
	return &Engine{schedules: schedules, scores: scores, live: live}
}

// Plan validates the request, searches for candidate itineraries, assesses
// transfer risk and ranks the result. An empty result with a reason code is
// a normal outcome; only invalid requests and cancellation are errors.
func (e *Engine) Plan(ctx context.Context, req models.PlanRequest) (*models.PlanResult, error) {
	if fieldErrors := validateRequest(req); len(fieldErrors) > 0 {
		return nil, &InvalidRequestError{FieldErrors: fieldErrors}
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	idx := e.schedules.Current()
	model := e.scores.Current()

	search := &searcher{
		index:   idx,
		model:   model,
		live:    e.live,
		request: req,
	}
	candidates, err := search.run(ctx)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return &models.PlanResult{
			Itineraries: []models.Itinerary{},
			Reason:      emptyReason(idx, req),
		}, nil
	}

	for i := range candidates {
		AssessTransferRisks(&candidates[i], model)
	}
	ranked := Rank(candidates, req.Options.TripMode)

	result := &models.PlanResult{Itineraries: ranked}
	for _, itin := range ranked {
		for _, leg := range itin.Legs {
			if leg.Predicted {
				result.Predicted = true
			}
		}
	}
	return result, nil
}

// emptyReason distinguishes "nothing ran in time" from "you cannot even
// reach the network on foot from here".
func emptyReason(idx *schedule.Index, req models.PlanRequest) string {
	maxWalk := req.Options.MaxWalkingDistanceMeters
	directWalk := utils.Haversine(req.Origin.Lat, req.Origin.Lon, req.Destination.Lat, req.Destination.Lon)
	if directWalk <= maxWalk {
		return models.ReasonNoPathFound
	}

	originStops := idx.StopsNear(req.Origin, maxWalk)
	destStops := idx.StopsNear(req.Destination, maxWalk)
	if len(originStops) == 0 || len(destStops) == 0 {
		return models.ReasonDestinationUnreachableOnFoot
	}
	return models.ReasonNoPathFound
}

func validateRequest(req models.PlanRequest) map[string][]string {
	fieldErrors := make(map[string][]string)

	utils.ValidateCoordinatePair(req.Origin.Lat, req.Origin.Lon, "origin", fieldErrors)
	utils.ValidateCoordinatePair(req.Destination.Lat, req.Destination.Lon, "destination", fieldErrors)

	if err := utils.ValidateWalkingDistance(req.Options.MaxWalkingDistanceMeters); err != nil {
		fieldErrors["maxWalkingDistance"] = append(fieldErrors["maxWalkingDistance"], err.Error())
	}
	if err := utils.ValidateTransferCount(req.Options.MaxTransfers); err != nil {
		fieldErrors["maxTransfers"] = append(fieldErrors["maxTransfers"], err.Error())
	}
	if !models.ValidTripMode(req.Options.TripMode) {
		fieldErrors["mode"] = append(fieldErrors["mode"], "must be fastest, safest or balanced")
	}
	if req.RequestedTime.IsZero() {
		fieldErrors["time"] = append(fieldErrors["time"], "requested time is required")
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}
