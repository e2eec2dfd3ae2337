package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/realtime"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/reliability"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/schedule"
)

type staticScores struct {
	model *reliability.Model
}

func (s staticScores) Current() *reliability.Model { return s.model }

type stubLive struct {
	updates  map[string]realtime.TripUpdate
	canceled map[string]bool
}

func (s *stubLive) UpdateFor(tripID string, _ time.Time) *realtime.TripUpdate {
	update, ok := s.updates[tripID]
	if !ok {
		return nil
	}
	return &update
}

func (s *stubLive) TripCanceled(tripID string, _ time.Time) bool {
	return s.canceled[tripID]
}

// seattleIndex is a small network between downtown and Queen Anne with a
// direct bus and a two-leg alternative through a midtown transfer. The
// midtown stop sits beyond walking range of both endpoints, so reaching
// it takes a bus.
func seattleIndex(t *testing.T) *schedule.Index {
	t.Helper()

	records := &schedule.Records{
		FeedVersion: "2026-03-01",
		ExpiryDate:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Stops: []models.Stop{
			models.NewStop("ds", "", "Downtown Station", "", models.UnknownValue, 47.6062, -122.3321, nil),
			models.NewStop("ms", "", "Midtown Station", "", models.UnknownValue, 47.6062, -122.2974, nil),
			models.NewStop("qs", "", "Queen Anne Station", "", models.UnknownValue, 47.6210, -122.3500, nil),
		},
		Routes: []models.Route{
			models.NewRoute("r40", "st", "40", "Downtown - Queen Anne", "", models.RouteTypeBus, "", ""),
			models.NewRoute("r2", "st", "2", "Downtown - Midtown", "", models.RouteTypeBus, "", ""),
			models.NewRoute("r13", "st", "13", "Midtown - Queen Anne", "", models.RouteTypeBus, "", ""),
		},
		Trips: []models.Trip{
			models.NewTrip("t40a", "r40", "wk", "Queen Anne", 0, true),
			models.NewTrip("t40b", "r40", "wk", "Queen Anne", 0, true),
			models.NewTrip("t2a", "r2", "wk", "Midtown", 0, true),
			models.NewTrip("t13a", "r13", "wk", "Queen Anne", 0, false),
		},
		StopTimes: []models.StopTime{
			// Direct bus, 8:10 to 8:45, slower than transferring at midtown.
			models.NewStopTime("t40a", "ds", 1, 8*time.Hour+10*time.Minute, 8*time.Hour+10*time.Minute),
			models.NewStopTime("t40a", "qs", 2, 8*time.Hour+45*time.Minute, 8*time.Hour+45*time.Minute),
			// Later direct bus, 8:40 to 8:55.
			models.NewStopTime("t40b", "ds", 1, 8*time.Hour+40*time.Minute, 8*time.Hour+40*time.Minute),
			models.NewStopTime("t40b", "qs", 2, 8*time.Hour+55*time.Minute, 8*time.Hour+55*time.Minute),
			// Two-leg alternative through midtown with a 4 minute transfer.
			models.NewStopTime("t2a", "ds", 1, 8*time.Hour+5*time.Minute, 8*time.Hour+5*time.Minute),
			models.NewStopTime("t2a", "ms", 2, 8*time.Hour+15*time.Minute, 8*time.Hour+15*time.Minute),
			models.NewStopTime("t13a", "ms", 1, 8*time.Hour+19*time.Minute, 8*time.Hour+19*time.Minute),
			models.NewStopTime("t13a", "qs", 2, 8*time.Hour+35*time.Minute, 8*time.Hour+35*time.Minute),
		},
	}

	idx, err := records.Build()
	require.NoError(t, err)
	return idx
}

func seattleModel(now time.Time) *reliability.Model {
	return reliability.BuildModel([]reliability.Aggregate{
		{
			RouteID: "r40", Band: reliability.BandMorningRush, Weekend: false,
			SampleCount: 100, OnTimeCount: 45, AverageDelayMins: 8.0,
			NewestSampleTaken: now,
		},
		{
			RouteID: "r2", Band: reliability.BandMorningRush, Weekend: false,
			SampleCount: 100, OnTimeCount: 90, AverageDelayMins: 1.5,
			NewestSampleTaken: now,
		},
		{
			RouteID: "r13", Band: reliability.BandMorningRush, Weekend: false,
			SampleCount: 100, OnTimeCount: 85, AverageDelayMins: 2.0,
			NewestSampleTaken: now,
		},
	}, now)
}

func seattleEngine(t *testing.T, live LiveSource) *Engine {
	t.Helper()
	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	if live == nil {
		live = &stubLive{}
	}
	return NewEngine(schedule.NewProvider(seattleIndex(t)), staticScores{seattleModel(now)}, live)
}

func seattleRequest() models.PlanRequest {
	opts := models.DefaultPlanOptions()
	opts.MaxWalkingDistanceMeters = 2500
	return models.PlanRequest{
		Origin:        models.NewLocation(47.6062, -122.3321),
		Destination:   models.NewLocation(47.6210, -122.3500),
		RequestedTime: time.Date(2026, 3, 2, 7, 50, 0, 0, time.UTC),
		Options:       opts,
	}
}

func TestPlanSeattleScenario(t *testing.T) {
	engine := seattleEngine(t, nil)

	result, err := engine.Plan(context.Background(), seattleRequest())
	require.NoError(t, err)
	require.NotEmpty(t, result.Itineraries)
	assert.Empty(t, result.Reason)

	var sawLowDirectLeg, sawWalkOnly bool
	for _, itin := range result.Itineraries {
		for _, leg := range itin.Legs {
			if leg.RouteID == "r40" {
				assert.Equal(t, models.ReliabilityLow, leg.Reliability)
				sawLowDirectLeg = true
			}
		}
		if itin.TransitTimeSeconds == 0 {
			sawWalkOnly = true
		}
	}
	assert.True(t, sawLowDirectLeg, "direct bus with 0.45 on-time performance must appear with low reliability")
	assert.True(t, sawWalkOnly, "walking-only fallback must appear when destination is within walking distance")
}

func TestPlanLegTimingInvariants(t *testing.T) {
	engine := seattleEngine(t, nil)

	result, err := engine.Plan(context.Background(), seattleRequest())
	require.NoError(t, err)

	for _, itin := range result.Itineraries {
		require.NotEmpty(t, itin.Legs)
		assert.Equal(t, itin.Legs[0].StartTime, itin.StartTime)
		assert.Equal(t, itin.Legs[len(itin.Legs)-1].EndTime, itin.EndTime)
		assert.Equal(t, (itin.EndTime-itin.StartTime)/1000, itin.DurationSeconds)
		for i := 1; i < len(itin.Legs); i++ {
			assert.LessOrEqual(t, itin.Legs[i-1].EndTime, itin.Legs[i].StartTime)
		}
	}
}

func TestPlanRecommendsReliableAlternative(t *testing.T) {
	engine := seattleEngine(t, nil)

	result, err := engine.Plan(context.Background(), seattleRequest())
	require.NoError(t, err)
	require.NotEmpty(t, result.Itineraries)

	top := result.Itineraries[0]
	assert.True(t, top.Recommended)
	assert.Equal(t, 1, top.Rank)
	for _, itin := range result.Itineraries[1:] {
		assert.False(t, itin.Recommended)
	}
}

func TestPlanSkipsCanceledTrips(t *testing.T) {
	live := &stubLive{canceled: map[string]bool{"t40a": true}}
	engine := seattleEngine(t, live)

	result, err := engine.Plan(context.Background(), seattleRequest())
	require.NoError(t, err)

	// The canceled 8:10 run must not hide the 8:40 run on the same route.
	sawLaterRun := false
	for _, itin := range result.Itineraries {
		for _, leg := range itin.Legs {
			assert.NotEqual(t, "t40a", leg.TripID)
			if leg.TripID == "t40b" {
				sawLaterRun = true
			}
		}
	}
	assert.True(t, sawLaterRun, "the next departure on the route must still be offered")
}

func TestPlanAnnotatesLiveDelay(t *testing.T) {
	live := &stubLive{updates: map[string]realtime.TripUpdate{
		"t40a": {TripID: "t40a", RouteID: "r40", DelaySeconds: 240},
	}}
	engine := seattleEngine(t, live)

	result, err := engine.Plan(context.Background(), seattleRequest())
	require.NoError(t, err)
	require.True(t, result.Predicted)

	found := false
	for _, itin := range result.Itineraries {
		for _, leg := range itin.Legs {
			if leg.TripID == "t40a" {
				assert.True(t, leg.Predicted)
				assert.InDelta(t, 4.0, leg.ExpectedDelayMinutes, 1e-9)
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestPlanWheelchairFilter(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.Options.WheelchairAccessibleOnly = true

	result, err := engine.Plan(context.Background(), req)
	require.NoError(t, err)

	// t13a is not accessible, so the midtown transfer option disappears.
	for _, itin := range result.Itineraries {
		for _, leg := range itin.Legs {
			assert.NotEqual(t, "t13a", leg.TripID)
		}
	}
}

func TestPlanPreferredAgencies(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.Options.PreferredAgencies = []string{"other"}

	result, err := engine.Plan(context.Background(), req)
	require.NoError(t, err)
	for _, itin := range result.Itineraries {
		assert.Zero(t, itin.Transfers)
		assert.Equal(t, int64(0), itin.TransitTimeSeconds)
	}
}

func TestPlanArriveBy(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.RequestedTime = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	req.ArriveBy = true

	result, err := engine.Plan(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Itineraries)

	deadline := req.RequestedTime.UnixMilli()
	for _, itin := range result.Itineraries {
		assert.LessOrEqual(t, itin.EndTime, deadline)
	}
}

func TestPlanArriveByLeavesAsLateAsPossible(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.RequestedTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	req.ArriveBy = true

	result, err := engine.Plan(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Itineraries)

	deadline := req.RequestedTime.UnixMilli()
	earliestSensibleStart := req.RequestedTime.Add(-time.Hour).UnixMilli()
	sawWalkOnly := false
	for _, itin := range result.Itineraries {
		assert.LessOrEqual(t, itin.EndTime, deadline)
		// Nobody should be told to leave hours before the first boarding.
		assert.GreaterOrEqual(t, itin.StartTime, earliestSensibleStart)
		if itin.TransitTimeSeconds == 0 {
			sawWalkOnly = true
			assert.Equal(t, deadline, itin.EndTime,
				"a pure walk should be timed to land exactly on the deadline")
		}
	}
	assert.True(t, sawWalkOnly)
}

func TestPlanNoPathFound(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.Options.MaxWalkingDistanceMeters = 800
	req.RequestedTime = time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)

	result, err := engine.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
	assert.Equal(t, models.ReasonNoPathFound, result.Reason)
}

func TestPlanDestinationUnreachableOnFoot(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.Options.MaxWalkingDistanceMeters = 800
	req.Destination = models.NewLocation(47.7000, -122.1000)

	result, err := engine.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Itineraries)
	assert.Equal(t, models.ReasonDestinationUnreachableOnFoot, result.Reason)
}

func TestPlanRejectsInvalidRequest(t *testing.T) {
	engine := seattleEngine(t, nil)

	req := seattleRequest()
	req.Origin = models.NewLocation(95, -122.33)
	req.Options.MaxTransfers = 99

	_, err := engine.Plan(context.Background(), req)
	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.FieldErrors, "originLat")
	assert.Contains(t, invalid.FieldErrors, "maxTransfers")
}

func TestPlanCancelled(t *testing.T) {
	engine := seattleEngine(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Plan(ctx, seattleRequest())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestPlanTransferRiskAnnotated(t *testing.T) {
	engine := seattleEngine(t, nil)

	result, err := engine.Plan(context.Background(), seattleRequest())
	require.NoError(t, err)

	sawTransfer := false
	for _, itin := range result.Itineraries {
		if itin.Transfers == 0 {
			assert.Empty(t, itin.TransferRisks)
			continue
		}
		sawTransfer = true
		require.Len(t, itin.TransferRisks, itin.Transfers)
		for _, risk := range itin.TransferRisks {
			assert.GreaterOrEqual(t, risk.MissedConnectionProbability, 0.0)
			assert.LessOrEqual(t, risk.MissedConnectionProbability, 1.0)
			// The midtown connection has a four minute buffer.
			assert.Equal(t, models.RiskMedium, risk.Risk)
			assert.NotEmpty(t, risk.Recommendation)
		}
	}
	assert.True(t, sawTransfer, "the midtown transfer option must survive the Pareto filter")
}
