package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/app"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/config"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/metrics"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/planner"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/realtime"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/reliability"
	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/schedule"
)

type testAggregates struct{}

func (testAggregates) LoadAggregates(_ context.Context, now time.Time) ([]reliability.Aggregate, error) {
	return []reliability.Aggregate{
		{
			RouteID: "r40", Band: reliability.BandMorningRush, Weekend: false,
			SampleCount: 100, OnTimeCount: 45, AverageDelayMins: 8.0,
			NewestSampleTaken: now,
		},
	}, nil
}

func testIndex(t *testing.T) *schedule.Index {
	t.Helper()
	records := &schedule.Records{
		FeedVersion: "2026-03-01",
		ExpiryDate:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Stops: []models.Stop{
			models.NewStop("ds", "", "Downtown Station", "", models.UnknownValue, 47.6062, -122.3321, nil),
			models.NewStop("qs", "", "Queen Anne Station", "", models.UnknownValue, 47.6210, -122.3500, nil),
		},
		Routes: []models.Route{
			models.NewRoute("r40", "st", "40", "Downtown - Queen Anne", "", models.RouteTypeBus, "", ""),
		},
		Trips: []models.Trip{
			models.NewTrip("t40a", "r40", "wk", "Queen Anne", 0, true),
		},
		StopTimes: []models.StopTime{
			models.NewStopTime("t40a", "ds", 1, 8*time.Hour+10*time.Minute, 8*time.Hour+10*time.Minute),
			models.NewStopTime("t40a", "qs", 2, 8*time.Hour+25*time.Minute, 8*time.Hour+25*time.Minute),
		},
	}
	idx, err := records.Build()
	require.NoError(t, err)
	return idx
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.APIKeys = []string{"test"}

	schedules := schedule.NewProvider(testIndex(t))
	reliabilityManager := reliability.NewManager(context.Background(), testAggregates{}, time.Hour)
	realtimeManager := realtime.NewManager(context.Background(), realtime.NewFetcher("", "", nil, time.Second))
	merger := realtime.NewMerger(realtimeManager)

	application := &app.Application{
		Config:      cfg,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Schedules:   schedules,
		Reliability: reliabilityManager,
		Realtime:    realtimeManager,
		Merger:      merger,
		Planner:     planner.NewEngine(schedules, reliabilityManager, merger),
		Metrics:     metrics.NewCollector(),
	}
	t.Cleanup(application.Shutdown)

	server := httptest.NewServer(NewRestAPI(application).Handler())
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string) (int, models.ResponseModel) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestMissingAPIKeyRejected(t *testing.T) {
	server := testServer(t)

	status, body := getJSON(t, server.URL+"/api/where/current-time.json")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "permission denied", body.Text)
}

func TestCurrentTimeHandler(t *testing.T) {
	server := testServer(t)

	status, body := getJSON(t, server.URL+"/api/where/current-time.json?key=test")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, 2, body.Version)

	data := body.Data.(map[string]interface{})
	entry := data["entry"].(map[string]interface{})
	assert.NotZero(t, entry["time"])
	assert.NotEmpty(t, entry["readableTime"])
}

func TestPlanHandler(t *testing.T) {
	server := testServer(t)

	requested := time.Date(2026, 3, 2, 7, 50, 0, 0, time.UTC).UnixMilli()
	url := server.URL + "/api/where/plan.json?key=test" +
		"&fromLat=47.6062&fromLon=-122.3321&toLat=47.6210&toLon=-122.3500" +
		"&maxWalkingDistance=2500&time=" + itoa(requested)

	status, body := getJSON(t, url)
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	entry := data["entry"].(map[string]interface{})
	itineraries := entry["itineraries"].([]interface{})
	require.NotEmpty(t, itineraries)

	top := itineraries[0].(map[string]interface{})
	assert.Equal(t, true, top["recommended"])
	assert.NotEmpty(t, top["legs"])
}

func TestPlanHandlerReportsNoPath(t *testing.T) {
	server := testServer(t)

	requested := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC).UnixMilli()
	url := server.URL + "/api/where/plan.json?key=test" +
		"&fromLat=47.6062&fromLon=-122.3321&toLat=47.6210&toLon=-122.3500" +
		"&time=" + itoa(requested)

	status, body := getJSON(t, url)
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	entry := data["entry"].(map[string]interface{})
	assert.Equal(t, models.ReasonNoPathFound, entry["reason"])
	assert.Empty(t, entry["itineraries"])
}

func TestPlanHandlerValidation(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/where/plan.json?key=test&fromLat=abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.FieldErrors, "fromLat")
}

func TestPlanHandlerRequiresCoordinates(t *testing.T) {
	server := testServer(t)

	// Leaving the coordinates off entirely must not plan from (0,0).
	resp, err := http.Get(server.URL + "/api/where/plan.json?key=test")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	for _, key := range []string{"fromLat", "fromLon", "toLat", "toLon"} {
		assert.Contains(t, body.FieldErrors, key)
	}
}

func TestStopsForLocationHandler(t *testing.T) {
	server := testServer(t)

	status, body := getJSON(t, server.URL+"/api/where/stops-for-location.json?key=test&lat=47.6062&lon=-122.3321&radius=300")
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	list := data["list"].([]interface{})
	require.Len(t, list, 1)
	stop := list[0].(map[string]interface{})
	assert.Equal(t, "ds", stop["id"])
	assert.Equal(t, false, data["outOfRange"])
}

func TestStopsForLocationHandlerOutOfRange(t *testing.T) {
	server := testServer(t)

	// Kansas is nowhere near the feed's coverage area.
	status, body := getJSON(t, server.URL+"/api/where/stops-for-location.json?key=test&lat=39.0&lon=-98.0")
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	assert.Empty(t, data["list"])
	assert.Equal(t, true, data["outOfRange"])
}

func TestStopsForLocationHandlerValidation(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get(server.URL + "/api/where/stops-for-location.json?key=test&lat=95&lon=-122.33")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStopHandler(t *testing.T) {
	server := testServer(t)

	status, body := getJSON(t, server.URL+"/api/where/stop/ds?key=test")
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	entry := data["entry"].(map[string]interface{})
	stop := entry["stop"].(map[string]interface{})
	assert.Equal(t, "Downtown Station", stop["name"])

	// The board is ordered by effective arrival time.
	arrivals, _ := entry["arrivals"].([]interface{})
	var prev float64
	for _, raw := range arrivals {
		arrival := raw.(map[string]interface{})
		at := arrival["predictedArrivalTime"].(float64)
		assert.GreaterOrEqual(t, at, prev)
		prev = at
	}
}

func TestStopHandlerNotFound(t *testing.T) {
	server := testServer(t)

	status, _ := getJSON(t, server.URL+"/api/where/stop/ghost?key=test")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouteHandler(t *testing.T) {
	server := testServer(t)

	status, body := getJSON(t, server.URL+"/api/where/route/r40?key=test")
	require.Equal(t, http.StatusOK, status)

	data := body.Data.(map[string]interface{})
	entry := data["entry"].(map[string]interface{})
	route := entry["route"].(map[string]interface{})
	assert.Equal(t, "40", route["shortName"])

	score := entry["reliability"].(map[string]interface{})
	assert.Equal(t, "r40", score["routeId"])
}

func TestRouteHandlerNotFound(t *testing.T) {
	server := testServer(t)

	status, _ := getJSON(t, server.URL+"/api/where/route/ghost?key=test")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsEndpoint(t *testing.T) {
	server := testServer(t)

	// Generate one plan so the counters have something to show.
	requested := time.Date(2026, 3, 2, 7, 50, 0, 0, time.UTC).UnixMilli()
	_, _ = getJSON(t, server.URL+"/api/where/plan.json?key=test&fromLat=47.6062&fromLon=-122.3321&toLat=47.6210&toLon=-122.3500&maxWalkingDistance=2500&time="+itoa(requested))

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "wayfare_plans_total"))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
