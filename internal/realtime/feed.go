package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamespfennell/gtfs"
	gtfsrt "github.com/jamespfennell/gtfs/proto"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/logging"
)

// StopPrediction is a live arrival and departure prediction at one stop.
type StopPrediction struct {
	ArrivalTime   time.Time
	DepartureTime time.Time
	Skipped       bool
}

// TripUpdate is the decoded live state of one trip.
type TripUpdate struct {
	TripID       string
	RouteID      string
	Canceled     bool
	DelaySeconds int32
	Stops        map[string]StopPrediction
}

// Alert is a decoded service alert scoped to routes and stops.
type Alert struct {
	ID       string
	RouteIDs []string
	StopIDs  []string
	Header   string
	Text     string
	Effect   string
}

// Fetcher downloads and decodes GTFS-RT feeds.
type Fetcher struct {
	tripUpdatesURL string
	alertsURL      string
	headers        map[string]string
	client         *http.Client
}

// NewFetcher builds a fetcher with a bounded per-request timeout. Either
// URL may be empty, in which case the matching fetch returns nothing.
func NewFetcher(tripUpdatesURL, alertsURL string, headers map[string]string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		tripUpdatesURL: tripUpdatesURL,
		alertsURL:      alertsURL,
		headers:        headers,
		client:         &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether any live feed is configured.
func (f *Fetcher) Enabled() bool {
	return f.tripUpdatesURL != "" || f.alertsURL != ""
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) (*gtfs.Realtime, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range f.headers {
		req.Header.Add(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "realtime_fetcher")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("realtime feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	feed, err := gtfs.ParseRealtime(data, &gtfs.ParseRealtimeOptions{})
	if err != nil {
		return nil, fmt.Errorf("decoding realtime feed: %w", err)
	}
	return feed, nil
}

// FetchTripUpdates downloads and decodes the trip update feed.
func (f *Fetcher) FetchTripUpdates(ctx context.Context) (map[string]TripUpdate, error) {
	if f.tripUpdatesURL == "" {
		return nil, nil
	}
	feed, err := f.fetchFeed(ctx, f.tripUpdatesURL)
	if err != nil {
		return nil, err
	}
	return DecodeTripUpdates(feed), nil
}

// FetchAlerts downloads and decodes the service alert feed.
func (f *Fetcher) FetchAlerts(ctx context.Context) ([]Alert, error) {
	if f.alertsURL == "" {
		return nil, nil
	}
	feed, err := f.fetchFeed(ctx, f.alertsURL)
	if err != nil {
		return nil, err
	}
	return DecodeAlerts(feed), nil
}

// DecodeTripUpdates flattens a parsed feed into per-trip updates.
func DecodeTripUpdates(feed *gtfs.Realtime) map[string]TripUpdate {
	updates := make(map[string]TripUpdate)

	for _, trip := range feed.Trips {
		if !trip.IsEntityInMessage || trip.ID.ID == "" {
			continue
		}

		update := TripUpdate{
			TripID:   trip.ID.ID,
			RouteID:  trip.ID.RouteID,
			Canceled: trip.ID.ScheduleRelationship == gtfsrt.TripDescriptor_CANCELED,
			Stops:    make(map[string]StopPrediction),
		}

		for _, stu := range trip.StopTimeUpdates {
			if stu.StopID == nil {
				continue
			}
			prediction := StopPrediction{
				Skipped: stu.ScheduleRelationship == gtfsrt.TripUpdate_StopTimeUpdate_SKIPPED,
			}
			if arrival := stu.GetArrival(); arrival.Time != nil {
				prediction.ArrivalTime = *arrival.Time
			}
			if departure := stu.GetDeparture(); departure.Time != nil {
				prediction.DepartureTime = *departure.Time
			}
			update.Stops[*stu.StopID] = prediction

			if update.DelaySeconds == 0 {
				update.DelaySeconds = eventDelaySeconds(stu)
			}
		}

		updates[update.TripID] = update
	}
	return updates
}

// eventDelaySeconds pulls a trip-wide delay estimate out of one stop time
// update, preferring the arrival event.
func eventDelaySeconds(stu gtfs.StopTimeUpdate) int32 {
	if arrival := stu.GetArrival(); arrival.Delay != nil {
		return int32(arrival.Delay.Seconds())
	}
	if departure := stu.GetDeparture(); departure.Delay != nil {
		return int32(departure.Delay.Seconds())
	}
	return 0
}

// DecodeAlerts flattens a parsed feed into service alerts.
func DecodeAlerts(feed *gtfs.Realtime) []Alert {
	var alerts []Alert

	for _, raw := range feed.Alerts {
		alert := Alert{
			ID:     raw.ID,
			Effect: raw.Effect.String(),
		}
		for _, informed := range raw.InformedEntities {
			if informed.RouteID != nil {
				alert.RouteIDs = append(alert.RouteIDs, *informed.RouteID)
			}
			if informed.StopID != nil {
				alert.StopIDs = append(alert.StopIDs, *informed.StopID)
			}
		}
		if len(raw.Header) > 0 {
			alert.Header = raw.Header[0].Text
		}
		if len(raw.Description) > 0 {
			alert.Text = raw.Description[0].Text
		}
		alerts = append(alerts, alert)
	}
	return alerts
}
