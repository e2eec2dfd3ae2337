package schedule

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// IsLocalSource reports whether a feed source is a filesystem path rather
// than a URL.
func IsLocalSource(source string) bool {
	return !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://")
}

func rawFeedData(source string, isLocalFile bool) ([]byte, error) {
	var b []byte
	var err error

	if isLocalFile {
		b, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
	} else {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("error downloading GTFS data: %w", err)
		}
		defer resp.Body.Close() // nolint

		b, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading GTFS data: %w", err)
		}
	}
	return b, nil
}

// LoadFeed loads and parses a static GTFS feed from either a URL or a local
// file, then builds an Index for the given version token.
func LoadFeed(source, version string, expiresAt time.Time) (*Index, error) {
	records, err := LoadFeedRecords(source, version, expiresAt)
	if err != nil {
		return nil, err
	}
	return records.Build()
}

// LoadFeedRecords loads a static GTFS feed and normalizes it into schedule
// records without building the index.
func LoadFeedRecords(source, version string, expiresAt time.Time) (*Records, error) {
	b, err := rawFeedData(source, IsLocalSource(source))
	if err != nil {
		return nil, err
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	return RecordsFromStatic(staticData, version, expiresAt), nil
}

// FromStatic converts a parsed GTFS feed into schedule records and builds
// the index.
func FromStatic(staticData *gtfs.Static, version string, expiresAt time.Time) (*Index, error) {
	return RecordsFromStatic(staticData, version, expiresAt).Build()
}

// RecordsFromStatic normalizes a parsed GTFS feed into one replacement set
// of schedule records.
func RecordsFromStatic(staticData *gtfs.Static, version string, expiresAt time.Time) *Records {
	stops := make([]models.Stop, 0, len(staticData.Stops))
	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		parent := ""
		if s.Parent != nil {
			parent = s.Parent.Id
		}
		stops = append(stops, models.NewStop(
			s.Id,
			s.Code,
			s.Name,
			parent,
			mapWheelchairBoarding(s.WheelchairBoarding),
			*s.Latitude,
			*s.Longitude,
			nil,
		))
	}

	routes := make([]models.Route, 0, len(staticData.Routes))
	for _, r := range staticData.Routes {
		agencyID := ""
		if r.Agency != nil {
			agencyID = r.Agency.Id
		}
		routes = append(routes, models.NewRoute(
			r.Id,
			agencyID,
			r.ShortName,
			r.LongName,
			r.Description,
			models.RouteType(int(r.Type)),
			r.Color,
			r.TextColor,
		))
	}

	trips := make([]models.Trip, 0, len(staticData.Trips))
	var stopTimes []models.StopTime
	for _, t := range staticData.Trips {
		routeID := ""
		serviceID := ""
		if t.Route != nil {
			routeID = t.Route.Id
		}
		if t.Service != nil {
			serviceID = t.Service.Id
		}
		direction := 0
		if t.DirectionId == 1 {
			direction = 1
		}
		accessible := t.WheelchairAccessible == gtfs.WheelchairBoarding_Possible

		trips = append(trips, models.NewTrip(t.ID, routeID, serviceID, t.Headsign, direction, accessible))

		for _, st := range t.StopTimes {
			if st.Stop == nil || st.Stop.Latitude == nil || st.Stop.Longitude == nil {
				continue
			}
			record := models.NewStopTime(t.ID, st.Stop.Id, st.StopSequence, st.ArrivalTime, st.DepartureTime)
			record.Headsign = st.Headsign
			stopTimes = append(stopTimes, record)
		}
	}

	return &Records{
		FeedVersion: version,
		ExpiryDate:  expiresAt,
		Stops:       stops,
		Routes:      routes,
		Trips:       trips,
		StopTimes:   stopTimes,
	}
}

func mapWheelchairBoarding(wb gtfs.WheelchairBoarding) string {
	switch wb {
	case gtfs.WheelchairBoarding_Possible:
		return "ACCESSIBLE"
	case gtfs.WheelchairBoarding_NotPossible:
		return "NOT_ACCESSIBLE"
	default:
		return models.UnknownValue
	}
}
