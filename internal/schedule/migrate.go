package schedule

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// SnapshotVersion is the current on-disk snapshot record shape.
const SnapshotVersion = 3

// Records is one full replacement set of schedule records for one feed
// version. The engine never accepts incremental patches.
type Records struct {
	FeedVersion string            `json:"feedVersion"`
	ExpiryDate  time.Time         `json:"expiryDate"`
	Stops       []models.Stop     `json:"stops"`
	Routes      []models.Route    `json:"routes"`
	Trips       []models.Trip     `json:"trips"`
	StopTimes   []models.StopTime `json:"stopTimes"`
}

// Build validates the records and assembles an immutable Index.
func (r *Records) Build() (*Index, error) {
	return Build(r.FeedVersion, r.ExpiryDate, r.Stops, r.Routes, r.Trips, r.StopTimes)
}

// snapshot is the serialized cache envelope around Records.
type snapshot struct {
	Version int `json:"version"`
	Records
}

// EncodeSnapshot serializes records into the current snapshot shape.
func EncodeSnapshot(records *Records) ([]byte, error) {
	return json.Marshal(snapshot{Version: SnapshotVersion, Records: *records})
}

// Older snapshot shapes. Each version is a concrete, fully-typed record
// shape; upgrades are pure transforms between adjacent shapes applied in
// sequence, never edits of an untyped blob.

type stopV1 struct {
	ID       string   `json:"id"`
	Code     string   `json:"code,omitempty"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	RouteIDs []string `json:"routeIds"`
}

type tripV1 struct {
	ID          string `json:"id"`
	RouteID     string `json:"routeId"`
	ServiceID   string `json:"serviceId,omitempty"`
	Headsign    string `json:"headsign,omitempty"`
	DirectionID int    `json:"directionId"`
}

type snapshotV1 struct {
	Version     int               `json:"version"`
	FeedVersion string            `json:"feedVersion"`
	ExpiryDate  time.Time         `json:"expiryDate"`
	Stops       []stopV1          `json:"stops"`
	Routes      []models.Route    `json:"routes"`
	Trips       []tripV1          `json:"trips"`
	StopTimes   []models.StopTime `json:"stopTimes"`
}

type stopV2 struct {
	stopV1
	ParentStation string `json:"parent,omitempty"`
}

type snapshotV2 struct {
	Version     int               `json:"version"`
	FeedVersion string            `json:"feedVersion"`
	ExpiryDate  time.Time         `json:"expiryDate"`
	Stops       []stopV2          `json:"stops"`
	Routes      []models.Route    `json:"routes"`
	Trips       []tripV1          `json:"trips"`
	StopTimes   []models.StopTime `json:"stopTimes"`
}

// upgrades maps a snapshot version to the transform producing the next one.
var upgrades = map[int]func([]byte) ([]byte, error){
	1: upgradeV1toV2,
	2: upgradeV2toV3,
}

// upgradeV1toV2 introduces parent stations; old records have none.
func upgradeV1toV2(data []byte) ([]byte, error) {
	var old snapshotV1
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("decoding v1 snapshot: %w", err)
	}

	next := snapshotV2{
		Version:     2,
		FeedVersion: old.FeedVersion,
		ExpiryDate:  old.ExpiryDate,
		Routes:      old.Routes,
		Trips:       old.Trips,
		StopTimes:   old.StopTimes,
	}
	next.Stops = make([]stopV2, len(old.Stops))
	for i, s := range old.Stops {
		next.Stops[i] = stopV2{stopV1: s}
	}
	return json.Marshal(next)
}

// upgradeV2toV3 introduces accessibility fields, defaulting to unknown.
func upgradeV2toV3(data []byte) ([]byte, error) {
	var old snapshotV2
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, fmt.Errorf("decoding v2 snapshot: %w", err)
	}

	next := snapshot{Version: SnapshotVersion}
	next.FeedVersion = old.FeedVersion
	next.ExpiryDate = old.ExpiryDate
	next.Routes = old.Routes
	next.StopTimes = old.StopTimes

	next.Stops = make([]models.Stop, len(old.Stops))
	for i, s := range old.Stops {
		next.Stops[i] = models.Stop{
			ID:                 s.ID,
			Code:               s.Code,
			Name:               s.Name,
			Lat:                s.Lat,
			Lon:                s.Lon,
			RouteIDs:           s.RouteIDs,
			ParentStation:      s.ParentStation,
			WheelchairBoarding: models.UnknownValue,
		}
	}

	next.Trips = make([]models.Trip, len(old.Trips))
	for i, t := range old.Trips {
		next.Trips[i] = models.Trip{
			ID:          t.ID,
			RouteID:     t.RouteID,
			ServiceID:   t.ServiceID,
			Headsign:    t.Headsign,
			DirectionID: t.DirectionID,
		}
	}
	return json.Marshal(next)
}

// DecodeSnapshot decodes a serialized snapshot of any supported version,
// applying the upgrade chain until the records reach the current shape.
func DecodeSnapshot(data []byte) (*Records, error) {
	var peek struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("decoding snapshot header: %w", err)
	}
	if peek.Version < 1 || peek.Version > SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", peek.Version)
	}

	for version := peek.Version; version < SnapshotVersion; version++ {
		upgrade, ok := upgrades[version]
		if !ok {
			return nil, fmt.Errorf("no upgrade path from snapshot version %d", version)
		}
		upgraded, err := upgrade(data)
		if err != nil {
			return nil, err
		}
		data = upgraded
	}

	var current snapshot
	if err := json.Unmarshal(data, &current); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	records := current.Records
	return &records, nil
}
