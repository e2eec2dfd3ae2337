package models

import "time"

// TripMode adjusts how the ranker weighs duration against reliability and
// transfer risk.
type TripMode string

const (
	TripModeFastest  TripMode = "fastest"
	TripModeSafest   TripMode = "safest"
	TripModeBalanced TripMode = "balanced"
)

// ValidTripMode reports whether the mode is a member of the closed set.
func ValidTripMode(m TripMode) bool {
	switch m {
	case TripModeFastest, TripModeSafest, TripModeBalanced:
		return true
	default:
		return false
	}
}

// PlanOptions are the per-request tuning knobs for a planning request.
type PlanOptions struct {
	MaxWalkingDistanceMeters float64  `json:"maxWalkingDistance"`
	MaxTransfers             int      `json:"maxTransfers"`
	WheelchairAccessibleOnly bool     `json:"wheelchairAccessibleOnly"`
	PreferredAgencies        []string `json:"preferredAgencies,omitempty"`
	TripMode                 TripMode `json:"defaultTripMode"`
}

// DefaultPlanOptions returns the documented option defaults.
func DefaultPlanOptions() PlanOptions {
	return PlanOptions{
		MaxWalkingDistanceMeters: 800,
		MaxTransfers:             4,
		TripMode:                 TripModeBalanced,
	}
}

// PlanRequest is one itinerary planning request.
type PlanRequest struct {
	Origin        Location
	Destination   Location
	RequestedTime time.Time
	ArriveBy      bool
	Options       PlanOptions
}
