package models

import (
	"math"
	"time"
)

// Confidence grades how much trust to put in an arrival time.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Arrival is the effective arrival for one (trip, stop) pair after merging
// the static schedule with any live prediction. When Predicted is false the
// predicted time mirrors the schedule and confidence is the lowest tier.
type Arrival struct {
	TripID               string     `json:"tripId"`
	StopID               string     `json:"stopId"`
	RouteID              string     `json:"routeId,omitempty"`
	ScheduledArrivalTime int64      `json:"scheduledArrivalTime"`
	PredictedArrivalTime int64      `json:"predictedArrivalTime"`
	Predicted            bool       `json:"predicted"`
	DelayMinutes         float64    `json:"delayMinutes"`
	MinutesUntilArrival  int        `json:"minutesUntilArrival"`
	Confidence           Confidence `json:"confidence"`
}

// NewPredictedArrival builds an Arrival backed by a live prediction.
func NewPredictedArrival(tripID, stopID, routeID string, scheduled, predicted, now time.Time) Arrival {
	return Arrival{
		TripID:               tripID,
		StopID:               stopID,
		RouteID:              routeID,
		ScheduledArrivalTime: scheduled.UnixMilli(),
		PredictedArrivalTime: predicted.UnixMilli(),
		Predicted:            true,
		DelayMinutes:         predicted.Sub(scheduled).Minutes(),
		MinutesUntilArrival:  minutesUntil(predicted, now),
		Confidence:           ConfidenceHigh,
	}
}

// NewScheduledArrival builds an Arrival from the schedule alone. Absence of
// live data is a first-class state, not an error.
func NewScheduledArrival(tripID, stopID, routeID string, scheduled, now time.Time) Arrival {
	return Arrival{
		TripID:               tripID,
		StopID:               stopID,
		RouteID:              routeID,
		ScheduledArrivalTime: scheduled.UnixMilli(),
		PredictedArrivalTime: scheduled.UnixMilli(),
		Predicted:            false,
		DelayMinutes:         0,
		MinutesUntilArrival:  minutesUntil(scheduled, now),
		Confidence:           ConfidenceLow,
	}
}

// EffectiveTime returns the best known arrival time.
func (a Arrival) EffectiveTime() time.Time {
	return time.UnixMilli(a.PredictedArrivalTime)
}

func minutesUntil(t, now time.Time) int {
	m := int(math.Round(t.Sub(now).Minutes()))
	if m < 0 {
		return 0
	}
	return m
}
