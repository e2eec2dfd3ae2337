package models

import "time"

type Trip struct {
	ID                   string `json:"id"`
	RouteID              string `json:"routeId"`
	ServiceID            string `json:"serviceId,omitempty"`
	Headsign             string `json:"headsign,omitempty"`
	DirectionID          int    `json:"directionId"`
	WheelchairAccessible bool   `json:"wheelchairAccessible"`
}

func NewTrip(id, routeID, serviceID, headsign string, directionID int, wheelchairAccessible bool) Trip {
	return Trip{
		ID:                   id,
		RouteID:              routeID,
		ServiceID:            serviceID,
		Headsign:             headsign,
		DirectionID:          directionID,
		WheelchairAccessible: wheelchairAccessible,
	}
}

// StopTime is a single scheduled call of a trip at a stop. Arrival and
// Departure are offsets from local midnight of the service day.
type StopTime struct {
	TripID       string        `json:"tripId"`
	StopID       string        `json:"stopId"`
	StopSequence int           `json:"stopSequence"`
	Arrival      time.Duration `json:"arrivalTime"`
	Departure    time.Duration `json:"departureTime"`
	Headsign     string        `json:"stopHeadsign,omitempty"`
}

func NewStopTime(tripID, stopID string, stopSequence int, arrival, departure time.Duration) StopTime {
	return StopTime{
		TripID:       tripID,
		StopID:       stopID,
		StopSequence: stopSequence,
		Arrival:      arrival,
		Departure:    departure,
	}
}
