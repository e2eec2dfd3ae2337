package models

// Location is a coordinate pair with an optional resolved stop identity.
// It is used both as planning input and as a leg endpoint.
type Location struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	StopID    string  `json:"stopId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

func NewLocation(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

func NewStopLocation(lat, lon float64, stopID, name string) Location {
	return Location{Lat: lat, Lon: lon, StopID: stopID, Name: name}
}
