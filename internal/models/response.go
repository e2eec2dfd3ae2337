package models

import "time"

// ResponseModel Base response structure that can be reused
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// ResponseCurrentTime returns the current time in epoch milliseconds.
func ResponseCurrentTime() int64 {
	return time.Now().UnixMilli()
}

// NewEntryResponse wraps a single entry in the standard response envelope.
func NewEntryResponse(entry interface{}) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(),
		Data:        map[string]interface{}{"entry": entry},
		Text:        "OK",
		Version:     2,
	}
}

// NewStopsResponse wraps a stop search result in the standard response
// envelope.
func NewStopsResponse(stops StopsResponse) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(),
		Data:        stops,
		Text:        "OK",
		Version:     2,
	}
}

// Reason codes for an empty planning result. An empty result is a normal
// outcome, never an error.
const (
	ReasonNoPathFound                  = "NoPathFound"
	ReasonDestinationUnreachableOnFoot = "DestinationUnreachableOnFoot"
)

// PlanResult is the planning response payload: a bounded, ranked set of
// itineraries, or an empty set with a reason code.
type PlanResult struct {
	Itineraries []Itinerary `json:"itineraries"`
	Reason      string      `json:"reason,omitempty"`
	Predicted   bool        `json:"predicted"`
}
