package models

type Stop struct {
	ID                 string   `json:"id"`
	Code               string   `json:"code,omitempty"`
	Name               string   `json:"name"`
	Lat                float64  `json:"lat"`
	Lon                float64  `json:"lon"`
	RouteIDs           []string `json:"routeIds"`
	ParentStation      string   `json:"parent,omitempty"`
	WheelchairBoarding string   `json:"wheelchairBoarding"`
}

func NewStop(id, code, name, parentStation, wheelchairBoarding string, lat, lon float64, routeIDs []string) Stop {
	return Stop{
		ID:                 id,
		Code:               code,
		Name:               name,
		Lat:                lat,
		Lon:                lon,
		RouteIDs:           routeIDs,
		ParentStation:      parentStation,
		WheelchairBoarding: wheelchairBoarding,
	}
}

type StopsResponse struct {
	List       []Stop `json:"list"`
	OutOfRange bool   `json:"outOfRange"`
}
