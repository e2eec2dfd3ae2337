package models

// RouteType is the GTFS mode enumeration for a route.
type RouteType int

const (
	RouteTypeTram      RouteType = 0
	RouteTypeSubway    RouteType = 1
	RouteTypeRail      RouteType = 2
	RouteTypeBus       RouteType = 3
	RouteTypeFerry     RouteType = 4
	RouteTypeCableCar  RouteType = 5
	RouteTypeGondola   RouteType = 6
	RouteTypeFunicular RouteType = 7
)

// Valid reports whether the route type is one of the fixed enumeration values.
func (t RouteType) Valid() bool {
	return t >= RouteTypeTram && t <= RouteTypeFunicular
}

func (t RouteType) String() string {
	switch t {
	case RouteTypeTram:
		return "tram"
	case RouteTypeSubway:
		return "subway"
	case RouteTypeRail:
		return "rail"
	case RouteTypeBus:
		return "bus"
	case RouteTypeFerry:
		return "ferry"
	case RouteTypeCableCar:
		return "cableCar"
	case RouteTypeGondola:
		return "gondola"
	case RouteTypeFunicular:
		return "funicular"
	default:
		return UnknownValue
	}
}

type Route struct {
	ID          string    `json:"id"`
	AgencyID    string    `json:"agencyId"`
	ShortName   string    `json:"shortName"`
	LongName    string    `json:"longName"`
	Description string    `json:"description,omitempty"`
	Type        RouteType `json:"type"`
	Color       string    `json:"color,omitempty"`
	TextColor   string    `json:"textColor,omitempty"`
}

func NewRoute(id, agencyID, shortName, longName, description string, routeType RouteType, color, textColor string) Route {
	return Route{
		ID:          id,
		AgencyID:    agencyID,
		ShortName:   shortName,
		LongName:    longName,
		Description: description,
		Type:        routeType,
		Color:       color,
		TextColor:   textColor,
	}
}

// DisplayName prefers the short name, falling back to the long name.
func (r Route) DisplayName() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.LongName
}
