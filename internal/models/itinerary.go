package models

import "time"

// LegMode is the closed set of leg kinds. Consumers are expected to switch
// exhaustively; adding a mode requires updating every switch.
type LegMode string

const (
	LegModeWalk    LegMode = "walk"
	LegModeTransit LegMode = "transit"
)

// Leg is one uninterrupted segment of an itinerary: one walk, or one ride on
// one vehicle. Times are epoch milliseconds.
type Leg struct {
	Mode                 LegMode     `json:"mode"`
	From                 Location    `json:"from"`
	To                   Location    `json:"to"`
	StartTime            int64       `json:"startTime"`
	EndTime              int64       `json:"endTime"`
	DistanceMeters       float64     `json:"distance,omitempty"`
	Heading              string      `json:"heading,omitempty"`
	RouteID              string      `json:"routeId,omitempty"`
	RouteShortName       string      `json:"routeShortName,omitempty"`
	TripID               string      `json:"tripId,omitempty"`
	Headsign             string      `json:"headsign,omitempty"`
	Reliability          Reliability `json:"reliability,omitempty"`
	ExpectedDelayMinutes float64     `json:"expectedDelayMinutes,omitempty"`
	Predicted            bool        `json:"predicted,omitempty"`
}

func NewWalkLeg(from, to Location, start, end time.Time, distanceMeters float64) Leg {
	return Leg{
		Mode:           LegModeWalk,
		From:           from,
		To:             to,
		StartTime:      start.UnixMilli(),
		EndTime:        end.UnixMilli(),
		DistanceMeters: distanceMeters,
	}
}

func NewTransitLeg(from, to Location, start, end time.Time, routeID, routeShortName, tripID, headsign string) Leg {
	return Leg{
		Mode:           LegModeTransit,
		From:           from,
		To:             to,
		StartTime:      start.UnixMilli(),
		EndTime:        end.UnixMilli(),
		RouteID:        routeID,
		RouteShortName: routeShortName,
		TripID:         tripID,
		Headsign:       headsign,
	}
}

// Duration returns the leg's elapsed time.
func (l Leg) Duration() time.Duration {
	return time.Duration(l.EndTime-l.StartTime) * time.Millisecond
}

// RiskLevel classifies the danger of missing a transfer.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ClassifyTransferBuffer maps a buffer in minutes to a risk level using the
// fixed thresholds: ≥5 low, [3,5) medium, <3 high.
func ClassifyTransferBuffer(bufferMinutes float64) RiskLevel {
	switch {
	case bufferMinutes >= TransferBufferSafeMinutes:
		return RiskLow
	case bufferMinutes >= TransferBufferRiskyMinutes:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// TransferRisk annotates the connection between two adjacent transit legs.
type TransferRisk struct {
	StopID                      string    `json:"stopId"`
	StopName                    string    `json:"stopName,omitempty"`
	ScheduledTransferMinutes    float64   `json:"scheduledTransferMinutes"`
	WalkingMinutes              float64   `json:"walkingMinutes"`
	BufferMinutes               float64   `json:"bufferMinutes"`
	Risk                        RiskLevel `json:"risk"`
	MissedConnectionProbability float64   `json:"missedConnectionProbability"`
	Recommendation              string    `json:"recommendation,omitempty"`
}

// Itinerary is an ordered sequence of legs from origin to destination.
// Aggregate times are seconds; StartTime and EndTime are epoch milliseconds.
type Itinerary struct {
	Legs               []Leg          `json:"legs"`
	StartTime          int64          `json:"startTime"`
	EndTime            int64          `json:"endTime"`
	DurationSeconds    int64          `json:"duration"`
	WalkTimeSeconds    int64          `json:"walkTime"`
	TransitTimeSeconds int64          `json:"transitTime"`
	WaitTimeSeconds    int64          `json:"waitTime"`
	Transfers          int            `json:"transfers"`
	OverallReliability Reliability    `json:"overallReliability"`
	TransferRisks      []TransferRisk `json:"transferRisks"`
	Rank               int            `json:"rank,omitempty"`
	Recommended        bool           `json:"recommended"`
}

// NewItinerary assembles an itinerary from legs and derives all aggregate
// timing fields and the worst-case overall reliability.
func NewItinerary(legs []Leg) Itinerary {
	itin := Itinerary{Legs: legs, OverallReliability: ReliabilityHigh}
	if len(legs) == 0 {
		return itin
	}

	itin.StartTime = legs[0].StartTime
	itin.EndTime = legs[len(legs)-1].EndTime
	itin.DurationSeconds = (itin.EndTime - itin.StartTime) / 1000

	transitLegs := 0
	var walkMs, transitMs int64
	for i, leg := range legs {
		switch leg.Mode {
		case LegModeWalk:
			walkMs += leg.EndTime - leg.StartTime
		case LegModeTransit:
			transitMs += leg.EndTime - leg.StartTime
			transitLegs++
			if leg.Reliability != "" {
				itin.OverallReliability = WorseReliability(itin.OverallReliability, leg.Reliability)
			}
		}
		if i > 0 {
			gap := leg.StartTime - legs[i-1].EndTime
			if gap > 0 {
				itin.WaitTimeSeconds += gap / 1000
			}
		}
	}
	itin.WalkTimeSeconds = walkMs / 1000
	itin.TransitTimeSeconds = transitMs / 1000
	if transitLegs > 0 {
		itin.Transfers = transitLegs - 1
	}
	if transitLegs == 0 {
		// A walking-only itinerary carries no transit reliability signal.
		itin.OverallReliability = ReliabilityHigh
	}
	return itin
}
