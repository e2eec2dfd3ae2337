package models

// Reliability is the classification derived from on-time performance.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// ClassifyReliability maps on-time performance to a classification using
// the fixed half-open thresholds: ≥0.80 high, [0.60, 0.80) medium, <0.60 low.
func ClassifyReliability(onTimePerformance float64) Reliability {
	switch {
	case onTimePerformance >= ReliabilityHighThreshold:
		return ReliabilityHigh
	case onTimePerformance >= ReliabilityMediumThreshold:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}

// WorseReliability returns the worse of two classifications.
func WorseReliability(a, b Reliability) Reliability {
	if reliabilityOrder(a) > reliabilityOrder(b) {
		return a
	}
	return b
}

func reliabilityOrder(r Reliability) int {
	switch r {
	case ReliabilityHigh:
		return 0
	case ReliabilityMedium:
		return 1
	case ReliabilityLow:
		return 2
	default:
		return 1
	}
}

// DelayCategory buckets a delay into rider-facing bands.
type DelayCategory string

const (
	DelayOnTime DelayCategory = "onTime"
	DelayMinor  DelayCategory = "minorDelay"
	DelayMajor  DelayCategory = "majorDelay"
	DelaySevere DelayCategory = "severe"
	DelayEarly  DelayCategory = "early"
)

// CategorizeDelay maps delay minutes to a category: onTime [-5,5],
// minorDelay (5,10], majorDelay (10,20], severe (20,∞). Arrivals more than
// five minutes early are flagged separately.
func CategorizeDelay(delayMinutes float64) DelayCategory {
	switch {
	case delayMinutes < EarlyArrivalBoundMinutes:
		return DelayEarly
	case delayMinutes <= OnTimeDelayBoundMinutes:
		return DelayOnTime
	case delayMinutes <= MinorDelayBoundMinutes:
		return DelayMinor
	case delayMinutes <= MajorDelayBoundMinutes:
		return DelayMajor
	default:
		return DelaySevere
	}
}

// ReliabilityScore is the per-route reliability summary derived from
// historical on-time performance aggregates.
type ReliabilityScore struct {
	RouteID             string      `json:"routeId"`
	OnTimePerformance   float64     `json:"onTimePerformance"`
	AverageDelayMinutes float64     `json:"averageDelayMinutes"`
	Reliability         Reliability `json:"reliability"`
	SampleCount         int64       `json:"sampleCount"`
	ComputedAt          int64       `json:"computedAt,omitempty"`
	Stale               bool        `json:"stale,omitempty"`
	TimeOfDayAdjusted   bool        `json:"timeOfDayAdjusted,omitempty"`
}

func NewReliabilityScore(routeID string, onTimePerformance, averageDelayMinutes float64, sampleCount int64) ReliabilityScore {
	return ReliabilityScore{
		RouteID:             routeID,
		OnTimePerformance:   onTimePerformance,
		AverageDelayMinutes: averageDelayMinutes,
		Reliability:         ClassifyReliability(onTimePerformance),
		SampleCount:         sampleCount,
	}
}

// NeutralReliabilityScore is the default when a route has no usable history.
func NeutralReliabilityScore(routeID string) ReliabilityScore {
	return ReliabilityScore{
		RouteID:           routeID,
		OnTimePerformance: 0.70,
		Reliability:       ReliabilityMedium,
	}
}
