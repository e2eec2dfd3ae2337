package models

// Common constants used across the application
const (
	// UnknownValue is the fallback value when data is unavailable or calculation fails
	UnknownValue = "UNKNOWN"
)

// Reliability classification thresholds over on-time performance.
// Fixed for compatibility with downstream consumers.
const (
	ReliabilityHighThreshold   = 0.80
	ReliabilityMediumThreshold = 0.60
)

// Transfer buffer thresholds, in minutes.
const (
	TransferBufferSafeMinutes  = 5.0
	TransferBufferRiskyMinutes = 3.0
)

// Delay category bounds, in minutes of delay relative to schedule.
const (
	EarlyArrivalBoundMinutes = -5.0
	OnTimeDelayBoundMinutes  = 5.0
	MinorDelayBoundMinutes   = 10.0
	MajorDelayBoundMinutes   = 20.0
)

// Update intervals for upstream data sources, consumed as TTL bounds.
const (
	ArrivalsTTLSeconds = 30
	AlertsTTLSeconds   = 120
)
