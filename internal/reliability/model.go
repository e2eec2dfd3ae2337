package reliability

import (
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// Band identifies a time-of-day scoring bucket.
type Band string

const (
	BandMorningRush Band = "morning_rush"
	BandMidday      Band = "midday"
	BandEveningRush Band = "evening_rush"
	BandOffPeak     Band = "off_peak"
)

// MinSampleCount is the smallest aggregate a bucket score may be built from.
// Thinner buckets fall back to the route-level score.
const MinSampleCount = 30

// StaleAfter marks scores whose newest backing sample is older than this.
const StaleAfter = 7 * 24 * time.Hour

// BandFor maps a local time to its scoring band.
func BandFor(t time.Time) Band {
	switch hour := t.Hour(); {
	case hour >= 6 && hour < 9:
		return BandMorningRush
	case hour >= 9 && hour < 15:
		return BandMidday
	case hour >= 15 && hour < 19:
		return BandEveningRush
	default:
		return BandOffPeak
	}
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}

type bucketKey struct {
	RouteID string
	Band    Band
	Weekend bool
}

// Aggregate is one pre-grouped summary of historical delay samples.
type Aggregate struct {
	RouteID           string
	Band              Band
	Weekend           bool
	SampleCount       int
	OnTimeCount       int
	AverageDelayMins  float64
	NewestSampleTaken time.Time
}

// Model is an immutable set of reliability scores computed from one batch
// of historical aggregates. Lookups never mutate it, so a published Model
// is safe for concurrent readers.
type Model struct {
	computedAt time.Time
	byBucket   map[bucketKey]models.ReliabilityScore
	byRoute    map[string]models.ReliabilityScore
}

// BuildModel folds aggregates into bucket and route-level scores. Bucket
// aggregates below MinSampleCount contribute to the route score only.
func BuildModel(aggregates []Aggregate, now time.Time) *Model {
	m := &Model{
		computedAt: now,
		byBucket:   make(map[bucketKey]models.ReliabilityScore),
		byRoute:    make(map[string]models.ReliabilityScore),
	}

	type routeTotals struct {
		samples  int
		onTime   int
		delaySum float64
		newestAt time.Time
	}
	totals := make(map[string]*routeTotals)

	for _, agg := range aggregates {
		if agg.SampleCount <= 0 {
			continue
		}

		rt, ok := totals[agg.RouteID]
		if !ok {
			rt = &routeTotals{}
			totals[agg.RouteID] = rt
		}
		rt.samples += agg.SampleCount
		rt.onTime += agg.OnTimeCount
		rt.delaySum += agg.AverageDelayMins * float64(agg.SampleCount)
		if agg.NewestSampleTaken.After(rt.newestAt) {
			rt.newestAt = agg.NewestSampleTaken
		}

		if agg.SampleCount < MinSampleCount {
			continue
		}

		otp := float64(agg.OnTimeCount) / float64(agg.SampleCount)
		score := models.NewReliabilityScore(agg.RouteID, otp, agg.AverageDelayMins, int64(agg.SampleCount))
		score.ComputedAt = now.UnixMilli()
		score.TimeOfDayAdjusted = true
		score.Stale = now.Sub(agg.NewestSampleTaken) > StaleAfter
		m.byBucket[bucketKey{RouteID: agg.RouteID, Band: agg.Band, Weekend: agg.Weekend}] = score
	}

	for routeID, rt := range totals {
		if rt.samples < MinSampleCount {
			continue
		}
		otp := float64(rt.onTime) / float64(rt.samples)
		score := models.NewReliabilityScore(routeID, otp, rt.delaySum/float64(rt.samples), int64(rt.samples))
		score.ComputedAt = now.UnixMilli()
		score.Stale = now.Sub(rt.newestAt) > StaleAfter
		m.byRoute[routeID] = score
	}

	return m
}

// ComputedAt returns when this model was built.
func (m *Model) ComputedAt() time.Time { return m.computedAt }

// ScoreFor returns the reliability score for a route at a departure time.
// It prefers the time-of-day bucket, falls back to the route-level score,
// and finally to the neutral score when the route has no usable history.
func (m *Model) ScoreFor(routeID string, departure time.Time) models.ReliabilityScore {
	key := bucketKey{RouteID: routeID, Band: BandFor(departure), Weekend: IsWeekend(departure)}
	if score, ok := m.byBucket[key]; ok {
		return score
	}
	if score, ok := m.byRoute[routeID]; ok {
		return score
	}
	return models.NeutralReliabilityScore(routeID)
}

// RouteScore returns the route-level score without time-of-day adjustment.
func (m *Model) RouteScore(routeID string) models.ReliabilityScore {
	if score, ok := m.byRoute[routeID]; ok {
		return score
	}
	return models.NeutralReliabilityScore(routeID)
}
