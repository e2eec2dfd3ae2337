package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

func rankedCandidate(durationSeconds int64, rel models.Reliability, transfers int, risks ...float64) models.Itinerary {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC).UnixMilli()
	itin := models.Itinerary{
		StartTime:          start,
		EndTime:            start + durationSeconds*1000,
		DurationSeconds:    durationSeconds,
		Transfers:          transfers,
		OverallReliability: rel,
	}
	for _, p := range risks {
		itin.TransferRisks = append(itin.TransferRisks, models.TransferRisk{MissedConnectionProbability: p})
	}
	return itin
}

func TestRankEmptySet(t *testing.T) {
	assert.Empty(t, Rank(nil, models.TripModeBalanced))
}

func TestRankFlagsExactlyOneRecommended(t *testing.T) {
	ranked := Rank([]models.Itinerary{
		rankedCandidate(1800, models.ReliabilityHigh, 0),
		rankedCandidate(2000, models.ReliabilityHigh, 1),
	}, models.TripModeBalanced)

	require.Len(t, ranked, 2)
	assert.True(t, ranked[0].Recommended)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.False(t, ranked[1].Recommended)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestRankTruncatesToTopK(t *testing.T) {
	ranked := Rank([]models.Itinerary{
		rankedCandidate(1800, models.ReliabilityHigh, 0),
		rankedCandidate(1900, models.ReliabilityHigh, 0),
		rankedCandidate(2000, models.ReliabilityHigh, 0),
		rankedCandidate(2100, models.ReliabilityHigh, 0),
	}, models.TripModeBalanced)

	assert.Len(t, ranked, TopK)
}

func TestRankLowReliabilityGuard(t *testing.T) {
	fast := rankedCandidate(1800, models.ReliabilityLow, 0)
	slightlySlower := rankedCandidate(1890, models.ReliabilityMedium, 1, 0.5)

	ranked := Rank([]models.Itinerary{fast, slightlySlower}, models.TripModeFastest)
	require.Len(t, ranked, 2)
	assert.Equal(t, models.ReliabilityMedium, ranked[0].OverallReliability)
}

func TestRankGuardRespectsDurationTolerance(t *testing.T) {
	fast := rankedCandidate(1800, models.ReliabilityLow, 0)
	muchSlower := rankedCandidate(2400, models.ReliabilityHigh, 0)

	ranked := Rank([]models.Itinerary{fast, muchSlower}, models.TripModeFastest)
	require.Len(t, ranked, 2)
	assert.Equal(t, models.ReliabilityLow, ranked[0].OverallReliability)
}

func TestRankSafestModePrefersReliability(t *testing.T) {
	fastButRisky := rankedCandidate(1800, models.ReliabilityLow, 1, 0.5)
	slowButSolid := rankedCandidate(2600, models.ReliabilityHigh, 0)

	ranked := Rank([]models.Itinerary{fastButRisky, slowButSolid}, models.TripModeSafest)
	assert.Equal(t, models.ReliabilityHigh, ranked[0].OverallReliability)

	ranked = Rank([]models.Itinerary{fastButRisky, slowButSolid}, models.TripModeFastest)
	assert.Equal(t, models.ReliabilityLow, ranked[0].OverallReliability)
}

func TestRankTieBreaksByTransfersThenArrival(t *testing.T) {
	twoTransfers := rankedCandidate(1800, models.ReliabilityHigh, 2)
	oneTransfer := rankedCandidate(1800, models.ReliabilityHigh, 1)

	ranked := Rank([]models.Itinerary{twoTransfers, oneTransfer}, models.TripModeBalanced)
	assert.Equal(t, 1, ranked[0].Transfers)

	later := rankedCandidate(1800, models.ReliabilityHigh, 1)
	later.StartTime += 60_000
	later.EndTime += 60_000

	ranked = Rank([]models.Itinerary{later, oneTransfer}, models.TripModeBalanced)
	assert.Equal(t, oneTransfer.EndTime, ranked[0].EndTime)
}

func TestRankIsDeterministicAndIdempotent(t *testing.T) {
	candidates := []models.Itinerary{
		rankedCandidate(2000, models.ReliabilityMedium, 1, 0.2),
		rankedCandidate(1800, models.ReliabilityLow, 0),
		rankedCandidate(2200, models.ReliabilityHigh, 2, 0.1),
	}

	first := Rank(candidates, models.TripModeBalanced)
	second := Rank(candidates, models.TripModeBalanced)
	assert.Equal(t, first, second)

	reranked := Rank(first, models.TripModeBalanced)
	assert.Equal(t, first, reranked)
}
