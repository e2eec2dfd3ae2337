package planner

import (
	"sort"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// TopK bounds how many ranked itineraries a plan returns.
const TopK = 3

// reliabilityGuardTolerance is how much longer a medium-or-better option
// may take and still displace a low-reliability option from the top spot.
const reliabilityGuardTolerance = 1.10

type rankWeights struct {
	duration    float64
	reliability float64
	risk        float64
}

func weightsFor(mode models.TripMode) rankWeights {
	switch mode {
	case models.TripModeFastest:
		return rankWeights{duration: 1.0, reliability: 0.2, risk: 0.2}
	case models.TripModeSafest:
		return rankWeights{duration: 0.5, reliability: 1.0, risk: 1.0}
	default:
		return rankWeights{duration: 1.0, reliability: 0.5, risk: 0.5}
	}
}

func reliabilityPenalty(r models.Reliability) float64 {
	switch r {
	case models.ReliabilityHigh:
		return 0
	case models.ReliabilityMedium:
		return 0.5
	default:
		return 1.0
	}
}

func riskPenalty(itin models.Itinerary) float64 {
	var sum float64
	for _, risk := range itin.TransferRisks {
		sum += risk.MissedConnectionProbability
	}
	return sum
}

// Rank orders candidates by weighted score, applies the low-reliability
// guard, truncates to TopK and flags exactly one itinerary recommended.
// Ranking is deterministic and idempotent: re-ranking an already ranked
// list yields the same order.
func Rank(candidates []models.Itinerary, mode models.TripMode) []models.Itinerary {
	if len(candidates) == 0 {
		return []models.Itinerary{}
	}

	weights := weightsFor(mode)

	minDuration := candidates[0].DurationSeconds
	for _, itin := range candidates[1:] {
		if itin.DurationSeconds < minDuration {
			minDuration = itin.DurationSeconds
		}
	}
	if minDuration <= 0 {
		minDuration = 1
	}

	ranked := make([]models.Itinerary, len(candidates))
	copy(ranked, candidates)

	score := func(itin models.Itinerary) float64 {
		normDuration := float64(itin.DurationSeconds) / float64(minDuration)
		return weights.duration*normDuration +
			weights.reliability*reliabilityPenalty(itin.OverallReliability) +
			weights.risk*riskPenalty(itin)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(ranked[i]), score(ranked[j])
		if si != sj {
			return si < sj
		}
		if ranked[i].Transfers != ranked[j].Transfers {
			return ranked[i].Transfers < ranked[j].Transfers
		}
		return ranked[i].EndTime < ranked[j].EndTime
	})

	applyReliabilityGuard(ranked)

	if len(ranked) > TopK {
		ranked = ranked[:TopK]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Recommended = i == 0
	}
	return ranked
}

// applyReliabilityGuard keeps a low-reliability option out of first place
// when a medium-or-better alternative exists within the duration tolerance.
func applyReliabilityGuard(ranked []models.Itinerary) {
	if len(ranked) < 2 || ranked[0].OverallReliability != models.ReliabilityLow {
		return
	}

	limit := float64(ranked[0].DurationSeconds) * reliabilityGuardTolerance
	for i := 1; i < len(ranked); i++ {
		if ranked[i].OverallReliability == models.ReliabilityLow {
			continue
		}
		if float64(ranked[i].DurationSeconds) > limit {
			continue
		}
		promoted := ranked[i]
		copy(ranked[1:i+1], ranked[:i])
		ranked[0] = promoted
		return
	}
}
