package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/mitchellnkeo/SeattleWayfare-sub001/internal/models"
)

// AssessTransferRisks fills in the itinerary's transfer risk list, one
// entry per adjacent pair of transit legs. Walking and waiting between the
// pair count against the scheduled slack.
func AssessTransferRisks(itin *models.Itinerary, model ReliabilityModel) {
	itin.TransferRisks = nil

	var transitIdx []int
	for i, leg := range itin.Legs {
		if leg.Mode == models.LegModeTransit {
			transitIdx = append(transitIdx, i)
		}
	}

	for pair := 1; pair < len(transitIdx); pair++ {
		incoming := itin.Legs[transitIdx[pair-1]]
		outgoing := itin.Legs[transitIdx[pair]]

		var walkingMinutes float64
		for i := transitIdx[pair-1] + 1; i < transitIdx[pair]; i++ {
			if itin.Legs[i].Mode == models.LegModeWalk {
				walkingMinutes += itin.Legs[i].Duration().Minutes()
			}
		}

		transferMinutes := time.Duration(outgoing.StartTime-incoming.EndTime) * time.Millisecond
		scheduledMinutes := transferMinutes.Minutes()
		buffer := scheduledMinutes - walkingMinutes

		score := model.ScoreFor(incoming.RouteID, time.UnixMilli(incoming.StartTime))
		risk := models.TransferRisk{
			StopID:                      incoming.To.StopID,
			StopName:                    incoming.To.Name,
			ScheduledTransferMinutes:    scheduledMinutes,
			WalkingMinutes:              walkingMinutes,
			BufferMinutes:               buffer,
			Risk:                        models.ClassifyTransferBuffer(buffer),
			MissedConnectionProbability: MissedConnectionProbability(buffer, score),
		}
		risk.Recommendation = recommendationFor(risk, outgoing)
		itin.TransferRisks = append(itin.TransferRisks, risk)
	}
}

// MissedConnectionProbability estimates P(incoming delay > buffer) from
// the route's delay history, modeled as a shifted exponential around the
// average delay. The estimate is monotone non-increasing in the buffer.
func MissedConnectionProbability(bufferMinutes float64, score models.ReliabilityScore) float64 {
	pDelayed := 1 - score.OnTimePerformance
	if pDelayed < 0 {
		pDelayed = 0
	}
	if pDelayed > 1 {
		pDelayed = 1
	}

	meanDelay := score.AverageDelayMinutes
	if meanDelay < 1 {
		meanDelay = 1
	}
	buffer := bufferMinutes
	if buffer < 0 {
		buffer = 0
	}
	return pDelayed * math.Exp(-buffer/meanDelay)
}

func recommendationFor(risk models.TransferRisk, outgoing models.Leg) string {
	switch risk.Risk {
	case models.RiskHigh:
		return fmt.Sprintf("Very tight transfer to %s; consider a later departure", routeLabel(outgoing))
	case models.RiskMedium:
		return fmt.Sprintf("Tight transfer to %s; head directly to the stop", routeLabel(outgoing))
	default:
		return ""
	}
}

func routeLabel(leg models.Leg) string {
	if leg.RouteShortName != "" {
		return "route " + leg.RouteShortName
	}
	return "your connection"
}
