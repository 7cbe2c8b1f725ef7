// Package ranking derives efficiency, points, and ordered standings
// from persisted results. Every function here degrades to zero on
// missing or nonsensical input instead of failing; these are display
// paths where a zero beats an error.
package ranking

import "math"

// Weights behind the points formulas, also exposed to clients as
// ranking metadata.
const (
	ScoreWeight             = 0.7
	EfficiencyWeight        = 0.3
	ParticipationBase       = 0.3
	ParticipationMultiplier = 0.7
)

// TimeEfficiency maps time usage to a 10..100 scale: finishing in half
// the allocation or less is 100, using the full allocation is 60, and
// overruns decay linearly to a floor of 10. Zero or negative inputs
// yield 0.
func TimeEfficiency(timeTakenSeconds, allocatedSeconds int) float64 {
	if timeTakenSeconds <= 0 || allocatedSeconds <= 0 {
		return 0
	}
	ratio := float64(timeTakenSeconds) / float64(allocatedSeconds)
	switch {
	case ratio <= 0.5:
		return 100
	case ratio <= 1.0:
		return math.Round(100 - (ratio-0.5)*80)
	default:
		return math.Max(10, math.Round(60-(ratio-1.0)*50))
	}
}

// BasePoints blends average score and efficiency percentages.
func BasePoints(avgScorePct, avgEfficiencyPct float64) float64 {
	return round1(avgScorePct*ScoreWeight + avgEfficiencyPct*EfficiencyWeight)
}

// ParticipationRate is attempts over currently available quizzes, as a
// percentage. The denominator is the live count, so adding a quiz to a
// class lowers everyone's historical rate.
func ParticipationRate(attempted, available int) float64 {
	if available <= 0 {
		return 0
	}
	return float64(attempted) / float64(available) * 100
}

// FinalPoints scales base points by the participation multiplier, which
// ranges from 0.3 (no participation) to 1.0 (full participation).
func FinalPoints(avgScorePct, avgEfficiencyPct, participationPct float64) float64 {
	base := BasePoints(avgScorePct, avgEfficiencyPct)
	return round1(base * (ParticipationBase + ParticipationMultiplier*participationPct/100))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
