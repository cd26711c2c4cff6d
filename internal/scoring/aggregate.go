// Package scoring combines component scores into a weighted total and
// priority tier, and recomputes stored scores when weights change.
package scoring

import (
	"math"

	"github.com/talentscope/talentscope/internal/types"
)

// Priority thresholds on the 0-10 total score.
const (
	highThreshold   = 7.5
	mediumThreshold = 5.0
)

// Fractions are scoring weights normalized to sum to 1.0.
type Fractions struct {
	OpenToWork         float64
	SkillMatch         float64
	JobStability       float64
	PlatformEngagement float64
}

// Normalize converts percentage weights into fractions summing to 1.0.
// A weight set whose sum is not positive yields all-zero fractions, which in
// turn aggregates to a total of 0.
func Normalize(w types.ScoringWeights) Fractions {
	sum := w.Sum()
	if sum <= 0 {
		return Fractions{}
	}
	return Fractions{
		OpenToWork:         w.OpenToWork / sum,
		SkillMatch:         w.SkillMatch / sum,
		JobStability:       w.JobStability / sum,
		PlatformEngagement: w.PlatformEngagement / sum,
	}
}

// Aggregate computes the weighted total score (0-10, 2-decimal rounding) for
// a set of component scores. Components are clamped into [0,10] first.
func Aggregate(c types.ScoreComponents, w types.ScoringWeights) float64 {
	c = c.Clamped()
	f := Normalize(w)
	total := f.OpenToWork*c.OpenToWork +
		f.SkillMatch*c.SkillMatch +
		f.JobStability*c.JobStability +
		f.PlatformEngagement*c.PlatformEngagement
	return round2(total)
}

// PriorityFor maps a total score to its priority tier.
func PriorityFor(total float64) types.PriorityTier {
	switch {
	case total >= highThreshold:
		return types.PriorityHigh
	case total >= mediumThreshold:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
