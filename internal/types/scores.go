package types

import "math"

// PriorityTier classifies a total score into a pipeline priority.
type PriorityTier string

// Priority tiers derived from the total score by fixed thresholds.
const (
	PriorityHigh   PriorityTier = "High"
	PriorityMedium PriorityTier = "Medium"
	PriorityLow    PriorityTier = "Low"
)

// ScoreComponents holds the four independent 0-10 component scores.
type ScoreComponents struct {
	OpenToWork         float64 `json:"open_to_work"`
	SkillMatch         float64 `json:"skill_match"`
	JobStability       float64 `json:"job_stability"`
	PlatformEngagement float64 `json:"platform_engagement"`
}

// Clamped returns a copy with every component forced into [0,10].
func (c ScoreComponents) Clamped() ScoreComponents {
	return ScoreComponents{
		OpenToWork:         clamp10(c.OpenToWork),
		SkillMatch:         clamp10(c.SkillMatch),
		JobStability:       clamp10(c.JobStability),
		PlatformEngagement: clamp10(c.PlatformEngagement),
	}
}

func clamp10(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}

// ScoringWeights holds the percentage weight of each score component.
// The raw values are percentages; they must be normalizable (sum > 0).
type ScoringWeights struct {
	OpenToWork         float64 `json:"open_to_work" validate:"min=0"`
	SkillMatch         float64 `json:"skill_match" validate:"min=0"`
	JobStability       float64 `json:"job_stability" validate:"min=0"`
	PlatformEngagement float64 `json:"platform_engagement" validate:"min=0"`
}

// Sum returns the raw (unnormalized) weight total.
func (w ScoringWeights) Sum() float64 {
	return w.OpenToWork + w.SkillMatch + w.JobStability + w.PlatformEngagement
}

// HireabilityAssessment is the composite likelihood-to-join estimate produced
// by the company consistency analyzer. It is distinct from the overall score.
type HireabilityAssessment struct {
	CompanyDifference string   `json:"company_difference"`
	CompanyScore      float64  `json:"company_score"`
	HireabilityScore  float64  `json:"hireability_score"`
	Factors           []string `json:"hireability_factors"`
	PotentialToJoin   string   `json:"potential_to_join"`
}

// Potential-to-join tiers.
const (
	PotentialHigh    = "High"
	PotentialMedium  = "Medium"
	PotentialLow     = "Low"
	PotentialUnknown = "Unknown"
)

// ScoreCard bundles everything the pipeline persists for one candidate.
type ScoreCard struct {
	Components  ScoreComponents       `json:"components"`
	Total       float64               `json:"total"`
	Priority    PriorityTier          `json:"priority"`
	Hireability HireabilityAssessment `json:"hireability"`
}
