package consistency

import (
	"fmt"
	"math"
	"time"

	"github.com/talentscope/talentscope/internal/types"
)

// Assess combines five equally weighted 0-10 factors into a hireability
// estimate: open-to-work signal, company consistency, activity recency,
// skills breadth and location presence.
func Assess(record *types.CandidateRecord, profile *types.EnrichedProfile) types.HireabilityAssessment {
	cmp := CompareCompanies(record.Company, profile.CurrentCompany)

	openToWork := 3.0
	openToWorkNote := "no"
	if profile.OpenToWork {
		openToWork = 10.0
		openToWorkNote = "yes"
	}

	recency, recencyNote := recencyFactor(profile.LastActivity)

	skillCount := len(profile.Skills)
	if skillCount == 0 {
		skillCount = len(record.Skills)
	}
	skillsFactor := math.Min(10, float64(skillCount))

	location := 5.0
	locationNote := "missing"
	if record.Location != "" {
		location = 8.0
		locationNote = record.Location
	}

	factors := []string{
		fmt.Sprintf("Open to work signal: %s (%.1f)", openToWorkNote, openToWork),
		fmt.Sprintf("Company consistency: %s (%.1f)", cmp.Label, cmp.Score),
		fmt.Sprintf("Recent activity: %s (%.1f)", recencyNote, recency),
		fmt.Sprintf("Skills listed: %d (%.1f)", skillCount, skillsFactor),
		fmt.Sprintf("Location: %s (%.1f)", locationNote, location),
	}

	score := round2((openToWork + cmp.Score + recency + skillsFactor + location) / 5)

	return types.HireabilityAssessment{
		CompanyDifference: cmp.Description,
		CompanyScore:      cmp.Score,
		HireabilityScore:  score,
		Factors:           factors,
		PotentialToJoin:   potentialTier(score),
	}
}

// recencyFactor buckets last profile activity into a 0-10 factor.
func recencyFactor(lastActivity *time.Time) (float64, string) {
	if lastActivity == nil {
		return 5, "unknown"
	}
	age := time.Since(*lastActivity)
	switch {
	case age <= 7*24*time.Hour:
		return 10, "within 7 days"
	case age <= 30*24*time.Hour:
		return 8, "within 30 days"
	case age <= 90*24*time.Hour:
		return 6, "within 90 days"
	default:
		return 4, "over 90 days ago"
	}
}

func potentialTier(score float64) string {
	switch {
	case score >= 8:
		return types.PotentialHigh
	case score >= 6:
		return types.PotentialMedium
	case score >= 4:
		return types.PotentialLow
	default:
		return types.PotentialUnknown
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
