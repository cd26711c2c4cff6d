package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentscope/talentscope/internal/types"
)

func TestValidateInteractive_Valid(t *testing.T) {
	assert.NoError(t, ValidateInteractive(defaultWeights()))
}

func TestValidateInteractive_WithinTolerance(t *testing.T) {
	w := types.ScoringWeights{OpenToWork: 40.05, SkillMatch: 30, JobStability: 15, PlatformEngagement: 15}
	assert.NoError(t, ValidateInteractive(w))
}

func TestValidateInteractive_BadSum(t *testing.T) {
	w := types.ScoringWeights{OpenToWork: 50, SkillMatch: 30, JobStability: 15, PlatformEngagement: 15}
	err := ValidateInteractive(w)
	assert.True(t, errors.Is(err, ErrBadWeightSum))
}

func TestValidateInteractive_NegativeComponent(t *testing.T) {
	w := types.ScoringWeights{OpenToWork: 110, SkillMatch: -10, JobStability: 0, PlatformEngagement: 0}
	err := ValidateInteractive(w)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrBadWeightSum))
}
