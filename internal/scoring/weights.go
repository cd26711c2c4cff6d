package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/talentscope/talentscope/internal/types"
)

// sumTolerance is how far an interactive weight update's raw sum may deviate
// from 100 before it is rejected.
const sumTolerance = 0.1

// ErrBadWeightSum is returned when an interactive weight update does not sum
// to 100 within tolerance. Bulk recomputation does not use this check; it
// normalizes instead.
var ErrBadWeightSum = errors.New("scoring weights must sum to 100")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateInteractive checks a user-submitted weight update. Components must
// be non-negative and the raw sum must equal 100 within 0.1.
func ValidateInteractive(w types.ScoringWeights) error {
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("invalid scoring weights: %w", err)
	}
	if math.Abs(w.Sum()-100) > sumTolerance {
		return fmt.Errorf("%w: got %.2f", ErrBadWeightSum, w.Sum())
	}
	return nil
}
