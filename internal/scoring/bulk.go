package scoring

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentscope/talentscope/internal/types"
)

// ScoredCandidate is a stored candidate with its persisted component scores.
type ScoredCandidate struct {
	ID         uuid.UUID
	Name       string
	Components types.ScoreComponents
}

// BulkStore is the storage surface needed to recompute scores tenant-wide.
type BulkStore interface {
	ListScoredCandidates(ctx context.Context, tenantID string) ([]ScoredCandidate, error)
	UpdateCandidateTotal(ctx context.Context, id uuid.UUID, total float64, priority types.PriorityTier) error
}

// RecomputeAll re-aggregates every stored candidate of a tenant under new
// weights. Unlike interactive updates the weights are normalized, not
// rejected. The operation is idempotent and order-independent; a failure
// updating one candidate is logged and skipped, never aborting the batch.
// Returns the number of candidates updated.
func RecomputeAll(ctx context.Context, store BulkStore, tenantID string, w types.ScoringWeights, log *logrus.Logger) (int, error) {
	candidates, err := store.ListScoredCandidates(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, c := range candidates {
		total := Aggregate(c.Components, w)
		if err := store.UpdateCandidateTotal(ctx, c.ID, total, PriorityFor(total)); err != nil {
			log.WithFields(logrus.Fields{
				"tenant_id": tenantID,
				"candidate": c.ID,
			}).WithError(err).Warn("skipping candidate during bulk rescore")
			continue
		}
		updated++
	}
	log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"updated":   updated,
		"total":     len(candidates),
	}).Info("bulk rescore finished")
	return updated, nil
}
