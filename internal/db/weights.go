package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentscope/talentscope/internal/types"
)

// GetWeights loads the scoring weights of a tenant. ok is false when the
// tenant has no stored weights yet.
func (db *DB) GetWeights(ctx context.Context, tenantID string) (types.ScoringWeights, bool, error) {
	var w types.ScoringWeights
	err := db.pool.QueryRow(ctx,
		`SELECT open_to_work, skill_match, job_stability, platform_engagement
		 FROM scoring_weights WHERE tenant_id = $1`,
		tenantID,
	).Scan(&w.OpenToWork, &w.SkillMatch, &w.JobStability, &w.PlatformEngagement)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ScoringWeights{}, false, nil
	}
	if err != nil {
		return types.ScoringWeights{}, false, fmt.Errorf("failed to load weights: %w", err)
	}
	return w, true, nil
}

// SetWeights upserts the scoring weights of a tenant.
func (db *DB) SetWeights(ctx context.Context, tenantID string, w types.ScoringWeights) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO scoring_weights (tenant_id, open_to_work, skill_match, job_stability, platform_engagement)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (tenant_id) DO UPDATE SET
			open_to_work = $2, skill_match = $3, job_stability = $4,
			platform_engagement = $5, updated_at = NOW()`,
		tenantID, w.OpenToWork, w.SkillMatch, w.JobStability, w.PlatformEngagement,
	)
	if err != nil {
		return fmt.Errorf("failed to save weights: %w", err)
	}
	return nil
}
