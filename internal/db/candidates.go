package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/talentscope/talentscope/internal/scoring"
	"github.com/talentscope/talentscope/internal/types"
)

// SaveCandidate upserts a candidate together with its score card. Candidates
// with an email are deduplicated per tenant on (tenant_id, email).
func (db *DB) SaveCandidate(ctx context.Context, tenantID string, record *types.CandidateRecord, card *types.ScoreCard) (uuid.UUID, error) {
	id := uuid.New()
	err := db.pool.QueryRow(ctx,
		`INSERT INTO candidates (
			id, tenant_id, name, email, company, title, location, skills,
			score, priority,
			open_to_work_score, skill_match_score, job_stability_score, platform_engagement_score,
			company_difference, company_score, hireability_score, hireability_factors, potential_to_join
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		 ON CONFLICT (tenant_id, email) WHERE email <> '' DO UPDATE SET
			name = EXCLUDED.name,
			company = EXCLUDED.company,
			title = EXCLUDED.title,
			location = EXCLUDED.location,
			skills = EXCLUDED.skills,
			score = EXCLUDED.score,
			priority = EXCLUDED.priority,
			open_to_work_score = EXCLUDED.open_to_work_score,
			skill_match_score = EXCLUDED.skill_match_score,
			job_stability_score = EXCLUDED.job_stability_score,
			platform_engagement_score = EXCLUDED.platform_engagement_score,
			company_difference = EXCLUDED.company_difference,
			company_score = EXCLUDED.company_score,
			hireability_score = EXCLUDED.hireability_score,
			hireability_factors = EXCLUDED.hireability_factors,
			potential_to_join = EXCLUDED.potential_to_join,
			updated_at = NOW()
		 RETURNING id`,
		id, tenantID, record.Name, record.Email, record.Company, record.Title,
		record.Location, record.Skills,
		card.Total, string(card.Priority),
		card.Components.OpenToWork, card.Components.SkillMatch,
		card.Components.JobStability, card.Components.PlatformEngagement,
		card.Hireability.CompanyDifference, card.Hireability.CompanyScore,
		card.Hireability.HireabilityScore, card.Hireability.Factors,
		card.Hireability.PotentialToJoin,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save candidate: %w", err)
	}
	return id, nil
}

// ListScoredCandidates returns every candidate of a tenant with its stored
// component scores, for bulk recomputation.
func (db *DB) ListScoredCandidates(ctx context.Context, tenantID string) ([]scoring.ScoredCandidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name,
			open_to_work_score, skill_match_score, job_stability_score, platform_engagement_score
		 FROM candidates WHERE tenant_id = $1`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var out []scoring.ScoredCandidate
	for rows.Next() {
		var c scoring.ScoredCandidate
		if err := rows.Scan(&c.ID, &c.Name,
			&c.Components.OpenToWork, &c.Components.SkillMatch,
			&c.Components.JobStability, &c.Components.PlatformEngagement); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCandidateTotal rewrites the aggregate score and priority of one
// candidate, leaving component scores untouched.
func (db *DB) UpdateCandidateTotal(ctx context.Context, id uuid.UUID, total float64, priority types.PriorityTier) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE candidates SET score = $1, priority = $2, updated_at = NOW() WHERE id = $3`,
		total, string(priority), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update candidate score: %w", err)
	}
	return nil
}
