package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/talentscope/talentscope/internal/types"
)

// CreateJob inserts a new enrichment job in pending state.
func (db *DB) CreateJob(ctx context.Context, job *types.EnrichmentJob) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO enrichment_jobs (id, tenant_id, total_records, processed_records, progress, status, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.TenantID, job.TotalRecords, job.ProcessedRecords,
		job.Progress, string(job.Status), job.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// UpdateJob persists the current state of a job.
func (db *DB) UpdateJob(ctx context.Context, job *types.EnrichmentJob) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE enrichment_jobs SET
			total_records = $1, processed_records = $2, progress = $3,
			status = $4, error_message = $5, updated_at = NOW()
		 WHERE id = $6`,
		job.TotalRecords, job.ProcessedRecords, job.Progress,
		string(job.Status), job.ErrorMessage, job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// GetJob loads a job by id.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*types.EnrichmentJob, error) {
	job := &types.EnrichmentJob{}
	var status string
	err := db.pool.QueryRow(ctx,
		`SELECT id, tenant_id, total_records, processed_records, progress, status, error_message, created_at, updated_at
		 FROM enrichment_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.TenantID, &job.TotalRecords, &job.ProcessedRecords,
		&job.Progress, &status, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	job.Status = types.JobStatus(status)
	return job, nil
}
