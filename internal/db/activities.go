package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity is one audit entry recorded against a job.
type Activity struct {
	ID        int64     `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertActivity appends an audit entry for a job.
func (db *DB) InsertActivity(ctx context.Context, jobID uuid.UUID, kind, message string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO activities (job_id, kind, message) VALUES ($1, $2, $3)`,
		jobID, kind, message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivities returns the audit trail of a job, oldest first.
func (db *DB) ListActivities(ctx context.Context, jobID uuid.UUID) ([]Activity, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, job_id, kind, message, created_at
		 FROM activities WHERE job_id = $1 ORDER BY id`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.JobID, &a.Kind, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
