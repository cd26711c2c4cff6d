package types

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an enrichment job.
type JobStatus string

// Enrichment job states. Completed, failed and stopped are terminal.
const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobStopped    JobStatus = "stopped"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobStopped
}

// EnrichmentJob tracks one batch run through the enrichment pipeline.
// It is created at upload time and mutated only by the orchestrator.
type EnrichmentJob struct {
	ID               uuid.UUID `json:"id"`
	TenantID         string    `json:"tenant_id"`
	TotalRecords     int       `json:"total_records"`
	ProcessedRecords int       `json:"processed_records"`
	Progress         int       `json:"progress"`
	Status           JobStatus `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
