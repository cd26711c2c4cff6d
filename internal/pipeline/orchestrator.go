// Package pipeline provides the batch-job orchestrator that drives candidates
// through enrichment, analysis, scoring and persistence.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentscope/talentscope/internal/consistency"
	"github.com/talentscope/talentscope/internal/observability"
	"github.com/talentscope/talentscope/internal/scheduler"
	"github.com/talentscope/talentscope/internal/scoring"
	"github.com/talentscope/talentscope/internal/stability"
	"github.com/talentscope/talentscope/internal/types"
)

// Progress budget boundaries: ingestion ends at 25, enrichment at 95,
// scoring/summary fills the rest.
const (
	progressIngested      = 25
	progressEnriched      = 95
	progressComplete      = 100
	enrichmentSpan        = progressEnriched - progressIngested
	defaultCandidateDelay = 50 * time.Millisecond
)

// ProgressEvent is the job-level notification emitted after every candidate
// and on every status transition.
type ProgressEvent struct {
	JobID            uuid.UUID       `json:"job_id"`
	Status           types.JobStatus `json:"status"`
	Progress         int             `json:"progress"`
	ProcessedRecords int             `json:"processed_records"`
	TotalRecords     int             `json:"total_records"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	// Candidate is set when a candidate finished successfully, Failure when
	// one was skipped.
	Candidate *types.CandidateSummary `json:"candidate,omitempty"`
	Failure   *types.UploadError      `json:"failure,omitempty"`
}

// ProgressCallback is called when job progress occurs.
type ProgressCallback func(event ProgressEvent)

// Store is the persistence surface the orchestrator writes through.
type Store interface {
	UpdateJob(ctx context.Context, job *types.EnrichmentJob) error
	SaveCandidate(ctx context.Context, tenantID string, record *types.CandidateRecord, card *types.ScoreCard) (uuid.UUID, error)
	InsertActivity(ctx context.Context, jobID uuid.UUID, kind, message string) error
}

// Activity kinds recorded against a job.
const (
	ActivityCandidateFailed = "candidate_failed"
	ActivityJobCompleted    = "job_completed"
	ActivityJobStopped      = "job_stopped"
	ActivityJobFailed       = "job_failed"
)

// Options tunes orchestrator behavior.
type Options struct {
	// CandidateDelay is the fixed pause inserted between candidates.
	CandidateDelay time.Duration
}

type jobHandle struct {
	stop   chan struct{}
	once   sync.Once
	reason string
}

// Orchestrator runs enrichment jobs as a state machine:
// pending -> processing -> {completed | failed | stopped}.
type Orchestrator struct {
	sched   *scheduler.Scheduler
	store   Store
	log     *logrus.Logger
	metrics *observability.Metrics
	delay   time.Duration

	mu   sync.Mutex
	jobs map[uuid.UUID]*jobHandle
}

// New creates an orchestrator. The store may be a no-op for CLI runs.
func New(sched *scheduler.Scheduler, store Store, log *logrus.Logger, metrics *observability.Metrics, opts *Options) *Orchestrator {
	delay := defaultCandidateDelay
	if opts != nil && opts.CandidateDelay > 0 {
		delay = opts.CandidateDelay
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if store == nil {
		store = NopStore{}
	}
	return &Orchestrator{
		sched:   sched,
		store:   store,
		log:     log,
		metrics: metrics,
		delay:   delay,
		jobs:    make(map[uuid.UUID]*jobHandle),
	}
}

// Stop requests cooperative cancellation of a running job. The request is
// honored at the next candidate boundary, never mid-call. Returns false if
// the job is not currently running.
func (o *Orchestrator) Stop(jobID uuid.UUID, reason string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	handle, ok := o.jobs[jobID]
	if !ok {
		return false
	}
	handle.once.Do(func() {
		handle.reason = reason
		close(handle.stop)
	})
	return true
}

// Running reports whether a job is currently being processed.
func (o *Orchestrator) Running(jobID uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.jobs[jobID]
	return ok
}

// Run drives one job through the pipeline. Candidates are processed strictly
// sequentially in submission order. A per-candidate failure is logged as an
// activity and skipped; only an error outside that boundary marks the job
// failed. Run mutates job in place and persists it after every transition.
func (o *Orchestrator) Run(ctx context.Context, job *types.EnrichmentJob, records []*types.CandidateRecord, weights types.ScoringWeights, onProgress ProgressCallback) error {
	if job.Status.Terminal() {
		return fmt.Errorf("job %s is already %s", job.ID, job.Status)
	}

	handle := &jobHandle{stop: make(chan struct{})}
	o.mu.Lock()
	if _, exists := o.jobs[job.ID]; exists {
		o.mu.Unlock()
		return fmt.Errorf("job %s is already running", job.ID)
	}
	o.jobs[job.ID] = handle
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.jobs, job.ID)
		o.mu.Unlock()
	}()

	log := o.log.WithField("job_id", job.ID)

	// Ingestion stage: records were produced by the extractor collaborator.
	job.Status = types.JobProcessing
	job.TotalRecords = len(records)
	job.Progress = progressIngested
	o.persistJob(ctx, job, log)
	o.emit(onProgress, job, nil)

	for i, record := range records {
		// Cooperative stop, checked only at candidate boundaries.
		select {
		case <-handle.stop:
			job.Status = types.JobStopped
			job.ErrorMessage = stopMessage(handle.reason)
			o.persistJob(ctx, job, log)
			o.activity(ctx, job.ID, ActivityJobStopped, job.ErrorMessage, log)
			o.metrics.JobsTotal.WithLabelValues(string(types.JobStopped)).Inc()
			o.emit(onProgress, job, nil)
			log.WithField("processed", job.ProcessedRecords).Info("job stopped")
			return nil
		default:
		}

		summary, err := o.processCandidate(ctx, job.TenantID, record, weights)
		job.ProcessedRecords++
		var failure *types.UploadError
		if err != nil {
			o.metrics.CandidatesFailed.Inc()
			msg := fmt.Sprintf("candidate %q failed: %v", record.Name, err)
			log.WithField("candidate", record.Name).WithError(err).Warn("skipping candidate")
			o.activity(ctx, job.ID, ActivityCandidateFailed, msg, log)
			failure = &types.UploadError{File: record.SourceFile, Error: msg}
		} else {
			o.metrics.CandidatesProcessed.Inc()
		}

		job.Progress = progressIngested + enrichmentSpan*job.ProcessedRecords/job.TotalRecords
		o.persistJob(ctx, job, log)
		o.emitFull(onProgress, job, summary, failure)

		if i < len(records)-1 {
			time.Sleep(o.delay)
		}
	}

	// Scoring stage wrap-up.
	job.Progress = progressEnriched
	o.emit(onProgress, job, nil)

	job.Status = types.JobCompleted
	job.Progress = progressComplete
	o.persistJob(ctx, job, log)
	o.activity(ctx, job.ID, ActivityJobCompleted,
		fmt.Sprintf("processed %d/%d candidates", job.ProcessedRecords, job.TotalRecords), log)
	o.metrics.JobsTotal.WithLabelValues(string(types.JobCompleted)).Inc()
	o.emit(onProgress, job, nil)
	log.WithFields(logrus.Fields{
		"processed": job.ProcessedRecords,
		"total":     job.TotalRecords,
	}).Info("job completed")
	return nil
}

// Fail transitions a job to failed with the captured message. Used when an
// error escapes the orchestrator's per-candidate boundary (for example the
// extractor collaborator failing before Run can start).
func (o *Orchestrator) Fail(ctx context.Context, job *types.EnrichmentJob, cause error, onProgress ProgressCallback) {
	job.Status = types.JobFailed
	job.ErrorMessage = cause.Error()
	log := o.log.WithField("job_id", job.ID)
	o.persistJob(ctx, job, log)
	o.activity(ctx, job.ID, ActivityJobFailed, cause.Error(), log)
	o.metrics.JobsTotal.WithLabelValues(string(types.JobFailed)).Inc()
	o.emit(onProgress, job, nil)
	log.WithError(cause).Error("job failed")
}

// processCandidate runs one candidate through enrichment, the two analyzers
// and aggregation, then persists the score card. Panics are recovered into
// errors so a bad candidate can never take the job down.
func (o *Orchestrator) processCandidate(ctx context.Context, tenantID string, record *types.CandidateRecord, weights types.ScoringWeights) (summary *types.CandidateSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary = nil
			err = fmt.Errorf("panic while processing candidate: %v", r)
		}
	}()

	if record == nil || record.Name == "" {
		return nil, fmt.Errorf("candidate record is missing a name")
	}

	// Enrichment never fails; a degraded profile is a valid outcome.
	enrichResp, err := o.sched.Submit(ctx, scheduler.Request{
		Type:    scheduler.TypeEnrich,
		Record:  record,
		Weights: weights,
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment submit failed: %w", err)
	}
	profile := enrichResp.Profile

	stabilityScore := stability.Score(record.WorkHistory)
	hireability := consistency.Assess(record, profile)

	scoreResp, err := o.sched.Submit(ctx, scheduler.Request{
		Type:    scheduler.TypeScore,
		Record:  record,
		Weights: weights,
	})
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}
	components := scoreResp.Components[0]
	// Job stability is computed locally from the work history; the upstream
	// value for that component is discarded.
	components.JobStability = stabilityScore

	total := scoring.Aggregate(components, weights)
	card := &types.ScoreCard{
		Components:  components.Clamped(),
		Total:       total,
		Priority:    scoring.PriorityFor(total),
		Hireability: hireability,
	}

	if _, err := o.store.SaveCandidate(ctx, tenantID, record, card); err != nil {
		return nil, fmt.Errorf("failed to persist candidate: %w", err)
	}

	return &types.CandidateSummary{
		Name:     record.Name,
		File:     record.SourceFile,
		Score:    card.Total,
		Priority: card.Priority,
	}, nil
}

func (o *Orchestrator) persistJob(ctx context.Context, job *types.EnrichmentJob, log *logrus.Entry) {
	job.UpdatedAt = time.Now()
	if err := o.store.UpdateJob(ctx, job); err != nil {
		log.WithError(err).Warn("failed to persist job state")
	}
}

func (o *Orchestrator) activity(ctx context.Context, jobID uuid.UUID, kind, message string, log *logrus.Entry) {
	if err := o.store.InsertActivity(ctx, jobID, kind, message); err != nil {
		log.WithError(err).Warn("failed to record activity")
	}
}

func (o *Orchestrator) emit(cb ProgressCallback, job *types.EnrichmentJob, candidate *types.CandidateSummary) {
	o.emitFull(cb, job, candidate, nil)
}

func (o *Orchestrator) emitFull(cb ProgressCallback, job *types.EnrichmentJob, candidate *types.CandidateSummary, failure *types.UploadError) {
	if cb == nil {
		return
	}
	cb(ProgressEvent{
		JobID:            job.ID,
		Status:           job.Status,
		Progress:         job.Progress,
		ProcessedRecords: job.ProcessedRecords,
		TotalRecords:     job.TotalRecords,
		ErrorMessage:     job.ErrorMessage,
		Candidate:        candidate,
		Failure:          failure,
	})
}

func stopMessage(reason string) string {
	if reason == "" {
		return "stopped by user"
	}
	return reason
}
