package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/talentscope/talentscope/internal/broadcast"
	"github.com/talentscope/talentscope/internal/config"
	"github.com/talentscope/talentscope/internal/extract"
	"github.com/talentscope/talentscope/internal/pipeline"
	"github.com/talentscope/talentscope/internal/scoring"
	"github.com/talentscope/talentscope/internal/types"
)

// maxUploadBytes bounds one multipart upload request.
const maxUploadBytes = 64 << 20

// extractConcurrency bounds how many files are parsed at once during ingest.
const extractConcurrency = 4

// uploadResponse acknowledges an accepted batch upload.
type uploadResponse struct {
	SessionID string    `json:"session_id"`
	JobID     uuid.UUID `json:"job_id"`
	Files     int       `json:"files"`
}

// handleUpload accepts a multipart batch of resume files, creates a session
// and an enrichment job, and runs the pipeline in the background.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart request: %v", err))
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	uploads := make([]extract.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to open %s: %v", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", fh.Filename, err))
			return
		}
		uploads = append(uploads, extract.Upload{Filename: fh.Filename, Data: data})
	}

	sessionID := uuid.NewString()
	s.bus.CreateSession(sessionID, tenant, len(uploads))

	job := &types.EnrichmentJob{
		ID:        uuid.New(),
		TenantID:  tenant,
		Status:    types.JobPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create job: %v", err))
		return
	}

	go s.runUpload(sessionID, job, uploads)

	writeJSON(w, http.StatusAccepted, uploadResponse{
		SessionID: sessionID,
		JobID:     job.ID,
		Files:     len(uploads),
	})
}

// runUpload drives one upload batch: extraction, then the orchestrator.
// Extraction failures are reported per file; an error escaping the
// per-candidate boundary marks the job failed.
func (s *Server) runUpload(sessionID string, job *types.EnrichmentJob, uploads []extract.Upload) {
	ctx := context.Background()

	records := make([]*types.CandidateRecord, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)
	for i, up := range uploads {
		g.Go(func() error {
			record, err := s.chain.Extract(gctx, up)
			if err != nil {
				s.bus.AddError(sessionID, up.Filename, err.Error())
				return nil
			}
			records[i] = record
			return nil
		})
	}
	_ = g.Wait()

	// Preserve upload order for the sequential pipeline.
	ordered := make([]*types.CandidateRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			ordered = append(ordered, rec)
		}
	}

	if len(ordered) == 0 {
		s.orch.Fail(ctx, job, fmt.Errorf("no candidate records could be extracted"), nil)
		s.bus.CompleteSession(sessionID)
		return
	}

	weights := s.weightsFor(ctx, job.TenantID)
	onProgress := func(ev pipeline.ProgressEvent) {
		if ev.Candidate != nil {
			s.bus.AddCompletedCandidate(sessionID, *ev.Candidate)
		}
		if ev.Failure != nil {
			s.bus.AddError(sessionID, ev.Failure.File, ev.Failure.Error)
		}
	}

	if err := s.orch.Run(ctx, job, ordered, weights, onProgress); err != nil {
		s.orch.Fail(ctx, job, err, onProgress)
		s.bus.CompleteSession(sessionID)
	}
}

// weightsFor loads tenant weights, falling back to configured defaults.
func (s *Server) weightsFor(ctx context.Context, tenant string) types.ScoringWeights {
	if w, ok, err := s.store.GetWeights(ctx, tenant); err == nil && ok {
		return w
	} else if err != nil {
		s.log.WithError(err).Warn("failed to load weights, using defaults")
	}
	if s.cfg.Weights != nil {
		return *s.cfg.Weights
	}
	return config.DefaultWeights()
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleJobActivities(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	activities, err := s.store.ListActivities(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list activities: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// handleStopJob requests cooperative cancellation. A stop is always a
// success response, never an error, even when the job already finished.
func (s *Server) handleStopJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	stopped := s.orch.Stop(id, body.Reason)
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stop_requested": stopped,
		"job":            job,
	})
}

func (s *Server) handleGetWeights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.weightsFor(r.Context(), tenantID(r)))
}

// handlePutWeights applies an interactive weight update. The raw sum must be
// 100 within 0.1 or the update is rejected.
func (s *Server) handlePutWeights(w http.ResponseWriter, r *http.Request) {
	var weights types.ScoringWeights
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid weights payload: %v", err))
		return
	}
	if err := scoring.ValidateInteractive(weights); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SetWeights(r.Context(), tenantID(r), weights); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save weights: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, weights)
}

// handleRecompute re-aggregates every stored candidate of the tenant under
// the current weights. Unlike interactive updates, weights are normalized
// here, never rejected.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	weights := s.weightsFor(r.Context(), tenant)
	updated, err := scoring.RecomputeAll(r.Context(), s.store, tenant, weights, s.log)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("recompute failed: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.bus.Session(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleSessionEvents streams session progress as server-sent events.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	sessionID := r.PathValue("id")
	if _, ok := s.bus.Session(sessionID); !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	events, cancel := s.bus.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
			if ev.Type == broadcast.EventUploadComplete {
				return
			}
		}
	}
}
