package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentscope/talentscope/internal/broadcast"
	"github.com/talentscope/talentscope/internal/config"
	"github.com/talentscope/talentscope/internal/db"
	"github.com/talentscope/talentscope/internal/enrich"
	"github.com/talentscope/talentscope/internal/extract"
	"github.com/talentscope/talentscope/internal/pipeline"
	"github.com/talentscope/talentscope/internal/scheduler"
	"github.com/talentscope/talentscope/internal/scoring"
	"github.com/talentscope/talentscope/internal/types"
)

type fakeClient struct{}

func (fakeClient) Enrich(_ context.Context, identity enrich.Identity) *types.EnrichedProfile {
	return &types.EnrichedProfile{
		Headline:       identity.Title,
		CurrentCompany: identity.Company,
		OpenToWork:     true,
		Skills:         []string{"Go"},
	}
}

func (fakeClient) ScoreOne(_ context.Context, _ *types.CandidateRecord, _ types.ScoringWeights) (types.ScoreComponents, error) {
	return types.ScoreComponents{OpenToWork: 9, SkillMatch: 7, PlatformEngagement: 5}, nil
}

func (fakeClient) ScoreBatch(_ context.Context, _ []*types.CandidateRecord, _ types.ScoringWeights) ([]types.ScoreComponents, error) {
	return nil, enrich.ErrMalformedBatch
}

type fakeStore struct {
	mu         sync.Mutex
	jobs       map[uuid.UUID]*types.EnrichmentJob
	weights    map[string]types.ScoringWeights
	scored     []scoring.ScoredCandidate
	saved      []string
	activities []db.Activity
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:    make(map[uuid.UUID]*types.EnrichmentJob),
		weights: make(map[string]types.ScoringWeights),
	}
}

func (f *fakeStore) CreateJob(_ context.Context, job *types.EnrichmentJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateJob(_ context.Context, job *types.EnrichmentJob) error {
	return f.CreateJob(nil, job)
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*types.EnrichmentJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found")
	}
	copied := *job
	return &copied, nil
}

func (f *fakeStore) SaveCandidate(_ context.Context, _ string, record *types.CandidateRecord, _ *types.ScoreCard) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, record.Name)
	return uuid.New(), nil
}

func (f *fakeStore) InsertActivity(_ context.Context, jobID uuid.UUID, kind, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities = append(f.activities, db.Activity{JobID: jobID, Kind: kind, Message: message})
	return nil
}

func (f *fakeStore) ListActivities(_ context.Context, jobID uuid.UUID) ([]db.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.Activity{}
	for _, a := range f.activities {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetWeights(_ context.Context, tenantID string) (types.ScoringWeights, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.weights[tenantID]
	return w, ok, nil
}

func (f *fakeStore) SetWeights(_ context.Context, tenantID string, w types.ScoringWeights) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weights[tenantID] = w
	return nil
}

func (f *fakeStore) ListScoredCandidates(_ context.Context, _ string) ([]scoring.ScoredCandidate, error) {
	return f.scored, nil
}

func (f *fakeStore) UpdateCandidateTotal(_ context.Context, _ uuid.UUID, _ float64, _ types.PriorityTier) error {
	return nil
}

func (f *fakeStore) jobStatus(id uuid.UUID) types.JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok {
		return job.Status
	}
	return ""
}

func newTestServer(t *testing.T, store *fakeStore) (*httptest.Server, *Server) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	weights := config.DefaultWeights()
	cfg := &config.Config{Port: 0, Weights: &weights}

	sched := scheduler.New(fakeClient{}, log, nil, &scheduler.Options{
		MaxConcurrent: 3,
		PacingDelay:   time.Millisecond,
		CacheTTL:      time.Minute,
		QueueSize:     64,
	})
	t.Cleanup(sched.Close)

	orch := pipeline.New(sched, store, log, nil, &pipeline.Options{CandidateDelay: time.Millisecond})
	srv := New(cfg, Deps{
		Store:     store,
		Orch:      orch,
		Scheduler: sched,
		Bus:       broadcast.New(log, time.Minute),
		Chain:     extract.NewChain(log),
		Log:       log,
	})

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts, srv
}

func TestHandleGetWeights_Defaults(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	resp, err := http.Get(ts.URL + "/api/v1/weights")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var w types.ScoringWeights
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&w))
	assert.Equal(t, config.DefaultWeights(), w)
}

func TestHandlePutWeights_RoundTrip(t *testing.T) {
	store := newFakeStore()
	ts, _ := newTestServer(t, store)

	body := `{"open_to_work": 25, "skill_match": 25, "job_stability": 25, "platform_engagement": 25}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/weights", strings.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, ok, _ := store.GetWeights(context.Background(), "default")
	require.True(t, ok)
	assert.Equal(t, 25.0, stored.OpenToWork)

	// Subsequent reads return the stored weights.
	getResp, err := http.Get(ts.URL + "/api/v1/weights")
	require.NoError(t, err)
	defer getResp.Body.Close()
	var w types.ScoringWeights
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&w))
	assert.Equal(t, stored, w)
}

func TestHandlePutWeights_RejectsBadSum(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	body := `{"open_to_work": 50, "skill_match": 30, "job_stability": 15, "platform_engagement": 15}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/weights", strings.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlePutWeights_RejectsBadJSON(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/weights", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRecompute(t *testing.T) {
	store := newFakeStore()
	store.scored = []scoring.ScoredCandidate{{ID: uuid.New()}, {ID: uuid.New()}}
	ts, _ := newTestServer(t, store)

	resp, err := http.Post(ts.URL+"/api/v1/weights/recompute", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out["updated"])
}

func TestHandleGetJob(t *testing.T) {
	store := newFakeStore()
	job := &types.EnrichmentJob{ID: uuid.New(), TenantID: "default", Status: types.JobCompleted}
	require.NoError(t, store.CreateJob(context.Background(), job))
	ts, _ := newTestServer(t, store)

	resp, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got types.EnrichmentJob
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, types.JobCompleted, got.Status)
}

func TestHandleGetJob_Errors(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	resp, err := http.Get(ts.URL + "/api/v1/jobs/not-a-uuid")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/jobs/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleStopJob_AlwaysSucceedsForKnownJob(t *testing.T) {
	store := newFakeStore()
	job := &types.EnrichmentJob{ID: uuid.New(), TenantID: "default", Status: types.JobCompleted}
	require.NoError(t, store.CreateJob(context.Background(), job))
	ts, _ := newTestServer(t, store)

	resp, err := http.Post(ts.URL+"/api/v1/jobs/"+job.ID.String()+"/stop", "application/json",
		strings.NewReader(`{"reason": "operator request"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		StopRequested bool `json:"stop_requested"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	// Job was not running, so there was nothing to stop, but the call is
	// still a success.
	assert.False(t, out.StopRequested)
}

func TestHandleUpload_NoFiles(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/v1/uploads", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleUpload_EndToEnd(t *testing.T) {
	store := newFakeStore()
	ts, _ := newTestServer(t, store)

	resume := `{"name": "Jane Doe", "email": "jane@example.com", "company": "Acme Inc", "skills": ["Go"]}`

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "jane.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(resume))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/v1/uploads", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted uploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	assert.Equal(t, 1, accepted.Files)

	require.Eventually(t, func() bool {
		return store.jobStatus(accepted.JobID) == types.JobCompleted
	}, 5*time.Second, 10*time.Millisecond)

	store.mu.Lock()
	saved := append([]string(nil), store.saved...)
	store.mu.Unlock()
	assert.Equal(t, []string{"Jane Doe"}, saved)

	// The session snapshot reflects the finished candidate.
	sessResp, err := http.Get(ts.URL + "/api/v1/sessions/" + accepted.SessionID)
	require.NoError(t, err)
	defer sessResp.Body.Close()
	require.Equal(t, http.StatusOK, sessResp.StatusCode)

	var session types.EnrichmentSession
	require.NoError(t, json.NewDecoder(sessResp.Body).Decode(&session))
	assert.Equal(t, 1, session.CompletedFiles)
	require.Len(t, session.Candidates, 1)
	assert.Equal(t, "Jane Doe", session.Candidates[0].Name)
}

func TestHandleGetSession_Unknown(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	resp, err := http.Get(ts.URL + "/api/v1/sessions/" + uuid.NewString())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, newFakeStore())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
