// Package server provides the HTTP REST API for the talent pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/talentscope/talentscope/internal/broadcast"
	"github.com/talentscope/talentscope/internal/config"
	"github.com/talentscope/talentscope/internal/db"
	"github.com/talentscope/talentscope/internal/extract"
	"github.com/talentscope/talentscope/internal/pipeline"
	"github.com/talentscope/talentscope/internal/scheduler"
	"github.com/talentscope/talentscope/internal/scoring"
	"github.com/talentscope/talentscope/internal/types"
)

// Store is the persistence surface the API needs. *db.DB satisfies it.
type Store interface {
	pipeline.Store
	scoring.BulkStore
	CreateJob(ctx context.Context, job *types.EnrichmentJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*types.EnrichmentJob, error)
	ListActivities(ctx context.Context, jobID uuid.UUID) ([]db.Activity, error)
	GetWeights(ctx context.Context, tenantID string) (types.ScoringWeights, bool, error)
	SetWeights(ctx context.Context, tenantID string, w types.ScoringWeights) error
}

// Server wires the REST API onto the pipeline components.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	store      Store
	orch       *pipeline.Orchestrator
	sched      *scheduler.Scheduler
	bus        *broadcast.Broadcaster
	chain      *extract.Chain
	limiter    *rateLimiter
	log        *logrus.Logger
}

// Deps bundles the constructed collaborators injected into the server.
type Deps struct {
	Store     Store
	Orch      *pipeline.Orchestrator
	Scheduler *scheduler.Scheduler
	Bus       *broadcast.Broadcaster
	Chain     *extract.Chain
	Log       *logrus.Logger
}

// New creates a server instance.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		store:   deps.Store,
		orch:    deps.Orch,
		sched:   deps.Scheduler,
		bus:     deps.Bus,
		chain:   deps.Chain,
		limiter: newRateLimiter(defaultRateLimit, time.Minute),
		log:     deps.Log,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes builds the API mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/uploads", s.handleUpload)
	mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /api/v1/jobs/{id}/activities", s.handleJobActivities)
	mux.HandleFunc("POST /api/v1/jobs/{id}/stop", s.handleStopJob)
	mux.HandleFunc("GET /api/v1/weights", s.handleGetWeights)
	mux.HandleFunc("PUT /api/v1/weights", s.handlePutWeights)
	mux.HandleFunc("POST /api/v1/weights/recompute", s.handleRecompute)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}/events", s.handleSessionEvents)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

	return s.withRateLimit(mux)
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.log.WithField("addr", s.httpServer.Addr).Info("server listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-stop:
		case <-ctx.Done():
			return nil
		}
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// tenantID reads the tenant from the request, defaulting to a single shared
// tenant. Multi-tenant isolation beyond this key is out of scope.
func tenantID(r *http.Request) string {
	if t := r.Header.Get("X-Tenant-ID"); t != "" {
		return t
	}
	return "default"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
