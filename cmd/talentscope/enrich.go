package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talentscope/talentscope/internal/config"
	"github.com/talentscope/talentscope/internal/db"
	"github.com/talentscope/talentscope/internal/enrich"
	"github.com/talentscope/talentscope/internal/extract"
	"github.com/talentscope/talentscope/internal/observability"
	"github.com/talentscope/talentscope/internal/pipeline"
	"github.com/talentscope/talentscope/internal/scheduler"
	"github.com/talentscope/talentscope/internal/types"
)

var (
	enrichDir    string
	enrichTenant string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run the enrichment pipeline over a directory of resume files",
	Long:  `Extract candidate records from every file in a directory, enrich and score them, and print the results. Persists to Postgres when DATABASE_URL is set.`,
	RunE:  runEnrich,
}

func init() {
	enrichCmd.Flags().StringVar(&enrichDir, "dir", "", "Directory of resume files (required)")
	enrichCmd.Flags().StringVar(&enrichTenant, "tenant", "default", "Tenant id to attribute candidates to")
	_ = enrichCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.EnrichBaseURL == "" {
		return fmt.Errorf("ENRICH_BASE_URL is required")
	}

	log := observability.NewLogger(cfg.LogLevel, false)
	ctx := context.Background()

	// Persistence is optional in CLI mode; without it results are printed only.
	var store pipeline.Store = pipeline.NopStore{}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("continuing without database persistence")
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				return err
			}
			store = database
		}
	}

	entries, err := os.ReadDir(enrichDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	chain := extract.NewChain(log)
	var records []*types.CandidateRecord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(enrichDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.WithField("file", entry.Name()).WithError(err).Warn("skipping unreadable file")
			continue
		}
		record, err := chain.Extract(ctx, extract.Upload{Filename: entry.Name(), Data: data})
		if err != nil {
			log.WithField("file", entry.Name()).WithError(err).Warn("skipping unparseable file")
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return fmt.Errorf("no candidate records could be extracted from %s", enrichDir)
	}

	client := enrich.NewHTTPClient(cfg.EnrichBaseURL, cfg.EnrichAPIKey, log, nil)
	sched := scheduler.New(client, log, nil, &scheduler.Options{
		MaxConcurrent: cfg.MaxConcurrentRequests,
		PacingDelay:   cfg.PacingDelay(),
		CacheTTL:      cfg.CacheTTL(),
		QueueSize:     256,
	})
	defer sched.Close()

	orch := pipeline.New(sched, store, log, nil, nil)
	job := &types.EnrichmentJob{
		ID:        uuid.New(),
		TenantID:  enrichTenant,
		Status:    types.JobPending,
		CreatedAt: time.Now(),
	}

	onProgress := func(ev pipeline.ProgressEvent) {
		if ev.Candidate != nil {
			fmt.Printf("  %-30s %5.2f  %s\n", ev.Candidate.Name, ev.Candidate.Score, ev.Candidate.Priority)
		}
		if ev.Failure != nil {
			fmt.Printf("  %-30s FAILED: %s\n", ev.Failure.File, ev.Failure.Error)
		}
	}

	fmt.Printf("Enriching %d candidates...\n", len(records))
	if err := orch.Run(ctx, job, records, *cfg.Weights, onProgress); err != nil {
		return err
	}
	fmt.Printf("Done: %d/%d candidates processed (job %s, status %s)\n",
		job.ProcessedRecords, job.TotalRecords, job.ID, job.Status)
	return nil
}
