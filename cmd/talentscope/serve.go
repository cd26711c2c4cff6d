package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/talentscope/talentscope/internal/broadcast"
	"github.com/talentscope/talentscope/internal/config"
	"github.com/talentscope/talentscope/internal/db"
	"github.com/talentscope/talentscope/internal/enrich"
	"github.com/talentscope/talentscope/internal/extract"
	"github.com/talentscope/talentscope/internal/observability"
	"github.com/talentscope/talentscope/internal/pipeline"
	"github.com/talentscope/talentscope/internal/scheduler"
	"github.com/talentscope/talentscope/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing upload, job, weights and progress-stream endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required in server mode")
	}
	if cfg.EnrichBaseURL == "" {
		return fmt.Errorf("ENRICH_BASE_URL is required in server mode")
	}

	log := observability.NewLogger(cfg.LogLevel, true)
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return err
	}

	client := enrich.NewHTTPClient(cfg.EnrichBaseURL, cfg.EnrichAPIKey, log, nil)
	sched := scheduler.New(client, log, metrics, &scheduler.Options{
		MaxConcurrent: cfg.MaxConcurrentRequests,
		PacingDelay:   cfg.PacingDelay(),
		CacheTTL:      cfg.CacheTTL(),
		QueueSize:     256,
	})
	defer sched.Close()

	orch := pipeline.New(sched, database, log, metrics, nil)
	bus := broadcast.New(log, 0)
	chain := extract.NewChain(log)

	srv := server.New(cfg, server.Deps{
		Store:     database,
		Orch:      orch,
		Scheduler: sched,
		Bus:       bus,
		Chain:     chain,
		Log:       log,
	})
	return srv.Start()
}
