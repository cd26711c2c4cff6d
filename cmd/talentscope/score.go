package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talentscope/talentscope/internal/config"
	"github.com/talentscope/talentscope/internal/enrich"
	"github.com/talentscope/talentscope/internal/observability"
	"github.com/talentscope/talentscope/internal/scheduler"
	"github.com/talentscope/talentscope/internal/scoring"
	"github.com/talentscope/talentscope/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [files...]",
	Short: "Batch-score structured candidate files",
	Long:  `Score one or more JSON candidate records in a single combined call. A malformed batch response from the scoring service degrades to per-candidate calls automatically.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.EnrichBaseURL == "" {
		return fmt.Errorf("ENRICH_BASE_URL is required")
	}

	log := observability.NewLogger(cfg.LogLevel, false)

	records := make([]*types.CandidateRecord, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		var record types.CandidateRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if record.Name == "" {
			return fmt.Errorf("%s: candidate record has no name", path)
		}
		records = append(records, &record)
	}

	client := enrich.NewHTTPClient(cfg.EnrichBaseURL, cfg.EnrichAPIKey, log, nil)
	sched := scheduler.New(client, log, nil, &scheduler.Options{
		MaxConcurrent: cfg.MaxConcurrentRequests,
		PacingDelay:   cfg.PacingDelay(),
		CacheTTL:      cfg.CacheTTL(),
		QueueSize:     64,
	})
	defer sched.Close()

	resp, err := sched.Submit(context.Background(), scheduler.Request{
		Type:    scheduler.TypeScore,
		Records: records,
		Weights: *cfg.Weights,
	})
	if err != nil {
		return fmt.Errorf("batch scoring failed: %w", err)
	}

	fmt.Printf("%-30s %8s %8s %10s %10s %7s %8s\n",
		"NAME", "OPEN", "SKILLS", "STABILITY", "ENGAGEMENT", "TOTAL", "PRIORITY")
	for i, record := range records {
		c := resp.Components[i]
		total := scoring.Aggregate(c, *cfg.Weights)
		fmt.Printf("%-30s %8.2f %8.2f %10.2f %10.2f %7.2f %8s\n",
			record.Name, c.OpenToWork, c.SkillMatch, c.JobStability,
			c.PlatformEngagement, total, scoring.PriorityFor(total))
	}
	return nil
}
