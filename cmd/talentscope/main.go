// Package main provides the entry point for the talentscope pipeline server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talentscope",
	Short: "Candidate enrichment and scoring pipeline",
	Long:  "talentscope ingests raw candidate records, enriches them through an external profile-lookup service, and produces weighted employability scores used to prioritize a talent pipeline.",
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
