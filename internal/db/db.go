// Package db provides PostgreSQL persistence for candidates, enrichment jobs
// and the activity log.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the schema when it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		skills TEXT[] NOT NULL DEFAULT '{}',
		score NUMERIC(4,2) NOT NULL DEFAULT 0,
		priority TEXT NOT NULL DEFAULT 'Low',
		open_to_work_score NUMERIC(4,2) NOT NULL DEFAULT 0,
		skill_match_score NUMERIC(4,2) NOT NULL DEFAULT 0,
		job_stability_score NUMERIC(4,2) NOT NULL DEFAULT 0,
		platform_engagement_score NUMERIC(4,2) NOT NULL DEFAULT 0,
		company_difference TEXT NOT NULL DEFAULT '',
		company_score NUMERIC(4,2) NOT NULL DEFAULT 0,
		hireability_score NUMERIC(4,2) NOT NULL DEFAULT 0,
		hireability_factors TEXT[] NOT NULL DEFAULT '{}',
		potential_to_join TEXT NOT NULL DEFAULT 'Unknown',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS candidates_tenant_email_idx
		ON candidates (tenant_id, email) WHERE email <> ''`,
	`CREATE TABLE IF NOT EXISTS enrichment_jobs (
		id UUID PRIMARY KEY,
		tenant_id TEXT NOT NULL DEFAULT '',
		total_records INT NOT NULL DEFAULT 0,
		processed_records INT NOT NULL DEFAULT 0,
		progress INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id BIGSERIAL PRIMARY KEY,
		job_id UUID NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS scoring_weights (
		tenant_id TEXT PRIMARY KEY,
		open_to_work NUMERIC(6,2) NOT NULL,
		skill_match NUMERIC(6,2) NOT NULL,
		job_stability NUMERIC(6,2) NOT NULL,
		platform_engagement NUMERIC(6,2) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
