package migration

import (
	"context"

	"ssea/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run catalog schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ssea_runs table")
	}

	if err := r.createResultsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create ssea_results table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Statements lists the DDL in execution order
func (r *MigrationRunner) Statements() []string {
	return []string{runsTableDDL, resultsTableDDL, indexesDDL}
}

const runsTableDDL = `
	CREATE TABLE IF NOT EXISTS ssea_runs (
		run_id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		output_dir TEXT NOT NULL DEFAULT '',
		prog VARCHAR(100) NOT NULL,
		fingerprint VARCHAR(64) NOT NULL,
		seed BIGINT NOT NULL,
		perms INTEGER NOT NULL,
		num_samples INTEGER NOT NULL,
		num_sample_sets INTEGER NOT NULL,
		params JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)
`

const resultsTableDDL = `
	CREATE TABLE IF NOT EXISTS ssea_results (
		run_id VARCHAR(64) NOT NULL REFERENCES ssea_runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		es DOUBLE PRECISION NOT NULL,
		nes DOUBLE PRECISION,
		pval DOUBLE PRECISION NOT NULL,
		fdr_q DOUBLE PRECISION NOT NULL,
		hit_count INTEGER NOT NULL,
		set_size INTEGER NOT NULL,
		degenerate BOOLEAN NOT NULL DEFAULT false,
		record JSONB NOT NULL,
		PRIMARY KEY (run_id, position)
	)
`

const indexesDDL = `
	CREATE INDEX IF NOT EXISTS idx_ssea_runs_created_at ON ssea_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_ssea_runs_fingerprint ON ssea_runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_ssea_results_name ON ssea_results(name)
`

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, runsTableDDL)
	return err
}

func (r *MigrationRunner) createResultsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, resultsTableDDL)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, indexesDDL)
	return err
}
