package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ssea/domain/core"
	"ssea/domain/result"
	"ssea/domain/run"
	"ssea/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RunRepository implements ports.RunCatalog for PostgreSQL
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run catalog
func NewRunRepository(db *sqlx.DB) ports.RunCatalog {
	return &RunRepository{db: db}
}

type runRow struct {
	ports.RunSummary
	Params []byte `db:"params"`
}

type resultRow struct {
	RunID       string          `db:"run_id"`
	Position    int             `db:"position"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	ES          float64         `db:"es"`
	NES         sql.NullFloat64 `db:"nes"`
	PValue      float64         `db:"pval"`
	FDRQValue   float64         `db:"fdr_q"`
	HitCount    int             `db:"hit_count"`
	SetSize     int             `db:"set_size"`
	Degenerate  bool            `db:"degenerate"`
	Record      []byte          `db:"record"`
}

func newRunRow(name, outputDir string, r *run.Run) (runRow, error) {
	m := r.Manifest
	params, err := json.Marshal(m.Parameters)
	if err != nil {
		return runRow{}, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	return runRow{
		RunSummary: ports.RunSummary{
			RunID:         m.RunID,
			Name:          name,
			OutputDir:     outputDir,
			Prog:          m.CodeVersion,
			Fingerprint:   m.Fingerprint.Hash.String(),
			Seed:          m.Parameters.Seed,
			Perms:         m.Parameters.Perms,
			NumSamples:    m.NumSamples,
			NumSampleSets: m.NumSampleSets,
			CreatedAt:     m.CreatedAt.Time().UTC(),
		},
		Params: params,
	}, nil
}

func newResultRows(r *run.Run) ([]resultRow, error) {
	records := r.Records()
	rows := make([]resultRow, len(records))
	for i, full := range records {
		rec := full.Summary("")
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal record %s: %w", rec.Name, err)
		}
		row := resultRow{
			RunID:       r.Manifest.RunID.String(),
			Position:    i,
			Name:        rec.Name,
			Description: rec.Description,
			ES:          rec.ES,
			PValue:      rec.PValue,
			FDRQValue:   rec.FDRQValue,
			HitCount:    rec.HitCount,
			SetSize:     rec.SetSize,
			Degenerate:  rec.Degenerate,
			Record:      data,
		}
		if rec.NES != nil {
			row.NES = sql.NullFloat64{Float64: *rec.NES, Valid: true}
		}
		rows[i] = row
	}
	return rows, nil
}

// SaveRun inserts the run and its results in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, name, outputDir string, rn *run.Run) error {
	row, err := newRunRow(name, outputDir, rn)
	if err != nil {
		return err
	}
	results, err := newResultRows(rn)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO ssea_runs (
			run_id, name, output_dir, prog, fingerprint, seed, perms,
			num_samples, num_sample_sets, params, created_at
		) VALUES (
			:run_id, :name, :output_dir, :prog, :fingerprint, :seed, :perms,
			:num_samples, :num_sample_sets, :params, :created_at
		)
	`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("run %s already recorded", row.RunID)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range results {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO ssea_results (
				run_id, position, name, description, es, nes, pval, fdr_q,
				hit_count, set_size, degenerate, record
			) VALUES (
				:run_id, :position, :name, :description, :es, :nes, :pval, :fdr_q,
				:hit_count, :set_size, :degenerate, :record
			)
		`, res)
		if err != nil {
			return fmt.Errorf("failed to insert result %s: %w", res.Name, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []ports.RunSummary
	err := r.db.SelectContext(ctx, &runs, `
		SELECT run_id, name, output_dir, prog, fingerprint, seed, perms,
		       num_samples, num_sample_sets, created_at
		FROM ssea_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	return runs, err
}

// GetRecords returns the summary records of a run in sample set order
func (r *RunRepository) GetRecords(ctx context.Context, runID core.RunID) ([]result.Record, error) {
	var raw [][]byte
	err := r.db.SelectContext(ctx, &raw, `
		SELECT record FROM ssea_results WHERE run_id = $1 ORDER BY position
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	records := make([]result.Record, len(raw))
	for i, data := range raw {
		if err := json.Unmarshal(data, &records[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}
	return records, nil
}

// FindSampleSets returns the most recent results for the named sample sets
// across all runs
func (r *RunRepository) FindSampleSets(ctx context.Context, names []string, since time.Time) ([]result.Record, error) {
	var raw [][]byte
	err := r.db.SelectContext(ctx, &raw, `
		SELECT res.record
		FROM ssea_results res
		JOIN ssea_runs runs ON runs.run_id = res.run_id
		WHERE res.name = ANY($1) AND runs.created_at >= $2
		ORDER BY runs.created_at DESC, res.position
	`, pq.Array(names), since)
	if err != nil {
		return nil, fmt.Errorf("failed to search results: %w", err)
	}
	records := make([]result.Record, len(raw))
	for i, data := range raw {
		if err := json.Unmarshal(data, &records[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
	}
	return records, nil
}
