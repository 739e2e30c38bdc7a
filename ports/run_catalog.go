package ports

import (
	"context"
	"time"

	"ssea/domain/core"
	"ssea/domain/result"
	"ssea/domain/run"
)

// RunCatalog records finished runs so they can be listed and compared later
type RunCatalog interface {
	SaveRun(ctx context.Context, name, outputDir string, r *run.Run) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	GetRecords(ctx context.Context, runID core.RunID) ([]result.Record, error)
	FindSampleSets(ctx context.Context, names []string, since time.Time) ([]result.Record, error)
}

// RunSummary is one catalog row
type RunSummary struct {
	RunID         core.RunID `db:"run_id" json:"run_id"`
	Name          string     `db:"name" json:"name"`
	OutputDir     string     `db:"output_dir" json:"output_dir"`
	Prog          string     `db:"prog" json:"prog"`
	Fingerprint   string     `db:"fingerprint" json:"fingerprint"`
	Seed          int64      `db:"seed" json:"seed"`
	Perms         int        `db:"perms" json:"perms"`
	NumSamples    int        `db:"num_samples" json:"num_samples"`
	NumSampleSets int        `db:"num_sample_sets" json:"num_sample_sets"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
