package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"ssea/app"
	"ssea/domain/ranking"
	"ssea/domain/result"
	"ssea/domain/run"
	"ssea/internal/config"
	"ssea/internal/migration"
	"ssea/internal/testkit"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRun(t *testing.T) *run.Run {
	t.Helper()
	ds := testkit.RoundTrip()
	sets := append(ds.Sets, ranking.NewSampleSet("absent", "", []string{"X"}))

	cfg := config.DefaultAnalysis()
	cfg.Perms = 20
	seed := int64(5)
	cfg.Seed = &seed

	out, err := app.NewAnalysisRunner(cfg).Run(context.Background(), ds.Samples, ds.Weights, sets)
	require.NoError(t, err)
	return out
}

func TestNewRunRow(t *testing.T) {
	r := catalogRun(t)

	row, err := newRunRow("myssea", "SSEA_x", r)
	require.NoError(t, err)
	assert.Equal(t, r.Manifest.RunID, row.RunID)
	assert.Equal(t, "myssea", row.Name)
	assert.Equal(t, int64(5), row.Seed)
	assert.Equal(t, 20, row.Perms)
	assert.Equal(t, 2, row.NumSampleSets)
	assert.Equal(t, r.Manifest.Fingerprint.Hash.String(), row.Fingerprint)

	var params run.Parameters
	require.NoError(t, json.Unmarshal(row.Params, &params))
	assert.Equal(t, r.Manifest.Parameters, params)
}

func TestNewResultRows(t *testing.T) {
	r := catalogRun(t)

	rows, err := newResultRows(r)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, "ABF", rows[0].Name)
	assert.True(t, rows[0].NES.Valid)
	assert.False(t, rows[0].Degenerate)

	assert.Equal(t, "absent", rows[1].Name)
	assert.False(t, rows[1].NES.Valid)
	assert.True(t, rows[1].Degenerate)

	var rec result.Record
	require.NoError(t, json.Unmarshal(rows[0].Record, &rec))
	assert.Nil(t, rec.Details)
	assert.Equal(t, r.Results[0].Score.ES, rec.ES)
}

// TestRunRepository_Postgres needs a scratch database in SSEA_TEST_DATABASE_URL
func TestRunRepository_Postgres(t *testing.T) {
	url := os.Getenv("SSEA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SSEA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	repo := NewRunRepository(db)
	r := catalogRun(t)
	require.NoError(t, repo.SaveRun(ctx, "catalog-test", t.TempDir(), r))
	assert.Error(t, repo.SaveRun(ctx, "catalog-test", t.TempDir(), r))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	records, err := repo.GetRecords(ctx, r.Manifest.RunID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ABF", records[0].Name)

	found, err := repo.FindSampleSets(ctx, []string{"absent"}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	_, err = db.ExecContext(ctx, `DELETE FROM ssea_runs WHERE run_id = $1`, r.Manifest.RunID.String())
	require.NoError(t, err)
}
