package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ssea/adapters/report"
	"ssea/app"
	"ssea/domain/core"
	"ssea/domain/result"
	"ssea/domain/run"
	"ssea/internal/config"
	apperrors "ssea/internal/errors"
	"ssea/internal/testkit"
	"ssea/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRun(t *testing.T) (string, *report.Summary) {
	t.Helper()
	ds := testkit.RoundTrip()
	cfg := config.DefaultAnalysis()
	cfg.Perms = 20
	seed := int64(9)
	cfg.Seed = &seed

	r, err := app.NewAnalysisRunner(cfg).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.NoError(t, err)

	render, err := report.NewRenderContext()
	require.NoError(t, err)
	dir := t.TempDir()
	summary, err := report.NewWriter(dir, "served", render, nil).WriteRun(r)
	require.NoError(t, err)
	return dir, summary
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Endpoints(t *testing.T) {
	dir, summary := writeRun(t)
	s, err := NewServer(dir, Options{GinMode: gin.TestMode})
	require.NoError(t, err)
	assert.Equal(t, "served", s.Name())

	t.Run("summary", func(t *testing.T) {
		w := get(t, s, "/api/summary")
		require.Equal(t, http.StatusOK, w.Code)
		var got report.Summary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, summary.RunID, got.RunID)
		require.Len(t, got.Results, 1)
		assert.Equal(t, "ABF", got.Results[0].Name)
	})

	t.Run("set", func(t *testing.T) {
		w := get(t, s, "/api/sets/ABF")
		require.Equal(t, http.StatusOK, w.Code)
		var rec result.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
		require.NotNil(t, rec.Details)
		assert.Len(t, rec.Details.RunningSum, 6)
	})

	t.Run("unknown set", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, s, "/api/sets/nope").Code)
	})

	t.Run("report files", func(t *testing.T) {
		w := get(t, s, "/reports/served.ABF.eplot.svg")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<svg")

		w = get(t, s, "/reports/")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "served.ABF.html")
	})

	t.Run("root redirects", func(t *testing.T) {
		w := get(t, s, "/")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/reports/", w.Header().Get("Location"))
	})

	t.Run("runs without catalog", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(t, s, "/api/runs").Code)
	})
}

type fakeCatalog struct {
	runs    []ports.RunSummary
	records map[core.RunID][]result.Record
}

func (f *fakeCatalog) SaveRun(context.Context, string, string, *run.Run) error {
	return nil
}

func (f *fakeCatalog) ListRuns(_ context.Context, limit int) ([]ports.RunSummary, error) {
	return f.runs[:min(limit, len(f.runs))], nil
}

func (f *fakeCatalog) GetRecords(_ context.Context, id core.RunID) ([]result.Record, error) {
	recs, ok := f.records[id]
	if !ok {
		return nil, errors.New("run not found")
	}
	return recs, nil
}

func (f *fakeCatalog) FindSampleSets(context.Context, []string, time.Time) ([]result.Record, error) {
	return nil, nil
}

func TestServer_Catalog(t *testing.T) {
	dir, summary := writeRun(t)
	catalog := &fakeCatalog{
		runs: []ports.RunSummary{{RunID: summary.RunID, Name: "served"}},
		records: map[core.RunID][]result.Record{
			summary.RunID: summary.Results,
		},
	}
	s, err := NewServer(dir, Options{Name: "served", GinMode: gin.TestMode, Catalog: catalog})
	require.NoError(t, err)

	w := get(t, s, "/api/runs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	var runs []ports.RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].RunID)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/runs?limit=zero").Code)

	w = get(t, s, "/api/runs/"+summary.RunID.String())
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/runs/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/runs/"+core.NewRunID().String()).Code)
}

func TestFindSummary(t *testing.T) {
	dir, _ := writeRun(t)
	name, err := FindSummary(dir)
	require.NoError(t, err)
	assert.Equal(t, "served", name)

	_, err = FindSummary(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}
