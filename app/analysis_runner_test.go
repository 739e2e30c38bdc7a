package app

import (
	"bytes"
	"context"
	"testing"

	"ssea/domain/core"
	"ssea/domain/enrichment"
	"ssea/domain/ranking"
	"ssea/internal"
	"ssea/internal/config"
	"ssea/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) *int64 {
	return &seed
}

func testConfig() config.Analysis {
	cfg := config.DefaultAnalysis()
	cfg.Perms = 200
	cfg.Seed = seeded(11)
	cfg.Workers = 4
	return cfg
}

func TestRun_RoundTrip(t *testing.T) {
	ds := testkit.RoundTrip()
	cfg := config.DefaultAnalysis()
	cfg.WeightMethodHit = "unweighted"
	cfg.WeightMethodMiss = "unweighted"
	cfg.Perms = 0
	cfg.Seed = seeded(7)
	cfg.Workers = 1

	out, err := NewAnalysisRunner(cfg).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	res := out.Results[0]
	assert.InDelta(t, 2.0/3.0, res.Score.ES, 1e-12)
	assert.Equal(t, 1, res.Score.Index)
	assert.Equal(t, []int{0, 1, 5}, res.Score.Hits)
	assert.Equal(t, "B", res.ESSample)
	assert.Equal(t, 1, res.Null.Permutations)
	assert.Equal(t, 1, out.Manifest.Parameters.Perms)
	assert.Equal(t, int64(7), out.Manifest.Parameters.Seed)
	assert.False(t, out.Manifest.Parameters.SeedGenerated)

	expected := []float64{1.0 / 3, 2.0 / 3, 1.0 / 3, 0, -1.0 / 3, 0}
	for i, v := range expected {
		assert.InDelta(t, v, res.Score.Profile[i], 1e-12, "rank %d", i)
	}
}

func TestRun_InvalidConfigBeforeWork(t *testing.T) {
	ds := testkit.RoundTrip()
	cfg := testConfig()
	cfg.ConfInt = 1.5

	var counter testkit.ScorerCounter
	runner := NewAnalysisRunner(cfg, WithScorerFactory(counter.Factory()))

	out, err := runner.Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, core.IsInvalidConfig(err))

	var cfgErr *core.InvalidConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "conf_int", cfgErr.Field)
	assert.Zero(t, counter.Built())
	assert.Zero(t, counter.Calls())
}

func TestRun_UnknownWeightMethod(t *testing.T) {
	ds := testkit.RoundTrip()
	cfg := testConfig()
	cfg.WeightMethodMiss = "weighted_p3"

	var counter testkit.ScorerCounter
	_, err := NewAnalysisRunner(cfg, WithScorerFactory(counter.Factory())).
		Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.Error(t, err)
	assert.True(t, core.IsInvalidConfig(err))
	assert.Zero(t, counter.Calls())
}

func TestRun_MalformedInput(t *testing.T) {
	cfg := testConfig()

	t.Run("duplicate sample", func(t *testing.T) {
		_, err := NewAnalysisRunner(cfg).Run(context.Background(),
			[]string{"A", "B", "A"}, []float64{1, 2, 3},
			[]ranking.SampleSet{ranking.NewSampleSet("s", "", []string{"A"})})
		require.Error(t, err)
		assert.True(t, core.IsMalformedInput(err))
	})

	t.Run("duplicate set name", func(t *testing.T) {
		ds := testkit.RoundTrip()
		sets := append(ds.Sets, ranking.NewSampleSet("ABF", "again", []string{"C"}))
		_, err := NewAnalysisRunner(cfg).Run(context.Background(), ds.Samples, ds.Weights, sets)
		require.Error(t, err)
		assert.True(t, core.IsMalformedInput(err))
	})
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	ds := testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Generate()

	for _, method := range []string{"percentile", "bootstrap"} {
		t.Run(method, func(t *testing.T) {
			sequential := testConfig()
			sequential.CIMethod = method
			sequential.BootstrapResamples = 50
			sequential.Workers = 1

			parallel := sequential
			parallel.Workers = 8

			a, err := NewAnalysisRunner(sequential).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
			require.NoError(t, err)
			b, err := NewAnalysisRunner(parallel).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
			require.NoError(t, err)

			assert.Equal(t, a.Manifest.Fingerprint.Hash, b.Manifest.Fingerprint.Hash)
			require.Len(t, b.Results, len(a.Results))
			for i := range a.Results {
				ra, rb := a.Results[i], b.Results[i]
				assert.Equal(t, ra.SampleSet.Name, rb.SampleSet.Name)
				assert.Equal(t, ra.Score.ES, rb.Score.ES)
				assert.Equal(t, ra.Null.Positive, rb.Null.Positive)
				assert.Equal(t, ra.Null.Negative, rb.Null.Negative)
				assert.Equal(t, ra.Significance.PValue, rb.Significance.PValue)
				assert.Equal(t, ra.Significance.NESDefined, rb.Significance.NESDefined)
				if ra.Significance.NESDefined {
					assert.Equal(t, ra.Significance.NES, rb.Significance.NES)
				}
				if ra.Significance.CI.Defined {
					assert.Equal(t, ra.Significance.CI, rb.Significance.CI)
				}
				assert.Equal(t, ra.FDRQValue, rb.FDRQValue)
			}
		})
	}
}

func TestRun_ResultsInInputOrder(t *testing.T) {
	ds := testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Generate()

	out, err := NewAnalysisRunner(testConfig()).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.NoError(t, err)
	require.Len(t, out.Results, len(ds.Sets))

	for i, res := range out.Results {
		assert.Equal(t, ds.Sets[i].Name, res.SampleSet.Name)
		assert.GreaterOrEqual(t, res.FDRQValue, res.Significance.PValue-1e-12)
		assert.Equal(t, 200, res.Null.Permutations)
	}

	// planted sets sit at the head of the ranking
	for _, res := range out.Results[:2] {
		assert.Greater(t, res.Score.ES, 0.0)
		assert.Less(t, res.Significance.PValue, 0.05)
	}
}

func TestRun_DegenerateSetIsFlagged(t *testing.T) {
	ds := testkit.RoundTrip()
	sets := append(ds.Sets, ranking.NewSampleSet("absent", "", []string{"X", "Y"}))

	out, err := NewAnalysisRunner(testConfig()).Run(context.Background(), ds.Samples, ds.Weights, sets)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	ok, degenerate := out.Results[0], out.Results[1]
	assert.False(t, ok.Degenerate())

	assert.True(t, degenerate.Degenerate())
	assert.Equal(t, enrichment.EmptyIntersection, degenerate.Score.Degeneracy)
	assert.Equal(t, 0.0, degenerate.Score.ES)
	assert.Equal(t, 1.0, degenerate.Significance.PValue)
	assert.False(t, degenerate.Significance.NESDefined)
	assert.Equal(t, 2, degenerate.MissingMembers)
	assert.ErrorIs(t, degenerate.DegenerateErr(), core.ErrDegenerateSampleSet)
}

func TestRun_LogsParametersAndRecords(t *testing.T) {
	ds := testkit.RoundTrip()
	var buf bytes.Buffer
	runner := NewAnalysisRunner(testConfig(), WithLogger(internal.NewLoggerTo(&buf, internal.LogLevelInfo)))

	out, err := runner.Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "fingerprint "+out.Manifest.Fingerprint.Hash.Short())
	assert.Contains(t, buf.String(), out.Manifest.RunID.String())

	records := out.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "ABF", records[0].Name)
	assert.Equal(t, out.Results[0].Score.ES, records[0].ES)
}

func TestRun_GeneratedSeedIsRecorded(t *testing.T) {
	ds := testkit.RoundTrip()
	cfg := testConfig()
	cfg.Seed = nil

	out, err := NewAnalysisRunner(cfg).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.NoError(t, err)
	assert.True(t, out.Manifest.Parameters.SeedGenerated)

	// replaying with the recorded seed reproduces the null
	cfg.Seed = seeded(out.Manifest.Parameters.Seed)
	replay, err := NewAnalysisRunner(cfg).Run(context.Background(), ds.Samples, ds.Weights, ds.Sets)
	require.NoError(t, err)
	assert.Equal(t, out.Results[0].Null.Positive, replay.Results[0].Null.Positive)
	assert.Equal(t, out.Results[0].Significance.PValue, replay.Results[0].Significance.PValue)
}

func TestRun_CancelledContextReturnsNothing(t *testing.T) {
	ds := testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Generate()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewAnalysisRunner(testConfig()).Run(ctx, ds.Samples, ds.Weights, ds.Sets)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}
