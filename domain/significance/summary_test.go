package significance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	da := NewDistributionAnalyzer()

	s, err := da.Summarize([]float64{0.1, 0.2, 0.3, 0.4, 0.5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 0.3, s.Mean, 1e-12)
	assert.InDelta(t, 0.1, s.Min, 1e-12)
	assert.InDelta(t, 0.5, s.Max, 1e-12)
	assert.InDelta(t, 0.3, s.Median, 1e-12)
	assert.InDelta(t, 0.158113883, s.StdDev, 1e-6)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.GreaterOrEqual(t, s.Q75, s.Median)
}

func TestSummarize_Empty(t *testing.T) {
	s, err := NewDistributionAnalyzer().Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, NullSummary{}, s)
}

func TestSummarize_Single(t *testing.T) {
	s, err := NewDistributionAnalyzer().Summarize([]float64{-0.4})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, -0.4, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarize_SmallBuckets(t *testing.T) {
	da := NewDistributionAnalyzer()

	two, err := da.Summarize([]float64{0.4, 0.2})
	require.NoError(t, err)
	assert.Equal(t, 2, two.Count)
	assert.Equal(t, 0.2, two.Q25)
	assert.Equal(t, 0.4, two.Q75)
	assert.InDelta(t, 0.3, two.Median, 1e-12)

	three, err := da.Summarize([]float64{-0.7, -0.1, -0.3})
	require.NoError(t, err)
	assert.Equal(t, 3, three.Count)
	assert.Equal(t, -0.7, three.Q25)
	assert.Equal(t, -0.1, three.Q75)
	assert.InDelta(t, -0.3, three.Median, 1e-12)
}

func TestNormalTailP(t *testing.T) {
	da := NewDistributionAnalyzer()
	summary := NullSummary{Count: 100, Mean: 0.3, StdDev: 0.1}

	p, ok := da.NormalTailP(0.3, summary)
	require.True(t, ok)
	assert.InDelta(t, 0.5, p, 1e-9)

	far, ok := da.NormalTailP(0.7, summary)
	require.True(t, ok)
	assert.Less(t, far, 0.001)

	neg, ok := da.NormalTailP(-0.5, NullSummary{Count: 10, Mean: -0.3, StdDev: 0.1})
	require.True(t, ok)
	assert.InDelta(t, 0.02275, neg, 1e-4)

	_, ok = da.NormalTailP(0.3, NullSummary{Count: 1, Mean: 0.3})
	assert.False(t, ok)
}
