package result

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"ssea/domain/core"
	"ssea/domain/enrichment"
	"ssea/domain/ranking"
	"ssea/domain/significance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() Input {
	return Input{
		SampleSet: ranking.NewSampleSet("ABF", "top and bottom", []string{"A", "B", "F", "Z"}),
		Score: enrichment.Score{
			ES:      2.0 / 3,
			Index:   1,
			Hits:    []int{0, 1, 5},
			Profile: []float64{1.0 / 3, 2.0 / 3, 1.0 / 3, 0, -1.0 / 3, 0},
		},
		Null: enrichment.NullDistribution{
			Permutations: 4,
			Positive:     []float64{0.2, 0.4, 0.7},
			Negative:     []float64{-0.3},
		},
		Significance: significance.Estimate{
			PValue:     0.5,
			NES:        1.55,
			NESDefined: true,
			CI:         significance.Interval{Lower: 0.2, Upper: 0.7, Defined: true},
			BucketSize: 3,
		},
		FDRQValue:      0.5,
		MissingMembers: 1,
		Seed:           99,
		ESSample:       "B",
	}
}

func TestNew_RecordFields(t *testing.T) {
	r, err := New(sampleInput(), significance.NewDistributionAnalyzer())
	require.NoError(t, err)

	assert.Equal(t, 3, r.HitCount())
	assert.Equal(t, 4, r.SetSize())
	assert.InDelta(t, 0.75, r.HitRate(), 1e-12)
	assert.False(t, r.Degenerate())
	assert.NoError(t, r.DegenerateErr())
	assert.True(t, r.NormalTailOK)

	rec := r.Record()
	assert.Equal(t, "ABF", rec.Name)
	assert.Equal(t, "top and bottom", rec.Description)
	require.NotNil(t, rec.NES)
	assert.Equal(t, 1.55, *rec.NES)
	require.NotNil(t, rec.CILower)
	assert.Equal(t, 0.2, *rec.CILower)
	assert.Equal(t, 0.7, *rec.CIUpper)
	assert.InDelta(t, 75.0, rec.HitPercent, 1e-9)
	assert.Equal(t, 1, rec.ESRank)
	assert.Equal(t, "B", rec.ESSample)
	assert.Equal(t, 3, rec.NullPositive.Count)
	assert.Equal(t, 0.2, rec.NullPositive.Q25)
	assert.Equal(t, 0.7, rec.NullPositive.Q75)
	assert.Equal(t, 1, rec.NullNegative.Count)
	assert.Equal(t, -0.3, rec.NullNegative.Q25)
	assert.Equal(t, 4, rec.Permutations)
	require.NotNil(t, rec.Details)
	assert.Equal(t, []int{0, 1, 5}, rec.Details.HitIndices)
	assert.Len(t, rec.Details.RunningSum, 6)

	// the export is a copy
	rec.Details.HitIndices[0] = 42
	assert.Equal(t, 0, r.Score.Hits[0])
}

func TestRecord_UndefinedStatisticsEncodeAsNull(t *testing.T) {
	in := sampleInput()
	in.Significance = significance.Estimate{
		PValue:           1,
		NES:              math.NaN(),
		CI:               significance.Interval{Lower: math.NaN(), Upper: math.NaN()},
		InsufficientNull: true,
	}
	r, err := New(in, significance.NewDistributionAnalyzer())
	require.NoError(t, err)

	data, err := json.Marshal(r.Record())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["nes"])
	assert.Contains(t, decoded, "nes")
	assert.Nil(t, decoded["ci_lower"])
	assert.Nil(t, decoded["ci_upper"])
	assert.Equal(t, true, decoded["insufficient_null"])
}

func TestRecord_Degenerate(t *testing.T) {
	in := sampleInput()
	in.Score = enrichment.Score{Profile: make([]float64, 6), Hits: []int{}, Degeneracy: enrichment.EmptyIntersection}
	in.Null = enrichment.NullDistribution{}
	in.Significance = significance.Estimate{PValue: 1, NES: math.NaN(), InsufficientNull: true}

	r, err := New(in, significance.NewDistributionAnalyzer())
	require.NoError(t, err)

	rec := r.Record()
	assert.True(t, rec.Degenerate)
	assert.Equal(t, "empty_intersection", rec.DegenerateReason)
	assert.Equal(t, 0.0, rec.ES)
	assert.Equal(t, 1.0, rec.PValue)
	assert.Nil(t, rec.NormalTailP)
	assert.True(t, errors.Is(r.DegenerateErr(), core.ErrDegenerateSampleSet))
}

func TestRecord_Summary(t *testing.T) {
	r, err := New(sampleInput(), significance.NewDistributionAnalyzer())
	require.NoError(t, err)

	rec := r.Record()
	sum := rec.Summary("myssea.ABF.json")
	assert.Nil(t, sum.Details)
	assert.Equal(t, "myssea.ABF.json", sum.DetailsFile)
	assert.NotNil(t, rec.Details, "Summary must not modify the receiver")
}
