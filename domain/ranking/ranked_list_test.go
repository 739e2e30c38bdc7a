package ranking

import (
	"errors"
	"math"
	"testing"

	"ssea/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRankedList_SortsDescending(t *testing.T) {
	list, err := NewRankedList(
		[]string{"D", "A", "F", "B", "E", "C"},
		[]float64{-1, 5, -6, 4, -2, 3},
	)
	require.NoError(t, err)

	assert.Equal(t, 6, list.Len())
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, list.Samples())
	assert.Equal(t, []float64{5, 4, 3, -1, -2, -6}, list.Weights())

	r, err := list.Rank("E")
	require.NoError(t, err)
	assert.Equal(t, 4, r)
	assert.Equal(t, -2.0, list.Weight(r))
	assert.Equal(t, "E", list.Sample(r))
}

func TestNewRankedList_TiesKeepInputOrder(t *testing.T) {
	list, err := NewRankedList([]string{"x", "y", "z", "w"}, []float64{1, 2, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x", "z", "w"}, list.Samples())
}

func TestNewRankedList_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		weights []float64
	}{
		{"length mismatch", []string{"a", "b"}, []float64{1}},
		{"empty", nil, nil},
		{"duplicate sample", []string{"a", "b", "a"}, []float64{1, 2, 3}},
		{"empty id", []string{"a", ""}, []float64{1, 2}},
		{"NaN weight", []string{"a", "b"}, []float64{1, math.NaN()}},
		{"+Inf weight", []string{"a", "b"}, []float64{math.Inf(1), 2}},
		{"-Inf weight", []string{"a", "b"}, []float64{1, math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := NewRankedList(tt.samples, tt.weights)
			assert.Nil(t, list)
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedInput), "got %v", err)

			var mErr *core.MalformedInputError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, "ranked_list", mErr.Source)
		})
	}
}

func TestRankedList_UnknownSample(t *testing.T) {
	list, err := NewRankedList([]string{"a", "b"}, []float64{1, 2})
	require.NoError(t, err)

	r, err := list.Rank("zzz")
	assert.Equal(t, -1, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownSample))

	var uErr *core.UnknownSampleError
	require.True(t, errors.As(err, &uErr))
	assert.Equal(t, "zzz", uErr.SampleID)
	assert.False(t, list.Contains("zzz"))
}

func TestRankedList_AllIsRestartable(t *testing.T) {
	list, err := NewRankedList([]string{"a", "b", "c"}, []float64{3, 1, 2})
	require.NoError(t, err)

	collect := func() []string {
		var out []string
		for r, e := range list.All() {
			assert.Equal(t, list.Sample(r), e.Sample)
			out = append(out, e.Sample)
		}
		return out
	}

	first := collect()
	second := collect()
	assert.Equal(t, []string{"a", "c", "b"}, first)
	assert.Equal(t, first, second)

	// early break must not disturb later iterations
	for r := range list.All() {
		if r == 0 {
			break
		}
	}
	assert.Equal(t, first, collect())
}

func TestRankedList_WeightsIsACopy(t *testing.T) {
	list, err := NewRankedList([]string{"a", "b"}, []float64{2, 1})
	require.NoError(t, err)

	w := list.Weights()
	w[0] = 100
	assert.Equal(t, 2.0, list.Weight(0))
}
