package enrichment

import (
	"errors"
	"testing"

	"ssea/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeightMethod(t *testing.T) {
	for _, name := range WeightMethods() {
		m, err := ParseWeightMethod("weight_method_hit", name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}

	_, err := ParseWeightMethod("weight_method_miss", "exp")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	var cfgErr *core.InvalidConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "weight_method_miss", cfgErr.Field)
}

func TestWeightMethod_Contribution(t *testing.T) {
	tests := []struct {
		method WeightMethod
		weight float64
		want   float64
	}{
		{Unweighted, -7, 1},
		{Unweighted, 0, 1},
		{Weighted, -7, 7},
		{Weighted, 2.5, 2.5},
		{WeightedP05, -4, 2},
		{WeightedP15, 4, 8},
		{WeightedP2, -3, 9},
		{WeightedP2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.method.Contribution(tt.weight), 1e-12)
		})
	}
}

func TestWeightMethod_Text(t *testing.T) {
	var m WeightMethod
	require.NoError(t, m.UnmarshalText([]byte("weighted_p2")))
	assert.Equal(t, WeightedP2, m)

	text, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "weighted_p2", string(text))

	assert.Error(t, m.UnmarshalText([]byte("bogus")))
	_, err = WeightMethod(99).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "WeightMethod(99)", WeightMethod(99).String())
}
