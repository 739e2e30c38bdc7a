package significance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBenjaminiHochberg(t *testing.T) {
	p := []float64{0.01, 0.04, 0.03, 0.5}
	q := BenjaminiHochberg(p)

	// sorted p: .01 .03 .04 .5 -> raw .04 .06 .0533 .5 -> step-up .04 .0533 .0533 .5
	want := []float64{0.04, 0.16 / 3, 0.16 / 3, 0.5}
	for i := range want {
		assert.InDelta(t, want[i], q[i], 1e-12, "index %d", i)
		assert.GreaterOrEqual(t, q[i], p[i])
	}
}

func TestBenjaminiHochberg_ClampsAndEmpty(t *testing.T) {
	assert.Empty(t, BenjaminiHochberg(nil))
	assert.Equal(t, []float64{1, 1}, BenjaminiHochberg([]float64{1, 0.9}))
}

func TestBenjaminiHochberg_MonotoneInP(t *testing.T) {
	p := []float64{0.2, 0.001, 0.07, 0.03, 0.9, 0.04}
	q := BenjaminiHochberg(p)
	for i := range p {
		for j := range p {
			if p[i] <= p[j] {
				assert.LessOrEqual(t, q[i], q[j])
			}
		}
	}
}
