package enrichment

import (
	"fmt"

	"ssea/domain/core"
)

// ZeroPolicy decides where a permuted ES of exactly zero is recorded
type ZeroPolicy string

const (
	ZeroToPositive ZeroPolicy = "positive"
	ZeroDropped    ZeroPolicy = "drop"
)

// ParseZeroPolicy validates a policy name; empty selects ZeroToPositive
func ParseZeroPolicy(name string) (ZeroPolicy, error) {
	switch ZeroPolicy(name) {
	case "", ZeroToPositive:
		return ZeroToPositive, nil
	case ZeroDropped:
		return ZeroDropped, nil
	}
	return "", core.NewInvalidConfigError("zero_policy", name,
		fmt.Sprintf("must be %q or %q", ZeroToPositive, ZeroDropped))
}

// Envelope holds per-rank percentile bands of the null running sums
type Envelope struct {
	Level float64   `json:"level"`
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// NullDistribution is the empirical ES distribution under permutation,
// split by sign. Values are kept in permutation order.
type NullDistribution struct {
	Permutations int
	Positive     []float64
	Negative     []float64
	Envelope     *Envelope
}

// Bucket returns the values whose sign matches es (zero counts as positive)
func (n NullDistribution) Bucket(es float64) []float64 {
	if es >= 0 {
		return n.Positive
	}
	return n.Negative
}

// Split distributes signed scores into a NullDistribution under policy
func Split(scores []float64, policy ZeroPolicy) NullDistribution {
	null := NullDistribution{
		Permutations: len(scores),
		Positive:     make([]float64, 0, len(scores)/2+1),
		Negative:     make([]float64, 0, len(scores)/2+1),
	}
	for _, es := range scores {
		switch {
		case es > 0:
			null.Positive = append(null.Positive, es)
		case es < 0:
			null.Negative = append(null.Negative, es)
		case policy == ZeroToPositive:
			null.Positive = append(null.Positive, es)
		}
	}
	return null
}
