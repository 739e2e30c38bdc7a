package testkit

import (
	"fmt"
	"math/rand"
	"sort"

	"ssea/domain/ranking"
)

// GeneratorConfig configures the synthetic ranking generator
type GeneratorConfig struct {
	SampleCount  int     `json:"sample_count"`
	SetCount     int     `json:"set_count"`
	SetSize      int     `json:"set_size"`
	EnrichedSets int     `json:"enriched_sets"`
	Shift        float64 `json:"shift"`
	Seed         int64   `json:"seed"`
}

// DefaultGeneratorConfig returns a small, fast fixture
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SampleCount:  200,
		SetCount:     6,
		SetSize:      20,
		EnrichedSets: 2,
		Shift:        2.5,
		Seed:         42,
	}
}

// Dataset is a generated weights table plus its sample sets
type Dataset struct {
	Samples []string
	Weights []float64
	Sets    []ranking.SampleSet
}

// Generator produces weights with a few sample sets planted at the top of the ranking
type Generator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewGenerator creates a new generator
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate draws standard-normal weights, then shifts the members of the
// first EnrichedSets sets upward so they concentrate at the head of the list.
// Remaining sets are uniform random draws.
func (g *Generator) Generate() Dataset {
	n := g.config.SampleCount
	ds := Dataset{
		Samples: make([]string, n),
		Weights: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ds.Samples[i] = fmt.Sprintf("S%04d", i)
		ds.Weights[i] = g.rng.NormFloat64()
	}

	for s := 0; s < g.config.SetCount; s++ {
		picks := g.rng.Perm(n)[:min(g.config.SetSize, n)]
		sort.Ints(picks)
		members := make([]string, len(picks))
		for i, p := range picks {
			members[i] = ds.Samples[p]
			if s < g.config.EnrichedSets {
				ds.Weights[p] += g.config.Shift
			}
		}
		kind := "random"
		if s < g.config.EnrichedSets {
			kind = "enriched"
		}
		ds.Sets = append(ds.Sets, ranking.NewSampleSet(fmt.Sprintf("set_%02d", s), kind, members))
	}
	return ds
}

// RoundTrip is the six-sample example with hits at ranks 0, 1 and 5
func RoundTrip() Dataset {
	return Dataset{
		Samples: []string{"A", "B", "C", "D", "E", "F"},
		Weights: []float64{5, 4, 3, -1, -2, -6},
		Sets:    []ranking.SampleSet{ranking.NewSampleSet("ABF", "round trip", []string{"A", "B", "F"})},
	}
}
