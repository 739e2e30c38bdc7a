package testkit

import (
	"sync/atomic"

	"ssea/domain/enrichment"
	"ssea/domain/ranking"
	"ssea/ports"
)

// CountingScorer wraps a scorer and counts every walk
type CountingScorer struct {
	inner ports.EnrichmentScorer
	calls *atomic.Int64
}

func (c *CountingScorer) Len() int {
	return c.inner.Len()
}

func (c *CountingScorer) Walk(member []bool) enrichment.Score {
	c.calls.Add(1)
	return c.inner.Walk(member)
}

func (c *CountingScorer) WalkInto(member []bool, profile []float64) (float64, int, enrichment.Degeneracy) {
	c.calls.Add(1)
	return c.inner.WalkInto(member, profile)
}

// ScorerCounter hands out counting scorers that share one tally
type ScorerCounter struct {
	built atomic.Int64
	calls atomic.Int64
}

// Factory builds default kernels wrapped in CountingScorer
func (s *ScorerCounter) Factory() ports.ScorerFactory {
	return func(list *ranking.RankedList, hit, miss enrichment.WeightMethod) ports.EnrichmentScorer {
		s.built.Add(1)
		return &CountingScorer{
			inner: ports.DefaultScorerFactory(list, hit, miss),
			calls: &s.calls,
		}
	}
}

// Built is the number of scorers constructed
func (s *ScorerCounter) Built() int64 {
	return s.built.Load()
}

// Calls is the number of Walk and WalkInto invocations
func (s *ScorerCounter) Calls() int64 {
	return s.calls.Load()
}
