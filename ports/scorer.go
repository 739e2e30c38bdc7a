package ports

import (
	"ssea/domain/enrichment"
	"ssea/domain/ranking"
)

// EnrichmentScorer walks membership vectors over one ranked list
type EnrichmentScorer interface {
	Len() int
	Walk(member []bool) enrichment.Score
	WalkInto(member []bool, profile []float64) (float64, int, enrichment.Degeneracy)
}

// ScorerFactory builds the scorer shared by every sample set of a run
type ScorerFactory func(list *ranking.RankedList, hit, miss enrichment.WeightMethod) EnrichmentScorer

// DefaultScorerFactory returns the precomputed running-sum kernel
func DefaultScorerFactory(list *ranking.RankedList, hit, miss enrichment.WeightMethod) EnrichmentScorer {
	return enrichment.NewKernel(list, hit, miss)
}
