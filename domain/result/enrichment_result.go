package result

import (
	"math"

	"ssea/domain/enrichment"
	"ssea/domain/ranking"
	"ssea/domain/significance"
)

// EnrichmentResult is the complete, immutable outcome for one sample set.
// It is only created once every statistic is available.
type EnrichmentResult struct {
	SampleSet      ranking.SampleSet
	Score          enrichment.Score
	Null           enrichment.NullDistribution
	Significance   significance.Estimate
	PositiveNull   significance.NullSummary
	NegativeNull   significance.NullSummary
	NormalTailP    float64
	NormalTailOK   bool
	FDRQValue      float64
	MissingMembers int
	Seed           int64
	ESSample       string
}

// Input gathers everything computed for a sample set before assembly
type Input struct {
	SampleSet      ranking.SampleSet
	Score          enrichment.Score
	Null           enrichment.NullDistribution
	Significance   significance.Estimate
	FDRQValue      float64
	MissingMembers int
	Seed           int64
	ESSample       string
}

// New assembles a result and derives the null bucket summaries
func New(in Input, analyzer *significance.DistributionAnalyzer) (*EnrichmentResult, error) {
	pos, err := analyzer.Summarize(in.Null.Positive)
	if err != nil {
		return nil, err
	}
	neg, err := analyzer.Summarize(in.Null.Negative)
	if err != nil {
		return nil, err
	}

	r := &EnrichmentResult{
		SampleSet:      in.SampleSet,
		Score:          in.Score,
		Null:           in.Null,
		Significance:   in.Significance,
		PositiveNull:   pos,
		NegativeNull:   neg,
		FDRQValue:      in.FDRQValue,
		MissingMembers: in.MissingMembers,
		Seed:           in.Seed,
		ESSample:       in.ESSample,
	}

	matching := pos
	if !in.Score.Positive() {
		matching = neg
	}
	if !in.Score.Degenerate() {
		r.NormalTailP, r.NormalTailOK = analyzer.NormalTailP(in.Score.ES, matching)
	}
	return r, nil
}

// HitCount is the number of set members present in the ranked list
func (r *EnrichmentResult) HitCount() int {
	return len(r.Score.Hits)
}

// SetSize is the number of distinct members, ranked or not
func (r *EnrichmentResult) SetSize() int {
	return r.SampleSet.Size()
}

// HitRate is HitCount / SetSize, 0 for an empty set
func (r *EnrichmentResult) HitRate() float64 {
	if r.SetSize() == 0 {
		return 0
	}
	return float64(r.HitCount()) / float64(r.SetSize())
}

// Degenerate reports the degeneracy flag of the score
func (r *EnrichmentResult) Degenerate() bool {
	return r.Score.Degenerate()
}

// DegenerateErr returns a DegenerateSampleSetError describing the flag, or nil
func (r *EnrichmentResult) DegenerateErr() error {
	return r.Score.Degeneracy.Err(r.SampleSet.Name)
}

// Record exports the result for serialization, templating and plotting
func (r *EnrichmentResult) Record() Record {
	est := r.Significance
	rec := Record{
		Name:             r.SampleSet.Name,
		Description:      r.SampleSet.Description,
		ES:               r.Score.ES,
		NES:              optional(est.NES, est.NESDefined),
		PValue:           est.PValue,
		FDRQValue:        r.FDRQValue,
		CILower:          optional(est.CI.Lower, est.CI.Defined),
		CIUpper:          optional(est.CI.Upper, est.CI.Defined),
		HitCount:         r.HitCount(),
		SetSize:          r.SetSize(),
		MissingMembers:   r.MissingMembers,
		HitRate:          r.HitRate(),
		HitPercent:       100 * r.HitRate(),
		ESRank:           r.Score.Index,
		ESSample:         r.ESSample,
		Degenerate:       r.Degenerate(),
		DegenerateReason: string(r.Score.Degeneracy),
		InsufficientNull: est.InsufficientNull,
		NullBucketSize:   est.BucketSize,
		Permutations:     r.Null.Permutations,
		Seed:             r.Seed,
		NullPositive:     r.PositiveNull,
		NullNegative:     r.NegativeNull,
		NormalTailP:      optional(r.NormalTailP, r.NormalTailOK),
		Details: &Details{
			HitIndices:   copyInts(r.Score.Hits),
			RunningSum:   copyFloats(r.Score.Profile),
			NullPositive: copyFloats(r.Null.Positive),
			NullNegative: copyFloats(r.Null.Negative),
			Envelope:     r.Null.Envelope,
		},
	}
	return rec
}

func optional(v float64, ok bool) *float64 {
	if !ok || math.IsNaN(v) {
		return nil
	}
	return &v
}

func copyInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func copyFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
