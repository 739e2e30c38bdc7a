package enrichment

import (
	"ssea/domain/core"
)

// Degeneracy records why a sample set could not produce a meaningful score
type Degeneracy string

const (
	NotDegenerate     Degeneracy = ""
	EmptyIntersection Degeneracy = "empty_intersection"
	ZeroHitMass       Degeneracy = "zero_hit_mass"
	ZeroMissMass      Degeneracy = "zero_miss_mass"
)

// Describe gives a human readable explanation for reports
func (d Degeneracy) Describe() string {
	switch d {
	case EmptyIntersection:
		return "no member of the sample set appears in the ranked list"
	case ZeroHitMass:
		return "all ranked members carry zero hit weight"
	case ZeroMissMass:
		return "every ranked sample is a member, or all non-members carry zero miss weight"
	default:
		return ""
	}
}

// Err converts the flag into a DegenerateSampleSetError, nil when not degenerate
func (d Degeneracy) Err(sampleSet string) error {
	if d == NotDegenerate {
		return nil
	}
	return &core.DegenerateSampleSetError{SampleSet: sampleSet, Reason: string(d)}
}

// Score is the outcome of one running-sum walk
type Score struct {
	ES         float64   // signed extremum of the running sum
	Index      int       // rank at which ES occurs
	Hits       []int     // ranks occupied by members, ascending
	Profile    []float64 // running sum at every rank
	HitMass    float64
	MissMass   float64
	Degeneracy Degeneracy
}

// Degenerate reports whether ES was forced to zero
func (s Score) Degenerate() bool {
	return s.Degeneracy != NotDegenerate
}

// Positive reports whether the set leans to the top of the ranking.
// A zero ES counts as positive.
func (s Score) Positive() bool {
	return s.ES >= 0
}
