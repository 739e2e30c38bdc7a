package enrichment

import (
	"math"

	"ssea/domain/ranking"
)

// Kernel holds the per-rank hit and miss contributions of one ranked list
// under a pair of weight methods. Contributions depend only on rank, so a
// kernel is built once per run and shared read-only by every walk.
type Kernel struct {
	hit  []float64
	miss []float64

	hitMethod  WeightMethod
	missMethod WeightMethod
}

// NewKernel precomputes contributions for list
func NewKernel(list *ranking.RankedList, hit, miss WeightMethod) *Kernel {
	n := list.Len()
	k := &Kernel{
		hit:        make([]float64, n),
		miss:       make([]float64, n),
		hitMethod:  hit,
		missMethod: miss,
	}
	for r, e := range list.All() {
		k.hit[r] = hit.Contribution(e.Weight)
		k.miss[r] = miss.Contribution(e.Weight)
	}
	return k
}

// Len returns the number of ranks
func (k *Kernel) Len() int {
	return len(k.hit)
}

// Methods returns the hit and miss weight methods
func (k *Kernel) Methods() (hit, miss WeightMethod) {
	return k.hitMethod, k.missMethod
}

// Walk scores a membership vector (one flag per rank) and keeps the full
// running-sum profile and hit ranks.
func (k *Kernel) Walk(member []bool) Score {
	profile := make([]float64, len(member))
	es, idx, deg, hitMass, missMass := k.walk(member, profile)

	hits := make([]int, 0)
	for r, m := range member {
		if m {
			hits = append(hits, r)
		}
	}

	return Score{
		ES:         es,
		Index:      idx,
		Hits:       hits,
		Profile:    profile,
		HitMass:    hitMass,
		MissMass:   missMass,
		Degeneracy: deg,
	}
}

// WalkInto scores member without allocating. When profile is non-nil it must
// have one slot per rank and receives the running sum.
func (k *Kernel) WalkInto(member []bool, profile []float64) (float64, int, Degeneracy) {
	es, idx, deg, _, _ := k.walk(member, profile)
	return es, idx, deg
}

func (k *Kernel) walk(member []bool, profile []float64) (es float64, idx int, deg Degeneracy, hitMass, missMass float64) {
	nHits := 0
	for r, m := range member {
		if m {
			hitMass += k.hit[r]
			nHits++
		} else {
			missMass += k.miss[r]
		}
	}

	switch {
	case nHits == 0:
		deg = EmptyIntersection
	case hitMass == 0:
		deg = ZeroHitMass
	case missMass == 0:
		deg = ZeroMissMass
	}
	if deg != NotDegenerate {
		for i := range profile {
			profile[i] = 0
		}
		return 0, 0, deg, hitMass, missMass
	}

	sum := 0.0
	best := -1.0
	for r, m := range member {
		if m {
			sum += k.hit[r] / hitMass
		} else {
			sum -= k.miss[r] / missMass
		}
		if profile != nil {
			profile[r] = sum
		}
		// strict comparison keeps the earliest rank on ties
		if a := math.Abs(sum); a > best {
			best = a
			es = sum
			idx = r
		}
	}
	return es, idx, NotDegenerate, hitMass, missMass
}

// ScoreSet maps set onto list and walks it once
func ScoreSet(list *ranking.RankedList, set ranking.SampleSet, hit, miss WeightMethod) Score {
	member, _ := set.Membership(list)
	return NewKernel(list, hit, miss).Walk(member)
}
