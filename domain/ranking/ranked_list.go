package ranking

import (
	"fmt"
	"iter"
	"math"
	"sort"

	"ssea/domain/core"
)

const sourceRankedList = "ranked_list"

// Entry is one position of a ranked list
type Entry struct {
	Sample string
	Weight float64
}

// RankedList is an immutable view of (sample, weight) pairs sorted by weight
// descending. Ties keep input order. Safe for concurrent reads.
type RankedList struct {
	entries []Entry
	index   map[string]int
}

// NewRankedList validates and sorts parallel sample/weight slices.
func NewRankedList(samples []string, weights []float64) (*RankedList, error) {
	if len(samples) != len(weights) {
		return nil, core.NewMalformedInputError(sourceRankedList, -1,
			fmt.Sprintf("%d samples but %d weights", len(samples), len(weights)))
	}
	if len(samples) == 0 {
		return nil, core.NewMalformedInputError(sourceRankedList, -1, "no samples")
	}

	entries := make([]Entry, len(samples))
	seen := make(map[string]int, len(samples))
	for i, s := range samples {
		if s == "" {
			return nil, core.NewMalformedInputError(sourceRankedList, i, "empty sample identifier")
		}
		if first, dup := seen[s]; dup {
			return nil, core.NewMalformedInputError(sourceRankedList, i,
				fmt.Sprintf("sample %q repeats (first seen at index %d)", s, first))
		}
		w := weights[i]
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, core.NewMalformedInputError(sourceRankedList, i,
				fmt.Sprintf("weight for sample %q is not finite (%v)", s, w))
		}
		seen[s] = i
		entries[i] = Entry{Sample: s, Weight: w}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	index := make(map[string]int, len(entries))
	for r, e := range entries {
		index[e.Sample] = r
	}

	return &RankedList{entries: entries, index: index}, nil
}

// Len returns the number of ranked samples N
func (l *RankedList) Len() int {
	return len(l.entries)
}

// Weight returns the weight at rank r
func (l *RankedList) Weight(r int) float64 {
	return l.entries[r].Weight
}

// Sample returns the sample identifier at rank r
func (l *RankedList) Sample(r int) string {
	return l.entries[r].Sample
}

// Rank returns the 0-based rank of a sample
func (l *RankedList) Rank(sampleID string) (int, error) {
	r, ok := l.index[sampleID]
	if !ok {
		return -1, &core.UnknownSampleError{SampleID: sampleID}
	}
	return r, nil
}

// Contains reports whether the sample is ranked
func (l *RankedList) Contains(sampleID string) bool {
	_, ok := l.index[sampleID]
	return ok
}

// Weights returns a copy of the weights in rank order
func (l *RankedList) Weights() []float64 {
	out := make([]float64, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Weight
	}
	return out
}

// Samples returns a copy of the sample identifiers in rank order
func (l *RankedList) Samples() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Sample
	}
	return out
}

// All yields (rank, entry) pairs in rank order. Each call starts over.
func (l *RankedList) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for r, e := range l.entries {
			if !yield(r, e) {
				return
			}
		}
	}
}
