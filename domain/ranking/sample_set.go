package ranking

import (
	"fmt"
	"sort"

	"ssea/domain/core"
)

// SampleSet is a named subset of the sample universe
type SampleSet struct {
	Name        string
	Description string
	Members     map[string]struct{}
}

// NewSampleSet builds a sample set; duplicate and empty member IDs are ignored
func NewSampleSet(name, description string, members []string) SampleSet {
	m := make(map[string]struct{}, len(members))
	for _, id := range members {
		if id == "" {
			continue
		}
		m[id] = struct{}{}
	}
	return SampleSet{Name: name, Description: description, Members: m}
}

// Size returns the number of distinct members, ranked or not
func (s SampleSet) Size() int {
	return len(s.Members)
}

// Has reports membership
func (s SampleSet) Has(sampleID string) bool {
	_, ok := s.Members[sampleID]
	return ok
}

// SortedMembers returns members in lexical order
func (s SampleSet) SortedMembers() []string {
	out := make([]string, 0, len(s.Members))
	for id := range s.Members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Membership maps the set onto rank positions of the list. It returns one
// flag per rank and the number of members that the list does not contain.
func (s SampleSet) Membership(list *RankedList) (member []bool, missing int) {
	member = make([]bool, list.Len())
	for id := range s.Members {
		r, ok := list.index[id]
		if !ok {
			missing++
			continue
		}
		member[r] = true
	}
	return member, missing
}

// ValidateSampleSets checks names are present and unique within a run
func ValidateSampleSets(sets []SampleSet) error {
	seen := make(map[string]int, len(sets))
	for i, s := range sets {
		if s.Name == "" {
			return core.NewMalformedInputError("sample_sets", i, "sample set has no name")
		}
		if first, dup := seen[s.Name]; dup {
			return core.NewMalformedInputError("sample_set:"+s.Name, i,
				fmt.Sprintf("name repeats (first seen at index %d)", first))
		}
		seen[s.Name] = i
	}
	return nil
}
