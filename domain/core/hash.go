package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for file names and logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	WeightsHash    Hash
	SampleSetsHash Hash
)

func (h WeightsHash) String() string    { return Hash(h).String() }
func (h SampleSetsHash) String() string { return Hash(h).String() }

// ComputeWeightsHash fingerprints the (sample, weight) input in the order given.
// Weights are hashed by their IEEE-754 bits so that formatting never matters.
func ComputeWeightsHash(samples []string, weights []float64) WeightsHash {
	var data strings.Builder
	for i, s := range samples {
		data.WriteString(s)
		data.WriteByte(0)
		if i < len(weights) {
			fmt.Fprintf(&data, "%016x", math.Float64bits(weights[i]))
		}
		data.WriteByte('\n')
	}
	return WeightsHash(NewHash([]byte(data.String())))
}

// ComputeSampleSetsHash fingerprints named member lists. Set order is kept
// (it is report order), member order is not.
func ComputeSampleSetsHash(names []string, members [][]string) SampleSetsHash {
	var data strings.Builder
	for i, name := range names {
		data.WriteString(name)
		data.WriteByte(0)
		if i < len(members) {
			sorted := append([]string(nil), members[i]...)
			sort.Strings(sorted)
			data.WriteString(strings.Join(sorted, "\x1f"))
		}
		data.WriteByte('\n')
	}
	return SampleSetsHash(NewHash([]byte(data.String())))
}
