package rng

import (
	"math/rand"
	"time"

	"ssea/ports"
)

// Adapter implements ports.RNGPort on math/rand sources
type Adapter struct{}

var _ ports.RNGPort = (*Adapter)(nil)

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// SeededStream creates a deterministic random number generator
func (a *Adapter) SeededStream(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DeriveSeed mixes the stage name and index into the base seed.
// The stage hash separates independent consumers of the same base seed
// (permutations, bootstrap resampling) and splitmix64 decorrelates
// neighbouring indices.
func (a *Adapter) DeriveSeed(baseSeed int64, stage string, index int) int64 {
	x := uint64(baseSeed) ^ (uint64(hashString(stage)) << 32)
	x += uint64(index+1) * 0x9E3779B97F4A7C15
	return int64(splitmix64(x))
}

// Stream creates a deterministic RNG for one (stage, index) task
func (a *Adapter) Stream(baseSeed int64, stage string, index int) *rand.Rand {
	return a.SeededStream(a.DeriveSeed(baseSeed, stage, index))
}

// NewRunSeed picks a seed for runs that did not specify one. It must be
// recorded in the run manifest so the run can be replayed.
func NewRunSeed() int64 {
	return int64(splitmix64(uint64(time.Now().UnixNano())) >> 1)
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2
	}
	return hash
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
