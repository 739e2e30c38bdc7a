package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator from a seed
	SeededStream(seed int64) *rand.Rand

	// DeriveSeed maps (base seed, stage, index) to a sub-seed. The same inputs
	// always give the same sub-seed, so work split across goroutines draws the
	// same numbers as a sequential run.
	DeriveSeed(baseSeed int64, stage string, index int) int64

	// Stream is SeededStream(DeriveSeed(baseSeed, stage, index))
	Stream(baseSeed int64, stage string, index int) *rand.Rand
}
