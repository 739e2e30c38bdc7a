package ports

import (
	"ssea/domain/ranking"
)

// SampleSetReader yields the sample sets of one source file
type SampleSetReader interface {
	ReadSampleSets() ([]ranking.SampleSet, error)
}
