package run

import (
	"time"

	"ssea/domain/core"
)

// Manifest records everything needed to reproduce a run, including the seed
// when it was generated rather than supplied.
type Manifest struct {
	RunID         core.RunID     `json:"run_id"`
	Parameters    Parameters     `json:"parameters"`
	NumSamples    int            `json:"num_samples"`
	NumSampleSets int            `json:"num_sample_sets"`
	CodeVersion   string         `json:"code_version"`
	Fingerprint   Fingerprint    `json:"fingerprint"`
	CreatedAt     core.Timestamp `json:"created_at"`
	Elapsed       time.Duration  `json:"elapsed_ns"`
}

// NewManifest creates a manifest for a run about to start
func NewManifest(params Parameters, samples []string, weights []float64, setNames []string, setMembers [][]string, codeVersion string) *Manifest {
	fp := NewFingerprint(
		core.ComputeWeightsHash(samples, weights),
		core.ComputeSampleSetsHash(setNames, setMembers),
		params,
		codeVersion,
	)
	return &Manifest{
		RunID:         core.NewRunID(),
		Parameters:    params,
		NumSamples:    len(samples),
		NumSampleSets: len(setNames),
		CodeVersion:   codeVersion,
		Fingerprint:   fp,
		CreatedAt:     core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewMalformedInputError("run_manifest", -1, "run_id cannot be empty")
	}
	if m.Fingerprint.Hash.IsEmpty() {
		return core.NewMalformedInputError("run_manifest", -1, "fingerprint cannot be empty")
	}
	if m.CodeVersion == "" {
		return core.NewMalformedInputError("run_manifest", -1, "code_version cannot be empty")
	}
	return nil
}
