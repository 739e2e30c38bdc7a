package run

import (
	"crypto/sha256"
	"fmt"

	"ssea/domain/core"
	"ssea/domain/result"
)

// Parameters are the analysis settings that determine a run's numbers
type Parameters struct {
	WeightMethodHit    string  `json:"weight_method_hit"`
	WeightMethodMiss   string  `json:"weight_method_miss"`
	Perms              int     `json:"perms"`
	ConfInt            float64 `json:"conf_int"`
	CIMethod           string  `json:"ci_method"`
	BootstrapResamples int     `json:"bootstrap_resamples,omitempty"`
	ZeroPolicy         string  `json:"zero_policy"`
	Envelope           bool    `json:"envelope"`
	Seed               int64   `json:"seed"`
	SeedGenerated      bool    `json:"seed_generated"`
}

// Run is a completed analysis: the manifest plus one result per sample set,
// in input order.
type Run struct {
	Manifest *Manifest
	Results  []*result.EnrichmentResult
}

// Records exports every result
func (r *Run) Records() []result.Record {
	out := make([]result.Record, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Record()
	}
	return out
}

// Fingerprint ensures deterministic replay: equal fingerprints mean equal inputs and settings
type Fingerprint struct {
	WeightsHash    core.WeightsHash    `json:"weights_hash"`
	SampleSetsHash core.SampleSetsHash `json:"sample_sets_hash"`
	Parameters     Parameters          `json:"parameters"`
	CodeVersion    string              `json:"code_version"`
	Hash           core.Hash           `json:"hash"`
}

// NewFingerprint creates a fingerprint from determinism parameters
func NewFingerprint(weights core.WeightsHash, sets core.SampleSetsHash, params Parameters, codeVersion string) Fingerprint {
	return Fingerprint{
		WeightsHash:    weights,
		SampleSetsHash: sets,
		Parameters:     params,
		CodeVersion:    codeVersion,
		Hash:           computeFingerprint(weights, sets, params, codeVersion),
	}
}

func computeFingerprint(weights core.WeightsHash, sets core.SampleSetsHash, p Parameters, codeVersion string) core.Hash {
	data := fmt.Sprintf("weights:%s|sets:%s|hit:%s|miss:%s|perms:%d|conf:%g|ci:%s|boot:%d|zero:%s|env:%t|seed:%d|code:%s",
		weights, sets, p.WeightMethodHit, p.WeightMethodMiss, p.Perms, p.ConfInt, p.CIMethod,
		p.BootstrapResamples, p.ZeroPolicy, p.Envelope, p.Seed, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
