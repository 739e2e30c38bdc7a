package result

import (
	"ssea/domain/enrichment"
	"ssea/domain/significance"
)

// Record is the serializable view of an EnrichmentResult. Undefined
// statistics (NES, interval bounds) are nil and encode as JSON null.
type Record struct {
	Name             string                   `json:"name"`
	Description      string                   `json:"desc"`
	ES               float64                  `json:"es"`
	NES              *float64                 `json:"nes"`
	PValue           float64                  `json:"pval"`
	FDRQValue        float64                  `json:"fdr_q"`
	CILower          *float64                 `json:"ci_lower"`
	CIUpper          *float64                 `json:"ci_upper"`
	HitCount         int                      `json:"hit_count"`
	SetSize          int                      `json:"set_size"`
	MissingMembers   int                      `json:"missing_members"`
	HitRate          float64                  `json:"hit_rate"`
	HitPercent       float64                  `json:"hit_percent"`
	ESRank           int                      `json:"es_rank"`
	ESSample         string                   `json:"es_sample,omitempty"`
	Degenerate       bool                     `json:"degenerate"`
	DegenerateReason string                   `json:"degenerate_reason,omitempty"`
	InsufficientNull bool                     `json:"insufficient_null"`
	NullBucketSize   int                      `json:"null_bucket_size"`
	Permutations     int                      `json:"perms"`
	Seed             int64                    `json:"seed"`
	NullPositive     significance.NullSummary `json:"null_positive"`
	NullNegative     significance.NullSummary `json:"null_negative"`
	NormalTailP      *float64                 `json:"normal_tail_p"`

	// Details carries the per-rank and per-permutation series. The run
	// summary drops it and points at the per-set file instead.
	Details     *Details `json:"details,omitempty"`
	DetailsFile string   `json:"details_file,omitempty"`

	// Report artifacts, filled by the report writer
	EnrichmentPlot string `json:"eplot_svg,omitempty"`
	NullPlot       string `json:"null_svg,omitempty"`
	HTMLReport     string `json:"html,omitempty"`
}

// Details holds the numeric series consumed by plots
type Details struct {
	HitIndices   []int                `json:"hit_indices"`
	RunningSum   []float64            `json:"running_sum"`
	NullPositive []float64            `json:"null_positive"`
	NullNegative []float64            `json:"null_negative"`
	Envelope     *enrichment.Envelope `json:"envelope,omitempty"`
}

// Summary returns a copy without the details series, referencing file instead
func (r Record) Summary(file string) Record {
	r.Details = nil
	r.DetailsFile = file
	return r
}
