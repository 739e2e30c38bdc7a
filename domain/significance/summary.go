package significance

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NullSummary describes one signed bucket of a null distribution
type NullSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// DistributionAnalyzer summarizes null buckets for reports
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Summarize computes summary statistics. An empty bucket yields a zero
// summary with Count 0. Quartiles are empirical quantiles of the sorted
// bucket, so they are defined for any non-empty bucket.
func (da *DistributionAnalyzer) Summarize(data []float64) (NullSummary, error) {
	summary := NullSummary{Count: len(data)}
	if len(data) == 0 {
		return summary, nil
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if summary.StdDev, err = stats.StandardDeviationSample(data); err != nil {
		return summary, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	summary.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	summary.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)

	if math.IsNaN(summary.StdDev) {
		summary.StdDev = 0
	}
	return summary, nil
}

// NormalTailP is a parametric cross-check of the permutation p-value: the
// probability of a value at least as extreme as es under a normal fitted to
// the matching bucket. ok is false when the fit is impossible (fewer than two
// values or zero spread).
func (da *DistributionAnalyzer) NormalTailP(es float64, summary NullSummary) (p float64, ok bool) {
	if summary.Count < 2 || summary.StdDev == 0 {
		return 0, false
	}
	dist := distuv.Normal{Mu: summary.Mean, Sigma: summary.StdDev}
	if es >= 0 {
		return dist.Survival(es), true
	}
	return dist.CDF(es), true
}
