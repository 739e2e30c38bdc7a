package significance

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"ssea/domain/core"
	"ssea/domain/enrichment"

	"gonum.org/v1/gonum/stat"
)

// CIMethod selects how the confidence interval is derived from the null bucket
type CIMethod string

const (
	CIPercentile CIMethod = "percentile"
	CIBootstrap  CIMethod = "bootstrap"

	DefaultLevel     = 0.95
	DefaultResamples = 1000

	stageBootstrap = "bootstrap"
)

// ParseCIMethod validates a method name; empty selects CIPercentile
func ParseCIMethod(name string) (CIMethod, error) {
	switch CIMethod(name) {
	case "", CIPercentile:
		return CIPercentile, nil
	case CIBootstrap:
		return CIBootstrap, nil
	}
	return "", core.NewInvalidConfigError("ci_method", name,
		fmt.Sprintf("must be %q or %q", CIPercentile, CIBootstrap))
}

// CheckLevel validates a confidence level, which must lie in the open interval (0,1)
func CheckLevel(level float64) error {
	if math.IsNaN(level) || level <= 0 || level >= 1 {
		return core.NewInvalidConfigError("conf_int", level, "must be in the open interval (0,1)")
	}
	return nil
}

// Interval is a confidence interval. Defined is false when the null bucket was empty.
type Interval struct {
	Lower   float64
	Upper   float64
	Defined bool
}

// Estimate is the significance of one real ES against its null distribution
type Estimate struct {
	PValue     float64
	NES        float64 // NaN when NESDefined is false
	NESDefined bool
	CI         Interval
	BucketSize int

	// InsufficientNull is set when the bucket matching ES's sign is empty;
	// PValue is then 1.
	InsufficientNull bool
}

// Streamer hands out seeded random streams for bootstrap resampling
type Streamer interface {
	Stream(baseSeed int64, stage string, index int) *rand.Rand
}

// Options configures an Estimator
type Options struct {
	Level     float64
	Method    CIMethod
	Resamples int
	RNG       Streamer
}

// Estimator turns real scores plus null buckets into p-values, NES and intervals
type Estimator struct {
	opts Options
}

// NewEstimator validates opts
func NewEstimator(opts Options) (*Estimator, error) {
	if err := CheckLevel(opts.Level); err != nil {
		return nil, err
	}
	method, err := ParseCIMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	opts.Method = method
	if opts.Method == CIBootstrap {
		if opts.Resamples < 1 {
			return nil, core.NewInvalidConfigError("bootstrap_resamples", opts.Resamples, "must be at least 1")
		}
		if opts.RNG == nil {
			return nil, core.NewInvalidConfigError("ci_method", opts.Method, "bootstrap needs a random source")
		}
	}
	return &Estimator{opts: opts}, nil
}

// Estimate computes significance for es. seed only feeds bootstrap resampling.
func (e *Estimator) Estimate(es float64, null enrichment.NullDistribution, seed int64) Estimate {
	bucket := null.Bucket(es)
	est := Estimate{
		PValue:     PValue(es, bucket),
		BucketSize: len(bucket),
	}
	est.NES, est.NESDefined = NES(es, bucket)

	if len(bucket) == 0 {
		est.InsufficientNull = true
		est.CI = Interval{Lower: math.NaN(), Upper: math.NaN()}
		return est
	}

	switch e.opts.Method {
	case CIBootstrap:
		est.CI = e.bootstrapInterval(bucket, seed)
	default:
		est.CI = percentileInterval(bucket, e.opts.Level)
	}
	return est
}

// PValue is (#{|x| >= |es|} + 1) / (n + 1) over the matching bucket, or 1
// for an empty bucket.
func PValue(es float64, bucket []float64) float64 {
	if len(bucket) == 0 {
		return 1.0
	}
	target := math.Abs(es)
	extreme := 0
	for _, v := range bucket {
		if math.Abs(v) >= target {
			extreme++
		}
	}
	return float64(extreme+1) / float64(len(bucket)+1)
}

// NES scales es by the mean magnitude of the bucket. ok is false, and the
// value NaN, when the bucket is empty or its mean magnitude is zero.
func NES(es float64, bucket []float64) (nes float64, ok bool) {
	if len(bucket) == 0 {
		return math.NaN(), false
	}
	abs := make([]float64, len(bucket))
	for i, v := range bucket {
		abs[i] = math.Abs(v)
	}
	mean := stat.Mean(abs, nil)
	if mean == 0 {
		return math.NaN(), false
	}
	return es / mean, true
}

func percentileInterval(bucket []float64, level float64) Interval {
	sorted := append([]float64(nil), bucket...)
	sort.Float64s(sorted)
	lo, hi := quantiles(sorted, level)
	return Interval{Lower: lo, Upper: hi, Defined: true}
}

// bootstrapInterval averages percentile bounds across resamples of the bucket
func (e *Estimator) bootstrapInterval(bucket []float64, seed int64) Interval {
	rnd := e.opts.RNG.Stream(seed, stageBootstrap, 0)
	n := len(bucket)
	sample := make([]float64, n)

	var sumLo, sumHi float64
	for b := 0; b < e.opts.Resamples; b++ {
		for i := range sample {
			sample[i] = bucket[rnd.Intn(n)]
		}
		sort.Float64s(sample)
		lo, hi := quantiles(sample, e.opts.Level)
		sumLo += lo
		sumHi += hi
	}
	r := float64(e.opts.Resamples)
	return Interval{Lower: sumLo / r, Upper: sumHi / r, Defined: true}
}

func quantiles(sorted []float64, level float64) (lo, hi float64) {
	tail := (1 - level) / 2
	return stat.Quantile(tail, stat.Empirical, sorted, nil),
		stat.Quantile(1-tail, stat.Empirical, sorted, nil)
}
