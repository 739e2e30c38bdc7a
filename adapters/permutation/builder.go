package permutation

import (
	"context"
	"fmt"
	"sort"

	"ssea/domain/enrichment"
	"ssea/internal"
	"ssea/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultBatchSize is the number of permutations drawn from one RNG stream.
	// It is fixed independently of the worker count so the null distribution
	// does not depend on parallelism.
	DefaultBatchSize = 128

	stagePermutation = "permutation"
)

// Options configures a Builder
type Options struct {
	Permutations int
	Workers      int
	BatchSize    int
	ZeroPolicy   enrichment.ZeroPolicy

	// Envelope keeps every permuted running sum to derive per-rank bands at
	// EnvelopeLevel. Memory grows with Permutations x ranks.
	Envelope      bool
	EnvelopeLevel float64
}

// Builder estimates the null distribution of ES by permuting set membership
// across ranks. One Builder may serve concurrent Build calls; together they
// never run more than Workers batches at once.
type Builder struct {
	rng    ports.RNGPort
	opts   Options
	slots  *semaphore.Weighted
	logger *internal.Logger
}

// NewBuilder creates a permutation builder. Permutations below 1 are coerced to 1.
func NewBuilder(rng ports.RNGPort, opts Options, logger *internal.Logger) *Builder {
	if opts.Permutations < 1 {
		opts.Permutations = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ZeroPolicy == "" {
		opts.ZeroPolicy = enrichment.ZeroToPositive
	}
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	return &Builder{
		rng:    rng,
		opts:   opts,
		slots:  semaphore.NewWeighted(int64(opts.Workers)),
		logger: logger,
	}
}

// Build runs the permutations for one sample set. member is not modified.
func (b *Builder) Build(ctx context.Context, scorer ports.EnrichmentScorer, member []bool, seed int64) (enrichment.NullDistribution, error) {
	n := scorer.Len()
	if len(member) != n {
		return enrichment.NullDistribution{}, fmt.Errorf("membership has %d ranks, scorer has %d", len(member), n)
	}

	perms := b.opts.Permutations
	scores := make([]float64, perms)
	var profiles [][]float64
	if b.opts.Envelope {
		profiles = make([][]float64, perms)
	}

	batches := (perms + b.opts.BatchSize - 1) / b.opts.BatchSize
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for bi := 0; bi < batches; bi++ {
		start := bi * b.opts.BatchSize
		end := min(start+b.opts.BatchSize, perms)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := b.slots.Acquire(gctx, 1); err != nil {
				return err
			}
			defer b.slots.Release(1)

			rnd := b.rng.Stream(seed, stagePermutation, bi)

			// task-local membership; each shuffle continues from the previous
			// arrangement, which is still a uniform permutation
			local := make([]bool, n)
			copy(local, member)

			for i := start; i < end; i++ {
				for j := n - 1; j > 0; j-- {
					k := rnd.Intn(j + 1)
					local[j], local[k] = local[k], local[j]
				}

				var profile []float64
				if profiles != nil {
					profile = make([]float64, n)
					profiles[i] = profile
				}
				scores[i], _, _ = scorer.WalkInto(local, profile)
			}
			b.logger.Trace("permutation batch %d/%d done (%d-%d)", bi+1, batches, start, end-1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return enrichment.NullDistribution{}, err
	}

	null := enrichment.Split(scores, b.opts.ZeroPolicy)
	if profiles != nil {
		null.Envelope = buildEnvelope(profiles, n, b.opts.EnvelopeLevel)
	}
	return null, nil
}

// buildEnvelope computes per-rank percentile bands over permuted profiles
func buildEnvelope(profiles [][]float64, n int, level float64) *enrichment.Envelope {
	if level <= 0 || level >= 1 {
		level = 0.95
	}
	lowerP := (1 - level) / 2
	upperP := 1 - lowerP

	env := &enrichment.Envelope{
		Level: level,
		Lower: make([]float64, n),
		Upper: make([]float64, n),
	}
	column := make([]float64, len(profiles))
	for r := 0; r < n; r++ {
		for i, p := range profiles {
			column[i] = p[r]
		}
		sort.Float64s(column)
		env.Lower[r] = stat.Quantile(lowerP, stat.Empirical, column, nil)
		env.Upper[r] = stat.Quantile(upperP, stat.Empirical, column, nil)
	}
	return env
}
