package app

import (
	"context"
	"time"

	"ssea/adapters/permutation"
	"ssea/adapters/rng"
	"ssea/domain/enrichment"
	"ssea/domain/ranking"
	"ssea/domain/result"
	"ssea/domain/run"
	"ssea/domain/significance"
	"ssea/internal"
	"ssea/internal/config"
	"ssea/ports"

	"golang.org/x/sync/errgroup"
)

// CodeVersion is recorded in every manifest and summary
const CodeVersion = "ssea 1.0.0"

const stageSampleSet = "sample_set"

// AnalysisRunner scores every sample set against one ranked list and
// attaches permutation significance
type AnalysisRunner struct {
	cfg           config.Analysis
	logger        *internal.Logger
	rngPort       ports.RNGPort
	scorerFactory ports.ScorerFactory
	analyzer      *significance.DistributionAnalyzer
	codeVersion   string
}

// RunnerOption customizes an AnalysisRunner
type RunnerOption func(*AnalysisRunner)

// WithLogger sets the logger
func WithLogger(logger *internal.Logger) RunnerOption {
	return func(r *AnalysisRunner) {
		r.logger = logger
	}
}

// WithRNG replaces the random source
func WithRNG(rngPort ports.RNGPort) RunnerOption {
	return func(r *AnalysisRunner) {
		r.rngPort = rngPort
	}
}

// WithScorerFactory replaces the running-sum kernel
func WithScorerFactory(factory ports.ScorerFactory) RunnerOption {
	return func(r *AnalysisRunner) {
		r.scorerFactory = factory
	}
}

// WithCodeVersion overrides the version recorded in the manifest
func WithCodeVersion(version string) RunnerOption {
	return func(r *AnalysisRunner) {
		r.codeVersion = version
	}
}

// NewAnalysisRunner creates a runner. Configuration is checked when Run is called.
func NewAnalysisRunner(cfg config.Analysis, opts ...RunnerOption) *AnalysisRunner {
	r := &AnalysisRunner{
		cfg:           cfg,
		logger:        internal.NewDiscardLogger(),
		rngPort:       rng.NewAdapter(),
		scorerFactory: ports.DefaultScorerFactory,
		analyzer:      significance.NewDistributionAnalyzer(),
		codeVersion:   CodeVersion,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// setJob carries the per-set state shared by the pool
type setJob struct {
	index int
	set   ranking.SampleSet
}

// Run analyzes sets against the ranked list built from samples and weights.
// Results follow the order of sets. On any error, including cancellation of
// ctx, no results are returned.
func (r *AnalysisRunner) Run(ctx context.Context, samples []string, weights []float64, sets []ranking.SampleSet) (*run.Run, error) {
	start := time.Now()

	settings, err := r.cfg.Settings()
	if err != nil {
		return nil, err
	}
	estimator, err := significance.NewEstimator(significance.Options{
		Level:     settings.ConfInt,
		Method:    settings.CIMethod,
		Resamples: settings.BootstrapResamples,
		RNG:       r.rngPort,
	})
	if err != nil {
		return nil, err
	}

	list, err := ranking.NewRankedList(samples, weights)
	if err != nil {
		return nil, err
	}
	if err := ranking.ValidateSampleSets(sets); err != nil {
		return nil, err
	}

	seed, generated := settings.Seed, false
	if !settings.SeedSet {
		seed, generated = rng.NewRunSeed(), true
	}

	params := run.Parameters{
		WeightMethodHit:  settings.Hit.String(),
		WeightMethodMiss: settings.Miss.String(),
		Perms:            settings.Perms,
		ConfInt:          settings.ConfInt,
		CIMethod:         string(settings.CIMethod),
		ZeroPolicy:       string(settings.ZeroPolicy),
		Envelope:         settings.Envelope,
		Seed:             seed,
		SeedGenerated:    generated,
	}
	if settings.CIMethod == significance.CIBootstrap {
		params.BootstrapResamples = settings.BootstrapResamples
	}

	names := make([]string, len(sets))
	members := make([][]string, len(sets))
	for i, set := range sets {
		names[i] = set.Name
		members[i] = set.SortedMembers()
	}
	manifest := run.NewManifest(params, samples, weights, names, members, r.codeVersion)

	if settings.PermsCoerced {
		r.logger.Warn("perms=%d coerced to 1", r.cfg.Perms)
	}
	r.logParameters(manifest, list.Len(), len(sets), settings.Workers)

	scorer := r.scorerFactory(list, settings.Hit, settings.Miss)
	builder := permutation.NewBuilder(r.rngPort, permutation.Options{
		Permutations:  settings.Perms,
		Workers:       settings.Workers,
		ZeroPolicy:    settings.ZeroPolicy,
		Envelope:      settings.Envelope,
		EnvelopeLevel: settings.ConfInt,
	}, r.logger)

	inputs := make([]result.Input, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.Workers)
	for i, set := range sets {
		job := setJob{index: i, set: set}
		g.Go(func() error {
			in, err := r.analyzeSet(gctx, job, list, scorer, builder, estimator, seed)
			if err != nil {
				return err
			}
			inputs[job.index] = in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pvals := make([]float64, len(inputs))
	for i, in := range inputs {
		pvals[i] = in.Significance.PValue
	}
	qvals := significance.BenjaminiHochberg(pvals)

	results := make([]*result.EnrichmentResult, len(inputs))
	for i := range inputs {
		inputs[i].FDRQValue = qvals[i]
		res, err := result.New(inputs[i], r.analyzer)
		if err != nil {
			return nil, err
		}
		results[i] = res
	}

	manifest.Elapsed = time.Since(start)
	r.logger.Info("Analysis finished: %d sample sets in %s", len(results), manifest.Elapsed.Round(time.Millisecond))

	return &run.Run{Manifest: manifest, Results: results}, nil
}

func (r *AnalysisRunner) analyzeSet(
	ctx context.Context,
	job setJob,
	list *ranking.RankedList,
	scorer ports.EnrichmentScorer,
	builder *permutation.Builder,
	estimator *significance.Estimator,
	baseSeed int64,
) (result.Input, error) {
	if err := ctx.Err(); err != nil {
		return result.Input{}, err
	}

	member, missing := job.set.Membership(list)
	score := scorer.Walk(member)
	seed := r.rngPort.DeriveSeed(baseSeed, stageSampleSet, job.index)

	in := result.Input{
		SampleSet:      job.set,
		Score:          score,
		MissingMembers: missing,
		Seed:           seed,
	}
	if missing > 0 {
		r.logger.Debug("Sample set %s: %d of %d members not in the ranked list", job.set.Name, missing, job.set.Size())
	}

	if score.Degenerate() {
		// a degenerate set has no meaningful null; it reports p=1 and no NES
		r.logger.Debug("Sample set %s is degenerate: %s", job.set.Name, score.Degeneracy.Describe())
		in.Null = enrichment.NullDistribution{}
		in.Significance = estimator.Estimate(score.ES, in.Null, seed)
		return in, nil
	}

	null, err := builder.Build(ctx, scorer, member, seed)
	if err != nil {
		return result.Input{}, err
	}
	in.Null = null
	in.Significance = estimator.Estimate(score.ES, null, seed)
	in.ESSample = list.Sample(score.Index)

	r.logger.Debug("Sample set %s: ES=%.4f p=%.4g", job.set.Name, score.ES, in.Significance.PValue)
	return in, nil
}

func (r *AnalysisRunner) logParameters(m *run.Manifest, numSamples, numSets, workers int) {
	p := m.Parameters
	r.logger.Info("Run %s (fingerprint %s)", m.RunID, m.Fingerprint.Hash.Short())
	r.logger.Info("  Samples:             %d", numSamples)
	r.logger.Info("  Sample sets:         %d", numSets)
	r.logger.Info("  Permutations:        %d", p.Perms)
	r.logger.Info("  Weight method hit:   %s", p.WeightMethodHit)
	r.logger.Info("  Weight method miss:  %s", p.WeightMethodMiss)
	r.logger.Info("  Confidence interval: %g (%s)", p.ConfInt, p.CIMethod)
	r.logger.Info("  Zero policy:         %s", p.ZeroPolicy)
	r.logger.Info("  Workers:             %d", workers)
	if p.SeedGenerated {
		r.logger.Info("  Seed:                %d (generated)", p.Seed)
	} else {
		r.logger.Info("  Seed:                %d", p.Seed)
	}
}
