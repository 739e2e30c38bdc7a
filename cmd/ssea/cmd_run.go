package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"ssea/adapters/input"
	"ssea/adapters/report"
	"ssea/app"
	"ssea/domain/run"
	"ssea/internal"
	"ssea/internal/config"
	"ssea/internal/errors"
	"ssea/ports"

	"github.com/spf13/cobra"
)

type runOptions struct {
	weights    string
	gmt        []string
	gmx        []string
	header     bool
	sheet      string
	weightHit  string
	weightMiss string
	perms      int
	confInt    float64
	ciMethod   string
	resamples  int
	seed       int64
	workers    int
	zeroPolicy string
	envelope   bool
	noEnvelope bool
	outputDir  string
	name       string
	db         string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an enrichment analysis",
		Long: `Run an enrichment analysis of sample sets against a weighted ranking.

The weights file holds one sample and one weight per row (tab-separated,
.csv or .xlsx). Sample sets come from .gmt and .gmx files. Each set gets a
JSON, HTML and SVG report in the output directory, next to a run summary
and an index page.

Example: ssea run --weights weights.tsv --gmt sets.gmt --perms 1000 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			opts.applyFlags(cmd, cfg)
			return runAnalysis(cmd.Context(), cmd.OutOrStdout(), opts, cfg, logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.weights, "weights", "", "Sample weights file (.tsv, .csv or .xlsx)")
	f.StringArrayVar(&opts.gmt, "gmt", nil, "Sample sets in GMT format (repeatable)")
	f.StringArrayVar(&opts.gmx, "gmx", nil, "Sample sets in GMX format (repeatable)")
	f.BoolVar(&opts.header, "header", false, "Skip the first row of the weights file")
	f.StringVar(&opts.sheet, "sheet", "", "Worksheet of an .xlsx weights file (default first)")
	f.StringVar(&opts.weightHit, "weight-hit", config.DefaultWeightHit, "Hit weighting method (see ssea methods)")
	f.StringVar(&opts.weightMiss, "weight-miss", config.DefaultWeightMiss, "Miss weighting method (see ssea methods)")
	f.IntVar(&opts.perms, "perms", config.DefaultPerms, "Permutations per sample set (values below 1 become 1)")
	f.Float64Var(&opts.confInt, "conf-int", config.DefaultConfInt, "Confidence level of the ES interval, in (0,1)")
	f.StringVar(&opts.ciMethod, "ci-method", config.DefaultCIMethod, "Interval method: percentile or bootstrap")
	f.IntVar(&opts.resamples, "bootstrap-resamples", config.DefaultResamples, "Resamples for the bootstrap interval")
	f.Int64Var(&opts.seed, "seed", 0, "Base random seed (generated and recorded when omitted)")
	f.IntVar(&opts.workers, "workers", 0, "Concurrent sample sets (0 means one per CPU)")
	f.StringVar(&opts.zeroPolicy, "zero-policy", config.DefaultZeroPolicy, "Null scores of exactly zero: positive or drop")
	f.BoolVar(&opts.envelope, "plot-conf-int", config.DefaultEnvelope, "Draw the null confidence envelope on enrichment plots")
	f.BoolVar(&opts.noEnvelope, "no-plot-conf-int", false, "Leave the null confidence envelope off enrichment plots")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "Output directory (default SSEA_<timestamp>)")
	f.StringVarP(&opts.name, "name", "n", config.DefaultName, "Run name, used as the file prefix")
	f.StringVar(&opts.db, "db", "", "Record the run in this Postgres catalog (default $"+envDatabaseURL+")")

	_ = cmd.MarkFlagRequired("weights")
	cmd.MarkFlagsOneRequired("gmt", "gmx")
	cmd.MarkFlagsMutuallyExclusive("plot-conf-int", "no-plot-conf-int")

	return cmd
}

// applyFlags overrides cfg with every flag given on the command line
func (o *runOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	a := &cfg.Analysis

	if f.Changed("weight-hit") {
		a.WeightMethodHit = o.weightHit
	}
	if f.Changed("weight-miss") {
		a.WeightMethodMiss = o.weightMiss
	}
	if f.Changed("perms") {
		a.Perms = o.perms
	}
	if f.Changed("conf-int") {
		a.ConfInt = o.confInt
	}
	if f.Changed("ci-method") {
		a.CIMethod = o.ciMethod
	}
	if f.Changed("bootstrap-resamples") {
		a.BootstrapResamples = o.resamples
	}
	if f.Changed("seed") {
		seed := o.seed
		a.Seed = &seed
	}
	if f.Changed("workers") {
		a.Workers = o.workers
	}
	if f.Changed("zero-policy") {
		a.ZeroPolicy = o.zeroPolicy
	}
	if f.Changed("plot-conf-int") {
		a.Envelope = o.envelope
	}
	if f.Changed("no-plot-conf-int") {
		a.Envelope = !o.noEnvelope
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if f.Changed("name") {
		cfg.Name = o.name
	}
}

// runAnalysis validates settings, reads inputs, runs the analysis and writes
// the report directory
func runAnalysis(ctx context.Context, out io.Writer, opts *runOptions, cfg *config.Config, logger *internal.Logger) error {
	if err := cfg.Analysis.Validate(); err != nil {
		return err
	}

	weights, err := input.NewDataReader(opts.weights, input.ReaderConfig{
		Header: opts.header,
		Sheet:  opts.sheet,
	}, logger).ReadWeights()
	if err != nil {
		return errors.Wrap(err, "failed to read weights")
	}

	readers := make([]ports.SampleSetReader, 0, len(opts.gmt)+len(opts.gmx))
	for _, path := range opts.gmt {
		readers = append(readers, input.NewGMTReader(path))
	}
	for _, path := range opts.gmx {
		readers = append(readers, input.NewGMXReader(path))
	}
	sets, err := input.LoadSampleSets(readers...)
	if err != nil {
		return errors.Wrap(err, "failed to read sample sets")
	}
	logger.Debug("Read %d weights and %d sample sets", weights.Len(), len(sets))

	runner := app.NewAnalysisRunner(cfg.Analysis, app.WithLogger(logger))
	r, err := runner.Run(ctx, weights.Samples, weights.Weights, sets)
	if err != nil {
		return errors.Wrap(err, "analysis failed")
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = report.DefaultOutputDir()
	}
	render, err := report.NewRenderContext()
	if err != nil {
		return errors.Wrap(err, "failed to load report templates")
	}
	summary, err := report.NewWriter(outputDir, cfg.Name, render, logger).WriteRun(r)
	if err != nil {
		return errors.Wrap(err, "failed to write reports")
	}

	if url := databaseURL(opts.db); url != "" {
		if err := recordRun(ctx, url, cfg.Name, outputDir, r); err != nil {
			return err
		}
		logger.Info("Recorded run %s in the catalog", r.Manifest.RunID)
	}

	printSummary(out, summary)
	fmt.Fprintf(out, "\nReports written to %s\n", outputDir)
	return nil
}

func recordRun(ctx context.Context, url, name, outputDir string, r *run.Run) error {
	db, catalog, err := openCatalog(ctx, url)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	if err := catalog.SaveRun(ctx, name, outputDir, r); err != nil {
		return errors.Wrap(err, "failed to record run")
	}
	return nil
}

// printSummary writes one line per sample set
func printSummary(out io.Writer, s *report.Summary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tSIZE\tHITS\tES\tNES\tP\tQ\tFLAGS")
	for _, rec := range s.Results {
		nes := "-"
		if rec.NES != nil {
			nes = strconv.FormatFloat(*rec.NES, 'f', 3, 64)
		}
		flags := ""
		switch {
		case rec.Degenerate:
			flags = rec.DegenerateReason
		case rec.InsufficientNull:
			flags = "insufficient_null"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%s\t%.4g\t%.4g\t%s\n",
			rec.Name, rec.SetSize, rec.HitCount, rec.ES, nes, rec.PValue, rec.FDRQValue, flags)
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintf(out, "\nrun %s, seed %d, %d permutations\n", s.RunID, s.Seed, s.Perms)
}
