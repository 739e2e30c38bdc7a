package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"ssea/domain/result"
	"ssea/internal/errors"
	"ssea/ports"

	"github.com/spf13/cobra"
)

func newRunsCommand(root *rootOptions) *cobra.Command {
	var dbURL string
	var limit int
	var sets []string
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in the catalog",
		Long: `List recent runs recorded in the Postgres catalog.

With --set, list the recorded results of the named sample sets across runs
instead, newest first.

Example: ssea runs --set HALLMARK_HYPOXIA --since 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return errors.ConfigInvalid(fmt.Sprintf("--limit must be positive, got %d", limit))
			}
			if _, _, err := root.load(cmd); err != nil {
				return err
			}
			db, catalog, err := openCatalog(cmd.Context(), databaseURL(dbURL))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			if len(sets) > 0 {
				var from time.Time
				if since > 0 {
					from = time.Now().Add(-since)
				}
				records, err := catalog.FindSampleSets(cmd.Context(), sets, from)
				if err != nil {
					return err
				}
				printRecords(cmd.OutOrStdout(), records)
				return nil
			}

			runs, err := catalog.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "db", "", "Postgres connection string (default $"+envDatabaseURL+")")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Show results of this sample set (repeatable)")
	cmd.Flags().DurationVar(&since, "since", 0, "With --set, only runs newer than this")

	return cmd
}

func printRuns(out io.Writer, runs []ports.RunSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tNAME\tCREATED\tSETS\tSAMPLES\tPERMS\tSEED\tOUTPUT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.RunID, r.Name, r.CreatedAt.Format(time.RFC3339), r.NumSampleSets, r.NumSamples, r.Perms, r.Seed, r.OutputDir)
	}
	tw.Flush() //nolint:errcheck
}

func printRecords(out io.Writer, records []result.Record) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tES\tP\tQ\tHITS\tSEED")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4g\t%.4g\t%d/%d\t%d\n",
			rec.Name, rec.ES, rec.PValue, rec.FDRQValue, rec.HitCount, rec.SetSize, rec.Seed)
	}
	tw.Flush() //nolint:errcheck
}
