package main

import (
	"os/signal"
	"syscall"

	"ssea/ui"

	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr string
	var name string
	var dbURL string

	cmd := &cobra.Command{
		Use:   "serve DIR",
		Short: "Browse an output directory over HTTP",
		Long: `Serve the reports of one output directory.

The index and per-set HTML pages are served under /reports/. JSON endpoints:
  /api/summary      run summary
  /api/sets/NAME    one sample set, with plot series
  /api/runs         catalog listing (needs --db)
  /api/runs/ID      catalog records of one run (needs --db)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			opts := ui.Options{
				Name:    name,
				GinMode: cfg.Server.GinMode,
				Logger:  logger,
			}
			if url := databaseURL(dbURL); url != "" {
				db, catalog, err := openCatalog(cmd.Context(), url)
				if err != nil {
					return err
				}
				defer db.Close() //nolint:errcheck
				opts.Catalog = catalog
			}

			server, err := ui.NewServer(args[0], opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Start(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080, or $SSEA_SERVE_ADDR)")
	cmd.Flags().StringVar(&name, "name", "", "Run name inside DIR (default: found from the summary file)")
	cmd.Flags().StringVar(&dbURL, "db", "", "Postgres run catalog (default $"+envDatabaseURL+")")

	return cmd
}
