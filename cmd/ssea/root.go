package main

import (
	"context"
	"os"

	"ssea/adapters/postgres"
	"ssea/domain/core"
	"ssea/internal"
	"ssea/internal/config"
	"ssea/internal/errors"
	"ssea/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var version = "dev"

// envDatabaseURL names the default run catalog connection string
const envDatabaseURL = "SSEA_DATABASE_URL"

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ssea",
		Short: "SSEA - sample set enrichment analysis",
		Long: `SSEA scores how strongly groups of samples concentrate at the extremes
of a weighted ranking, and estimates significance with permutation nulls.

Settings are read from defaults, then a YAML file (--config or $SSEA_CONFIG),
then SSEA_* environment variables, then command-line flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file (default $SSEA_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMethodsCommand())
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newRunsCommand(opts))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// load reads the configuration and builds a logger writing to the command's
// error stream
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	level, ok := internal.ParseLogLevel(cfg.LogLevel)
	if !ok {
		return nil, nil, core.NewInvalidConfigError("log_level", cfg.LogLevel, "unknown log level")
	}
	if o.verbose {
		level = internal.LogLevelDebug
	}
	return cfg, internal.NewLoggerTo(cmd.ErrOrStderr(), level), nil
}

// databaseURL returns the --db flag, falling back to $SSEA_DATABASE_URL
func databaseURL(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envDatabaseURL)
}

// openCatalog connects to the run catalog. The caller closes the returned DB.
func openCatalog(ctx context.Context, url string) (*sqlx.DB, ports.RunCatalog, error) {
	if url == "" {
		return nil, nil, errors.ConfigInvalid("no database: pass --db or set " + envDatabaseURL)
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, postgres.NewRunRepository(db), nil
}
