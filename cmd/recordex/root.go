package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex"
	"github.com/kailas-cloud/recordex/internal/config"
	logpkg "github.com/kailas-cloud/recordex/internal/logger"
	"github.com/kailas-cloud/recordex/internal/metrics"
	"github.com/kailas-cloud/recordex/internal/version"
)

// app is the state shared by every command, built before each run.
type app struct {
	configPath string
	env        string
	storePath  string
	format     string
	logLevel   string

	cfg     config.Config
	logger  *zap.Logger
	catalog *recordex.Catalog
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "recordex",
		Short: "Typed record documents and field queries",
		Long: `recordex converts typed record documents between JSON, XML and YAML,
flattens them to metadata rows, compiles field queries into document
filters, and stores records in a local directory or in Redis.

Examples:
  # Convert an album document to XML
  recordex convert --style album --to xml album.json

  # Compile a document filter
  recordex filter --style album -q producer="George Martin" -q genre=rock

  # Store a record and query it back
  recordex put --style album --name abbey album.json
  recordex find --style album -q artist=Beatles`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file (default: config/<env>.yaml)")
	pf.StringVar(&a.env, "env", config.GetEnv(), "Environment: local|dev|prod")
	pf.StringVar(&a.storePath, "store", "", "Override storage.path for the local driver")
	pf.StringVar(&a.format, "format", "", "Override storage.format: json|xml|yaml")
	pf.StringVar(&a.logLevel, "log-level", "", "Override logging.level: debug|info|warn|error")

	root.AddCommand(
		newStylesCmd(a),
		newConvertCmd(a),
		newMetadataCmd(a),
		newFilterCmd(a),
		newPutCmd(a),
		newGetCmd(a),
		newFindCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.storePath != "" {
		cfg.Storage.Path = a.storePath
	}
	if a.format != "" {
		cfg.Storage.Format = a.format
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger, err = logpkg.NewLogger(a.env, level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	metrics.Register()

	a.catalog = recordex.New(recordex.WithLogger(a.logger))
	cmd.SetContext(logpkg.ContextWithLogger(contextOf(cmd), a.logger))
	return nil
}

// loadConfig reads --config, else config/<env>.yaml, else the defaults.
func (a *app) loadConfig() (config.Config, error) {
	if a.configPath != "" {
		return config.LoadFile(a.configPath)
	}
	cfg, err := config.Load(a.env)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// open connects to the configured store.
func (a *app) open(ctx context.Context) (*recordex.Database, error) {
	database, err := a.catalog.Open(ctx, a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	logpkg.FromContext(ctx).Debug("Connected to store",
		zap.String("driver", a.cfg.Storage.Driver),
		zap.String("format", a.cfg.Storage.Format),
	)
	return database, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
