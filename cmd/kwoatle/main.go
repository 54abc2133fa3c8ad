package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/graffic/kwoatle-go/internal/config"
	"github.com/graffic/kwoatle-go/internal/kv"
	"github.com/graffic/kwoatle-go/internal/logging"
	"github.com/graffic/kwoatle-go/internal/quotes"
	"github.com/graffic/kwoatle-go/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env string

	root := &cobra.Command{
		Use:           "kwoatle",
		Short:         "Kwoatle keeps a book of quotes filed under colored categories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultEnv := os.Getenv("ENV")
	if defaultEnv == "" {
		defaultEnv = "development"
	}
	root.PersistentFlags().StringVar(&env, "env", defaultEnv, "environment name, selects config/<env>.yaml")

	root.AddCommand(
		newServeCmd(&env),
		newMigrateCmd(&env),
		newReconcileCmd(&env),
		newExportCmd(&env),
	)
	return root
}

// app holds the components every subcommand needs
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	db       *storage.DB
	book     *quotes.Book

	logCloser io.Closer
}

// newApp loads configuration, opens the database and builds the quote book over it
func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	slog.SetDefault(logger)

	db, err := storage.New(&cfg.Database)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		logCloser.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := kv.NewInstrumented(db.Store(), registry)
	if err != nil {
		db.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to register store metrics: %w", err)
	}

	logger.Debug("application initialized",
		"environment", cfg.Environment,
		"database_driver", cfg.Database.Driver,
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		db:        db,
		book:      quotes.NewBook(store, logger),
		logCloser: logCloser,
	}, nil
}

// Close releases the database and log file
func (a *app) Close() error {
	dbErr := a.db.Close()
	logErr := a.logCloser.Close()
	if dbErr != nil {
		return dbErr
	}
	return logErr
}
