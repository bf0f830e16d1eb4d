package main

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "go.uber.org/automaxprocs"

	"slotScope/internal/config"
	"slotScope/internal/storage"
	"slotScope/internal/storage/memory"
	"slotScope/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Slot protocol event projector",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Follow the chain and project slot protocol events",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "EVM RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("hub", nil, "hub addresses (comma-separated)")
	runCmd.Flags().StringSlice("factory", nil, "factory addresses (comma-separated)")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("archive", "", "append applied raw logs to this JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path (memory store)")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("store", config.StoreMemory, "entity store (memory, postgres)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	runCmd.Flags().String("api-addr", "", "serve the query API on this address")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().Bool("follow", false, "keep polling for new blocks")
	runCmd.Flags().Duration("poll-interval", 5*time.Second, "head polling interval in follow mode")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Replay an archived raw log file into the entity store",
		RunE:  runProject,
	}

	projectCmd.Flags().String("rpc", "", "EVM RPC URL for currency metadata (optional)")
	projectCmd.Flags().String("in", "", "input raw logs JSONL")
	projectCmd.Flags().String("errors", "./data/projection_errors.jsonl", "projection errors JSONL")
	projectCmd.Flags().StringSlice("hub", nil, "hub addresses (comma-separated)")
	projectCmd.Flags().StringSlice("factory", nil, "factory addresses (comma-separated)")
	projectCmd.Flags().String("store", config.StoreMemory, "entity store (memory, postgres)")
	projectCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	projectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(projectCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only query API over Postgres",
		RunE:  runServe,
	}

	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Re-read token metadata of known currencies",
		RunE:  runEnrich,
	}

	enrichCmd.Flags().String("rpc", "", "EVM RPC URL")
	enrichCmd.Flags().StringSlice("currency", nil, "currency addresses (comma-separated)")
	enrichCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	enrichCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(enrichCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the Postgres schema",
	}
	migrateCmd.PersistentFlags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up [N]",
			Short: "Apply all or N up migrations",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runMigrate(postgres.MigrateUp),
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back all or N migrations",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runMigrate(postgres.MigrateDown),
		},
	)

	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func openStore(ctx context.Context, kind, dsn string) (storage.Store, error) {
	if kind == config.StorePostgres {
		store, err := postgres.NewStore(ctx, dsn)
		if err != nil {
			return nil, errors.Wrap(err, "connect postgres")
		}
		return store, nil
	}
	return memory.NewStore(), nil
}
