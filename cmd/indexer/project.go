package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slotScope/internal/chain"
	"slotScope/internal/config"
	"slotScope/internal/indexer"
	"slotScope/internal/metadata"
	"slotScope/internal/model"
	"slotScope/internal/projector"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
)

func runProject(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadProject(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	hubs, err := indexer.ParseAddresses(cfg.Hubs)
	if err != nil {
		return err
	}
	factories, err := indexer.ParseAddresses(cfg.Factories)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var resolver *metadata.Resolver
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return errors.Wrap(err, "connect rpc")
		}
		defer chainClient.Close()
		resolver = metadata.NewResolver(chainClient, logger)
	} else {
		logger.Info("no rpc configured, currency metadata stays empty")
	}

	store, err := openStore(ctx, cfg.Store, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := registry.New()
	if err := indexer.SeedRegistry(ctx, reg, store, hubs, factories, 0); err != nil {
		return err
	}
	p, err := projector.New(store, reg, resolver, logger)
	if err != nil {
		return err
	}

	errWriter, err := storage.OpenJSONL(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("project start",
		zap.String("in", cfg.In),
		zap.String("errors", cfg.Errors),
		zap.String("store", cfg.Store),
		zap.Int("sources", reg.Len()),
	)

	stats, err := indexer.Replay(ctx, p, cfg.In, func(perr model.ProjectionError) {
		if err := errWriter.Write(perr); err != nil {
			logger.Warn("write projection error", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	summary, err := store.Stats(ctx)
	if err != nil {
		return errors.Wrap(err, "read stats")
	}
	logger.Info("project complete",
		zap.Int("total", stats.Total),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Uint64("last_block", stats.LastBlock),
		zap.Int64("lands", summary.Lands),
		zap.Int64("slots", summary.Slots),
		zap.Int64("events", summary.Events),
	)
	return nil
}
