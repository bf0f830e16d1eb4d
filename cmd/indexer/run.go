package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"slotScope/internal/api"
	"slotScope/internal/chain"
	"slotScope/internal/config"
	"slotScope/internal/indexer"
	"slotScope/internal/metadata"
	"slotScope/internal/model"
	"slotScope/internal/projector"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
)

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
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

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return errors.Wrap(err, "connect rpc")
	}
	defer chainClient.Close()

	store, err := openStore(ctx, cfg.Store, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := projector.New(store, registry.New(), metadata.NewResolver(chainClient, logger), logger)
	if err != nil {
		return err
	}

	checkpoint, err := restore(ctx, cfg, p, store, hubs, factories, logger)
	if err != nil {
		return err
	}

	var archive storage.Archive
	if cfg.Archive != "" {
		archive = storage.NewLogArchive(cfg.Archive)
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Hubs:         hubs,
		Factories:    factories,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Follow:       cfg.Follow,
		PollInterval: cfg.PollInterval,
	}, chainClient, store, p, archive, checkpoint, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("hubs", len(hubs)),
		zap.Int("factories", len(factories)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("store", cfg.Store),
		zap.String("archive", cfg.Archive),
		zap.Bool("follow", cfg.Follow),
	)

	var app *fiber.App
	if cfg.APIAddr != "" {
		if app, err = api.NewApp(store, logger); err != nil {
			return err
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServers := context.WithCancel(gctx)
	defer stopServers()
	group.Go(func() error {
		if err := runner.Run(gctx); err != nil {
			return err
		}
		// A finished sync keeps answering queries until interrupted.
		if cfg.APIAddr == "" {
			stopServers()
		}
		return nil
	})
	if app != nil {
		group.Go(func() error {
			return api.Serve(serveCtx, app, cfg.APIAddr, logger)
		})
	}
	if cfg.MetricsAddr != "" {
		group.Go(func() error {
			return serveMetrics(serveCtx, cfg.MetricsAddr, logger)
		})
	}
	return group.Wait()
}

// restore picks the checkpoint for the configured store. A Postgres view keeps
// its checkpoint in the same database. A memory view only survives a restart
// through the archive, so it is rebuilt from it before the file checkpoint is
// trusted.
func restore(ctx context.Context, cfg config.Config, p *projector.Projector, store storage.Store, hubs, factories []common.Address, logger *zap.Logger) (indexer.Checkpointer, error) {
	if !cfg.CheckpointEnabled {
		return nil, nil
	}
	if cfg.Store == config.StorePostgres {
		return indexer.NewStateCheckpoint(store, "run"), nil
	}
	if cfg.Archive == "" {
		logger.Warn("checkpoint ignored: a memory store without an archive starts empty")
		return nil, nil
	}

	if _, err := os.Stat(cfg.Archive); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "stat archive")
		}
		// Nothing to rebuild from, so a leftover checkpoint would skip history.
		if err := os.Remove(cfg.Checkpoint); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "remove stale checkpoint")
		}
		return indexer.NewFileCheckpoint(cfg.Checkpoint), nil
	}
	if err := indexer.SeedRegistry(ctx, p.Registry(), store, hubs, factories, cfg.FromBlock); err != nil {
		return nil, err
	}
	stats, err := indexer.Replay(ctx, p, cfg.Archive, func(perr model.ProjectionError) {
		logger.Warn("archived log not applied", zap.Int("line", perr.Line), zap.String("error", perr.Error))
	})
	if err != nil {
		return nil, errors.Wrap(err, "replay archive")
	}
	logger.Info("memory store rebuilt from archive",
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Uint64("last_block", stats.LastBlock),
	)
	return indexer.NewFileCheckpoint(cfg.Checkpoint), nil
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "metrics listen")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(server.Shutdown(shutdownCtx), "metrics shutdown")
	}
}
