package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slotScope/internal/api"
	"slotScope/internal/config"
	"slotScope/internal/storage/postgres"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	app, err := api.NewApp(store, logger)
	if err != nil {
		return err
	}

	logger.Info("serve start", zap.String("addr", cfg.Addr))
	return api.Serve(ctx, app, cfg.Addr, logger)
}
