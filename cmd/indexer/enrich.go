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
	"slotScope/internal/projector"
	"slotScope/internal/registry"
)

func runEnrich(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEnrich(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	currencies, err := indexer.ParseAddresses(cfg.Currencies)
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

	store, err := openStore(ctx, config.StorePostgres, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := projector.New(store, registry.New(), metadata.NewResolver(chainClient, logger), logger)
	if err != nil {
		return err
	}

	for _, addr := range currencies {
		currency, err := p.RefreshCurrency(ctx, addr)
		if err != nil {
			return errors.Wrapf(err, "refresh %s", addr.Hex())
		}
		fields := []zap.Field{zap.String("currency", addr.Hex())}
		if currency.Symbol != nil {
			fields = append(fields, zap.String("symbol", *currency.Symbol))
		}
		if currency.Decimals != nil {
			fields = append(fields, zap.Uint8("decimals", *currency.Decimals))
		}
		logger.Info("currency metadata", fields...)
	}
	return nil
}
