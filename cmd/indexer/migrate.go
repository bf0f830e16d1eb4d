package main

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slotScope/internal/config"
)

type migrateFunc func(dsn string, n int, logger *zap.Logger) error

func runMigrate(apply migrateFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadMigrate(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		n := 0
		if len(args) > 0 {
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return errors.Newf("invalid number of migrations: %s", args[0])
			}
		}
		return apply(cfg.PGDSN, n, logger)
	}
}
