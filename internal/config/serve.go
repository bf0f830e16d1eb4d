package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// ServeConfig holds settings of the read-only API server.
type ServeConfig struct {
	PGDSN    string
	Addr     string
	LogLevel string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"addr":      ":8080",
		"log-level": "info",
	})
	if err != nil {
		return ServeConfig{}, err
	}

	cfg := ServeConfig{
		PGDSN:    v.GetString("pg-dsn"),
		Addr:     v.GetString("addr"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.PGDSN == "" {
		return cfg, errors.New("pg-dsn is required")
	}
	return cfg, nil
}

// MigrateConfig holds settings of the migrate command.
type MigrateConfig struct {
	PGDSN    string
	LogLevel string
}

func LoadMigrate(cfgFile string, flags *pflag.FlagSet) (MigrateConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{"log-level": "info"})
	if err != nil {
		return MigrateConfig{}, err
	}
	cfg := MigrateConfig{
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.PGDSN == "" {
		return cfg, errors.New("pg-dsn is required")
	}
	return cfg, nil
}
