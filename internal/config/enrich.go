package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// EnrichConfig holds settings of the enrich command.
type EnrichConfig struct {
	RPCURL     string
	Currencies []string
	PGDSN      string
	LogLevel   string
}

// LoadEnrich merges config file, environment variables, and flags into EnrichConfig.
func LoadEnrich(cfgFile string, flags *pflag.FlagSet) (EnrichConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{"log-level": "info"})
	if err != nil {
		return EnrichConfig{}, err
	}

	cfg := EnrichConfig{
		RPCURL:     v.GetString("rpc"),
		Currencies: getStringSlice(v, "currency"),
		PGDSN:      v.GetString("pg-dsn"),
		LogLevel:   v.GetString("log-level"),
	}
	switch {
	case cfg.RPCURL == "":
		return cfg, errors.New("rpc url is required")
	case len(cfg.Currencies) == 0:
		return cfg, errors.New("at least one currency address is required")
	case cfg.PGDSN == "":
		return cfg, errors.New("pg-dsn is required")
	}
	return cfg, nil
}
