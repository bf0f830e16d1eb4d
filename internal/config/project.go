package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// ProjectConfig holds settings of the project command, which replays an archive.
type ProjectConfig struct {
	RPCURL    string
	In        string
	Errors    string
	Hubs      []string
	Factories []string
	Store     string
	PGDSN     string
	LogLevel  string
}

// LoadProject merges config file, environment variables, and flags into ProjectConfig.
func LoadProject(cfgFile string, flags *pflag.FlagSet) (ProjectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"errors":    "./data/projection_errors.jsonl",
		"store":     StoreMemory,
		"log-level": "info",
	})
	if err != nil {
		return ProjectConfig{}, err
	}

	cfg := ProjectConfig{
		RPCURL:    v.GetString("rpc"),
		In:        v.GetString("in"),
		Errors:    v.GetString("errors"),
		Hubs:      getStringSlice(v, "hub"),
		Factories: getStringSlice(v, "factory"),
		Store:     v.GetString("store"),
		PGDSN:     v.GetString("pg-dsn"),
		LogLevel:  v.GetString("log-level"),
	}
	if cfg.In == "" {
		return cfg, errors.New("input path is required")
	}
	if len(cfg.Hubs)+len(cfg.Factories) == 0 {
		return cfg, errors.New("at least one hub or factory address is required")
	}
	return cfg, validateStore(cfg.Store, cfg.PGDSN)
}
