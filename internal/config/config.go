package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds settings of the run command, loaded from flags, env, or config file.
type Config struct {
	RPCURL            string
	FromBlock         uint64
	ToBlock           uint64
	Hubs              []string
	Factories         []string
	BatchSize         uint64
	Archive           string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	Store             string
	PGDSN             string
	APIAddr           string
	MetricsAddr       string
	PollInterval      time.Duration
	Follow            bool
	LogLevel          string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size":         uint64(2000),
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"store":              StoreMemory,
		"poll-interval":      5 * time.Second,
		"log-level":          "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:            v.GetString("rpc"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Hubs:              getStringSlice(v, "hub"),
		Factories:         getStringSlice(v, "factory"),
		BatchSize:         v.GetUint64("batch-size"),
		Archive:           v.GetString("archive"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Store:             strings.ToLower(v.GetString("store")),
		PGDSN:             v.GetString("pg-dsn"),
		APIAddr:           v.GetString("api-addr"),
		MetricsAddr:       v.GetString("metrics-addr"),
		PollInterval:      v.GetDuration("poll-interval"),
		Follow:            v.GetBool("follow"),
		LogLevel:          v.GetString("log-level"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc url is required")
	}
	if len(c.Hubs)+len(c.Factories) == 0 {
		return errors.New("at least one hub or factory address is required")
	}
	if c.ToBlock != 0 && c.ToBlock < c.FromBlock {
		return errors.Newf("to block %d is before from block %d", c.ToBlock, c.FromBlock)
	}
	return validateStore(c.Store, c.PGDSN)
}

func validateStore(store, dsn string) error {
	switch store {
	case StoreMemory:
		return nil
	case StorePostgres:
		if dsn == "" {
			return errors.New("pg-dsn is required for the postgres store")
		}
		return nil
	default:
		return errors.Newf("unknown store %q (memory, postgres)", store)
	}
}

// newViper layers defaults, an optional config file, INDEXER_ env vars and flags.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, errors.Wrap(err, "bind flags")
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config")
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}
	return v, nil
}

// getStringSlice reads a list key that may come as a flag slice, a YAML
// list or a comma-separated env var.
func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}
	var items []string
	switch typed := v.Get(key).(type) {
	case string:
		items = strings.Split(typed, ",")
	default:
		items = cast.ToStringSlice(typed)
	}
	return lo.Compact(lo.Map(items, func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}
