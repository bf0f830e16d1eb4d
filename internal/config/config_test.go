package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.StringSlice("hub", nil, "")
	flags.StringSlice("factory", nil, "")
	flags.Uint64("from", 0, "")
	flags.Uint64("to", 0, "")
	flags.String("store", StoreMemory, "")
	flags.Duration("poll-interval", 5*time.Second, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadFromFlags(t *testing.T) {
	cfg, err := Load("", runFlags(t,
		"--rpc", "http://localhost:8545",
		"--hub", "0x1000000000000000000000000000000000000001, 0x1000000000000000000000000000000000000002",
		"--from", "100",
		"--poll-interval", "2s",
	))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Len(t, cfg.Hubs, 2)
	assert.Empty(t, cfg.Factories)
	assert.EqualValues(t, 100, cfg.FromBlock)
	assert.EqualValues(t, 2000, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.True(t, cfg.CheckpointEnabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INDEXER_RPC", "http://node:8545")
	t.Setenv("INDEXER_FACTORY", "0x1000000000000000000000000000000000000003")
	t.Setenv("INDEXER_PG_DSN", "postgres://localhost/slots")
	t.Setenv("INDEXER_BATCH_SIZE", "50")

	cfg, err := Load("", runFlags(t, "--store", "postgres"))
	require.NoError(t, err)
	assert.Equal(t, "http://node:8545", cfg.RPCURL)
	assert.Equal(t, []string{"0x1000000000000000000000000000000000000003"}, cfg.Factories)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "postgres://localhost/slots", cfg.PGDSN)
	assert.EqualValues(t, 50, cfg.BatchSize)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc: http://file:8545
hub:
  - "0x1000000000000000000000000000000000000001"
follow: true
`), 0o644))

	cfg, err := Load(path, runFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "http://file:8545", cfg.RPCURL)
	assert.Equal(t, []string{"0x1000000000000000000000000000000000000001"}, cfg.Hubs)
	assert.True(t, cfg.Follow)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load("", runFlags(t, "--hub", "0x1000000000000000000000000000000000000001"))
	assert.ErrorContains(t, err, "rpc url")

	_, err = Load("", runFlags(t, "--rpc", "http://x"))
	assert.ErrorContains(t, err, "hub or factory")

	_, err = Load("", runFlags(t, "--rpc", "http://x", "--hub", "0x1000000000000000000000000000000000000001", "--store", "redis"))
	assert.ErrorContains(t, err, "unknown store")

	_, err = Load("", runFlags(t, "--rpc", "http://x", "--hub", "0x1000000000000000000000000000000000000001", "--store", "postgres"))
	assert.ErrorContains(t, err, "pg-dsn")

	_, err = Load("", runFlags(t, "--rpc", "http://x", "--hub", "0x1000000000000000000000000000000000000001", "--from", "10", "--to", "5"))
	assert.Error(t, err)
}

func TestLoadServeRequiresDSN(t *testing.T) {
	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("pg-dsn", "", "")
	require.NoError(t, flags.Parse(nil))

	_, err := LoadServe("", flags)
	assert.Error(t, err)

	require.NoError(t, flags.Set("pg-dsn", "postgres://localhost/slots"))
	cfg, err := LoadServe("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadEnrich(t *testing.T) {
	flags := pflag.NewFlagSet("enrich", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.StringSlice("currency", nil, "")
	flags.String("pg-dsn", "", "")
	require.NoError(t, flags.Parse([]string{"--rpc", "http://localhost:8545", "--pg-dsn", "postgres://localhost/slots"}))

	_, err := LoadEnrich("", flags)
	assert.Error(t, err, "currency list is required")

	require.NoError(t, flags.Set("currency", "0x4000000000000000000000000000000000000001,0x4000000000000000000000000000000000000002"))
	cfg, err := LoadEnrich("", flags)
	require.NoError(t, err)
	assert.Len(t, cfg.Currencies, 2)
	assert.Equal(t, "info", cfg.LogLevel)
}
