package main

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("STORE_BACKEND", "csv")
	t.Setenv("WALLET_CSV_PATH", filepath.Join(dir, "wallet.csv"))
	t.Setenv("PRICES_CSV_PATH", filepath.Join(dir, "prices.csv"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestNewApp_CSVBackend(t *testing.T) {
	csvEnv(t)

	a, err := newApp()
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.db)
	assert.Nil(t, a.mirror)
	assert.Nil(t, a.producer)
	require.NotNil(t, a.runner)

	_, ok := a.runner.Latest()
	assert.False(t, ok)
}

func TestNewApp_OptionalOutputs(t *testing.T) {
	csvEnv(t)
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	t.Setenv("KAFKA_TOPIC", "portfolio-valuations")

	a, err := newApp()
	require.NoError(t, err)

	assert.NotNil(t, a.mirror)
	assert.NotNil(t, a.producer)
	assert.NoError(t, a.Close())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	csvEnv(t)
	t.Setenv("STORE_BACKEND", "sheets")

	_, err := newApp()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRunCmd_MissingWalletFails(t *testing.T) {
	csvEnv(t)

	cmd := &runCmd{}
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "manual", cmd.reason)
	assert.Equal(t, subcommands.ExitFailure, cmd.Execute(context.Background(), fs))
}

func TestCommandNames(t *testing.T) {
	for name, cmd := range map[string]subcommands.Command{
		"run":           &runCmd{},
		"serve":         &serveCmd{},
		"migrate":       &migrateCmd{},
		"import-wallet": &importCmd{},
	} {
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.Synopsis())
		assert.Contains(t, cmd.Usage(), name)
	}
}
