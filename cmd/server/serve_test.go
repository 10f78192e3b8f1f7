package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/blackjack/internal/config"
	"github.com/calvinwijaya/blackjack/internal/store"
)

func TestServeFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  address = ":7000"
}
table {
  starting_money = 300
}
store {
  driver = "memory"
}
`), 0o644))

	seed := int64(11)
	cmd := &ServeCmd{Config: path, Addr: ":9000", LogLevel: "debug", Seed: &seed}
	cfg, err := cmd.load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 300, cfg.Table.StartingMoney)
	assert.Equal(t, int64(11), *cfg.Table.Seed)
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	cmd := &ServeCmd{Config: filepath.Join(t.TempDir(), "missing.hcl"), StoreDriver: "mysql"}
	_, err := cmd.load()
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, closeStore, err := openStore(ctx, config.StoreSettings{Driver: config.DriverMemory}, quietLogger())
	require.NoError(t, err)
	closeStore()
	assert.IsType(t, &store.MemoryStore{}, st)

	dsn := filepath.Join(t.TempDir(), "tables.db")
	st, closeStore, err = openStore(ctx, config.StoreSettings{Driver: config.DriverSQLite, DSN: dsn}, quietLogger())
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &store.DatabaseStore{}, st)
}
