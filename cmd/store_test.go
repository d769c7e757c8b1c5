package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-cli/internal/config"
)

func TestInitStore_SQLite(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	dsn := filepath.Join(t.TempDir(), "database", "demo.db")
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: dsn,
		},
	}

	st, err := openStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	all, err := st.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.FileExists(t, dsn)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "oracle"},
	}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitStore_PostgresBadURL(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "postgres", DatabaseURL: "postgres://%zz"},
	}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"abc"`)
}
