package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{
		"init", "create_record", "update_record", "read", "delete_record",
		"extract", "transform_load", "query",
	}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "housing-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
	assert.NotNil(t, rootCmd.PersistentPreRunE)
	assert.NotNil(t, rootCmd.PersistentPostRun)
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "db", "driver"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestInitCommand_Flags(t *testing.T) {
	flag := initCmd.Flags().Lookup("reset")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestUpdateRecordCommand_Flags(t *testing.T) {
	for _, name := range []string{
		"medinc", "houseage", "averooms", "avebedrms", "population",
		"aveoccup", "latitude", "longitude", "medhouseval", "set",
	} {
		assert.NotNil(t, updateRecordCmd.Flags().Lookup(name), "update_record should have --%s", name)
	}
}

func TestReadCommand_Flags(t *testing.T) {
	flag := readCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "table", flag.DefValue)
}

func TestPipelineCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "dir", "file"} {
		assert.NotNil(t, extractCmd.Flags().Lookup(name), "extract should have --%s", name)
	}
	assert.NotNil(t, transformLoadCmd.Flags().Lookup("dataset"))
	flag := transformLoadCmd.Flags().Lookup("no-reset")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
store:
  driver: sqlite
  database_url: housing.db
log:
  level: info
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	resetFlags(rootCmd)
	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "housing.db", cfg.Store.DatabaseURL)
}

func TestRootCmd_PersistentPreRunE_FlagOverrides(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	resetFlags(rootCmd)
	dbOverride = filepath.Join(t.TempDir(), "override.db")
	defer func() { dbOverride = "" }()

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, dbOverride, cfg.Store.DatabaseURL)
}

func TestRootCmd_PersistentPreRunE_InvalidDriver(t *testing.T) {
	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	resetFlags(rootCmd)
	drvOverride = "mysql"
	defer func() { drvOverride = "" }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}
