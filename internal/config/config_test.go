package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "database/demo.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Empty(t, cfg.Source.URL)
	assert.Equal(t, "data", cfg.Source.Dir)
	assert.Equal(t, "data/housing.csv", cfg.Source.File)
	assert.Equal(t, 60, cfg.Source.TimeoutSecs)
	assert.Equal(t, 1, cfg.Source.MaxRetries)
	assert.Equal(t, 5.0, cfg.Source.RateLimit)
	assert.Equal(t, "query_log.md", cfg.Audit.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/housing
log:
  level: debug
  format: json
source:
  dir: downloads
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/housing", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "downloads", cfg.Source.Dir)
	// Defaults still apply for unset values
	assert.Equal(t, "query_log.md", cfg.Audit.Path)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "housing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audit:\n  path: audit.md\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "audit.md", cfg.Audit.Path)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HOUSING_STORE_DRIVER", "postgres")
	t.Setenv("HOUSING_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HOUSING_SOURCE_URL", "http://example.test/housing.csv")
	t.Setenv("HOUSING_SOURCE_RATE_LIMIT", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/housing.csv", cfg.Source.URL)
	assert.Equal(t, 0.5, cfg.Source.RateLimit)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestLoggerConfig_StacktraceOnlyForErrors(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		zapCfg, err := loggerConfig(LogConfig{Level: "debug", Format: format})
		require.NoError(t, err)
		assert.True(t, zapCfg.DisableStacktrace, format)

		out := filepath.Join(t.TempDir(), "log.txt")
		zapCfg.OutputPaths = []string{out}
		logger, err := buildLogger(zapCfg)
		require.NoError(t, err)

		logger.Warn("row skipped")
		logger.Error("load failed")
		_ = logger.Sync()

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		text := string(data)
		cut := strings.Index(text, "load failed")
		require.Positive(t, cut, format)
		assert.NotContains(t, text[:cut], "tRunner", format)
		assert.Contains(t, text[cut:], "tRunner", format)
	}
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "database/demo.db"
	cfg.Store.MaxConns = 4
	cfg.Store.MinConns = 1
	cfg.Source.URL = "https://example.test/housing.csv"
	cfg.Source.TimeoutSecs = 60
	cfg.Source.MaxRetries = 1
	cfg.Source.RateLimit = 5
	cfg.Audit.Path = "query_log.md"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "mysql"`)
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HOUSING_STORE_DATABASE_URL")
}

func TestValidate_PoolBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.MinConns = 8

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_conns")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Source.MaxRetries = -1
	cfg.Source.RateLimit = -1
	cfg.Audit.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_retries")
	assert.Contains(t, err.Error(), "rate_limit")
	assert.Contains(t, err.Error(), "audit.path")
}
