package config

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Audit  AuditConfig  `yaml:"audit" mapstructure:"audit"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SourceConfig configures the remote dataset fetched by extract.
type SourceConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	File        string `yaml:"file" mapstructure:"file"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	// RateLimit is the per-host request rate for HTTP downloads, per second.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AuditConfig configures the query audit log.
type AuditConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An explicit config
// file path may be given; otherwise config.yaml in the working directory is
// used when present.
func Load(configFile ...string) (*Config, error) {
	v := viper.New()

	// Config file
	explicit := len(configFile) > 0 && configFile[0] != ""
	if explicit {
		v.SetConfigFile(configFile[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("HOUSING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "database/demo.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("source.url", "")
	v.SetDefault("source.dir", "data")
	v.SetDefault("source.file", "data/housing.csv")
	v.SetDefault("source.user_agent", "housing-cli/1.0")
	v.SetDefault("source.timeout_secs", 60)
	v.SetDefault("source.max_retries", 1)
	v.SetDefault("source.rate_limit", 5.0)
	v.SetDefault("audit.path", "query_log.md")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional unless explicitly named)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || explicit {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for sqlite")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres (HOUSING_STORE_DATABASE_URL)")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres, got "+quote(c.Store.Driver))
	}

	if c.Store.MaxConns < 0 || c.Store.MinConns < 0 {
		problems = append(problems, "store pool sizes must not be negative")
	}
	if c.Store.MinConns > c.Store.MaxConns && c.Store.MaxConns > 0 {
		problems = append(problems, "store.min_conns must not exceed store.max_conns")
	}
	if c.Source.TimeoutSecs < 0 {
		problems = append(problems, "source.timeout_secs must not be negative")
	}
	if c.Source.MaxRetries < 0 {
		problems = append(problems, "source.max_retries must not be negative")
	}
	if c.Source.RateLimit < 0 {
		problems = append(problems, "source.rate_limit must not be negative")
	}
	if c.Audit.Path == "" {
		problems = append(problems, "audit.path is required")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func quote(s string) string {
	return strconv.Quote(s)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	zapCfg, err := loggerConfig(cfg)
	if err != nil {
		return err
	}

	logger, err := buildLogger(zapCfg)
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

func loggerConfig(cfg LogConfig) (zap.Config, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zapCfg, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	// Stack traces only for errors; the development preset attaches them to
	// every warning, including per-row loader skips.
	zapCfg.DisableStacktrace = true
	return zapCfg, nil
}

func buildLogger(zapCfg zap.Config) (*zap.Logger, error) {
	return zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}
