// Package config loads application configuration from file and environment
// and owns the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	SPAPI   SPAPIConfig   `yaml:"spapi" mapstructure:"spapi"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Analyze AnalyzeConfig `yaml:"analyze" mapstructure:"analyze"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SPAPIConfig holds Selling Partner API credentials and endpoints.
type SPAPIConfig struct {
	ClientID          string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret      string  `yaml:"client_secret" mapstructure:"client_secret"`
	RefreshToken      string  `yaml:"refresh_token" mapstructure:"refresh_token"`
	TokenURL          string  `yaml:"token_url" mapstructure:"token_url"`
	Endpoint          string  `yaml:"endpoint" mapstructure:"endpoint"`
	MarketplaceID     string  `yaml:"marketplace_id" mapstructure:"marketplace_id"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// EngineConfig configures the extraction engine. ThresholdsFile optionally
// points at a YAML file overriding the tuned defaults.
type EngineConfig struct {
	ThresholdsFile string `yaml:"thresholds_file" mapstructure:"thresholds_file"`
}

// AnalyzeConfig configures the pricing-analysis phase.
type AnalyzeConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the upload server.
type ServerConfig struct {
	Port         int   `yaml:"port" mapstructure:"port"`
	MaxUploadMiB int64 `yaml:"max_upload_mib" mapstructure:"max_upload_mib"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SOURCING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mib", 32)
	v.SetDefault("analyze.concurrency", 4)
	// Credentials default empty so AutomaticEnv can bind them; viper only
	// resolves env vars for keys it already knows about.
	v.SetDefault("spapi.client_id", "")
	v.SetDefault("spapi.client_secret", "")
	v.SetDefault("spapi.refresh_token", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("engine.thresholds_file", "")
	v.SetDefault("spapi.token_url", "https://api.amazon.com/auth/o2/token")
	v.SetDefault("spapi.endpoint", "https://sellingpartnerapi-na.amazon.com")
	v.SetDefault("spapi.marketplace_id", "ATVPDKIKX0DER")
	v.SetDefault("spapi.requests_per_second", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
