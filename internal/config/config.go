// Package config provides configuration loading and validation for
// linkward. Values come from a YAML config file and environment
// variables via Viper; defaults are production safe.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/linkward/internal/logger"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"        yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug"       yaml:"debug"`
}

// Validate checks the application configuration.
func (c *AppConfig) Validate() error {
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}
	return nil
}

// Config is the root linkward configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"      yaml:"app"`
	Logger   logger.Config  `mapstructure:"logger"   yaml:"logger"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Refresh  RefreshConfig  `mapstructure:"refresh"  yaml:"refresh"`
}

// Validate validates all configuration sections. An invalid
// configuration is fatal at startup; the refresher never starts with
// one.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Refresh.Validate(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// InitializeViper configures Viper for environment variable and config
// file reading, and applies defaults. Must be called before Load.
func InitializeViper(cfgFile string) error {
	// .env file is optional.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()

	// Config file is optional; env vars and defaults cover the rest.
	_ = viper.ReadInConfig()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	return nil
}

// Load unmarshals and validates the configuration from Viper.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// bindEnvironmentVariables binds well-known environment variables to
// config keys that the dot-to-underscore replacer does not cover.
func bindEnvironmentVariables() error {
	bindings := map[string][]string{
		"app.environment":      {"APP_ENV"},
		"app.debug":            {"APP_DEBUG"},
		"logger.level":         {"LOG_LEVEL"},
		"logger.encoding":      {"LOG_FORMAT"},
		"database.host":        {"DATABASE_HOST", "PGHOST"},
		"database.port":        {"DATABASE_PORT", "PGPORT"},
		"database.user":        {"DATABASE_USER", "PGUSER"},
		"database.password":    {"DATABASE_PASSWORD", "PGPASSWORD"},
		"database.dbname":      {"DATABASE_NAME", "PGDATABASE"},
		"refresh.github.token": {"GITHUB_TOKEN"},
	}

	for key, envVars := range bindings {
		args := append([]string{key}, envVars...)
		if err := viper.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "linkward",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("database", map[string]any{
		"host":    "127.0.0.1",
		"port":    "5432",
		"user":    "linkward",
		"dbname":  "linkward",
		"sslmode": "disable",
	})

	viper.SetDefault("refresh", map[string]any{
		"interval":                DefaultInterval.String(),
		"batch_size":              DefaultBatchSize,
		"jitter_percent":          DefaultJitterPercent,
		"max_concurrency":         DefaultMaxConcurrency,
		"failure_threshold":       DefaultFailureThreshold,
		"fetch_timeout":           DefaultFetchTimeout.String(),
		"retry_unavailable_repos": false,
		"github": map[string]any{
			"api_base_url":        DefaultGitHubAPIBaseURL,
			"requests_per_second": DefaultGitHubRequestsPerSecond,
		},
	})
}
