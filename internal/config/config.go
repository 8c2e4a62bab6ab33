// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/universe"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Provider ProviderConfig `mapstructure:"provider"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Export   ExportConfig   `mapstructure:"export"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Universe []string       `mapstructure:"universe"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"`
	MaxJobs     int    `mapstructure:"max_jobs"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
}

type ProviderConfig struct {
	Yahoo YahooConfig `mapstructure:"yahoo"`
}

type YahooConfig struct {
	ChartURL          string `mapstructure:"chart_url"`
	SummaryURL        string `mapstructure:"summary_url"`
	Suffix            string `mapstructure:"suffix"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	RetryAttempts     int    `mapstructure:"retry_attempts"`
}

type CacheConfig struct {
	DSN string `mapstructure:"dsn"`
}

type EngineConfig struct {
	Workers                int    `mapstructure:"workers"`
	ProviderTimeoutSeconds int    `mapstructure:"provider_timeout_seconds"`
	FillPolicy             string `mapstructure:"fill_policy"`
}

type ExportConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // for localfs
	S3   S3Config `mapstructure:"s3"`   // for s3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file with environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand ${VAR} placeholders in string values.
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			MaxJobs:     100,
			JobTTLHours: 1,
		},
		Provider: ProviderConfig{
			Yahoo: YahooConfig{
				Suffix:            ".NS",
				TimeoutSeconds:    10,
				RequestsPerMinute: 120,
				RetryAttempts:     2,
			},
		},
		Cache: CacheConfig{
			DSN: "backfolio.db",
		},
		Engine: EngineConfig{
			Workers:                8,
			ProviderTimeoutSeconds: 10,
			FillPolicy:             "zero",
		},
		Export: ExportConfig{
			Type: "localfs",
			Path: "exports",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Universe: universe.Default(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if len(c.Universe) == 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("universe cannot be empty"))
	}
	if c.Engine.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("engine workers must be at least 1, got %d", c.Engine.Workers))
	}
	switch c.Engine.FillPolicy {
	case "zero", "carry":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("fill_policy must be zero or carry, got %q", c.Engine.FillPolicy))
	}
	switch c.Export.Type {
	case "localfs":
	case "s3":
		if c.Export.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when export type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("export type must be localfs or s3, got %q", c.Export.Type))
	}
	return nil
}
