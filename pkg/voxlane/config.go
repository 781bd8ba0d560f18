package voxlane

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/voxlane/voxlane/pkg/configutil"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Transport   TransportConfig `mapstructure:"transport"`
	Synthesis   SynthesisConfig `mapstructure:"synthesis"`
	Privacy     PrivacyConfig   `mapstructure:"privacy"`
	Media       MediaConfig     `mapstructure:"media"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type TransportConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type SynthesisConfig struct {
	Provider  string         `mapstructure:"provider"`
	Settings  map[string]any `mapstructure:"settings"`
	TimeoutMS int            `mapstructure:"timeout_ms"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

type MediaConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type MetricsConfig struct {
	JSONLPath string `mapstructure:"jsonl_path"`
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("database.dsn", "voxlane.db")
	v.SetDefault("transport.provider", "twilio")
	v.SetDefault("synthesis.provider", "mock")
	v.SetDefault("synthesis.timeout_ms", 5000)
	v.SetDefault("privacy.redact_pii", true)
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.base_url", "http://localhost:8080/media")
	v.SetDefault("metrics.jsonl_path", "")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	cfg.Database.DSN = os.ExpandEnv(cfg.Database.DSN)
	cfg.Media.BaseURL = os.ExpandEnv(cfg.Media.BaseURL)
	cfg.Transport.Settings = expandSettings(cfg.Transport.Settings)
	cfg.Synthesis.Settings = expandSettings(cfg.Synthesis.Settings)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := configutil.RequireString(c.Database.DSN, "database.dsn"); err != nil {
		return err
	}
	if err := configutil.RequireString(c.Transport.Provider, "transport.provider"); err != nil {
		return err
	}
	if err := configutil.RequireString(c.Synthesis.Provider, "synthesis.provider"); err != nil {
		return err
	}
	return nil
}

// expandSettings applies ${ENV} expansion to every string in a free-form
// settings map, including nested maps and lists.
func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch t := v.(type) {
	case string:
		return os.ExpandEnv(t)
	case map[string]any:
		return expandSettings(t)
	case []any:
		for i := range t {
			t[i] = expandAny(t[i])
		}
		return t
	default:
		return v
	}
}
