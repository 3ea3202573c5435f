// Package config handles configuration loading for fairvalue.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. FAIRVALUE_VALUATION_RISK=moderate.
const EnvPrefix = "FAIRVALUE"

// Config represents the complete application configuration.
type Config struct {
	FMP       FMPConfig       `mapstructure:"fmp"       yaml:"fmp"`
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// FMPConfig holds Financial Modeling Prep client settings.
type FMPConfig struct {
	APIKey      string `mapstructure:"api_key"       yaml:"api_key"`
	BaseURL     string `mapstructure:"base_url"      yaml:"base_url"`
	TimeoutSec  int    `mapstructure:"timeout_sec"   yaml:"timeout_sec"`
	RateLimit   int    `mapstructure:"rate_limit"    yaml:"rate_limit"` // requests per second
	MaxRetries  int    `mapstructure:"max_retries"   yaml:"max_retries"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

// Timeout returns the per-request HTTP timeout.
func (c FMPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheTTL returns how long fetched statements are reused.
func (c FMPConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Validate rejects negative client settings. Zero keeps the provider
// default for rate_limit and cache_ttl_sec.
func (c FMPConfig) Validate() error {
	var errs []error
	for _, f := range []struct {
		key   string
		value int
	}{
		{"fmp.timeout_sec", c.TimeoutSec},
		{"fmp.rate_limit", c.RateLimit},
		{"fmp.max_retries", c.MaxRetries},
		{"fmp.cache_ttl_sec", c.CacheTTLSec},
	} {
		if f.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", f.key, f.value))
		}
	}
	return errors.Join(errs...)
}

// ValuationConfig holds the default DCF inputs. Percentages are given as
// numbers like 8.0 for 8%.
type ValuationConfig struct {
	MinimumYears        int     `mapstructure:"minimum_years"         yaml:"minimum_years"`
	YearsToProject      int     `mapstructure:"years_to_project"      yaml:"years_to_project"`
	ReturnPercentage    float64 `mapstructure:"return_percentage"     yaml:"return_percentage"`
	PerpetualGrowthRate float64 `mapstructure:"perpetual_growth_rate" yaml:"perpetual_growth_rate"`
	MarginOfSafety      float64 `mapstructure:"margin_of_safety"      yaml:"margin_of_safety"`
	Risk                string  `mapstructure:"risk"                  yaml:"risk"` // "conservative", "moderate", "bullish"
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "text", "json" or "yaml"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.fairvalue/config.yaml (home directory)
//  3. /etc/fairvalue/config.yaml (system)
//
// Environment variables override config file values.
// Format: FAIRVALUE_<SECTION>_<KEY>, e.g., FAIRVALUE_FMP_API_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".fairvalue"))
	v.AddConfigPath("/etc/fairvalue")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	// Override sensitive values from environment
	overrideFromEnv(&cfg)

	if err := cfg.FMP.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// FMP defaults
	v.SetDefault("fmp.api_key", "")
	v.SetDefault("fmp.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("fmp.timeout_sec", 30)
	v.SetDefault("fmp.rate_limit", 5)
	v.SetDefault("fmp.max_retries", 2)
	v.SetDefault("fmp.cache_ttl_sec", 3600)

	// Valuation defaults
	v.SetDefault("valuation.minimum_years", 4)
	v.SetDefault("valuation.years_to_project", 4)
	v.SetDefault("valuation.return_percentage", 8.0)
	v.SetDefault("valuation.perpetual_growth_rate", 2.5) // long-run GDP growth
	v.SetDefault("valuation.margin_of_safety", 50.0)
	v.SetDefault("valuation.risk", "conservative")

	v.SetDefault("output.format", "text")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// FMP key variables, highest precedence first.
var fmpKeyEnvVars = []string{EnvPrefix + "_FMP_API_KEY", "FMP_API_KEY"}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	for _, name := range fmpKeyEnvVars {
		if key := os.Getenv(name); key != "" {
			cfg.FMP.APIKey = key
			return
		}
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
