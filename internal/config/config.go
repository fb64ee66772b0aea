// Package config handles configuration loading for valuescreen.
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

	"github.com/seenimoa/valuescreen/internal/valuation"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VALUESCREEN"

// Config represents the complete application configuration.
type Config struct {
	Valuation ValuationConfig `mapstructure:"valuation" yaml:"valuation"`
	Provider  ProviderConfig  `mapstructure:"provider"  yaml:"provider"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// ValuationConfig holds the default DCF assumptions. Rates are decimals.
type ValuationConfig struct {
	GrowthInitial  float64 `mapstructure:"growth_initial"  yaml:"growth_initial"`
	GrowthTerminal float64 `mapstructure:"growth_terminal" yaml:"growth_terminal"`
	DiscountRate   float64 `mapstructure:"discount_rate"   yaml:"discount_rate"`
	ForecastYears  int     `mapstructure:"forecast_years"  yaml:"forecast_years"`
	SplitYear      int     `mapstructure:"split_year"      yaml:"split_year"` // 0 = single stage
}

// Parameters converts the configured assumptions into engine parameters.
// No validation happens here; the engine reports bad values itself.
func (v ValuationConfig) Parameters() valuation.Parameters {
	return valuation.Parameters{
		GrowthRateInitial:  v.GrowthInitial,
		GrowthRateTerminal: v.GrowthTerminal,
		DiscountRate:       v.DiscountRate,
		ForecastYears:      v.ForecastYears,
		SplitYear:          v.SplitYear,
	}
}

// ProviderConfig holds market data source settings.
type ProviderConfig struct {
	Primary   string `mapstructure:"primary"    yaml:"primary"`  // "yahoo" or "fmp"
	Fallback  string `mapstructure:"fallback"   yaml:"fallback"` // "yahoo", "fmp" or "none"
	FMPKey    string `mapstructure:"fmp_key"    yaml:"fmp_key"`
	CacheTTL  int    `mapstructure:"cache_ttl"  yaml:"cache_ttl"`  // seconds
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second, 0 = unlimited
	Timeout   int    `mapstructure:"timeout"    yaml:"timeout"`    // seconds
	NewsLimit int    `mapstructure:"news_limit" yaml:"news_limit"` // 0 disables headlines
}

// CacheDuration returns CacheTTL as a duration.
func (p ProviderConfig) CacheDuration() time.Duration {
	return time.Duration(p.CacheTTL) * time.Second
}

// TimeoutDuration returns Timeout as a duration.
func (p ProviderConfig) TimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

// HasFallback reports whether a fallback provider is configured.
func (p ProviderConfig) HasFallback() bool {
	f := strings.ToLower(strings.TrimSpace(p.Fallback))
	return f != "" && f != "none"
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.valuescreen/config.yaml (home directory)
//  3. /etc/valuescreen/config.yaml (system)
//
// Environment variables override config file values.
// Format: VALUESCREEN_<SECTION>_<KEY>, e.g., VALUESCREEN_PROVIDER_FMP_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".valuescreen"))
	v.AddConfigPath("/etc/valuescreen")

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
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Valuation defaults
	v.SetDefault("valuation.growth_initial", 0.07)
	v.SetDefault("valuation.growth_terminal", 0.03)
	v.SetDefault("valuation.discount_rate", 0.10)
	v.SetDefault("valuation.forecast_years", 10)
	v.SetDefault("valuation.split_year", valuation.DefaultSplitYear)

	// Provider defaults
	v.SetDefault("provider.primary", "yahoo")
	v.SetDefault("provider.fallback", "fmp")
	v.SetDefault("provider.fmp_key", "")
	v.SetDefault("provider.cache_ttl", 300) // 5 minutes
	v.SetDefault("provider.rate_limit", 5)
	v.SetDefault("provider.timeout", 30)
	v.SetDefault("provider.news_limit", 5)

	// API defaults
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// FMP_API_KEY is honoured as well since that is what FMP's own docs use.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FMP_API_KEY"); key != "" && cfg.Provider.FMPKey == "" {
		cfg.Provider.FMPKey = key
	}
	if key := os.Getenv(EnvPrefix + "_PROVIDER_FMP_KEY"); key != "" {
		cfg.Provider.FMPKey = key
	}
}

// Validate checks the settings this package owns. Valuation assumptions are
// left to the engine, which reports them as typed errors.
func (c *Config) Validate() error {
	var errs []error

	primary, ok := CanonicalProvider(c.Provider.Primary)
	if !ok {
		errs = append(errs, fmt.Errorf("provider.primary: unknown provider %q", c.Provider.Primary))
	}
	if c.Provider.HasFallback() {
		fallback, ok := CanonicalProvider(c.Provider.Fallback)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("provider.fallback: unknown provider %q", c.Provider.Fallback))
		case fallback == primary:
			errs = append(errs, fmt.Errorf("provider.fallback: must differ from primary %q", primary))
		}
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("provider.timeout: must be positive, got %d", c.Provider.Timeout))
	}
	if c.Provider.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("provider.cache_ttl: must not be negative, got %d", c.Provider.CacheTTL))
	}
	if c.Provider.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("provider.rate_limit: must not be negative, got %d", c.Provider.RateLimit))
	}
	if c.Provider.NewsLimit < 0 {
		errs = append(errs, fmt.Errorf("provider.news_limit: must not be negative, got %d", c.Provider.NewsLimit))
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port: must be in 1-65535, got %d", c.API.Port))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Fundamentals provider names. "yfinance" is accepted as an alias of
// ProviderYahoo.
const (
	ProviderYahoo = "yahoo"
	ProviderFMP   = "fmp"
)

// CanonicalProvider normalizes a provider name and reports whether it is
// known.
func CanonicalProvider(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderYahoo, "yfinance":
		return ProviderYahoo, true
	case ProviderFMP:
		return ProviderFMP, true
	}
	return "", false
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
