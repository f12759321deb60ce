// config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"quant_risk_go/portfolio"
)

// RiskConfig holds the limits enforced by the risk manager. Every field has
// a default and can be overridden in config.yaml.
type RiskConfig struct {
	// MaxPositionSize is the largest single position as a fraction of total
	// portfolio value.
	MaxPositionSize float64 `yaml:"max_position_size"`
	// MaxSectorExposure is reserved for future sector-level checks.
	MaxSectorExposure float64 `yaml:"max_sector_exposure"`
	MaxDrawdownLimit  float64 `yaml:"max_drawdown_limit"`
	// VarLimit bounds portfolio VaR (95%) as a fraction of portfolio value.
	VarLimit     float64 `yaml:"var_limit"`
	RiskFreeRate float64 `yaml:"risk_free_rate"`
}

// YahooConfig holds the HTTP client settings for the Yahoo chart API.
type YahooConfig struct {
	BaseURL            string  `yaml:"base_url"`
	HTTPTimeoutSeconds int     `yaml:"http_timeout_seconds"`
	RequestsPerSecond  float64 `yaml:"requests_per_second"`
	Burst              int     `yaml:"burst"`
}

// DataConfig holds data-source selection and cache settings.
type DataConfig struct {
	DefaultSource            string       `yaml:"default_source"`
	CacheDirectory           string       `yaml:"cache_directory"`
	PriceCacheTTLHours       int          `yaml:"price_cache_ttl_hours"`
	FundamentalCacheTTLHours int          `yaml:"fundamental_cache_ttl_hours"`
	Yahoo                    *YahooConfig `yaml:"yahoo"`
}

// LogConfig holds the configuration for logging.
type LogConfig struct {
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// MonitorConfig holds the periodic analysis loop and HTTP report settings.
type MonitorConfig struct {
	ListenAddr              string `yaml:"listen_addr"`
	AnalysisIntervalMinutes int    `yaml:"analysis_interval_minutes"`
	LookbackDays            int    `yaml:"lookback_days"`
	LogDirectory            string `yaml:"log_directory"`
}

// Config is the top-level configuration structure.
type Config struct {
	Tickers   []string             `yaml:"tickers"`
	Portfolio *portfolio.Portfolio `yaml:"portfolio"`
	Risk      *RiskConfig          `yaml:"risk"`
	Data      *DataConfig          `yaml:"data"`
	Logs      *LogConfig           `yaml:"logs"`
	Monitor   *MonitorConfig       `yaml:"monitor"`
}

// NewConfig creates a Config populated with safe defaults. Risk limits carry
// real defaults; everything a deployment must make an explicit decision
// about is validated after loading.
func NewConfig() *Config {
	return &Config{
		Risk: &RiskConfig{
			MaxPositionSize:   0.20,
			MaxSectorExposure: 0.30,
			MaxDrawdownLimit:  0.20,
			VarLimit:          0.05,
			RiskFreeRate:      0.02,
		},
		Data: &DataConfig{
			DefaultSource:            "sample",
			CacheDirectory:           "./.datacache",
			PriceCacheTTLHours:       6,
			FundamentalCacheTTLHours: 2,
			Yahoo: &YahooConfig{
				BaseURL:            "https://query1.finance.yahoo.com",
				HTTPTimeoutSeconds: 10,
				RequestsPerSecond:  2,
				Burst:              4,
			},
		},
		Logs: &LogConfig{
			LogLevel:   "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Monitor: &MonitorConfig{
			ListenAddr:              ":8087",
			AnalysisIntervalMinutes: 30,
			LookbackDays:            90,
			LogDirectory:            "logs",
		},
	}
}

// LoadConfig loads configuration from the given path, applies defaults, and
// validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s, the service cannot run without one", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the logical consistency of the entire configuration.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("critical config missing: 'tickers' must list at least one symbol")
	}

	if c.Portfolio == nil || len(c.Portfolio.Positions) == 0 {
		return fmt.Errorf("critical config missing: 'portfolio' must declare cash and at least one position")
	}
	if err := c.Portfolio.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Risk == nil {
		return fmt.Errorf("critical config missing: 'risk' block must be provided")
	}
	if c.Risk.MaxPositionSize <= 0 || c.Risk.MaxPositionSize > 1 {
		return fmt.Errorf("config error: risk.max_position_size must be in (0, 1], got %.4f", c.Risk.MaxPositionSize)
	}
	if c.Risk.MaxSectorExposure <= 0 || c.Risk.MaxSectorExposure > 1 {
		return fmt.Errorf("config error: risk.max_sector_exposure must be in (0, 1], got %.4f", c.Risk.MaxSectorExposure)
	}
	if c.Risk.MaxDrawdownLimit <= 0 || c.Risk.MaxDrawdownLimit >= 1 {
		return fmt.Errorf("config error: risk.max_drawdown_limit must be in (0, 1), got %.4f", c.Risk.MaxDrawdownLimit)
	}
	if c.Risk.VarLimit <= 0 || c.Risk.VarLimit >= 1 {
		return fmt.Errorf("config error: risk.var_limit must be in (0, 1), got %.4f", c.Risk.VarLimit)
	}
	if c.Risk.RiskFreeRate < 0 {
		return fmt.Errorf("config error: risk.risk_free_rate cannot be negative")
	}

	if c.Data == nil {
		return fmt.Errorf("critical config missing: 'data' block must be provided")
	}
	if c.Data.DefaultSource == "" {
		return fmt.Errorf("critical config missing: 'data.default_source' must be specified (e.g. 'sample', 'yahoo')")
	}
	if c.Data.CacheDirectory == "" {
		return fmt.Errorf("critical config missing: 'data.cache_directory' must be specified")
	}
	if c.Data.PriceCacheTTLHours <= 0 {
		return fmt.Errorf("config error: data.price_cache_ttl_hours must be positive")
	}
	if c.Data.FundamentalCacheTTLHours <= 0 {
		return fmt.Errorf("config error: data.fundamental_cache_ttl_hours must be positive")
	}
	if c.Data.Yahoo == nil {
		return fmt.Errorf("critical config missing: 'data.yahoo' block must be provided")
	}
	if c.Data.Yahoo.BaseURL == "" {
		return fmt.Errorf("critical config missing: 'data.yahoo.base_url' must be specified")
	}
	if c.Data.Yahoo.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("config error: data.yahoo.http_timeout_seconds must be positive")
	}
	if c.Data.Yahoo.RequestsPerSecond <= 0 {
		return fmt.Errorf("config error: data.yahoo.requests_per_second must be positive")
	}
	if c.Data.Yahoo.Burst <= 0 {
		return fmt.Errorf("config error: data.yahoo.burst must be positive")
	}

	if c.Logs == nil {
		return fmt.Errorf("critical config missing: 'logs' block must be provided")
	}
	if c.Logs.LogLevel == "" {
		return fmt.Errorf("critical config missing: 'logs.log_level' must be specified (e.g. 'info', 'debug')")
	}
	if c.Logs.MaxSizeMB <= 0 {
		return fmt.Errorf("config error: logs.max_size_mb must be positive")
	}
	if c.Logs.MaxBackups <= 0 {
		return fmt.Errorf("config error: logs.max_backups must be positive")
	}
	if c.Logs.MaxAgeDays <= 0 {
		return fmt.Errorf("config error: logs.max_age_days must be positive")
	}

	if c.Monitor == nil {
		return fmt.Errorf("critical config missing: 'monitor' block must be provided")
	}
	if c.Monitor.ListenAddr == "" {
		return fmt.Errorf("critical config missing: 'monitor.listen_addr' must be specified (e.g. ':8087')")
	}
	if c.Monitor.AnalysisIntervalMinutes <= 0 {
		return fmt.Errorf("config error: monitor.analysis_interval_minutes must be positive")
	}
	if c.Monitor.LookbackDays <= 0 {
		return fmt.Errorf("config error: monitor.lookback_days must be positive")
	}
	if c.Monitor.LogDirectory == "" {
		return fmt.Errorf("critical config missing: 'monitor.log_directory' must be specified (e.g. 'logs')")
	}

	return nil
}

// EnvConfig carries deployment overrides read from the environment. A .env
// file, when present, is loaded by main before this is called.
type EnvConfig struct {
	DefaultSource string
	YahooBaseURL  string
}

func LoadEnvConfig() *EnvConfig {
	return &EnvConfig{
		DefaultSource: os.Getenv("DEFAULT_DATA_SOURCE"),
		YahooBaseURL:  os.Getenv("YAHOO_BASE_URL"),
	}
}

// ApplyEnv overlays environment overrides onto the loaded configuration.
func (c *Config) ApplyEnv(env *EnvConfig) {
	if env == nil {
		return
	}
	if env.DefaultSource != "" {
		c.Data.DefaultSource = env.DefaultSource
	}
	if env.YahooBaseURL != "" {
		c.Data.Yahoo.BaseURL = env.YahooBaseURL
	}
}
