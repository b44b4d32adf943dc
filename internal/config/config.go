package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// MarketDataConfig represents MarketData.app API configuration
type MarketDataConfig struct {
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// FundConfig is one fund in the ETF universe with its default weight
type FundConfig struct {
	Ticker string `yaml:"ticker"`
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
}

// ThresholdsConfig holds the business thresholds that have drifted across
// revisions of the optimizer; they are deliberately configurable rather
// than constants.
type ThresholdsConfig struct {
	MinBidPrice     float64 `yaml:"min_bid_price"`     // liquidity floor for a quoted put
	MinPremium      float64 `yaml:"min_premium"`       // minimum total premium per position
	DTEWindowBefore int     `yaml:"dte_window_before"` // days below target DTE still eligible
	DTEWindowAfter  int     `yaml:"dte_window_after"`  // days above target DTE still eligible
}

// BetaConfig configures the portfolio beta estimate
type BetaConfig struct {
	Benchmark       string `yaml:"benchmark"`
	LookbackDays    int    `yaml:"lookback_days"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

// DefaultsConfig holds the optimization parameters used when a request
// leaves them unset
type DefaultsConfig struct {
	NominalExposure float64 `yaml:"nominal_exposure"`
	TargetDTE       int     `yaml:"target_dte"`
	TargetOTM       float64 `yaml:"target_otm"`
	MonthlyOnly     bool    `yaml:"monthly_only"`
}

type Config struct {
	// Server settings
	Port string

	MarketData MarketDataConfig `yaml:"marketdata"`
	Funds      []FundConfig     `yaml:"funds"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Beta       BetaConfig       `yaml:"beta"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type YAMLConfig struct {
	Port       string           `yaml:"port"`
	MarketData MarketDataConfig `yaml:"marketdata"`
	Funds      []FundConfig     `yaml:"funds"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Beta       BetaConfig       `yaml:"beta"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DefaultFunds is the built-in ETF universe, used when config.yaml does
// not override it. Weights sum to 100.
func DefaultFunds() []FundConfig {
	return []FundConfig{
		{Ticker: "SPY", Name: "S&P 500 ETF", Weight: 20},
		{Ticker: "QQQ", Name: "Nasdaq-100 ETF", Weight: 15},
		{Ticker: "IWM", Name: "Russell 2000 ETF", Weight: 10},
		{Ticker: "EFA", Name: "EAFE International", Weight: 10},
		{Ticker: "EEM", Name: "Emerging Markets", Weight: 10},
		{Ticker: "GLD", Name: "Gold ETF", Weight: 10},
		{Ticker: "SLV", Name: "Silver ETF", Weight: 10},
		{Ticker: "GDX", Name: "Gold Miners ETF", Weight: 10},
		{Ticker: "IBIT", Name: "Bitcoin ETF", Weight: 5},
	}
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		MarketData: MarketDataConfig{
			Token:          getEnv("MARKETDATA_TOKEN", ""),
			BaseURL:        getEnv("MARKETDATA_BASE_URL", "https://api.marketdata.app/v1"),
			TimeoutSeconds: getEnvInt("MARKETDATA_TIMEOUT_SECONDS", 30),
		},
		Funds: DefaultFunds(),
		Thresholds: ThresholdsConfig{
			MinBidPrice:     getEnvFloat("MIN_BID_PRICE", 0.50),
			MinPremium:      getEnvFloat("MIN_PREMIUM", 1000),
			DTEWindowBefore: getEnvInt("DTE_WINDOW_BEFORE", 20),
			DTEWindowAfter:  getEnvInt("DTE_WINDOW_AFTER", 35),
		},
		Beta: BetaConfig{
			Benchmark:       getEnv("BETA_BENCHMARK", "SPY"),
			LookbackDays:    getEnvInt("BETA_LOOKBACK_DAYS", 90),
			CacheTTLMinutes: getEnvInt("BETA_CACHE_TTL_MINUTES", 15),
		},
		Defaults: DefaultsConfig{
			NominalExposure: getEnvFloat("DEFAULT_NOMINAL_EXPOSURE", 100000),
			TargetDTE:       getEnvInt("DEFAULT_TARGET_DTE", 30),
			TargetOTM:       getEnvFloat("DEFAULT_TARGET_OTM", 10),
			MonthlyOnly:     getEnvBool("DEFAULT_MONTHLY_ONLY", false),
		},
		Logging: LoggingConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
			LogFile:  getEnv("LOG_FILE", "putfolio.log"),
		},
	}

	// Try to load from YAML file and overlay non-empty values
	if yamlCfg := loadYAMLConfig(); yamlCfg != nil {
		if yamlCfg.Port != "" {
			cfg.Port = yamlCfg.Port
		}
		if yamlCfg.MarketData.Token != "" && yamlCfg.MarketData.Token != "YOUR_MARKETDATA_TOKEN" {
			if os.Getenv("MARKETDATA_TOKEN") == "" {
				os.Setenv("MARKETDATA_TOKEN", yamlCfg.MarketData.Token)
			}
			cfg.MarketData.Token = yamlCfg.MarketData.Token
		}
		if yamlCfg.MarketData.BaseURL != "" {
			cfg.MarketData.BaseURL = yamlCfg.MarketData.BaseURL
		}
		if yamlCfg.MarketData.TimeoutSeconds > 0 {
			cfg.MarketData.TimeoutSeconds = yamlCfg.MarketData.TimeoutSeconds
		}
		if len(yamlCfg.Funds) > 0 {
			cfg.Funds = yamlCfg.Funds
		}
		if yamlCfg.Thresholds.MinBidPrice > 0 {
			cfg.Thresholds.MinBidPrice = yamlCfg.Thresholds.MinBidPrice
		}
		if yamlCfg.Thresholds.MinPremium > 0 {
			cfg.Thresholds.MinPremium = yamlCfg.Thresholds.MinPremium
		}
		if yamlCfg.Thresholds.DTEWindowBefore > 0 {
			cfg.Thresholds.DTEWindowBefore = yamlCfg.Thresholds.DTEWindowBefore
		}
		if yamlCfg.Thresholds.DTEWindowAfter > 0 {
			cfg.Thresholds.DTEWindowAfter = yamlCfg.Thresholds.DTEWindowAfter
		}
		if yamlCfg.Beta.Benchmark != "" {
			cfg.Beta.Benchmark = yamlCfg.Beta.Benchmark
		}
		if yamlCfg.Beta.LookbackDays > 0 {
			cfg.Beta.LookbackDays = yamlCfg.Beta.LookbackDays
		}
		if yamlCfg.Beta.CacheTTLMinutes > 0 {
			cfg.Beta.CacheTTLMinutes = yamlCfg.Beta.CacheTTLMinutes
		}
		if yamlCfg.Defaults.NominalExposure > 0 {
			cfg.Defaults.NominalExposure = yamlCfg.Defaults.NominalExposure
		}
		if yamlCfg.Defaults.TargetDTE > 0 {
			cfg.Defaults.TargetDTE = yamlCfg.Defaults.TargetDTE
		}
		if yamlCfg.Defaults.TargetOTM > 0 {
			cfg.Defaults.TargetOTM = yamlCfg.Defaults.TargetOTM
		}
		if yamlCfg.Defaults.MonthlyOnly {
			cfg.Defaults.MonthlyOnly = true
		}
		if yamlCfg.Logging.LogLevel != "" {
			cfg.Logging.LogLevel = yamlCfg.Logging.LogLevel
		}
		if yamlCfg.Logging.LogFile != "" {
			cfg.Logging.LogFile = yamlCfg.Logging.LogFile
		}
	}

	return cfg
}

// FundCatalog returns the configured universe sorted the way it was
// declared (catalog order is the allocator's tie-break order).
func (c *Config) FundCatalog() []FundConfig {
	out := make([]FundConfig, len(c.Funds))
	copy(out, c.Funds)
	return out
}

// FundName returns the display name for a ticker, or the ticker itself
// when it is not in the catalog.
func (c *Config) FundName(ticker string) string {
	for _, f := range c.Funds {
		if f.Ticker == ticker {
			return f.Name
		}
	}
	return ticker
}

func loadYAMLConfig() *YAMLConfig {
	data, err := os.ReadFile("config.yaml")
	if err != nil {
		// Could not read config.yaml - silently return nil
		return nil
	}

	var yamlCfg YAMLConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		// Could not parse config.yaml - silently return nil
		return nil
	}

	return &yamlCfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
