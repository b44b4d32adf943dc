package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "MARKETDATA_TOKEN", "MARKETDATA_BASE_URL", "MARKETDATA_TIMEOUT_SECONDS",
		"MIN_BID_PRICE", "MIN_PREMIUM", "DTE_WINDOW_BEFORE", "DTE_WINDOW_AFTER",
		"BETA_BENCHMARK", "BETA_LOOKBACK_DAYS", "BETA_CACHE_TTL_MINUTES",
		"DEFAULT_NOMINAL_EXPOSURE", "DEFAULT_TARGET_DTE", "DEFAULT_TARGET_OTM", "DEFAULT_MONTHLY_ONLY",
		"LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.marketdata.app/v1", cfg.MarketData.BaseURL)
	assert.Equal(t, 30, cfg.MarketData.TimeoutSeconds)

	assert.Equal(t, 0.50, cfg.Thresholds.MinBidPrice)
	assert.Equal(t, 1000.0, cfg.Thresholds.MinPremium)
	assert.Equal(t, 20, cfg.Thresholds.DTEWindowBefore)
	assert.Equal(t, 35, cfg.Thresholds.DTEWindowAfter)

	assert.Equal(t, "SPY", cfg.Beta.Benchmark)
	assert.Equal(t, 90, cfg.Beta.LookbackDays)
	assert.Equal(t, 15, cfg.Beta.CacheTTLMinutes)

	assert.Equal(t, 100000.0, cfg.Defaults.NominalExposure)
	assert.Equal(t, 30, cfg.Defaults.TargetDTE)
	assert.Equal(t, 10.0, cfg.Defaults.TargetOTM)
	assert.False(t, cfg.Defaults.MonthlyOnly)

	assert.Equal(t, "info", cfg.Logging.LogLevel)
}

func TestDefaultFundsSumToHundred(t *testing.T) {
	funds := DefaultFunds()
	require.Len(t, funds, 9)

	total := 0
	tickers := make(map[string]bool)
	for _, f := range funds {
		total += f.Weight
		assert.NotEmpty(t, f.Name, f.Ticker)
		tickers[f.Ticker] = true
	}
	assert.Equal(t, 100, total)
	assert.True(t, tickers["SPY"])
	assert.True(t, tickers["IBIT"])
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MIN_PREMIUM", "500")
	t.Setenv("BETA_BENCHMARK", "QQQ")
	t.Setenv("DEFAULT_MONTHLY_ONLY", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 500.0, cfg.Thresholds.MinPremium)
	assert.Equal(t, "QQQ", cfg.Beta.Benchmark)
	assert.True(t, cfg.Defaults.MonthlyOnly)
}

func TestFundName(t *testing.T) {
	cfg := &Config{Funds: DefaultFunds()}

	assert.Equal(t, "S&P 500 ETF", cfg.FundName("SPY"))
	assert.Equal(t, "TSLA", cfg.FundName("TSLA"))
}

func TestFundCatalogReturnsCopy(t *testing.T) {
	cfg := &Config{Funds: DefaultFunds()}

	catalog := cfg.FundCatalog()
	catalog[0].Weight = 99

	assert.Equal(t, 20, cfg.Funds[0].Weight)
}
