package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var benchmarkCloses = []float64{100, 101, 99, 102, 104, 103, 105, 108, 107, 110, 112}

// leveredCloses builds a price series whose daily returns are factor times
// the base series' returns.
func leveredCloses(base []float64, factor float64) []float64 {
	out := []float64{50}
	for i := 1; i < len(base); i++ {
		r := base[i]/base[i-1] - 1
		out = append(out, out[len(out)-1]*(1+factor*r))
	}
	return out
}

func newEstimator(market *fakeMarket) *BetaEstimator {
	return NewBetaEstimator(market, "SPY", 90)
}

func TestBetaOfBenchmarkIsOne(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"SPY": 100})
	require.NotNil(t, beta)
	assert.InDelta(t, 1.0, *beta, 1e-9)
}

func TestBetaOfLeveredFund(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses
	market.closes["QQQ"] = leveredCloses(benchmarkCloses, 2)

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"QQQ": 100})
	require.NotNil(t, beta)
	assert.InDelta(t, 2.0, *beta, 1e-9)
}

func TestBetaBlendsByWeight(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses
	market.closes["QQQ"] = leveredCloses(benchmarkCloses, 2)

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{
		"SPY": 50,
		"QQQ": 50,
	})
	require.NotNil(t, beta)
	assert.InDelta(t, 1.5, *beta, 1e-9)
}

func TestBetaScaleInvariant(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses
	scaled := make([]float64, len(benchmarkCloses))
	for i, p := range benchmarkCloses {
		scaled[i] = p * 3
	}
	market.closes["QQQ"] = scaled

	// Tripling every price leaves returns, and therefore beta, unchanged.
	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"QQQ": 100})
	require.NotNil(t, beta)
	assert.InDelta(t, 1.0, *beta, 1e-9)
}

func TestBetaNilOnShortBenchmarkHistory(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = []float64{100, 101, 102, 103, 104}

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"SPY": 100})
	assert.Nil(t, beta)
}

func TestBetaNilWhenBenchmarkHistoryFails(t *testing.T) {
	market := newFakeMarket()

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"SPY": 100})
	assert.Nil(t, beta)
}

func TestBetaSkipsFundWithShortHistory(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses
	market.closes["QQQ"] = []float64{400, 401, 402} // too short, skipped
	market.closes["IWM"] = leveredCloses(benchmarkCloses, 2)

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{
		"QQQ": 50,
		"IWM": 50,
	})
	require.NotNil(t, beta)
	// Only IWM contributes; its weight normalizes back to 100%.
	assert.InDelta(t, 2.0, *beta, 1e-9)
}

func TestBetaNilWhenNoFundHistoryUsable(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"QQQ": 100})
	assert.Nil(t, beta)
}

func TestBetaNilOnZeroBenchmarkVariance(t *testing.T) {
	market := newFakeMarket()
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	market.closes["SPY"] = flat
	market.closes["QQQ"] = benchmarkCloses[:]

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{"QQQ": 100})
	assert.Nil(t, beta)
}

func TestBetaIgnoresZeroWeightFunds(t *testing.T) {
	market := newFakeMarket()
	market.closes["SPY"] = benchmarkCloses

	beta := newEstimator(market).Estimate(context.Background(), map[string]float64{
		"SPY": 100,
		"QQQ": 0, // never fetched
	})
	require.NotNil(t, beta)
	assert.InDelta(t, 1.0, *beta, 1e-9)
	assert.Equal(t, 1, market.closesCalls)
}
