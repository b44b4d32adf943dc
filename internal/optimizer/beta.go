package optimizer

import (
	"context"
	"sort"

	"github.com/jwaldner/putfolio/internal/logger"
	"github.com/jwaldner/putfolio/internal/marketdata"
	"github.com/jwaldner/putfolio/internal/stats"
)

const (
	// Minimum raw closing prices a series needs before its returns count.
	minRawPrices = 10
	// Minimum aligned return observations for a usable regression.
	minAlignedReturns = 5
)

// BetaEstimator regresses a weight-blended portfolio return series
// against a benchmark to produce a single portfolio beta.
type BetaEstimator struct {
	market       marketdata.Service
	benchmark    string
	lookbackDays int
}

func NewBetaEstimator(market marketdata.Service, benchmark string, lookbackDays int) *BetaEstimator {
	return &BetaEstimator{
		market:       market,
		benchmark:    benchmark,
		lookbackDays: lookbackDays,
	}
}

// Estimate computes beta = cov(portfolio, benchmark) / var(benchmark)
// from daily returns. It needs only the final weight map, not sized
// positions. Returns nil when the benchmark history is too short, no
// fund series is usable, fewer than minAlignedReturns observations
// align, or the benchmark variance is exactly zero.
func (e *BetaEstimator) Estimate(ctx context.Context, finalWeights map[string]float64) *float64 {
	benchCloses, err := e.market.GetDailyCloses(ctx, e.benchmark, e.lookbackDays)
	if err != nil {
		logger.Info.Printf("📉 Beta unavailable: benchmark %s history failed: %v", e.benchmark, err)
		return nil
	}
	if len(benchCloses) < minRawPrices {
		logger.Info.Printf("📉 Beta unavailable: only %d benchmark prices", len(benchCloses))
		return nil
	}
	benchReturns := stats.Returns(benchCloses)

	// Deterministic fund order for reproducible logs.
	tickers := make([]string, 0, len(finalWeights))
	for ticker := range finalWeights {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	type fundSeries struct {
		weight  float64
		returns []float64
	}

	var series []fundSeries
	minLen := len(benchReturns)
	for _, ticker := range tickers {
		weight := finalWeights[ticker]
		if weight <= 0 {
			continue
		}

		closes := benchCloses
		if ticker != e.benchmark {
			closes, err = e.market.GetDailyCloses(ctx, ticker, e.lookbackDays)
			if err != nil {
				logger.Debug.Printf("📉 Beta: skipping %s, history failed: %v", ticker, err)
				continue
			}
		}
		if len(closes) < minRawPrices {
			logger.Debug.Printf("📉 Beta: skipping %s, only %d prices", ticker, len(closes))
			continue
		}

		returns := stats.Returns(closes)
		if len(returns) < minLen {
			minLen = len(returns)
		}
		series = append(series, fundSeries{weight: weight, returns: returns})
	}

	if len(series) == 0 {
		logger.Info.Printf("📉 Beta unavailable: no fund history")
		return nil
	}
	if minLen < minAlignedReturns {
		logger.Info.Printf("📉 Beta unavailable: only %d aligned returns", minLen)
		return nil
	}

	// Align everything to the shortest series by keeping the most recent
	// observations; older data is discarded, not interpolated.
	bench := tail(benchReturns, minLen)

	portfolio := make([]float64, minLen)
	for i := 0; i < minLen; i++ {
		var weighted, weightSum float64
		for _, s := range series {
			r := tail(s.returns, minLen)
			weighted += s.weight * r[i]
			weightSum += s.weight
		}
		if weightSum > 0 {
			portfolio[i] = weighted / weightSum
		}
	}

	variance := stats.Variance(bench)
	if variance == 0 {
		logger.Info.Printf("📉 Beta unavailable: benchmark variance is zero")
		return nil
	}

	beta := stats.Covariance(portfolio, bench) / variance
	logger.Debug.Printf("📉 Beta: %.3f over %d aligned returns (%d funds)", beta, minLen, len(series))
	return &beta
}

// tail returns the most recent n elements of s.
func tail(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
