package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwaldner/putfolio/internal/models"
)

func cand(ticker string, userWeight, yield float64) models.Candidate {
	return models.Candidate{
		Ticker:     ticker,
		UserWeight: userWeight,
		Option: models.CandidateOption{
			Ticker:          ticker,
			AnnualizedYield: yield,
		},
	}
}

func sumWeights(weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return total
}

func TestBoundsForWeight(t *testing.T) {
	assert.Equal(t, AllocationBounds{Min: 40, Max: 60}, BoundsForWeight(50))
	assert.Equal(t, AllocationBounds{Min: 1, Max: 15}, BoundsForWeight(5))
	assert.Equal(t, AllocationBounds{Min: 90, Max: 100}, BoundsForWeight(100))
	assert.Equal(t, AllocationBounds{Min: 1, Max: 11}, BoundsForWeight(1))
}

func TestAllocateShiftsTowardHigherYield(t *testing.T) {
	// Equal user weights, QQQ yields more: QQQ climbs to its band max,
	// SPY drops to its band min.
	weights := Allocate([]models.Candidate{
		cand("SPY", 50, 0.08),
		cand("QQQ", 50, 0.12),
	})

	assert.Equal(t, 40.0, weights["SPY"])
	assert.Equal(t, 60.0, weights["QQQ"])
}

func TestAllocateGreedyFillsBestFirst(t *testing.T) {
	// Budget after minima is 30: the best yielder takes 20 to reach its
	// max, the second takes the remaining 10, the worst gets nothing
	// beyond its minimum.
	weights := Allocate([]models.Candidate{
		cand("EFA", 40, 0.05),
		cand("GLD", 30, 0.08),
		cand("SLV", 30, 0.12),
	})

	assert.Equal(t, 30.0, weights["EFA"])
	assert.Equal(t, 30.0, weights["GLD"])
	assert.Equal(t, 40.0, weights["SLV"])
}

func TestAllocateSingleFund(t *testing.T) {
	weights := Allocate([]models.Candidate{cand("SPY", 100, 0.10)})
	assert.Equal(t, 100.0, weights["SPY"])
}

func TestAllocateSumsToHundredWithinBands(t *testing.T) {
	candidates := []models.Candidate{
		cand("SPY", 20, 0.071),
		cand("QQQ", 15, 0.123),
		cand("IWM", 10, 0.145),
		cand("EFA", 10, 0.052),
		cand("EEM", 10, 0.098),
		cand("GLD", 10, 0.061),
		cand("SLV", 10, 0.134),
		cand("GDX", 10, 0.156),
		cand("IBIT", 5, 0.201),
	}

	weights := Allocate(candidates)

	require.Len(t, weights, len(candidates))
	assert.InDelta(t, 100.0, sumWeights(weights), 0.1)
	for _, c := range candidates {
		b := BoundsForWeight(c.UserWeight)
		w := weights[c.Ticker]
		assert.GreaterOrEqual(t, w, b.Min, c.Ticker)
		assert.LessOrEqual(t, w, b.Max, c.Ticker)
	}
}

func TestAllocateFloorsLowWeightFund(t *testing.T) {
	// A 1% fund can be pushed down only to the 1% floor, never to zero.
	weights := Allocate([]models.Candidate{
		cand("IBIT", 1, 0.01),
		cand("SPY", 99, 0.20),
	})

	assert.Equal(t, 1.0, weights["IBIT"])
	assert.Equal(t, 99.0, weights["SPY"])
	assert.InDelta(t, 100.0, sumWeights(weights), 0.1)
}

func TestAllocateEqualYieldsKeepCandidateOrder(t *testing.T) {
	// Same yield: the earlier candidate absorbs the budget first.
	weights := Allocate([]models.Candidate{
		cand("SPY", 50, 0.10),
		cand("QQQ", 50, 0.10),
	})

	assert.Equal(t, 60.0, weights["SPY"])
	assert.Equal(t, 40.0, weights["QQQ"])
}

func TestAllocateResidualSpreadWhenBandsTooTight(t *testing.T) {
	// Two tiny funds max out at 11 each; the 78-point residual is split
	// evenly so the total still reaches 100.
	weights := Allocate([]models.Candidate{
		cand("SLV", 1, 0.05),
		cand("GDX", 1, 0.07),
	})

	assert.Equal(t, 50.0, weights["SLV"])
	assert.Equal(t, 50.0, weights["GDX"])
	assert.InDelta(t, 100.0, sumWeights(weights), 0.1)
}

func TestAllocateRoundsToOneDecimal(t *testing.T) {
	weights := Allocate([]models.Candidate{
		cand("SPY", 33.33, 0.10),
		cand("QQQ", 33.33, 0.08),
		cand("IWM", 33.34, 0.06),
	})

	for ticker, w := range weights {
		assert.Equal(t, math.Round(w*10)/10, w, ticker)
	}
	assert.InDelta(t, 100.0, sumWeights(weights), 0.1)
}

func TestAllocateEmptyInput(t *testing.T) {
	weights := Allocate(nil)
	assert.Empty(t, weights)
}
