package optimizer

import (
	"math"
	"sort"

	"github.com/jwaldner/putfolio/internal/logger"
	"github.com/jwaldner/putfolio/internal/models"
)

// AllocationBounds is the permissible final-weight band for one fund:
// the user weight ±10 points, floored at 1 and capped at 100.
type AllocationBounds struct {
	Min float64
	Max float64
}

// BoundsForWeight derives the allocation band from a user weight. The
// band cannot invert for any userWeight >= 1, and zero-weight funds never
// reach the allocator; the clamp below is a defensive guard, not an
// expected path.
func BoundsForWeight(userWeight float64) AllocationBounds {
	b := AllocationBounds{
		Min: math.Max(1, userWeight-10),
		Max: math.Min(100, userWeight+10),
	}
	if b.Min > b.Max {
		logger.Warn.Printf("⚠️ Inverted allocation band for user weight %.2f, clamping max to min", userWeight)
		b.Max = b.Min
	}
	return b
}

// Allocate computes final weights for the candidate set. Every fund
// starts at its band minimum; the leftover budget is handed greedily to
// the highest-yielding funds up to their band maximum. If the bands are
// too tight to absorb the full budget (all funds at max), the residual is
// spread evenly, deliberately breaking the per-fund max rather than
// leaving the total short of 100. Weights are rounded to one decimal.
//
// Equal yields keep their original candidate order (stable sort).
func Allocate(candidates []models.Candidate) map[string]float64 {
	weights := make(map[string]float64, len(candidates))
	if len(candidates) == 0 {
		return weights
	}

	bounds := make(map[string]AllocationBounds, len(candidates))
	allocated := 0.0
	for _, c := range candidates {
		b := BoundsForWeight(c.UserWeight)
		bounds[c.Ticker] = b
		weights[c.Ticker] = b.Min
		allocated += b.Min
	}

	// May go negative when the minima alone exceed 100; the greedy loop
	// then does nothing and the weights stay at their minima.
	remaining := 100 - allocated

	sorted := make([]models.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Option.AnnualizedYield > sorted[j].Option.AnnualizedYield
	})

	for _, c := range sorted {
		if remaining <= 0 {
			break
		}
		room := bounds[c.Ticker].Max - weights[c.Ticker]
		if room > 0 {
			add := math.Min(room, remaining)
			weights[c.Ticker] += add
			remaining -= add
		}
	}

	// Every fund is at its max and budget is left over: spread it evenly.
	if remaining > 0.1 {
		logger.Warn.Printf("⚠️ Allocation bands absorbed only %.1f of 100, spreading %.1f evenly across %d funds",
			100-remaining, remaining, len(candidates))
		perFund := remaining / float64(len(candidates))
		for _, c := range candidates {
			weights[c.Ticker] += perFund
		}
	}

	for ticker, w := range weights {
		weights[ticker] = math.Round(w*10) / 10
	}

	return weights
}
