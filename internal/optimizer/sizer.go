package optimizer

import (
	"math"

	"github.com/jwaldner/putfolio/internal/models"
)

// ContractMultiplier is the standard equity-option share multiplier.
const ContractMultiplier = 100

// SizePosition converts a fund's final weight and the total exposure into
// a whole number of contracts. Returns (nil, false) when the allocation
// cannot support a single contract or the total premium falls below
// minPremium.
//
// The premium floor overrides the allocator's 1%-minimum guarantee: a
// fund can carry positive allocated weight and still be excluded from the
// final positions.
func SizePosition(c models.Candidate, finalWeight, nominalExposure, minPremium float64) (*models.Position, bool) {
	allocation := (finalWeight / 100) * nominalExposure
	notionalPerContract := c.Option.Strike * ContractMultiplier

	if notionalPerContract <= 0 {
		return nil, false
	}

	contracts := int(math.Floor(allocation / notionalPerContract))
	if contracts < 1 {
		return nil, false
	}

	totalPremium := float64(contracts) * c.Option.Bid * ContractMultiplier
	if totalPremium < minPremium {
		return nil, false
	}

	return &models.Position{
		Ticker:          c.Ticker,
		Weight:          finalWeight,
		UserWeight:      c.UserWeight,
		StockPrice:      c.Option.StockPrice,
		Strike:          c.Option.Strike,
		Expiration:      c.Option.Expiration,
		DTE:             c.Option.DTE,
		Bid:             c.Option.Bid,
		Ask:             c.Option.Ask,
		Contracts:       contracts,
		Premium:         totalPremium,
		Notional:        float64(contracts) * notionalPerContract,
		AnnualizedYield: c.Option.AnnualizedYield,
		ActualOTM:       c.Option.ActualOTM,
		OptionSymbol:    c.Option.OptionSymbol,
	}, true
}
