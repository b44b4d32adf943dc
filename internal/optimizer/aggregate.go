package optimizer

import (
	"github.com/jwaldner/putfolio/internal/models"
)

// Aggregate combines sized positions into portfolio-level totals. Yield
// and average DTE are notional-weighted; an unavailable beta passes
// through as nil for the consumer to render as "N/A".
func Aggregate(positions []models.Position, beta *float64) models.PortfolioSummary {
	summary := models.PortfolioSummary{Beta: beta}

	for _, p := range positions {
		summary.TotalPremium += p.Premium
		summary.TotalNotional += p.Notional
	}

	if summary.TotalNotional > 0 {
		for _, p := range positions {
			frac := p.Notional / summary.TotalNotional
			summary.AnnualizedYield += p.AnnualizedYield * frac
			summary.AverageDTE += float64(p.DTE) * frac
		}
	}

	return summary
}
