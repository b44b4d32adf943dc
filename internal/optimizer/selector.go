package optimizer

import (
	"context"
	"math"
	"time"

	"github.com/jwaldner/putfolio/internal/logger"
	"github.com/jwaldner/putfolio/internal/marketdata"
	"github.com/jwaldner/putfolio/internal/models"
)

// SelectorParams are the search parameters for one fund's best-put scan.
type SelectorParams struct {
	TargetDTE       int
	TargetOTM       float64 // percent below spot
	MinBid          float64 // liquidity floor
	DTEWindowBefore int     // eligible window: [TargetDTE-Before, TargetDTE+After]
	DTEWindowAfter  int
	MonthlyOnly     bool
}

// SelectBestPut scans every eligible expiration for a fund and returns
// the put with the highest annualized yield, not the one closest to the
// target DTE. Per expiration the strike closest to spot*(1-OTM/100) is
// taken, restricted to quotes at or above the liquidity floor.
//
// Returns (nil, nil) when no contract qualifies and (nil, err) when the
// quote or expiration lookup fails; callers treat both as "no candidate
// for this fund" and keep going.
func SelectBestPut(ctx context.Context, svc marketdata.Service, ticker string, now time.Time, p SelectorParams) (*models.CandidateOption, error) {
	quote, err := svc.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	expirations, err := svc.GetExpirations(ctx, ticker)
	if err != nil {
		return nil, err
	}

	eligible := eligibleExpirations(expirations, now, p)
	if len(eligible) == 0 {
		logger.Debug.Printf("🔍 %s: no expirations in DTE window [%d, %d]",
			ticker, minEligibleDTE(p), p.TargetDTE+p.DTEWindowAfter)
		return nil, nil
	}

	targetStrike := quote.Price * (1 - p.TargetOTM/100)

	var best *models.CandidateOption
	for _, expiration := range eligible {
		chain, err := svc.GetPutChain(ctx, ticker, expiration)
		if err != nil {
			logger.Debug.Printf("🔍 %s %s: chain unavailable: %v", ticker, expiration, err)
			continue
		}

		opt := closestEligibleStrike(chain, targetStrike, p.MinBid)
		if opt == nil {
			continue
		}

		dte, err := DaysToExpiry(now, expiration)
		if err != nil {
			continue
		}

		periodYield := opt.Bid / quote.Price
		annualizedYield := periodYield * (365.0 / float64(dte))

		if best == nil || annualizedYield > best.AnnualizedYield {
			best = &models.CandidateOption{
				Ticker:          ticker,
				StockPrice:      quote.Price,
				Strike:          opt.Strike,
				Expiration:      expiration,
				DTE:             dte,
				Bid:             opt.Bid,
				Ask:             opt.Ask,
				AnnualizedYield: annualizedYield,
				ActualOTM:       (quote.Price - opt.Strike) / quote.Price * 100,
				OptionSymbol:    opt.Symbol,
				Volume:          opt.Volume,
				OpenInterest:    opt.OpenInterest,
			}
		}
	}

	return best, nil
}

func minEligibleDTE(p SelectorParams) int {
	min := p.TargetDTE - p.DTEWindowBefore
	if min < 1 {
		min = 1
	}
	return min
}

// eligibleExpirations filters expirations to the DTE window, and to
// monthly expiries when requested.
func eligibleExpirations(expirations []string, now time.Time, p SelectorParams) []string {
	minDTE := minEligibleDTE(p)
	maxDTE := p.TargetDTE + p.DTEWindowAfter

	var eligible []string
	for _, expiration := range expirations {
		days, err := daysUntil(now, expiration)
		if err != nil {
			continue
		}
		if days < minDTE || days > maxDTE {
			continue
		}
		if p.MonthlyOnly && !IsMonthlyExpiration(expiration) {
			continue
		}
		eligible = append(eligible, expiration)
	}

	return eligible
}

// closestEligibleStrike picks the chain row whose strike is nearest the
// target, skipping quotes below the liquidity floor. Returns nil when no
// row qualifies.
func closestEligibleStrike(chain []marketdata.ChainOption, targetStrike, minBid float64) *marketdata.ChainOption {
	var closest *marketdata.ChainOption
	closestDiff := math.Inf(1)

	for i := range chain {
		opt := &chain[i]
		if opt.Bid < minBid {
			continue
		}
		diff := math.Abs(opt.Strike - targetStrike)
		if diff < closestDiff {
			closestDiff = diff
			closest = opt
		}
	}

	return closest
}
