package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jwaldner/putfolio/internal/models"
)

const (
	heavyRule = "════════════════════════════════════════════════════════════════"
	lightRule = "─────────────────────────────────────────────────────────────────"
)

// TradeOrder renders an optimization result as a plain-text trade order
// sheet: one SELL TO OPEN block per position plus the portfolio summary.
// Pure formatting; safe to call with any completed result.
func TradeOrder(resp *models.OptimizeResponse) string {
	var b strings.Builder

	b.WriteString(heavyRule + "\n")
	b.WriteString("                    PUT PORTFOLIO TRADE ORDER\n")
	b.WriteString(heavyRule + "\n\n")

	b.WriteString("Portfolio Parameters:\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "Target Exposure:     %s\n", Currency(resp.NominalExposure))
	fmt.Fprintf(&b, "Target Maturity:     %d days\n", resp.TargetDTE)
	fmt.Fprintf(&b, "Target OTM:          %.1f%%\n\n", resp.TargetOTM)

	b.WriteString("Portfolio Summary:\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "Annualized Yield:    %.2f%%\n", resp.Summary.AnnualizedYield*100)
	fmt.Fprintf(&b, "Total Premium:       %s\n", Currency(resp.Summary.TotalPremium))
	fmt.Fprintf(&b, "Total Notional:      %s\n", Currency(resp.Summary.TotalNotional))
	fmt.Fprintf(&b, "Average Maturity:    %.0f days\n", resp.Summary.AverageDTE)
	fmt.Fprintf(&b, "Portfolio Beta:      %s\n\n", Beta(resp.Summary.Beta))

	b.WriteString(heavyRule + "\n")
	b.WriteString("                         TRADE DETAILS\n")
	b.WriteString(heavyRule + "\n")

	for i, p := range resp.Positions {
		fmt.Fprintf(&b, "\nTrade %d: %s\n", i+1, p.Ticker)
		b.WriteString(lightRule + "\n")
		b.WriteString("Action:          SELL TO OPEN\n")
		fmt.Fprintf(&b, "Symbol:          %s\n", p.Ticker)
		b.WriteString("Type:            PUT\n")
		fmt.Fprintf(&b, "Strike:          $%.2f\n", p.Strike)
		fmt.Fprintf(&b, "Expiration:      %s (%d days)\n", Date(p.Expiration), p.DTE)
		fmt.Fprintf(&b, "Contracts:       %d\n", p.Contracts)
		fmt.Fprintf(&b, "Limit Price:     $%.2f\n", p.Bid)
		b.WriteString(lightRule + "\n")
		fmt.Fprintf(&b, "Premium:         %s\n", Currency(p.Premium))
		fmt.Fprintf(&b, "Notional:        %s\n", Currency(p.Notional))
		fmt.Fprintf(&b, "Ann. Yield:      %.2f%%\n", p.AnnualizedYield*100)
		fmt.Fprintf(&b, "OCC Symbol:      %s\n", orDefault(p.OptionSymbol, "N/A"))
		fmt.Fprintf(&b, "Weight:          %.1f%%%s\n", p.Weight, weightNote(p))
	}

	b.WriteString("\n" + heavyRule + "\n")
	b.WriteString("                Generated by Put Portfolio Optimizer\n")
	fmt.Fprintf(&b, "                      %s\n", time.Now().Format("Jan 2, 2006 3:04:05 PM"))
	b.WriteString(heavyRule + "\n")

	return b.String()
}

// weightNote annotates a position whose weight the optimizer moved away
// from the user's selection.
func weightNote(p models.Position) string {
	diff := p.Weight - p.UserWeight
	if diff == 0 {
		return ""
	}
	sign := ""
	if diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf(" (optimized from %.1f%%, %s%.1f%%)", p.UserWeight, sign, diff)
}

// Currency formats a dollar amount with comma grouping and two decimals.
func Currency(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "--"
	}

	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	whole := fmt.Sprintf("%.2f", value)
	dot := strings.Index(whole, ".")
	intPart, fracPart := whole[:dot], whole[dot:]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	return sign + "$" + grouped.String() + fracPart
}

// Date renders a YYYY-MM-DD expiration as "Jan 2, 2006"; unparseable
// input passes through unchanged.
func Date(expiration string) string {
	t, err := time.Parse("2006-01-02", expiration)
	if err != nil {
		return expiration
	}
	return t.Format("Jan 2, 2006")
}

// Beta renders a beta estimate, or "N/A" when unavailable.
func Beta(beta *float64) string {
	if beta == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *beta)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
