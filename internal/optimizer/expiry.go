package optimizer

import (
	"math"
	"time"
)

const expirationLayout = "2006-01-02"

// daysUntil returns calendar days from now (midnight-truncated) to the
// expiration date, using ceiling division. Can be zero or negative for
// expired dates.
func daysUntil(now time.Time, expiration string) (int, error) {
	exp, err := time.ParseInLocation(expirationLayout, expiration, now.Location())
	if err != nil {
		return 0, err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(math.Ceil(exp.Sub(today).Hours() / 24)), nil
}

// DaysToExpiry returns the DTE used for yield math, floored at 1 so
// same-day expirations cannot blow up the annualization.
func DaysToExpiry(now time.Time, expiration string) (int, error) {
	days, err := daysUntil(now, expiration)
	if err != nil {
		return 0, err
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

// IsMonthlyExpiration reports whether a date is a conventional monthly
// expiry: a Friday whose day-of-month falls in [15, 21] (the third
// Friday of the month).
func IsMonthlyExpiration(expiration string) bool {
	exp, err := time.Parse(expirationLayout, expiration)
	if err != nil {
		return false
	}
	return exp.Weekday() == time.Friday && exp.Day() >= 15 && exp.Day() <= 21
}
