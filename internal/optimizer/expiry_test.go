package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysToExpiry(t *testing.T) {
	now := time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)

	days, err := DaysToExpiry(now, "2026-02-04")
	require.NoError(t, err)
	assert.Equal(t, 30, days)

	days, err = DaysToExpiry(now, "2026-01-06")
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	// Same-day expiration floors at 1 so annualization stays finite.
	days, err = DaysToExpiry(now, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	_, err = DaysToExpiry(now, "not-a-date")
	assert.Error(t, err)
}

func TestDaysUntilCanBeNonPositive(t *testing.T) {
	now := time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)

	days, err := daysUntil(now, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, 0, days)

	days, err = daysUntil(now, "2026-01-02")
	require.NoError(t, err)
	assert.Equal(t, -3, days)
}

func TestIsMonthlyExpiration(t *testing.T) {
	assert.True(t, IsMonthlyExpiration("2026-01-16"))  // third Friday
	assert.True(t, IsMonthlyExpiration("2026-02-20"))  // third Friday
	assert.False(t, IsMonthlyExpiration("2026-01-09")) // second Friday
	assert.False(t, IsMonthlyExpiration("2026-01-23")) // fourth Friday
	assert.False(t, IsMonthlyExpiration("2026-01-19")) // Monday in [15,21]
	assert.False(t, IsMonthlyExpiration("garbage"))
}
