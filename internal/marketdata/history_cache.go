package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// historyKey identifies a cached daily-close series.
type historyKey struct {
	Ticker       string
	LookbackDays int
}

// historyEntry holds cached closes with their expiry.
type historyEntry struct {
	closes  []float64
	expires time.Time
}

// HistoryCache wraps a Service and memoizes GetDailyCloses for a TTL.
// Quote, expiration, and chain lookups pass straight through: those must
// be fresh per run, while beta regression tolerates slightly stale
// closes. A singleflight.Group prevents duplicate in-flight fetches for
// the same series (the benchmark is requested by every run).
type HistoryCache struct {
	Service

	mu      sync.RWMutex
	entries map[historyKey]*historyEntry
	group   singleflight.Group
	ttl     time.Duration
}

// NewHistoryCache creates a caching wrapper around svc.
func NewHistoryCache(svc Service, ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		Service: svc,
		entries: make(map[historyKey]*historyEntry),
		ttl:     ttl,
	}
}

// GetDailyCloses returns cached closes when fresh, otherwise fetches and
// stores them.
func (hc *HistoryCache) GetDailyCloses(ctx context.Context, ticker string, lookbackDays int) ([]float64, error) {
	key := historyKey{Ticker: ticker, LookbackDays: lookbackDays}

	hc.mu.RLock()
	entry, ok := hc.entries[key]
	hc.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.closes, nil
	}

	v, err, _ := hc.group.Do(fmt.Sprintf("%s/%d", ticker, lookbackDays), func() (interface{}, error) {
		closes, err := hc.Service.GetDailyCloses(ctx, ticker, lookbackDays)
		if err != nil {
			return nil, err
		}

		hc.mu.Lock()
		hc.entries[key] = &historyEntry{closes: closes, expires: time.Now().Add(hc.ttl)}
		hc.mu.Unlock()

		return closes, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]float64), nil
}
