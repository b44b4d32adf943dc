package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jwaldner/putfolio/internal/config"
	"github.com/jwaldner/putfolio/internal/logger"
	"github.com/jwaldner/putfolio/internal/marketdata"
	"github.com/jwaldner/putfolio/internal/models"
)

var (
	// ErrRunInProgress is returned when a second optimization is
	// requested while one is in flight.
	ErrRunInProgress = errors.New("optimization already in progress")

	// ErrInvalidWeights is returned before any fetch when the user
	// weights do not sum to 100 (±0.1) or name an unknown fund.
	ErrInvalidWeights = errors.New("invalid weights")

	// ErrNoCandidates is returned when no fund produced a usable option.
	ErrNoCandidates = errors.New("no options found matching criteria")

	// ErrNoPositions is returned when candidates were found but none
	// survived contract sizing.
	ErrNoPositions = errors.New("no valid trades found (allocations too small)")
)

// Per-fund candidate lookups are independent; cap the fan-out so the
// pricing service's rate limits are respected.
const candidateFetchConcurrency = 4

// Service runs one optimization at a time: candidate search, weight
// allocation, position sizing, beta estimation, aggregation.
type Service struct {
	market marketdata.Service
	cfg    *config.Config
	beta   *BetaEstimator

	mu sync.Mutex // held for the duration of a run
}

func NewService(market marketdata.Service, cfg *config.Config) *Service {
	return &Service{
		market: market,
		cfg:    cfg,
		beta:   NewBetaEstimator(market, cfg.Beta.Benchmark, cfg.Beta.LookbackDays),
	}
}

// Optimize executes a full run. All per-run state lives in locals; the
// mutex only serializes runs so an overlapping request cannot observe or
// corrupt in-flight results.
func (s *Service) Optimize(ctx context.Context, req models.OptimizeRequest) (*models.OptimizeResponse, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()

	startTime := time.Now()
	s.applyDefaults(&req)

	funds, err := s.validateWeights(req.Weights)
	if err != nil {
		return nil, err
	}

	logger.Info.Printf("🚀 Optimizing %d funds | exposure $%.0f | target DTE %d | target OTM %.1f%% | monthly-only %v",
		len(funds), req.NominalExposure, req.TargetDTE, req.TargetOTM, req.MonthlyOnly)

	candidates := s.findCandidates(ctx, funds, req)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	weights := Allocate(candidates)

	var positions []models.Position
	for _, c := range candidates {
		position, ok := SizePosition(c, weights[c.Ticker], req.NominalExposure, s.cfg.Thresholds.MinPremium)
		if !ok {
			logger.Info.Printf("✂️ %s dropped at sizing (weight %.1f%%)", c.Ticker, weights[c.Ticker])
			continue
		}
		positions = append(positions, *position)
	}
	if len(positions) == 0 {
		return nil, ErrNoPositions
	}

	beta := s.beta.Estimate(ctx, weights)
	summary := Aggregate(positions, beta)

	duration := time.Since(startTime)
	logger.Info.Printf("✅ Optimization complete: %d positions | yield %.1f%% | premium $%.0f | %.2fs",
		len(positions), summary.AnnualizedYield*100, summary.TotalPremium, duration.Seconds())

	return &models.OptimizeResponse{
		Positions:        positions,
		OptimizedWeights: weights,
		Summary:          summary,
		NominalExposure:  req.NominalExposure,
		TargetDTE:        req.TargetDTE,
		TargetOTM:        req.TargetOTM,
		Timestamp:        time.Now().Format(time.RFC3339),
		ProcessingTime:   duration.Seconds(),
	}, nil
}

func (s *Service) applyDefaults(req *models.OptimizeRequest) {
	if req.NominalExposure <= 0 {
		req.NominalExposure = s.cfg.Defaults.NominalExposure
	}
	if req.TargetDTE <= 0 {
		req.TargetDTE = s.cfg.Defaults.TargetDTE
	}
	if req.TargetOTM <= 0 {
		req.TargetOTM = s.cfg.Defaults.TargetOTM
	}
}

type weightedFund struct {
	ticker string
	weight float64
}

// validateWeights checks the 100% invariant and resolves the funds to
// optimize, in catalog order (that order is the allocator's tie-break).
// Runs before any fetch.
func (s *Service) validateWeights(weights map[string]float64) ([]weightedFund, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights provided", ErrInvalidWeights)
	}

	catalog := make(map[string]bool, len(s.cfg.Funds))
	for _, f := range s.cfg.Funds {
		catalog[f.Ticker] = true
	}

	total := 0.0
	for ticker, weight := range weights {
		if !catalog[ticker] {
			return nil, fmt.Errorf("%w: unknown fund %q", ErrInvalidWeights, ticker)
		}
		if weight < 0 || weight > 100 {
			return nil, fmt.Errorf("%w: %s weight %.1f out of range", ErrInvalidWeights, ticker, weight)
		}
		total += weight
	}
	if math.Abs(total-100) > 0.1 {
		return nil, fmt.Errorf("%w: weights sum to %.1f, must equal 100", ErrInvalidWeights, total)
	}

	var funds []weightedFund
	for _, f := range s.cfg.Funds {
		if weight, ok := weights[f.Ticker]; ok && weight > 0 {
			funds = append(funds, weightedFund{ticker: f.Ticker, weight: weight})
		}
	}
	return funds, nil
}

// findCandidates fans the per-fund best-put searches out concurrently.
// A failed or empty search drops that fund and never aborts the batch.
// Results keep catalog order regardless of completion order.
func (s *Service) findCandidates(ctx context.Context, funds []weightedFund, req models.OptimizeRequest) []models.Candidate {
	params := SelectorParams{
		TargetDTE:       req.TargetDTE,
		TargetOTM:       req.TargetOTM,
		MinBid:          s.cfg.Thresholds.MinBidPrice,
		DTEWindowBefore: s.cfg.Thresholds.DTEWindowBefore,
		DTEWindowAfter:  s.cfg.Thresholds.DTEWindowAfter,
		MonthlyOnly:     req.MonthlyOnly,
	}

	found := make([]*models.CandidateOption, len(funds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(candidateFetchConcurrency)
	for i, fund := range funds {
		g.Go(func() error {
			option, err := SelectBestPut(gctx, s.market, fund.ticker, time.Now(), params)
			if err != nil {
				logger.Info.Printf("⚠️ %s skipped: %v", fund.ticker, err)
				return nil
			}
			if option == nil {
				logger.Info.Printf("⚠️ %s skipped: no put matched the criteria", fund.ticker)
				return nil
			}
			logger.Debug.Printf("🎯 %s: strike %.2f exp %s yield %.1f%%",
				fund.ticker, option.Strike, option.Expiration, option.AnnualizedYield*100)
			found[i] = option
			return nil
		})
	}
	// Workers swallow their own errors; Wait only orders the writes.
	_ = g.Wait()

	var candidates []models.Candidate
	for i, fund := range funds {
		if found[i] == nil {
			continue
		}
		candidates = append(candidates, models.Candidate{
			Ticker:     fund.ticker,
			UserWeight: fund.weight,
			Option:     *found[i],
		})
	}
	return candidates
}
