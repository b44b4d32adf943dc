package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jwaldner/putfolio/internal/config"
	"github.com/jwaldner/putfolio/internal/export"
	"github.com/jwaldner/putfolio/internal/logger"
	"github.com/jwaldner/putfolio/internal/models"
	"github.com/jwaldner/putfolio/internal/optimizer"
)

// Runner is the optimization entry point the HTTP layer depends on.
type Runner interface {
	Optimize(ctx context.Context, req models.OptimizeRequest) (*models.OptimizeResponse, error)
}

// ConnectionTester pings the pricing service.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// PortfolioHandler is the HTTP layer over the optimizer - routing and
// serialization only, no business logic.
type PortfolioHandler struct {
	runner Runner
	tester ConnectionTester
	config *config.Config
}

func NewPortfolioHandler(runner Runner, tester ConnectionTester, cfg *config.Config) *PortfolioHandler {
	return &PortfolioHandler{
		runner: runner,
		tester: tester,
		config: cfg,
	}
}

// FundsHandler returns the fund catalog with default weights.
func (h *PortfolioHandler) FundsHandler(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r, "GET, OPTIONS") {
		return
	}

	funds := make([]models.Fund, 0, len(h.config.Funds))
	for _, f := range h.config.FundCatalog() {
		funds = append(funds, models.Fund{
			Ticker:        f.Ticker,
			Name:          f.Name,
			DefaultWeight: f.Weight,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"funds":     funds,
		"benchmark": h.config.Beta.Benchmark,
	})
}

// OptimizeHandler runs one optimization.
func (h *PortfolioHandler) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r, "POST, OPTIONS") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	resp, err := h.runner.Optimize(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrInvalidWeights):
			writeError(w, http.StatusBadRequest, "INVALID_WEIGHTS", err.Error())
		case errors.Is(err, optimizer.ErrRunInProgress):
			writeError(w, http.StatusConflict, "RUN_IN_PROGRESS", err.Error())
		case errors.Is(err, optimizer.ErrNoCandidates), errors.Is(err, optimizer.ErrNoPositions):
			writeError(w, http.StatusUnprocessableEntity, "NO_RESULT", err.Error())
		default:
			logger.Error.Printf("❌ Optimization failed: %v", err)
			writeError(w, http.StatusInternalServerError, "OPTIMIZATION_FAILED", "Optimization failed: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// OrderHandler renders a completed optimization result as a plain-text
// trade order sheet.
func (h *PortfolioHandler) OrderHandler(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r, "POST, OPTIONS") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resp models.OptimizeResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if len(resp.Positions) == 0 {
		writeError(w, http.StatusBadRequest, "NO_TRADES", "No trades to export")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.TradeOrder(&resp)))
}

// TestConnectionHandler tests the pricing-service connection.
func (h *PortfolioHandler) TestConnectionHandler(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r, "GET, OPTIONS") {
		return
	}

	if err := h.tester.TestConnection(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "error",
			"message": "MarketData API connection failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   "MarketData API connection successful",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handlePreflight sets CORS headers for browser compatibility and
// answers OPTIONS preflights. Returns true when the request is done.
func handlePreflight(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("❌ Failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}
