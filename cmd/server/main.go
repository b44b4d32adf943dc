package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jwaldner/putfolio/internal/config"
	"github.com/jwaldner/putfolio/internal/handlers"
	"github.com/jwaldner/putfolio/internal/logger"
	"github.com/jwaldner/putfolio/internal/marketdata"
	"github.com/jwaldner/putfolio/internal/optimizer"
)

func main() {
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger.Always.Printf("🚀 Put Portfolio Optimizer starting - Port: %s", cfg.Port)

	if cfg.Logging.LogLevel == "verbose" {
		fmt.Printf("⚠️  VERBOSE LOGGING ENABLED - Detailed MarketData API calls will be logged to %s\n", cfg.Logging.LogFile)
	}

	// Validate required config after loading from YAML
	if cfg.MarketData.Token == "" {
		log.Fatal("MARKETDATA_TOKEN is required (set in config.yaml or environment variable)")
	}

	// Only reject obvious placeholder values - let the API report actual auth errors
	if strings.Contains(cfg.MarketData.Token, "<") || strings.Contains(cfg.MarketData.Token, ">") ||
		cfg.MarketData.Token == "YOUR_MARKETDATA_TOKEN" || cfg.MarketData.Token == "REPLACE_ME" {
		log.Fatal("❌ API token appears to be a placeholder - please set real credentials")
	}

	// Create MarketData client with a history cache in front of it so
	// repeated beta runs do not refetch the benchmark series
	log.Println("📡 Creating MarketData client...")
	logger.Info.Printf("📡 MarketData client created - Base URL: %s", cfg.MarketData.BaseURL)

	baseClient := marketdata.NewClient(cfg.MarketData.Token, cfg.MarketData.BaseURL,
		time.Duration(cfg.MarketData.TimeoutSeconds)*time.Second)
	marketClient := marketdata.NewHistoryCache(baseClient, time.Duration(cfg.Beta.CacheTTLMinutes)*time.Minute)

	logger.Info.Printf("📊 Fund universe: %d funds | benchmark %s | min bid $%.2f | min premium $%.0f",
		len(cfg.Funds), cfg.Beta.Benchmark, cfg.Thresholds.MinBidPrice, cfg.Thresholds.MinPremium)

	// Initialize the optimization service and handlers
	service := optimizer.NewService(marketClient, cfg)
	portfolioHandler := handlers.NewPortfolioHandler(service, baseClient, cfg)

	// Setup router
	r := mux.NewRouter()

	r.HandleFunc("/api/funds", portfolioHandler.FundsHandler).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/optimize", portfolioHandler.OptimizeHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/order", portfolioHandler.OrderHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/test-connection", portfolioHandler.TestConnectionHandler).Methods("GET", "OPTIONS")

	// Start server
	fmt.Printf("🌐 Server starting on http://localhost:%s\n", cfg.Port)
	logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
