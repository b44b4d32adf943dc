package models

// Fund is one entry in the static ETF universe.
type Fund struct {
	Ticker        string `json:"ticker"`
	Name          string `json:"name"`
	DefaultWeight int    `json:"default_weight"`
}

// CandidateOption is the single best put contract found for a fund:
// the output of the expiration/strike search, before any sizing.
type CandidateOption struct {
	Ticker          string  `json:"ticker"`
	StockPrice      float64 `json:"stock_price"`
	Strike          float64 `json:"strike"`
	Expiration      string  `json:"expiration"` // YYYY-MM-DD
	DTE             int     `json:"dte"`
	Bid             float64 `json:"bid"`
	Ask             float64 `json:"ask"`
	AnnualizedYield float64 `json:"annualized_yield"`
	ActualOTM       float64 `json:"actual_otm"`
	OptionSymbol    string  `json:"option_symbol"`
	Volume          int64   `json:"volume,omitempty"`
	OpenInterest    int64   `json:"open_interest,omitempty"`
}

// Candidate pairs a fund's user-selected weight with its best option.
// This is the weight allocator's input row.
type Candidate struct {
	Ticker     string          `json:"ticker"`
	UserWeight float64         `json:"user_weight"`
	Option     CandidateOption `json:"option"`
}

// Position is a sized trade: one fund, one contract line, whole contracts.
type Position struct {
	Ticker          string  `json:"ticker"`
	Weight          float64 `json:"weight"`      // optimized weight, percent
	UserWeight      float64 `json:"user_weight"` // weight before optimization
	StockPrice      float64 `json:"stock_price"`
	Strike          float64 `json:"strike"`
	Expiration      string  `json:"expiration"`
	DTE             int     `json:"dte"`
	Bid             float64 `json:"bid"`
	Ask             float64 `json:"ask"`
	Contracts       int     `json:"contracts"`
	Premium         float64 `json:"premium"`  // contracts * bid * 100
	Notional        float64 `json:"notional"` // contracts * strike * 100
	AnnualizedYield float64 `json:"annualized_yield"`
	ActualOTM       float64 `json:"actual_otm"`
	OptionSymbol    string  `json:"option_symbol"`
}

// OptimizeRequest is the body of POST /api/optimize.
type OptimizeRequest struct {
	Weights         map[string]float64 `json:"weights"`
	NominalExposure float64            `json:"nominal_exposure"`
	TargetDTE       int                `json:"target_dte"`
	TargetOTM       float64            `json:"target_otm"`
	MonthlyOnly     bool               `json:"monthly_only"`
}

// PortfolioSummary holds the aggregate statistics across all sized positions.
type PortfolioSummary struct {
	AnnualizedYield float64  `json:"annualized_yield"` // notional-weighted
	TotalPremium    float64  `json:"total_premium"`
	TotalNotional   float64  `json:"total_notional"`
	AverageDTE      float64  `json:"average_dte"` // notional-weighted
	Beta            *float64 `json:"beta"`        // nil when unavailable
}

// OptimizeResponse is the full result of one optimization run.
type OptimizeResponse struct {
	Positions        []Position         `json:"positions"`
	OptimizedWeights map[string]float64 `json:"optimized_weights"`
	Summary          PortfolioSummary   `json:"summary"`
	NominalExposure  float64            `json:"nominal_exposure"`
	TargetDTE        int                `json:"target_dte"`
	TargetOTM        float64            `json:"target_otm"`
	Timestamp        string             `json:"timestamp"`
	ProcessingTime   float64            `json:"processing_time"`
}
