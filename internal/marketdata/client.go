package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jwaldner/putfolio/internal/logger"
)

// Service defines the pricing-service operations the optimizer consumes.
// Every method returns data-or-error; any error means "no data for this
// fund", never a reason to abort the batch.
type Service interface {
	GetQuote(ctx context.Context, ticker string) (*Quote, error)
	GetExpirations(ctx context.Context, ticker string) ([]string, error)
	GetPutChain(ctx context.Context, ticker, expiration string) ([]ChainOption, error)
	GetDailyCloses(ctx context.Context, ticker string, lookbackDays int) ([]float64, error)
}

const (
	DefaultTimeout = 30 * time.Second
)

// Quote is the latest underlying price for a ticker.
type Quote struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
}

// ChainOption is a single put contract row from an option chain.
type ChainOption struct {
	Symbol       string  `json:"symbol"`
	Strike       float64 `json:"strike"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	Volume       int64   `json:"volume,omitempty"`
	OpenInterest int64   `json:"open_interest,omitempty"`
}

// Client talks to the MarketData.app REST API.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.marketdata.app/v1"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		Token:   token,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MarketData.app wraps every payload in a status field; anything but "ok"
// means no usable data.
type quoteResponse struct {
	Status string    `json:"s"`
	Last   []float64 `json:"last"`
	Mid    []float64 `json:"mid"`
	Bid    []float64 `json:"bid"`
	Ask    []float64 `json:"ask"`
}

type expirationsResponse struct {
	Status      string   `json:"s"`
	Expirations []string `json:"expirations"`
}

type chainResponse struct {
	Status       string    `json:"s"`
	OptionSymbol []string  `json:"optionSymbol"`
	Strike       []float64 `json:"strike"`
	Bid          []float64 `json:"bid"`
	Ask          []float64 `json:"ask"`
	Volume       []int64   `json:"volume"`
	OpenInterest []int64   `json:"openInterest"`
}

type candlesResponse struct {
	Status string    `json:"s"`
	Close  []float64 `json:"c"`
	Time   []int64   `json:"t"`
}

// GetQuote returns the latest price for a ticker, preferring last, then
// mid, then the bid/ask midpoint.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	var resp quoteResponse
	endpoint := fmt.Sprintf("/stocks/quotes/%s/", url.PathEscape(ticker))
	if err := c.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("marketdata quote status %q for %s", resp.Status, ticker)
	}

	var price float64
	switch {
	case len(resp.Last) > 0 && resp.Last[0] > 0:
		price = resp.Last[0]
	case len(resp.Mid) > 0 && resp.Mid[0] > 0:
		price = resp.Mid[0]
	case len(resp.Bid) > 0 && len(resp.Ask) > 0:
		price = (resp.Bid[0] + resp.Ask[0]) / 2
	}
	if price <= 0 {
		return nil, fmt.Errorf("no usable price for %s", ticker)
	}

	return &Quote{Ticker: ticker, Price: price}, nil
}

// GetExpirations returns the ordered expiration dates (YYYY-MM-DD) with
// listed options for a ticker.
func (c *Client) GetExpirations(ctx context.Context, ticker string) ([]string, error) {
	var resp expirationsResponse
	endpoint := fmt.Sprintf("/options/expirations/%s/", url.PathEscape(ticker))
	if err := c.getJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" || len(resp.Expirations) == 0 {
		return nil, fmt.Errorf("no expirations for %s (status %q)", ticker, resp.Status)
	}

	return resp.Expirations, nil
}

// GetPutChain returns the put chain for one ticker and expiration.
// MarketData.app returns columnar arrays; rows are zipped by index.
func (c *Client) GetPutChain(ctx context.Context, ticker, expiration string) ([]ChainOption, error) {
	var resp chainResponse
	endpoint := fmt.Sprintf("/options/chain/%s/", url.PathEscape(ticker))
	params := url.Values{}
	params.Set("expiration", expiration)
	params.Set("side", "put")
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" || len(resp.Strike) == 0 {
		return nil, fmt.Errorf("no put chain for %s %s (status %q)", ticker, expiration, resp.Status)
	}

	options := make([]ChainOption, 0, len(resp.Strike))
	for i := range resp.Strike {
		opt := ChainOption{Strike: resp.Strike[i]}
		if i < len(resp.OptionSymbol) {
			opt.Symbol = resp.OptionSymbol[i]
		}
		if i < len(resp.Bid) {
			opt.Bid = resp.Bid[i]
		}
		if i < len(resp.Ask) {
			opt.Ask = resp.Ask[i]
		}
		if i < len(resp.Volume) {
			opt.Volume = resp.Volume[i]
		}
		if i < len(resp.OpenInterest) {
			opt.OpenInterest = resp.OpenInterest[i]
		}
		options = append(options, opt)
	}

	return options, nil
}

// GetDailyCloses returns up to lookbackDays of daily closing prices,
// oldest first.
func (c *Client) GetDailyCloses(ctx context.Context, ticker string, lookbackDays int) ([]float64, error) {
	var resp candlesResponse
	endpoint := fmt.Sprintf("/stocks/candles/D/%s/", url.PathEscape(ticker))
	now := time.Now()
	params := url.Values{}
	params.Set("from", now.AddDate(0, 0, -lookbackDays).Format("2006-01-02"))
	params.Set("to", now.Format("2006-01-02"))
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" || len(resp.Close) == 0 {
		return nil, fmt.Errorf("no price history for %s (status %q)", ticker, resp.Status)
	}

	return resp.Close, nil
}

// TestConnection verifies the API token by quoting a liquid symbol.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.GetQuote(ctx, "SPY")
	return err
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	fullURL := c.BaseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Token "+c.Token)

	logger.Verbose.Printf("📡 MARKETDATA API CALL: %s", req.URL.String())
	startTime := time.Now()
	resp, err := c.HTTPClient.Do(req)
	callDuration := time.Since(startTime)
	if err != nil {
		logger.Verbose.Printf("❌ MarketData API call failed after %v: %v", callDuration, err)
		return err
	}
	defer resp.Body.Close()
	logger.Verbose.Printf("⏱️ MarketData API call completed in %v (status: %d)", callDuration, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logger.Verbose.Printf("❌ MarketData API error: Status %d, Body: %s", resp.StatusCode, string(body))
		return fmt.Errorf("marketdata API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode marketdata response: %v", err)
	}

	return nil
}
