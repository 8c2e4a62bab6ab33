// Package yahoo fetches price history and fundamentals from the Yahoo
// Finance chart and quoteSummary APIs.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rsinha/backfolio/internal/core"
	"github.com/rsinha/backfolio/internal/ratelimit"
)

const (
	defaultChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSummaryURL = "https://query1.finance.yahoo.com/v10/finance/quoteSummary"
)

// validSymbol matches exchange symbols like RELIANCE, M&M, BAJAJ-AUTO,
// optionally carrying an exchange suffix like .NS.
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9&-]{1,15}(\.[A-Za-z]{1,4})?$`)

// Config holds the client's endpoints and limits.
type Config struct {
	ChartURL          string
	SummaryURL        string
	Suffix            string // exchange suffix appended to bare symbols, e.g. ".NS"
	Timeout           time.Duration
	RequestsPerMinute int
	RetryAttempts     int
}

// Client talks to Yahoo Finance. It satisfies both provider interfaces.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *ratelimit.Limiter
}

// New creates a Client. Zero-value config fields get defaults; a zero
// RequestsPerMinute disables rate limiting.
func New(cfg Config) *Client {
	if cfg.ChartURL == "" {
		cfg.ChartURL = defaultChartURL
	}
	if cfg.SummaryURL == "" {
		cfg.SummaryURL = defaultSummaryURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 2
	}

	var limiter *ratelimit.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = ratelimit.PerMinute(cfg.RequestsPerMinute)
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: limiter,
	}
}

// toExchangeSymbol appends the configured exchange suffix to bare symbols.
func (c *Client) toExchangeSymbol(symbol string) string {
	if c.cfg.Suffix == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + c.cfg.Suffix
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// PriceHistory fetches daily closes via the chart API. Days without a close
// are dropped.
func (c *Client) PriceHistory(ctx context.Context, symbol string, start, end time.Time) (core.PriceSeries, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		c.cfg.ChartURL, c.toExchangeSymbol(symbol), start.Unix(), end.Unix())

	var result chartResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data for symbol: %s", symbol)
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return core.PriceSeries{}, nil
	}
	closes := r.Indicators.Quote[0].Close

	series := make(core.PriceSeries, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, core.PricePoint{
			Date:  core.Day(time.Unix(int64(ts), 0)),
			Close: *closes[i],
		})
	}
	return series, nil
}

// Fundamentals fetches market cap, return on equity, and net income via the
// quoteSummary API. ROCE follows the upstream convention: return on equity
// scaled to percent.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (core.Fundamentals, error) {
	if err := validateSymbol(symbol); err != nil {
		return core.Fundamentals{}, err
	}

	url := fmt.Sprintf("%s/%s?modules=price,financialData,defaultKeyStatistics",
		c.cfg.SummaryURL, c.toExchangeSymbol(symbol))

	var result summaryResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return core.Fundamentals{}, core.WrapError(core.ErrProviderUnavailable, err)
	}
	if result.QuoteSummary.Error != nil {
		return core.Fundamentals{}, core.WrapError(core.ErrProviderUnavailable,
			fmt.Errorf("yahoo error: %s", result.QuoteSummary.Error.Description))
	}
	if len(result.QuoteSummary.Result) == 0 {
		return core.Fundamentals{}, core.WrapError(core.ErrProviderUnavailable,
			fmt.Errorf("no fundamental data for symbol: %s", symbol))
	}

	r := result.QuoteSummary.Result[0]
	fd := core.Fundamentals{
		Symbol:    symbol,
		MarketCap: r.Price.MarketCap.Raw,
		PAT:       r.DefaultKeyStatistics.NetIncomeToCommon.Raw,
	}
	if r.FinancialData.ReturnOnEquity != nil {
		fd.ROCE = r.FinancialData.ReturnOnEquity.Raw * 100
	}
	if fd.MarketCap == 0 {
		return core.Fundamentals{}, core.WrapError(core.ErrProviderUnavailable,
			fmt.Errorf("no market cap for symbol: %s", symbol))
	}
	return fd, nil
}

// getJSON performs a rate-limited GET with retries and decodes the body.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	delay := 500 * time.Millisecond

	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = c.doGet(ctx, url, out)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *Client) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "backfolio/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Yahoo API response types.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type summaryResult struct {
	Price struct {
		MarketCap rawValue `json:"marketCap"`
	} `json:"price"`
	FinancialData struct {
		ReturnOnEquity *rawValue `json:"returnOnEquity"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		NetIncomeToCommon rawValue `json:"netIncomeToCommon"`
	} `json:"defaultKeyStatistics"`
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
