// Package yahoo implements the Yahoo Finance chart API client used for
// instrument snapshots and historical close prices.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/internal/market"
	"github.com/wonny/paygrid/backend/pkg/config"
	"github.com/wonny/paygrid/backend/pkg/httputil"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// Client talks to the Yahoo Finance chart API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a Yahoo Finance client.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.Yahoo.BaseURL,
	}
}

// chartResponse is the response envelope from the chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Snapshot fetches the current quote for a ticker. A response without a
// canonical symbol means the instrument could not be identified.
func (c *Client) Snapshot(ctx context.Context, ticker string) (market.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d",
		c.baseURL, url.PathEscape(ticker))

	chart, err := c.fetchChart(ctx, ticker, u)
	if err != nil {
		return market.Quote{}, err
	}

	if len(chart.Chart.Result) == 0 {
		return market.Quote{}, fmt.Errorf("%w: no result for ticker %q", comperr.ErrInvalidTicker, ticker)
	}

	result := chart.Chart.Result[0]
	if result.Meta.Symbol == "" {
		return market.Quote{}, fmt.Errorf("%w: provider returned no symbol for %q", comperr.ErrInvalidTicker, ticker)
	}

	quote := market.Quote{
		Symbol:             result.Meta.Symbol,
		RegularMarketPrice: result.Meta.RegularMarketPrice,
		PreviousClose:      result.Meta.PreviousClose,
	}

	// Last intraday close doubles as the current price when present.
	bars := barsFromResult(result.Timestamp, result.Indicators.Quote)
	if len(bars) > 0 {
		quote.CurrentPrice = bars[len(bars)-1].Close
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"symbol": quote.Symbol,
	}).Debug("Fetched snapshot")

	return quote, nil
}

// History fetches daily close prices for [from, to). The result is
// ordered by date and may be empty when the range has no trading data.
func (c *Client) History(ctx context.Context, ticker string, from, to time.Time) ([]market.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix())

	chart, err := c.fetchChart(ctx, ticker, u)
	if err != nil {
		return nil, err
	}

	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	bars := barsFromResult(result.Timestamp, result.Indicators.Quote)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"count":  len(bars),
	}).Debug("Fetched history")

	return bars, nil
}

func (c *Client) fetchChart(ctx context.Context, ticker, u string) (*chartResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create chart request: %v", comperr.ErrDataSource, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: chart request for %q failed: %v", comperr.ErrDataSource, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read chart response: %v", comperr.ErrDataSource, err)
	}

	// Yahoo answers 404 with a structured error payload for unknown
	// symbols; decode before rejecting on status.
	var chart chartResponse
	if decodeErr := json.Unmarshal(body, &chart); decodeErr != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: chart API status %d for %q", comperr.ErrDataSource, resp.StatusCode, ticker)
		}
		return nil, fmt.Errorf("%w: decode chart response: %v", comperr.ErrDataSource, decodeErr)
	}

	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %q: %s", comperr.ErrInvalidTicker, ticker, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("%w: chart API error for %q: %s", comperr.ErrDataSource, ticker, chart.Chart.Error.Description)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: chart API status %d for %q", comperr.ErrDataSource, resp.StatusCode, ticker)
	}

	return &chart, nil
}

// barsFromResult pairs timestamps with close values, skipping null bars
// (holidays and halts come back as nulls).
func barsFromResult(timestamps []int64, quotes []struct {
	Close []interface{} `json:"close"`
}) []market.Bar {
	if len(quotes) == 0 {
		return nil
	}

	closes := quotes[0].Close
	bars := make([]market.Bar, 0, len(timestamps))

	for i, ts := range timestamps {
		if i >= len(closes) {
			break
		}
		c, ok := toFloat(closes[i])
		if !ok || c == 0 {
			continue
		}
		bars = append(bars, market.Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: c,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
