// Package market resolves per-instrument prices: historical closes
// while the provider has data, continuously compounding extrapolation
// once it runs out.
package market

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// Quote is an instrument snapshot. An empty Symbol means the provider
// could not identify the instrument.
type Quote struct {
	Symbol             string
	CurrentPrice       float64
	RegularMarketPrice float64
	PreviousClose      float64
}

// Price returns the best available price field: current price, then
// regular market price, then previous close. Zero means no usable
// price.
func (q Quote) Price() float64 {
	for _, p := range []float64{q.CurrentPrice, q.RegularMarketPrice, q.PreviousClose} {
		if p > 0 {
			return p
		}
	}
	return 0
}

// Bar is one historical trading day.
type Bar struct {
	Date  time.Time
	Close float64
}

// Provider supplies market data. Implemented by the Yahoo client.
type Provider interface {
	Snapshot(ctx context.Context, ticker string) (Quote, error)
	History(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error)
}

// historyWindow is how far past a query date we look for the next
// trading day before declaring the date beyond available data.
const historyWindow = 7 * 24 * time.Hour

// Tracker resolves prices for one ticker within one request. It is not
// safe for concurrent use and must not be shared across requests with
// differing inflation assumptions: the cutoff date it learns encodes
// one request's view of where real data ends.
type Tracker struct {
	provider           Provider
	logger             *logger.Logger
	ticker             string
	predictedInflation float64

	currentPrice float64
	cutoffDate   *time.Time
}

// NewTracker creates a tracker and resolves the instrument's snapshot
// price. Fails with ErrInvalidTicker when the provider cannot identify
// the instrument or returns no usable price.
func NewTracker(ctx context.Context, provider Provider, log *logger.Logger, ticker string, predictedInflation float64) (*Tracker, error) {
	quote, err := provider.Snapshot(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("snapshot for %q: %w", ticker, err)
	}

	if quote.Symbol == "" {
		return nil, fmt.Errorf("%w: %q has no canonical symbol; verify the ticker is correct and actively traded",
			comperr.ErrInvalidTicker, ticker)
	}

	price := quote.Price()
	if price <= 0 {
		return nil, fmt.Errorf("%w: no usable price for %q (current=%.2f regular=%.2f prevClose=%.2f)",
			comperr.ErrInvalidTicker, ticker,
			quote.CurrentPrice, quote.RegularMarketPrice, quote.PreviousClose)
	}

	return &Tracker{
		provider:           provider,
		logger:             log,
		ticker:             ticker,
		predictedInflation: predictedInflation,
		currentPrice:       price,
	}, nil
}

// CurrentPrice returns the snapshot price taken at construction.
func (t *Tracker) CurrentPrice() float64 {
	return t.currentPrice
}

// CutoffDate returns the first date for which a history lookup came
// back empty, or nil while every queried date had data.
func (t *Tracker) CutoffDate() *time.Time {
	return t.cutoffDate
}

// Price resolves the close price for a date. Dates are expected in
// increasing order within a series. The first date with no historical
// data becomes the permanent extrapolation boundary for this tracker:
// all later dates compound from the snapshot price without touching the
// provider again.
func (t *Tracker) Price(ctx context.Context, date time.Time) (float64, error) {
	if t.cutoffDate != nil && date.After(*t.cutoffDate) {
		return t.extrapolate(date), nil
	}

	bars, err := t.provider.History(ctx, t.ticker, date, date.Add(historyWindow))
	if err != nil {
		return 0, fmt.Errorf("history for %q at %s: %w", t.ticker, date.Format("2006-01-02"), err)
	}

	if len(bars) > 0 {
		// First close in the window; covers non-trading days by
		// rolling forward to the next trading day.
		return bars[0].Close, nil
	}

	cutoff := date
	t.cutoffDate = &cutoff
	t.logger.WithFields(map[string]interface{}{
		"ticker": t.ticker,
		"cutoff": cutoff.Format("2006-01-02"),
	}).Debug("History exhausted, extrapolating from here on")

	return t.currentPrice, nil
}

// extrapolate compounds the snapshot price continuously from the cutoff
// date: currentPrice * e^((rate-1) * years), years in 365.25-day units.
func (t *Tracker) extrapolate(date time.Time) float64 {
	years := date.Sub(*t.cutoffDate).Hours() / 24 / 365.25
	rate := t.predictedInflation - 1
	return t.currentPrice * math.Exp(rate*years)
}
