// Package cpi resolves consumer price index values for arbitrary
// dates, combining published observations with a continuously
// compounding extrapolation for periods the provider has not published
// yet.
package cpi

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// Observation is one monthly index point from the provider. Published
// is false when the provider listed the period without a value.
type Observation struct {
	Year      int
	Month     int // 1-12
	Value     float64
	Published bool
}

// Provider supplies index observations. Implemented by the BLS client.
type Provider interface {
	// Latest returns the provider's most recent observation window.
	Latest(ctx context.Context) ([]Observation, error)

	// Window returns all observations for [startYear, endYear].
	Window(ctx context.Context, startYear, endYear int) ([]Observation, error)
}

// yearData holds one year of monthly values. A nil slot means the month
// is not published; that is distinct from the year not being fetched,
// which is the year missing from the cache map entirely.
type yearData [12]*float64

// Resolver resolves an index value for any date. It is safe for
// concurrent use and is meant to live for the whole process: the cache
// grows monotonically and is never evicted.
type Resolver struct {
	provider Provider
	logger   *logger.Logger

	mu    sync.Mutex
	cache map[int]yearData

	latestYear  int
	latestMonth int
	latestValue float64
}

// NewResolver creates a resolver. Init must be called before Resolve.
func NewResolver(provider Provider, log *logger.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   log,
		cache:    make(map[int]yearData),
	}
}

// Init learns the latest known period from the provider. The first
// published observation in the response marks the boundary past which
// extrapolation begins.
func (r *Resolver) Init(ctx context.Context) error {
	observations, err := r.provider.Latest(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest index data: %w", err)
	}
	if len(observations) == 0 {
		return fmt.Errorf("%w: provider returned no observations", comperr.ErrDataSource)
	}

	latest, ok := firstPublished(observations)
	if !ok {
		return fmt.Errorf("%w: no published observation in latest window", comperr.ErrDataSource)
	}

	r.mu.Lock()
	r.latestYear = latest.Year
	r.latestMonth = latest.Month
	r.latestValue = latest.Value
	r.merge(observations)
	r.mu.Unlock()

	r.logger.WithFields(map[string]interface{}{
		"year":  latest.Year,
		"month": latest.Month,
		"value": latest.Value,
	}).Info("CPI resolver initialized")

	return nil
}

// Refresh re-learns the latest known period. Safe to call while the
// resolver is serving requests; the boundary only ever moves forward.
func (r *Resolver) Refresh(ctx context.Context) error {
	observations, err := r.provider.Latest(ctx)
	if err != nil {
		return fmt.Errorf("refresh latest index data: %w", err)
	}

	latest, ok := firstPublished(observations)
	if !ok {
		return fmt.Errorf("%w: no published observation in latest window", comperr.ErrDataSource)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if latest.Year > r.latestYear || (latest.Year == r.latestYear && latest.Month > r.latestMonth) {
		r.latestYear = latest.Year
		r.latestMonth = latest.Month
		r.latestValue = latest.Value
	}
	r.merge(observations)

	return nil
}

// LatestPeriod returns the boundary past which extrapolation begins.
func (r *Resolver) LatestPeriod() (year, month int, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latestYear, r.latestMonth, r.latestValue
}

// Resolve returns the index value for a date, monthly accuracy. Dates
// after the latest known period are extrapolated with the predicted
// rate; pass 0 for no rate, which makes future dates fail with
// ErrInflationDisabled.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, predictedInflation float64) (float64, error) {
	year, month := date.Year(), int(date.Month())

	r.mu.Lock()
	afterLatest := year > r.latestYear || (year == r.latestYear && month > r.latestMonth)
	r.mu.Unlock()

	if afterLatest {
		return r.extrapolate(date, predictedInflation)
	}

	if err := r.ensureYear(ctx, year); err != nil {
		return 0, err
	}

	r.mu.Lock()
	val := r.cache[year][month-1]
	r.mu.Unlock()

	if val == nil {
		return 0, fmt.Errorf("%w: no index value for %04d-%02d", comperr.ErrMissingDataPoint, year, month)
	}

	return *val, nil
}

// Inflate restates value from one date's price level to another's:
// value * index(to) / index(from).
func (r *Resolver) Inflate(ctx context.Context, value float64, from, to time.Time, predictedInflation float64) (float64, error) {
	fromIndex, err := r.Resolve(ctx, from, predictedInflation)
	if err != nil {
		return 0, fmt.Errorf("resolve index at %s: %w", from.Format("2006-01-02"), err)
	}

	toIndex, err := r.Resolve(ctx, to, predictedInflation)
	if err != nil {
		return 0, fmt.Errorf("resolve index at %s: %w", to.Format("2006-01-02"), err)
	}

	return value * toIndex / fromIndex, nil
}

// ensureYear fetches and merges the 10-year window around a year when
// the cache does not hold it yet. The window spans [year-4, year+5] to
// amortize provider round-trips across nearby years. Two concurrent
// callers may both fetch; the merge is idempotent so the race is
// harmless, but the cache write itself stays under the mutex.
func (r *Resolver) ensureYear(ctx context.Context, year int) error {
	r.mu.Lock()
	_, cached := r.cache[year]
	r.mu.Unlock()

	if cached {
		return nil
	}

	observations, err := r.provider.Window(ctx, year-4, year+5)
	if err != nil {
		return fmt.Errorf("fetch index window around %d: %w", year, err)
	}

	r.mu.Lock()
	r.merge(observations)
	_, cached = r.cache[year]
	r.mu.Unlock()

	if !cached {
		return fmt.Errorf("%w: index data for year %d still missing after provider fetch", comperr.ErrDataSource, year)
	}

	return nil
}

// merge folds observations into the cache. Callers hold r.mu. Slot
// assignment makes the merge idempotent: replaying a window cannot
// double-count anything.
func (r *Resolver) merge(observations []Observation) {
	for _, obs := range observations {
		if obs.Month < 1 || obs.Month > 12 {
			continue
		}

		data := r.cache[obs.Year]
		if obs.Published {
			v := obs.Value
			data[obs.Month-1] = &v
		}
		r.cache[obs.Year] = data
	}
}

// extrapolate projects the latest known value forward with continuous
// compounding: latestValue * e^((rate-1) * years).
func (r *Resolver) extrapolate(date time.Time, predictedInflation float64) (float64, error) {
	if predictedInflation == 0 {
		return 0, fmt.Errorf("%w: cannot resolve future date %s without a predicted rate",
			comperr.ErrInflationDisabled, date.Format("2006-01-02"))
	}
	if predictedInflation < 0.5 {
		return 0, fmt.Errorf("%w: predicted inflation %.4f is below 0.5; baseline is 1, use 1.03 for 3%% inflation",
			comperr.ErrInvalidParameter, predictedInflation)
	}

	r.mu.Lock()
	latestYear, latestMonth, latestValue := r.latestYear, r.latestMonth, r.latestValue
	r.mu.Unlock()

	monthsDiff := (date.Year()-latestYear)*12 + int(date.Month()) - latestMonth
	yearsDiff := float64(monthsDiff) / 12
	rate := predictedInflation - 1

	return latestValue * math.Exp(rate*yearsDiff), nil
}

func firstPublished(observations []Observation) (Observation, bool) {
	for _, obs := range observations {
		if obs.Published {
			return obs, true
		}
	}
	return Observation{}, false
}
