package market

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// fakeProvider serves a fixed quote and history up to a horizon date.
type fakeProvider struct {
	quote        Quote
	snapshotErr  error
	horizon      time.Time // dates at or after this have no history
	closePrice   float64
	historyCalls int
}

func (f *fakeProvider) Snapshot(ctx context.Context, ticker string) (Quote, error) {
	if f.snapshotErr != nil {
		return Quote{}, f.snapshotErr
	}
	return f.quote, nil
}

func (f *fakeProvider) History(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	f.historyCalls++
	if !from.Before(f.horizon) {
		return nil, nil
	}
	return []Bar{{Date: from, Close: f.closePrice}}, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestTracker(t *testing.T, p Provider, rate float64) *Tracker {
	t.Helper()
	tracker, err := NewTracker(context.Background(), p, logger.NewNop(), "MSFT", rate)
	require.NoError(t, err)
	return tracker
}

func TestNewTrackerSnapshotPrice(t *testing.T) {
	provider := &fakeProvider{quote: Quote{Symbol: "MSFT", CurrentPrice: 400}}
	tracker := newTestTracker(t, provider, 1.03)

	assert.Equal(t, 400.0, tracker.CurrentPrice())
	assert.Nil(t, tracker.CutoffDate())
}

func TestNewTrackerPriceFallbackChain(t *testing.T) {
	tests := []struct {
		name  string
		quote Quote
		want  float64
	}{
		{"current price wins", Quote{Symbol: "X", CurrentPrice: 400, RegularMarketPrice: 398, PreviousClose: 395}, 400},
		{"regular market price second", Quote{Symbol: "X", RegularMarketPrice: 398, PreviousClose: 395}, 398},
		{"previous close last", Quote{Symbol: "X", PreviousClose: 395}, 395},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker(t, &fakeProvider{quote: tt.quote}, 1.03)
			assert.Equal(t, tt.want, tracker.CurrentPrice())
		})
	}
}

func TestNewTrackerRejectsMissingSymbol(t *testing.T) {
	provider := &fakeProvider{quote: Quote{CurrentPrice: 400}}
	_, err := NewTracker(context.Background(), provider, logger.NewNop(), "NOPE", 1.03)
	assert.True(t, errors.Is(err, comperr.ErrInvalidTicker), "error = %v", err)
}

func TestNewTrackerRejectsNoUsablePrice(t *testing.T) {
	provider := &fakeProvider{quote: Quote{Symbol: "HALT"}}
	_, err := NewTracker(context.Background(), provider, logger.NewNop(), "HALT", 1.03)
	assert.True(t, errors.Is(err, comperr.ErrInvalidTicker), "error = %v", err)
}

func TestPriceUsesFirstCloseInWindow(t *testing.T) {
	provider := &fakeProvider{
		quote:      Quote{Symbol: "MSFT", CurrentPrice: 400},
		horizon:    day(2030, 1, 1),
		closePrice: 412.5,
	}
	tracker := newTestTracker(t, provider, 1.03)

	got, err := tracker.Price(context.Background(), day(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 412.5, got)
	assert.Nil(t, tracker.CutoffDate())
}

func TestPriceFirstMissSetsCutoff(t *testing.T) {
	provider := &fakeProvider{
		quote:      Quote{Symbol: "MSFT", CurrentPrice: 400},
		horizon:    day(2025, 1, 1),
		closePrice: 412.5,
	}
	tracker := newTestTracker(t, provider, 1.03)
	ctx := context.Background()

	// First miss returns the snapshot price and pins the cutoff.
	got, err := tracker.Price(ctx, day(2025, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 400.0, got)
	require.NotNil(t, tracker.CutoffDate())
	assert.Equal(t, day(2025, 2, 1), *tracker.CutoffDate())

	callsAfterMiss := provider.historyCalls

	// Every later date extrapolates without touching the provider.
	prev := 400.0
	for months := 1; months <= 12; months++ {
		d := day(2025, 2, 1).AddDate(0, months, 0)
		got, err := tracker.Price(ctx, d)
		require.NoError(t, err)
		assert.Greater(t, got, prev, "extrapolation must increase with distance at rate > 1")
		prev = got
	}
	assert.Equal(t, callsAfterMiss, provider.historyCalls, "no history re-query after cutoff")
}

func TestPriceExtrapolationFormula(t *testing.T) {
	provider := &fakeProvider{
		quote:   Quote{Symbol: "MSFT", CurrentPrice: 400},
		horizon: day(2025, 1, 1),
	}
	tracker := newTestTracker(t, provider, 1.03)
	ctx := context.Background()

	_, err := tracker.Price(ctx, day(2025, 1, 1))
	require.NoError(t, err)

	// One 365.25-day year past the cutoff.
	target := day(2025, 1, 1).Add(time.Duration(365.25 * 24 * float64(time.Hour)))
	got, err := tracker.Price(ctx, target)
	require.NoError(t, err)
	assert.InDelta(t, 400*math.Exp(0.03), got, 1e-9)
}

func TestPriceHistoryErrorPropagates(t *testing.T) {
	provider := &errProvider{}
	tracker, err := NewTracker(context.Background(), provider, logger.NewNop(), "MSFT", 1.03)
	require.NoError(t, err)

	_, err = tracker.Price(context.Background(), day(2024, 1, 1))
	assert.True(t, errors.Is(err, comperr.ErrDataSource), "error = %v", err)
}

type errProvider struct{}

func (errProvider) Snapshot(ctx context.Context, ticker string) (Quote, error) {
	return Quote{Symbol: "MSFT", CurrentPrice: 400}, nil
}

func (errProvider) History(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	return nil, comperr.ErrDataSource
}
