// Package projection orchestrates the per-component series generators
// and aggregates their output into the response series list.
package projection

import (
	"context"
	"fmt"

	"github.com/wonny/paygrid/backend/internal/cpi"
	"github.com/wonny/paygrid/backend/internal/market"
	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/series"
	"github.com/wonny/paygrid/backend/internal/timeline"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// Aggregate series names.
const (
	TotalPayName          = "Total Pay"
	InflationAdjustedName = "Inflation Adjusted Starting Pay"
)

// Projector runs a full compensation projection for one plan document.
// The CPI resolver is shared process state; market trackers are built
// fresh per stock per request so extrapolation cutoffs never leak
// across requests with different inflation assumptions.
type Projector struct {
	marketProvider         market.Provider
	cpiResolver            *cpi.Resolver
	logger                 *logger.Logger
	inflationSeriesEnabled bool
}

// New creates a projector. cpiResolver may be nil when the inflation
// series is disabled entirely.
func New(marketProvider market.Provider, cpiResolver *cpi.Resolver, log *logger.Logger, inflationSeriesEnabled bool) *Projector {
	return &Projector{
		marketProvider:         marketProvider,
		cpiResolver:            cpiResolver,
		logger:                 log,
		inflationSeriesEnabled: inflationSeriesEnabled,
	}
}

// Project generates every series for a plan: base pay, annual bonus,
// signing bonus, one per equity grant, the total, and (best effort) the
// inflation-adjusted total. Component errors fail the whole request;
// only the inflation-adjusted series is allowed to fail soft.
func (p *Projector) Project(ctx context.Context, doc *plan.Plan) ([]*series.Series, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	base, err := series.BasePay(doc)
	if err != nil {
		return nil, fmt.Errorf("base pay series: %w", err)
	}

	annual, err := series.AnnualBonus(doc)
	if err != nil {
		return nil, fmt.Errorf("annual bonus series: %w", err)
	}

	signing, err := series.SigningBonus(doc)
	if err != nil {
		return nil, fmt.Errorf("signing bonus series: %w", err)
	}

	out := []*series.Series{base, annual, signing}

	for _, stock := range doc.Stocks {
		tracker, err := market.NewTracker(ctx, p.marketProvider, p.logger, stock.Ticker, doc.Misc.PredictedInflation)
		if err != nil {
			return nil, fmt.Errorf("stock %q: %w", stock.Name, err)
		}

		s, err := series.Stock(ctx, stock, tracker)
		if err != nil {
			return nil, fmt.Errorf("stock %q: %w", stock.Name, err)
		}
		out = append(out, s)
	}

	total, err := p.totalSeries(doc, out)
	if err != nil {
		return nil, fmt.Errorf("total series: %w", err)
	}
	out = append(out, total)

	// Supplementary context, not core compensation data: a failure here
	// drops the one series and leaves the response intact.
	if adjusted := p.inflationAdjustedSeries(ctx, doc, total); adjusted != nil {
		out = append(out, adjusted)
	}

	return out, nil
}

// totalSeries sums every component at each plan-grid date. Components
// whose own range excludes a date contribute zero; the total is a sum
// over whatever is active that month, never an average.
func (p *Projector) totalSeries(doc *plan.Plan, components []*series.Series) (*series.Series, error) {
	grid, err := timeline.MonthlyGrid(doc.Misc.StartDate.Time, doc.Misc.EndDate.Time)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(grid))
	for i, date := range grid {
		var sum float64
		for _, c := range components {
			if v, ok := c.ValueAt(date); ok {
				sum += v
			}
		}
		values[i] = sum
	}

	return &series.Series{
		Name:    TotalPayName,
		Dates:   grid,
		Values:  values,
		Type:    series.TypeScatter,
		Visible: series.VisibleLegend,
	}, nil
}

// inflationAdjustedSeries restates the total's first value at every
// plan-grid date: what the starting pay would have to be each month to
// keep its original purchasing power. Returns nil when disabled or when
// the index resolver fails; the caller omits the series in that case.
func (p *Projector) inflationAdjustedSeries(ctx context.Context, doc *plan.Plan, total *series.Series) *series.Series {
	if !p.inflationSeriesEnabled || p.cpiResolver == nil {
		return nil
	}
	if len(total.Dates) == 0 {
		return nil
	}

	firstDate := total.Dates[0]
	firstValue := total.Values[0]
	rate := doc.Misc.PredictedInflation

	values := make([]float64, len(total.Dates))
	for i, date := range total.Dates {
		v, err := p.cpiResolver.Inflate(ctx, firstValue, firstDate, date, rate)
		if err != nil {
			p.logger.WithError(err).WithFields(map[string]interface{}{
				"date": date.Format("2006-01-02"),
			}).Warn("Inflation-adjusted series dropped")
			return nil
		}
		values[i] = v
	}

	return &series.Series{
		Name:    InflationAdjustedName,
		Dates:   total.Dates,
		Values:  values,
		Type:    series.TypeScatter,
		Visible: series.VisibleLegend,
	}
}
