package series

import (
	"context"
	"time"

	"github.com/wonny/paygrid/backend/internal/market"
	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/timeline"
)

// Stock generates one equity grant's series over the grant's own date
// range: shares times the resolved market price, amortized with the
// same annualize-then-divide convention as the signing bonus. The
// tracker queries dates in grid order, which is what lets its
// first-miss cutoff stand in for "everything later is extrapolated".
func Stock(ctx context.Context, s plan.Stock, tracker *market.Tracker) (*Series, error) {
	grid, err := timeline.MonthlyGrid(s.StartDate.Time, s.EndDate.Time)
	if err != nil {
		return nil, err
	}

	scale := s.Shares * 12 / float64(len(grid))

	return newComponent(s.Name, grid, func(date time.Time) (float64, error) {
		price, err := tracker.Price(ctx, date)
		if err != nil {
			return 0, err
		}
		return scale * price, nil
	})
}
