// Package timeline builds the monthly calendar grids every series is
// evaluated on.
package timeline

import (
	"fmt"
	"time"

	"github.com/wonny/paygrid/backend/internal/comperr"
)

// MonthStart normalizes a timestamp to the first day of its month, UTC
// midnight.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyGrid returns the ordered month-start timestamps covering
// [start, end]. The first point is the first month boundary at or after
// start; a start already on the 1st is itself the first point. If start
// and end fall inside the same month with no boundary between them, the
// grid degenerates to that month's single start.
//
// Grid length is the divisor for monthly amortization of lump sums, so
// callers must never filter or extend the result.
func MonthlyGrid(start, end time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: start=%s end=%s",
			comperr.ErrInvalidRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	first := MonthStart(start)
	if first.Before(start) {
		first = first.AddDate(0, 1, 0)
	}

	if first.After(end) {
		// Same calendar month, no boundary inside the range.
		return []time.Time{MonthStart(start)}, nil
	}

	var grid []time.Time
	for t := first; !t.After(end); t = t.AddDate(0, 1, 0) {
		grid = append(grid, t)
	}

	return grid, nil
}
