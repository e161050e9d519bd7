package series

import (
	"sort"
	"time"

	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/timeline"
)

// sortRaisesDescending orders raises by effective date, most recent
// first, without mutating the plan.
func sortRaisesDescending(raises []plan.Raise) []plan.Raise {
	sorted := make([]plan.Raise, len(raises))
	copy(sorted, raises)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.After(sorted[j].EffectiveDate.Time)
	})
	return sorted
}

// basePayAt returns the amount of the most recent raise that has
// already taken effect: the first entry (sorted descending) whose
// effective date is strictly before the given date. A raise effective
// exactly on the date does not yet apply. Zero when the date predates
// every raise.
func basePayAt(date time.Time, sortedRaises []plan.Raise) float64 {
	for _, raise := range sortedRaises {
		if date.After(raise.EffectiveDate.Time) {
			return raise.Amount
		}
	}
	return 0
}

// BasePay generates the base salary series over the full plan range.
func BasePay(p *plan.Plan) (*Series, error) {
	grid, err := timeline.MonthlyGrid(p.Misc.StartDate.Time, p.Misc.EndDate.Time)
	if err != nil {
		return nil, err
	}

	sorted := sortRaisesDescending(p.Base.Pay)

	return newComponent(p.Base.Name, grid, func(date time.Time) (float64, error) {
		return basePayAt(date, sorted), nil
	})
}
