package series

import (
	"sort"
	"time"

	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/timeline"
)

// sortPeriodsDescending orders past bonus periods by end date, most
// recent first, without mutating the plan.
func sortPeriodsDescending(periods []plan.BonusPeriod) []plan.BonusPeriod {
	sorted := make([]plan.BonusPeriod, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PeriodEndDate.After(sorted[j].PeriodEndDate.Time)
	})
	return sorted
}

// bonusMultiplierAt picks the multiplier for a date: the first past
// period (sorted descending) whose year-long window covers the date,
// meaning date <= periodEnd and date > periodEnd minus one year. Dates
// outside every known period fall back to the default multiplier.
func bonusMultiplierAt(date time.Time, sortedPeriods []plan.BonusPeriod, defaultMultiplier float64) float64 {
	for _, period := range sortedPeriods {
		end := period.PeriodEndDate.Time
		windowStart := end.AddDate(-1, 0, 0)
		if !date.After(end) && date.After(windowStart) {
			return period.Multiplier
		}
	}
	return defaultMultiplier
}

// AnnualBonus generates the annual bonus series over the full plan
// range: base pay at each date scaled by that date's multiplier.
func AnnualBonus(p *plan.Plan) (*Series, error) {
	grid, err := timeline.MonthlyGrid(p.Misc.StartDate.Time, p.Misc.EndDate.Time)
	if err != nil {
		return nil, err
	}

	sortedRaises := sortRaisesDescending(p.Base.Pay)
	sortedPeriods := sortPeriodsDescending(p.Bonus.Annual.Past)
	defaultMultiplier := p.Bonus.Annual.DefaultMultiplier

	return newComponent(p.Bonus.Annual.Name, grid, func(date time.Time) (float64, error) {
		multiplier := bonusMultiplierAt(date, sortedPeriods, defaultMultiplier)
		return basePayAt(date, sortedRaises) * multiplier, nil
	})
}
