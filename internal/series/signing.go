package series

import (
	"time"

	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/timeline"
)

// SigningBonus generates the signing bonus series: the lump sum
// amortized evenly across the grid spanned by the bonus duration from
// the plan start. Each point is amount * 12 / gridLen, keeping every
// series in a consistent annualized-monthly unit even when the grid
// does not span exactly twelve months.
func SigningBonus(p *plan.Plan) (*Series, error) {
	start := p.Misc.StartDate.Time
	end := p.Bonus.Signing.Duration.AddTo(start)

	grid, err := timeline.MonthlyGrid(start, end)
	if err != nil {
		return nil, err
	}

	monthly := p.Bonus.Signing.Amount * 12 / float64(len(grid))

	return newComponent(p.Bonus.Signing.Name, grid, func(time.Time) (float64, error) {
		return monthly, nil
	})
}
