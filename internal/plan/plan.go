// Package plan defines the compensation plan document accepted at the
// request boundary. The document is immutable for the duration of a
// request.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/paygrid/backend/internal/comperr"
)

// Date is a calendar date carried in the plan document. It accepts
// "2006-01-02" and RFC3339 on the wire and marshals back to the former.
type Date struct {
	time.Time
}

// UnmarshalJSON parses a plan date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}

	return fmt.Errorf("unrecognized date %q (want YYYY-MM-DD)", raw)
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

// Plan is the full input document describing base pay, bonuses and
// equity grants over a date range.
type Plan struct {
	Misc   Misc    `json:"misc"`
	Base   Base    `json:"base"`
	Bonus  Bonus   `json:"bonus"`
	Stocks []Stock `json:"stocks"`
}

// Misc holds the plan-wide date range and inflation assumption.
type Misc struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`

	// PredictedInflation is the assumed annual growth rate for
	// extrapolation beyond known data. 1.03 means 3% yearly; zero means
	// not supplied.
	PredictedInflation float64 `json:"predictedInflation"`
}

// Base describes the base salary stream as an ordered list of raises.
type Base struct {
	Name string  `json:"name"`
	Pay  []Raise `json:"pay"`
}

// Raise is a single base pay change. The amount applies from the day
// strictly after EffectiveDate.
type Raise struct {
	EffectiveDate Date    `json:"startDate"`
	Amount        float64 `json:"amount"`
}

// Bonus groups the signing and annual bonus blocks.
type Bonus struct {
	Signing SigningBonus `json:"signing"`
	Annual  AnnualBonus  `json:"annual"`
}

// SigningBonus is a lump sum amortized evenly over its duration.
type SigningBonus struct {
	Name     string   `json:"name"`
	Amount   float64  `json:"amount"`
	Duration Duration `json:"duration"`
}

// Duration is a calendar span in years, months and days.
type Duration struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// AddTo returns the date advanced by the duration.
func (d Duration) AddTo(t time.Time) time.Time {
	return t.AddDate(d.Years, d.Months, d.Days)
}

// IsZero reports whether the duration spans no time at all.
func (d Duration) IsZero() bool {
	return d.Years == 0 && d.Months == 0 && d.Days == 0
}

// AnnualBonus describes the annual bonus as a default multiplier plus
// known past performance periods.
type AnnualBonus struct {
	Name              string        `json:"name"`
	DefaultMultiplier float64       `json:"default"`
	Past              []BonusPeriod `json:"past"`
}

// BonusPeriod is one year-long performance period identified by its end
// date.
type BonusPeriod struct {
	PeriodEndDate Date    `json:"endDate"`
	Multiplier    float64 `json:"multiplier"`
}

// Stock is a single equity grant vesting monthly over its own range.
type Stock struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	StartDate Date    `json:"startDate"`
	EndDate   Date    `json:"endDate"`
	Shares    float64 `json:"shares"`
}

// Parse decodes and validates a plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks date ordering and numeric ranges. Structural
// completeness is the request boundary's responsibility.
func (p *Plan) Validate() error {
	if p.Misc.EndDate.Before(p.Misc.StartDate.Time) {
		return fmt.Errorf("%w: plan endDate %s before startDate %s",
			comperr.ErrInvalidRange,
			p.Misc.EndDate.Format("2006-01-02"),
			p.Misc.StartDate.Format("2006-01-02"))
	}

	if p.Misc.PredictedInflation != 0 && p.Misc.PredictedInflation < 0.5 {
		return fmt.Errorf("%w: predictedInflation %.4f is below 0.5; baseline is 1, use 1.03 for 3%% inflation",
			comperr.ErrInvalidParameter, p.Misc.PredictedInflation)
	}

	if p.Bonus.Signing.Amount < 0 {
		return fmt.Errorf("%w: signing bonus amount %.2f is negative",
			comperr.ErrInvalidParameter, p.Bonus.Signing.Amount)
	}

	for _, s := range p.Stocks {
		if s.EndDate.Before(s.StartDate.Time) {
			return fmt.Errorf("%w: stock %q endDate %s before startDate %s",
				comperr.ErrInvalidRange, s.Name,
				s.EndDate.Format("2006-01-02"),
				s.StartDate.Format("2006-01-02"))
		}
		if s.Shares < 0 {
			return fmt.Errorf("%w: stock %q shares %.2f is negative",
				comperr.ErrInvalidParameter, s.Name, s.Shares)
		}
		if strings.TrimSpace(s.Ticker) == "" {
			return fmt.Errorf("%w: stock %q has no ticker",
				comperr.ErrInvalidTicker, s.Name)
		}
	}

	return nil
}

// HasInflationRate reports whether the plan supplies a predicted
// inflation rate.
func (p *Plan) HasInflationRate() bool {
	return p.Misc.PredictedInflation != 0
}
