// Package series produces the named monthly time series that make up a
// compensation projection.
package series

import (
	"encoding/json"
	"time"
)

// Render hints carried on every series. The core never interprets
// them; the charting frontend does.
const (
	TypeScatter    = "scatter"
	StackGroupOne  = "one"
	VisibleLegend  = "legendonly"
	dateWireFormat = "2006-01-02"
)

// Series is a named, date-aligned sequence of monthly values. Dates and
// Values are always the same length and positionally aligned; Dates are
// strictly increasing month starts.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64

	// Display-only hints, opaque to the projection core.
	Type       string
	StackGroup string
	Visible    string
}

// MarshalJSON renders the series in the wire shape the charting
// frontend consumes: dates under "x" as YYYY-MM-DD strings.
func (s *Series) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name       string    `json:"name"`
		X          []string  `json:"x"`
		Y          []float64 `json:"y"`
		Type       string    `json:"type,omitempty"`
		StackGroup string    `json:"stackgroup,omitempty"`
		Visible    string    `json:"visible,omitempty"`
	}

	return json.Marshal(wire{
		Name:       s.Name,
		X:          s.WireDates(),
		Y:          s.Values,
		Type:       s.Type,
		StackGroup: s.StackGroup,
		Visible:    s.Visible,
	})
}

// WireDates renders the date axis the way the charting frontend expects
// it.
func (s *Series) WireDates() []string {
	out := make([]string, len(s.Dates))
	for i, d := range s.Dates {
		out[i] = d.Format(dateWireFormat)
	}
	return out
}

// ValueAt returns the value at an exact grid date and whether the
// series covers that date at all.
func (s *Series) ValueAt(date time.Time) (float64, bool) {
	for i, d := range s.Dates {
		if d.Equal(date) {
			return s.Values[i], true
		}
	}
	return 0, false
}

// newComponent builds a stacked component series over a grid by mapping
// each grid point through valueAt.
func newComponent(name string, grid []time.Time, valueAt func(time.Time) (float64, error)) (*Series, error) {
	values := make([]float64, len(grid))
	for i, date := range grid {
		v, err := valueAt(date)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return &Series{
		Name:       name,
		Dates:      grid,
		Values:     values,
		Type:       TypeScatter,
		StackGroup: StackGroupOne,
	}, nil
}
