// Package comperr defines the error taxonomy shared across the
// projection pipeline. Callers classify failures with errors.Is and
// attach context by wrapping with fmt.Errorf("...: %w", Err...).
package comperr

import "errors"

var (
	// ErrInvalidRange reports a date range whose end precedes its start.
	ErrInvalidRange = errors.New("invalid date range: end before start")

	// ErrInvalidParameter reports an out-of-domain numeric input, such
	// as a predicted inflation rate below 0.5.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidTicker reports an instrument the market data provider
	// could not identify.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrDataSource reports an unreachable provider, a malformed or
	// unexpected payload, or a request timeout.
	ErrDataSource = errors.New("data source error")

	// ErrMissingDataPoint reports a historical index point the provider
	// has not published yet.
	ErrMissingDataPoint = errors.New("data point not published")

	// ErrInflationDisabled reports a future-date index resolution
	// attempted without a predicted inflation rate.
	ErrInflationDisabled = errors.New("future inflation prediction not enabled")
)
