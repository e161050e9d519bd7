// Package bls implements the Bureau of Labor Statistics public
// timeseries API client used for CPI data.
package bls

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/internal/cpi"
	"github.com/wonny/paygrid/backend/pkg/config"
	"github.com/wonny/paygrid/backend/pkg/httputil"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

const statusSucceeded = "REQUEST_SUCCEEDED"

// Client talks to the BLS public timeseries data API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	seriesID   string
	apiKey     string // optional registration key for higher limits
}

// NewClient creates a BLS API client for a single CPI series.
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BLS.BaseURL,
		seriesID:   cfg.BLS.SeriesID,
		apiKey:     cfg.BLS.APIKey,
	}
}

// request is the BLS timeseries POST payload.
type request struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       int      `json:"startyear,omitempty"`
	EndYear         int      `json:"endyear,omitempty"`
	RegistrationKey string   `json:"registrationKey,omitempty"`
}

// response is the BLS timeseries envelope.
type response struct {
	Status  string `json:"status"`
	Results struct {
		Series []struct {
			Data []struct {
				Year   string `json:"year"`
				Period string `json:"period"`
				Value  string `json:"value"`
			} `json:"data"`
		} `json:"series"`
	} `json:"Results"`
}

// Latest fetches the most recent observations for the series. The BLS
// API returns the current window when no year range is given.
func (c *Client) Latest(ctx context.Context) ([]cpi.Observation, error) {
	return c.query(ctx, request{SeriesID: []string{c.seriesID}, RegistrationKey: c.apiKey})
}

// Window fetches all observations for [startYear, endYear].
func (c *Client) Window(ctx context.Context, startYear, endYear int) ([]cpi.Observation, error) {
	return c.query(ctx, request{
		SeriesID:        []string{c.seriesID},
		StartYear:       startYear,
		EndYear:         endYear,
		RegistrationKey: c.apiKey,
	})
}

func (c *Client) query(ctx context.Context, req request) ([]cpi.Observation, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.baseURL, req)
	if err != nil {
		return nil, fmt.Errorf("%w: BLS request failed: %v", comperr.ErrDataSource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read BLS response: %v", comperr.ErrDataSource, err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: BLS returned status %d: %s",
			comperr.ErrDataSource, resp.StatusCode, truncate(string(body), 200))
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode BLS response: %v", comperr.ErrDataSource, err)
	}

	if parsed.Status != statusSucceeded {
		return nil, fmt.Errorf("%w: BLS reported status %q", comperr.ErrDataSource, parsed.Status)
	}

	if n := len(parsed.Results.Series); n != 1 {
		return nil, fmt.Errorf("%w: BLS returned %d series, expected exactly 1", comperr.ErrDataSource, n)
	}

	observations := make([]cpi.Observation, 0, len(parsed.Results.Series[0].Data))
	for _, row := range parsed.Results.Series[0].Data {
		obs, ok := parseRow(row.Year, row.Period, row.Value)
		if !ok {
			continue
		}
		observations = append(observations, obs)
	}

	c.logger.WithFields(map[string]interface{}{
		"series_id": c.seriesID,
		"count":     len(observations),
	}).Debug("Fetched CPI observations")

	return observations, nil
}

// parseRow converts one BLS data row to an observation. Monthly periods
// are "M01".."M12"; "M13" is the annual average and is skipped. A "-"
// value means the month is not published yet, represented as an
// unpublished observation rather than zero.
func parseRow(yearStr, period, value string) (cpi.Observation, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return cpi.Observation{}, false
	}

	if len(period) != 3 || period[0] != 'M' {
		return cpi.Observation{}, false
	}
	month, err := strconv.Atoi(period[1:])
	if err != nil || month < 1 || month > 12 {
		return cpi.Observation{}, false
	}

	obs := cpi.Observation{Year: year, Month: month}

	if strings.TrimSpace(value) == "-" {
		return obs, true
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return cpi.Observation{}, false
	}

	obs.Value = v
	obs.Published = true
	return obs, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
