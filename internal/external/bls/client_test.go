package bls

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/paygrid/backend/internal/comperr"
	"github.com/wonny/paygrid/backend/pkg/config"
	"github.com/wonny/paygrid/backend/pkg/httputil"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{HTTPTimeout: 5 * time.Second}
	cfg.BLS.BaseURL = srv.URL
	cfg.BLS.SeriesID = "CUUR0000SA0L1E"

	httpClient := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewClient(cfg, httpClient, logger.NewNop())
}

const successBody = `{
	"status": "REQUEST_SUCCEEDED",
	"Results": {
		"series": [{
			"data": [
				{"year": "2024", "period": "M13", "value": "305.1"},
				{"year": "2024", "period": "M04", "value": "-"},
				{"year": "2024", "period": "M03", "value": "303.8"},
				{"year": "2024", "period": "M02", "value": "302.9"},
				{"year": "2024", "period": "M01", "value": "301.5"}
			]
		}]
	}
}`

func TestLatestParsesObservations(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(successBody))
	})

	obs, err := client.Latest(context.Background())
	require.NoError(t, err)

	// The annual-average M13 row is dropped; the "-" row survives as an
	// unpublished observation.
	require.Len(t, obs, 4)

	assert.Equal(t, 4, obs[0].Month)
	assert.False(t, obs[0].Published)
	assert.Zero(t, obs[0].Value)

	assert.Equal(t, 3, obs[1].Month)
	assert.True(t, obs[1].Published)
	assert.Equal(t, 303.8, obs[1].Value)

	assert.Equal(t, 2024, obs[3].Year)
	assert.Equal(t, 1, obs[3].Month)
	assert.Equal(t, 301.5, obs[3].Value)
}

func TestWindowSendsYearRange(t *testing.T) {
	var payload map[string]interface{}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(successBody))
	})

	_, err := client.Window(context.Background(), 2020, 2029)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"CUUR0000SA0L1E"}, payload["seriesid"])
	assert.Equal(t, float64(2020), payload["startyear"])
	assert.Equal(t, float64(2029), payload["endyear"])
}

func TestLatestOmitsEmptyYearRange(t *testing.T) {
	var payload map[string]interface{}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(successBody))
	})

	_, err := client.Latest(context.Background())
	require.NoError(t, err)

	_, hasStart := payload["startyear"]
	_, hasEnd := payload["endyear"]
	assert.False(t, hasStart)
	assert.False(t, hasEnd)
}

func TestQueryHTTPErrorStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.Latest(context.Background())
	assert.True(t, errors.Is(err, comperr.ErrDataSource), "error = %v", err)
}

func TestQueryFailedStatusField(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_NOT_PROCESSED", "Results": {"series": []}}`))
	})

	_, err := client.Latest(context.Background())
	assert.True(t, errors.Is(err, comperr.ErrDataSource), "error = %v", err)
}

func TestQueryWrongSeriesCount(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_SUCCEEDED", "Results": {"series": []}}`))
	})

	_, err := client.Latest(context.Background())
	assert.True(t, errors.Is(err, comperr.ErrDataSource), "error = %v", err)
}

func TestQueryMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.Latest(context.Background())
	assert.True(t, errors.Is(err, comperr.ErrDataSource), "error = %v", err)
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name      string
		year      string
		period    string
		value     string
		ok        bool
		published bool
		want      float64
	}{
		{"published month", "2024", "M06", "307.2", true, true, 307.2},
		{"unpublished month", "2024", "M07", "-", true, false, 0},
		{"annual average skipped", "2024", "M13", "305.1", false, false, 0},
		{"semiannual period skipped", "2024", "S01", "305.1", false, false, 0},
		{"garbage year", "20x4", "M06", "307.2", false, false, 0},
		{"garbage value", "2024", "M06", "n/a", false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, ok := parseRow(tt.year, tt.period, tt.value)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.published, obs.Published)
				assert.Equal(t, tt.want, obs.Value)
			}
		})
	}
}
