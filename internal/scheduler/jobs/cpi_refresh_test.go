package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/wonny/paygrid/backend/internal/cpi"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// mutableProvider lets the test move the latest published period between
// calls, the way a new monthly release does.
type mutableProvider struct {
	latest []cpi.Observation
	err    error
}

func (p *mutableProvider) Latest(ctx context.Context) ([]cpi.Observation, error) {
	return p.latest, p.err
}

func (p *mutableProvider) Window(ctx context.Context, startYear, endYear int) ([]cpi.Observation, error) {
	return p.latest, p.err
}

func TestCPIRefreshAdvancesBoundary(t *testing.T) {
	provider := &mutableProvider{latest: []cpi.Observation{
		{Year: 2024, Month: 6, Value: 306, Published: true},
	}}

	resolver := cpi.NewResolver(provider, logger.NewNop())
	if err := resolver.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	job := NewCPIRefreshJob(resolver, logger.NewNop())
	if job.Name() != "cpi_refresh" {
		t.Errorf("Name() = %q", job.Name())
	}

	// A new release lands.
	provider.latest = []cpi.Observation{
		{Year: 2024, Month: 7, Value: 307, Published: true},
		{Year: 2024, Month: 6, Value: 306, Published: true},
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	year, month, value := resolver.LatestPeriod()
	if year != 2024 || month != 7 || value != 307 {
		t.Errorf("latest period = %d-%02d %v, want 2024-07 307", year, month, value)
	}
}

func TestCPIRefreshPropagatesProviderError(t *testing.T) {
	provider := &mutableProvider{latest: []cpi.Observation{
		{Year: 2024, Month: 6, Value: 306, Published: true},
	}}

	resolver := cpi.NewResolver(provider, logger.NewNop())
	if err := resolver.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	provider.err = errors.New("rate limited")

	job := NewCPIRefreshJob(resolver, logger.NewNop())
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("Run() should surface the provider error")
	}
}
