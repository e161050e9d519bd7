// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/paygrid/backend/internal/cpi"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// CPIRefreshJob re-learns the latest published CPI period so a
// long-running process picks up new monthly releases without a restart.
// The resolver's boundary only ever moves forward, so a refresh can
// never invalidate values already served.
type CPIRefreshJob struct {
	resolver *cpi.Resolver
	logger   *logger.Logger
}

// NewCPIRefreshJob creates the job.
func NewCPIRefreshJob(resolver *cpi.Resolver, log *logger.Logger) *CPIRefreshJob {
	return &CPIRefreshJob{resolver: resolver, logger: log}
}

// Name returns the job name.
func (j *CPIRefreshJob) Name() string { return "cpi_refresh" }

// Schedule runs nightly at 06:30; BLS publishes mid-month in the
// morning, US Eastern.
func (j *CPIRefreshJob) Schedule() string { return "0 30 6 * * *" }

// Run refreshes the resolver's latest known period.
func (j *CPIRefreshJob) Run(ctx context.Context) error {
	if err := j.resolver.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh CPI data: %w", err)
	}

	year, month, value := j.resolver.LatestPeriod()
	j.logger.WithFields(map[string]interface{}{
		"year":  year,
		"month": month,
		"value": value,
	}).Info("CPI latest period refreshed")

	return nil
}
