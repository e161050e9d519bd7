package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/paygrid/backend/internal/cpi"
	"github.com/wonny/paygrid/backend/internal/external/bls"
	"github.com/wonny/paygrid/backend/internal/external/yahoo"
	"github.com/wonny/paygrid/backend/internal/plan"
	"github.com/wonny/paygrid/backend/internal/projection"
	"github.com/wonny/paygrid/backend/pkg/config"
	"github.com/wonny/paygrid/backend/pkg/httputil"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// projectCmd runs a single projection from a plan file, without the
// HTTP server. Useful for smoke-testing plan documents.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Run a projection from a plan JSON file",
	Long: `Run a compensation projection from a plan document and print
the resulting series as JSON.

Example:
  go run ./cmd/paygrid project --plan plan.json`,
	RunE: runProject,
}

var (
	planFile string
)

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().StringVar(&planFile, "plan", "", "path to the plan JSON file (required)")
	_ = projectCmd.MarkFlagRequired("plan")
}

func runProject(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	data, err := os.ReadFile(planFile)
	if err != nil {
		return fmt.Errorf("read plan file: %w", err)
	}

	doc, err := plan.Parse(data)
	if err != nil {
		return fmt.Errorf("parse plan: %w", err)
	}

	httpClient := httputil.New(cfg, log).WithRateLimit(5, 5)
	blsClient := bls.NewClient(cfg, httpClient, log)
	yahooClient := yahoo.NewClient(cfg, httpClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resolver := cpi.NewResolver(blsClient, log)
	inflationEnabled := cfg.Projection.InflationSeriesEnabled
	if inflationEnabled {
		if err := resolver.Init(ctx); err != nil {
			log.WithError(err).Warn("CPI resolver init failed, inflation series disabled")
			inflationEnabled = false
		}
	}

	projector := projection.New(yahooClient, resolver, log, inflationEnabled)

	result, err := projector.Project(ctx, doc)
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
