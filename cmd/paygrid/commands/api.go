package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/paygrid/backend/internal/api"
	"github.com/wonny/paygrid/backend/internal/api/handlers"
	"github.com/wonny/paygrid/backend/internal/cpi"
	"github.com/wonny/paygrid/backend/internal/external/bls"
	"github.com/wonny/paygrid/backend/internal/external/yahoo"
	"github.com/wonny/paygrid/backend/internal/projection"
	"github.com/wonny/paygrid/backend/internal/scheduler"
	"github.com/wonny/paygrid/backend/internal/scheduler/jobs"
	"github.com/wonny/paygrid/backend/pkg/config"
	"github.com/wonny/paygrid/backend/pkg/httputil"
	"github.com/wonny/paygrid/backend/pkg/logger"
)

// apiCmd represents the api command.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health           - Health check
  POST /api/v1.0/plot/   - Run a compensation projection

Example:
  go run ./cmd/paygrid api
  go run ./cmd/paygrid api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Create HTTP client for external providers. BLS enforces a
	// daily courtesy limit on unregistered clients; stay polite.
	httpClient := httputil.New(cfg, log).WithRateLimit(5, 5)

	// 4. Create external API clients
	blsClient := bls.NewClient(cfg, httpClient, log)
	yahooClient := yahoo.NewClient(cfg, httpClient, log)

	// 5. Create the CPI resolver, shared across requests
	resolver := cpi.NewResolver(blsClient, log)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancelInit()

	inflationEnabled := cfg.Projection.InflationSeriesEnabled
	if inflationEnabled {
		if err := resolver.Init(initCtx); err != nil {
			// Degraded mode: projections still work, the adjusted
			// series is omitted per the soft-fail policy.
			log.WithError(err).Warn("CPI resolver init failed, inflation series disabled")
			inflationEnabled = false
		}
	}

	// 6. Create projector and handler
	projector := projection.New(yahooClient, resolver, log, inflationEnabled)
	plotHandler := handlers.NewPlotHandler(projector, log)

	// 7. Create router and server
	router := api.NewRouter(plotHandler, log)
	server := api.New(cfg, log, router)

	// 8. Start the CPI refresh scheduler
	sched := scheduler.New(log)
	if inflationEnabled {
		if err := sched.AddJob(jobs.NewCPIRefreshJob(resolver, log)); err != nil {
			return fmt.Errorf("schedule CPI refresh: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
