package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vreflex/backend/internal/api"
	"github.com/wonny/vreflex/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                        - Health check
  GET  /api/energy-data               - Raw readings for a date
  GET  /api/energy-data/chart-data    - Daily report (get-or-create)
  GET  /api/summaries/{date}          - Stored summary
  POST /api/summaries/backfill        - Create missing summaries
  GET  /metrics                       - Prometheus metrics

Example:
  go run ./cmd/vreflex api
  go run ./cmd/vreflex api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== vreflex API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":        a.cfg.Port,
		"env":         a.cfg.Env,
		"local_store": a.cfg.Energy.LocalStoreFrom.Format("2006-01-02") + ".." + a.cfg.Energy.LocalStoreTo.Format("2006-01-02"),
	}).Info("Initializing API server")

	summaryHandler := handlers.NewSummaryHandler(a.summaries, log)
	energyDataHandler := handlers.NewEnergyDataHandler(a.readings, a.catalog, a.loc, log)

	router := api.NewRouter(summaryHandler, energyDataHandler, a.metrics, a.cfg.CORSOrigins, log)
	server := api.New(a.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
