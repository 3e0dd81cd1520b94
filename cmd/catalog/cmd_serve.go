package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coastwatch-labs/catalog/internal/app"
	"github.com/coastwatch-labs/catalog/internal/config"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the harvest scheduler and the workers",
	Long: `Loads the service registry, then harvests active services every
CATALOG_HARVEST_INTERVAL. Configuration comes from CATALOG_* and REDIS_*
environment variables.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}
