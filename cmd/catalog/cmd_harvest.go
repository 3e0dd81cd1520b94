package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coastwatch-labs/catalog/internal/app"
	"github.com/coastwatch-labs/catalog/internal/config"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

var harvestFlags struct {
	ignoreActive bool
	loadRegistry bool
	timeout      time.Duration
}

var harvestCmd = &cobra.Command{
	Use:   "harvest <service-id>",
	Short: "Harvest one service now and print its harvest record",
	Args:  cobra.ExactArgs(1),
	RunE:  runHarvest,
}

func init() {
	harvestCmd.Flags().BoolVar(&harvestFlags.ignoreActive, "ignore-active", false, "harvest even if the service is inactive")
	harvestCmd.Flags().BoolVar(&harvestFlags.loadRegistry, "load-registry", false, "load the registry file before harvesting")
	harvestCmd.Flags().DurationVar(&harvestFlags.timeout, "timeout", 10*time.Minute, "overall harvest timeout")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, harvestFlags.timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if harvestFlags.loadRegistry {
		if err := a.LoadRegistry(ctx); err != nil {
			return err
		}
	}

	h, err := a.Harvest(ctx, args[0], harvestFlags.ignoreActive)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}
