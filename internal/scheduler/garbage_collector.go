package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/store"
)

const (
	// DefaultGCThreshold is the duration after which disabled services are deleted
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// GarbageCollector deletes services disabled for longer than the threshold,
// with their harvest record. Datasets and metadata are never collected.
type GarbageCollector struct {
	store     store.Store
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	st store.Store,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     st,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes expired disabled services and returns how many went.
// Per-service failures are logged and skipped.
func (gc *GarbageCollector) Collect(ctx context.Context) (int, error) {
	gc.logger.Info("running garbage collection for disabled services")

	services, err := gc.store.GetAllServices(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list services: %w", err)
	}

	now := gc.now()
	deleted := 0
	for _, svc := range services {
		if !svc.Disabled || svc.UpdatedAt.IsZero() {
			continue
		}
		disabledFor := now.Sub(svc.UpdatedAt)
		if disabledFor < gc.threshold {
			continue
		}

		if err := gc.collect(ctx, svc); err != nil {
			gc.logger.Warn("failed to collect disabled service",
				logger.String("service_id", svc.ID),
				logger.Error(err))
			continue
		}

		gc.logger.Info("garbage collected disabled service",
			logger.String("service_id", svc.ID),
			logger.String("url", svc.URL),
			logger.String("disabled_for", disabledFor.String()))
		deleted++
	}

	if deleted > 0 {
		gc.logger.Info("garbage collection completed", logger.Int("services_deleted", deleted))
	} else {
		gc.logger.Debug("no items to garbage collect")
	}
	return deleted, nil
}

// collect deletes the harvest record first so a failure never leaves an
// orphaned record behind a deleted service.
func (gc *GarbageCollector) collect(ctx context.Context, svc *domain.Service) error {
	if err := gc.store.DeleteHarvest(ctx, svc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to delete harvest record: %w", err)
	}
	if err := gc.store.DeleteService(ctx, svc.ID); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}
