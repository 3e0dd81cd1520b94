package scheduler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/store"
)

// TimeoutPolicy sizes a job's timeout from the number of datasets its
// service contributed so far.
type TimeoutPolicy struct {
	SmallDatasets int           // services with at most this many datasets...
	SmallTimeout  time.Duration // ...get this flat timeout
	PerDataset    time.Duration // larger services get this much per dataset
}

// DefaultTimeoutPolicy: 180s up to 36 datasets, else 60s per dataset.
var DefaultTimeoutPolicy = TimeoutPolicy{
	SmallDatasets: 36,
	SmallTimeout:  180 * time.Second,
	PerDataset:    60 * time.Second,
}

func (p TimeoutPolicy) For(datasets int) time.Duration {
	if datasets <= p.SmallDatasets {
		return p.SmallTimeout
	}
	return time.Duration(datasets) * p.PerDataset
}

// HarvestScheduler enqueues harvest jobs: every interval for all active
// services, and on demand for one provider or one service.
type HarvestScheduler struct {
	store         store.Store
	queue         store.Queue
	policy        TimeoutPolicy
	logger        logger.Logger
	interval      time.Duration
	onStart       bool
	stopCh        chan struct{}
	manualTrigger chan struct{}

	shuffle func([]*domain.Service)
	now     func() time.Time
}

// NewHarvestScheduler creates a scheduler. manualTrigger may be nil.
func NewHarvestScheduler(
	st store.Store,
	queue store.Queue,
	policy TimeoutPolicy,
	log logger.Logger,
	interval time.Duration,
	onStart bool,
	manualTrigger chan struct{},
) *HarvestScheduler {
	return &HarvestScheduler{
		store:         st,
		queue:         queue,
		policy:        policy,
		logger:        log,
		interval:      interval,
		onStart:       onStart,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		shuffle: func(s []*domain.Service) {
			rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
		},
		now: time.Now,
	}
}

// Start begins the periodic harvest cycle
func (hs *HarvestScheduler) Start(ctx context.Context) error {
	if hs.onStart {
		if _, err := hs.EnqueueAll(ctx); err != nil {
			return fmt.Errorf("initial harvest cycle failed: %w", err)
		}
	}

	ticker := time.NewTicker(hs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hs.cycle(ctx)
			case <-hs.manualTrigger:
				hs.logger.Info("manual harvest cycle triggered")
				hs.cycle(ctx)
			case <-hs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the scheduler
func (hs *HarvestScheduler) Stop() {
	close(hs.stopCh)
}

func (hs *HarvestScheduler) cycle(ctx context.Context) {
	if _, err := hs.EnqueueAll(ctx); err != nil {
		hs.logger.Error("failed to enqueue harvest cycle", logger.Error(err))
	}
}

// EnqueueAll enqueues every harvestable service in random order, so one
// slow provider does not always hold the head of the queue.
func (hs *HarvestScheduler) EnqueueAll(ctx context.Context) (int, error) {
	return hs.enqueueMatching(ctx, func(*domain.Service) bool { return true })
}

// EnqueueProvider enqueues the harvestable services of one data provider.
func (hs *HarvestScheduler) EnqueueProvider(ctx context.Context, provider string) (int, error) {
	return hs.enqueueMatching(ctx, func(svc *domain.Service) bool {
		return svc.DataProvider == provider
	})
}

func (hs *HarvestScheduler) enqueueMatching(ctx context.Context, match func(*domain.Service) bool) (int, error) {
	services, err := hs.store.GetAllServices(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list services: %w", err)
	}

	selected := services[:0]
	for _, svc := range services {
		if svc.Harvestable() && match(svc) {
			selected = append(selected, svc)
		}
	}
	hs.shuffle(selected)

	enqueued := 0
	for _, svc := range selected {
		if _, err := hs.enqueue(ctx, svc.ID, false); err != nil {
			hs.logger.Warn("failed to enqueue harvest job",
				logger.String("service_id", svc.ID),
				logger.Error(err))
			continue
		}
		enqueued++
	}

	hs.logger.Info("harvest jobs enqueued",
		logger.Int("enqueued", enqueued),
		logger.Int("selected", len(selected)))
	return enqueued, nil
}

// EnqueueService enqueues one service. The service must exist; with
// ignoreActive the job also runs for an inactive service.
func (hs *HarvestScheduler) EnqueueService(ctx context.Context, serviceID string, ignoreActive bool) (domain.HarvestJob, error) {
	if _, err := hs.store.GetService(ctx, serviceID); err != nil {
		return domain.HarvestJob{}, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}
	return hs.enqueue(ctx, serviceID, ignoreActive)
}

func (hs *HarvestScheduler) enqueue(ctx context.Context, serviceID string, ignoreActive bool) (domain.HarvestJob, error) {
	count, err := hs.store.CountDatasetsForService(ctx, serviceID)
	if err != nil {
		hs.logger.Warn("failed to count datasets, using small-service timeout",
			logger.String("service_id", serviceID),
			logger.Error(err))
		count = 0
	}

	job := domain.HarvestJob{
		ID:           uuid.NewString(),
		ServiceID:    serviceID,
		Timeout:      hs.policy.For(count),
		IgnoreActive: ignoreActive,
		EnqueuedAt:   hs.now().UTC(),
	}
	if err := hs.queue.Enqueue(ctx, job); err != nil {
		return domain.HarvestJob{}, err
	}
	return job, nil
}
