package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

// Harvester harvests one service of a given type.
type Harvester interface {
	Harvest(ctx context.Context, svc *domain.Service) (domain.Status, error)
}

// ErrUnsupportedServiceType is recorded for service types without a harvester.
var ErrUnsupportedServiceType = errors.New("no harvester for service type")

// Runner executes one unit of work: harvesting a single service id and
// recording the outcome in its Harvest record.
type Runner struct {
	store      Store
	harvesters map[string]Harvester
	logger     logger.Logger
	now        func() time.Time
	newRunID   func() string
}

func NewRunner(store Store, log logger.Logger) *Runner {
	return &Runner{
		store:      store,
		harvesters: make(map[string]Harvester),
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
		newRunID:   uuid.NewString,
	}
}

// Register binds a harvester to a service type.
func (r *Runner) Register(serviceType string, h Harvester) {
	r.harvesters[serviceType] = h
}

// Run harvests serviceID. Inactive services are skipped unless ignoreActive.
// The returned error only reports problems with the run's bookkeeping or an
// unknown service; a failed harvest is a StatusNotHarvested record.
func (r *Runner) Run(ctx context.Context, serviceID string, ignoreActive bool) (*domain.Harvest, error) {
	svc, err := r.store.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load service %s: %w", serviceID, err)
	}

	h, err := r.store.GetHarvest(ctx, serviceID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h = domain.NewHarvest(serviceID, r.now())
	case err != nil:
		return nil, fmt.Errorf("failed to load harvest record %s: %w", serviceID, err)
	}

	runID := r.newRunID()
	log := r.logger.With(
		logger.String("service_id", serviceID),
		logger.String("run_id", runID),
		logger.String("service_type", svc.ServiceType))

	if !ignoreActive && !svc.Harvestable() {
		log.Info("skipping inactive service")
		return h, nil
	}

	h.Begin(runID, r.now())
	start := time.Now()

	status, message := r.harvest(ctx, svc, log)
	h.Finish(status, message, r.now())

	if err := r.store.SaveHarvest(ctx, h); err != nil {
		return h, fmt.Errorf("failed to save harvest record %s: %w", serviceID, err)
	}

	log.Info("harvest finished",
		logger.String("status", string(status)),
		logger.Duration("elapsed", time.Since(start)))

	return h, nil
}

func (r *Runner) harvest(ctx context.Context, svc *domain.Service, log logger.Logger) (domain.Status, string) {
	harvester, ok := r.harvesters[svc.ServiceType]
	if !ok {
		log.Warn("no harvester registered for service type")
		return domain.StatusNotHarvested, fmt.Sprintf("%v: %s", ErrUnsupportedServiceType, svc.ServiceType)
	}

	status, err := harvester.Harvest(ctx, svc)
	if err != nil {
		return domain.StatusNotHarvested, err.Error()
	}
	return status, ""
}
