package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/sources/registry"
	"github.com/coastwatch-labs/catalog/internal/store"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 250 * time.Millisecond

// RegistryReloader keeps the stored services in line with services.yaml.
// Services that disappear from the file are disabled, not deleted.
type RegistryReloader struct {
	loader        *registry.Loader
	mapper        *registry.Mapper
	store         store.Store
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	stopCh        chan struct{}
	manualTrigger chan struct{}
	now           func() time.Time
}

// NewRegistryReloader creates a new registry reloader. manualTrigger may be nil.
func NewRegistryReloader(
	serviceFile string,
	st store.Store,
	log logger.Logger,
	interval time.Duration,
	watch bool,
	manualTrigger chan struct{},
) *RegistryReloader {
	rr := &RegistryReloader{
		loader:        registry.NewLoader(serviceFile),
		store:         st,
		logger:        log,
		interval:      interval,
		watch:         watch,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		now:           time.Now,
	}
	rr.mapper = registry.NewMapper().WithClock(func() time.Time { return rr.now() })
	return rr
}

// Start loads the registry once, then reloads on every tick, manual
// trigger or file change.
func (rr *RegistryReloader) Start(ctx context.Context) error {
	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	var events <-chan fsnotify.Event
	var watcher *fsnotify.Watcher
	if rr.watch {
		w, err := rr.newWatcher()
		if err != nil {
			rr.logger.Warn("registry file watch disabled", logger.Error(err))
		} else {
			watcher = w
			events = w.Events
		}
	}

	go func() {
		if watcher != nil {
			defer watcher.Close()
		}

		var tick <-chan time.Time
		if rr.interval > 0 {
			ticker := time.NewTicker(rr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		var debounce <-chan time.Time
		for {
			select {
			case <-tick:
				rr.reloadLogged(ctx)
			case <-rr.manualTrigger:
				rr.logger.Info("manual reload triggered")
				rr.reloadLogged(ctx)
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if filepath.Clean(ev.Name) == filepath.Clean(rr.loader.Path()) {
					debounce = time.After(watchDebounce)
				}
			case <-debounce:
				debounce = nil
				rr.logger.Info("registry file changed")
				rr.reloadLogged(ctx)
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// newWatcher watches the file's directory: editors and config-map mounts
// replace the file rather than write it in place.
func (rr *RegistryReloader) newWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(rr.loader.Path())); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", rr.loader.Path(), err)
	}
	return w, nil
}

// Stop stops the reloader
func (rr *RegistryReloader) Stop() {
	close(rr.stopCh)
}

func (rr *RegistryReloader) reloadLogged(ctx context.Context) {
	if err := rr.Reload(ctx); err != nil {
		rr.logger.Error("failed to reload services", logger.Error(err))
	}
}

// Reload loads services.yaml and updates the store
func (rr *RegistryReloader) Reload(ctx context.Context) error {
	rr.logger.Info("reloading services from registry")

	config, err := rr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load services: %w", err)
	}

	newServices, err := rr.mapper.MapServices(config)
	if err != nil {
		return fmt.Errorf("failed to map services: %w", err)
	}

	existing, err := rr.store.GetAllServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored services: %w", err)
	}
	byID := make(map[string]*domain.Service, len(existing))
	for _, svc := range existing {
		byID[svc.ID] = svc
	}

	// Keep creation dates of services already known.
	newIDs := make(map[string]bool, len(newServices))
	for _, svc := range newServices {
		newIDs[svc.ID] = true
		if prev, ok := byID[svc.ID]; ok && !prev.CreatedAt.IsZero() {
			svc.CreatedAt = prev.CreatedAt
		}
	}

	// Disable services removed from the registry. UpdatedAt is only set on
	// the transition, the garbage collector counts from it.
	now := rr.now().UTC()
	var disabled []*domain.Service
	for _, svc := range existing {
		if newIDs[svc.ID] || svc.Disabled || !svc.HasSource(registry.SourceRegistry) {
			continue
		}
		svc.Disabled = true
		svc.UpdatedAt = now
		disabled = append(disabled, svc)
	}

	if len(disabled) > 0 {
		rr.logger.Info("marking removed services as disabled",
			logger.Int("count", len(disabled)))
	}

	if err := rr.store.SaveServicesMany(ctx, append(newServices, disabled...)); err != nil {
		return fmt.Errorf("failed to save services: %w", err)
	}

	rr.logger.Info("loaded services from registry",
		logger.Int("count", len(newServices)))
	return nil
}
