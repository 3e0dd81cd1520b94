package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/coastwatch-labs/catalog/internal/cdm/snapshot"
	"github.com/coastwatch-labs/catalog/internal/compliance"
	"github.com/coastwatch-labs/catalog/internal/config"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/geometry"
	"github.com/coastwatch-labs/catalog/internal/harvest"
	"github.com/coastwatch-labs/catalog/internal/httpserver"
	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/index"
	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/redis"
	"github.com/coastwatch-labs/catalog/internal/scheduler"
	"github.com/coastwatch-labs/catalog/internal/store"
	redisstore "github.com/coastwatch-labs/catalog/internal/store/redis"
	"github.com/coastwatch-labs/catalog/internal/version"
	"github.com/coastwatch-labs/catalog/internal/worker"
)

// memoryQueueCapacity bounds pending jobs when running without Redis.
const memoryQueueCapacity = 4096

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	redisClient *goredis.Client
	store       store.Store
	queue       store.Queue
	runner      *harvest.Runner
}

// New connects the store and builds the harvest pipeline. Long-running
// components are only created by Serve.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		loggerClient.Warn("using the in-memory store, the catalog is lost on exit")
		a.store = index.NewMemoryIndex()
		a.queue = index.NewMemoryQueue(memoryQueueCapacity)
	default:
		// Fail fast if Redis never comes up
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		a.store = redisstore.NewStore(client)
		a.queue = redisstore.NewQueue(client)
	}

	runner, err := a.buildRunner()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.runner = runner
	return a, nil
}

func (a *App) buildRunner() (*harvest.Runner, error) {
	schema, err := compliance.LoadSchema(a.cfg.BeliefFile)
	if err != nil {
		return nil, err
	}

	// A typed nil *HTTPEngine would not read as "disabled".
	var engine compliance.Engine
	if a.cfg.ComplianceURL != "" {
		engine = compliance.NewHTTPEngine(a.cfg.ComplianceURL, a.cfg.ComplianceTimeout)
	} else {
		a.logger.Info("no compliance service configured, scoring disabled")
	}

	scorer := compliance.NewScorer(engine, compliance.AttributeBeliefs{}, schema, a.cfg.Checker, a.logger)
	resolver := geometry.NewResolver(geometry.NewHTTPTableFetcher(a.cfg.TableFetchTimeout), a.logger)
	opener := snapshot.NewOpener(a.cfg.SnapshotDir)

	runner := harvest.NewRunner(a.store, a.logger)
	runner.Register(domain.ServiceTypeDAP, harvest.NewDAPHarvester(opener, resolver, scorer, a.store, a.logger))
	return runner, nil
}

// Harvest runs one service synchronously, bypassing the queue.
func (a *App) Harvest(ctx context.Context, serviceID string, ignoreActive bool) (*domain.Harvest, error) {
	return a.runner.Run(ctx, serviceID, ignoreActive)
}

// LoadRegistry stores the services of the registry file once.
func (a *App) LoadRegistry(ctx context.Context) error {
	return scheduler.NewRegistryReloader(a.cfg.ServiceFile, a.store, a.logger, 0, false, nil).Reload(ctx)
}

// Serve runs the registry reloader, the harvest scheduler and workers, the
// garbage collector and the HTTP server until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Info("starting catalog",
		logger.String("version", version.String()),
		logger.String("listen", a.cfg.ListenPort),
		logger.String("store", a.cfg.StoreBackend))

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewRegistryReloader(
		a.cfg.ServiceFile,
		a.store,
		a.logger,
		a.cfg.ReloadInterval,
		a.cfg.WatchServiceFile,
		reloadTrigger,
	)
	if err := reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start registry reloader: %w", err)
	}
	defer reloader.Stop()
	a.logger.Info("registry reloader started",
		logger.String("file", a.cfg.ServiceFile),
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.Bool("watch", a.cfg.WatchServiceFile))

	pool := worker.NewPool(a.queue, a.runner, a.logger, a.cfg.Workers, a.cfg.QueuePollTimeout)
	pool.Start(ctx)
	defer pool.Stop()

	harvests := scheduler.NewHarvestScheduler(
		a.store,
		a.queue,
		scheduler.TimeoutPolicy{
			SmallDatasets: a.cfg.SmallServiceDatasets,
			SmallTimeout:  a.cfg.SmallServiceTimeout,
			PerDataset:    a.cfg.PerDatasetTimeout,
		},
		a.logger,
		a.cfg.HarvestInterval,
		a.cfg.HarvestOnStart,
		nil,
	)
	if err := harvests.Start(ctx); err != nil {
		return fmt.Errorf("failed to start harvest scheduler: %w", err)
	}
	defer harvests.Stop()
	a.logger.Info("harvest scheduler started",
		logger.Duration("interval", a.cfg.HarvestInterval),
		logger.Int("workers", a.cfg.Workers))

	gc := scheduler.NewGarbageCollector(a.store, a.logger, a.cfg.GCInterval, a.cfg.GCThreshold)
	if err := gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	defer gc.Stop()
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	d := deps.Deps{
		Logger:            a.logger,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      a.cfg.AllowedHosts,
		AllowedCIDRS:      a.cfg.AllowedCIDRS,
		TrustProxy:        a.cfg.TrustProxy,
		TriggerBurst:      a.cfg.TriggerBurst,
		TriggerRefillPerM: a.cfg.TriggerRefillPerM,
		StoreBackend:      a.cfg.StoreBackend,
		Store:             a.store,
		Queue:             a.queue,
		Harvests:          harvests,
		ReloadTrigger:     reloadTrigger,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}

// Close releases the Redis connection, if any.
func (a *App) Close() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warn("failed to close redis", logger.Error(err))
		return
	}
	a.logger.Info("redis closed cleanly")
}
