package deps

import (
	"context"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/store"
)

// Enqueuer turns trigger requests into queued harvest jobs;
// *scheduler.HarvestScheduler implements it.
type Enqueuer interface {
	EnqueueAll(ctx context.Context) (int, error)
	EnqueueProvider(ctx context.Context, provider string) (int, error)
	EnqueueService(ctx context.Context, serviceID string, ignoreActive bool) (domain.HarvestJob, error)
}

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time // for testing, defaults to time.Now
	AllowedHosts      []string         // Host headers allowed to access the server
	AllowedCIDRS      []string         // IPs allowed to reach probes and triggers
	TrustProxy        bool             // true if running behind a trusted reverse proxy
	TriggerBurst      int              // rate limit burst for trigger endpoints
	TriggerRefillPerM int              // rate limit refill per IP per minute
	StoreBackend      string           // "redis" | "memory", reported by /infra
	Store             store.Store      // catalog documents
	Queue             store.Queue      // pending harvest jobs
	Harvests          Enqueuer         // harvest job producer
	ReloadTrigger     chan struct{}    // Channel to trigger manual registry reload
}
