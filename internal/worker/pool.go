// Package worker drains the harvest queue with a bounded pool.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/store"
)

// DefaultJobTimeout applies to jobs enqueued without a timeout.
const DefaultJobTimeout = 3 * time.Minute

// JobRunner runs one harvest; *harvest.Runner implements it.
type JobRunner interface {
	Run(ctx context.Context, serviceID string, ignoreActive bool) (*domain.Harvest, error)
}

// Pool runs up to Workers jobs concurrently. A job whose service is already
// running in this process is dropped.
type Pool struct {
	queue       store.Queue
	runner      JobRunner
	logger      logger.Logger
	workers     int
	pollTimeout time.Duration

	mu       sync.Mutex
	inFlight map[string]string // serviceID -> job ID
	dropped  atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}
}

func NewPool(queue store.Queue, runner JobRunner, log logger.Logger, workers int, pollTimeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &Pool{
		queue:       queue,
		runner:      runner,
		logger:      log,
		workers:     workers,
		pollTimeout: pollTimeout,
		inFlight:    make(map[string]string),
	}
}

// Start runs the pool in the background until Stop or ctx cancellation.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		p.Run(ctx)
	}()
}

// Stop cancels the pool and waits for running jobs to return.
func (p *Pool) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// InFlight returns the number of jobs currently running.
func (p *Pool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inFlight)
}

// Dropped returns the number of jobs dropped by the in-flight guard.
func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}

// Run dequeues until ctx is done, then waits for running jobs.
func (p *Pool) Run(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(p.workers)

	p.logger.Info("harvest workers started", logger.Int("workers", p.workers))
	defer p.logger.Info("harvest workers stopped")

	for ctx.Err() == nil {
		job, err := p.queue.Dequeue(ctx, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Warn("failed to dequeue harvest job", logger.Error(err))
			sleep(ctx, p.pollTimeout)
			continue
		}
		if job == nil {
			continue
		}

		if !p.acquire(*job) {
			continue
		}
		g.Go(func() error {
			defer p.release(job.ServiceID)
			p.execute(ctx, *job)
			return nil
		})
	}

	_ = g.Wait()
}

func (p *Pool) acquire(job domain.HarvestJob) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if running, busy := p.inFlight[job.ServiceID]; busy {
		p.logger.Warn("service already being harvested, dropping job",
			logger.String("service_id", job.ServiceID),
			logger.String("job_id", job.ID),
			logger.String("running_job_id", running))
		p.dropped.Add(1)
		return false
	}
	p.inFlight[job.ServiceID] = job.ID
	return true
}

func (p *Pool) release(serviceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, serviceID)
}

func (p *Pool) execute(ctx context.Context, job domain.HarvestJob) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := p.logger.With(
		logger.String("job_id", job.ID),
		logger.String("service_id", job.ServiceID))

	h, err := p.runner.Run(ctx, job.ServiceID, job.IgnoreActive)
	if err != nil {
		log.Error("harvest job failed", logger.Error(err))
		return
	}
	if ctx.Err() != nil {
		log.Warn("harvest job hit its timeout", logger.Duration("timeout", timeout))
	}
	log.Debug("harvest job done", logger.String("status", string(h.Status)))
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
