package index

import (
	"context"
	"fmt"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// MemoryQueue is a bounded FIFO of harvest jobs for single-process setups.
type MemoryQueue struct {
	jobs chan domain.HarvestJob
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryQueue{jobs: make(chan domain.HarvestJob, capacity)}
}

// Enqueue fails instead of blocking when the queue is full.
func (q *MemoryQueue) Enqueue(_ context.Context, job domain.HarvestJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("harvest queue full (%d jobs)", cap(q.jobs))
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*domain.HarvestJob, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Len(context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}
