package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/index"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

type recordingRunner struct {
	mu       sync.Mutex
	calls    []string
	release  chan struct{}
	started  chan string
	deadline []time.Duration
}

func (r *recordingRunner) Run(ctx context.Context, serviceID string, ignoreActive bool) (*domain.Harvest, error) {
	r.mu.Lock()
	r.calls = append(r.calls, serviceID)
	if dl, ok := ctx.Deadline(); ok {
		r.deadline = append(r.deadline, time.Until(dl))
	}
	r.mu.Unlock()

	if r.started != nil {
		r.started <- serviceID
	}
	if r.release != nil {
		<-r.release
	}
	return &domain.Harvest{ServiceID: serviceID, Status: domain.StatusHarvested}, nil
}

func (r *recordingRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPoolRunsQueuedJobs(t *testing.T) {
	q := index.NewMemoryQueue(10)
	runner := &recordingRunner{}
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := q.Enqueue(ctx, domain.HarvestJob{ID: "job-" + id, ServiceID: id, Timeout: time.Minute}); err != nil {
			t.Fatal(err)
		}
	}

	p := NewPool(q, runner, logger.Nop(), 2, 10*time.Millisecond)
	p.Start(ctx)
	waitFor(t, func() bool { return len(runner.Calls()) == 3 })
	p.Stop()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	for _, d := range runner.deadline {
		if d > time.Minute || d < 50*time.Second {
			t.Errorf("job deadline %v, want about one minute", d)
		}
	}
}

func TestPoolDropsDuplicateServiceJobs(t *testing.T) {
	q := index.NewMemoryQueue(10)
	runner := &recordingRunner{release: make(chan struct{}), started: make(chan string, 4)}
	ctx := context.Background()

	p := NewPool(q, runner, logger.Nop(), 4, 10*time.Millisecond)
	p.Start(ctx)

	_ = q.Enqueue(ctx, domain.HarvestJob{ID: "1", ServiceID: "s1"})
	<-runner.started

	// s1 is still running: the second job for it is dropped.
	_ = q.Enqueue(ctx, domain.HarvestJob{ID: "2", ServiceID: "s1"})
	waitFor(t, func() bool { return p.Dropped() == 1 })

	close(runner.release)
	p.Stop()

	if got := runner.Calls(); len(got) != 1 {
		t.Errorf("runner calls = %v, want one call", got)
	}
	if p.InFlight() != 0 {
		t.Errorf("InFlight() = %d after stop", p.InFlight())
	}
}

func TestPoolDefaultTimeout(t *testing.T) {
	q := index.NewMemoryQueue(1)
	runner := &recordingRunner{}
	ctx := context.Background()
	_ = q.Enqueue(ctx, domain.HarvestJob{ID: "1", ServiceID: "s1"})

	p := NewPool(q, runner, logger.Nop(), 1, 10*time.Millisecond)
	p.Start(ctx)
	waitFor(t, func() bool { return len(runner.Calls()) == 1 })
	p.Stop()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.deadline) != 1 || runner.deadline[0] > DefaultJobTimeout {
		t.Errorf("deadline = %v, want at most %v", runner.deadline, DefaultJobTimeout)
	}
}
