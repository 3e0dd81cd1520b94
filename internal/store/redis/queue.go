package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// Queue is a FIFO of harvest jobs on a Redis list, shared by every
// catalog process pointing at the same server.
type Queue struct {
	client *redis.Client
	key    string
}

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client, key: KeyHarvestQueue}
}

func (q *Queue) Enqueue(ctx context.Context, job domain.HarvestJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks up to wait on BLPOP; a timeout yields (nil, nil).
func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (*domain.HarvestJob, error) {
	res, err := q.client.BLPop(ctx, wait, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	// BLPOP replies [key, value]
	var job domain.HarvestJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
