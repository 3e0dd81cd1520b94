package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// DefaultUpdateRetries bounds optimistic-lock retries of one document update.
const DefaultUpdateRetries = 16

// Store is the Redis catalog backend. Documents are JSON strings without TTL;
// sets index them for listing.
type Store struct {
	client  *redis.Client
	retries int
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client:  client,
		retries: DefaultUpdateRetries,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// getJSON reads key into a new T, mapping redis.Nil to domain.ErrNotFound.
func getJSON[T any](ctx context.Context, c redis.Cmdable, key string) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return &v, nil
}

// getMany loads the documents of ids, skipping the ones that vanished
// between the set read and the GET.
func getMany[T any](ctx context.Context, c *redis.Client, ids []string, keyOf func(string) string) ([]*T, error) {
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	out := make([]*T, 0, len(values))
	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// update performs an optimistic read-modify-write of one key. fn sees the
// current document (nil when absent); index adds extra writes to the same
// transaction. The transaction is retried when the key changed meanwhile.
func update[T any](ctx context.Context, s *Store, key string, fn func(*T) (*T, error), index func(redis.Pipeliner, *T)) (*T, error) {
	var result *T

	txf := func(tx *redis.Tx) error {
		current, err := getJSON[T](ctx, tx, key)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		updated, err := fn(current)
		if err != nil {
			return err
		}
		if updated == nil {
			return fmt.Errorf("%s: update returned nothing", key)
		}

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if index != nil {
				index(pipe, updated)
			}
			return nil
		})
		if err == nil {
			result = updated
		}
		return err
	}

	for range s.retries {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%s: gave up after %d concurrent modifications", key, s.retries)
}
