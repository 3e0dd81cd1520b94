package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/harvest"
)

// GetDataset retrieves a dataset by UID
func (s *Store) GetDataset(ctx context.Context, uid string) (*domain.Dataset, error) {
	return getJSON[domain.Dataset](ctx, s.client, DatasetKey(uid))
}

// ListDatasets returns every dataset sorted by UID
func (s *Store) ListDatasets(ctx context.Context) ([]*domain.Dataset, error) {
	uids, err := s.client.SMembers(ctx, AllDatasetsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset UIDs: %w", err)
	}

	datasets, err := getMany[domain.Dataset](ctx, s.client, uids, DatasetKey)
	if err != nil {
		return nil, err
	}
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].UID < datasets[j].UID })
	return datasets, nil
}

// UpdateDataset applies fn under WATCH on the dataset key, so concurrent
// harvests of the same UID never lose each other's service entries.
func (s *Store) UpdateDataset(ctx context.Context, uid string, fn harvest.DatasetUpdate) (*domain.Dataset, error) {
	return update(ctx, s, DatasetKey(uid), fn, func(pipe redis.Pipeliner, ds *domain.Dataset) {
		pipe.SAdd(ctx, AllDatasetsKey(), uid)
		for _, entry := range ds.Services {
			pipe.SAdd(ctx, ServiceDatasetsKey(entry.ServiceID), uid)
		}
	})
}

// DeleteDataset removes a dataset and its index memberships
func (s *Store) DeleteDataset(ctx context.Context, uid string) error {
	ds, err := s.GetDataset(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, DatasetKey(uid))
	pipe.SRem(ctx, AllDatasetsKey(), uid)
	for _, entry := range ds.Services {
		pipe.SRem(ctx, ServiceDatasetsKey(entry.ServiceID), uid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return nil
}

// CountDatasetsForService counts datasets carrying an entry of serviceID
func (s *Store) CountDatasetsForService(ctx context.Context, serviceID string) (int, error) {
	n, err := s.client.SCard(ctx, ServiceDatasetsKey(serviceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return int(n), nil
}
