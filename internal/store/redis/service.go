package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// SaveService stores a service in Redis
func (s *Store) SaveService(ctx context.Context, service *domain.Service) error {
	data, err := json.Marshal(service)
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, ServiceKey(service.ID), data, 0)
	pipe.SAdd(ctx, AllServicesKey(), service.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

// GetService retrieves a service from Redis by ID
func (s *Store) GetService(ctx context.Context, id string) (*domain.Service, error) {
	return getJSON[domain.Service](ctx, s.client, ServiceKey(id))
}

// GetAllServices retrieves all services sorted by ID
func (s *Store) GetAllServices(ctx context.Context) ([]*domain.Service, error) {
	ids, err := s.client.SMembers(ctx, AllServicesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get service IDs: %w", err)
	}

	services, err := getMany[domain.Service](ctx, s.client, ids, ServiceKey)
	if err != nil {
		return nil, err
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

// DeleteService removes a service and its dataset index. Datasets keep
// the entries the service contributed.
func (s *Store) DeleteService(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, ServiceKey(id), ServiceDatasetsKey(id))
	pipe.SRem(ctx, AllServicesKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

// SaveServicesMany stores multiple services in Redis (bulk operation)
func (s *Store) SaveServicesMany(ctx context.Context, services []*domain.Service) error {
	pipe := s.client.Pipeline()

	for _, service := range services {
		data, err := json.Marshal(service)
		if err != nil {
			return fmt.Errorf("failed to marshal service %s: %w", service.ID, err)
		}

		pipe.Set(ctx, ServiceKey(service.ID), data, 0)
		pipe.SAdd(ctx, AllServicesKey(), service.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save services: %w", err)
	}
	return nil
}
