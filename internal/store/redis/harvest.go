package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// GetHarvest retrieves the harvest record of a service
func (s *Store) GetHarvest(ctx context.Context, serviceID string) (*domain.Harvest, error) {
	return getJSON[domain.Harvest](ctx, s.client, HarvestKey(serviceID))
}

// SaveHarvest stores the harvest record of a service
func (s *Store) SaveHarvest(ctx context.Context, h *domain.Harvest) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal harvest: %w", err)
	}
	if err := s.client.Set(ctx, HarvestKey(h.ServiceID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save harvest: %w", err)
	}
	return nil
}

// DeleteHarvest removes the harvest record of a service
func (s *Store) DeleteHarvest(ctx context.Context, serviceID string) error {
	if err := s.client.Del(ctx, HarvestKey(serviceID)).Err(); err != nil {
		return fmt.Errorf("failed to delete harvest: %w", err)
	}
	return nil
}
