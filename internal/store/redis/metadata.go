package redis

import (
	"context"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/harvest"
)

// GetMetadata retrieves the metadata document of a reference object
func (s *Store) GetMetadata(ctx context.Context, refID, refType string) (*domain.Metadata, error) {
	return getJSON[domain.Metadata](ctx, s.client, MetadataKey(refID, refType))
}

// UpdateMetadata applies fn under WATCH on the metadata key
func (s *Store) UpdateMetadata(ctx context.Context, refID, refType string, fn harvest.MetadataUpdate) (*domain.Metadata, error) {
	return update(ctx, s, MetadataKey(refID, refType), fn, nil)
}
