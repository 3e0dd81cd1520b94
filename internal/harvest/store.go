// Package harvest runs the per-service harvest pipeline and merges its
// results into the catalog.
package harvest

import (
	"context"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

// DatasetUpdate receives the current record (nil when absent) and returns
// the record to persist.
type DatasetUpdate func(current *domain.Dataset) (*domain.Dataset, error)

// MetadataUpdate is the Metadata counterpart of DatasetUpdate.
type MetadataUpdate func(current *domain.Metadata) (*domain.Metadata, error)

// Store is the persistence the pipeline needs. Updates are read-modify-write
// on a single document and must be atomic with respect to that document.
type Store interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)

	UpdateDataset(ctx context.Context, uid string, fn DatasetUpdate) (*domain.Dataset, error)
	UpdateMetadata(ctx context.Context, refID, refType string, fn MetadataUpdate) (*domain.Metadata, error)

	// GetHarvest returns domain.ErrNotFound for a service never harvested.
	GetHarvest(ctx context.Context, serviceID string) (*domain.Harvest, error)
	SaveHarvest(ctx context.Context, h *domain.Harvest) error
}
