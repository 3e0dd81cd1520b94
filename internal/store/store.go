// Package store declares the catalog persistence contract shared by the
// Redis and in-memory backends.
package store

import (
	"context"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/harvest"
)

// Store persists services, datasets, metadata and harvest records.
// Lookups of missing documents return domain.ErrNotFound.
type Store interface {
	harvest.Store

	SaveService(ctx context.Context, svc *domain.Service) error
	SaveServicesMany(ctx context.Context, services []*domain.Service) error
	GetAllServices(ctx context.Context) ([]*domain.Service, error)
	DeleteService(ctx context.Context, id string) error

	GetDataset(ctx context.Context, uid string) (*domain.Dataset, error)
	ListDatasets(ctx context.Context) ([]*domain.Dataset, error)
	DeleteDataset(ctx context.Context, uid string) error
	CountDatasetsForService(ctx context.Context, serviceID string) (int, error)

	GetMetadata(ctx context.Context, refID, refType string) (*domain.Metadata, error)

	DeleteHarvest(ctx context.Context, serviceID string) error

	Ping(ctx context.Context) error
}

// Queue carries harvest jobs from the scheduler to the workers.
type Queue interface {
	Enqueue(ctx context.Context, job domain.HarvestJob) error
	// Dequeue waits up to wait for a job; (nil, nil) means none arrived.
	Dequeue(ctx context.Context, wait time.Duration) (*domain.HarvestJob, error)
	Len(ctx context.Context) (int64, error)
}
