package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/harvest"
)

// MemoryIndex is the in-memory catalog backend (CATALOG_STORE=memory).
// Documents are stored as deep copies so callers never share state with it.
type MemoryIndex struct {
	mu        sync.RWMutex
	services  map[string]*domain.Service  // ID -> Service
	datasets  map[string]*domain.Dataset  // UID -> Dataset
	metadata  map[string]*domain.Metadata // refType:refID -> Metadata
	harvests  map[string]*domain.Harvest  // ServiceID -> Harvest
	lastWrite time.Time
}

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		services: make(map[string]*domain.Service),
		datasets: make(map[string]*domain.Dataset),
		metadata: make(map[string]*domain.Metadata),
		harvests: make(map[string]*domain.Harvest),
	}
}

func metadataKey(refID, refType string) string {
	return refType + ":" + refID
}

// clone deep-copies a document through its JSON form, which is also its
// persisted form in Redis.
func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("index: document not serializable: %v", err))
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("index: document not deserializable: %v", err))
	}
	return &out
}

func (idx *MemoryIndex) touch() {
	idx.lastWrite = time.Now()
}

// LastWrite returns the time of the last mutation.
func (idx *MemoryIndex) LastWrite() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastWrite
}

func (idx *MemoryIndex) Ping(context.Context) error { return nil }

// ─────────────────────────────────────────────────────────────────
// Services
// ─────────────────────────────────────────────────────────────────

func (idx *MemoryIndex) SaveService(_ context.Context, svc *domain.Service) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.services[svc.ID] = clone(svc)
	idx.touch()
	return nil
}

// SaveServicesMany stores services without clearing the others
func (idx *MemoryIndex) SaveServicesMany(_ context.Context, services []*domain.Service) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, svc := range services {
		idx.services[svc.ID] = clone(svc)
	}
	idx.touch()
	return nil
}

func (idx *MemoryIndex) GetService(_ context.Context, id string) (*domain.Service, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	svc, ok := idx.services[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, domain.ErrNotFound)
	}
	return clone(svc), nil
}

// GetAllServices returns every service sorted by ID
func (idx *MemoryIndex) GetAllServices(context.Context) ([]*domain.Service, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	services := make([]*domain.Service, 0, len(idx.services))
	for _, svc := range idx.services {
		services = append(services, clone(svc))
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

func (idx *MemoryIndex) DeleteService(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.services, id)
	idx.touch()
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Datasets
// ─────────────────────────────────────────────────────────────────

func (idx *MemoryIndex) GetDataset(_ context.Context, uid string) (*domain.Dataset, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ds, ok := idx.datasets[uid]
	if !ok {
		return nil, fmt.Errorf("dataset %s: %w", uid, domain.ErrNotFound)
	}
	return clone(ds), nil
}

// ListDatasets returns every dataset sorted by UID
func (idx *MemoryIndex) ListDatasets(context.Context) ([]*domain.Dataset, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.Dataset, 0, len(idx.datasets))
	for _, ds := range idx.datasets {
		out = append(out, clone(ds))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

// UpdateDataset runs fn under the write lock, so updates of one document
// are serialized.
func (idx *MemoryIndex) UpdateDataset(_ context.Context, uid string, fn harvest.DatasetUpdate) (*domain.Dataset, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	updated, err := fn(clone(idx.datasets[uid]))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("dataset %s: update returned nothing", uid)
	}
	idx.datasets[uid] = clone(updated)
	idx.touch()
	return clone(updated), nil
}

func (idx *MemoryIndex) DeleteDataset(_ context.Context, uid string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.datasets, uid)
	idx.touch()
	return nil
}

// CountDatasetsForService counts datasets carrying an entry of serviceID
func (idx *MemoryIndex) CountDatasetsForService(_ context.Context, serviceID string) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := 0
	for _, ds := range idx.datasets {
		if _, ok := ds.Service(serviceID); ok {
			n++
		}
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────
// Metadata
// ─────────────────────────────────────────────────────────────────

func (idx *MemoryIndex) GetMetadata(_ context.Context, refID, refType string) (*domain.Metadata, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	md, ok := idx.metadata[metadataKey(refID, refType)]
	if !ok {
		return nil, fmt.Errorf("metadata %s/%s: %w", refType, refID, domain.ErrNotFound)
	}
	return clone(md), nil
}

func (idx *MemoryIndex) UpdateMetadata(_ context.Context, refID, refType string, fn harvest.MetadataUpdate) (*domain.Metadata, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := metadataKey(refID, refType)
	updated, err := fn(clone(idx.metadata[key]))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("metadata %s: update returned nothing", key)
	}
	idx.metadata[key] = clone(updated)
	idx.touch()
	return clone(updated), nil
}

// ─────────────────────────────────────────────────────────────────
// Harvest records
// ─────────────────────────────────────────────────────────────────

func (idx *MemoryIndex) GetHarvest(_ context.Context, serviceID string) (*domain.Harvest, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	h, ok := idx.harvests[serviceID]
	if !ok {
		return nil, fmt.Errorf("harvest %s: %w", serviceID, domain.ErrNotFound)
	}
	return clone(h), nil
}

func (idx *MemoryIndex) SaveHarvest(_ context.Context, h *domain.Harvest) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.harvests[h.ServiceID] = clone(h)
	idx.touch()
	return nil
}

func (idx *MemoryIndex) DeleteHarvest(_ context.Context, serviceID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.harvests, serviceID)
	idx.touch()
	return nil
}
