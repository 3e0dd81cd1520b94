package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/store"
)

var _ store.Store = (*MemoryIndex)(nil)
var _ store.Queue = (*MemoryQueue)(nil)

func TestNewMemoryIndex(t *testing.T) {
	index := NewMemoryIndex()
	services, err := index.GetAllServices(context.Background())
	if err != nil || len(services) != 0 {
		t.Errorf("NewMemoryIndex() should start empty, got %v, %v", services, err)
	}
}

func TestServicesSortedAndIsolated(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	err := index.SaveServicesMany(ctx, []*domain.Service{
		{ID: "b", URL: "https://b.example.org/dap"},
		{ID: "a", URL: "https://a.example.org/dap"},
	})
	if err != nil {
		t.Fatalf("SaveServicesMany() error = %v", err)
	}

	all, _ := index.GetAllServices(ctx)
	if diff := cmp.Diff([]string{"a", "b"}, []string{all[0].ID, all[1].ID}); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Mutating a returned copy does not leak into the index.
	all[0].Name = "mutated"
	again, _ := index.GetService(ctx, "a")
	if again.Name != "" {
		t.Errorf("GetService() returned shared state: %q", again.Name)
	}

	if err := index.DeleteService(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := index.GetService(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetService() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUpdateDatasetSerializesWriters(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(serviceID string) {
				defer wg.Done()
				_, err := index.UpdateDataset(ctx, "uid", func(cur *domain.Dataset) (*domain.Dataset, error) {
					return domain.MergeServiceEntry(cur, "uid", domain.ServiceEntry{ServiceID: serviceID}, now), nil
				})
				if err != nil {
					t.Error(err)
				}
			}(id)
		}
	}
	wg.Wait()

	ds, err := index.GetDataset(ctx, "uid")
	if err != nil {
		t.Fatalf("GetDataset() error = %v", err)
	}
	if len(ds.Services) != 4 {
		t.Errorf("len(Services) = %d, want 4 (one per service id)", len(ds.Services))
	}

	n, _ := index.CountDatasetsForService(ctx, "s2")
	if n != 1 {
		t.Errorf("CountDatasetsForService(s2) = %d, want 1", n)
	}
}

func TestUpdateDatasetErrorLeavesRecord(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	_, err := index.UpdateDataset(ctx, "uid", func(*domain.Dataset) (*domain.Dataset, error) {
		return nil, errors.New("nope")
	})
	if err == nil {
		t.Fatal("UpdateDataset() error = nil")
	}
	if _, err := index.GetDataset(ctx, "uid"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("dataset was written: %v", err)
	}
}

func TestMetadataAndHarvest(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	now := time.Now().UTC()

	_, err := index.UpdateMetadata(ctx, "uid", domain.RefTypeDataset, func(cur *domain.Metadata) (*domain.Metadata, error) {
		return domain.MergeMetadataEntry(cur, "uid", domain.RefTypeDataset, domain.MetadataEntry{ServiceID: "s1", Checker: "ioos"}, now), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	md, err := index.GetMetadata(ctx, "uid", domain.RefTypeDataset)
	if err != nil || len(md.Entries) != 1 {
		t.Fatalf("GetMetadata() = %+v, %v", md, err)
	}

	if err := index.SaveHarvest(ctx, domain.NewHarvest("s1", now)); err != nil {
		t.Fatal(err)
	}
	if _, err := index.GetHarvest(ctx, "s1"); err != nil {
		t.Errorf("GetHarvest() error = %v", err)
	}
	_ = index.DeleteHarvest(ctx, "s1")
	if _, err := index.GetHarvest(ctx, "s1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetHarvest() after delete error = %v", err)
	}
}

func TestMemoryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(1)

	if err := q.Enqueue(ctx, domain.HarvestJob{ID: "1", ServiceID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if err := q.Enqueue(ctx, domain.HarvestJob{ID: "2"}); err == nil {
		t.Error("Enqueue() on a full queue should fail")
	}

	job, err := q.Dequeue(ctx, time.Second)
	if err != nil || job == nil || job.ServiceID != "s1" {
		t.Fatalf("Dequeue() = %+v, %v", job, err)
	}

	job, err = q.Dequeue(ctx, 10*time.Millisecond)
	if job != nil || err != nil {
		t.Errorf("Dequeue() on empty queue = %+v, %v; want nil, nil", job, err)
	}
}
