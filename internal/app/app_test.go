package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coastwatch-labs/catalog/internal/cdm/snapshot"
	"github.com/coastwatch-labs/catalog/internal/config"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

const sstURL = "https://data.example.org/thredds/dodsC/sst.nc"

const registryYAML = `providers:
  - name: NOAA
    services:
      - id: sst
        name: SST analysis
        url: https://data.example.org/thredds/dodsC/sst.nc
        type: DAP
      - id: paused
        name: Paused grid
        url: https://data.example.org/thredds/dodsC/sst.nc
        type: DAP
        active: false
`

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	serviceFile := filepath.Join(dir, "services.yaml")
	if err := os.WriteFile(serviceFile, []byte(registryYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	snapshots := filepath.Join(dir, "snapshots")
	if err := os.Mkdir(snapshots, 0o755); err != nil {
		t.Fatal(err)
	}
	grid, err := os.ReadFile(filepath.Join("..", "cdm", "snapshot", "testdata", "grid.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(snapshot.NewOpener(snapshots).PathFor(sstURL), grid, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		StoreBackend:      config.StoreMemory,
		ServiceFile:       serviceFile,
		SnapshotDir:       snapshots,
		TableFetchTimeout: time.Second,
		Checker:           "ioos",
	}
	a, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestHarvestFromRegistry(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	if err := a.LoadRegistry(ctx); err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	h, err := a.Harvest(ctx, "sst", false)
	if err != nil {
		t.Fatalf("Harvest() error: %v", err)
	}
	if h.Status != domain.StatusHarvested {
		t.Fatalf("status = %q, want %q (message %q)", h.Status, domain.StatusHarvested, h.Message)
	}

	ds, err := a.store.GetDataset(ctx, sstURL)
	if err != nil {
		t.Fatalf("GetDataset() error: %v", err)
	}
	if len(ds.Services) != 1 || ds.Services[0].ServiceID != "sst" {
		t.Fatalf("unexpected service entries: %+v", ds.Services)
	}
	if diff := cmp.Diff([]string{"ocean", "temperature"}, ds.Services[0].Keywords); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}

	// A second run replaces the entry instead of appending one.
	if _, err := a.Harvest(ctx, "sst", false); err != nil {
		t.Fatalf("second Harvest() error: %v", err)
	}
	ds, _ = a.store.GetDataset(ctx, sstURL)
	if len(ds.Services) != 1 {
		t.Errorf("len(services) after rerun = %d, want 1", len(ds.Services))
	}
}

func TestHarvestInactiveService(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	if err := a.LoadRegistry(ctx); err != nil {
		t.Fatal(err)
	}

	h, err := a.Harvest(ctx, "paused", false)
	if err != nil {
		t.Fatalf("Harvest() error: %v", err)
	}
	if h.Status == domain.StatusHarvested {
		t.Errorf("inactive service was harvested")
	}

	h, err = a.Harvest(ctx, "paused", true)
	if err != nil {
		t.Fatalf("Harvest(ignoreActive) error: %v", err)
	}
	if h.Status != domain.StatusHarvested {
		t.Errorf("status with ignoreActive = %q, want %q", h.Status, domain.StatusHarvested)
	}
}
