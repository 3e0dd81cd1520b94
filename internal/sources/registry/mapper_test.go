package registry

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

func TestMapperMapServices(t *testing.T) {
	inactive := false
	config := Config{Providers: []Provider{
		{Name: "NOAA", Services: []ServiceProps{
			{Name: "SST", URL: "https://data.example.org/dodsC/sst.nc", Type: "dap"},
			{ID: "legacy-wms", URL: "https://data.example.org/wms", Type: "WMS", Active: &inactive},
			{Name: "no url", Type: "DAP"},
			{Name: "relative", URL: "dodsC/x.nc", Type: "DAP"},
			{Name: "no type", URL: "https://data.example.org/x"},
		}},
	}}

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMapper()
	m.now = func() time.Time { return now }

	services, err := m.MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	want := []*domain.Service{
		{
			ID:           generateServiceID("DAP", "https://data.example.org/dodsC/sst.nc"),
			URL:          "https://data.example.org/dodsC/sst.nc",
			Name:         "SST",
			ServiceType:  domain.ServiceTypeDAP,
			DataProvider: "NOAA",
			Active:       true,
			Sources:      []string{SourceRegistry},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           "legacy-wms",
			URL:          "https://data.example.org/wms",
			ServiceType:  domain.ServiceTypeWMS,
			DataProvider: "NOAA",
			Sources:      []string{SourceRegistry},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	if diff := cmp.Diff(want, services); diff != "" {
		t.Errorf("MapServices() mismatch (-want +got):\n%s", diff)
	}
}

func TestMapperStableIDs(t *testing.T) {
	a := generateServiceID("DAP", "https://x.org/a.nc")
	if a != generateServiceID("DAP", "https://x.org/a.nc") {
		t.Error("generateServiceID() is not stable")
	}
	if a == generateServiceID("WMS", "https://x.org/a.nc") {
		t.Error("service type does not contribute to the id")
	}
	if len(a) != 16 {
		t.Errorf("len(id) = %d, want 16", len(a))
	}
}

func TestMapperErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"empty config", Config{}},
		{"only invalid entries", Config{Providers: []Provider{{Services: []ServiceProps{{URL: "nope"}}}}}},
		{"duplicate ids", Config{Providers: []Provider{{Services: []ServiceProps{
			{ID: "x", URL: "https://a.org/1", Type: "DAP"},
			{ID: "x", URL: "https://a.org/2", Type: "DAP"},
		}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMapper().MapServices(tt.config); err == nil {
				t.Error("MapServices() error = nil")
			}
		})
	}
}
