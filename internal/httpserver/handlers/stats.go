package handlers

import (
	"net/http"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
)

// ActiveCount splits a service count by the Active flag.
type ActiveCount struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type statsResponse struct {
	// Services maps provider -> service type -> counts.
	Services map[string]map[string]ActiveCount `json:"services"`
	// Datasets maps provider -> number of datasets it contributed to.
	Datasets map[string]int `json:"datasets"`
}

// Stats counts services and datasets by data provider. Disabled services
// are left out.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := d.Store.GetAllServices(r.Context())
		if err != nil {
			writeError(w, d, err)
			return
		}
		datasets, err := d.Store.ListDatasets(r.Context())
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, computeStats(services, datasets))
	}
}

func computeStats(services []*domain.Service, datasets []*domain.Dataset) statsResponse {
	out := statsResponse{
		Services: make(map[string]map[string]ActiveCount),
		Datasets: make(map[string]int),
	}

	for _, svc := range services {
		if svc.Disabled {
			continue
		}
		byType, ok := out.Services[svc.DataProvider]
		if !ok {
			byType = make(map[string]ActiveCount)
			out.Services[svc.DataProvider] = byType
		}
		c := byType[svc.ServiceType]
		if svc.Active {
			c.Active++
		} else {
			c.Inactive++
		}
		byType[svc.ServiceType] = c
	}

	for _, ds := range datasets {
		seen := make(map[string]bool, len(ds.Services))
		for _, entry := range ds.Services {
			if !seen[entry.DataProvider] {
				seen[entry.DataProvider] = true
				out.Datasets[entry.DataProvider]++
			}
		}
	}
	return out
}
