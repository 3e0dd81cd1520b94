package domain

import "time"

// Service types known to the catalog. Only DAP is harvested.
const (
	ServiceTypeDAP = "DAP"
	ServiceTypeWMS = "WMS"
	ServiceTypeWCS = "WCS"
	ServiceTypeSOS = "SOS"
)

// Service is a registered remote endpoint the catalog harvests.
//
// It is NOT tied to the registry file or Redis; both are mapped into it.
type Service struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier, stable across registry reloads.
	ID string `json:"id"`

	// URL is the service endpoint. For DAP it is also the dataset UID.
	URL string `json:"url"`

	// ─────────────────────────────
	// Functional description
	// (overwritten by registry reload)
	// ─────────────────────────────

	Name         string `json:"name"`
	ServiceType  string `json:"service_type"`
	DataProvider string `json:"data_provider"`

	// Active services are picked up by the harvest scheduler.
	Active bool `json:"active"`

	// ─────────────────────────────
	// Provenance & observation
	// ─────────────────────────────

	// Sources indicates where this service was discovered from.
	// Example: registry
	Sources []string `json:"sources"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	// ─────────────────────────────
	// Liveness & cleanup
	// ─────────────────────────────

	// Disabled marks a service removed from the registry.
	// It may be garbage-collected later.
	Disabled bool `json:"disabled"`
}

// Harvestable reports whether the scheduler should enqueue the service.
func (s *Service) Harvestable() bool {
	return s != nil && s.Active && !s.Disabled
}

// HasSource reports whether the service was discovered from source.
func (s *Service) HasSource(source string) bool {
	for _, src := range s.Sources {
		if src == source {
			return true
		}
	}
	return false
}
