package domain

import "time"

// Dataset is the catalog record of one remote dataset.
//
// A Dataset is uniquely identified by its UID. For DAP services the UID is the
// dataset URL, so several services may contribute entries to the same record.
type Dataset struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// UID is the canonical unique identifier.
	// Example: https://data.example.org/thredds/dodsC/sst.nc
	UID string `json:"uid"`

	// ─────────────────────────────
	// Per-service observations
	// ─────────────────────────────

	// Services holds at most one entry per ServiceID.
	// Use UpsertService, never append directly.
	Services []ServiceEntry `json:"services"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// Active is set on creation. Deactivation is an operator decision.
	Active bool `json:"active"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// ServiceEntry is what one harvest of one service learned about a dataset.
type ServiceEntry struct {
	ServiceID    string `json:"service_id"`
	ServiceType  string `json:"service_type"`
	DataProvider string `json:"data_provider"`

	Name        *string `json:"name"`
	Description *string `json:"description"`

	// MetadataValue holds the serialized structural metadata (NcML).
	MetadataType  string `json:"metadata_type"`
	MetadataValue string `json:"metadata_value"`

	TimeMin *time.Time `json:"time_min"`
	TimeMax *time.Time `json:"time_max"`

	// Messages are the diagnostics of the run that produced this entry.
	// They are replaced, not accumulated, by the next run.
	Messages []string `json:"messages"`

	Keywords  []string  `json:"keywords"`
	Variables []string  `json:"variables"`
	AssetType string    `json:"asset_type"`
	Geometry  *Geometry `json:"geojson"`

	UpdatedAt time.Time `json:"updated"`
}

// NewDataset returns an empty, active dataset record.
func NewDataset(uid string, now time.Time) *Dataset {
	return &Dataset{
		UID:       uid,
		Services:  []ServiceEntry{},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpsertService replaces every entry carrying entry.ServiceID with entry.
// Entries of other services keep their relative order.
func (d *Dataset) UpsertService(entry ServiceEntry, now time.Time) {
	kept := d.Services[:0]
	for _, existing := range d.Services {
		if existing.ServiceID != entry.ServiceID {
			kept = append(kept, existing)
		}
	}
	d.Services = append(kept, entry)
	d.UpdatedAt = now
}

// Service returns the entry contributed by serviceID, if any.
func (d *Dataset) Service(serviceID string) (ServiceEntry, bool) {
	for _, entry := range d.Services {
		if entry.ServiceID == serviceID {
			return entry, true
		}
	}
	return ServiceEntry{}, false
}

// HasServiceType reports whether any entry came from a service of that type.
func (d *Dataset) HasServiceType(serviceType string) bool {
	for _, entry := range d.Services {
		if entry.ServiceType == serviceType {
			return true
		}
	}
	return false
}

// MergeServiceEntry applies one harvest result to the current record.
// A nil current record is created lazily as an empty active dataset.
func MergeServiceEntry(current *Dataset, uid string, entry ServiceEntry, now time.Time) *Dataset {
	if current == nil {
		current = NewDataset(uid, now)
	}
	current.UpsertService(entry, now)
	return current
}
