package domain

import "time"

const RefTypeDataset = "dataset"

// Metadata gathers compliance and belief-mapping results for one reference
// object (a Dataset here). One entry per (ServiceID, Checker).
type Metadata struct {
	RefID   string          `json:"ref_id"`
	RefType string          `json:"ref_type"`
	Entries []MetadataEntry `json:"metadata"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

type MetadataEntry struct {
	ServiceID string         `json:"service_id"`
	Checker   string         `json:"checker"`
	Score     ScoreDoc       `json:"cc_score"`
	Results   []ResultRecord `json:"cc_results"`
	Metamap   map[string]any `json:"metamap"`
}

// ScoreDoc is the weighted aggregate of a compliance run.
type ScoreDoc struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Pct      float64 `json:"pct"`
}

// ResultRecord is one flattened rule-check node, children included.
type ResultRecord struct {
	Name     string         `json:"name"`
	Score    float64        `json:"score"`
	MaxScore float64        `json:"maxscore"`
	Weight   int            `json:"weight"`
	Children []ResultRecord `json:"children"`
}

func NewMetadata(refID, refType string, now time.Time) *Metadata {
	return &Metadata{
		RefID:     refID,
		RefType:   refType,
		Entries:   []MetadataEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Upsert updates the entry with the same (ServiceID, Checker) in place, or
// appends entry when none exists.
func (m *Metadata) Upsert(entry MetadataEntry, now time.Time) {
	defer func() { m.UpdatedAt = now }()

	for i := range m.Entries {
		if m.Entries[i].ServiceID == entry.ServiceID && m.Entries[i].Checker == entry.Checker {
			m.Entries[i] = entry
			return
		}
	}
	m.Entries = append(m.Entries, entry)
}

// MergeMetadataEntry is the metadata counterpart of MergeServiceEntry.
func MergeMetadataEntry(current *Metadata, refID, refType string, entry MetadataEntry, now time.Time) *Metadata {
	if current == nil {
		current = NewMetadata(refID, refType, now)
	}
	current.Upsert(entry, now)
	return current
}
