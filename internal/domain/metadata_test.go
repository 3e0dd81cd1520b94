package domain

import (
	"testing"
	"time"
)

func TestMetadataUpsert(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	md := MergeMetadataEntry(nil, "ds-1", RefTypeDataset, MetadataEntry{
		ServiceID: "svc-1", Checker: "ioos", Score: ScoreDoc{Score: 1, MaxScore: 2, Pct: 0.5},
	}, now)

	if md.RefID != "ds-1" || md.RefType != RefTypeDataset {
		t.Fatalf("unexpected ref: %s/%s", md.RefID, md.RefType)
	}

	// Same key: updated in place.
	md.Upsert(MetadataEntry{ServiceID: "svc-1", Checker: "ioos", Score: ScoreDoc{Score: 2, MaxScore: 2, Pct: 1}}, now)
	// Other checker and other service: appended.
	md.Upsert(MetadataEntry{ServiceID: "svc-1", Checker: "cf"}, now)
	md.Upsert(MetadataEntry{ServiceID: "svc-2", Checker: "ioos"}, now.Add(time.Minute))

	if len(md.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(md.Entries))
	}
	if md.Entries[0].Score.Pct != 1 {
		t.Errorf("first entry pct = %v, want updated 1", md.Entries[0].Score.Pct)
	}
	if md.Entries[1].Checker != "cf" || md.Entries[2].ServiceID != "svc-2" {
		t.Errorf("unexpected entry order: %+v", md.Entries)
	}
	if !md.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Errorf("UpdatedAt = %v", md.UpdatedAt)
	}
}

func TestHarvestLifecycle(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h := NewHarvest("svc-1", now)

	h.Begin("run-1", now.Add(time.Second))
	h.Finish(StatusNotHarvested, "unreachable", now.Add(2*time.Second))
	h.Begin("run-2", now.Add(time.Hour))
	h.Finish(StatusHarvested, "", now.Add(time.Hour+time.Second))

	if h.Runs != 2 || h.RunID != "run-2" || h.Status != StatusHarvested || h.Message != "" {
		t.Errorf("unexpected harvest record: %+v", h)
	}
	if !h.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt changed to %v", h.CreatedAt)
	}
}
