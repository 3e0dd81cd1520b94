package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func searchDataset(uid, name string, keywords, variables []string) *Dataset {
	ds := NewDataset(uid, time.Unix(0, 0).UTC())
	ds.Services = []ServiceEntry{{
		ServiceID: "svc",
		Name:      &name,
		Keywords:  keywords,
		Variables: variables,
	}}
	return ds
}

func TestScoreDataset(t *testing.T) {
	ds := searchDataset("a", "Sea Surface Temperature",
		[]string{"ocean", "temperature"},
		[]string{"sea_water_temperature", "salinity"})

	tests := []struct {
		name           string
		query          string
		expectPositive bool
	}{
		{name: "exact name word", query: "surface", expectPositive: true},
		{name: "prefix", query: "temp", expectPositive: true},
		{name: "keyword", query: "ocean", expectPositive: true},
		{name: "variable substring", query: "water", expectPositive: true},
		{name: "all words must match", query: "ocean wind", expectPositive: false},
		{name: "no match", query: "chlorophyll", expectPositive: false},
		{name: "empty query", query: "  ", expectPositive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreDataset(tt.query, ds)
			if tt.expectPositive && score <= 0 {
				t.Errorf("Expected positive score, got %f", score)
			}
			if !tt.expectPositive && score > 0 {
				t.Errorf("Expected zero score, got %f", score)
			}
		})
	}
}

func TestScoreDatasetFieldWeights(t *testing.T) {
	byName := searchDataset("name", "Salinity", nil, nil)
	byKeyword := searchDataset("keyword", "Other", []string{"salinity"}, nil)
	byVariable := searchDataset("variable", "Other", nil, []string{"salinity"})

	n, k, v := ScoreDataset("salinity", byName), ScoreDataset("salinity", byKeyword), ScoreDataset("salinity", byVariable)
	if !(n > k && k > v && v > 0) {
		t.Errorf("expected name > keyword > variable > 0, got %f, %f, %f", n, k, v)
	}
}

func TestRankDatasets(t *testing.T) {
	inactive := searchDataset("inactive", "Salinity", nil, nil)
	inactive.Active = false

	datasets := []*Dataset{
		searchDataset("variable", "Other", nil, []string{"salinity"}),
		searchDataset("none", "Winds", nil, []string{"u", "v"}),
		inactive,
		searchDataset("name", "Salinity", nil, nil),
		searchDataset("variable-2", "Another", nil, []string{"salinity"}),
	}

	var got []string
	for _, c := range RankDatasets("salinity", datasets) {
		got = append(got, c.Dataset.UID)
	}

	want := []string{"name", "variable", "variable-2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RankDatasets() mismatch (-want +got):\n%s", diff)
	}
}
