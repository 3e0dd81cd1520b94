package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/cdm/cdmtest"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    domain.ScoreDoc
		wantErr bool
	}{
		{
			name: "weighted",
			results: []Result{
				{Name: "a", Score: 1, MaxScore: 2, Weight: 1},
				{Name: "b", Score: 2, MaxScore: 2, Weight: 3, Children: []Result{
					{Name: "b.1", Score: 0, MaxScore: 10, Weight: 100},
				}},
			},
			want: domain.ScoreDoc{Score: 3.5, MaxScore: 4, Pct: 0.875},
		},
		{name: "empty", wantErr: true},
		{name: "zero max", results: []Result{{Name: "a", Score: 0, MaxScore: 0, Weight: 1}}, wantErr: true},
		{name: "zero weight", results: []Result{{Name: "a", Score: 1, MaxScore: 1, Weight: 0}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.results)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Aggregate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Aggregate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	in := []Result{{Name: "root", Score: 1, MaxScore: 2, Weight: 3, Children: []Result{
		{Name: "leaf", Score: 1, MaxScore: 1, Weight: 1},
	}}}

	want := []domain.ResultRecord{{Name: "root", Score: 1, MaxScore: 2, Weight: 3, Children: []domain.ResultRecord{
		{Name: "leaf", Score: 1, MaxScore: 1, Weight: 1, Children: []domain.ResultRecord{}},
	}}}
	if diff := cmp.Diff(want, Flatten(in)); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func beliefDataset() *cdmtest.Dataset {
	return &cdmtest.Dataset{
		DatasetURL: "https://example.org/dap/ocean",
		Globals: cdmtest.Attrs(map[string]any{
			"title":          "Ocean model",
			"publisher_name": "Coastal Lab",
		}),
		Vars: []*cdm.Variable{
			cdmtest.Var("time", []int{3}, map[string]any{"standard_name": "time", "units": "days since 2000-01-01"}),
			cdmtest.Var("temp", []int{3}, map[string]any{"standard_name": "sea_water_temperature", "units": "degC"}),
			cdmtest.Var("flag", []int{3}, map[string]any{"standard_name": "status_flag"}),
			cdmtest.Var("salt", []int{3}, map[string]any{"standard_name": "sea_water_salinity", "units": "1e-3"}),
		},
	}
}

func TestMetamapKeepsNamesAndUnitsAligned(t *testing.T) {
	schema, err := LoadSchema("")
	if err != nil {
		t.Fatalf("LoadSchema() error = %v", err)
	}

	got, err := Metamap(context.Background(), AttributeBeliefs{}, schema, beliefDataset())
	if err == nil {
		t.Error("expected unresolved beliefs to be reported")
	}

	wantNames := []string{"time (time)", "temp (sea_water_temperature)", "salt (sea_water_salinity)"}
	wantUnits := []string{"days since 2000-01-01", "degC", "1e-3"}
	if diff := cmp.Diff(wantNames, got[BeliefVariableNames]); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantUnits, got[BeliefVariableUnits]); diff != "" {
		t.Errorf("units mismatch (-want +got):\n%s", diff)
	}
	if got["Service Title*"] != "Ocean model" {
		t.Errorf("title belief = %v", got["Service Title*"])
	}
	// publisher_name is the fallback of the contact name.
	if got["Service Contact Name*"] != "Coastal Lab" {
		t.Errorf("contact belief = %v", got["Service Contact Name*"])
	}
	if _, ok := got["License"]; ok {
		t.Error("unresolved belief should be omitted")
	}
}

func TestLoadSchemaFromFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("beliefs:\n  - key: Title\n    global: [title]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSchema(good)
	if err != nil {
		t.Fatalf("LoadSchema() error = %v", err)
	}
	if diff := cmp.Diff(Schema{Beliefs: []Belief{{Key: "Title", Global: []string{"title"}}}}, s); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("beliefs:\n  - key: Title\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSchema(bad); err == nil {
		t.Error("expected error for a belief without source")
	}

	if _, err := LoadSchema(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

type fakeEngine struct {
	groups map[string][]Result
	err    error
}

func (f fakeEngine) Run(context.Context, cdm.Dataset, string) (map[string][]Result, error) {
	return f.groups, f.err
}

func TestScorer(t *testing.T) {
	schema, _ := LoadSchema("")
	results := []Result{
		{Name: "a", Score: 1, MaxScore: 2, Weight: 1},
		{Name: "b", Score: 2, MaxScore: 2, Weight: 3},
	}

	t.Run("success", func(t *testing.T) {
		s := NewScorer(fakeEngine{groups: map[string][]Result{"ioos": results}}, nil, schema, "ioos", logger.Nop())

		entry, err := s.Score(context.Background(), beliefDataset(), "svc-1")
		if err != nil {
			t.Fatalf("Score() error = %v", err)
		}
		if entry.ServiceID != "svc-1" || entry.Checker != "ioos" {
			t.Errorf("entry key = %s/%s", entry.ServiceID, entry.Checker)
		}
		if entry.Score.Pct != 0.875 || len(entry.Results) != 2 {
			t.Errorf("unexpected entry: %+v", entry)
		}
		if entry.Metamap[BeliefVariableNames] == nil {
			t.Error("metamap missing variable names")
		}
	})

	failures := []struct {
		name   string
		engine Engine
	}{
		{name: "disabled"},
		{name: "engine error", engine: fakeEngine{err: errors.New("unreachable")}},
		{name: "missing group", engine: fakeEngine{groups: map[string][]Result{"cf": results}}},
		{name: "empty group", engine: fakeEngine{groups: map[string][]Result{"ioos": {}}}},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(tt.engine, nil, schema, "ioos", logger.Nop())
			if _, err := s.Score(context.Background(), beliefDataset(), "svc-1"); err == nil {
				t.Error("Score() error = nil")
			}
		})
	}
}

func TestHTTPEngine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Checker != "ioos" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string][]Result{
			"ioos": {{Name: req.URL, Score: 1, MaxScore: 1, Weight: 2}},
		})
	}))
	defer srv.Close()

	e := NewHTTPEngine(srv.URL, time.Second)
	groups, err := e.Run(context.Background(), beliefDataset(), "ioos")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := map[string][]Result{"ioos": {{Name: "https://example.org/dap/ocean", Score: 1, MaxScore: 1, Weight: 2}}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Run(context.Background(), beliefDataset(), "cf"); err == nil {
		t.Error("expected an error on a 400 response")
	}
}
