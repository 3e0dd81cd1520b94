package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestBoxOrPoint(t *testing.T) {
	tests := []struct {
		name     string
		bbox     [4]float64
		wantType string
		want     orb.Geometry
	}{
		{
			name:     "degenerate extent is a point",
			bbox:     [4]float64{-10, -10, -10, -10},
			wantType: "Point",
			want:     orb.Point{-10, -10},
		},
		{
			name:     "proper extent is a clockwise box",
			bbox:     [4]float64{-10, -10, 10, 10},
			wantType: "Polygon",
			want: orb.Polygon{orb.Ring{
				{-10, -10}, {-10, 10}, {10, 10}, {10, -10}, {-10, -10},
			}},
		},
		{
			name: "longitude out of range",
			bbox: [4]float64{200, 0, 210, 10},
		},
		{
			name: "latitude out of range",
			bbox: [4]float64{0, -95, 10, 10},
		},
		{
			name: "nan is rejected",
			bbox: [4]float64{math.NaN(), 0, 10, 10},
		},
		{
			name:     "antimeridian edge is still valid",
			bbox:     [4]float64{-180, -90, 180, 90},
			wantType: "Polygon",
			want: orb.Polygon{orb.Ring{
				{-180, -90}, {-180, 90}, {180, 90}, {180, -90}, {-180, -90},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoxOrPoint(tt.bbox[0], tt.bbox[1], tt.bbox[2], tt.bbox[3])

			if tt.want == nil {
				if got != nil {
					t.Fatalf("BoxOrPoint() = %v, want nil", got.Geometry)
				}
				return
			}
			if got == nil {
				t.Fatal("BoxOrPoint() = nil, want geometry")
			}
			if got.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", got.Type(), tt.wantType)
			}
			if !orb.Equal(got.Geometry, tt.want) {
				t.Errorf("BoxOrPoint() = %v, want %v", got.Geometry, tt.want)
			}
		})
	}
}

func TestBoxOrPointIsClockwise(t *testing.T) {
	g := BoxOrPoint(-10, -10, 10, 10)
	poly, ok := g.Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("expected polygon, got %T", g.Geometry)
	}
	if o := poly[0].Orientation(); o != orb.CW {
		t.Errorf("ring orientation = %v, want clockwise", o)
	}
}

func TestGeometryJSON(t *testing.T) {
	entry := ServiceEntry{
		ServiceID: "svc",
		Geometry:  NewGeometry(orb.LineString{{1, 2}, {3, 4}}),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw struct {
		GeoJSON struct {
			Type        string       `json:"type"`
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geojson"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if raw.GeoJSON.Type != "LineString" || len(raw.GeoJSON.Coordinates) != 2 {
		t.Errorf("unexpected wire shape: %s", data)
	}

	var decoded ServiceEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !decoded.Geometry.Equal(entry.Geometry) {
		t.Errorf("decoded geometry = %v, want %v", decoded.Geometry, entry.Geometry)
	}
}

func TestGeometryNullJSON(t *testing.T) {
	data, err := json.Marshal(ServiceEntry{ServiceID: "svc"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded ServiceEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Geometry != nil {
		t.Errorf("Geometry = %v, want nil", decoded.Geometry)
	}
}
