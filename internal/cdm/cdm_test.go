package cdm

import "testing"

func TestValueFloat(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    float64
		wantErr bool
	}{
		{name: "float", raw: 12.5, want: 12.5},
		{name: "int", raw: 3, want: 3},
		{name: "numeric string", raw: " -45.25 ", want: -45.25},
		{name: "single element list", raw: []float64{7}, want: 7},
		{name: "word", raw: "degrees_north", wantErr: true},
		{name: "list", raw: []float64{1, 2}, wantErr: true},
		{name: "nil", raw: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewValue(tt.raw).Float()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Float() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Float() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariableRankAndSize(t *testing.T) {
	scalar := &Variable{Name: "t"}
	grid := &Variable{Name: "sst", Shape: []int{2, 3, 4}}

	if scalar.Rank() != 0 || scalar.Size() != 1 {
		t.Errorf("scalar rank/size = %d/%d, want 0/1", scalar.Rank(), scalar.Size())
	}
	if grid.Rank() != 3 || grid.Size() != 24 {
		t.Errorf("grid rank/size = %d/%d, want 3/24", grid.Rank(), grid.Size())
	}
}

func TestAttributesLookup(t *testing.T) {
	v := &Variable{Attributes: Attributes{"units": NewValue("K")}}

	if got, ok := v.Attr("units"); !ok || got.String() != "K" {
		t.Errorf("Attr(units) = %q, %v", got.String(), ok)
	}
	if _, ok := v.Attr("axis"); ok {
		t.Error("Attr(axis) reported present")
	}
	if v.StringAttr("axis") != "" {
		t.Error("StringAttr of a missing attribute should be empty")
	}
}
