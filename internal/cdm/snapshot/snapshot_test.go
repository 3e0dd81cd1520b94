package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

const gridURL = "https://data.example.org/thredds/dodsC/sst.nc"

func openGrid(t *testing.T) cdm.Dataset {
	t.Helper()
	ds, err := NewOpener("").Open(context.Background(), "file://testdata/grid.yaml")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return ds
}

func TestOpenDecodesVariables(t *testing.T) {
	ds := openGrid(t)

	if ds.URL() != gridURL {
		t.Errorf("URL() = %q, want %q", ds.URL(), gridURL)
	}
	var names []string
	for _, v := range ds.Variables() {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"time", "lat", "lon", "sst"}, names); diff != "" {
		t.Errorf("declaration order mismatch (-want +got):\n%s", diff)
	}

	sst := ds.Variables()[3]
	if sst.Rank() != 3 {
		t.Errorf("sst rank = %d, want 3", sst.Rank())
	}
	if got, _ := sst.Attr("valid_range"); got.String() != "270 310" {
		t.Errorf("valid_range = %q", got.String())
	}
	if ds.GlobalAttributes()["title"].String() != "Sea surface temperature" {
		t.Errorf("title = %q", ds.GlobalAttributes()["title"].String())
	}
}

func TestBoundingBoxSkipsNaN(t *testing.T) {
	ds := openGrid(t)

	bbox, err := ds.BoundingBox(context.Background(), "sst", cdm.AxisHints{})
	if err != nil {
		t.Fatalf("BoundingBox() error = %v", err)
	}
	if diff := cmp.Diff([4]float64{-80, 10, -70, 30}, bbox); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}
}

func TestPolygonUnsupportedWithoutSnapshotRing(t *testing.T) {
	ds := openGrid(t)
	_, err := ds.BoundingPolygon(context.Background(), "sst", cdm.AxisHints{})
	if !errors.Is(err, cdm.ErrUnsupported) {
		t.Errorf("BoundingPolygon() error = %v, want ErrUnsupported", err)
	}
}

func TestCoordinateNames(t *testing.T) {
	data := []byte(`
variables:
  - name: x
    attributes: {axis: X}
  - name: y
    attributes: {units: degrees_north}
  - name: temp
    attributes: {coordinates: "time y x"}
  - name: flag
`)
	ds, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ds.CoordinateNames(context.Background(), "temp", cdm.AxisHints{})
	if err != nil {
		t.Fatalf("CoordinateNames() error = %v", err)
	}
	if got.XName != "x" || got.YName != "y" {
		t.Errorf("CoordinateNames() = %+v", got)
	}

	got, _ = ds.CoordinateNames(context.Background(), "temp", cdm.AxisHints{XName: "lon_hint"})
	if got.XName != "lon_hint" {
		t.Errorf("hint not preferred: %+v", got)
	}

	bare, _ := Decode([]byte("variables:\n  - name: a\n"))
	if _, err := bare.CoordinateNames(context.Background(), "a", cdm.AxisHints{}); !errors.Is(err, cdm.ErrNoCoordinates) {
		t.Errorf("CoordinateNames() error = %v, want ErrNoCoordinates", err)
	}
}

func TestOpenFromSnapshotDir(t *testing.T) {
	dir := t.TempDir()
	o := NewOpener(dir)

	url := "https://remote.example.org/dodsC/other.nc"
	if err := os.WriteFile(o.PathFor(url), []byte("variables:\n  - name: a\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := o.Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if ds.URL() != url {
		t.Errorf("URL() = %q, want the opened url", ds.URL())
	}
	if filepath.Dir(o.PathFor(url)) != dir {
		t.Errorf("PathFor() outside dir: %s", o.PathFor(url))
	}

	if _, err := o.Open(context.Background(), "https://missing.example.org/x.nc"); err == nil {
		t.Error("Open() of a missing snapshot should fail")
	}
	if _, err := NewOpener("").Open(context.Background(), "https://nowhere.example.org/x.nc"); err == nil {
		t.Error("Open() without a snapshot dir should fail")
	}
}

func TestDecodeRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unnamed variable", "variables:\n  - shape: [1]\n"},
		{"duplicate variable", "variables:\n  - name: a\n  - name: a\n"},
		{"values do not match shape", "variables:\n  - name: a\n    shape: [2, 2]\n    values: [1, 2, 3]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.yaml)); err == nil {
				t.Error("Decode() error = nil")
			}
		})
	}
}

func TestStructuralMetadata(t *testing.T) {
	ds := openGrid(t)
	ncml, err := ds.StructuralMetadata(context.Background())
	if err != nil {
		t.Fatalf("StructuralMetadata() error = %v", err)
	}

	for _, want := range []string{
		`<netcdf xmlns="http://www.unidata.ucar.edu/namespaces/netcdf/ncml-2.2" location="` + gridURL + `">`,
		`<variable name="sst" shape="time lat lon" type="float">`,
		`<attribute name="valid_range" type="double" value="270 310"></attribute>`,
		`<attribute name="title" value="Sea surface temperature"></attribute>`,
	} {
		if !strings.Contains(ncml, want) {
			t.Errorf("ncml missing %s\n%s", want, ncml)
		}
	}
}
