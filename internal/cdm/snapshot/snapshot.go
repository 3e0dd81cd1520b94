// Package snapshot opens datasets from YAML snapshots: a captured copy of a
// dataset's variables, attributes and coordinate values. It lets the
// harvester run against fixtures and mirrored catalogs without a DAP client.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

// File is the on-disk snapshot layout.
type File struct {
	URL        string         `yaml:"url"`
	DataType   string         `yaml:"data_type"`
	Attributes map[string]any `yaml:"attributes"`
	Variables  []FileVariable `yaml:"variables"`
	// Polygons maps a variable name to its bounding ring(s) of [lon, lat].
	Polygons map[string][][][2]float64 `yaml:"polygons"`
}

type FileVariable struct {
	Name       string         `yaml:"name"`
	Dimensions []string       `yaml:"dimensions"`
	Shape      []int          `yaml:"shape"`
	Type       string         `yaml:"type"`
	Attributes map[string]any `yaml:"attributes"`
	Values     []float64      `yaml:"values"`
}

// Opener resolves URLs to snapshot files.
//
// A URL is looked up as a file:// URL, then as a plain path, then as
// <Dir>/<sha256(url)>.yaml when Dir is set.
type Opener struct {
	Dir string
}

func NewOpener(dir string) *Opener {
	return &Opener{Dir: dir}
}

// PathFor returns the snapshot path Dir maps url to.
func (o *Opener) PathFor(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(o.Dir, hex.EncodeToString(sum[:])+".yaml")
}

func (o *Opener) locate(url string) (string, error) {
	if path, ok := strings.CutPrefix(url, "file://"); ok {
		return path, nil
	}
	if _, err := os.Stat(url); err == nil {
		return url, nil
	}
	if o.Dir != "" {
		return o.PathFor(url), nil
	}
	return "", fmt.Errorf("no snapshot for %s", url)
}

func (o *Opener) Open(ctx context.Context, url string) (cdm.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := o.locate(url)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %s: %w", url, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %s: %w", url, err)
	}
	ds, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %s: %w", url, err)
	}
	if ds.url == "" {
		ds.url = url
	}
	return ds, nil
}

// Decode parses a YAML snapshot.
func Decode(data []byte) (*Dataset, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return newDataset(f)
}

// Dataset is an opened snapshot.
type Dataset struct {
	url      string
	dataType string
	globals  cdm.Attributes
	vars     []*cdm.Variable
	byName   map[string]*cdm.Variable
	values   map[string][]float64
	dims     map[string][]string
	types    map[string]string
	polygons map[string]orb.Polygon
}

var _ cdm.Dataset = (*Dataset)(nil)

func newDataset(f File) (*Dataset, error) {
	ds := &Dataset{
		url:      f.URL,
		dataType: f.DataType,
		globals:  attributes(f.Attributes),
		byName:   make(map[string]*cdm.Variable, len(f.Variables)),
		values:   make(map[string][]float64),
		dims:     make(map[string][]string),
		types:    make(map[string]string),
		polygons: make(map[string]orb.Polygon, len(f.Polygons)),
	}

	for _, fv := range f.Variables {
		if fv.Name == "" {
			return nil, errors.New("variable without a name")
		}
		if _, dup := ds.byName[fv.Name]; dup {
			return nil, fmt.Errorf("duplicate variable %q", fv.Name)
		}

		shape := fv.Shape
		if shape == nil && len(fv.Values) > 1 {
			shape = []int{len(fv.Values)}
		}
		v := &cdm.Variable{Name: fv.Name, Shape: shape, Attributes: attributes(fv.Attributes)}
		if len(fv.Values) > 0 && len(fv.Values) != v.Size() {
			return nil, fmt.Errorf("variable %q: %d values for shape %v", fv.Name, len(fv.Values), shape)
		}

		ds.vars = append(ds.vars, v)
		ds.byName[fv.Name] = v
		if fv.Values != nil {
			ds.values[fv.Name] = fv.Values
		}
		ds.dims[fv.Name] = fv.Dimensions
		ds.types[fv.Name] = fv.Type
	}

	for name, rings := range f.Polygons {
		poly := make(orb.Polygon, 0, len(rings))
		for _, ring := range rings {
			r := make(orb.Ring, len(ring))
			for i, pt := range ring {
				r[i] = orb.Point{pt[0], pt[1]}
			}
			poly = append(poly, r)
		}
		ds.polygons[name] = poly
	}
	return ds, nil
}

// attributes normalizes YAML scalars and numeric lists into cdm values.
func attributes(in map[string]any) cdm.Attributes {
	out := make(cdm.Attributes, len(in))
	for k, v := range in {
		out[k] = cdm.NewValue(normalize(v))
	}
	return out
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case []any:
		nums := make([]float64, 0, len(x))
		for _, item := range x {
			switch n := item.(type) {
			case int:
				nums = append(nums, float64(n))
			case float64:
				nums = append(nums, n)
			default:
				return fmt.Sprint(x...)
			}
		}
		return nums
	default:
		return v
	}
}

func (d *Dataset) URL() string                      { return d.url }
func (d *Dataset) Variables() []*cdm.Variable       { return d.vars }
func (d *Dataset) GlobalAttributes() cdm.Attributes { return d.globals }
func (d *Dataset) DataType() string                 { return d.dataType }
func (d *Dataset) Close() error                     { return nil }

func (d *Dataset) Values(_ context.Context, variable string) ([]float64, error) {
	if _, ok := d.byName[variable]; !ok {
		return nil, fmt.Errorf("variable %q not found", variable)
	}
	vals, ok := d.values[variable]
	if !ok {
		return nil, fmt.Errorf("variable %q has no values in snapshot", variable)
	}
	return vals, nil
}

func (d *Dataset) BoundingPolygon(_ context.Context, variable string, _ cdm.AxisHints) (orb.Polygon, error) {
	if p, ok := d.polygons[variable]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("polygon for %s: %w", variable, cdm.ErrUnsupported)
}

// BoundingBox spans the finite values of the variable's coordinates.
func (d *Dataset) BoundingBox(ctx context.Context, variable string, hints cdm.AxisHints) ([4]float64, error) {
	coords, err := d.CoordinateNames(ctx, variable, hints)
	if err != nil {
		return [4]float64{}, err
	}

	xs, err := d.Values(ctx, coords.XName)
	if err != nil {
		return [4]float64{}, err
	}
	ys, err := d.Values(ctx, coords.YName)
	if err != nil {
		return [4]float64{}, err
	}

	xmin, xmax, okx := extent(xs)
	ymin, ymax, oky := extent(ys)
	if !okx || !oky {
		return [4]float64{}, fmt.Errorf("bbox for %s: no finite coordinate values", variable)
	}
	return [4]float64{xmin, ymin, xmax, ymax}, nil
}

func extent(vals []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
		ok = true
	}
	return lo, hi, ok
}

// CoordinateNames prefers the hints, then the variable's "coordinates"
// attribute, then any dataset variable that looks like a horizontal axis.
func (d *Dataset) CoordinateNames(_ context.Context, variable string, hints cdm.AxisHints) (cdm.CoordinateNames, error) {
	v, ok := d.byName[variable]
	if !ok {
		return cdm.CoordinateNames{}, fmt.Errorf("variable %q not found", variable)
	}

	names := cdm.CoordinateNames{XName: hints.XName, YName: hints.YName}
	var candidates []*cdm.Variable
	for _, name := range strings.Fields(v.StringAttr("coordinates")) {
		if c, ok := d.byName[name]; ok {
			candidates = append(candidates, c)
		}
	}
	candidates = append(candidates, d.vars...)

	for _, c := range candidates {
		switch {
		case names.XName == "" && isAxis(c, "X", "longitude", "degrees_east"):
			names.XName = c.Name
		case names.YName == "" && isAxis(c, "Y", "latitude", "degrees_north"):
			names.YName = c.Name
		}
	}

	if !names.Complete() {
		return names, fmt.Errorf("coordinates for %s: %w", variable, cdm.ErrNoCoordinates)
	}
	return names, nil
}

func isAxis(v *cdm.Variable, axis, standardName, units string) bool {
	return strings.EqualFold(v.StringAttr("axis"), axis) ||
		v.StringAttr("standard_name") == standardName ||
		strings.HasPrefix(v.StringAttr("units"), units)
}
