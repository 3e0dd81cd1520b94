// Package cdmtest provides an in-memory cdm.Dataset for tests.
package cdmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

// Var builds a variable from plain attribute values.
func Var(name string, shape []int, attrs map[string]any) *cdm.Variable {
	return &cdm.Variable{Name: name, Shape: shape, Attributes: Attrs(attrs)}
}

// Attrs converts plain values into cdm.Attributes.
func Attrs(attrs map[string]any) cdm.Attributes {
	out := make(cdm.Attributes, len(attrs))
	for k, v := range attrs {
		out[k] = cdm.NewValue(v)
	}
	return out
}

// Dataset is a scripted cdm.Dataset. Missing map entries behave as failures.
type Dataset struct {
	DatasetURL string
	Vars       []*cdm.Variable
	Globals    cdm.Attributes
	Type       string

	Data     map[string][]float64
	Polygons map[string]orb.Polygon
	Boxes    map[string][4]float64
	Coords   map[string]cdm.CoordinateNames
	NcML     string
	NcMLErr  error

	mu     sync.Mutex
	calls  []string
	closed bool
}

var _ cdm.Dataset = (*Dataset)(nil)

func (d *Dataset) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

// Calls lists adapter calls in order, ex: "polygon:sst", "bbox:sst".
func (d *Dataset) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *Dataset) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dataset) URL() string                      { return d.DatasetURL }
func (d *Dataset) Variables() []*cdm.Variable       { return d.Vars }
func (d *Dataset) GlobalAttributes() cdm.Attributes { return d.Globals }
func (d *Dataset) DataType() string                 { return d.Type }

func (d *Dataset) BoundingPolygon(_ context.Context, variable string, _ cdm.AxisHints) (orb.Polygon, error) {
	d.record("polygon:" + variable)
	if p, ok := d.Polygons[variable]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("polygon for %s: %w", variable, cdm.ErrUnsupported)
}

func (d *Dataset) BoundingBox(_ context.Context, variable string, _ cdm.AxisHints) ([4]float64, error) {
	d.record("bbox:" + variable)
	if b, ok := d.Boxes[variable]; ok {
		return b, nil
	}
	return [4]float64{}, fmt.Errorf("bbox for %s: %w", variable, cdm.ErrUnsupported)
}

func (d *Dataset) CoordinateNames(_ context.Context, variable string, _ cdm.AxisHints) (cdm.CoordinateNames, error) {
	d.record("coords:" + variable)
	if c, ok := d.Coords[variable]; ok {
		return c, nil
	}
	return cdm.CoordinateNames{}, fmt.Errorf("coordinates for %s: %w", variable, cdm.ErrNoCoordinates)
}

func (d *Dataset) Values(_ context.Context, variable string) ([]float64, error) {
	d.record("values:" + variable)
	if v, ok := d.Data[variable]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no data for variable %s", variable)
}

func (d *Dataset) StructuralMetadata(context.Context) (string, error) {
	return d.NcML, d.NcMLErr
}

func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Opener serves Datasets by URL; unknown URLs fail to open.
type Opener struct {
	Datasets map[string]*Dataset
}

func (o *Opener) Open(_ context.Context, url string) (cdm.Dataset, error) {
	if ds, ok := o.Datasets[url]; ok {
		return ds, nil
	}
	return nil, fmt.Errorf("could not open dataset %s: connection refused", url)
}
