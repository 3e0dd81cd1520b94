// Package geometry resolves the single representative geometry of a dataset.
package geometry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/cf"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

// Polygons from the adapter are simplified with this tolerance (degrees).
const SimplifyTolerance = 0.5

const (
	StrategyPolygon    = "polygon"
	StrategyBBox       = "bbox"
	StrategyTrajectory = "trajectory"
	StrategyGlobal     = "global_attributes"
)

// Diagnostic messages attached to the service entry.
const (
	MsgUnstructuredMesh     = "The underlying data access library does not support UGRID and cannot parse geometry."
	MsgTrajectoryNoCoords   = "Trajectory discovered but could not detect coordinate variables using the underlying data access library."
	MsgTrajectoryNoGeometry = "Trajectory discovered but could not create a geometry."
	MsgGlobalBBox           = "Bounding Box calculated using global attributes"
	MsgNoBBox               = "The underlying data access library could not determine a bounding BOX for this dataset."
	MsgNoPolygon            = "The underlying data access library could not determine a bounding POLYGON for this dataset."
)

var errNoGeometry = errors.New("strategy produced no geometry")

// globalBBoxAttributes must all be present for the global fallback.
var globalBBoxAttributes = []string{
	"geospatial_lat_min",
	"geospatial_lat_max",
	"geospatial_lat_units",
	"geospatial_lon_min",
	"geospatial_lon_max",
	"geospatial_lon_units",
}

// Attempt records one failed strategy evaluation.
type Attempt struct {
	Variable string
	Strategy string
	Err      error
}

// Resolution is the outcome of Resolve. Geometry is nil when nothing worked.
type Resolution struct {
	Geometry *domain.Geometry
	Variable string
	Strategy string
	Messages []string
	Attempts []Attempt
}

func (r *Resolution) note(msg string) {
	r.Messages = append(r.Messages, msg)
}

type strategy struct {
	name string
	run  func(ctx context.Context, ds cdm.Dataset, variable string, hints cdm.AxisHints) (*domain.Geometry, error)
}

type Resolver struct {
	table      TableFetcher
	logger     logger.Logger
	strategies []strategy
}

// NewResolver builds a resolver. table may be nil when no tabledap
// endpoints are harvested.
func NewResolver(table TableFetcher, log logger.Logger) *Resolver {
	return &Resolver{
		table:  table,
		logger: log,
		strategies: []strategy{
			{name: StrategyPolygon, run: boundingPolygon},
			{name: StrategyBBox, run: boundingBox},
		},
	}
}

// Resolve computes the geometry of ds. It never fails: problems end up in
// the returned messages.
func (r *Resolver) Resolve(ctx context.Context, ds cdm.Dataset, feature cf.FeatureType, c cf.Classification) Resolution {
	var res Resolution

	switch feature {
	case cf.UnstructuredMesh:
		res.note(MsgUnstructuredMesh)
	case cf.Trajectory:
		r.resolveTrajectory(ctx, ds, c, &res)
	default:
		r.resolveGrid(ctx, ds, c, &res)
	}

	return res
}

func (r *Resolver) resolveGrid(ctx context.Context, ds cdm.Dataset, c cf.Classification, res *Resolution) {
	candidates := c.Candidates()

	for _, variable := range candidates {
		for _, s := range r.strategies {
			g, err := s.run(ctx, ds, variable, c.Axis)
			if err == nil && g == nil {
				err = errNoGeometry
			}
			if err != nil {
				res.Attempts = append(res.Attempts, Attempt{Variable: variable, Strategy: s.name, Err: err})
				r.logger.Debug("geometry strategy failed",
					logger.String("url", ds.URL()),
					logger.String("variable", variable),
					logger.String("strategy", s.name),
					logger.Error(err))
				continue
			}

			res.Geometry = g
			res.Variable = variable
			res.Strategy = s.name
			res.note(fmt.Sprintf("Variable %s was used to calculate geometry.", variable))
			return
		}
	}

	g, err := GlobalBoundingBox(ds.GlobalAttributes())
	if err == nil {
		res.Geometry = g
		res.Strategy = StrategyGlobal
		res.note(MsgGlobalBBox)
		return
	}
	res.Attempts = append(res.Attempts, Attempt{Strategy: StrategyGlobal, Err: err})

	res.note(MsgNoBBox)
	res.note(MsgNoPolygon)
	res.note("Failed to calculate geometry using all of the following variables: " + strings.Join(candidates, ", "))
}

func boundingPolygon(ctx context.Context, ds cdm.Dataset, variable string, hints cdm.AxisHints) (*domain.Geometry, error) {
	poly, err := ds.BoundingPolygon(ctx, variable, hints)
	if err != nil {
		return nil, err
	}
	if len(poly) == 0 {
		return nil, errNoGeometry
	}

	simplified, ok := simplify.DouglasPeucker(SimplifyTolerance).Simplify(poly.Clone()).(orb.Polygon)
	if !ok || len(simplified) == 0 || len(simplified[0]) == 0 {
		return nil, errNoGeometry
	}
	return domain.NewGeometry(simplified), nil
}

func boundingBox(ctx context.Context, ds cdm.Dataset, variable string, hints cdm.AxisHints) (*domain.Geometry, error) {
	box, err := ds.BoundingBox(ctx, variable, hints)
	if err != nil {
		return nil, err
	}
	g := domain.BoxOrPoint(box[0], box[1], box[2], box[3])
	if g == nil {
		return nil, fmt.Errorf("bounding box %v is out of range", box)
	}
	return g, nil
}

// GlobalBoundingBox builds a box or point from the geospatial_* globals.
func GlobalBoundingBox(globals cdm.Attributes) (*domain.Geometry, error) {
	for _, name := range globalBBoxAttributes {
		if _, ok := globals.Lookup(name); !ok {
			return nil, fmt.Errorf("global attribute %s is missing", name)
		}
	}

	var bounds [4]float64
	for i, name := range []string{"geospatial_lon_min", "geospatial_lat_min", "geospatial_lon_max", "geospatial_lat_max"} {
		v, _ := globals.Lookup(name)
		f, err := v.Float()
		if err != nil {
			return nil, fmt.Errorf("global attribute %s: %w", name, err)
		}
		bounds[i] = f
	}

	g := domain.BoxOrPoint(bounds[0], bounds[1], bounds[2], bounds[3])
	if g == nil {
		return nil, fmt.Errorf("global bounds %v are out of range", bounds)
	}
	return g, nil
}
