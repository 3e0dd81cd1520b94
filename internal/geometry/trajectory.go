package geometry

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/cf"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

func (r *Resolver) resolveTrajectory(ctx context.Context, ds cdm.Dataset, c cf.Classification, res *Resolution) {
	variable, coords, ok := r.trajectoryCoordinates(ctx, ds, c, res)
	if !ok {
		res.note(MsgTrajectoryNoCoords)
		return
	}

	line, err := r.trajectoryLine(ctx, ds, coords)
	if err != nil {
		res.Attempts = append(res.Attempts, Attempt{Variable: variable, Strategy: StrategyTrajectory, Err: err})
		r.logger.Warn("trajectory geometry failed",
			logger.String("url", ds.URL()),
			logger.String("variable", variable),
			logger.Error(err))
		res.note(MsgTrajectoryNoGeometry)
		return
	}

	res.Geometry = domain.NewGeometry(line)
	res.Variable = variable
	res.Strategy = StrategyTrajectory
	res.note(fmt.Sprintf("Variable %s was used to calculate trajectory geometry, and is a naive sampling.", variable))
}

// trajectoryCoordinates returns the first candidate, in order, whose x and y
// coordinate names both resolve.
func (r *Resolver) trajectoryCoordinates(ctx context.Context, ds cdm.Dataset, c cf.Classification, res *Resolution) (string, cdm.CoordinateNames, bool) {
	for _, variable := range c.Candidates() {
		names, err := ds.CoordinateNames(ctx, variable, c.Axis)
		if err == nil && names.Complete() {
			return variable, names, true
		}
		if err == nil {
			err = cdm.ErrNoCoordinates
		}
		res.Attempts = append(res.Attempts, Attempt{Variable: variable, Strategy: StrategyTrajectory, Err: err})
	}
	return "", cdm.CoordinateNames{}, false
}

// trajectoryLine samples the track with a stride taken from the declared
// size of the x coordinate. Table endpoints are fetched as GeoJSON and never
// read as raw arrays.
func (r *Resolver) trajectoryLine(ctx context.Context, ds cdm.Dataset, coords cdm.CoordinateNames) (orb.LineString, error) {
	size, declared := variableSize(ds, coords.XName)

	var points []orb.Point
	if IsTableEndpoint(ds.URL()) {
		if r.table == nil {
			return nil, fmt.Errorf("no table fetcher configured for %s", ds.URL())
		}
		var err error
		points, err = r.table.FetchPositions(ctx, ds.URL(), coords.XName, coords.YName)
		if err != nil {
			return nil, err
		}
		if !declared {
			size = len(points)
		}
	} else {
		xs, err := ds.Values(ctx, coords.XName)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", coords.XName, err)
		}
		ys, err := ds.Values(ctx, coords.YName)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", coords.YName, err)
		}
		if len(xs) != len(ys) {
			return nil, fmt.Errorf("coordinate length mismatch: %s has %d values, %s has %d",
				coords.XName, len(xs), coords.YName, len(ys))
		}
		if !declared {
			size = len(xs)
		}
		points = Zip(xs, ys)
	}

	valid := ValidPoints(Sample(points, Stride(size)))
	if len(valid) < 2 {
		return nil, fmt.Errorf("only %d valid positions after sampling", len(valid))
	}
	return orb.LineString(valid), nil
}

// variableSize is the element count of the named variable's shape.
func variableSize(ds cdm.Dataset, name string) (int, bool) {
	for _, v := range ds.Variables() {
		if v.Name == name {
			return v.Size(), true
		}
	}
	return 0, false
}
