package cf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/cftime"
)

var ErrMultidimensionalTime = errors.New("multidimensional time variables are not supported")

// Range is a dataset's temporal extent. Both ends are nil when unknown.
type Range struct {
	Min *time.Time
	Max *time.Time
}

// TimeRange finds the first time variable and decodes its extent. When there
// is none, or it cannot be decoded, time_coverage_start/end are used instead.
// The error is informational only: a Range recovered from the globals may
// come with the time variable's decode error.
func TimeRange(ctx context.Context, ds cdm.Dataset) (Range, error) {
	v := TimeVariable(ds.Variables())
	if v == nil {
		return coverageRange(ds.GlobalAttributes())
	}

	r, err := variableRange(ctx, ds, v)
	if err == nil {
		return r, nil
	}
	varErr := fmt.Errorf("failed to decode time variable %s: %w", v.Name, err)

	r, err = coverageRange(ds.GlobalAttributes())
	return r, errors.Join(varErr, err)
}

// TimeVariable returns the first variable with units that looks like time:
// units containing "since", axis T or standard_name time.
func TimeVariable(vars []*cdm.Variable) *cdm.Variable {
	for _, v := range vars {
		units, ok := v.Attr("units")
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(units.String()), "since") ||
			v.StringAttr("axis") == "T" ||
			v.StringAttr("standard_name") == "time" {
			return v
		}
	}
	return nil
}

func variableRange(ctx context.Context, ds cdm.Dataset, v *cdm.Variable) (Range, error) {
	if v.Rank() > 1 {
		return Range{}, ErrMultidimensionalTime
	}

	values, err := ds.Values(ctx, v.Name)
	if err != nil {
		return Range{}, err
	}
	if len(values) == 0 {
		return Range{}, errors.New("time variable is empty")
	}

	// Coordinate time is monotonic: first and last bound the extent.
	first, last := values[0], values[len(values)-1]
	if v.Rank() == 0 {
		last = first
	}
	lo, hi := min(first, last), max(first, last)

	dates, err := cftime.Decode([]float64{lo, hi}, v.StringAttr("units"), v.StringAttr("calendar"))
	if err != nil {
		return Range{}, err
	}
	return Range{Min: &dates[0], Max: &dates[1]}, nil
}

func coverageRange(globals cdm.Attributes) (Range, error) {
	start, okStart := globals.Lookup("time_coverage_start")
	end, okEnd := globals.Lookup("time_coverage_end")
	if !okStart || !okEnd {
		return Range{}, nil
	}

	tmin, err := cftime.ParseISO(start.String())
	if err != nil {
		return Range{}, err
	}
	tmax, err := cftime.ParseISO(end.String())
	if err != nil {
		return Range{}, err
	}
	return Range{Min: &tmin, Max: &tmax}, nil
}
