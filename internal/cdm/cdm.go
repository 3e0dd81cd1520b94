// Package cdm describes the dataset access capability the harvester consumes:
// opening a remote array dataset, listing its variables and attributes, and
// computing raw geometric primitives. Implementations live in subpackages.
package cdm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

var (
	// ErrUnsupported is returned when an adapter cannot compute a primitive.
	ErrUnsupported = errors.New("unsupported by dataset adapter")
	// ErrNoCoordinates is returned when x/y coordinates cannot be resolved.
	ErrNoCoordinates = errors.New("no coordinate variables found")
)

// Opener opens datasets by URL. A failing Open is fatal for a harvest run.
type Opener interface {
	Open(ctx context.Context, url string) (Dataset, error)
}

// Dataset is an opened remote dataset.
type Dataset interface {
	URL() string

	// Variables are returned in declaration order.
	Variables() []*Variable
	GlobalAttributes() Attributes

	// DataType is the adapter's own classification tag (ex: "rgrid").
	DataType() string

	BoundingPolygon(ctx context.Context, variable string, hints AxisHints) (orb.Polygon, error)
	// BoundingBox returns lon-min, lat-min, lon-max, lat-max.
	BoundingBox(ctx context.Context, variable string, hints AxisHints) ([4]float64, error)
	CoordinateNames(ctx context.Context, variable string, hints AxisHints) (CoordinateNames, error)

	// Values reads a variable flattened to float64. Scalars yield one value.
	Values(ctx context.Context, variable string) ([]float64, error)

	// StructuralMetadata serializes the dataset structure (NcML).
	StructuralMetadata(ctx context.Context) (string, error)

	Close() error
}

// AxisHints carries the x/y axis variable names found by attribute probing.
type AxisHints struct {
	XName string
	YName string
}

type CoordinateNames struct {
	XName string
	YName string
}

// Complete reports whether both coordinates were resolved.
func (c CoordinateNames) Complete() bool {
	return c.XName != "" && c.YName != ""
}

// Variable is one dataset variable as reported by the adapter.
type Variable struct {
	Name       string
	Attributes Attributes
	Shape      []int
}

// Rank is the number of dimensions. Scalars have rank 0.
func (v *Variable) Rank() int {
	return len(v.Shape)
}

// Size is the number of elements (1 for scalars).
func (v *Variable) Size() int {
	n := 1
	for _, d := range v.Shape {
		n *= d
	}
	return n
}

// Attr is a shortcut for v.Attributes.Lookup(name).
func (v *Variable) Attr(name string) (Value, bool) {
	return v.Attributes.Lookup(name)
}

// StringAttr returns the attribute as a string, "" when absent.
func (v *Variable) StringAttr(name string) string {
	if val, ok := v.Attributes.Lookup(name); ok {
		return val.String()
	}
	return ""
}

// Attributes maps attribute names to values.
type Attributes map[string]Value

// Lookup returns the attribute and whether it is present.
func (a Attributes) Lookup(name string) (Value, bool) {
	v, ok := a[name]
	return v, ok
}

// Value is an attribute value: a string, a number or a list of numbers.
type Value struct {
	raw any
}

func NewValue(raw any) Value { return Value{raw: raw} }

func (v Value) Raw() any { return v.raw }

func (v Value) String() string {
	switch x := v.raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, " ")
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Float converts the value to a float64; strings are parsed.
func (v Value) Float() (float64, error) {
	switch x := v.raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case []float64:
		if len(x) == 1 {
			return x[0], nil
		}
		return 0, fmt.Errorf("expected a scalar, got %d values", len(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %q as a number: %w", x, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("attribute of type %T is not numeric", v.raw)
	}
}
