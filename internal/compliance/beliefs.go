package compliance

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

const (
	BeliefVariableNames = "Variable Names*"
	BeliefVariableUnits = "Variable Units*"
)

//go:embed beliefs.yaml
var defaultSchema []byte

// Schema declares the beliefs extracted from a dataset.
type Schema struct {
	Beliefs []Belief `yaml:"beliefs"`
}

// Belief resolves Key from the first present Global attribute, or from the
// Variable attribute of every variable carrying it.
type Belief struct {
	Key      string   `yaml:"key"`
	Global   []string `yaml:"global,omitempty"`
	Variable string   `yaml:"variable,omitempty"`
}

// LoadSchema reads a belief schema from path; empty path means the
// embedded default.
func LoadSchema(path string) (Schema, error) {
	data := defaultSchema
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Schema{}, fmt.Errorf("failed to read belief schema: %w", err)
		}
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("failed to parse belief schema: %w", err)
	}
	for i, b := range s.Beliefs {
		if b.Key == "" {
			return Schema{}, fmt.Errorf("belief %d has no key", i)
		}
		if len(b.Global) == 0 && b.Variable == "" {
			return Schema{}, fmt.Errorf("belief %q has no source", b.Key)
		}
	}
	return s, nil
}

// BeliefEngine extracts belief values from a dataset.
type BeliefEngine interface {
	Extract(ctx context.Context, ds cdm.Dataset, schema Schema) (map[string]any, error)
}

// AttributeBeliefs resolves beliefs from dataset attributes. Unresolved
// beliefs are omitted and reported in the joined error.
type AttributeBeliefs struct{}

func (AttributeBeliefs) Extract(_ context.Context, ds cdm.Dataset, schema Schema) (map[string]any, error) {
	out := make(map[string]any, len(schema.Beliefs))
	var errs []error

	for _, b := range schema.Beliefs {
		if v, ok := resolveGlobal(ds.GlobalAttributes(), b.Global); ok {
			out[b.Key] = v
			continue
		}
		if b.Variable != "" {
			values := make([]string, 0)
			for _, v := range ds.Variables() {
				if val, ok := v.Attr(b.Variable); ok {
					values = append(values, val.String())
				}
			}
			if len(values) > 0 {
				out[b.Key] = values
				continue
			}
		}
		errs = append(errs, fmt.Errorf("belief %q: no matching attribute", b.Key))
	}

	return out, errors.Join(errs...)
}

func resolveGlobal(globals cdm.Attributes, names []string) (string, bool) {
	for _, name := range names {
		if v, ok := globals.Lookup(name); ok && v.String() != "" {
			return v.String(), true
		}
	}
	return "", false
}

// Metamap runs the belief engine and replaces the variable name and unit
// beliefs with lists built in variable order so that names and units line
// up. Only variables with both standard_name and units are listed. The
// returned map is usable even when err is non-nil.
func Metamap(ctx context.Context, engine BeliefEngine, schema Schema, ds cdm.Dataset) (map[string]any, error) {
	metamap, err := engine.Extract(ctx, ds, schema)
	if metamap == nil {
		metamap = make(map[string]any)
	}

	names := make([]string, 0)
	units := make([]string, 0)
	for _, v := range ds.Variables() {
		stdName := v.StringAttr("standard_name")
		unit := v.StringAttr("units")
		if v.Name == "" || stdName == "" || unit == "" {
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", v.Name, stdName))
		units = append(units, unit)
	}
	metamap[BeliefVariableNames] = names
	metamap[BeliefVariableUnits] = units

	return metamap, err
}
