package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/coastwatch-labs/catalog/internal/cdm"
	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

// ErrDisabled is returned by Score when no rule engine is configured.
var ErrDisabled = errors.New("compliance scoring disabled")

// Scorer produces the metadata entry of one (service, checker) pair.
type Scorer struct {
	engine  Engine
	beliefs BeliefEngine
	schema  Schema
	checker string
	logger  logger.Logger
}

// NewScorer builds a scorer. A nil engine disables scoring.
func NewScorer(engine Engine, beliefs BeliefEngine, schema Schema, checker string, log logger.Logger) *Scorer {
	if beliefs == nil {
		beliefs = AttributeBeliefs{}
	}
	return &Scorer{
		engine:  engine,
		beliefs: beliefs,
		schema:  schema,
		checker: checker,
		logger:  log,
	}
}

func (s *Scorer) Checker() string { return s.checker }

// Score runs the checker and the belief mapping. An error means no entry
// should be written; belief problems alone are only logged.
func (s *Scorer) Score(ctx context.Context, ds cdm.Dataset, serviceID string) (domain.MetadataEntry, error) {
	if s.engine == nil {
		return domain.MetadataEntry{}, ErrDisabled
	}

	groups, err := s.engine.Run(ctx, ds, s.checker)
	if err != nil {
		return domain.MetadataEntry{}, fmt.Errorf("failed to run %s checker: %w", s.checker, err)
	}
	results, ok := groups[s.checker]
	if !ok {
		return domain.MetadataEntry{}, fmt.Errorf("checker %s returned no %q group", s.checker, s.checker)
	}

	score, err := Aggregate(results)
	if err != nil {
		return domain.MetadataEntry{}, fmt.Errorf("failed to aggregate %s results: %w", s.checker, err)
	}

	metamap, err := Metamap(ctx, s.beliefs, s.schema, ds)
	if err != nil {
		s.logger.Debug("some beliefs could not be resolved",
			logger.String("url", ds.URL()),
			logger.Error(err))
	}

	return domain.MetadataEntry{
		ServiceID: serviceID,
		Checker:   s.checker,
		Score:     score,
		Results:   Flatten(results),
		Metamap:   metamap,
	}, nil
}
