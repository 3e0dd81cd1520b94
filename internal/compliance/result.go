// Package compliance aggregates rule engine results into weighted scores and
// builds the belief mapping document stored alongside them.
package compliance

import (
	"errors"
	"fmt"

	"github.com/coastwatch-labs/catalog/internal/domain"
)

var ErrNoResults = errors.New("no compliance results")

// Result is one rule check node. Only top-level nodes count toward the
// aggregate; children are kept for display.
type Result struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	MaxScore float64  `json:"max_score"`
	Weight   int      `json:"weight"`
	Children []Result `json:"children,omitempty"`
}

// Flatten converts results into their stored form, recursively.
func Flatten(results []Result) []domain.ResultRecord {
	out := make([]domain.ResultRecord, 0, len(results))
	for _, r := range results {
		out = append(out, domain.ResultRecord{
			Name:     r.Name,
			Score:    r.Score,
			MaxScore: r.MaxScore,
			Weight:   r.Weight,
			Children: Flatten(r.Children),
		})
	}
	return out
}

// Aggregate computes Σ(score/max)·weight over the top-level nodes, the
// maximum Σweight and their ratio.
func Aggregate(results []Result) (domain.ScoreDoc, error) {
	if len(results) == 0 {
		return domain.ScoreDoc{}, ErrNoResults
	}

	var score, maxScore float64
	for _, r := range results {
		if r.MaxScore == 0 {
			return domain.ScoreDoc{}, fmt.Errorf("result %q has a zero maximum score", r.Name)
		}
		score += r.Score / r.MaxScore * float64(r.Weight)
		maxScore += float64(r.Weight)
	}
	if maxScore == 0 {
		return domain.ScoreDoc{}, errors.New("total weight is zero")
	}

	return domain.ScoreDoc{
		Score:    score,
		MaxScore: maxScore,
		Pct:      score / maxScore,
	}, nil
}
