package domain

import (
	"math"
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier terms are better)
	ScorePositionBonus = 10.0

	// Field weights: a hit in the name outranks a keyword, which outranks a variable
	WeightName     = 2.0
	WeightKeyword  = 1.5
	WeightVariable = 1.0
)

// DatasetCandidate is a dataset with its match score.
type DatasetCandidate struct {
	Dataset *Dataset
	Score   float64
}

// ScoreDataset scores a free-text query against the names, keywords and
// variables of every service entry of ds. Every query word must match
// somewhere, otherwise the score is 0.
func ScoreDataset(query string, ds *Dataset) float64 {
	if ds == nil {
		return 0.0
	}
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return 0.0
	}

	var total float64
	for _, word := range words {
		best := 0.0
		for _, entry := range ds.Services {
			if entry.Name != nil {
				best = max(best, WeightName*scoreTerms(word, strings.Fields(*entry.Name)))
			}
			best = max(best, WeightKeyword*scoreTerms(word, entry.Keywords))
			best = max(best, WeightVariable*scoreTerms(word, entry.Variables))
		}
		if best == 0.0 {
			return 0.0
		}
		total += best
	}
	return total
}

// scoreTerms returns the best score of word against terms.
func scoreTerms(word string, terms []string) float64 {
	best := 0.0
	for i, term := range terms {
		best = max(best, scoreFragment(word, term, i))
	}
	return best
}

// scoreFragment scores a single query word against a single term
func scoreFragment(queryFrag, term string, position int) float64 {
	queryFrag = normalizeFragment(queryFrag)
	term = normalizeFragment(term)

	if queryFrag == "" || term == "" {
		return 0.0
	}

	if queryFrag == term {
		return ScoreExactMatch + calculatePositionBonus(position)
	}

	if strings.HasPrefix(term, queryFrag) {
		return ScorePrefixMatch + calculatePositionBonus(position)
	}

	if index := strings.Index(term, queryFrag); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(term)))
		return ScoreSubstringMatch + substringBonus
	}

	similarity := calculateSimilarity(queryFrag, term)
	if similarity > 0.8 && len(queryFrag) >= 4 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

func normalizeFragment(s string) string {
	return strings.Trim(strings.ToLower(s), " \t,.;:()[]\"'")
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is the ratio of query characters found in term.
func calculateSimilarity(query, term string) float64 {
	if query == "" || term == "" {
		return 0.0
	}

	matches := 0
	for _, c := range query {
		if strings.ContainsRune(term, c) {
			matches++
		}
	}
	return float64(matches) / float64(len(query))
}

// RankDatasets returns the active datasets matching query, best first.
// Ties keep the input order.
func RankDatasets(query string, datasets []*Dataset) []*DatasetCandidate {
	candidates := make([]*DatasetCandidate, 0, len(datasets))
	for _, ds := range datasets {
		if ds == nil || !ds.Active {
			continue
		}
		score := ScoreDataset(query, ds)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, &DatasetCandidate{Dataset: ds, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
