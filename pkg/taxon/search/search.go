// Package search scores and ranks taxonomy entities against a query string.
package search

import (
	"sort"
	"strings"

	"github.com/cognicore/taxon/pkg/taxon/entity"
)

// Corpus names a searchable slice of the loaded snapshot.
type Corpus string

const (
	// CorpusSkills unions skills and skill groups.
	CorpusSkills Corpus = "skills"
	// CorpusSeenOccupations unions occupations and groups of the seen economy.
	CorpusSeenOccupations Corpus = "seen-occupations"
	// CorpusUnseenOccupations unions occupations and groups of the unseen economy.
	CorpusUnseenOccupations Corpus = "unseen-occupations"
)

// Valid reports whether c names a known corpus.
func (c Corpus) Valid() bool {
	switch c {
	case CorpusSkills, CorpusSeenOccupations, CorpusUnseenOccupations:
		return true
	}
	return false
}

// Candidate is one searchable item. Entity carries the full source entity
// through to the result.
type Candidate struct {
	ID          string
	Code        string
	Label       string
	Description string
	AltLabels   string
	Kind        entity.Kind
	Entity      entity.Entity
}

// Result is a candidate with its relevance score.
type Result struct {
	Candidate
	Score int
}

// Weights holds the additive relevance contributions. A candidate may
// satisfy several rules at once; contributions accumulate.
type Weights struct {
	ExactCode            int
	CodePrefix           int
	ExactLabel           int
	LabelPrefix          int
	LabelSubstring       int
	DescriptionSubstring int
	AltLabelsSubstring   int
}

// DefaultWeights returns the standard relevance weights.
func DefaultWeights() Weights {
	return Weights{
		ExactCode:            1000,
		CodePrefix:           500,
		ExactLabel:           800,
		LabelPrefix:          400,
		LabelSubstring:       200,
		DescriptionSubstring: 100,
		AltLabelsSubstring:   150,
	}
}

// DefaultLimit bounds result counts when the caller does not say otherwise.
const DefaultLimit = 100

// Scorer ranks candidates with a fixed weight set.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer. Zero-valued weights fall back to the defaults.
func NewScorer(w Weights) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

// Score computes the cumulative relevance of a candidate for a query.
// All matching is case-insensitive.
func (s *Scorer) Score(query string, c Candidate) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	if code := strings.ToLower(c.Code); code != "" {
		if code == q {
			score += s.weights.ExactCode
		}
		if strings.HasPrefix(code, q) {
			score += s.weights.CodePrefix
		}
	}
	if label := strings.ToLower(c.Label); label != "" {
		if label == q {
			score += s.weights.ExactLabel
		}
		if strings.HasPrefix(label, q) {
			score += s.weights.LabelPrefix
		}
		if strings.Contains(label, q) {
			score += s.weights.LabelSubstring
		}
	}
	if desc := strings.ToLower(c.Description); desc != "" && strings.Contains(desc, q) {
		score += s.weights.DescriptionSubstring
	}
	if alts := strings.ToLower(c.AltLabels); alts != "" && strings.Contains(alts, q) {
		score += s.weights.AltLabelsSubstring
	}
	return score
}

// Search ranks the corpus against the query, most relevant first.
// Zero-score candidates are excluded; ties keep input order; the result is
// cut to limit after sorting. A negative limit means DefaultLimit.
func (s *Scorer) Search(query string, corpus []Candidate, limit int) []Result {
	if limit < 0 {
		limit = DefaultLimit
	}

	results := make([]Result, 0, len(corpus))
	for _, c := range corpus {
		if score := s.Score(query, c); score > 0 {
			results = append(results, Result{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
