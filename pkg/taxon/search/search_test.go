package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/taxon/pkg/taxon/entity"
)

func corpus() []Candidate {
	return []Candidate{
		{ID: "1", Code: "0110", Label: "Commissioned armed forces officers", Kind: entity.KindOccupation},
		{ID: "2", Code: "011", Label: "Commissioned officers", Kind: entity.KindGroup},
		{ID: "3", Label: "Childcare worker", Kind: entity.KindOccupation},
		{ID: "4", Label: "Psychologist", Description: "Studies child development and behaviour", Kind: entity.KindOccupation},
		{ID: "5", Label: "Nanny", AltLabels: "childminder\nchild carer", Kind: entity.KindOccupation},
	}
}

func TestScore_ExactCodeBeatsLabelSubstring(t *testing.T) {
	s := NewScorer(Weights{})

	exact := s.Score("0110", Candidate{Code: "0110", Label: "x"})
	substr := s.Score("0110", Candidate{Label: "code 0110 in label"})
	assert.Greater(t, exact, substr)
}

func TestScore_Cumulative(t *testing.T) {
	s := NewScorer(DefaultWeights())

	// Exact code also satisfies the prefix rule.
	got := s.Score("0110", Candidate{Code: "0110"})
	assert.Equal(t, 1500, got)

	// Exact label also satisfies prefix and substring.
	got = s.Score("nanny", Candidate{Label: "Nanny"})
	assert.Equal(t, 1400, got)
}

func TestScore_CaseInsensitive(t *testing.T) {
	s := NewScorer(DefaultWeights())
	assert.Equal(t, s.Score("CHILD", corpus()[2]), s.Score("child", corpus()[2]))
}

func TestScore_EmptyQuery(t *testing.T) {
	s := NewScorer(DefaultWeights())
	assert.Zero(t, s.Score("", corpus()[0]))
	assert.Zero(t, s.Score("   ", corpus()[0]))
}

func TestSearch_LabelSubstringOutranksDescription(t *testing.T) {
	s := NewScorer(DefaultWeights())
	results := s.Search("child", corpus(), 10)
	require.NotEmpty(t, results)

	var labelScore, descScore int
	for _, r := range results {
		switch r.ID {
		case "3":
			labelScore = r.Score
		case "4":
			descScore = r.Score
		}
	}
	require.NotZero(t, labelScore)
	require.NotZero(t, descScore)
	assert.GreaterOrEqual(t, labelScore-descScore, 200-100)
}

func TestSearch_AltLabelsMatch(t *testing.T) {
	s := NewScorer(DefaultWeights())
	results := s.Search("childminder", corpus(), 10)
	require.Len(t, results, 1)
	assert.Equal(t, "5", results[0].ID)
	assert.Equal(t, DefaultWeights().AltLabelsSubstring, results[0].Score)
}

func TestSearch_ExcludesZeroScores(t *testing.T) {
	s := NewScorer(DefaultWeights())
	results := s.Search("zzzz-no-match", corpus(), 10)
	assert.Empty(t, results)
}

func TestSearch_LimitAndOrdering(t *testing.T) {
	s := NewScorer(DefaultWeights())

	for _, k := range []int{0, 1, 2, 100} {
		results := s.Search("child", corpus(), k)
		assert.LessOrEqual(t, len(results), k)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	}
}

func TestSearch_TiesKeepInputOrder(t *testing.T) {
	s := NewScorer(DefaultWeights())
	tied := []Candidate{
		{ID: "a", Description: "child one"},
		{ID: "b", Description: "child two"},
		{ID: "c", Description: "child three"},
	}
	results := s.Search("child", tied, 10)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].ID, results[1].ID, results[2].ID})
}

func TestSearch_CodePrefix(t *testing.T) {
	s := NewScorer(DefaultWeights())
	results := s.Search("011", corpus(), 10)
	require.Len(t, results, 2)
	// "011" matches candidate 2 exactly (1000+500) and candidate 1 as
	// a prefix only (500).
	assert.Equal(t, "2", results[0].ID)
	assert.Equal(t, "1", results[1].ID)
}
