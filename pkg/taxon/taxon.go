// Package taxon is the orchestration facade over the taxonomy pipeline:
// it normalizes tabular exports into typed entities, merges the skill
// hierarchies into the unified skills-master index, aggregates statistics,
// and serves scored search and filtering over the published snapshot.
//
// A Session owns one published snapshot at a time; loads are atomic and
// replace the snapshot wholesale. Sessions are plain instances — two
// sessions never share state, so one process can serve several languages or
// datasets side by side.
package taxon

import (
	"github.com/cognicore/taxon/pkg/taxon/master"
	"github.com/cognicore/taxon/pkg/taxon/search"
	"github.com/cognicore/taxon/pkg/taxon/stats"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

// Snapshot is one fully-built, immutable dataset: the typed entity indices,
// the unified skills-master index, aggregate statistics, and the
// precomputed search corpora.
type Snapshot struct {
	Data   store.Snapshot
	Master master.Result
	Stats  stats.Stats

	corpora map[search.Corpus][]search.Candidate
}

// Corpus returns the precomputed candidate list for a search corpus.
func (s *Snapshot) Corpus(c search.Corpus) []search.Candidate {
	return s.corpora[c]
}
