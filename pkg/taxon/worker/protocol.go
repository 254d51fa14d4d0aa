// Package worker runs a taxonomy session behind a message-passing boundary.
//
// Commands go in on one channel, events come out on another, and no memory
// is shared across the boundary: every payload is a value copy. The protocol
// is a tagged union — a sealed Command interface with one struct per
// operation — so dispatch is exhaustive at compile time rather than
// string-matched.
package worker

import (
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/master"
	"github.com/cognicore/taxon/pkg/taxon/search"
	"github.com/cognicore/taxon/pkg/taxon/stats"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

// Command is one request to the worker. The interface is sealed: only types
// in this package implement it.
type Command interface{ isCommand() }

// ProcessCSVBatch stages one dataset's raw delimited text. The worker emits
// a DataChunkProcessed event per chunk, then one BatchComplete.
type ProcessCSVBatch struct {
	BatchID string // assigned a ULID when empty
	Dataset entity.Dataset
	Raw     string
}

// BuildSkillsMaster merges the skill hierarchy and publishes the staged
// snapshot. Non-empty payload fields override what earlier batches staged;
// leave them nil to merge the staged data.
type BuildSkillsMaster struct {
	Edges       []entity.Edge
	Skills      []entity.Skill
	SkillGroups []entity.SkillGroup
}

// CalculateStats requests the published snapshot's aggregate statistics.
type CalculateStats struct{}

// FilterData queries entities of one kind from the published snapshot.
type FilterData struct {
	Kind   entity.Kind
	Filter store.Filter
}

// SearchData runs a scored search against the published snapshot.
type SearchData struct {
	Query  string
	Corpus search.Corpus
	Limit  int // 0 means the default limit
}

func (ProcessCSVBatch) isCommand()    {}
func (BuildSkillsMaster) isCommand()  {}
func (CalculateStats) isCommand()     {}
func (FilterData) isCommand()         {}
func (SearchData) isCommand()         {}

// Event is one message from the worker. Sealed like Command.
type Event interface{ isEvent() }

// DataChunkProcessed streams the entities of one processed chunk.
type DataChunkProcessed struct {
	BatchID  string
	Dataset  entity.Dataset
	Entities []entity.Entity
}

// BatchComplete closes one ProcessCSVBatch: RowCount rows were processed and
// Dropped of them were silently rejected by normalization.
type BatchComplete struct {
	BatchID  string
	Dataset  entity.Dataset
	RowCount int
	Dropped  int
}

// MasterComplete carries the unified index and its underlying maps.
type MasterComplete struct {
	Nodes      map[string]master.Node
	ChildrenOf map[string][]string
	ParentOf   map[string]string
}

// StatsComplete carries the snapshot statistics.
type StatsComplete struct {
	Stats stats.Stats
}

// FilterComplete carries the entities matching a FilterData command.
type FilterComplete struct {
	Kind    entity.Kind
	Results []entity.Entity
}

// SearchComplete carries ranked search results. TotalFound counts all
// results returned after the limit cut.
type SearchComplete struct {
	Query      string
	Results    []search.Result
	TotalFound int
}

// ProgressUpdate interleaves with the completion events of long-running
// commands.
type ProgressUpdate struct {
	Phase      string
	Completed  int
	Total      int
	Percentage int
	Message    string
}

// ErrorEvent reports a failed or unknown command, or a recovered panic. The
// worker stays alive for subsequent commands.
type ErrorEvent struct {
	Message string
	Stack   string
}

func (DataChunkProcessed) isEvent() {}
func (BatchComplete) isEvent()      {}
func (MasterComplete) isEvent()     {}
func (StatsComplete) isEvent()      {}
func (FilterComplete) isEvent()     {}
func (SearchComplete) isEvent()     {}
func (ProgressUpdate) isEvent()     {}
func (ErrorEvent) isEvent()         {}
