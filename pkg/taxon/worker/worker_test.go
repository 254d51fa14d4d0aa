package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/taxon/pkg/taxon"
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/master"
	"github.com/cognicore/taxon/pkg/taxon/search"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

const (
	skillsCSV = "ID,PREFERREDLABEL,SKILLTYPE\n" +
		"s1,welding,skill/competence\n" +
		"s2,childcare,skill/competence\n" +
		",rejected-no-id,\n"

	skillGroupsCSV = "ID,CODE,PREFERREDLABEL\n" +
		"sg1,S1,crafts\n"

	skillHierarchyCSV = "PARENTID,CHILDID\n" +
		"sg1,s1\n" +
		"sg1,s2\n" +
		"sg1,x9\n"

	occupationsCSV = "ID,CODE,PREFERREDLABEL\n" +
		"o1,0110,Commissioned armed forces officers\n" +
		"o2,I41_0_1,Childcare worker\n"
)

func startWorker(t *testing.T) (*Worker, context.CancelFunc) {
	t.Helper()
	session, err := taxon.NewSession(taxon.Options{})
	require.NoError(t, err)

	w := New(session, Options{Language: "en"})
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		session.Close()
	})
	return w, cancel
}

// waitFor drains events until one matches the wanted type, failing the test
// on ErrorEvent or timeout. Progress and chunk events are allowed to
// interleave before any completion.
func waitFor[E Event](t *testing.T, w *Worker) E {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if e, ok := ev.(E); ok {
				return e
			}
			if e, ok := ev.(ErrorEvent); ok {
				t.Fatalf("unexpected error event: %s", e.Message)
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func waitForError(t *testing.T, w *Worker) ErrorEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-w.Events():
			if e, ok := ev.(ErrorEvent); ok {
				return e
			}
		case <-deadline:
			t.Fatal("timed out waiting for error event")
		}
	}
}

func TestWorker_ProcessCSVBatch(t *testing.T) {
	w, _ := startWorker(t)

	w.Commands() <- ProcessCSVBatch{BatchID: "b-1", Dataset: entity.DatasetSkills, Raw: skillsCSV}

	chunk := waitFor[DataChunkProcessed](t, w)
	assert.Equal(t, "b-1", chunk.BatchID)
	assert.Equal(t, entity.DatasetSkills, chunk.Dataset)
	assert.Len(t, chunk.Entities, 2) // the id-less row is silently dropped

	done := waitFor[BatchComplete](t, w)
	assert.Equal(t, "b-1", done.BatchID)
	assert.Equal(t, 3, done.RowCount)
	assert.Equal(t, 1, done.Dropped)
}

func TestWorker_AssignsBatchID(t *testing.T) {
	w, _ := startWorker(t)

	w.Commands() <- ProcessCSVBatch{Dataset: entity.DatasetSkills, Raw: skillsCSV}
	done := waitFor[BatchComplete](t, w)
	assert.NotEmpty(t, done.BatchID, "worker must assign a batch id when the caller omits one")
}

func TestWorker_FullLoadFlow(t *testing.T) {
	w, _ := startWorker(t)

	for ds, raw := range map[entity.Dataset]string{
		entity.DatasetSkills:         skillsCSV,
		entity.DatasetSkillGroups:    skillGroupsCSV,
		entity.DatasetSkillHierarchy: skillHierarchyCSV,
		entity.DatasetOccupations:    occupationsCSV,
	} {
		w.Commands() <- ProcessCSVBatch{Dataset: ds, Raw: raw}
		waitFor[BatchComplete](t, w)
	}

	w.Commands() <- BuildSkillsMaster{}
	built := waitFor[MasterComplete](t, w)

	require.Len(t, built.Nodes, 3)
	s1 := built.Nodes["s1"]
	assert.Equal(t, master.VariantSkill, s1.Variant)
	assert.False(t, s1.Searchable)
	assert.Equal(t, "sg1", built.ParentOf["s1"])

	x9 := built.Nodes["x9"]
	assert.Equal(t, master.VariantUnknown, x9.Variant)
	assert.Equal(t, "Unknown Item (x9)", x9.Label)

	// Stats over the published snapshot.
	w.Commands() <- CalculateStats{}
	st := waitFor[StatsComplete](t, w)
	assert.Equal(t, 2, st.Stats.Skills)
	assert.Equal(t, 1, st.Stats.UnseenOccupations)
	assert.Equal(t, 1, st.Stats.OrphanNodes)

	// Search against the skills corpus.
	w.Commands() <- SearchData{Query: "welding", Corpus: search.CorpusSkills}
	found := waitFor[SearchComplete](t, w)
	require.Equal(t, 1, found.TotalFound)
	assert.Equal(t, "s1", found.Results[0].ID)

	// Filter unseen occupations.
	w.Commands() <- FilterData{Kind: entity.KindOccupation, Filter: store.Filter{Economy: entity.EconomyUnseen}}
	filtered := waitFor[FilterComplete](t, w)
	require.Len(t, filtered.Results, 1)
	assert.Equal(t, "I41_0_1", filtered.Results[0].(entity.Occupation).Code)
}

func TestWorker_ProgressInterleavesBeforeCompletion(t *testing.T) {
	w, _ := startWorker(t)

	w.Commands() <- ProcessCSVBatch{Dataset: entity.DatasetSkills, Raw: skillsCSV}

	var sawProgress, sawComplete bool
	deadline := time.After(5 * time.Second)
	for !sawComplete {
		select {
		case ev := <-w.Events():
			switch ev.(type) {
			case ProgressUpdate:
				assert.False(t, sawComplete, "progress must precede completion")
				sawProgress = true
			case BatchComplete:
				sawComplete = true
			case ErrorEvent:
				t.Fatalf("unexpected error: %+v", ev)
			}
		case <-deadline:
			t.Fatal("timeout")
		}
	}
	assert.True(t, sawProgress)
}

func TestWorker_UnknownDataset(t *testing.T) {
	w, _ := startWorker(t)

	w.Commands() <- ProcessCSVBatch{Dataset: "bogus", Raw: skillsCSV}
	ev := waitForError(t, w)
	assert.Contains(t, ev.Message, "bogus")
}

func TestWorker_QueryBeforeLoad(t *testing.T) {
	w, _ := startWorker(t)

	w.Commands() <- CalculateStats{}
	ev := waitForError(t, w)
	assert.Contains(t, ev.Message, "no snapshot loaded")
}

func TestWorker_SurvivesErrors(t *testing.T) {
	w, _ := startWorker(t)

	w.Commands() <- SearchData{Query: "x", Corpus: "bad-corpus"}
	waitForError(t, w)

	// The loop is still alive and serves the next command.
	w.Commands() <- ProcessCSVBatch{Dataset: entity.DatasetSkills, Raw: skillsCSV}
	done := waitFor[BatchComplete](t, w)
	assert.Equal(t, 3, done.RowCount)
}

func TestWorker_ClosesEventsOnCancel(t *testing.T) {
	w, cancel := startWorker(t)
	cancel()

	select {
	case _, open := <-drainUntilClosed(w.Events()):
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel never closed")
	}
}

func drainUntilClosed(ch <-chan Event) <-chan Event {
	out := make(chan Event)
	go func() {
		for range ch {
		}
		close(out)
	}()
	return out
}
