package worker

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime/debug"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/taxon/pkg/taxon"
	"github.com/cognicore/taxon/pkg/taxon/chunk"
	"github.com/cognicore/taxon/pkg/taxon/csvio"
	"github.com/cognicore/taxon/pkg/taxon/entity"
)

// DefaultQueueSize buffers each channel of the boundary.
const DefaultQueueSize = 64

// Options configures a worker.
type Options struct {
	Logger    *zap.Logger
	QueueSize int
	Language  string // language tag stamped on staged snapshots
}

// Worker owns one session and a staging builder, and serializes all access
// to them: commands are handled one at a time on the Run goroutine, so the
// session never sees overlapping loads.
type Worker struct {
	session *taxon.Session
	builder *taxon.Builder

	cmds    chan Command
	events  chan Event
	logger  *zap.Logger
	lang    string
	entropy *ulid.MonotonicEntropy
}

// New wraps a session in a worker. The session must not be loaded into by
// anyone else while the worker runs.
func New(session *taxon.Session, opts Options) *Worker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Worker{
		session: session,
		cmds:    make(chan Command, size),
		events:  make(chan Event, size),
		logger:  logger,
		lang:    opts.Language,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Commands is the inbound half of the boundary.
func (w *Worker) Commands() chan<- Command { return w.cmds }

// Events is the outbound half of the boundary.
func (w *Worker) Events() <-chan Event { return w.events }

// Run processes commands until the context is cancelled or Commands is
// closed, then closes Events. Each command is handled to completion before
// the next is read; a panic inside a handler becomes an ErrorEvent and the
// loop keeps going.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-w.cmds:
			if !ok {
				return
			}
			w.handle(ctx, cmd)
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("command panicked", zap.Any("panic", r))
			w.emit(ctx, ErrorEvent{
				Message: fmt.Sprintf("panic: %v", r),
				Stack:   string(debug.Stack()),
			})
		}
	}()

	switch c := cmd.(type) {
	case ProcessCSVBatch:
		w.processBatch(ctx, c)
	case BuildSkillsMaster:
		w.buildMaster(ctx, c)
	case CalculateStats:
		st, err := w.session.Stats()
		if err != nil {
			w.fail(ctx, err)
			return
		}
		w.emit(ctx, StatsComplete{Stats: st})
	case FilterData:
		results, err := w.session.Filter(ctx, c.Kind, c.Filter)
		if err != nil {
			w.fail(ctx, err)
			return
		}
		w.emit(ctx, FilterComplete{Kind: c.Kind, Results: results})
	case SearchData:
		results, total, err := w.session.Search(c.Corpus, c.Query, c.Limit)
		if err != nil {
			w.fail(ctx, err)
			return
		}
		w.emit(ctx, SearchComplete{Query: c.Query, Results: results, TotalFound: total})
	default:
		w.fail(ctx, fmt.Errorf("unknown command %T", cmd))
	}
}

func (w *Worker) processBatch(ctx context.Context, c ProcessCSVBatch) {
	if !c.Dataset.Valid() {
		w.fail(ctx, fmt.Errorf("unknown dataset %q", c.Dataset))
		return
	}
	batchID := c.BatchID
	if batchID == "" {
		batchID = ulid.MustNew(ulid.Now(), w.entropy).String()
	}

	recs, err := csvio.ReadString(c.Raw)
	if err != nil {
		w.fail(ctx, fmt.Errorf("batch %s: %w", batchID, err))
		return
	}

	if w.builder == nil {
		w.builder = w.session.NewBuilder(w.lang, w.progressFunc(ctx))
	}
	rows, dropped, err := w.builder.AddRecords(ctx, c.Dataset, recs, func(entities []entity.Entity) {
		w.emit(ctx, DataChunkProcessed{BatchID: batchID, Dataset: c.Dataset, Entities: entities})
	})
	if err != nil {
		w.fail(ctx, fmt.Errorf("batch %s: %w", batchID, err))
		return
	}
	w.emit(ctx, BatchComplete{BatchID: batchID, Dataset: c.Dataset, RowCount: rows, Dropped: dropped})
}

func (w *Worker) buildMaster(ctx context.Context, c BuildSkillsMaster) {
	if w.builder == nil {
		w.builder = w.session.NewBuilder(w.lang, w.progressFunc(ctx))
	}
	if c.Edges != nil {
		w.builder.SetSkillHierarchy(c.Edges)
	}
	if c.Skills != nil {
		w.builder.SetSkills(c.Skills)
	}
	if c.SkillGroups != nil {
		w.builder.SetSkillGroups(c.SkillGroups)
	}

	snap, err := w.builder.Snapshot(ctx)
	if err != nil {
		w.fail(ctx, err)
		return
	}
	if err := w.session.Publish(ctx, snap); err != nil {
		w.fail(ctx, err)
		return
	}
	w.builder = nil // staging consumed; next batch starts a fresh snapshot

	w.emit(ctx, MasterComplete{
		Nodes:      snap.Master.Nodes,
		ChildrenOf: snap.Master.ChildrenOf,
		ParentOf:   snap.Master.ParentOf,
	})
}

func (w *Worker) progressFunc(ctx context.Context) func(chunk.Progress) {
	return func(p chunk.Progress) {
		w.emit(ctx, ProgressUpdate{
			Phase:      p.Phase,
			Completed:  p.Processed,
			Total:      p.Total,
			Percentage: p.Percentage,
			Message:    fmt.Sprintf("%s: %d/%d", p.Phase, p.Processed, p.Total),
		})
	}
}

func (w *Worker) fail(ctx context.Context, err error) {
	w.logger.Warn("command failed", zap.Error(err))
	w.emit(ctx, ErrorEvent{Message: err.Error()})
}

func (w *Worker) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
