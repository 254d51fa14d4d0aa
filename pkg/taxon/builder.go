package taxon

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/taxon/pkg/taxon/chunk"
	"github.com/cognicore/taxon/pkg/taxon/csvio"
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/internalerr"
	"github.com/cognicore/taxon/pkg/taxon/master"
	"github.com/cognicore/taxon/pkg/taxon/normalize"
	"github.com/cognicore/taxon/pkg/taxon/stats"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

// Builder assembles one snapshot from dataset batches. It is the staging
// area of a load: nothing it holds is visible to readers until the finished
// snapshot is published to a session. A Builder is single-goroutine; it is
// not safe for concurrent use and is discarded after Snapshot.
type Builder struct {
	logger     *zap.Logger
	chunkSize  int
	budget     time.Duration
	onProgress func(chunk.Progress)

	data        store.Snapshot
	masterRes   master.Result
	masterBuilt bool
}

// BuilderOptions configures a Builder. Zero values fall back to the chunk
// package defaults and a no-op logger.
type BuilderOptions struct {
	Language   string
	ChunkSize  int
	Budget     time.Duration
	Logger     *zap.Logger
	OnProgress func(chunk.Progress)
}

// NewBuilder creates an empty staging area for one snapshot.
func NewBuilder(opts BuilderOptions) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger:     logger,
		chunkSize:  opts.ChunkSize,
		budget:     opts.Budget,
		onProgress: opts.OnProgress,
		data:       store.Snapshot{Language: opts.Language},
	}
}

// AddCSV parses one dataset's delimited export and stages its entities.
// See AddRecords for the callback and return semantics.
func (b *Builder) AddCSV(ctx context.Context, ds entity.Dataset, r io.Reader, onChunk func([]entity.Entity)) (rows, dropped int, err error) {
	recs, err := csvio.ReadAll(r)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", ds, err)
	}
	return b.AddRecords(ctx, ds, recs, onChunk)
}

// AddRecords normalizes records of one dataset through the chunked executor
// and stages the resulting entities. onChunk, when non-nil, receives the
// entities of each chunk as they are produced. It returns the number of rows
// processed and the number silently dropped by normalization; err is non-nil
// only for an unknown dataset or a cancelled context (in which case the rows
// staged so far remain staged but nothing has been published).
func (b *Builder) AddRecords(ctx context.Context, ds entity.Dataset, recs []csvio.Record, onChunk func([]entity.Entity)) (rows, dropped int, err error) {
	if !ds.Valid() {
		return 0, 0, fmt.Errorf("%w: %q", internalerr.ErrUnknownDataset, ds)
	}

	var pending []entity.Entity
	opts := chunk.Options{
		Size:   b.chunkSize,
		Budget: b.budget,
		Phase:  string(ds),
		Logger: b.logger,
		OnProgress: func(p chunk.Progress) {
			if onChunk != nil && len(pending) > 0 {
				out := make([]entity.Entity, len(pending))
				copy(out, pending)
				onChunk(out)
			}
			pending = pending[:0]
			if b.onProgress != nil {
				b.onProgress(p)
			}
		},
	}

	processed := chunk.RunSink(ctx, recs, func(rec csvio.Record) (entity.Entity, error) {
		e, ok := normalize.Normalize(ds, rec)
		if !ok {
			return nil, nil // silent reject, counted via the drop delta
		}
		return e, nil
	}, func(e entity.Entity) {
		if e == nil {
			dropped++
			return
		}
		b.stage(ds, e)
		pending = append(pending, e)
	}, opts)

	if processed < len(recs) {
		return processed, dropped, ctx.Err()
	}
	return processed, dropped, nil
}

func (b *Builder) stage(ds entity.Dataset, e entity.Entity) {
	switch ds {
	case entity.DatasetOccupations:
		b.data.Occupations = append(b.data.Occupations, e.(entity.Occupation))
	case entity.DatasetOccupationGroups:
		b.data.Groups = append(b.data.Groups, e.(entity.Group))
	case entity.DatasetSkills:
		b.data.Skills = append(b.data.Skills, e.(entity.Skill))
	case entity.DatasetSkillGroups:
		b.data.SkillGroups = append(b.data.SkillGroups, e.(entity.SkillGroup))
	case entity.DatasetOccupationHierarchy:
		b.data.OccupationEdges = append(b.data.OccupationEdges, e.(entity.Edge))
	case entity.DatasetSkillHierarchy:
		b.data.SkillEdges = append(b.data.SkillEdges, e.(entity.Edge))
	case entity.DatasetOccupationSkillRels:
		b.data.Relations = append(b.data.Relations, e.(entity.Relation))
	}
	b.masterBuilt = false
}

// SetSkillHierarchy replaces the staged skill-hierarchy edges. Used when the
// caller supplies the merge inputs directly instead of via dataset batches.
func (b *Builder) SetSkillHierarchy(edges []entity.Edge) {
	b.data.SkillEdges = edges
	b.masterBuilt = false
}

// SetSkills replaces the staged skills.
func (b *Builder) SetSkills(skills []entity.Skill) {
	b.data.Skills = skills
	b.masterBuilt = false
}

// SetSkillGroups replaces the staged skill groups.
func (b *Builder) SetSkillGroups(groups []entity.SkillGroup) {
	b.data.SkillGroups = groups
	b.masterBuilt = false
}

// BuildMaster merges the staged skill hierarchy into the unified index.
// Rebuilding after further staging produces a fresh, fully re-derived
// result.
func (b *Builder) BuildMaster(ctx context.Context) (master.Result, error) {
	res, err := master.Build(ctx, b.data.SkillEdges, b.data.Skills, b.data.SkillGroups, master.Options{
		Chunk: chunk.Options{
			Budget:     b.budget,
			Logger:     b.logger,
			OnProgress: b.onProgress,
		},
	})
	if err != nil {
		return master.Result{}, err
	}
	b.masterRes = res
	b.masterBuilt = true
	return res, nil
}

// Snapshot finalizes the staged data into an immutable snapshot: the master
// index is built if staging changed since the last build, statistics are
// aggregated, and the search corpora are precomputed.
func (b *Builder) Snapshot(ctx context.Context) (*Snapshot, error) {
	if !b.masterBuilt {
		if _, err := b.BuildMaster(ctx); err != nil {
			return nil, err
		}
	}
	snap := &Snapshot{
		Data:   b.data,
		Master: b.masterRes,
	}
	snap.Stats = stats.Compute(stats.Input{
		Occupations:     b.data.Occupations,
		Groups:          b.data.Groups,
		Skills:          b.data.Skills,
		SkillGroups:     b.data.SkillGroups,
		OccupationEdges: b.data.OccupationEdges,
		SkillEdges:      b.data.SkillEdges,
		Relations:       b.data.Relations,
		MasterNodes:     b.masterRes.Nodes,
	})
	snap.buildCorpora()
	return snap, nil
}
