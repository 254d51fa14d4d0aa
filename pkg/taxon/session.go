package taxon

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/cognicore/taxon/pkg/taxon/chunk"
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/internalerr"
	"github.com/cognicore/taxon/pkg/taxon/master"
	"github.com/cognicore/taxon/pkg/taxon/search"
	"github.com/cognicore/taxon/pkg/taxon/stats"
	"github.com/cognicore/taxon/pkg/taxon/store"
	"github.com/cognicore/taxon/pkg/taxon/store/memstore"
)

// DefaultSearchCacheSize bounds the per-session search result cache.
const DefaultSearchCacheSize = 256

// Options configures a session.
type Options struct {
	Store           store.Store // default: memstore.New()
	Logger          *zap.Logger // default: zap.NewNop()
	Weights         search.Weights
	ChunkSize       int
	YieldBudget     time.Duration
	SearchCacheSize int
}

// Session owns one published snapshot and serves reads against it. It is
// safe for concurrent readers; loads must not overlap on the same session.
type Session struct {
	mu   sync.RWMutex
	snap *Snapshot

	store     store.Store
	logger    *zap.Logger
	scorer    *search.Scorer
	cache     *lru.Cache[string, []search.Result]
	chunkSize int
	budget    time.Duration
}

// NewSession creates a session with the given dependencies.
func NewSession(opts Options) (*Session, error) {
	st := opts.Store
	if st == nil {
		st = memstore.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.SearchCacheSize
	if size <= 0 {
		size = DefaultSearchCacheSize
	}
	cache, err := lru.New[string, []search.Result](size)
	if err != nil {
		return nil, err
	}
	return &Session{
		store:     st,
		logger:    logger,
		scorer:    search.NewScorer(opts.Weights),
		cache:     cache,
		chunkSize: opts.ChunkSize,
		budget:    opts.YieldBudget,
	}, nil
}

// Close releases the session's store.
func (s *Session) Close() error {
	return s.store.Close()
}

// NewBuilder creates a staging area wired to this session's logger and chunk
// tuning. The builder publishes nothing on its own.
func (s *Session) NewBuilder(language string, onProgress func(chunk.Progress)) *Builder {
	return NewBuilder(BuilderOptions{
		Language:   language,
		ChunkSize:  s.chunkSize,
		Budget:     s.budget,
		Logger:     s.logger,
		OnProgress: onProgress,
	})
}

// Sources names the dataset readers of one load.
type Sources struct {
	Language   string
	Readers    map[entity.Dataset]io.Reader
	OnProgress func(chunk.Progress)
}

// Load ingests every supplied dataset, builds the skills master and
// statistics, and atomically publishes the result. On any failure the
// previously published snapshot (if any) stays in place untouched.
func (s *Session) Load(ctx context.Context, src Sources) error {
	b := s.NewBuilder(src.Language, src.OnProgress)
	for _, ds := range entity.AllDatasets() {
		r, ok := src.Readers[ds]
		if !ok {
			continue
		}
		rows, dropped, err := b.AddCSV(ctx, ds, r, nil)
		if err != nil {
			return fmt.Errorf("load %s: %w", ds, err)
		}
		s.logger.Debug("dataset staged",
			zap.String("dataset", string(ds)),
			zap.Int("rows", rows),
			zap.Int("dropped", dropped))
	}
	snap, err := b.Snapshot(ctx)
	if err != nil {
		return err
	}
	return s.Publish(ctx, snap)
}

// Publish atomically swaps the current snapshot. The store is replaced
// first; only a fully stored snapshot becomes visible.
func (s *Session) Publish(ctx context.Context, snap *Snapshot) error {
	if err := s.store.Replace(ctx, snap.Data); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.cache.Purge()

	s.logger.Info("snapshot published",
		zap.String("language", snap.Data.Language),
		zap.Int("occupations", snap.Stats.Occupations),
		zap.Int("skills", snap.Stats.Skills),
		zap.Int("master_nodes", snap.Stats.MasterNodes))
	return nil
}

// Snapshot returns the currently published snapshot.
func (s *Session) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, internalerr.ErrSnapshotNotLoaded
	}
	return s.snap, nil
}

// Search ranks the named corpus against the query. limit == 0 means
// search.DefaultLimit. Results are cached per snapshot.
func (s *Session) Search(corpus search.Corpus, query string, limit int) ([]search.Result, int, error) {
	if !corpus.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", internalerr.ErrUnknownCorpus, corpus)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return nil, 0, err
	}
	if limit == 0 {
		limit = search.DefaultLimit
	}

	key := fmt.Sprintf("%s|%d|%s", corpus, limit, strings.ToLower(strings.TrimSpace(query)))
	if cached, ok := s.cache.Get(key); ok {
		return cached, len(cached), nil
	}

	results := s.scorer.Search(query, snap.Corpus(corpus), limit)
	s.cache.Add(key, results)
	return results, len(results), nil
}

// Stats returns the published snapshot's aggregate statistics.
func (s *Session) Stats() (stats.Stats, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return stats.Stats{}, err
	}
	return snap.Stats, nil
}

// Master returns the published skills-master index.
func (s *Session) Master() (master.Result, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return master.Result{}, err
	}
	return snap.Master, nil
}

// Filter queries the store for entities of one kind.
func (s *Session) Filter(ctx context.Context, kind entity.Kind, f store.Filter) ([]entity.Entity, error) {
	if _, err := s.Snapshot(); err != nil {
		return nil, err
	}
	switch kind {
	case entity.KindOccupation:
		occs, err := s.store.Occupations(ctx, f)
		return wrap(occs), err
	case entity.KindGroup:
		groups, err := s.store.Groups(ctx, f)
		return wrap(groups), err
	case entity.KindSkill:
		skills, err := s.store.Skills(ctx, f)
		return wrap(skills), err
	case entity.KindSkillGroup:
		sgs, err := s.store.SkillGroups(ctx, f)
		return wrap(sgs), err
	}
	return nil, fmt.Errorf("%w: cannot filter kind %q", internalerr.ErrInvalidInput, kind)
}

// SkillsForOccupation returns the skill relations of one occupation.
func (s *Session) SkillsForOccupation(ctx context.Context, occupationID string) ([]entity.Relation, error) {
	if _, err := s.Snapshot(); err != nil {
		return nil, err
	}
	return s.store.RelationsForOccupation(ctx, occupationID)
}

func wrap[E entity.Entity](in []E) []entity.Entity {
	out := make([]entity.Entity, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}
