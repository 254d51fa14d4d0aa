package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

// Store is an in-memory, map-backed implementation of store.Store. It is the
// default store of a session and serves tests.
type Store struct {
	mu   sync.RWMutex
	snap store.Snapshot

	byCode    map[string]entity.Occupation
	relsByOcc map[string][]entity.Relation
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byCode:    make(map[string]entity.Occupation),
		relsByOcc: make(map[string][]entity.Relation),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Replace swaps the store content for the given snapshot and rebuilds the
// lookup indices. Later duplicates win, mirroring edge-map construction.
func (s *Store) Replace(ctx context.Context, snap store.Snapshot) error {
	byCode := make(map[string]entity.Occupation, len(snap.Occupations))
	for _, o := range snap.Occupations {
		byCode[o.Code] = o
	}
	relsByOcc := make(map[string][]entity.Relation)
	for _, r := range snap.Relations {
		relsByOcc[r.OccupationID] = append(relsByOcc[r.OccupationID], r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.byCode = byCode
	s.relsByOcc = relsByOcc
	return nil
}

// Occupations returns occupations matching the filter, in snapshot order.
func (s *Store) Occupations(ctx context.Context, f Filter) ([]entity.Occupation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Occupation
	for _, o := range s.snap.Occupations {
		if f.Economy != "" && o.Economy != f.Economy {
			continue
		}
		if f.CodePrefix != "" && !strings.HasPrefix(o.Code, f.CodePrefix) {
			continue
		}
		if !labelMatches(o.Label, f.LabelContains) {
			continue
		}
		out = append(out, o)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Groups returns occupation groups matching the filter, in snapshot order.
func (s *Store) Groups(ctx context.Context, f Filter) ([]entity.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Group
	for _, g := range s.snap.Groups {
		if f.Economy != "" && g.Economy != f.Economy {
			continue
		}
		if f.CodePrefix != "" && !strings.HasPrefix(g.Code, f.CodePrefix) {
			continue
		}
		if !labelMatches(g.Label, f.LabelContains) {
			continue
		}
		out = append(out, g)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Skills returns skills matching the filter, in snapshot order.
func (s *Store) Skills(ctx context.Context, f Filter) ([]entity.Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Skill
	for _, sk := range s.snap.Skills {
		if !labelMatches(sk.Label, f.LabelContains) {
			continue
		}
		out = append(out, sk)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// SkillGroups returns skill groups matching the filter, in snapshot order.
func (s *Store) SkillGroups(ctx context.Context, f Filter) ([]entity.SkillGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.SkillGroup
	for _, sg := range s.snap.SkillGroups {
		if f.CodePrefix != "" && !strings.HasPrefix(sg.Code, f.CodePrefix) {
			continue
		}
		if !labelMatches(sg.Label, f.LabelContains) {
			continue
		}
		out = append(out, sg)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// OccupationByCode returns the occupation with the given code, if any.
func (s *Store) OccupationByCode(ctx context.Context, code string) (entity.Occupation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byCode[code]
	return o, ok, nil
}

// RelationsForOccupation returns the skill relations of one occupation, in
// snapshot order.
func (s *Store) RelationsForOccupation(ctx context.Context, occupationID string) ([]entity.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rels := s.relsByOcc[occupationID]
	out := make([]entity.Relation, len(rels))
	copy(out, rels)
	return out, nil
}

// Counts implements store.Store.
func (s *Store) Counts(ctx context.Context) (store.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return store.Counts{
		Occupations: len(s.snap.Occupations),
		Groups:      len(s.snap.Groups),
		Skills:      len(s.snap.Skills),
		SkillGroups: len(s.snap.SkillGroups),
		Relations:   len(s.snap.Relations),
	}, nil
}

// Filter aliases store.Filter for callers of the concrete type.
type Filter = store.Filter

func labelMatches(label, contains string) bool {
	if contains == "" {
		return true
	}
	return strings.Contains(strings.ToLower(label), strings.ToLower(contains))
}
