package store

import (
	"context"

	"github.com/cognicore/taxon/pkg/taxon/entity"
)

// Store holds the entity indices of one loaded snapshot and answers filter
// queries over them. Implementations are replace-wholesale: a Replace swaps
// the entire content atomically and there is no row-level mutation.
type Store interface {
	Close() error

	// Replace swaps the store content for the given snapshot.
	Replace(ctx context.Context, snap Snapshot) error

	// Filter queries over the current snapshot.
	Occupations(ctx context.Context, f Filter) ([]entity.Occupation, error)
	Groups(ctx context.Context, f Filter) ([]entity.Group, error)
	Skills(ctx context.Context, f Filter) ([]entity.Skill, error)
	SkillGroups(ctx context.Context, f Filter) ([]entity.SkillGroup, error)

	// Lookups.
	OccupationByCode(ctx context.Context, code string) (entity.Occupation, bool, error)
	RelationsForOccupation(ctx context.Context, occupationID string) ([]entity.Relation, error)

	Counts(ctx context.Context) (Counts, error)
}

// Snapshot is the full dataset handed to Replace. Slices are treated as
// immutable once handed over.
type Snapshot struct {
	Language        string
	Occupations     []entity.Occupation
	Groups          []entity.Group
	Skills          []entity.Skill
	SkillGroups     []entity.SkillGroup
	OccupationEdges []entity.Edge
	SkillEdges      []entity.Edge
	Relations       []entity.Relation
}

// Filter narrows a query. Zero-valued fields do not constrain. Economy and
// CodePrefix apply only to kinds that carry those fields; LabelContains
// matches case-insensitively against the preferred label.
type Filter struct {
	Economy       entity.Economy
	CodePrefix    string
	LabelContains string
	Limit         int
}

// Counts reports the stored entity counts per kind.
type Counts struct {
	Occupations int
	Groups      int
	Skills      int
	SkillGroups int
	Relations   int
}
