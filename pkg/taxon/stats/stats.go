// Package stats aggregates counts over a loaded taxonomy snapshot.
package stats

import (
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/master"
)

// Stats summarizes a snapshot by entity kind and economy type.
type Stats struct {
	Occupations       int `json:"occupations"`
	SeenOccupations   int `json:"seen_occupations"`
	UnseenOccupations int `json:"unseen_occupations"`
	Groups            int `json:"occupation_groups"`
	SeenGroups        int `json:"seen_groups"`
	UnseenGroups      int `json:"unseen_groups"`
	Skills            int `json:"skills"`
	SkillGroups       int `json:"skill_groups"`
	OccupationEdges   int `json:"occupation_hierarchy_edges"`
	SkillEdges        int `json:"skill_hierarchy_edges"`
	Relations         int `json:"occupation_skill_relations"`
	MasterNodes       int `json:"skills_master_nodes"`
	OrphanNodes       int `json:"orphan_nodes"`
	Localized         int `json:"localized_entities"`
}

// Input carries everything Compute aggregates over.
type Input struct {
	Occupations     []entity.Occupation
	Groups          []entity.Group
	Skills          []entity.Skill
	SkillGroups     []entity.SkillGroup
	OccupationEdges []entity.Edge
	SkillEdges      []entity.Edge
	Relations       []entity.Relation
	MasterNodes     map[string]master.Node
}

// Compute derives aggregate statistics in one pass per collection.
func Compute(in Input) Stats {
	s := Stats{
		Occupations:     len(in.Occupations),
		Groups:          len(in.Groups),
		Skills:          len(in.Skills),
		SkillGroups:     len(in.SkillGroups),
		OccupationEdges: len(in.OccupationEdges),
		SkillEdges:      len(in.SkillEdges),
		Relations:       len(in.Relations),
		MasterNodes:     len(in.MasterNodes),
	}
	for _, o := range in.Occupations {
		if o.Economy == entity.EconomyUnseen {
			s.UnseenOccupations++
		} else {
			s.SeenOccupations++
		}
		if o.IsLocalized {
			s.Localized++
		}
	}
	for _, g := range in.Groups {
		if g.Economy == entity.EconomyUnseen {
			s.UnseenGroups++
		} else {
			s.SeenGroups++
		}
		if g.IsLocalized {
			s.Localized++
		}
	}
	for _, sk := range in.Skills {
		if sk.IsLocalized {
			s.Localized++
		}
	}
	for _, sg := range in.SkillGroups {
		if sg.IsLocalized {
			s.Localized++
		}
	}
	for _, n := range in.MasterNodes {
		if n.Variant == master.VariantUnknown {
			s.OrphanNodes++
		}
	}
	return s
}
