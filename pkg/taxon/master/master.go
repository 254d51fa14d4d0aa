// Package master merges the skill-group tree and the individual-skill
// membership edges into one unified, navigable node index.
package master

import (
	"context"
	"fmt"

	"github.com/cognicore/taxon/pkg/taxon/chunk"
	"github.com/cognicore/taxon/pkg/taxon/entity"
)

// Variant discriminates the node types unified by the index. It is decided
// once at construction and never re-inferred.
type Variant string

const (
	VariantSkill      Variant = "skill"
	VariantSkillGroup Variant = "skillgroup"
	VariantUnknown    Variant = "unknown"
)

// Node is one addressable entry of the unified index. ParentID is empty only
// for nodes whose parent edge was lost; every materialized node was seen as
// the child of some edge. ChildIDs preserves edge input order.
type Node struct {
	ID          string
	ParentID    string
	ChildIDs    []string
	Variant     Variant
	Label       string
	Description string
	Code        string
	SkillType   string
	Category    entity.Category
	Clickable   bool
	Searchable  bool
}

// Result is the full output of a build: the node index plus the raw
// children/parent maps it was derived from.
type Result struct {
	Nodes      map[string]Node
	ChildrenOf map[string][]string
	ParentOf   map[string]string
}

// BuildChunkSize bounds per-frame cost during node construction.
const BuildChunkSize = 500

// Options tunes the build's chunked execution.
type Options struct {
	Chunk chunk.Options
}

// Build derives the unified index from the skill hierarchy edges and the two
// entity sets.
//
// Edge maps are built in input order; a child listed under more than one
// parent keeps the later edge (last write wins, deliberately unvalidated).
// Duplicate entity ids likewise keep the last occurrence. A node is
// materialized for every identifier that appears as a child of some edge —
// roots that are never anyone's child are not nodes. Classification checks
// the skill index before the skill-group index; identifiers found in neither
// become unknown orphans with a synthetic label.
//
// The result depends only on the inputs: rebuilding from identical inputs
// yields an element-wise identical map.
func Build(ctx context.Context, edges []entity.Edge, skills []entity.Skill, groups []entity.SkillGroup, opts Options) (Result, error) {
	childrenOf := make(map[string][]string)
	parentOf := make(map[string]string, len(edges))
	childOrder := make([]string, 0, len(edges))
	for _, e := range edges {
		childrenOf[e.ParentID] = append(childrenOf[e.ParentID], e.ChildID)
		if _, seen := parentOf[e.ChildID]; !seen {
			childOrder = append(childOrder, e.ChildID)
		}
		parentOf[e.ChildID] = e.ParentID
	}

	skillIdx := make(map[string]entity.Skill, len(skills))
	for _, s := range skills {
		skillIdx[s.ID] = s
	}
	groupIdx := make(map[string]entity.SkillGroup, len(groups))
	for _, g := range groups {
		groupIdx[g.ID] = g
	}

	chunkOpts := opts.Chunk
	if chunkOpts.Size <= 0 {
		chunkOpts.Size = BuildChunkSize
	}
	if chunkOpts.Phase == "" {
		chunkOpts.Phase = "skills-master"
	}

	nodes := make(map[string]Node, len(childOrder))
	chunk.RunSink(ctx, childOrder, func(id string) (Node, error) {
		return makeNode(id, parentOf[id], childrenOf[id], skillIdx, groupIdx), nil
	}, func(n Node) {
		nodes[n.ID] = n
	}, chunkOpts)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{Nodes: nodes, ChildrenOf: childrenOf, ParentOf: parentOf}, nil
}

func makeNode(id, parentID string, childIDs []string, skills map[string]entity.Skill, groups map[string]entity.SkillGroup) Node {
	n := Node{ID: id, ParentID: parentID, ChildIDs: childIDs}

	if s, ok := skills[id]; ok {
		n.Variant = VariantSkill
		n.Label = s.Label
		n.Description = s.Description
		n.SkillType = s.SkillType
		n.Clickable = true
		return n
	}
	if g, ok := groups[id]; ok {
		n.Variant = VariantSkillGroup
		n.Label = g.Label
		n.Description = g.Description
		n.Code = g.Code
		n.Category = g.Category
		n.Clickable = true
		n.Searchable = true
		return n
	}
	n.Variant = VariantUnknown
	n.Label = fmt.Sprintf("Unknown Item (%s)", id)
	return n
}
