package entity

// Economy classifies an occupation or group as part of the formally
// recognized ("seen") or informal/care/domestic ("unseen") economy.
type Economy string

const (
	EconomySeen   Economy = "seen"
	EconomyUnseen Economy = "unseen"
)

// Kind identifies the concrete entity type behind the Entity interface.
type Kind string

const (
	KindOccupation Kind = "occupation"
	KindGroup      Kind = "occupation_group"
	KindSkill      Kind = "skill"
	KindSkillGroup Kind = "skill_group"
	KindEdge       Kind = "hierarchy_edge"
	KindRelation   Kind = "occupation_skill_relation"
)

// Dataset names one of the seven tabular inputs a taxonomy snapshot is
// assembled from.
type Dataset string

const (
	DatasetOccupations          Dataset = "occupations"
	DatasetOccupationGroups     Dataset = "occupation_groups"
	DatasetOccupationHierarchy  Dataset = "occupation_hierarchy"
	DatasetSkills               Dataset = "skills"
	DatasetSkillGroups          Dataset = "skill_groups"
	DatasetSkillHierarchy       Dataset = "skill_hierarchy"
	DatasetOccupationSkillRels  Dataset = "occupation_skill_relations"
)

// AllDatasets returns every dataset in load order.
func AllDatasets() []Dataset {
	return []Dataset{
		DatasetOccupations,
		DatasetOccupationGroups,
		DatasetOccupationHierarchy,
		DatasetSkills,
		DatasetSkillGroups,
		DatasetSkillHierarchy,
		DatasetOccupationSkillRels,
	}
}

// Valid reports whether d names a known dataset.
func (d Dataset) Valid() bool {
	switch d {
	case DatasetOccupations, DatasetOccupationGroups, DatasetOccupationHierarchy,
		DatasetSkills, DatasetSkillGroups, DatasetSkillHierarchy,
		DatasetOccupationSkillRels:
		return true
	}
	return false
}

// Category buckets skill groups by the shape of their code or origin URI.
type Category string

const (
	CategorySkillsCompetencies Category = "Skills and competencies"
	CategoryLanguage           Category = "Language"
	CategoryTransversal        Category = "Transversal skills"
	CategoryKnowledge          Category = "Knowledge"
	CategoryOther              Category = "Other"
)

// Sentinel labels for records that arrive without one. Skills and skill
// groups are never rejected for a missing label.
const (
	UnknownSkillLabel      = "Unknown Skill"
	UnknownSkillGroupLabel = "Unknown Skill Group"
)

// Entity is the common interface over all normalized row types.
// Entities are immutable once constructed.
type Entity interface {
	Kind() Kind
}

// Occupation is one occupation row after normalization.
type Occupation struct {
	ID             string
	Code           string
	Label          string
	Description    string
	AltLabels      string // raw delimited string, not parsed further
	Economy        Economy
	GroupCode      string
	OccupationType string
	IsLocalized    bool
}

// Kind implements Entity.
func (Occupation) Kind() Kind { return KindOccupation }

// Group is one occupation-group row after normalization.
type Group struct {
	ID          string
	Code        string
	Label       string
	Description string
	AltLabels   string
	Economy     Economy
	Level       int // hierarchy depth derived from the code shape, >= 1
	GroupType   string
	IsLocalized bool
}

// Kind implements Entity.
func (Group) Kind() Kind { return KindGroup }

// Skill is one skill row after normalization.
type Skill struct {
	ID          string
	Label       string
	Description string
	AltLabels   string
	SkillType   string
	ReuseLevel  string
	IsLocalized bool
}

// Kind implements Entity.
func (Skill) Kind() Kind { return KindSkill }

// SkillGroup is one skill-group row after normalization.
type SkillGroup struct {
	ID          string
	Code        string
	Label       string
	Description string
	AltLabels   string
	Category    Category
	IsLocalized bool
}

// Kind implements Entity.
func (SkillGroup) Kind() Kind { return KindSkillGroup }

// Edge is one parent/child link in either the occupation-group or the skill
// hierarchy. The two edge sets are structurally identical but kept separate.
type Edge struct {
	ParentID string
	ChildID  string
}

// Kind implements Entity.
func (Edge) Kind() Kind { return KindEdge }

// Relation links an occupation to a skill it requires or relates to.
type Relation struct {
	OccupationID         string
	SkillID              string
	RelationType         string
	SignallingValue      float64
	SignallingValueLabel string
}

// Kind implements Entity.
func (Relation) Kind() Kind { return KindRelation }
