// Package normalize converts raw tabular records into typed entities.
//
// Normalization is pure and total: a record either yields exactly one entity
// or is silently dropped. Callers that care about drop counts compare input
// row counts against output entity counts.
package normalize

import (
	"unicode/utf16"

	"github.com/cognicore/taxon/pkg/taxon/csvio"
	"github.com/cognicore/taxon/pkg/taxon/entity"
)

// Description length caps, measured in UTF-16 code units to match the
// source exports.
const (
	MaxOccupationDescription = 300
	MaxSkillDescription      = 300
	MaxGroupDescription      = 400
)

// DefaultRelationType is assumed when a relation row omits its type.
const DefaultRelationType = "related"

// Normalize converts one record of the given dataset into an entity.
// It returns ok=false for records missing required fields; such records are
// not errors and carry no diagnostics.
func Normalize(ds entity.Dataset, rec csvio.Record) (entity.Entity, bool) {
	switch ds {
	case entity.DatasetOccupations:
		return occupation(rec)
	case entity.DatasetOccupationGroups:
		return group(rec)
	case entity.DatasetSkills:
		return skill(rec)
	case entity.DatasetSkillGroups:
		return skillGroup(rec)
	case entity.DatasetOccupationHierarchy, entity.DatasetSkillHierarchy:
		return edge(rec)
	case entity.DatasetOccupationSkillRels:
		return relation(rec)
	}
	return nil, false
}

func occupation(rec csvio.Record) (entity.Entity, bool) {
	code := rec.Text(csvio.ColCode)
	label := rec.Text(csvio.ColPreferredLabel)
	if code == "" || label == "" {
		return nil, false
	}
	return entity.Occupation{
		ID:             rec.Text(csvio.ColID),
		Code:           code,
		Label:          label,
		Description:    description(rec, MaxOccupationDescription),
		AltLabels:      rec.Text(csvio.ColAltLabels),
		Economy:        entity.ClassifyEconomy(code),
		GroupCode:      rec.Text(csvio.ColOccupationGroupCode),
		OccupationType: rec.Text(csvio.ColOccupationType),
		IsLocalized:    rec.Bool(csvio.ColIsLocalized),
	}, true
}

func group(rec csvio.Record) (entity.Entity, bool) {
	code := rec.Text(csvio.ColCode)
	label := rec.Text(csvio.ColPreferredLabel)
	if code == "" || label == "" {
		return nil, false
	}
	economy := entity.ClassifyEconomy(code)
	return entity.Group{
		ID:          rec.Text(csvio.ColID),
		Code:        code,
		Label:       label,
		Description: description(rec, MaxGroupDescription),
		AltLabels:   rec.Text(csvio.ColAltLabels),
		Economy:     economy,
		Level:       entity.GroupLevel(code, economy),
		GroupType:   rec.Text(csvio.ColGroupType),
		IsLocalized: rec.Bool(csvio.ColIsLocalized),
	}, true
}

func skill(rec csvio.Record) (entity.Entity, bool) {
	id := rec.Text(csvio.ColID)
	if id == "" {
		return nil, false
	}
	label := rec.Text(csvio.ColPreferredLabel)
	if label == "" {
		label = entity.UnknownSkillLabel
	}
	return entity.Skill{
		ID:          id,
		Label:       label,
		Description: description(rec, MaxSkillDescription),
		AltLabels:   rec.Text(csvio.ColAltLabels),
		SkillType:   rec.Text(csvio.ColSkillType),
		ReuseLevel:  rec.Text(csvio.ColReuseLevel),
		IsLocalized: rec.Bool(csvio.ColIsLocalized),
	}, true
}

func skillGroup(rec csvio.Record) (entity.Entity, bool) {
	id := rec.Text(csvio.ColID)
	if id == "" {
		return nil, false
	}
	label := rec.Text(csvio.ColPreferredLabel)
	if label == "" {
		label = entity.UnknownSkillGroupLabel
	}
	code := rec.Text(csvio.ColCode)
	category, override := entity.SkillGroupCategory(code, rec.Text(csvio.ColOriginURI))
	if override != "" {
		code = override
	}
	if code == "" {
		code = id
	}
	return entity.SkillGroup{
		ID:          id,
		Code:        code,
		Label:       label,
		Description: description(rec, MaxGroupDescription),
		AltLabels:   rec.Text(csvio.ColAltLabels),
		Category:    category,
		IsLocalized: rec.Bool(csvio.ColIsLocalized),
	}, true
}

func edge(rec csvio.Record) (entity.Entity, bool) {
	parent := rec.Text(csvio.ColParentID)
	child := rec.Text(csvio.ColChildID)
	if parent == "" || child == "" {
		return nil, false
	}
	return entity.Edge{ParentID: parent, ChildID: child}, true
}

func relation(rec csvio.Record) (entity.Entity, bool) {
	occID := rec.Text(csvio.ColOccupationID)
	skillID := rec.Text(csvio.ColSkillID)
	if occID == "" || skillID == "" {
		return nil, false
	}
	relType := rec.Text(csvio.ColRelationType)
	if relType == "" {
		relType = DefaultRelationType
	}
	return entity.Relation{
		OccupationID:         occID,
		SkillID:              skillID,
		RelationType:         relType,
		SignallingValue:      rec.Float(csvio.ColSignallingValue),
		SignallingValueLabel: rec.Text(csvio.ColSignallingValueLabel),
	}, true
}

// description extracts, strips, and truncates a record's description field.
func description(rec csvio.Record, limit int) string {
	return truncate(StripMarkup(rec.Text(csvio.ColDescription)), limit)
}

// truncate cuts s to at most limit UTF-16 code units.
func truncate(s string, limit int) string {
	units := utf16.Encode([]rune(s))
	if len(units) <= limit {
		return s
	}
	return string(utf16.Decode(units[:limit]))
}
