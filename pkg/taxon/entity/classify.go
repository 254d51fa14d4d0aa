package entity

import "strings"

// unseenPrefix marks codes belonging to the unseen (informal) economy.
// The check is case-sensitive.
const unseenPrefix = "I"

// ClassifyEconomy decides seen vs unseen from the shape of a code.
func ClassifyEconomy(code string) Economy {
	if strings.HasPrefix(code, unseenPrefix) {
		return EconomyUnseen
	}
	return EconomySeen
}

// GroupLevel derives the hierarchy depth of an occupation group from its
// code.
//
// Unseen codes encode depth with underscore-delimited segments ("I41_0_1"
// has three segments, level 4); a segmentless unseen code longer than two
// characters sits at level 2, otherwise level 1. Seen codes are standard
// numeric classification codes: depth equals the code length once leading
// zeros are stripped, with a floor of 1.
func GroupLevel(code string, economy Economy) int {
	if economy == EconomyUnseen {
		if strings.Contains(code, "_") {
			return len(strings.Split(code, "_")) + 1
		}
		if len(code) > 2 {
			return 2
		}
		return 1
	}
	stripped := strings.TrimLeft(code, "0")
	if len(stripped) < 1 {
		return 1
	}
	return len(stripped)
}

// iscedMarker appears in origin URIs of knowledge-area skill groups taken
// from the ISCED-F classification.
const iscedMarker = "isced-f"

// SkillGroupCategory buckets a skill group by its code initial, falling back
// to the origin URI for ISCED-F knowledge areas. When the category is derived
// from an ISCED-F URI the returned code override is the classification
// segment following "isced-f/" in that URI, empty otherwise.
func SkillGroupCategory(code, originURI string) (Category, string) {
	switch {
	case strings.HasPrefix(code, "S"):
		return CategorySkillsCompetencies, ""
	case strings.HasPrefix(code, "L"):
		return CategoryLanguage, ""
	case strings.HasPrefix(code, "T"):
		return CategoryTransversal, ""
	}
	if strings.Contains(originURI, iscedMarker) {
		return CategoryKnowledge, iscedSegment(originURI)
	}
	return CategoryOther, ""
}

// iscedSegment extracts the path segment following "isced-f/" from a URI.
func iscedSegment(uri string) string {
	_, rest, ok := strings.Cut(uri, iscedMarker+"/")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
