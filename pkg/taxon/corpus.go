package taxon

import (
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/search"
)

// buildCorpora precomputes the candidate lists once per snapshot so searches
// never re-walk the entity slices. The skills corpus unions skills and skill
// groups; the occupation corpora union occupations and groups split by
// economy type. Snapshot order is preserved, which is what makes search
// tie-breaking stable.
func (s *Snapshot) buildCorpora() {
	skills := make([]search.Candidate, 0, len(s.Data.Skills)+len(s.Data.SkillGroups))
	for _, sk := range s.Data.Skills {
		skills = append(skills, search.Candidate{
			ID:          sk.ID,
			Label:       sk.Label,
			Description: sk.Description,
			AltLabels:   sk.AltLabels,
			Kind:        entity.KindSkill,
			Entity:      sk,
		})
	}
	for _, sg := range s.Data.SkillGroups {
		skills = append(skills, search.Candidate{
			ID:          sg.ID,
			Code:        sg.Code,
			Label:       sg.Label,
			Description: sg.Description,
			AltLabels:   sg.AltLabels,
			Kind:        entity.KindSkillGroup,
			Entity:      sg,
		})
	}

	var seen, unseen []search.Candidate
	for _, o := range s.Data.Occupations {
		c := search.Candidate{
			ID:          o.ID,
			Code:        o.Code,
			Label:       o.Label,
			Description: o.Description,
			AltLabels:   o.AltLabels,
			Kind:        entity.KindOccupation,
			Entity:      o,
		}
		if o.Economy == entity.EconomyUnseen {
			unseen = append(unseen, c)
		} else {
			seen = append(seen, c)
		}
	}
	for _, g := range s.Data.Groups {
		c := search.Candidate{
			ID:          g.ID,
			Code:        g.Code,
			Label:       g.Label,
			Description: g.Description,
			AltLabels:   g.AltLabels,
			Kind:        entity.KindGroup,
			Entity:      g,
		}
		if g.Economy == entity.EconomyUnseen {
			unseen = append(unseen, c)
		} else {
			seen = append(seen, c)
		}
	}

	s.corpora = map[search.Corpus][]search.Candidate{
		search.CorpusSkills:            skills,
		search.CorpusSeenOccupations:   seen,
		search.CorpusUnseenOccupations: unseen,
	}
}
