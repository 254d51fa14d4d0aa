package memstore

import (
	"context"
	"testing"

	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

func fixture() store.Snapshot {
	return store.Snapshot{
		Language: "en",
		Occupations: []entity.Occupation{
			{ID: "1", Code: "0110", Label: "Officer", Economy: entity.EconomySeen},
			{ID: "2", Code: "I41_0_1", Label: "Childcare", Economy: entity.EconomyUnseen},
			{ID: "3", Code: "0112", Label: "General", Economy: entity.EconomySeen},
		},
		Groups: []entity.Group{
			{ID: "g1", Code: "011", Label: "Officers", Economy: entity.EconomySeen, Level: 2},
		},
		Skills: []entity.Skill{
			{ID: "s1", Label: "welding"},
			{ID: "s2", Label: "care work"},
		},
		SkillGroups: []entity.SkillGroup{
			{ID: "sg1", Code: "S1", Label: "crafts", Category: entity.CategorySkillsCompetencies},
		},
		Relations: []entity.Relation{
			{OccupationID: "1", SkillID: "s1", RelationType: "essential"},
			{OccupationID: "1", SkillID: "s2", RelationType: "related"},
			{OccupationID: "2", SkillID: "s2", RelationType: "related"},
		},
	}
}

func TestReplaceAndCounts(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Replace(ctx, fixture()); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := store.Counts{Occupations: 3, Groups: 1, Skills: 2, SkillGroups: 1, Relations: 3}
	if counts != want {
		t.Errorf("Counts = %+v, want %+v", counts, want)
	}
}

func TestOccupations_EconomyFilter(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Replace(ctx, fixture())

	seen, err := s.Occupations(ctx, store.Filter{Economy: entity.EconomySeen})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 seen occupations, got %d", len(seen))
	}

	unseen, _ := s.Occupations(ctx, store.Filter{Economy: entity.EconomyUnseen})
	if len(unseen) != 1 || unseen[0].Code != "I41_0_1" {
		t.Errorf("unexpected unseen set: %v", unseen)
	}
}

func TestOccupations_CodePrefixAndLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Replace(ctx, fixture())

	got, _ := s.Occupations(ctx, store.Filter{CodePrefix: "011"})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for prefix 011, got %d", len(got))
	}
	// Snapshot order is preserved.
	if got[0].Code != "0110" || got[1].Code != "0112" {
		t.Errorf("order not preserved: %v", got)
	}

	got, _ = s.Occupations(ctx, store.Filter{CodePrefix: "011", Limit: 1})
	if len(got) != 1 {
		t.Errorf("limit not honored, got %d", len(got))
	}
}

func TestSkills_LabelContains(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Replace(ctx, fixture())

	got, _ := s.Skills(ctx, store.Filter{LabelContains: "CARE"})
	if len(got) != 1 || got[0].ID != "s2" {
		t.Errorf("label filter should be case-insensitive: %v", got)
	}
}

func TestOccupationByCode(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Replace(ctx, fixture())

	o, ok, err := s.OccupationByCode(ctx, "0110")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if o.Label != "Officer" {
		t.Errorf("wrong occupation: %+v", o)
	}

	_, ok, _ = s.OccupationByCode(ctx, "9999")
	if ok {
		t.Error("expected miss for unknown code")
	}
}

func TestRelationsForOccupation(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Replace(ctx, fixture())

	rels, err := s.RelationsForOccupation(ctx, "1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 2 {
		t.Fatalf("expected 2 relations, got %d", len(rels))
	}
	if rels[0].RelationType != "essential" {
		t.Errorf("snapshot order not preserved: %v", rels)
	}
}

func TestReplace_SwapsWholesale(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Replace(ctx, fixture())
	s.Replace(ctx, store.Snapshot{
		Occupations: []entity.Occupation{{ID: "9", Code: "9999", Label: "New", Economy: entity.EconomySeen}},
	})

	if _, ok, _ := s.OccupationByCode(ctx, "0110"); ok {
		t.Error("old snapshot leaked through a replace")
	}
	counts, _ := s.Counts(ctx)
	if counts.Occupations != 1 || counts.Skills != 0 {
		t.Errorf("counts after replace: %+v", counts)
	}
}
