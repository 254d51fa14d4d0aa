// Package sqlite implements store.Store on an in-memory SQLite database.
//
// The engine makes no durability promises — snapshots live for the process
// lifetime only — so the database is always opened in-memory. What SQLite
// buys over the map store is real filter pushdown: economy, code-prefix and
// label predicates execute as SQL instead of linear scans.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open creates a fresh in-memory store.
func Open(ctx context.Context) (store.Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// The in-memory database vanishes if all connections close.
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// Close closes the database connection, discarding the snapshot.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS occupations (
	seq INTEGER PRIMARY KEY,
	id TEXT,
	code TEXT NOT NULL,
	label TEXT NOT NULL,
	description TEXT,
	alt_labels TEXT,
	economy TEXT NOT NULL,
	group_code TEXT,
	occupation_type TEXT,
	is_localized INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_occupations_code ON occupations(code);

CREATE TABLE IF NOT EXISTS occupation_groups (
	seq INTEGER PRIMARY KEY,
	id TEXT,
	code TEXT NOT NULL,
	label TEXT NOT NULL,
	description TEXT,
	alt_labels TEXT,
	economy TEXT NOT NULL,
	level INTEGER NOT NULL,
	group_type TEXT,
	is_localized INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS skills (
	seq INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	label TEXT NOT NULL,
	description TEXT,
	alt_labels TEXT,
	skill_type TEXT,
	reuse_level TEXT,
	is_localized INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS skill_groups (
	seq INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	code TEXT,
	label TEXT NOT NULL,
	description TEXT,
	alt_labels TEXT,
	category TEXT,
	is_localized INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS relations (
	seq INTEGER PRIMARY KEY,
	occupation_id TEXT NOT NULL,
	skill_id TEXT NOT NULL,
	relation_type TEXT,
	signalling_value REAL,
	signalling_value_label TEXT
);
CREATE INDEX IF NOT EXISTS idx_relations_occupation ON relations(occupation_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Replace swaps the full content inside one transaction; readers never see a
// half-replaced snapshot.
func (s *sqliteStore) Replace(ctx context.Context, snap store.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"occupations", "occupation_groups", "skills", "skill_groups", "relations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, o := range snap.Occupations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO occupations (seq, id, code, label, description, alt_labels, economy, group_code, occupation_type, is_localized)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, o.ID, o.Code, o.Label, o.Description, o.AltLabels, string(o.Economy), o.GroupCode, o.OccupationType, boolInt(o.IsLocalized)); err != nil {
			return fmt.Errorf("insert occupation: %w", err)
		}
	}
	for i, g := range snap.Groups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO occupation_groups (seq, id, code, label, description, alt_labels, economy, level, group_type, is_localized)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, g.ID, g.Code, g.Label, g.Description, g.AltLabels, string(g.Economy), g.Level, g.GroupType, boolInt(g.IsLocalized)); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
	}
	for i, sk := range snap.Skills {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skills (seq, id, label, description, alt_labels, skill_type, reuse_level, is_localized)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, sk.ID, sk.Label, sk.Description, sk.AltLabels, sk.SkillType, sk.ReuseLevel, boolInt(sk.IsLocalized)); err != nil {
			return fmt.Errorf("insert skill: %w", err)
		}
	}
	for i, sg := range snap.SkillGroups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skill_groups (seq, id, code, label, description, alt_labels, category, is_localized)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			i, sg.ID, sg.Code, sg.Label, sg.Description, sg.AltLabels, string(sg.Category), boolInt(sg.IsLocalized)); err != nil {
			return fmt.Errorf("insert skill group: %w", err)
		}
	}
	for i, r := range snap.Relations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO relations (seq, occupation_id, skill_id, relation_type, signalling_value, signalling_value_label)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			i, r.OccupationID, r.SkillID, r.RelationType, r.SignallingValue, r.SignallingValueLabel); err != nil {
			return fmt.Errorf("insert relation: %w", err)
		}
	}

	return tx.Commit()
}

// filterClause builds the shared WHERE/LIMIT tail for filterable tables.
// hasEconomy and hasCode tell which predicates the table supports.
func filterClause(f store.Filter, hasEconomy, hasCode bool) (string, []any) {
	var conds []string
	var args []any
	if hasEconomy && f.Economy != "" {
		conds = append(conds, "economy = ?")
		args = append(args, string(f.Economy))
	}
	if hasCode && f.CodePrefix != "" {
		conds = append(conds, "code LIKE ? ESCAPE '\\'")
		args = append(args, escapeLike(f.CodePrefix)+"%")
	}
	if f.LabelContains != "" {
		conds = append(conds, "LOWER(label) LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(strings.ToLower(f.LabelContains))+"%")
	}
	clause := ""
	if len(conds) > 0 {
		clause = " WHERE " + strings.Join(conds, " AND ")
	}
	clause += " ORDER BY seq"
	if f.Limit > 0 {
		clause += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return clause, args
}

// Occupations returns occupations matching the filter, in snapshot order.
func (s *sqliteStore) Occupations(ctx context.Context, f store.Filter) ([]entity.Occupation, error) {
	clause, args := filterClause(f, true, true)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, label, description, alt_labels, economy, group_code, occupation_type, is_localized FROM occupations`+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Occupation
	for rows.Next() {
		var o entity.Occupation
		var economy string
		var localized int
		if err := rows.Scan(&o.ID, &o.Code, &o.Label, &o.Description, &o.AltLabels, &economy, &o.GroupCode, &o.OccupationType, &localized); err != nil {
			return nil, err
		}
		o.Economy = entity.Economy(economy)
		o.IsLocalized = localized != 0
		out = append(out, o)
	}
	return out, rows.Err()
}

// Groups returns occupation groups matching the filter, in snapshot order.
func (s *sqliteStore) Groups(ctx context.Context, f store.Filter) ([]entity.Group, error) {
	clause, args := filterClause(f, true, true)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, label, description, alt_labels, economy, level, group_type, is_localized FROM occupation_groups`+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Group
	for rows.Next() {
		var g entity.Group
		var economy string
		var localized int
		if err := rows.Scan(&g.ID, &g.Code, &g.Label, &g.Description, &g.AltLabels, &economy, &g.Level, &g.GroupType, &localized); err != nil {
			return nil, err
		}
		g.Economy = entity.Economy(economy)
		g.IsLocalized = localized != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

// Skills returns skills matching the filter, in snapshot order.
func (s *sqliteStore) Skills(ctx context.Context, f store.Filter) ([]entity.Skill, error) {
	clause, args := filterClause(f, false, false)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, description, alt_labels, skill_type, reuse_level, is_localized FROM skills`+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Skill
	for rows.Next() {
		var sk entity.Skill
		var localized int
		if err := rows.Scan(&sk.ID, &sk.Label, &sk.Description, &sk.AltLabels, &sk.SkillType, &sk.ReuseLevel, &localized); err != nil {
			return nil, err
		}
		sk.IsLocalized = localized != 0
		out = append(out, sk)
	}
	return out, rows.Err()
}

// SkillGroups returns skill groups matching the filter, in snapshot order.
func (s *sqliteStore) SkillGroups(ctx context.Context, f store.Filter) ([]entity.SkillGroup, error) {
	clause, args := filterClause(f, false, true)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, label, description, alt_labels, category, is_localized FROM skill_groups`+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.SkillGroup
	for rows.Next() {
		var sg entity.SkillGroup
		var category string
		var localized int
		if err := rows.Scan(&sg.ID, &sg.Code, &sg.Label, &sg.Description, &sg.AltLabels, &category, &localized); err != nil {
			return nil, err
		}
		sg.Category = entity.Category(category)
		sg.IsLocalized = localized != 0
		out = append(out, sg)
	}
	return out, rows.Err()
}

// OccupationByCode returns the occupation with the given code, if any.
// Duplicate codes resolve to the last inserted row, matching the map store.
func (s *sqliteStore) OccupationByCode(ctx context.Context, code string) (entity.Occupation, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, label, description, alt_labels, economy, group_code, occupation_type, is_localized
		 FROM occupations WHERE code = ? ORDER BY seq DESC LIMIT 1`, code)

	var o entity.Occupation
	var economy string
	var localized int
	err := row.Scan(&o.ID, &o.Code, &o.Label, &o.Description, &o.AltLabels, &economy, &o.GroupCode, &o.OccupationType, &localized)
	if err == sql.ErrNoRows {
		return entity.Occupation{}, false, nil
	}
	if err != nil {
		return entity.Occupation{}, false, err
	}
	o.Economy = entity.Economy(economy)
	o.IsLocalized = localized != 0
	return o, true, nil
}

// RelationsForOccupation returns the skill relations of one occupation, in
// snapshot order.
func (s *sqliteStore) RelationsForOccupation(ctx context.Context, occupationID string) ([]entity.Relation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT occupation_id, skill_id, relation_type, signalling_value, signalling_value_label
		 FROM relations WHERE occupation_id = ? ORDER BY seq`, occupationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Relation
	for rows.Next() {
		var r entity.Relation
		if err := rows.Scan(&r.OccupationID, &r.SkillID, &r.RelationType, &r.SignallingValue, &r.SignallingValueLabel); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Counts implements store.Store.
func (s *sqliteStore) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"occupations", &c.Occupations},
		{"occupation_groups", &c.Groups},
		{"skills", &c.Skills},
		{"skill_groups", &c.SkillGroups},
		{"relations", &c.Relations},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dst); err != nil {
			return store.Counts{}, err
		}
	}
	return c, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
