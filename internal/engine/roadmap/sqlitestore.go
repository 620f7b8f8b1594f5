package roadmap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS roadmap_careers (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	title         TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	difficulty    TEXT NOT NULL DEFAULT '',
	duration      TEXT NOT NULL DEFAULT '',
	market_demand TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS roadmap_milestones (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	career_id INTEGER NOT NULL REFERENCES roadmap_careers(id),
	title     TEXT NOT NULL,
	position  INTEGER NOT NULL,
	UNIQUE (career_id, position)
);
CREATE TABLE IF NOT EXISTS roadmap_skills (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT NOT NULL,
	name_key TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS roadmap_milestone_skills (
	milestone_id  INTEGER NOT NULL REFERENCES roadmap_milestones(id),
	skill_id      INTEGER NOT NULL REFERENCES roadmap_skills(id),
	resource_name TEXT NOT NULL DEFAULT '',
	resource_link TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (milestone_id, skill_id)
);
CREATE INDEX IF NOT EXISTS idx_roadmap_milestone_skills_skill ON roadmap_milestone_skills(skill_id);
`

// SQLiteStore persists the graph in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".go_roadmap", "roadmap.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	slog.Info("roadmap sqlite opened", slog.String("path", path))
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func isSQLiteUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const careerCols = `id, title, description, difficulty, duration, market_demand, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCareer(r rowScanner) (Career, error) {
	var c Career
	var created string
	if err := r.Scan(&c.ID, &c.Title, &c.Description, &c.Difficulty, &c.Duration, &c.MarketDemand, &created); err != nil {
		return c, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return c, nil
}

func (s *SQLiteStore) InsertCareer(ctx context.Context, c *Career) error {
	c.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO roadmap_careers (title, description, difficulty, duration, market_demand, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Title, c.Description, c.Difficulty, c.Duration, c.MarketDemand, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if isSQLiteUnique(err) {
		return fmt.Errorf("career %q: %w", c.Title, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert career: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) Career(ctx context.Context, id int64) (*Career, error) {
	c, err := scanSQLiteCareer(s.db.QueryRowContext(ctx,
		`SELECT `+careerCols+` FROM roadmap_careers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("career %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get career: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) CareerByTitle(ctx context.Context, title string) (*Career, error) {
	c, err := scanSQLiteCareer(s.db.QueryRowContext(ctx,
		`SELECT `+careerCols+` FROM roadmap_careers WHERE title = ?`, title))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("career %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get career: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) Careers(ctx context.Context) ([]Career, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+careerCols+` FROM roadmap_careers ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	defer rows.Close()

	var out []Career
	for rows.Next() {
		c, err := scanSQLiteCareer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan career: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteCareer(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM roadmap_milestone_skills
		 WHERE milestone_id IN (SELECT id FROM roadmap_milestones WHERE career_id = ?)`, id); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM roadmap_milestones WHERE career_id = ?`, id); err != nil {
		return fmt.Errorf("delete milestones: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM roadmap_careers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete career: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("career %d: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLiteStore) InsertMilestone(ctx context.Context, m *Milestone) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM roadmap_careers WHERE id = ?`, m.CareerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("career %d: %w", m.CareerID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check career: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO roadmap_milestones (career_id, title, position) VALUES (?, ?, ?)`,
		m.CareerID, m.Title, m.Order)
	if isSQLiteUnique(err) {
		return fmt.Errorf("milestone order %d in career %d: %w", m.Order, m.CareerID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert milestone: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) Milestone(ctx context.Context, id int64) (*Milestone, error) {
	var m Milestone
	err := s.db.QueryRowContext(ctx,
		`SELECT id, career_id, title, position FROM roadmap_milestones WHERE id = ?`, id,
	).Scan(&m.ID, &m.CareerID, &m.Title, &m.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("milestone %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) Milestones(ctx context.Context, careerID int64) ([]Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, career_id, title, position FROM roadmap_milestones
		 WHERE career_id = ? ORDER BY position`, careerID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var out []Milestone
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.CareerID, &m.Title, &m.Order); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertSkill(ctx context.Context, sk *Skill) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO roadmap_skills (name, name_key, category) VALUES (?, ?, ?)`,
		sk.Name, engine.NormalizeSkill(sk.Name), sk.Category)
	if isSQLiteUnique(err) {
		return fmt.Errorf("skill %q: %w", sk.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert skill: %w", err)
	}
	sk.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) Skill(ctx context.Context, id int64) (*Skill, error) {
	var sk Skill
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category FROM roadmap_skills WHERE id = ?`, id,
	).Scan(&sk.ID, &sk.Name, &sk.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("skill %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &sk, nil
}

func (s *SQLiteStore) SkillByName(ctx context.Context, name string) (*Skill, error) {
	var sk Skill
	// NOCASE and lower() only fold ASCII; name_key is folded in Go.
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category FROM roadmap_skills WHERE name_key = ?`, engine.NormalizeSkill(name),
	).Scan(&sk.ID, &sk.Name, &sk.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("skill %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &sk, nil
}

func (s *SQLiteStore) Skills(ctx context.Context) ([]Skill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category FROM roadmap_skills ORDER BY name COLLATE BINARY`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var out []Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Category); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Link(ctx context.Context, l Link) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM roadmap_milestones WHERE id = ?`, l.MilestoneID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("milestone %d: %w", l.MilestoneID, ErrNotFound)
		}
		return false, fmt.Errorf("check milestone: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM roadmap_skills WHERE id = ?`, l.SkillID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("skill %d: %w", l.SkillID, ErrNotFound)
		}
		return false, fmt.Errorf("check skill: %w", err)
	}

	name, link := resourceFields(l.Resource)
	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO roadmap_milestone_skills (milestone_id, skill_id, resource_name, resource_link)
		 VALUES (?, ?, ?, ?)`, l.MilestoneID, l.SkillID, name, link)
	if err != nil {
		return false, fmt.Errorf("insert link: %w", err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return n > 0, nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *SQLiteStore) Links(ctx context.Context, milestoneIDs []int64) ([]LinkedSkill, error) {
	if len(milestoneIDs) == 0 {
		return nil, nil
	}
	args := make([]any, len(milestoneIDs))
	for i, id := range milestoneIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ms.milestone_id, s.id, s.name, s.category, ms.resource_name, ms.resource_link
		 FROM roadmap_milestone_skills ms
		 JOIN roadmap_skills s ON s.id = ms.skill_id
		 WHERE ms.milestone_id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var out []LinkedSkill
	for rows.Next() {
		var ls LinkedSkill
		var rname, rlink string
		if err := rows.Scan(&ls.MilestoneID, &ls.Skill.ID, &ls.Skill.Name, &ls.Skill.Category, &rname, &rlink); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		ls.Resource = resourceOf(rname, rlink)
		out = append(out, ls)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountCareerMatches(ctx context.Context, lowerNames []string) ([]CareerMatch, error) {
	if len(lowerNames) == 0 {
		return nil, nil
	}
	args := make([]any, len(lowerNames))
	for i, n := range lowerNames {
		args[i] = engine.NormalizeSkill(n)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.title, c.description, c.difficulty, c.duration, c.market_demand, c.created_at,
		        COUNT(DISTINCT s.id)
		 FROM roadmap_careers c
		 JOIN roadmap_milestones m ON m.career_id = c.id
		 JOIN roadmap_milestone_skills ms ON ms.milestone_id = m.id
		 JOIN roadmap_skills s ON s.id = ms.skill_id
		 WHERE s.name_key IN (`+placeholders(len(args))+`)
		 GROUP BY c.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	defer rows.Close()

	var out []CareerMatch
	for rows.Next() {
		var cm CareerMatch
		var created string
		if err := rows.Scan(&cm.ID, &cm.Title, &cm.Description, &cm.Difficulty, &cm.Duration,
			&cm.MarketDemand, &created, &cm.Matches); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		cm.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, cm)
	}
	return out, rows.Err()
}
