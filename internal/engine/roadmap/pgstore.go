package roadmap

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PGStore persists the graph in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PGStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("roadmap postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PGStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Release()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := conn.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func isPGUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanPGCareer(r pgx.Row) (Career, error) {
	var c Career
	err := r.Scan(&c.ID, &c.Title, &c.Description, &c.Difficulty, &c.Duration, &c.MarketDemand, &c.CreatedAt)
	return c, err
}

func (s *PGStore) InsertCareer(ctx context.Context, c *Career) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO roadmap_careers (title, description, difficulty, duration, market_demand)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		c.Title, c.Description, c.Difficulty, c.Duration, c.MarketDemand,
	).Scan(&c.ID, &c.CreatedAt)
	if isPGUnique(err) {
		return fmt.Errorf("career %q: %w", c.Title, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert career: %w", err)
	}
	return nil
}

func (s *PGStore) Career(ctx context.Context, id int64) (*Career, error) {
	c, err := scanPGCareer(s.pool.QueryRow(ctx,
		`SELECT `+careerCols+` FROM roadmap_careers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("career %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get career: %w", err)
	}
	return &c, nil
}

func (s *PGStore) CareerByTitle(ctx context.Context, title string) (*Career, error) {
	c, err := scanPGCareer(s.pool.QueryRow(ctx,
		`SELECT `+careerCols+` FROM roadmap_careers WHERE title = $1`, title))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("career %q: %w", title, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get career: %w", err)
	}
	return &c, nil
}

func (s *PGStore) Careers(ctx context.Context) ([]Career, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+careerCols+` FROM roadmap_careers ORDER BY title COLLATE "C"`)
	if err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	defer rows.Close()

	var out []Career
	for rows.Next() {
		c, err := scanPGCareer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan career: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) DeleteCareer(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM roadmap_milestone_skills
		 WHERE milestone_id IN (SELECT id FROM roadmap_milestones WHERE career_id = $1)`, id); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM roadmap_milestones WHERE career_id = $1`, id); err != nil {
		return fmt.Errorf("delete milestones: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM roadmap_careers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete career: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("career %d: %w", id, ErrNotFound)
	}
	return tx.Commit(ctx)
}

func (s *PGStore) InsertMilestone(ctx context.Context, m *Milestone) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roadmap_careers WHERE id = $1)`, m.CareerID).Scan(&exists); err != nil {
		return fmt.Errorf("check career: %w", err)
	}
	if !exists {
		return fmt.Errorf("career %d: %w", m.CareerID, ErrNotFound)
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO roadmap_milestones (career_id, title, position) VALUES ($1, $2, $3) RETURNING id`,
		m.CareerID, m.Title, m.Order,
	).Scan(&m.ID)
	if isPGUnique(err) {
		return fmt.Errorf("milestone order %d in career %d: %w", m.Order, m.CareerID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert milestone: %w", err)
	}
	return nil
}

func (s *PGStore) Milestone(ctx context.Context, id int64) (*Milestone, error) {
	var m Milestone
	err := s.pool.QueryRow(ctx,
		`SELECT id, career_id, title, position FROM roadmap_milestones WHERE id = $1`, id,
	).Scan(&m.ID, &m.CareerID, &m.Title, &m.Order)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("milestone %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return &m, nil
}

func (s *PGStore) Milestones(ctx context.Context, careerID int64) ([]Milestone, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, career_id, title, position FROM roadmap_milestones
		 WHERE career_id = $1 ORDER BY position`, careerID)
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

func (s *PGStore) InsertSkill(ctx context.Context, sk *Skill) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO roadmap_skills (name, name_key, category) VALUES ($1, $2, $3) RETURNING id`,
		sk.Name, engine.NormalizeSkill(sk.Name), sk.Category,
	).Scan(&sk.ID)
	if isPGUnique(err) {
		return fmt.Errorf("skill %q: %w", sk.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert skill: %w", err)
	}
	return nil
}

func (s *PGStore) Skill(ctx context.Context, id int64) (*Skill, error) {
	var sk Skill
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, category FROM roadmap_skills WHERE id = $1`, id,
	).Scan(&sk.ID, &sk.Name, &sk.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("skill %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &sk, nil
}

func (s *PGStore) SkillByName(ctx context.Context, name string) (*Skill, error) {
	var sk Skill
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, category FROM roadmap_skills WHERE name_key = $1`, engine.NormalizeSkill(name),
	).Scan(&sk.ID, &sk.Name, &sk.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("skill %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &sk, nil
}

func (s *PGStore) Skills(ctx context.Context) ([]Skill, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, category FROM roadmap_skills ORDER BY name COLLATE "C"`)
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

func (s *PGStore) Link(ctx context.Context, l Link) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var milestoneOK, skillOK bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roadmap_milestones WHERE id = $1),
		        EXISTS (SELECT 1 FROM roadmap_skills WHERE id = $2)`,
		l.MilestoneID, l.SkillID,
	).Scan(&milestoneOK, &skillOK); err != nil {
		return false, fmt.Errorf("check link ends: %w", err)
	}
	if !milestoneOK {
		return false, fmt.Errorf("milestone %d: %w", l.MilestoneID, ErrNotFound)
	}
	if !skillOK {
		return false, fmt.Errorf("skill %d: %w", l.SkillID, ErrNotFound)
	}

	name, link := resourceFields(l.Resource)
	tag, err := tx.Exec(ctx,
		`INSERT INTO roadmap_milestone_skills (milestone_id, skill_id, resource_name, resource_link)
		 VALUES ($1, $2, $3, $4) ON CONFLICT (milestone_id, skill_id) DO NOTHING`,
		l.MilestoneID, l.SkillID, name, link)
	if err != nil {
		return false, fmt.Errorf("insert link: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PGStore) Links(ctx context.Context, milestoneIDs []int64) ([]LinkedSkill, error) {
	if len(milestoneIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT ms.milestone_id, s.id, s.name, s.category, ms.resource_name, ms.resource_link
		 FROM roadmap_milestone_skills ms
		 JOIN roadmap_skills s ON s.id = ms.skill_id
		 WHERE ms.milestone_id = ANY($1)`, milestoneIDs)
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

func (s *PGStore) CountCareerMatches(ctx context.Context, lowerNames []string) ([]CareerMatch, error) {
	if len(lowerNames) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.title, c.description, c.difficulty, c.duration, c.market_demand, c.created_at,
		        COUNT(DISTINCT s.id)
		 FROM roadmap_careers c
		 JOIN roadmap_milestones m ON m.career_id = c.id
		 JOIN roadmap_milestone_skills ms ON ms.milestone_id = m.id
		 JOIN roadmap_skills s ON s.id = ms.skill_id
		 WHERE s.name_key = ANY($1)
		 GROUP BY c.id`, normalizeKeys(lowerNames))
	if err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	defer rows.Close()

	var out []CareerMatch
	for rows.Next() {
		var cm CareerMatch
		if err := rows.Scan(&cm.ID, &cm.Title, &cm.Description, &cm.Difficulty, &cm.Duration,
			&cm.MarketDemand, &cm.CreatedAt, &cm.Matches); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}
