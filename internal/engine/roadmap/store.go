package roadmap

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

// Store is the persistence boundary of the roadmap graph.
// Implementations are safe for concurrent use and map their driver errors
// onto ErrNotFound and ErrDuplicate.
type Store interface {
	// InsertCareer stores c and fills in ID and CreatedAt.
	InsertCareer(ctx context.Context, c *Career) error
	Career(ctx context.Context, id int64) (*Career, error)
	CareerByTitle(ctx context.Context, title string) (*Career, error)
	// Careers returns all careers ordered by title.
	Careers(ctx context.Context) ([]Career, error)
	// DeleteCareer removes the career, its milestones and their skill links.
	DeleteCareer(ctx context.Context, id int64) error

	// InsertMilestone stores m and fills in ID. The career must exist.
	InsertMilestone(ctx context.Context, m *Milestone) error
	Milestone(ctx context.Context, id int64) (*Milestone, error)
	// Milestones returns the career's milestones ordered by Order.
	Milestones(ctx context.Context, careerID int64) ([]Milestone, error)

	// InsertSkill stores s and fills in ID.
	InsertSkill(ctx context.Context, s *Skill) error
	Skill(ctx context.Context, id int64) (*Skill, error)
	// SkillByName looks a skill up by its engine.NormalizeSkill key, so the
	// comparison folds Unicode case the way Go does, not the database.
	SkillByName(ctx context.Context, name string) (*Skill, error)
	// Skills returns all skills ordered by name.
	Skills(ctx context.Context) ([]Skill, error)

	// Link associates a skill with a milestone. An existing pair is left
	// untouched and reported as created=false.
	Link(ctx context.Context, l Link) (created bool, err error)
	// Links returns the skills linked to the given milestones.
	Links(ctx context.Context, milestoneIDs []int64) ([]LinkedSkill, error)

	// CountCareerMatches counts, per career, the distinct skills whose
	// normalized name is in lowerNames. Careers with no match are omitted.
	CountCareerMatches(ctx context.Context, lowerNames []string) ([]CareerMatch, error)

	Close() error
}

func normalizeKeys(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = engine.NormalizeSkill(n)
	}
	return out
}

// LinkedSkill is a skill reached through a milestone link.
type LinkedSkill struct {
	MilestoneID int64
	Skill       Skill
	Resource    *Resource
}

// OpenStore opens the backend selected by c.Driver().
func OpenStore(ctx context.Context, c engine.Config) (Store, error) {
	switch d := c.Driver(); d {
	case engine.DriverMemory:
		return NewMemStore(), nil
	case engine.DriverSQLite:
		return OpenSQLite(ctx, c.SQLitePath)
	case engine.DriverPostgres:
		return ConnectPostgres(ctx, c.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", d)
	}
}

func resourceOf(name, link string) *Resource {
	if name == "" && link == "" {
		return nil
	}
	return &Resource{Name: name, Link: link}
}

func resourceFields(r *Resource) (string, string) {
	if r == nil {
		return "", ""
	}
	return r.Name, r.Link
}
