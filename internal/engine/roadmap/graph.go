package roadmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

// Graph is the roadmap graph model over a Store. Reads go straight to the
// store; structural mutations of one career are serialized by a per-career
// lock, different careers proceed in parallel.
type Graph struct {
	store       Store
	careerLocks sync.Map // career id → *sync.Mutex
	skillMu     sync.Mutex
}

// NewGraph wraps store.
func NewGraph(store Store) *Graph {
	return &Graph{store: store}
}

// Store returns the underlying store.
func (g *Graph) Store() Store { return g.store }

func (g *Graph) lockCareer(id int64) func() {
	v, _ := g.careerLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// AddCareer creates a career. Titles are unique as stored (case-sensitive).
func (g *Graph) AddCareer(ctx context.Context, c Career) (*Career, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return nil, fmt.Errorf("add career: title is required: %w", ErrInvalidInput)
	}
	if err := g.store.InsertCareer(ctx, &c); err != nil {
		return nil, fmt.Errorf("add career: %w", err)
	}
	return &c, nil
}

// Career returns one career.
func (g *Graph) Career(ctx context.Context, id int64) (*Career, error) {
	return g.store.Career(ctx, id)
}

// Careers returns all careers ordered by title.
func (g *Graph) Careers(ctx context.Context) ([]Career, error) {
	return g.store.Careers(ctx)
}

// AddMilestone appends a milestone to a career. Order must be unique in the career.
func (g *Graph) AddMilestone(ctx context.Context, careerID int64, title string, order int) (*Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("add milestone: title is required: %w", ErrInvalidInput)
	}
	unlock := g.lockCareer(careerID)
	defer unlock()

	m := Milestone{CareerID: careerID, Title: title, Order: order}
	if err := g.store.InsertMilestone(ctx, &m); err != nil {
		return nil, fmt.Errorf("add milestone: %w", err)
	}
	return &m, nil
}

// AddSkill creates a canonical skill; a case-insensitive name clash is ErrDuplicate.
func (g *Graph) AddSkill(ctx context.Context, name, category string) (*Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("add skill: name is required: %w", ErrInvalidInput)
	}
	s := Skill{Name: name, Category: strings.TrimSpace(category)}
	if err := g.store.InsertSkill(ctx, &s); err != nil {
		return nil, fmt.Errorf("add skill: %w", err)
	}
	return &s, nil
}

// EnsureSkill returns the skill named name, creating it when missing.
func (g *Graph) EnsureSkill(ctx context.Context, name, category string) (*Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("ensure skill: name is required: %w", ErrInvalidInput)
	}
	g.skillMu.Lock()
	defer g.skillMu.Unlock()

	s, err := g.store.SkillByName(ctx, name)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("ensure skill: %w", err)
	}
	return g.AddSkill(ctx, name, category)
}

// Skills returns all canonical skills ordered by name.
func (g *Graph) Skills(ctx context.Context) ([]Skill, error) {
	return g.store.Skills(ctx)
}

// LinkSkillToMilestone associates a skill with a milestone. Linking an
// existing pair is a no-op and reports created=false.
func (g *Graph) LinkSkillToMilestone(ctx context.Context, milestoneID, skillID int64, res *Resource) (bool, error) {
	m, err := g.store.Milestone(ctx, milestoneID)
	if err != nil {
		return false, fmt.Errorf("link skill: %w", err)
	}
	unlock := g.lockCareer(m.CareerID)
	defer unlock()

	created, err := g.store.Link(ctx, Link{MilestoneID: milestoneID, SkillID: skillID, Resource: res})
	if err != nil {
		return false, fmt.Errorf("link skill: %w", err)
	}
	return created, nil
}

// RemoveCareer deletes a career together with its milestones and links.
func (g *Graph) RemoveCareer(ctx context.Context, careerID int64) error {
	unlock := g.lockCareer(careerID)
	defer unlock()
	if err := g.store.DeleteCareer(ctx, careerID); err != nil {
		return fmt.Errorf("remove career: %w", err)
	}
	return nil
}

// GetRoadmap returns the career's milestones in ascending order, each with
// its skills sorted by name.
func (g *Graph) GetRoadmap(ctx context.Context, careerID int64) ([]RoadmapMilestone, error) {
	if _, err := g.store.Career(ctx, careerID); err != nil {
		return nil, fmt.Errorf("get roadmap: %w", err)
	}
	ms, err := g.store.Milestones(ctx, careerID)
	if err != nil {
		return nil, fmt.Errorf("get roadmap: %w", err)
	}
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Order < ms[j].Order })

	ids := make([]int64, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
	}
	links, err := g.store.Links(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get roadmap: %w", err)
	}
	byMilestone := make(map[int64][]RoadmapSkill, len(ms))
	for _, l := range links {
		byMilestone[l.MilestoneID] = append(byMilestone[l.MilestoneID], RoadmapSkill{Name: l.Skill.Name, Resource: l.Resource})
	}

	out := make([]RoadmapMilestone, len(ms))
	for i, m := range ms {
		skills := byMilestone[m.ID]
		sort.Slice(skills, func(a, b int) bool { return skills[a].Name < skills[b].Name })
		if skills == nil {
			skills = []RoadmapSkill{}
		}
		out[i] = RoadmapMilestone{Milestone: m, Skills: skills}
	}
	return out, nil
}

// RequiredSkillNames returns the union of skill names over the selected
// milestones of a career, or all of them when none are given. Names are
// de-duplicated ignoring case and keep their stored casing. Milestone IDs
// that do not belong to the career are ErrNotFound.
func (g *Graph) RequiredSkillNames(ctx context.Context, careerID int64, milestoneIDs ...int64) ([]string, error) {
	if _, err := g.store.Career(ctx, careerID); err != nil {
		return nil, fmt.Errorf("required skills: %w", err)
	}
	ms, err := g.store.Milestones(ctx, careerID)
	if err != nil {
		return nil, fmt.Errorf("required skills: %w", err)
	}

	ids := make([]int64, 0, len(ms))
	if len(milestoneIDs) == 0 {
		for _, m := range ms {
			ids = append(ids, m.ID)
		}
	} else {
		own := make(map[int64]bool, len(ms))
		for _, m := range ms {
			own[m.ID] = true
		}
		for _, id := range milestoneIDs {
			if !own[id] {
				return nil, fmt.Errorf("required skills: milestone %d of career %d: %w", id, careerID, ErrNotFound)
			}
			ids = append(ids, id)
		}
	}

	links, err := g.store.Links(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("required skills: %w", err)
	}
	set := engine.NewSkillSet()
	for _, l := range links {
		set.Add(l.Skill.Name)
	}
	return set.Names(), nil
}

// SearchCareersBySkills ranks careers by how many distinct input skills they
// require, highest first, ties broken by ascending title. Skill names compare
// case-insensitively; careers with no match are left out.
func (g *Graph) SearchCareersBySkills(ctx context.Context, skills []string) ([]CareerMatch, error) {
	keys := engine.NewSkillSet(skills...).Keys()
	if len(keys) == 0 {
		return []CareerMatch{}, nil
	}
	matches, err := g.store.CountCareerMatches(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("search careers: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Matches != matches[j].Matches {
			return matches[i].Matches > matches[j].Matches
		}
		return matches[i].Title < matches[j].Title
	})
	if matches == nil {
		matches = []CareerMatch{}
	}
	return matches, nil
}

// AnalyzeCareer scores userSkills against the skills required by a career
// (or the selected milestones of it).
func (g *Graph) AnalyzeCareer(ctx context.Context, careerID int64, milestoneIDs []int64, userSkills string) (*GapResult, error) {
	required, err := g.RequiredSkillNames(ctx, careerID, milestoneIDs...)
	if err != nil {
		return nil, err
	}
	return Analyze(userSkills, required)
}

// ImportRoadmap stores a generated roadmap as a new career. Milestones are
// numbered from 1 in the given order; skills are matched to canonical
// skills by name and created when missing.
//
// The career lock is held until the import completes or is rolled back, so
// milestone_add on the new career waits for it. A failed import deletes the
// career; canonical skills it created are kept.
func (g *Graph) ImportRoadmap(ctx context.Context, c Career, milestones []GeneratedMilestone) (*Career, error) {
	if len(milestones) == 0 {
		return nil, fmt.Errorf("import roadmap: no milestones: %w", ErrInvalidInput)
	}
	career, err := g.AddCareer(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("import roadmap: %w", err)
	}
	unlock := g.lockCareer(career.ID)
	defer unlock()

	if err := g.importMilestones(ctx, career.ID, milestones); err != nil {
		if derr := g.store.DeleteCareer(context.WithoutCancel(ctx), career.ID); derr != nil {
			slog.Warn("import roadmap: cleanup failed", slog.Int64("career_id", career.ID), slog.Any("error", derr))
		}
		return nil, fmt.Errorf("import roadmap: %w", err)
	}

	engine.Incr(engine.MetricRoadmapImports)
	slog.Info("roadmap imported", slog.String("career", career.Title), slog.Int("milestones", len(milestones)))
	return career, nil
}

// importMilestones runs with the career lock held.
func (g *Graph) importMilestones(ctx context.Context, careerID int64, milestones []GeneratedMilestone) error {
	for i, gm := range milestones {
		title := strings.TrimSpace(gm.Title)
		if title == "" {
			title = fmt.Sprintf("Milestone %d", i+1)
		}
		m := Milestone{CareerID: careerID, Title: title, Order: i + 1}
		if err := g.store.InsertMilestone(ctx, &m); err != nil {
			return fmt.Errorf("add milestone: %w", err)
		}
		for _, gs := range gm.Skills {
			if strings.TrimSpace(gs.Name) == "" {
				continue
			}
			s, err := g.EnsureSkill(ctx, gs.Name, "")
			if err != nil {
				return err
			}
			l := Link{MilestoneID: m.ID, SkillID: s.ID, Resource: resourceOf(gs.Resource.Name, gs.Resource.Link)}
			if _, err := g.store.Link(ctx, l); err != nil {
				return fmt.Errorf("link skill: %w", err)
			}
		}
	}
	return nil
}
