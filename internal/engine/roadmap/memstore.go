package roadmap

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

type linkKey struct{ milestone, skill int64 }

// MemStore keeps the graph in process memory. Used for tests and for
// running without a database (STORE_DRIVER=memory).
type MemStore struct {
	mu         sync.RWMutex
	nextID     int64
	careers    map[int64]Career
	milestones map[int64]Milestone
	skills     map[int64]Skill
	skillNames map[string]int64 // NormalizeSkill(name) → id
	links      map[linkKey]*Resource
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		careers:    make(map[int64]Career),
		milestones: make(map[int64]Milestone),
		skills:     make(map[int64]Skill),
		skillNames: make(map[string]int64),
		links:      make(map[linkKey]*Resource),
	}
}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemStore) InsertCareer(_ context.Context, c *Career) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.careers {
		if existing.Title == c.Title {
			return fmt.Errorf("career %q: %w", c.Title, ErrDuplicate)
		}
	}
	c.ID = s.id()
	c.CreatedAt = time.Now().UTC()
	s.careers[c.ID] = *c
	return nil
}

func (s *MemStore) Career(_ context.Context, id int64) (*Career, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.careers[id]
	if !ok {
		return nil, fmt.Errorf("career %d: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (s *MemStore) CareerByTitle(_ context.Context, title string) (*Career, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.careers {
		if c.Title == title {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("career %q: %w", title, ErrNotFound)
}

func (s *MemStore) Careers(_ context.Context) ([]Career, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Career, 0, len(s.careers))
	for _, c := range s.careers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemStore) DeleteCareer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.careers[id]; !ok {
		return fmt.Errorf("career %d: %w", id, ErrNotFound)
	}
	for mid, m := range s.milestones {
		if m.CareerID != id {
			continue
		}
		for k := range s.links {
			if k.milestone == mid {
				delete(s.links, k)
			}
		}
		delete(s.milestones, mid)
	}
	delete(s.careers, id)
	return nil
}

func (s *MemStore) InsertMilestone(_ context.Context, m *Milestone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.careers[m.CareerID]; !ok {
		return fmt.Errorf("career %d: %w", m.CareerID, ErrNotFound)
	}
	for _, existing := range s.milestones {
		if existing.CareerID == m.CareerID && existing.Order == m.Order {
			return fmt.Errorf("milestone order %d in career %d: %w", m.Order, m.CareerID, ErrDuplicate)
		}
	}
	m.ID = s.id()
	s.milestones[m.ID] = *m
	return nil
}

func (s *MemStore) Milestone(_ context.Context, id int64) (*Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.milestones[id]
	if !ok {
		return nil, fmt.Errorf("milestone %d: %w", id, ErrNotFound)
	}
	return &m, nil
}

func (s *MemStore) Milestones(_ context.Context, careerID int64) ([]Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Milestone
	for _, m := range s.milestones {
		if m.CareerID == careerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *MemStore) InsertSkill(_ context.Context, sk *Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := engine.NormalizeSkill(sk.Name)
	if _, ok := s.skillNames[key]; ok {
		return fmt.Errorf("skill %q: %w", sk.Name, ErrDuplicate)
	}
	sk.ID = s.id()
	s.skills[sk.ID] = *sk
	s.skillNames[key] = sk.ID
	return nil
}

func (s *MemStore) Skill(_ context.Context, id int64) (*Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sk, ok := s.skills[id]
	if !ok {
		return nil, fmt.Errorf("skill %d: %w", id, ErrNotFound)
	}
	return &sk, nil
}

func (s *MemStore) SkillByName(_ context.Context, name string) (*Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.skillNames[engine.NormalizeSkill(name)]
	if !ok {
		return nil, fmt.Errorf("skill %q: %w", name, ErrNotFound)
	}
	sk := s.skills[id]
	return &sk, nil
}

func (s *MemStore) Skills(_ context.Context) ([]Skill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		out = append(out, sk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) Link(_ context.Context, l Link) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.milestones[l.MilestoneID]; !ok {
		return false, fmt.Errorf("milestone %d: %w", l.MilestoneID, ErrNotFound)
	}
	if _, ok := s.skills[l.SkillID]; !ok {
		return false, fmt.Errorf("skill %d: %w", l.SkillID, ErrNotFound)
	}
	k := linkKey{l.MilestoneID, l.SkillID}
	if _, ok := s.links[k]; ok {
		return false, nil
	}
	var res *Resource
	if l.Resource != nil {
		r := *l.Resource
		res = &r
	}
	s.links[k] = res
	return true, nil
}

func (s *MemStore) Links(_ context.Context, milestoneIDs []int64) ([]LinkedSkill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[int64]bool, len(milestoneIDs))
	for _, id := range milestoneIDs {
		want[id] = true
	}
	var out []LinkedSkill
	for k, res := range s.links {
		if !want[k.milestone] {
			continue
		}
		ls := LinkedSkill{MilestoneID: k.milestone, Skill: s.skills[k.skill]}
		if res != nil {
			r := *res
			ls.Resource = &r
		}
		out = append(out, ls)
	}
	return out, nil
}

func (s *MemStore) CountCareerMatches(_ context.Context, lowerNames []string) ([]CareerMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[int64]bool)
	for _, n := range lowerNames {
		if id, ok := s.skillNames[engine.NormalizeSkill(n)]; ok {
			wanted[id] = true
		}
	}

	matched := make(map[int64]map[int64]bool) // career → skill set
	for k := range s.links {
		if !wanted[k.skill] {
			continue
		}
		cid := s.milestones[k.milestone].CareerID
		if matched[cid] == nil {
			matched[cid] = make(map[int64]bool)
		}
		matched[cid][k.skill] = true
	}

	out := make([]CareerMatch, 0, len(matched))
	for cid, skills := range matched {
		out = append(out, CareerMatch{Career: s.careers[cid], Matches: len(skills)})
	}
	return out, nil
}

func (s *MemStore) Close() error { return nil }
