// Package roadmap holds the career knowledge graph (career → ordered
// milestones → skills), its storage backends, the skill-gap matcher and the
// LLM-backed generator that fills the graph.
package roadmap

import "time"

// Career is a target role that owns an ordered list of milestones.
type Career struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Difficulty   string    `json:"difficulty,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	MarketDemand string    `json:"market_demand,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Milestone is one step of a career roadmap. Order is unique within the career.
type Milestone struct {
	ID       int64  `json:"id"`
	CareerID int64  `json:"career_id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

// Skill is a canonical skill. Name is unique under case-insensitive comparison.
type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Resource is a learning resource attached to a milestone-skill link.
type Resource struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Link associates a skill with a milestone.
type Link struct {
	MilestoneID int64     `json:"milestone_id"`
	SkillID     int64     `json:"skill_id"`
	Resource    *Resource `json:"resource,omitempty"`
}

// RoadmapSkill is a skill as shown inside a roadmap milestone.
type RoadmapSkill struct {
	Name     string    `json:"name"`
	Resource *Resource `json:"resource,omitempty"`
}

// RoadmapMilestone is a milestone annotated with its skills, sorted by name.
type RoadmapMilestone struct {
	Milestone
	Skills []RoadmapSkill `json:"skills"`
}

// SkillNames returns the display names of the milestone's skills.
func (m RoadmapMilestone) SkillNames() []string {
	out := make([]string, len(m.Skills))
	for i, s := range m.Skills {
		out[i] = s.Name
	}
	return out
}

// CareerMatch is a career with the number of distinct input skills it requires.
type CareerMatch struct {
	Career
	Matches int `json:"matches"`
}

// GapResult is the outcome of a skill-gap analysis.
type GapResult struct {
	Percentage int      `json:"percentage"`
	Have       []string `json:"have"`
	Need       []string `json:"need"`
}

// GeneratedSkill is a skill in a model-generated roadmap.
type GeneratedSkill struct {
	Name     string   `json:"name"`
	Resource Resource `json:"resource,omitzero"`
}

// GeneratedMilestone is one milestone of a model-generated roadmap.
type GeneratedMilestone struct {
	Title  string           `json:"title"`
	Skills []GeneratedSkill `json:"skills"`
}

// CareerSuggestion is a model-suggested career.
type CareerSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
