package roadmapserver

import "github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"

// CareerIDInput selects one stored career.
type CareerIDInput struct {
	CareerID int64 `json:"career_id" jsonschema:"Career ID (see career_list)"`
}

// CareerListOutput is the result of career_list.
type CareerListOutput struct {
	Careers []roadmap.Career `json:"careers"`
}

// CareerRoadmapOutput is a career with its ordered milestones and skills.
type CareerRoadmapOutput struct {
	Career     roadmap.Career             `json:"career"`
	Milestones []roadmap.RoadmapMilestone `json:"milestones"`
}

// RequiredSkillsInput selects a career and optionally a subset of its milestones.
type RequiredSkillsInput struct {
	CareerID     int64   `json:"career_id" jsonschema:"Career ID"`
	MilestoneIDs []int64 `json:"milestone_ids,omitempty" jsonschema:"Only count skills of these milestones (default: all milestones of the career)"`
}

// SkillNamesOutput is a sorted list of distinct skill names.
type SkillNamesOutput struct {
	Skills []string `json:"skills"`
}

// SkillGapInput scores a user's skills against a stored career or an inline roadmap.
type SkillGapInput struct {
	UserSkills   string                       `json:"user_skills" jsonschema:"Comma-separated skills the user already has, e.g. 'python, sql'"`
	CareerID     int64                        `json:"career_id,omitempty" jsonschema:"Stored career to compare against"`
	MilestoneIDs []int64                      `json:"milestone_ids,omitempty" jsonschema:"Restrict the stored career to these milestones"`
	Roadmap      []roadmap.GeneratedMilestone `json:"roadmap,omitempty" jsonschema:"Inline roadmap (as returned by roadmap_generate) used when career_id is not set"`
}

// CareerSearchInput lists skills to match careers against.
type CareerSearchInput struct {
	Skills    []string `json:"skills,omitempty" jsonschema:"Skill names"`
	SkillsCSV string   `json:"skills_csv,omitempty" jsonschema:"Alternative: comma-separated skill names"`
}

// CareerSearchOutput ranks careers by the number of requested skills they need.
type CareerSearchOutput struct {
	Matches []roadmap.CareerMatch `json:"matches"`
}

// RoadmapGenerateInput asks the model for a roadmap towards a career.
type RoadmapGenerateInput struct {
	CareerTitle  string `json:"career_title" jsonschema:"Target career, e.g. 'Frontend Developer'"`
	Save         bool   `json:"save,omitempty" jsonschema:"Store the generated roadmap as a new career"`
	Description  string `json:"description,omitempty" jsonschema:"Career description stored when save is true"`
	Difficulty   string `json:"difficulty,omitempty" jsonschema:"Difficulty stored when save is true"`
	Duration     string `json:"duration,omitempty" jsonschema:"Expected duration stored when save is true"`
	MarketDemand string `json:"market_demand,omitempty" jsonschema:"Market demand stored when save is true"`
}

// RoadmapGenerateOutput is a generated roadmap plus its flattened skill list.
type RoadmapGenerateOutput struct {
	CareerTitle    string                       `json:"career_title"`
	Milestones     []roadmap.GeneratedMilestone `json:"milestones"`
	RequiredSkills []string                     `json:"required_skills"`
	SavedCareerID  int64                        `json:"saved_career_id,omitempty"`
}

// CareerSuggestInput is the user profile career ideas are generated from.
type CareerSuggestInput struct {
	Interests string   `json:"interests" jsonschema:"Interests, free text or comma-separated"`
	Skills    string   `json:"skills,omitempty" jsonschema:"Current skills"`
	Pace      string   `json:"pace,omitempty" jsonschema:"Preferred learning pace (default: Balanced)"`
	LifeGoals []string `json:"life_goals,omitempty" jsonschema:"Life goals, e.g. remote work, high impact"`
}

// CareerSuggestOutput lists generated career ideas.
type CareerSuggestOutput struct {
	Careers []roadmap.CareerSuggestion `json:"careers"`
}

// InterestsFindInput holds answers to the five interest questions, in order:
// free weekend activity, fascinating topic, enjoyed tasks, new project idea,
// things the user is comfortable working with.
type InterestsFindInput struct {
	Answers []string `json:"answers" jsonschema:"Up to 5 answers in question order; blank answers count as not answered"`
}

// InterestsFindOutput lists professional interest areas.
type InterestsFindOutput struct {
	Interests []string `json:"interests"`
}

// ProjectPitchInput describes the milestone a practice project is pitched for.
// Skills come from milestone_id when it is set.
type ProjectPitchInput struct {
	Interests      string   `json:"interests,omitempty" jsonschema:"User interests"`
	MilestoneID    int64    `json:"milestone_id,omitempty" jsonschema:"Stored milestone; its title and skills are used"`
	MilestoneTitle string   `json:"milestone_title,omitempty" jsonschema:"Milestone title when milestone_id is not set"`
	Skills         []string `json:"skills,omitempty" jsonschema:"Skills to practise when milestone_id is not set"`
}

// ProjectPitchOutput is a short project idea.
type ProjectPitchOutput struct {
	Pitch  string   `json:"pitch"`
	Skills []string `json:"skills"`
}

// CareerAddInput creates a career.
type CareerAddInput struct {
	Title        string `json:"title" jsonschema:"Unique career title"`
	Description  string `json:"description,omitempty"`
	Difficulty   string `json:"difficulty,omitempty" jsonschema:"e.g. Beginner-Friendly, Intermediate, Advanced"`
	Duration     string `json:"duration,omitempty" jsonschema:"e.g. 6-8 months"`
	MarketDemand string `json:"market_demand,omitempty" jsonschema:"e.g. High, Very High"`
}

// MilestoneAddInput appends a milestone to a career.
type MilestoneAddInput struct {
	CareerID int64  `json:"career_id" jsonschema:"Career ID"`
	Title    string `json:"title" jsonschema:"Milestone title"`
	Order    int    `json:"order" jsonschema:"Position within the career, unique per career"`
}

// SkillAddInput creates a canonical skill.
type SkillAddInput struct {
	Name     string `json:"name" jsonschema:"Skill name, unique ignoring case"`
	Category string `json:"category,omitempty" jsonschema:"e.g. technical, soft, tool"`
}

// SkillLinkInput attaches a skill to a milestone. skill_name creates the
// skill when it does not exist yet.
type SkillLinkInput struct {
	MilestoneID  int64  `json:"milestone_id" jsonschema:"Milestone ID"`
	SkillID      int64  `json:"skill_id,omitempty" jsonschema:"Existing skill ID"`
	SkillName    string `json:"skill_name,omitempty" jsonschema:"Skill name, used when skill_id is not set"`
	ResourceName string `json:"resource_name,omitempty" jsonschema:"Learning resource name"`
	ResourceLink string `json:"resource_link,omitempty" jsonschema:"Learning resource URL"`
}

// SkillLinkOutput reports whether a new link was stored.
type SkillLinkOutput struct {
	MilestoneID int64 `json:"milestone_id"`
	SkillID     int64 `json:"skill_id"`
	Created     bool  `json:"created"`
}

// CareerRemoveOutput confirms a removal.
type CareerRemoveOutput struct {
	CareerID int64 `json:"career_id"`
	Removed  bool  `json:"removed"`
}
