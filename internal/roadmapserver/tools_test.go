package roadmapserver

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
)

type stubLLM struct{ reply string }

func (s *stubLLM) Complete(context.Context, string) (string, error) { return s.reply, nil }

type testEnv struct {
	cs  *mcp.ClientSession
	g   *roadmap.Graph
	llm *stubLLM
}

// newTestEnv connects a client to a server backed by an in-memory graph.
func newTestEnv(t *testing.T, seed bool) *testEnv {
	t.Helper()
	ctx := context.Background()

	g := roadmap.NewGraph(roadmap.NewMemStore())
	if seed {
		_, err := roadmap.Seed(ctx, g)
		require.NoError(t, err)
	}
	llm := &stubLLM{}

	server := mcp.NewServer(&mcp.Implementation{Name: "go_roadmap", Version: "test"}, nil)
	RegisterTools(server, g, roadmap.NewGenerator(llm, nil, nil))

	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return &testEnv{cs: cs, g: g, llm: llm}
}

func toolText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func (e *testEnv) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := e.cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func callTool[T any](t *testing.T, e *testEnv, name string, args map[string]any) T {
	t.Helper()
	res := e.call(t, name, args)
	require.False(t, res.IsError, toolText(res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(toolText(res)), &out))
	return out
}

func callToolErr(t *testing.T, e *testEnv, name string, args map[string]any) string {
	t.Helper()
	res := e.call(t, name, args)
	require.True(t, res.IsError, "expected tool error, got %s", toolText(res))
	return toolText(res)
}

func careerID(t *testing.T, e *testEnv, title string) int64 {
	t.Helper()
	c, err := e.g.Store().CareerByTitle(context.Background(), title)
	require.NoError(t, err)
	return c.ID
}

func TestRegisterTools(t *testing.T) {
	e := newTestEnv(t, false)
	res, err := e.cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		if tool.Name == "interests_find" {
			// Same range the interests prompt asks the model for.
			assert.Contains(t, tool.Description, "3-5 professional interest areas")
		}
	}
	sort.Strings(names)
	assert.Len(t, names, ToolCount)
	assert.Equal(t, []string{
		"career_add", "career_list", "career_remove", "career_required_skills", "career_roadmap",
		"career_search", "career_suggest", "interests_find", "milestone_add", "project_pitch",
		"roadmap_generate", "skill_add", "skill_gap", "skill_link",
	}, names)
}

func TestCareerListAndRoadmap(t *testing.T) {
	e := newTestEnv(t, true)

	list := callTool[CareerListOutput](t, e, "career_list", map[string]any{})
	require.Len(t, list.Careers, len(roadmap.Catalog))
	assert.Equal(t, "Backend Developer", list.Careers[0].Title)

	id := careerID(t, e, "Frontend Developer")
	rm := callTool[CareerRoadmapOutput](t, e, "career_roadmap", map[string]any{"career_id": id})
	assert.Equal(t, "Frontend Developer", rm.Career.Title)
	require.Len(t, rm.Milestones, 4)
	assert.Equal(t, 1, rm.Milestones[0].Order)
	assert.Equal(t, []string{"Git", "HTML5 & CSS3", "JavaScript (ES6+)"}, rm.Milestones[0].SkillNames())

	msg := callToolErr(t, e, "career_roadmap", map[string]any{"career_id": 9999})
	assert.Contains(t, msg, "not_found")

	msg = callToolErr(t, e, "career_roadmap", map[string]any{"career_id": 0})
	assert.Contains(t, msg, "career_id must be a positive id")
}

func TestCareerRequiredSkills(t *testing.T) {
	e := newTestEnv(t, true)
	fe := careerID(t, e, "Frontend Developer")
	rm, err := e.g.GetRoadmap(context.Background(), fe)
	require.NoError(t, err)

	out := callTool[SkillNamesOutput](t, e, "career_required_skills", map[string]any{
		"career_id":     fe,
		"milestone_ids": []int64{rm[3].ID},
	})
	assert.Equal(t, []string{"Monitoring", "Webpack"}, out.Skills)

	be := careerID(t, e, "Backend Developer")
	msg := callToolErr(t, e, "career_required_skills", map[string]any{
		"career_id":     be,
		"milestone_ids": []int64{rm[0].ID},
	})
	assert.Contains(t, msg, "not_found")
}

func TestCareerSearch(t *testing.T) {
	e := newTestEnv(t, true)

	out := callTool[CareerSearchOutput](t, e, "career_search", map[string]any{"skills_csv": "docker, LINUX, ci/cd"})
	require.Len(t, out.Matches, 2)
	assert.Equal(t, "Backend Developer", out.Matches[0].Title)
	assert.Equal(t, 3, out.Matches[0].Matches)
	assert.Equal(t, "DevOps Engineer", out.Matches[1].Title)

	none := callTool[CareerSearchOutput](t, e, "career_search", map[string]any{"skills": []string{"Underwater Basket Weaving"}})
	assert.Empty(t, none.Matches)

	msg := callToolErr(t, e, "career_search", map[string]any{"skills_csv": " , "})
	assert.Contains(t, msg, "skills or skills_csv is required")
}

func TestSkillGapInlineRoadmap(t *testing.T) {
	e := newTestEnv(t, false)

	out := callTool[roadmap.GapResult](t, e, "skill_gap", map[string]any{
		"user_skills": "python, sql",
		"roadmap": []map[string]any{
			{"title": "Basics", "skills": []map[string]any{{"name": "Python"}, {"name": "SQL"}}},
			{"title": "Viz", "skills": []map[string]any{{"name": "Tableau"}}},
		},
	})
	assert.Equal(t, roadmap.GapResult{Percentage: 67, Have: []string{"Python", "Sql"}, Need: []string{"Tableau"}}, out)

	msg := callToolErr(t, e, "skill_gap", map[string]any{"user_skills": "python"})
	assert.Contains(t, msg, "career_id or roadmap is required")

	msg = callToolErr(t, e, "skill_gap", map[string]any{"user_skills": " , ", "roadmap": []map[string]any{
		{"title": "Basics", "skills": []map[string]any{{"name": "Python"}}},
	}})
	assert.Contains(t, msg, "invalid_input")
}

func TestGraphEditingFlow(t *testing.T) {
	e := newTestEnv(t, false)

	c := callTool[roadmap.Career](t, e, "career_add", map[string]any{"title": "Data Engineer", "difficulty": "advanced"})
	require.NotZero(t, c.ID)
	assert.Contains(t, callToolErr(t, e, "career_add", map[string]any{"title": "Data Engineer"}), "conflict")

	m1 := callTool[roadmap.Milestone](t, e, "milestone_add", map[string]any{"career_id": c.ID, "title": "Pipelines", "order": 1})
	m2 := callTool[roadmap.Milestone](t, e, "milestone_add", map[string]any{"career_id": c.ID, "title": "Warehousing", "order": 2})
	assert.Contains(t, callToolErr(t, e, "milestone_add", map[string]any{"career_id": c.ID, "title": "Again", "order": 2}), "conflict")

	spark := callTool[roadmap.Skill](t, e, "skill_add", map[string]any{"name": "Spark", "category": "technical"})
	assert.Contains(t, callToolErr(t, e, "skill_add", map[string]any{"name": "SPARK"}), "conflict")

	link := callTool[SkillLinkOutput](t, e, "skill_link", map[string]any{
		"milestone_id": m1.ID, "skill_id": spark.ID,
		"resource_name": "Spark Docs", "resource_link": "https://spark.apache.org/docs/latest/",
	})
	assert.True(t, link.Created)
	again := callTool[SkillLinkOutput](t, e, "skill_link", map[string]any{"milestone_id": m1.ID, "skill_id": spark.ID})
	assert.False(t, again.Created)

	byName := callTool[SkillLinkOutput](t, e, "skill_link", map[string]any{"milestone_id": m2.ID, "skill_name": "Snowflake"})
	assert.True(t, byName.Created)
	assert.NotEqual(t, spark.ID, byName.SkillID)

	assert.Contains(t, callToolErr(t, e, "skill_link", map[string]any{"milestone_id": 9999, "skill_name": "dbt"}), "not_found")
	_, err := e.g.Store().SkillByName(context.Background(), "dbt")
	require.ErrorIs(t, err, roadmap.ErrNotFound)

	rm := callTool[CareerRoadmapOutput](t, e, "career_roadmap", map[string]any{"career_id": c.ID})
	require.Len(t, rm.Milestones, 2)
	require.Len(t, rm.Milestones[0].Skills, 1)
	require.NotNil(t, rm.Milestones[0].Skills[0].Resource)
	assert.Equal(t, "Spark Docs", rm.Milestones[0].Skills[0].Resource.Name)

	gap := callTool[roadmap.GapResult](t, e, "skill_gap", map[string]any{"career_id": c.ID, "user_skills": "spark"})
	assert.Equal(t, 50, gap.Percentage)
	assert.Equal(t, []string{"Snowflake"}, gap.Need)

	gap = callTool[roadmap.GapResult](t, e, "skill_gap", map[string]any{
		"career_id": c.ID, "milestone_ids": []int64{m1.ID}, "user_skills": "spark",
	})
	assert.Equal(t, 100, gap.Percentage)

	rem := callTool[CareerRemoveOutput](t, e, "career_remove", map[string]any{"career_id": c.ID})
	assert.True(t, rem.Removed)
	assert.Contains(t, callToolErr(t, e, "career_roadmap", map[string]any{"career_id": c.ID}), "not_found")
	assert.Contains(t, callToolErr(t, e, "career_remove", map[string]any{"career_id": c.ID}), "not_found")
}

const generatedRoadmap = "```json\n" + `[
  {"title": "Foundations", "skills": [
    {"name": "HTML", "resource": {"name": "MDN", "link": "https://developer.mozilla.org"}},
    {"name": "CSS", "resource": {"name": "web.dev", "link": "https://web.dev/learn/css"}}
  ]},
  {"title": "Frameworks", "skills": [
    {"name": "React", "resource": {"name": "Official Docs", "link": "https://react.dev"}}
  ]}
]` + "\n```"

func TestRoadmapGenerate(t *testing.T) {
	e := newTestEnv(t, false)
	e.llm.reply = generatedRoadmap

	out := callTool[RoadmapGenerateOutput](t, e, "roadmap_generate", map[string]any{"career_title": "Web Developer"})
	require.Len(t, out.Milestones, 2)
	assert.Equal(t, []string{"CSS", "HTML", "React"}, out.RequiredSkills)
	assert.Zero(t, out.SavedCareerID)

	saved := callTool[RoadmapGenerateOutput](t, e, "roadmap_generate", map[string]any{
		"career_title": "Web Developer", "save": true, "duration": "6 months",
	})
	require.NotZero(t, saved.SavedCareerID)

	rm := callTool[CareerRoadmapOutput](t, e, "career_roadmap", map[string]any{"career_id": saved.SavedCareerID})
	assert.Equal(t, "6 months", rm.Career.Duration)
	require.Len(t, rm.Milestones, 2)
	assert.Equal(t, "Frameworks", rm.Milestones[1].Title)
	assert.Equal(t, "https://react.dev", rm.Milestones[1].Skills[0].Resource.Link)

	msg := callToolErr(t, e, "roadmap_generate", map[string]any{"career_title": "Web Developer", "save": true})
	assert.Contains(t, msg, "conflict")
}

func TestRoadmapGenerateModelFailure(t *testing.T) {
	e := newTestEnv(t, false)
	e.llm.reply = "Sorry, I cannot do that."

	msg := callToolErr(t, e, "roadmap_generate", map[string]any{"career_title": "Astronaut"})
	assert.Equal(t, "model_error: model returned invalid structure", msg)
}

func TestCareerSuggestAndInterests(t *testing.T) {
	e := newTestEnv(t, false)

	e.llm.reply = `[{"title": "Data Journalist", "description": "Tell stories with data."}]`
	sug := callTool[CareerSuggestOutput](t, e, "career_suggest", map[string]any{"interests": "writing, statistics"})
	require.Len(t, sug.Careers, 1)
	assert.Equal(t, "Data Journalist", sug.Careers[0].Title)
	assert.Contains(t, callToolErr(t, e, "career_suggest", map[string]any{"interests": " "}), "interests is required")

	e.llm.reply = "Data Analysis, Creative Design, Project Management"
	in := callTool[InterestsFindOutput](t, e, "interests_find", map[string]any{"answers": []string{"puzzles", "space", "", "", "math"}})
	assert.Equal(t, []string{"Data Analysis", "Creative Design", "Project Management"}, in.Interests)

	assert.Contains(t, callToolErr(t, e, "interests_find", map[string]any{"answers": []string{"a", "b", "c", "d", "e", "f"}}), "at most 5 answers")
	assert.Contains(t, callToolErr(t, e, "interests_find", map[string]any{"answers": []string{"", " "}}), "answers are required")
}

func TestProjectPitch(t *testing.T) {
	e := newTestEnv(t, true)
	e.llm.reply = `{"pitch": "Build a personal portfolio site."}`

	fe := careerID(t, e, "Frontend Developer")
	rm, err := e.g.GetRoadmap(context.Background(), fe)
	require.NoError(t, err)

	out := callTool[ProjectPitchOutput](t, e, "project_pitch", map[string]any{"milestone_id": rm[0].ID, "interests": "photography"})
	assert.Equal(t, "Build a personal portfolio site.", out.Pitch)
	assert.Equal(t, []string{"Git", "HTML5 & CSS3", "JavaScript (ES6+)"}, out.Skills)

	inline := callTool[ProjectPitchOutput](t, e, "project_pitch", map[string]any{"milestone_title": "Basics", "skills": []string{"Go", "SQL"}})
	assert.Equal(t, []string{"Go", "SQL"}, inline.Skills)

	assert.Contains(t, callToolErr(t, e, "project_pitch", map[string]any{"milestone_title": "Basics"}), "skills or milestone_id")
	assert.Contains(t, callToolErr(t, e, "project_pitch", map[string]any{"milestone_id": 9999}), "not_found")
}
