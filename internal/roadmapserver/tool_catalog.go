package roadmapserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
	"github.com/anatolykoptev/go_roadmap/internal/toolutil"
)

func registerCareerList(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_list",
		Description: "List all stored careers sorted by title, with difficulty, duration and market demand. Use the returned IDs with career_roadmap, skill_gap and milestone_add.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, *CareerListOutput, error) {
		careers, err := g.Careers(ctx)
		if err != nil {
			return nil, nil, toolutil.Classify("career_list", err)
		}
		return nil, &CareerListOutput{Careers: careers}, nil
	})
}

func registerCareerRoadmap(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_roadmap",
		Description: "Get the roadmap of a stored career: milestones in order, each with its skills (sorted by name) and an optional learning resource per skill.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CareerIDInput) (*mcp.CallToolResult, *CareerRoadmapOutput, error) {
		if err := toolutil.RequiredID("career_id", input.CareerID); err != nil {
			return nil, nil, err
		}
		career, err := g.Career(ctx, input.CareerID)
		if err != nil {
			return nil, nil, toolutil.Classify("career_roadmap", err)
		}
		ms, err := g.GetRoadmap(ctx, input.CareerID)
		if err != nil {
			return nil, nil, toolutil.Classify("career_roadmap", err)
		}
		return nil, &CareerRoadmapOutput{Career: *career, Milestones: ms}, nil
	})
}

func registerCareerRequiredSkills(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_required_skills",
		Description: "List the distinct skills required by a career, or by selected milestones of it. Milestones that belong to another career are rejected.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input RequiredSkillsInput) (*mcp.CallToolResult, *SkillNamesOutput, error) {
		if err := toolutil.RequiredID("career_id", input.CareerID); err != nil {
			return nil, nil, err
		}
		names, err := g.RequiredSkillNames(ctx, input.CareerID, input.MilestoneIDs...)
		if err != nil {
			return nil, nil, toolutil.Classify("career_required_skills", err)
		}
		return nil, &SkillNamesOutput{Skills: names}, nil
	})
}

func registerCareerSearch(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_search",
		Description: "Find careers that require any of the given skills. Skill names match ignoring case. Results are ranked by how many of the skills each career needs, ties broken by title.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CareerSearchInput) (*mcp.CallToolResult, *CareerSearchOutput, error) {
		skills := toolutil.SkillList(input.Skills, input.SkillsCSV)
		if len(skills) == 0 {
			return nil, nil, errors.New("skills or skills_csv is required")
		}
		matches, err := g.SearchCareersBySkills(ctx, skills)
		if err != nil {
			return nil, nil, toolutil.Classify("career_search", err)
		}
		return nil, &CareerSearchOutput{Matches: matches}, nil
	})
}
