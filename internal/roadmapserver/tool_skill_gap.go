package roadmapserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
	"github.com/anatolykoptev/go_roadmap/internal/toolutil"
)

func registerSkillGap(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "skill_gap",
		Description: "Compare the user's skills with a roadmap. Pass career_id (optionally milestone_ids) for a stored career, or roadmap with the milestones returned by roadmap_generate. Returns readiness percentage, skills the user has and skills still needed.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SkillGapInput) (*mcp.CallToolResult, *roadmap.GapResult, error) {
		if err := toolutil.Required("user_skills", input.UserSkills); err != nil {
			return nil, nil, err
		}

		var (
			result *roadmap.GapResult
			err    error
		)
		switch {
		case input.CareerID > 0:
			result, err = g.AnalyzeCareer(ctx, input.CareerID, input.MilestoneIDs, input.UserSkills)
		case len(input.Roadmap) > 0:
			result, err = roadmap.Analyze(input.UserSkills, roadmap.RequiredFromGenerated(input.Roadmap))
		default:
			return nil, nil, errors.New("career_id or roadmap is required")
		}
		if err != nil {
			return nil, nil, toolutil.Classify("skill_gap", err)
		}
		return nil, result, nil
	})
}
