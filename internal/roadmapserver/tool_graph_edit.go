package roadmapserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
	"github.com/anatolykoptev/go_roadmap/internal/toolutil"
)

func registerCareerAdd(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_add",
		Description: "Create a career. Titles are unique. Add milestones with milestone_add afterwards.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CareerAddInput) (*mcp.CallToolResult, *roadmap.Career, error) {
		if err := toolutil.Required("title", input.Title); err != nil {
			return nil, nil, err
		}
		c, err := g.AddCareer(ctx, roadmap.Career{
			Title:        input.Title,
			Description:  input.Description,
			Difficulty:   input.Difficulty,
			Duration:     input.Duration,
			MarketDemand: input.MarketDemand,
		})
		if err != nil {
			return nil, nil, toolutil.Classify("career_add", err)
		}
		return nil, c, nil
	})
}

func registerMilestoneAdd(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "milestone_add",
		Description: "Add a milestone to a career at the given order. Each order value can be used once per career.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input MilestoneAddInput) (*mcp.CallToolResult, *roadmap.Milestone, error) {
		if err := toolutil.RequiredID("career_id", input.CareerID); err != nil {
			return nil, nil, err
		}
		if err := toolutil.Required("title", input.Title); err != nil {
			return nil, nil, err
		}
		m, err := g.AddMilestone(ctx, input.CareerID, input.Title, input.Order)
		if err != nil {
			return nil, nil, toolutil.Classify("milestone_add", err)
		}
		return nil, m, nil
	})
}

func registerSkillAdd(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "skill_add",
		Description: "Create a canonical skill. Names are unique ignoring case; adding an existing name is a conflict.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SkillAddInput) (*mcp.CallToolResult, *roadmap.Skill, error) {
		if err := toolutil.Required("name", input.Name); err != nil {
			return nil, nil, err
		}
		s, err := g.AddSkill(ctx, input.Name, input.Category)
		if err != nil {
			return nil, nil, toolutil.Classify("skill_add", err)
		}
		return nil, s, nil
	})
}

func registerSkillLink(server *mcp.Server, g *roadmap.Graph) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "skill_link",
		Description: "Link a skill to a milestone, optionally with a learning resource. Pass skill_id, or skill_name to reuse or create the skill. Linking an already linked pair is a no-op (created=false).",
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SkillLinkInput) (*mcp.CallToolResult, *SkillLinkOutput, error) {
		if err := toolutil.RequiredID("milestone_id", input.MilestoneID); err != nil {
			return nil, nil, err
		}
		skillID := input.SkillID
		if skillID <= 0 {
			if strings.TrimSpace(input.SkillName) == "" {
				return nil, nil, errors.New("skill_id or skill_name is required")
			}
			if _, err := g.Store().Milestone(ctx, input.MilestoneID); err != nil {
				return nil, nil, toolutil.Classify("skill_link", err)
			}
			s, err := g.EnsureSkill(ctx, input.SkillName, "")
			if err != nil {
				return nil, nil, toolutil.Classify("skill_link", err)
			}
			skillID = s.ID
		}

		var res *roadmap.Resource
		if input.ResourceName != "" || input.ResourceLink != "" {
			res = &roadmap.Resource{Name: input.ResourceName, Link: input.ResourceLink}
		}
		created, err := g.LinkSkillToMilestone(ctx, input.MilestoneID, skillID, res)
		if err != nil {
			return nil, nil, toolutil.Classify("skill_link", err)
		}
		return nil, &SkillLinkOutput{MilestoneID: input.MilestoneID, SkillID: skillID, Created: created}, nil
	})
}

func registerCareerRemove(server *mcp.Server, g *roadmap.Graph) {
	destructive := true
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_remove",
		Description: "Delete a career together with its milestones and their skill links. Skills themselves are kept.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: &destructive},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CareerIDInput) (*mcp.CallToolResult, *CareerRemoveOutput, error) {
		if err := toolutil.RequiredID("career_id", input.CareerID); err != nil {
			return nil, nil, err
		}
		if err := g.RemoveCareer(ctx, input.CareerID); err != nil {
			return nil, nil, toolutil.Classify("career_remove", err)
		}
		return nil, &CareerRemoveOutput{CareerID: input.CareerID, Removed: true}, nil
	})
}
