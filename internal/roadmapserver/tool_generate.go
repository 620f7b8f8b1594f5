package roadmapserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
	"github.com/anatolykoptev/go_roadmap/internal/toolutil"
)

const maxInterestAnswers = len(roadmap.InterestAnswers{})

func registerRoadmapGenerate(server *mcp.Server, g *roadmap.Graph, gen *roadmap.Generator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "roadmap_generate",
		Description: "Generate a 3-5 milestone learning roadmap for a career with an LLM. Each skill comes with one learning resource. Set save=true to store it as a new career (the title must not exist yet).",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input RoadmapGenerateInput) (*mcp.CallToolResult, *RoadmapGenerateOutput, error) {
		if err := toolutil.Required("career_title", input.CareerTitle); err != nil {
			return nil, nil, err
		}
		ms, err := gen.Roadmap(ctx, input.CareerTitle)
		if err != nil {
			return nil, nil, toolutil.Classify("roadmap_generate", err)
		}
		out := &RoadmapGenerateOutput{
			CareerTitle:    input.CareerTitle,
			Milestones:     ms,
			RequiredSkills: roadmap.RequiredFromGenerated(ms),
		}
		if !input.Save {
			return nil, out, nil
		}

		career, err := g.ImportRoadmap(ctx, roadmap.Career{
			Title:        input.CareerTitle,
			Description:  input.Description,
			Difficulty:   input.Difficulty,
			Duration:     input.Duration,
			MarketDemand: input.MarketDemand,
		}, ms)
		if err != nil {
			return nil, nil, toolutil.Classify("roadmap_generate", err)
		}
		out.SavedCareerID = career.ID
		return nil, out, nil
	})
}

func registerCareerSuggest(server *mcp.Server, gen *roadmap.Generator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "career_suggest",
		Description: "Suggest creative and professional career paths from interests, skills, preferred pace and life goals. Returns titles with a one-sentence description each.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input CareerSuggestInput) (*mcp.CallToolResult, *CareerSuggestOutput, error) {
		if err := toolutil.Required("interests", input.Interests); err != nil {
			return nil, nil, err
		}
		careers, err := gen.Careers(ctx, roadmap.CareerProfile{
			Interests: input.Interests,
			Skills:    input.Skills,
			Pace:      input.Pace,
			LifeGoals: input.LifeGoals,
		})
		if err != nil {
			return nil, nil, toolutil.Classify("career_suggest", err)
		}
		return nil, &CareerSuggestOutput{Careers: careers}, nil
	})
}

func registerInterestsFind(server *mcp.Server, gen *roadmap.Generator) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "interests_find",
		Description: "Infer 3-5 professional interest areas from answers to five questions: " +
			"what you'd do on a free weekend, a topic you find fascinating, tasks you enjoy, a project you'd start, what you are comfortable working with.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input InterestsFindInput) (*mcp.CallToolResult, *InterestsFindOutput, error) {
		if len(input.Answers) > maxInterestAnswers {
			return nil, nil, fmt.Errorf("at most %d answers are accepted", maxInterestAnswers)
		}
		var answers roadmap.InterestAnswers
		blank := true
		for i, a := range input.Answers {
			answers[i] = a
			if strings.TrimSpace(a) != "" {
				blank = false
			}
		}
		if blank {
			return nil, nil, errors.New("answers are required")
		}
		interests, err := gen.Interests(ctx, answers)
		if err != nil {
			return nil, nil, toolutil.Classify("interests_find", err)
		}
		return nil, &InterestsFindOutput{Interests: interests}, nil
	})
}

func registerProjectPitch(server *mcp.Server, g *roadmap.Graph, gen *roadmap.Generator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_pitch",
		Description: "Pitch a small practice project that exercises the skills of a milestone. Pass milestone_id for a stored milestone, or milestone_title and skills.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ProjectPitchInput) (*mcp.CallToolResult, *ProjectPitchOutput, error) {
		title, skills := input.MilestoneTitle, toolutil.SkillList(input.Skills, "")
		if input.MilestoneID > 0 {
			m, err := g.Store().Milestone(ctx, input.MilestoneID)
			if err != nil {
				return nil, nil, toolutil.Classify("project_pitch", err)
			}
			skills, err = g.RequiredSkillNames(ctx, m.CareerID, m.ID)
			if err != nil {
				return nil, nil, toolutil.Classify("project_pitch", err)
			}
			title = m.Title
		}
		if len(skills) == 0 {
			return nil, nil, errors.New("skills or milestone_id with linked skills is required")
		}

		pitch, err := gen.ProjectPitch(ctx, input.Interests, title, skills)
		if err != nil {
			return nil, nil, toolutil.Classify("project_pitch", err)
		}
		slog.Debug("project pitched", slog.String("milestone", title), slog.Int("skills", len(skills)))
		return nil, &ProjectPitchOutput{Pitch: pitch, Skills: skills}, nil
	})
}
