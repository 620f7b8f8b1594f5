package roadmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

// Completer is the generative-text collaborator. Replies are untrusted free
// text that may or may not contain the JSON asked for.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator asks the model for roadmaps, career ideas, interests and project
// pitches. Every structured reply goes through the Extractor. Results are
// cached and concurrent identical requests share one model call.
type Generator struct {
	llm   Completer
	cache *engine.Cache
	ex    engine.Extractor
	group singleflight.Group
}

// NewGenerator builds a generator. cache may be nil; ex nil selects the
// heuristic extractor.
func NewGenerator(llm Completer, cache *engine.Cache, ex engine.Extractor) *Generator {
	if ex == nil {
		ex = engine.HeuristicExtractor{}
	}
	return &Generator{llm: llm, cache: cache, ex: ex}
}

const roadmapPrompt = `You are an expert career advisor. Create a detailed, step-by-step learning roadmap for a user aspiring to become a "%s".
The roadmap must be structured as a JSON array of 3 to 5 major milestone objects.

Each milestone object in the array must contain:
1. A "title" (string): a clear and concise name for the milestone (e.g. "Foundational Knowledge", "Framework Mastery", "Advanced Skills & Portfolio").
2. A "skills" (array of objects): the key skills to learn in this milestone.

Each skill object must contain:
1. A "name" (string): the skill or technology (e.g. "JavaScript (ES6+)", "React State Management").
2. A "resource" (object): a single, high-quality, real learning resource with
   a "name" (string, e.g. "Official Docs", "freeCodeCamp") and
   a "link" (string, a direct HTTPS URL). Prefer resources that are maintained and relevant in %d.

Respond ONLY with the JSON array of milestone objects. No explanation, no markdown.`

const careersPrompt = `Based on the following user profile, generate a diverse list of 7 creative and professional career path recommendations.
- Interests: "%s"
- Skills: "%s"
- Preferred Pace: "%s"
- Life Goals: "%s"

For each recommendation, provide a "title" and a short, compelling "description" (around 15-20 words).
Respond ONLY with a JSON array of objects, each with "title" and "description". No other text or markdown.
Example:
[
  {"title": "AI Ethics Consultant", "description": "Guide companies in the responsible development and deployment of artificial intelligence systems."},
  {"title": "UX/UI Designer", "description": "Craft intuitive and visually appealing digital experiences for users."}
]`

const interestsPrompt = `Analyze a user's personality based on their answers to an interest assessment quiz.
Based on these answers, generate a comma-separated list of 3 to 5 highly relevant interests for them.
The interests should be concise and professional (e.g. "Data Analysis, Creative Design, Project Management").

User's answers:
1. On a free weekend, they'd be: %s
2. Fascinating topic: %s
3. Enjoys tasks involving: %s
4. New project idea: %s
5. Comfortable working with: %s

Respond ONLY with the comma-separated list of interests and nothing else.`

const pitchPrompt = `Based on a user's interest in "%s" and the required skills for the milestone "%s" which are [%s], generate a single, creative, and actionable project idea.
The project should help the user practice the listed skills.
Describe it in a concise paragraph (about 50-70 words).

Respond ONLY with a JSON object with a single key "pitch" holding the project description.
Example: {"pitch": "Build an interactive portfolio website using React that filters projects by the technologies used and includes a blog about your learning journey."}`

// CareerProfile is the input for career suggestions.
type CareerProfile struct {
	Interests string
	Skills    string
	Pace      string
	LifeGoals []string
}

// InterestAnswers are the five answers of the interest quiz.
type InterestAnswers [5]string

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

// Roadmap generates a learning roadmap for careerTitle.
func (g *Generator) Roadmap(ctx context.Context, careerTitle string) ([]GeneratedMilestone, error) {
	careerTitle = strings.TrimSpace(careerTitle)
	if careerTitle == "" {
		return nil, fmt.Errorf("roadmap: career title is required: %w", ErrInvalidInput)
	}
	key := engine.CacheKey("roadmap", strings.ToLower(careerTitle))
	return generate(ctx, g, "roadmap", key, fmt.Sprintf(roadmapPrompt, careerTitle, engine.CurrentYear()),
		func(raw string) ([]GeneratedMilestone, error) {
			var ms []GeneratedMilestone
			if err := engine.ParseJSON(g.ex, raw, &ms); err != nil {
				return nil, err
			}
			if len(ms) == 0 {
				return nil, fmt.Errorf("%w: empty roadmap", engine.ErrInvalidStructure)
			}
			engine.Incr(engine.MetricRoadmapGenerations)
			return ms, nil
		})
}

// Careers suggests careers for a user profile.
func (g *Generator) Careers(ctx context.Context, p CareerProfile) ([]CareerSuggestion, error) {
	interests := orDefault(p.Interests, "Not specified")
	skills := orDefault(p.Skills, "Not specified")
	pace := orDefault(p.Pace, "Balanced")
	goals := strings.Join(p.LifeGoals, ", ")

	key := engine.CacheKey("careers", strings.ToLower(interests), strings.ToLower(skills), strings.ToLower(pace), strings.ToLower(goals))
	return generate(ctx, g, "careers", key, fmt.Sprintf(careersPrompt, interests, skills, pace, goals),
		func(raw string) ([]CareerSuggestion, error) {
			var out []CareerSuggestion
			if err := engine.ParseJSON(g.ex, raw, &out); err != nil {
				return nil, err
			}
			kept := out[:0]
			for _, c := range out {
				if strings.TrimSpace(c.Title) != "" {
					kept = append(kept, c)
				}
			}
			if len(kept) == 0 {
				return nil, fmt.Errorf("%w: no career suggestions", engine.ErrInvalidStructure)
			}
			return kept, nil
		})
}

// Interests derives a short interest list from quiz answers.
func (g *Generator) Interests(ctx context.Context, a InterestAnswers) ([]string, error) {
	args := make([]any, len(a))
	parts := make([]string, len(a))
	for i, ans := range a {
		v := orDefault(ans, "not answered")
		args[i] = v
		parts[i] = strings.ToLower(v)
	}
	key := engine.CacheKey(append([]string{"interests"}, parts...)...)
	return generate(ctx, g, "interests", key, fmt.Sprintf(interestsPrompt, args...),
		func(raw string) ([]string, error) {
			raw = strings.Trim(strings.TrimSpace(raw), `"`)
			out := dedupeKeepOrder(engine.SplitList(raw))
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: no interests in reply", engine.ErrExtractionAmbiguous)
			}
			return out, nil
		})
}

// ProjectPitch proposes a practice project for a milestone's skills.
func (g *Generator) ProjectPitch(ctx context.Context, interests, milestoneTitle string, skills []string) (string, error) {
	names := engine.NewSkillSet(skills...).Names()
	if len(names) == 0 {
		return "", fmt.Errorf("project pitch: skills are required: %w", ErrInvalidInput)
	}
	interests = orDefault(interests, "general topics")
	milestoneTitle = orDefault(milestoneTitle, "the current milestone")
	joined := strings.Join(names, ", ")

	key := engine.CacheKey("pitch", strings.ToLower(interests), strings.ToLower(milestoneTitle), strings.ToLower(joined))
	return generate(ctx, g, "pitch", key, fmt.Sprintf(pitchPrompt, interests, milestoneTitle, joined),
		func(raw string) (string, error) {
			var out struct {
				Pitch string `json:"pitch"`
			}
			err := engine.ParseJSON(g.ex, raw, &out)
			if err == nil && strings.TrimSpace(out.Pitch) != "" {
				return strings.TrimSpace(out.Pitch), nil
			}
			// Models often put raw newlines inside the string value.
			if p := strings.TrimSpace(engine.ExtractJSONString(raw, "pitch")); p != "" {
				return p, nil
			}
			if err == nil {
				err = fmt.Errorf("%w: empty pitch", engine.ErrInvalidStructure)
			}
			return "", err
		})
}

const (
	slowGeneration    = 20 * time.Second
	generationTimeout = 3 * time.Minute
)

// generate runs prompt through the model unless key is cached, decodes the
// reply with parse and caches the result. Identical in-flight keys share a call.
//
// The shared call is detached from the caller that started it: canceling one
// caller returns early for that caller only, the others keep waiting.
func generate[T any](ctx context.Context, g *Generator, kind, key, prompt string, parse func(raw string) (T, error)) (T, error) {
	var zero T
	if v, ok := engine.LoadJSON[T](ctx, g.cache, key); ok {
		return v, nil
	}

	ch := g.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generationTimeout)
		defer cancel()

		var raw string
		err := engine.TrackOperation(ctx, kind+" generation", slowGeneration, func(ctx context.Context) error {
			var err error
			raw, err = g.llm.Complete(ctx, prompt)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%s LLM: %w", kind, err)
		}
		out, err := parse(raw)
		if err != nil {
			slog.Warn("model reply rejected", slog.String("kind", kind), slog.Any("error", err))
			return nil, fmt.Errorf("%s parse: %w", kind, err)
		}
		engine.StoreJSON(ctx, g.cache, key, out)
		return out, nil
	})

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("%s generation: %w", kind, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			slog.Debug("generation shared", slog.String("kind", kind))
		}
		return res.Val.(T), nil
	}
}

func dedupeKeepOrder(in []string) []string {
	seen := engine.NewSkillSet()
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen.Add(s) {
			out = append(out, s)
		}
	}
	return out
}

// IsModelFailure reports whether err came from an unusable model reply.
func IsModelFailure(err error) bool {
	return errors.Is(err, engine.ErrExtractionAmbiguous) || errors.Is(err, engine.ErrInvalidStructure)
}
