package roadmap

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

// fakeLLM replies with reply (or err) and records prompts.
type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	calls   atomic.Int32
	prompts []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.reply, f.err
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func newTestCache(t *testing.T) *engine.Cache {
	t.Helper()
	c := engine.NewCache(engine.Config{CacheTTL: time.Minute, CacheMaxEntries: 100})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

const roadmapReply = "Here is your roadmap!\n```json\n" + `[
  {"title": "Foundations", "skills": [
    {"name": "HTML", "resource": {"name": "MDN", "link": "https://developer.mozilla.org"}},
    {"name": "CSS", "resource": {"name": "web.dev", "link": "https://web.dev/learn/css"}}
  ]},
  {"title": "Frameworks", "skills": [
    {"name": "React", "resource": {"name": "Official Docs", "link": "https://react.dev"}}
  ]}
]` + "\n```\nGood luck on your journey!"

func TestGeneratorRoadmap(t *testing.T) {
	llm := &fakeLLM{reply: roadmapReply}
	g := NewGenerator(llm, newTestCache(t), nil)
	ctx := context.Background()

	ms, err := g.Roadmap(ctx, "Frontend Developer")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Foundations", ms[0].Title)
	assert.Equal(t, "https://react.dev", ms[1].Skills[0].Resource.Link)
	assert.Contains(t, llm.lastPrompt(), `"Frontend Developer"`)

	// Cached: no second model call, case-insensitive key.
	again, err := g.Roadmap(ctx, "frontend developer")
	require.NoError(t, err)
	assert.Equal(t, ms, again)
	assert.EqualValues(t, 1, llm.calls.Load())
}

func TestGeneratorRoadmapProseWrapped(t *testing.T) {
	llm := &fakeLLM{reply: `Sure. [{"title": "Basics", "skills": [{"name": "Go"}]}] Let me know if you need more.`}
	g := NewGenerator(llm, nil, nil)

	ms, err := g.Roadmap(context.Background(), "Go Developer")
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, []string{"Go"}, RequiredFromGenerated(ms))
}

func TestGeneratorRoadmapFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  error
	}{
		{"no structure", "I'm sorry, I can't help with that.", nil, engine.ErrExtractionAmbiguous},
		{"broken json", `[{"title": "x", "skills": [}]`, nil, engine.ErrInvalidStructure},
		{"empty array", `[]`, nil, engine.ErrInvalidStructure},
		{"model error", "", errors.New("llm: status 401: bad key"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{reply: tt.reply, err: tt.err}
			g := NewGenerator(llm, newTestCache(t), nil)
			_, err := g.Roadmap(context.Background(), "Anything")
			require.Error(t, err)
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				assert.True(t, IsModelFailure(err))
			} else {
				assert.False(t, IsModelFailure(err))
			}

			// Failures are not cached.
			_, _ = g.Roadmap(context.Background(), "Anything")
			assert.EqualValues(t, 2, llm.calls.Load())
		})
	}
}

func TestGeneratorRoadmapRequiresTitle(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, nil, nil)
	_, err := g.Roadmap(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGeneratorSharesInflight(t *testing.T) {
	llm := &fakeLLM{reply: roadmapReply, delay: 50 * time.Millisecond}
	g := NewGenerator(llm, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Roadmap(context.Background(), "Frontend Developer")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, llm.calls.Load(), int32(5))
}

// gatedLLM blocks until release is closed or its context ends.
type gatedLLM struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *gatedLLM) Complete(ctx context.Context, _ string) (string, error) {
	f.once.Do(func() { close(f.started) })
	select {
	case <-f.release:
		return roadmapReply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGeneratorCanceledCallerDoesNotFailOthers(t *testing.T) {
	llm := &gatedLLM{started: make(chan struct{}), release: make(chan struct{})}
	g := NewGenerator(llm, nil, nil)

	first, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := g.Roadmap(first, "Frontend Developer")
		firstErr <- err
	}()
	<-llm.started

	type result struct {
		ms  []GeneratedMilestone
		err error
	}
	second := make(chan result, 1)
	go func() {
		ms, err := g.Roadmap(context.Background(), "Frontend Developer")
		second <- result{ms, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(llm.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Len(t, got.ms, 2)
}

func TestGeneratorCareers(t *testing.T) {
	llm := &fakeLLM{reply: `[
		{"title": "AI Ethics Consultant", "description": "Guide responsible AI."},
		{"title": "", "description": "dropped"},
		{"title": "Data Journalist", "description": "Tell stories with data."}
	]`}
	g := NewGenerator(llm, nil, nil)

	out, err := g.Careers(context.Background(), CareerProfile{
		Interests: "AI, writing",
		LifeGoals: []string{"impact", "remote work"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Data Journalist", out[1].Title)

	p := llm.lastPrompt()
	assert.Contains(t, p, `Skills: "Not specified"`)
	assert.Contains(t, p, `Preferred Pace: "Balanced"`)
	assert.Contains(t, p, `Life Goals: "impact, remote work"`)
}

func TestGeneratorInterests(t *testing.T) {
	llm := &fakeLLM{reply: "  Data Analysis, Creative Design,, data analysis, Project Management \n"}
	g := NewGenerator(llm, nil, nil)

	out, err := g.Interests(context.Background(), InterestAnswers{"hiking", "space", "", "a game", "numbers"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Analysis", "Creative Design", "Project Management"}, out)
	assert.Contains(t, llm.lastPrompt(), "Enjoys tasks involving: not answered")
	assert.Contains(t, llm.lastPrompt(), "3 to 5 highly relevant interests")

	llm.reply = "   "
	_, err = g.Interests(context.Background(), InterestAnswers{"x"})
	require.ErrorIs(t, err, engine.ErrExtractionAmbiguous)
}

func TestGeneratorProjectPitch(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"clean json", `{"pitch": "Build a budget tracker."}`, "Build a budget tracker."},
		{"fenced", "```json\n{\"pitch\": \"Build a quiz app.\"}\n```", "Build a quiz app."},
		{"raw newline in value", "{\"pitch\": \"Build a blog.\nAdd comments.\"}", "Build a blog.\nAdd comments."},
		{"unterminated", `Here you go: {"pitch": "Build a chat bot`, "Build a chat bot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&fakeLLM{reply: tt.reply}, nil, nil)
			got, err := g.ProjectPitch(context.Background(), "finance", "Foundations", []string{"Python", "SQL"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("no pitch", func(t *testing.T) {
		g := NewGenerator(&fakeLLM{reply: "no idea"}, nil, nil)
		_, err := g.ProjectPitch(context.Background(), "", "", []string{"Go"})
		require.Error(t, err)
		assert.True(t, IsModelFailure(err))
	})

	t.Run("skills required", func(t *testing.T) {
		g := NewGenerator(&fakeLLM{}, nil, nil)
		_, err := g.ProjectPitch(context.Background(), "x", "y", nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("prompt lists skills", func(t *testing.T) {
		llm := &fakeLLM{reply: `{"pitch": "p"}`}
		g := NewGenerator(llm, nil, nil)
		_, err := g.ProjectPitch(context.Background(), "", "", []string{"SQL", "Python", "sql"})
		require.NoError(t, err)
		assert.True(t, strings.Contains(llm.lastPrompt(), "[Python, SQL]"), llm.lastPrompt())
		assert.Contains(t, llm.lastPrompt(), `interest in "general topics"`)
	})
}
