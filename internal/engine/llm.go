package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// completeFunc is the raw call to the generative-text collaborator.
type completeFunc func(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)

// LLM is the generative-text collaborator: an OpenAI-compatible chat client
// with a request-rate limit and retries on transient failures. Replies are
// returned verbatim; recovering structure from them is the Extractor's job.
type LLM struct {
	complete    completeFunc
	limiter     *rate.Limiter // nil = unlimited
	retry       RetryConfig
	temperature float64
	maxTokens   int
}

// NewLLM builds the client from explicit configuration.
func NewLLM(c Config) *LLM {
	hc := c.LLMHTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(hc),
	)

	rc := DefaultRetryConfig
	if c.LLMMaxRetries > 0 {
		rc.MaxRetries = c.LLMMaxRetries
	}

	return newLLM(func(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
		return client.Complete(ctx, "", prompt,
			llm.WithChatTemperature(temperature),
			llm.WithChatMaxTokens(maxTokens),
		)
	}, c.LLMRatePerMin, rc, c.LLMTemperature, c.LLMMaxTokens)
}

func newLLM(fn completeFunc, perMin int, rc RetryConfig, temperature float64, maxTokens int) *LLM {
	l := &LLM{complete: fn, retry: rc, temperature: temperature, maxTokens: maxTokens}
	if perMin > 0 {
		l.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 1)
	}
	return l
}

// Complete sends a prompt using the configured temperature and max_tokens.
func (l *LLM) Complete(ctx context.Context, prompt string) (string, error) {
	return l.CompleteWith(ctx, prompt, l.temperature, l.maxTokens)
}

// CompleteWith sends a prompt with a per-call temperature and token budget.
func (l *LLM) CompleteWith(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	return RetryDo(ctx, l.retry, func() (string, error) {
		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		reg.Incr(MetricLLMCalls)
		resp, err := l.complete(ctx, prompt, temperature, maxTokens)
		if err != nil {
			reg.Incr(MetricLLMErrors)
			return "", err
		}
		return resp, nil
	})
}

// CurrentYear is used by prompts that anchor the model in time.
func CurrentYear() int {
	return time.Now().UTC().Year()
}
