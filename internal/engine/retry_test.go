package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", errors.New("llm: status 429: rate limited"), true},
		{"bad gateway", errors.New("llm: status 502: bad gateway"), true},
		{"http prefix", errors.New("HTTP 503 Service Unavailable"), true},
		{"client error", errors.New("llm: status 400: bad request"), false},
		{"auth error", errors.New("llm: status 401: invalid key"), false},
		{"status-like number in text", errors.New("model has 5030 tokens"), false},
		{"plain", errors.New("something"), false},
		{"canceled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("complete: %w", context.DeadlineExceeded), false},
		{"dns timeout", &net.DNSError{IsTimeout: true}, true},
		{"dial refused", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestRetryDo(t *testing.T) {
	unavailable := errors.New("llm: status 503: unavailable")
	badKey := errors.New("llm: status 401: invalid key")

	tests := []struct {
		name       string
		maxRetries int
		failures   int // calls failing before the first success
		failWith   error
		wantCalls  int
		wantErr    error
	}{
		{"first try", 3, 0, nil, 1, nil},
		{"recovers", 3, 2, unavailable, 3, nil},
		{"exhausted", 2, 10, unavailable, 3, unavailable},
		{"no retries configured", 0, 10, unavailable, 1, unavailable},
		{"permanent", 3, 10, badKey, 1, badKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := RetryConfig{MaxRetries: tt.maxRetries, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
			calls := 0
			got, err := RetryDo(context.Background(), rc, func() (string, error) {
				calls++
				if calls <= tt.failures {
					return "", tt.failWith
				}
				return "ok", nil
			})
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestRetryDoCountsRetries(t *testing.T) {
	rc := RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}
	before := GetMetrics()[MetricLLMRetries]
	_, _ = RetryDo(context.Background(), rc, func() (int, error) {
		return 0, errors.New("llm: status 500: oops")
	})
	assert.Equal(t, int64(2), GetMetrics()[MetricLLMRetries]-before)
}

func TestRetryDoCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryDo(ctx, DefaultRetryConfig, func() (string, error) {
		calls++
		return "", nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
