package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metric names exported on the metrics endpoint.
const (
	MetricLLMCalls           = "llm_calls"
	MetricLLMErrors          = "llm_errors"
	MetricLLMRetries         = "llm_retries"
	MetricExtractions        = "extractions"
	MetricExtractionFailures = "extraction_failures"
	MetricGapAnalyses        = "gap_analyses"
	MetricRoadmapGenerations = "roadmap_generations"
	MetricRoadmapImports     = "roadmap_imports"
	MetricCacheHits          = "cache_hits"
	MetricCacheMisses        = "cache_misses"
)

// metricOrder fixes the output order of FormatMetrics.
var metricOrder = []string{
	MetricLLMCalls, MetricLLMErrors, MetricLLMRetries,
	MetricExtractions, MetricExtractionFailures,
	MetricGapAnalyses, MetricRoadmapGenerations, MetricRoadmapImports,
	MetricCacheHits, MetricCacheMisses,
}

// registry is a fixed set of atomic counters, safe for concurrent use.
type registry struct {
	counters map[string]*atomic.Int64
}

func newRegistry(names []string) *registry {
	r := &registry{counters: make(map[string]*atomic.Int64, len(names))}
	for _, n := range names {
		r.counters[n] = new(atomic.Int64)
	}
	return r
}

// Incr adds one to the named counter. Unknown names are ignored.
func (r *registry) Incr(name string) {
	if c, ok := r.counters[name]; ok {
		c.Add(1)
	}
}

func (r *registry) load(name string) int64 {
	if c, ok := r.counters[name]; ok {
		return c.Load()
	}
	return 0
}

var reg = newRegistry(metricOrder)

// Incr increments a metric from outside the engine package (roadmap, server).
func Incr(name string) { reg.Incr(name) }

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	out := make(map[string]int64, len(metricOrder))
	for _, k := range metricOrder {
		out[k] = reg.load(k)
	}
	return out
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricOrder {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
