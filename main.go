// go_roadmap: career roadmap MCP server.
//
// Serves a career knowledge graph (career → ordered milestones → skills),
// skill-gap analysis against stored or generated roadmaps, and LLM-backed
// roadmap, career, interest and project generation.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
	"github.com/anatolykoptev/go_roadmap/internal/roadmapserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	c := loadConfig()
	ctx := context.Background()

	store, err := roadmap.OpenStore(ctx, c)
	if err != nil {
		slog.Error("store init failed", slog.String("driver", c.Driver()), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("store ready", slog.String("driver", c.Driver()))

	graph := roadmap.NewGraph(store)
	if c.SeedCatalog {
		n, err := roadmap.Seed(ctx, graph)
		if err != nil {
			slog.Warn("catalog seed failed", slog.Any("error", err))
		} else if n > 0 {
			slog.Info("catalog seeded", slog.Int("careers", n))
		}
	}

	cache := engine.NewCache(c)
	defer cache.Close()

	gen := roadmap.NewGenerator(engine.NewLLM(c), cache, nil)

	slog.Info("starting go_roadmap",
		slog.String("port", mcpPort),
		slog.String("model", c.LLMModel),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_roadmap",
		Version: version,
	}, nil)

	roadmapserver.RegisterTools(server, graph, gen)
	slog.Info("tools registered", slog.Int("count", roadmapserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_roadmap",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	return engine.Config{
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.4),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 8192),
		LLMRatePerMin:      env.Int("LLM_RATE_PER_MIN", 30),
		LLMMaxRetries:      env.Int("LLM_MAX_RETRIES", 2),
		LLMHTTPClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},

		StoreDriver: env.Str("STORE_DRIVER", engine.DriverSQLite),
		SQLitePath:  env.Str("SQLITE_PATH", ""),
		DatabaseURL: env.Str("DATABASE_URL", ""),
		SeedCatalog: envBool("SEED_CATALOG", true),

		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 30*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	}
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		slog.Warn("invalid boolean, using default", slog.String("key", key), slog.Bool("default", def))
		return def
	}
	return v
}
