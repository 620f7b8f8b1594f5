package engine

import (
	"net/http"
	"strings"
	"time"
)

// Store drivers accepted by Config.StoreDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all engine configuration, injected from main.
// Nothing in the engine keeps a package-level copy: components receive
// the fields they need through their constructors.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRatePerMin      int // 0 = unlimited
	LLMMaxRetries      int
	LLMHTTPClient      *http.Client

	StoreDriver string // sqlite (default), postgres, memory
	SQLitePath  string
	DatabaseURL string
	SeedCatalog bool

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
}

// Driver returns the configured store driver, lower-cased, defaulting to SQLite.
func (c Config) Driver() string {
	if d := strings.ToLower(strings.TrimSpace(c.StoreDriver)); d != "" {
		return d
	}
	return DriverSQLite
}
