package mcpserver

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from APICATALOG_MCP_* environment variables.
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheMaxSize       int           `envconfig:"CACHE_MAX_SIZE" default:"8"`
	CacheTTL           time.Duration `envconfig:"CACHE_TTL" default:"15m"`
	CacheSweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"60s"`

	// List tool defaults.
	ListLimit int `envconfig:"LIST_LIMIT" default:"50"`
	MaxLimit  int `envconfig:"MAX_LIMIT" default:"500"`

	// MaxInlineSize bounds split_document content.
	MaxInlineSize int64 `envconfig:"MAX_INLINE_SIZE" default:"4194304"`

	// TablesFile replaces the embedded tables for every build.
	TablesFile string `envconfig:"TABLES_FILE"`
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

func defaultConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:       true,
		CacheMaxSize:       8,
		CacheTTL:           15 * time.Minute,
		CacheSweepInterval: 60 * time.Second,
		ListLimit:          50,
		MaxLimit:           500,
		MaxInlineSize:      4 << 20,
	}
}

// loadConfig reads configuration from the environment. Invalid values log a
// warning and fall back to the defaults.
func loadConfig() *serverConfig {
	var c serverConfig
	if err := envconfig.Process("apicatalog_mcp", &c); err != nil {
		slog.Warn("invalid MCP env var, using defaults", "error", err)
		return defaultConfig()
	}
	if c.CacheMaxSize <= 0 || c.ListLimit <= 0 || c.MaxLimit < c.ListLimit {
		slog.Warn("invalid MCP limits, using defaults", "cache_max_size", c.CacheMaxSize, "list_limit", c.ListLimit, "max_limit", c.MaxLimit)
		d := defaultConfig()
		d.TablesFile = c.TablesFile
		return d
	}
	return &c
}
