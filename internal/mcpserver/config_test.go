package mcpserver

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// clearMCPEnv clears all APICATALOG_MCP_* env vars to isolate tests from the
// ambient environment.
func clearMCPEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APICATALOG_MCP_CACHE_ENABLED", "APICATALOG_MCP_CACHE_MAX_SIZE",
		"APICATALOG_MCP_CACHE_TTL", "APICATALOG_MCP_CACHE_SWEEP_INTERVAL",
		"APICATALOG_MCP_LIST_LIMIT", "APICATALOG_MCP_MAX_LIMIT",
		"APICATALOG_MCP_MAX_INLINE_SIZE", "APICATALOG_MCP_TABLES_FILE",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearMCPEnv(t)

	c := loadConfig()

	assert.Equal(t, defaultConfig(), c)
	assert.True(t, c.CacheEnabled)
	assert.Equal(t, 8, c.CacheMaxSize)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.Equal(t, 50, c.ListLimit)
	assert.Equal(t, int64(4<<20), c.MaxInlineSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearMCPEnv(t)
	t.Setenv("APICATALOG_MCP_CACHE_ENABLED", "false")
	t.Setenv("APICATALOG_MCP_CACHE_TTL", "2m")
	t.Setenv("APICATALOG_MCP_LIST_LIMIT", "10")
	t.Setenv("APICATALOG_MCP_TABLES_FILE", "tables.yaml")

	c := loadConfig()

	assert.False(t, c.CacheEnabled)
	assert.Equal(t, 2*time.Minute, c.CacheTTL)
	assert.Equal(t, 10, c.ListLimit)
	assert.Equal(t, "tables.yaml", c.TablesFile)
}

func TestLoadConfig_InvalidFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparsable duration", "APICATALOG_MCP_CACHE_TTL", "soon"},
		{"unparsable bool", "APICATALOG_MCP_CACHE_ENABLED", "maybe"},
		{"zero cache size", "APICATALOG_MCP_CACHE_MAX_SIZE", "0"},
		{"limit above max", "APICATALOG_MCP_LIST_LIMIT", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearMCPEnv(t)
			t.Setenv(tt.key, tt.value)
			assert.Equal(t, defaultConfig(), loadConfig())
		})
	}
}
