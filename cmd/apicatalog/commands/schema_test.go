package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaKinds(t *testing.T) {
	assert.Equal(t, []string{"catalog", "report", "tables", "version"}, SchemaKinds())
}

func TestReflectSchema(t *testing.T) {
	tests := []struct {
		kind  string
		props []string
	}{
		{"catalog", []string{"types", "oneOfs", "enums", "endpoints"}},
		{"report", []string{"totalCollisions", "collisions", "census"}},
		{"version", []string{"hash", "timestamp", "runId"}},
		{"tables", []string{"version", "overrides", "discriminators"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			data, err := ReflectSchema(tt.kind)
			require.NoError(t, err)

			var doc struct {
				Title      string                     `json:"title"`
				Type       string                     `json:"type"`
				Properties map[string]json.RawMessage `json:"properties"`
			}
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.Equal(t, "object", doc.Type)
			assert.NotEmpty(t, doc.Title)
			for _, p := range tt.props {
				assert.Contains(t, doc.Properties, p)
			}
		})
	}

	_, err := ReflectSchema("order")
	assert.ErrorContains(t, err, "unknown schema kind")
}

func TestHandleSchema(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		stdout, _ := captureOutput(t)
		require.NoError(t, HandleSchema(nil))
		assert.True(t, json.Valid(stdout.Bytes()))
	})

	t.Run("file", func(t *testing.T) {
		stdout, _ := captureOutput(t)
		path := filepath.Join(t.TempDir(), "version.schema.json")
		require.NoError(t, HandleSchema([]string{"-kind", "version", "-o", path}))
		assert.Empty(t, stdout.String())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"runId"`)
	})

	t.Run("errors", func(t *testing.T) {
		captureOutput(t)
		assert.Error(t, HandleSchema([]string{"extra"}))
		assert.Error(t, HandleSchema([]string{"-kind", "order"}))
		assert.NoError(t, HandleSchema([]string{"--help"}))
	})
}

func TestHandleMCP_Args(t *testing.T) {
	captureOutput(t)
	assert.Error(t, HandleMCP([]string{"extra"}))
	assert.NoError(t, HandleMCP([]string{"--help"}))
}
