package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/internal/corpusutil"
)

func TestSetupGenerateFlags(t *testing.T) {
	fs, flags := SetupGenerateFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Empty(t, flags.Target)
		assert.Empty(t, flags.Output)
		assert.Equal(t, "apicatalog", flags.Package)
		assert.False(t, flags.Strict)
	})

	t.Run("parse flags", func(t *testing.T) {
		require.NoError(t, fs.Parse([]string{"-t", "go", "-p", "tdapi", "-o", "out/", "catalog.json"}))
		assert.Equal(t, "go", flags.Target)
		assert.Equal(t, "tdapi", flags.Package)
		assert.Equal(t, "out/", flags.Output)
		assert.Equal(t, "catalog.json", fs.Arg(0))
	})
}

func TestHandleGenerate_Errors(t *testing.T) {
	captureOutput(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{}},
		{"no target", []string{"catalog.json"}},
		{"unknown target", []string{"-target", "thrift", "catalog.json"}},
		{"missing catalog", []string{"-target", "proto", "/nonexistent/catalog.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, HandleGenerate(tt.args))
		})
	}

	t.Run("help", func(t *testing.T) {
		assert.NoError(t, HandleGenerate([]string{"--help"}))
	})
}

// buildCatalog builds the test corpus into a temporary directory and returns
// the catalog path.
func buildCatalog(t *testing.T) string {
	t.Helper()
	corpusutil.SkipIfNoTestdata(t)
	out := t.TempDir()
	require.NoError(t, HandleBuild([]string{"-o", out, corpusutil.TestdataDir()}))
	return filepath.Join(out, "catalog.json")
}

func TestHandleGenerate_Targets(t *testing.T) {
	captureOutput(t)
	catalogPath := buildCatalog(t)

	tests := []struct {
		target string
		file   string
		want   []string
	}{
		{"proto", "api.proto", []string{`syntax = "proto2";`, "message OptionQuote"}},
		{"go", "api.go", []string{"package tdapi", "type OptionQuote struct"}},
		{"openapi", "api.json", []string{`"openapi": "3.0.3"`, `"OptionQuote"`}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			stdout, _ := captureOutput(t)
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, HandleGenerate([]string{"-target", tt.target, "-p", "tdapi", "-no-warnings", "-o", path, catalogPath}))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, string(data), w)
			}
			assert.Contains(t, stdout.String(), "Generated "+path)
		})
	}
}

func TestHandleGenerate_DirectoryOutput(t *testing.T) {
	captureOutput(t)
	catalogPath := buildCatalog(t)
	dir := t.TempDir() + string(filepath.Separator)

	require.NoError(t, HandleGenerate([]string{"-target", "proto", "-no-warnings", "-o", dir, catalogPath}))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".proto", filepath.Ext(entries[0].Name()))
}
