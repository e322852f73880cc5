package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/config"
	"github.com/erraggy/apicatalog/internal/corpusutil"
	"github.com/erraggy/apicatalog/internal/testutil"
	"github.com/erraggy/apicatalog/parser"
	"github.com/erraggy/apicatalog/tables"
)

func TestSetupBuildFlags(t *testing.T) {
	fs, flags := SetupBuildFlags()

	t.Run("default values", func(t *testing.T) {
		assert.Equal(t, "out", flags.Output)
		assert.Equal(t, "json", flags.Format)
		assert.Empty(t, flags.Tables)
		assert.False(t, flags.Strict)
		assert.False(t, flags.MergeEquivalent)
		assert.False(t, flags.Report)
		assert.False(t, flags.Watch)
		assert.Equal(t, 500*time.Millisecond, flags.Debounce)
	})

	t.Run("parse flags", func(t *testing.T) {
		args := []string{"-o", "./dist", "-format", "yaml", "-strict", "-report", "-tables", "t.yaml", "schemas"}
		require.NoError(t, fs.Parse(args))
		assert.Equal(t, "./dist", flags.Output)
		assert.Equal(t, "yaml", flags.Format)
		assert.True(t, flags.Strict)
		assert.True(t, flags.Report)
		assert.Equal(t, "t.yaml", flags.Tables)
		assert.Equal(t, "schemas", fs.Arg(0))
	})
}

func TestHandleBuild_Args(t *testing.T) {
	captureOutput(t)

	t.Run("no args", func(t *testing.T) {
		assert.Error(t, HandleBuild([]string{}))
	})
	t.Run("help", func(t *testing.T) {
		assert.NoError(t, HandleBuild([]string{"--help"}))
	})
	t.Run("bad format", func(t *testing.T) {
		assert.Error(t, HandleBuild([]string{"-format", "xml", "schemas"}))
	})
	t.Run("missing directory", func(t *testing.T) {
		assert.Error(t, HandleBuild([]string{"-o", t.TempDir(), "/nonexistent/schemas"}))
	})
}

func TestApplyBuildEnv(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		cfg       config.Config
		strict    bool
		merge     bool
		tablesArg string
	}{
		{"defaults", nil, config.Config{SuffixFallback: true}, false, false, ""},
		{"env disables suffix", nil, config.Config{SuffixFallback: false}, true, false, ""},
		{"env merges", nil, config.Config{SuffixFallback: true, MergeEquivalent: true}, false, true, ""},
		{"env tables", nil, config.Config{SuffixFallback: true, TablesFile: "env.yaml"}, false, false, "env.yaml"},
		{"flag beats env", []string{"-strict=false", "-tables", "flag.yaml"}, config.Config{TablesFile: "env.yaml"}, false, false, "flag.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, flags := SetupBuildFlags()
			require.NoError(t, fs.Parse(append(tt.args, "schemas")))
			cfg := tt.cfg
			applyBuildEnv(fs, flags, &cfg)
			assert.Equal(t, tt.strict, flags.Strict)
			assert.Equal(t, tt.merge, flags.MergeEquivalent)
			assert.Equal(t, tt.tablesArg, flags.Tables)
		})
	}
}

func TestHandleBuild_Corpus(t *testing.T) {
	corpusutil.SkipIfNoTestdata(t)
	stdout, stderr := captureOutput(t)
	out := t.TempDir()

	require.NoError(t, HandleBuild([]string{"-o", out, "-report", corpusutil.TestdataDir()}))

	cat, err := catalog.Load(filepath.Join(out, "catalog.json"))
	require.NoError(t, err)
	require.NoError(t, cat.Validate())
	assert.Len(t, cat.Endpoints, 7)

	for _, name := range []string{VersionFile, ReportFile, filepath.Join(EndpointsDir, "GetQuote.json")} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	var v catalog.Version
	data, err := os.ReadFile(filepath.Join(out, VersionFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &v))
	hash, err := catalog.ContentHash(cat)
	require.NoError(t, err)
	assert.Equal(t, hash, v.Hash)

	assert.Contains(t, stdout.String(), "Catalog: ")
	assert.Contains(t, stdout.String(), "Hash: "+hash)

	t.Run("rebuild is unchanged", func(t *testing.T) {
		require.NoError(t, HandleBuild([]string{"-o", out, corpusutil.TestdataDir()}))
		assert.Contains(t, stderr.String(), "catalog unchanged")
	})
}

func TestHandleBuild_YAML(t *testing.T) {
	corpusutil.SkipIfNoTestdata(t)
	captureOutput(t)
	out := t.TempDir()

	require.NoError(t, HandleBuild([]string{"-o", out, "-format", "yaml", corpusutil.TestdataDir()}))
	cat, err := catalog.Load(filepath.Join(out, "catalog.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Types)
	assert.NoFileExists(t, filepath.Join(out, ReportFile))
}

func TestHandleBuild_StrictWritesNothing(t *testing.T) {
	corpusutil.SkipIfNoTestdata(t)
	captureOutput(t)
	out := filepath.Join(t.TempDir(), "out")

	err := HandleBuild([]string{"-o", out, "-strict", corpusutil.TestdataDir()})
	require.Error(t, err)
	assert.NoDirExists(t, out)
}

func TestHandleBuild_EnvStrict(t *testing.T) {
	corpusutil.SkipIfNoTestdata(t)
	captureOutput(t)
	t.Setenv("APICATALOG_SUFFIX_FALLBACK", "false")
	out := filepath.Join(t.TempDir(), "out")

	require.Error(t, HandleBuild([]string{"-o", out, corpusutil.TestdataDir()}))
	require.NoError(t, HandleBuild([]string{"-o", out, "-strict=false", corpusutil.TestdataDir()}))
}

func TestHandleBuild_TablesOverride(t *testing.T) {
	captureOutput(t)
	schemas := testutil.WriteCorpus(t,
		testutil.NewQuoteEndpoint("GetQuote", "//Quote:\n{\"symbol\": {\"type\": \"string\"}}"),
		testutil.NewQuoteEndpoint("GetQuotes", "//Quote:\n{\"symbol\": {\"type\": \"string\"}, \"bidPrice\": {\"type\": \"number\"}}"),
	)

	t.Run("strict without override fails", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out")
		assert.Error(t, HandleBuild([]string{"-o", out, "-strict", schemas}))
	})

	t.Run("suffix fallback", func(t *testing.T) {
		out := t.TempDir()
		require.NoError(t, HandleBuild([]string{"-o", out, schemas}))
		cat, err := catalog.Load(filepath.Join(out, "catalog.json"))
		require.NoError(t, err)
		assert.Contains(t, cat.Types, "Quote")
		assert.Contains(t, cat.Types, "Quote2")
	})

	t.Run("override from tables file", func(t *testing.T) {
		tablesFile := testutil.WriteTempYAML(t, tables.Tables{
			Version:   tables.CurrentVersion,
			Overrides: []tables.Override{{Name: "Quote", Endpoint: "GetQuotes", Rename: "QuoteList"}},
		})
		out := t.TempDir()
		require.NoError(t, HandleBuild([]string{"-o", out, "-strict", "-tables", tablesFile, schemas}))
		cat, err := catalog.Load(filepath.Join(out, "catalog.json"))
		require.NoError(t, err)
		assert.Contains(t, cat.Types, "Quote")
		assert.Contains(t, cat.Types, "QuoteList")
		assert.Equal(t, []string{"GetQuotes"}, cat.Types["QuoteList"].Sources)
	})
}

func TestWatch(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "Quotes", "GetQuote")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	ignored := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(ignored, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, root, 50*time.Millisecond, parser.NopLogger{}, func() error {
			runs.Add(1)
			fired <- struct{}{}
			return nil
		}, ignored)
	}()

	// Give the watcher time to register the tree.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(ignored, "catalog.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(sub, ".response.json.tmp-1"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load(), "ignored paths must not trigger a rebuild")

	require.NoError(t, os.WriteFile(filepath.Join(sub, "response.json"), []byte(`{"a": 1}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "endpoint.json"), []byte(`{}`), 0o600))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild not triggered")
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "changes within the debounce interval run once")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_NewNestedDirectory(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, root, 50*time.Millisecond, parser.NopLogger{}, func() error {
			fired <- struct{}{}
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	nested := filepath.Join(root, "Orders", "PlaceOrder")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("creating the group directory did not trigger a rebuild")
	}
	// Let the first run settle before touching the nested directory.
	time.Sleep(100 * time.Millisecond)
	for len(fired) > 0 {
		<-fired
	}

	require.NoError(t, os.WriteFile(filepath.Join(nested, "response.json"), []byte(`{"a": 1}`), 0o600))
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("changes inside a newly created nested directory are not watched")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
