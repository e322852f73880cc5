package corpusutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/parser"
)

// File names within an endpoint directory.
const (
	RequestFile  = "request.json"
	ResponseFile = "response.json"
	ErrorsFile   = "errcodes.json"
	EndpointFile = "endpoint.json"
)

type endpointFile struct {
	Method      string `json:"method"`
	Link        string `json:"link"`
	QueryParams map[string]struct {
		Description string `json:"description"`
		Required    bool   `json:"required"`
	} `json:"query_params"`
}

// Read walks root and returns one source per leaf directory, sorted by
// endpoint name. Two leaves with the same name are an error.
func Read(root string, logger parser.Logger) ([]catalog.Source, error) {
	return ReadFS(os.DirFS(root), logger)
}

// ReadFS is Read over an fs.FS.
func ReadFS(fsys fs.FS, logger parser.Logger) ([]catalog.Source, error) {
	log := parser.LoggerOrNop(logger)

	var leaves []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		entries, err := fs.ReadDir(fsys, path)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				return nil
			}
		}
		if path != "." {
			leaves = append(leaves, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}

	seen := make(map[string]string, len(leaves))
	sources := make([]catalog.Source, 0, len(leaves))
	for _, dir := range leaves {
		name := filepath.Base(filepath.FromSlash(dir))
		if prev, dup := seen[name]; dup {
			return nil, &caterrors.ConfigError{
				Option:  "corpus",
				Value:   name,
				Message: fmt.Sprintf("endpoint defined by both %s and %s", prev, dir),
			}
		}
		seen[name] = dir

		src, err := readEndpoint(fsys, dir, name)
		if err != nil {
			return nil, err
		}
		log.Debug("read endpoint", "endpoint", name, "dir", dir)
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Endpoint < sources[j].Endpoint })
	return sources, nil
}

func readEndpoint(fsys fs.FS, dir, name string) (catalog.Source, error) {
	src := catalog.Source{Endpoint: name}

	var err error
	if src.Request, err = readOptional(fsys, dir, RequestFile); err != nil {
		return src, err
	}
	if src.Response, err = readOptional(fsys, dir, ResponseFile); err != nil {
		return src, err
	}

	text, err := readOptional(fsys, dir, ErrorsFile)
	if err != nil {
		return src, err
	}
	if text != "" {
		if err := json.Unmarshal([]byte(text), &src.Errors); err != nil {
			return src, decodeError(dir, ErrorsFile, text, err)
		}
	}

	text, err = readOptional(fsys, dir, EndpointFile)
	if err != nil {
		return src, err
	}
	if text != "" {
		var ep endpointFile
		if err := json.Unmarshal([]byte(text), &ep); err != nil {
			return src, decodeError(dir, EndpointFile, text, err)
		}
		src.Method = ep.Method
		src.Link = ep.Link
		names := make([]string, 0, len(ep.QueryParams))
		for n := range ep.QueryParams {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			qp := ep.QueryParams[n]
			src.QueryParams = append(src.QueryParams, catalog.QueryParam{Name: n, Description: qp.Description, Required: qp.Required})
		}
	}
	return src, nil
}

func readOptional(fsys fs.FS, dir, file string) (string, error) {
	data, err := fs.ReadFile(fsys, dir+"/"+file)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("corpus: %w", err)
	}
	return string(data), nil
}

func decodeError(dir, file, text string, err error) error {
	return &caterrors.ParseError{Source: dir + "/" + file, Fragment: text, Message: "invalid JSON", Cause: err}
}

// TestdataDir returns the absolute path of the schema corpus checked in
// under testdata/schemas.
func TestdataDir() string {
	_, thisFile, _, ok := runtime.Caller(0)
	if ok {
		// Go up from internal/corpusutil to project root
		projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
		return filepath.Join(projectRoot, "testdata", "schemas")
	}
	return filepath.Join("testdata", "schemas")
}

// SkipIfNoTestdata skips the test when the testdata corpus is missing.
func SkipIfNoTestdata(t testing.TB) {
	t.Helper()
	if _, err := os.Stat(TestdataDir()); err != nil {
		t.Skipf("schema corpus not available: %v", err)
	}
}
