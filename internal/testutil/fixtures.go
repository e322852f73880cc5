// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v4"
)

// QueryParam is one entry of an endpoint.json query_params map.
type QueryParam struct {
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Endpoint describes one endpoint directory of a synthetic corpus. Empty
// documents are not written.
type Endpoint struct {
	// Group is the parent directory, e.g. "Quotes"; empty puts the endpoint
	// at the corpus root
	Group       string
	Name        string
	Request     string
	Response    string
	Errors      map[string]string
	Method      string
	Link        string
	QueryParams map[string]QueryParam
}

// Dir returns the endpoint's directory below root.
func (e Endpoint) Dir(root string) string {
	return filepath.Join(root, e.Group, e.Name)
}

// NewQuoteEndpoint returns a GET endpoint whose response has one group.
func NewQuoteEndpoint(name, response string) Endpoint {
	return Endpoint{
		Group:    "Quotes",
		Name:     name,
		Response: response,
		Method:   "GET",
		Link:     "https://api.tdameritrade.com/v1/marketdata/" + name,
		Errors:   map[string]string{"401": "Unauthorized"},
	}
}

// WriteCorpus writes the endpoints as a schemas directory under a fresh
// temporary directory and returns its path.
func WriteCorpus(t *testing.T, endpoints ...Endpoint) string {
	t.Helper()
	root := t.TempDir()
	for _, e := range endpoints {
		WriteEndpoint(t, root, e)
	}
	return root
}

// WriteEndpoint writes one endpoint directory below root.
func WriteEndpoint(t *testing.T, root string, e Endpoint) {
	t.Helper()

	dir := e.Dir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create endpoint directory: %v", err)
	}
	write := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if e.Request != "" {
		write("request.json", []byte(e.Request))
	}
	if e.Response != "" {
		write("response.json", []byte(e.Response))
	}
	if len(e.Errors) > 0 {
		write("errcodes.json", mustJSON(t, e.Errors))
	}
	if e.Method != "" || e.Link != "" || len(e.QueryParams) > 0 {
		write("endpoint.json", mustJSON(t, map[string]any{
			"method":       e.Method,
			"link":         e.Link,
			"query_params": e.QueryParams,
		}))
	}
}

// Touch sets the modification time of path.
func Touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("Failed to touch %s: %v", path, err)
	}
}

// WriteTempYAML marshals a document to YAML and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary YAML file: %v", err)
	}

	return tmpFile
}

// WriteTempJSON marshals a document to JSON and writes it to a temporary file.
// Returns the path to the temporary file.
// The file is automatically cleaned up when the test completes (via t.TempDir).
func WriteTempJSON(t *testing.T, doc any) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.json")
	if err := os.WriteFile(tmpFile, mustJSON(t, doc), 0600); err != nil {
		t.Fatalf("Failed to write temporary JSON file: %v", err)
	}

	return tmpFile
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal document to JSON: %v", err)
	}
	return data
}
