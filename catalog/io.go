package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/apicatalog/internal/fileutil"
)

// Format is a serialization format for catalogs and reports.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension; anything other
// than .yaml or .yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("catalog: unknown format %q", name)
}

// Encode serializes any catalog value (a Catalog, Report or Version) in the
// given format. JSON output is indented and newline-terminated; map keys are
// sorted in both formats.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("catalog: unknown format %q", f)
}

// Marshal serializes a catalog.
func Marshal(c *Catalog, f Format) ([]byte, error) {
	return Encode(c, f)
}

// Unmarshal decodes a catalog written by Marshal.
func Unmarshal(data []byte, f Format) (*Catalog, error) {
	c := &Catalog{}
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, c)
	case FormatJSON, "":
		err = json.Unmarshal(data, c)
	default:
		err = fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if c.Types == nil {
		c.Types = make(map[string]*NamedType)
	}
	if c.OneOfs == nil {
		c.OneOfs = make(map[string]*OneOf)
	}
	if c.Enums == nil {
		c.Enums = make(map[string]*EnumDef)
	}
	if c.Endpoints == nil {
		c.Endpoints = make(map[string]*Endpoint)
	}
	return c, nil
}

// Load reads a catalog file, choosing the format from its extension.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c, err := Unmarshal(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteFile writes v to path atomically, choosing the format from the
// extension.
func WriteFile(path string, v any) error {
	data, err := Encode(v, FormatFromPath(path))
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, data, fileutil.OwnerReadWrite)
}

// WriteContributions writes one file per endpoint into dir, holding the
// endpoint's record and everything it references.
func WriteContributions(dir string, c *Catalog, f Format) error {
	for _, name := range c.EndpointNames() {
		sub, err := c.Contribution(name)
		if err != nil {
			return err
		}
		data, err := Encode(sub, f)
		if err != nil {
			return err
		}
		if err := fileutil.WriteAtomic(filepath.Join(dir, name+"."+string(f)), data, fileutil.OwnerReadWrite); err != nil {
			return err
		}
	}
	return nil
}
