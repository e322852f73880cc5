// Package tables holds the static, hand-curated configuration of a catalog
// build: the collision override table, the discriminator table, the list of
// known irregularities and the types of URL and query parameters.
//
// The tables annotate; they never discover. A type collision is detected by
// the catalog builder whether or not it is listed here, and a parameter the
// tables do not know is reported rather than guessed.
//
// The default tables are embedded:
//
//	t := tables.Default()
//	rename, ok := t.Override("Option", "GetQuote") // "OptionQuote", true
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/schema"
)

// CurrentVersion is the only table layout version Load accepts.
const CurrentVersion = 1

//go:embed default.yaml
var defaultYAML []byte

// Tables is the full static configuration.
type Tables struct {
	Version        int                   `yaml:"version" json:"version"`
	Overrides      []Override            `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	Discriminators map[string]string     `yaml:"discriminators,omitempty" json:"discriminators,omitempty"`
	Irregularities schema.Irregularities `yaml:"irregularities,omitempty" json:"irregularities,omitempty"`
	URLParams      map[string]TypeSpec   `yaml:"url_params,omitempty" json:"url_params,omitempty"`
	QueryParams    map[string]ParamType  `yaml:"query_params,omitempty" json:"query_params,omitempty"`
}

// Override maps the variant of a colliding type seen at one endpoint to its
// final name.
type Override struct {
	Name     string `yaml:"name" json:"name"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Rename   string `yaml:"rename" json:"rename"`
}

// TypeSpec is a primitive parameter type.
type TypeSpec struct {
	Type   string    `yaml:"type" json:"type"`
	Format string    `yaml:"format,omitempty" json:"format,omitempty"`
	Enum   []string  `yaml:"enum,omitempty" json:"enum,omitempty"`
	Items  *TypeSpec `yaml:"items,omitempty" json:"items,omitempty"`
}

// ParamType is either a single TypeSpec or a list of variants chosen by
// matching the parameter description.
type ParamType struct {
	TypeSpec `yaml:",inline"`
	Variants []Variant `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// Variant is one candidate type of a multi-typed parameter.
type Variant struct {
	Match string   `yaml:"match" json:"match"`
	Type  TypeSpec `yaml:"type" json:"type"`

	re *regexp.Regexp
}

// Default returns a fresh copy of the embedded tables.
func Default() *Tables {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("tables: embedded defaults are invalid: %v", err))
	}
	return t
}

// Load reads tables from a YAML file.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &caterrors.ConfigError{Option: "tables", Value: path, Message: "cannot read tables file", Cause: err}
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates YAML tables.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, &caterrors.ConfigError{Option: "tables", Message: "invalid YAML", Cause: err}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the version and the internal consistency of the tables and
// compiles variant patterns.
func (t *Tables) Validate() error {
	if t.Version != CurrentVersion {
		return &caterrors.ConfigError{Option: "tables.version", Value: t.Version, Message: fmt.Sprintf("unsupported version, want %d", CurrentVersion)}
	}

	seen := make(map[[2]string]string)
	for i, o := range t.Overrides {
		if o.Name == "" || o.Endpoint == "" || o.Rename == "" {
			return &caterrors.ConfigError{Option: fmt.Sprintf("tables.overrides[%d]", i), Message: "name, endpoint and rename are required"}
		}
		key := [2]string{o.Name, o.Endpoint}
		if prev, ok := seen[key]; ok && prev != o.Rename {
			return &caterrors.ConfigError{
				Option:  fmt.Sprintf("tables.overrides[%d]", i),
				Value:   o.Name + "@" + o.Endpoint,
				Message: fmt.Sprintf("conflicting renames %q and %q", prev, o.Rename),
			}
		}
		seen[key] = o.Rename
	}

	for name, ts := range t.URLParams {
		if err := ts.validate("tables.url_params." + name); err != nil {
			return err
		}
	}
	for name, pt := range t.QueryParams {
		opt := "tables.query_params." + name
		if len(pt.Variants) == 0 {
			if err := pt.TypeSpec.validate(opt); err != nil {
				return err
			}
			continue
		}
		if pt.Type != "" {
			return &caterrors.ConfigError{Option: opt, Message: "a parameter has either a type or variants"}
		}
		for i := range pt.Variants {
			v := &pt.Variants[i]
			re, err := regexp.Compile(v.Match)
			if err != nil {
				return &caterrors.ConfigError{Option: fmt.Sprintf("%s.variants[%d]", opt, i), Value: v.Match, Message: "invalid pattern", Cause: err}
			}
			v.re = re
			if err := v.Type.validate(fmt.Sprintf("%s.variants[%d]", opt, i)); err != nil {
				return err
			}
		}
		t.QueryParams[name] = pt
	}
	return nil
}

func (s *TypeSpec) validate(option string) error {
	switch s.Type {
	case "boolean", "integer", "number":
		if len(s.Enum) > 0 {
			return &caterrors.ConfigError{Option: option, Value: s.Type, Message: "enum values require type string"}
		}
	case "string":
	case "array":
		if s.Items == nil {
			return &caterrors.ConfigError{Option: option, Message: "array type without items"}
		}
		return s.Items.validate(option + ".items")
	default:
		return &caterrors.ConfigError{Option: option, Value: s.Type, Message: "unknown parameter type"}
	}
	return nil
}

// Override returns the final name of the variant of name seen at endpoint.
func (t *Tables) Override(name, endpoint string) (string, bool) {
	for _, o := range t.Overrides {
		if o.Name == name && o.Endpoint == endpoint {
			return o.Rename, true
		}
	}
	return "", false
}

// Discriminator returns the one-of family selected by the field name.
func (t *Tables) Discriminator(field string) (string, bool) {
	fam, ok := t.Discriminators[field]
	return fam, ok
}

// URLParamType returns the type of a URL parameter.
func (t *Tables) URLParamType(name string) (TypeSpec, bool) {
	ts, ok := t.URLParams[name]
	return ts, ok
}

// QueryParamType returns the type of a query parameter. For multi-typed
// names the first variant whose pattern matches description is used. The
// second result is false when the name is unknown or no variant matches.
func (t *Tables) QueryParamType(name, description string) (TypeSpec, bool) {
	pt, ok := t.QueryParams[name]
	if !ok {
		return TypeSpec{}, false
	}
	if len(pt.Variants) == 0 {
		return pt.TypeSpec, true
	}
	for _, v := range pt.Variants {
		re := v.re
		if re == nil {
			var err error
			if re, err = regexp.Compile(v.Match); err != nil {
				continue
			}
		}
		if re.MatchString(description) {
			return v.Type, true
		}
	}
	return TypeSpec{}, false
}

// QueryParamNames returns the known query parameter names, sorted.
func (t *Tables) QueryParamNames() []string {
	names := make([]string, 0, len(t.QueryParams))
	for name := range t.QueryParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Node converts the type spec into a type node.
func (s TypeSpec) Node() *schema.Node {
	n := &schema.Node{Format: s.Format}
	switch {
	case len(s.Enum) > 0:
		n.Shape = schema.ShapeEnum
		n.Enum = append([]string(nil), s.Enum...)
	case s.Type == "array":
		n.Shape = schema.ShapeArray
		if s.Items != nil {
			n.Items = s.Items.Node()
		}
	default:
		n.Shape = schema.Shape(s.Type)
	}
	return n
}
