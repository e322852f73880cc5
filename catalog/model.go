package catalog

import (
	"fmt"

	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/schema"
)

// Catalog is the deduplicated, collision-free set of named types, one-of
// families and enums recovered from a corpus, plus the per-endpoint records
// that reference them.
//
// Names are unique within each map. Nested object and enum nodes carry only
// their shape and a Ref to the entry they stand for.
type Catalog struct {
	Types     map[string]*NamedType `json:"types" yaml:"types"`
	OneOfs    map[string]*OneOf     `json:"oneOfs" yaml:"oneOfs"`
	Enums     map[string]*EnumDef   `json:"enums" yaml:"enums"`
	Endpoints map[string]*Endpoint  `json:"endpoints" yaml:"endpoints"`
}

// NamedType is a message-like aggregate.
type NamedType struct {
	Name string       `json:"name" yaml:"name"`
	Node *schema.Node `json:"node" yaml:"node"`
	// Sources lists the endpoints that define the type, sorted
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	// Aliases lists names merged into this one by WithMergeEquivalent
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// OneOf is a tagged union of named alternatives.
type OneOf struct {
	Name string `json:"name" yaml:"name"`
	// Alternatives lists the catalog type names of the members, in document order
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
	// Discriminator is the field that selects the member, when known
	Discriminator string `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	// Tags maps discriminator values to member type names
	Tags    map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Sources []string          `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// EnumDef is a named enumeration.
type EnumDef struct {
	Name string `json:"name" yaml:"name"`
	// Field is the first field name the value set was seen under
	Field   string   `json:"field" yaml:"field"`
	Values  []string `json:"values" yaml:"values"`
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Param is one URL or query parameter of an endpoint.
type Param struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Type        *schema.Node `json:"type,omitempty" yaml:"type,omitempty"`
}

// MessageRef is one top-level group of a request or response document.
type MessageRef struct {
	// Name is the group label in the source document
	Name string `json:"name" yaml:"name"`
	// Type is the catalog type the group resolved to; empty when Undefined
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Undefined is set when the group body was the undefined token
	Undefined bool `json:"undefined,omitempty" yaml:"undefined,omitempty"`
}

// Endpoint is the record of one API operation.
type Endpoint struct {
	Name        string            `json:"name" yaml:"name"`
	Method      string            `json:"method,omitempty" yaml:"method,omitempty"`
	Link        string            `json:"link,omitempty" yaml:"link,omitempty"`
	URLParams   []Param           `json:"urlParams,omitempty" yaml:"urlParams,omitempty"`
	QueryParams []Param           `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Request     []MessageRef      `json:"request,omitempty" yaml:"request,omitempty"`
	Response    []MessageRef      `json:"response,omitempty" yaml:"response,omitempty"`
	OneOfs      []string          `json:"oneOfs,omitempty" yaml:"oneOfs,omitempty"`
	Errors      map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
	// Skipped lists the directions whose document was an error page
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		Types:     make(map[string]*NamedType),
		OneOfs:    make(map[string]*OneOf),
		Enums:     make(map[string]*EnumDef),
		Endpoints: make(map[string]*Endpoint),
	}
}

// TypeNames returns the type names, sorted.
func (c *Catalog) TypeNames() []string { return maputil.SortedKeys(c.Types) }

// OneOfNames returns the one-of names, sorted.
func (c *Catalog) OneOfNames() []string { return maputil.SortedKeys(c.OneOfs) }

// EnumNames returns the enum names, sorted.
func (c *Catalog) EnumNames() []string { return maputil.SortedKeys(c.Enums) }

// EndpointNames returns the endpoint names, sorted.
func (c *Catalog) EndpointNames() []string { return maputil.SortedKeys(c.Endpoints) }

// Validate checks that every reference resolves within the catalog and that
// every entry is stored under its own name.
func (c *Catalog) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, name := range c.TypeNames() {
		t := c.Types[name]
		if t.Name != name {
			add("type %s stored under %s", t.Name, name)
		}
		if t.Node == nil || !t.Node.Shape.Composite() {
			add("type %s is not an object", name)
			continue
		}
		c.checkNode(name, t.Node, add)
	}
	for _, name := range c.OneOfNames() {
		o := c.OneOfs[name]
		if o.Name != name {
			add("one-of %s stored under %s", o.Name, name)
		}
		for _, alt := range o.Alternatives {
			if _, ok := c.Types[alt]; !ok {
				add("one-of %s: unknown alternative %s", name, alt)
			}
		}
		for tag, alt := range o.Tags {
			if _, ok := c.Types[alt]; !ok {
				add("one-of %s: tag %s names unknown type %s", name, tag, alt)
			}
		}
	}
	for _, name := range c.EnumNames() {
		if e := c.Enums[name]; e.Name != name {
			add("enum %s stored under %s", e.Name, name)
		}
	}
	for _, name := range c.EndpointNames() {
		ep := c.Endpoints[name]
		for _, m := range append(append([]MessageRef(nil), ep.Request...), ep.Response...) {
			if m.Undefined {
				continue
			}
			if _, ok := c.Types[m.Type]; !ok {
				add("endpoint %s: group %s names unknown type %s", name, m.Name, m.Type)
			}
		}
		for _, o := range ep.OneOfs {
			if _, ok := c.OneOfs[o]; !ok {
				add("endpoint %s: unknown one-of %s", name, o)
			}
		}
		for _, p := range append(append([]Param(nil), ep.URLParams...), ep.QueryParams...) {
			if p.Type != nil {
				c.checkNode(name+"."+p.Name, p.Type, add)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (c *Catalog) checkNode(path string, n *schema.Node, add func(string, ...any)) {
	if n == nil {
		return
	}
	switch n.Shape {
	case schema.ShapeEnum:
		if _, ok := c.Enums[n.Ref]; !ok {
			add("%s: unknown enum %q", path, n.Ref)
		}
	case schema.ShapeObject, schema.ShapeDiscriminated:
		if n.Ref != "" {
			if _, ok := c.Types[n.Ref]; !ok {
				add("%s: unknown type %q", path, n.Ref)
			}
		}
		if n.OneOf != "" {
			if _, ok := c.OneOfs[n.OneOf]; !ok {
				add("%s: unknown one-of %q", path, n.OneOf)
			}
		}
	}
	for _, p := range n.Properties {
		c.checkNode(path+"."+p.Name, p.Node, add)
	}
	c.checkNode(path+"[]", n.Items, add)
	c.checkNode(path+"{}", n.Additional, add)
}

// ValidationError lists dangling references.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("catalog has %d dangling reference(s)", len(e.Problems))
	for _, p := range e.Problems {
		msg += "\n  " + p
	}
	return msg
}

// Contribution returns the sub-catalog an endpoint needs: its own record and
// the transitive closure of the types, one-ofs and enums it references.
func (c *Catalog) Contribution(endpoint string) (*Catalog, error) {
	ep, ok := c.Endpoints[endpoint]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown endpoint %q", endpoint)
	}
	out := New()
	out.Endpoints[endpoint] = ep

	var (
		addType  func(name string)
		addOneOf func(name string)
		addNode  func(n *schema.Node)
	)
	addNode = func(n *schema.Node) {
		if n == nil {
			return
		}
		switch n.Shape {
		case schema.ShapeEnum:
			if e, ok := c.Enums[n.Ref]; ok {
				out.Enums[n.Ref] = e
			}
		case schema.ShapeObject, schema.ShapeDiscriminated:
			if n.Ref != "" {
				addType(n.Ref)
			}
			if n.OneOf != "" {
				addOneOf(n.OneOf)
			}
		}
		for _, p := range n.Properties {
			addNode(p.Node)
		}
		addNode(n.Items)
		addNode(n.Additional)
	}
	addType = func(name string) {
		if _, done := out.Types[name]; done {
			return
		}
		t, ok := c.Types[name]
		if !ok {
			return
		}
		out.Types[name] = t
		addNode(t.Node)
	}
	addOneOf = func(name string) {
		if _, done := out.OneOfs[name]; done {
			return
		}
		o, ok := c.OneOfs[name]
		if !ok {
			return
		}
		out.OneOfs[name] = o
		for _, alt := range o.Alternatives {
			addType(alt)
		}
	}

	for _, m := range ep.Request {
		addType(m.Type)
	}
	for _, m := range ep.Response {
		addType(m.Type)
	}
	for _, o := range ep.OneOfs {
		addOneOf(o)
	}
	for _, p := range ep.URLParams {
		addNode(p.Type)
	}
	for _, p := range ep.QueryParams {
		addNode(p.Type)
	}
	return out, nil
}
