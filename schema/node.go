package schema

import (
	"bytes"
	"encoding/json"
	"hash/fnv"
	"sort"

	"github.com/erraggy/apicatalog/parser"
)

// Shape is the discriminated kind of a type node.
type Shape string

const (
	ShapeBoolean       Shape = "boolean"
	ShapeInteger       Shape = "integer"
	ShapeNumber        Shape = "number"
	ShapeString        Shape = "string"
	ShapeEnum          Shape = "enum"
	ShapeObject        Shape = "object"
	ShapeAdditional    Shape = "additionalPropertiesObject"
	ShapeArray         Shape = "array"
	ShapeDiscriminated Shape = "discriminatedUnion"
)

// Shapes returns every known shape.
func Shapes() []Shape {
	return []Shape{
		ShapeBoolean, ShapeInteger, ShapeNumber, ShapeString, ShapeEnum,
		ShapeObject, ShapeAdditional, ShapeArray, ShapeDiscriminated,
	}
}

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	_, ok := legalAttributes[s]
	return ok
}

// Composite reports whether nodes of this shape carry named properties.
func (s Shape) Composite() bool {
	return s == ShapeObject || s == ShapeDiscriminated
}

// rawType is the JSON "type" value for the shape.
func (s Shape) rawType() string {
	switch s {
	case ShapeEnum:
		return "string"
	case ShapeObject, ShapeAdditional, ShapeDiscriminated:
		return "object"
	default:
		return string(s)
	}
}

// legalAttributes lists the raw attributes each shape may carry.
var legalAttributes = map[Shape][]string{
	ShapeBoolean:       {"type", "default"},
	ShapeInteger:       {"type", "format"},
	ShapeNumber:        {"type", "format"},
	ShapeString:        {"type", "format"},
	ShapeEnum:          {"type", "format", "enum"},
	ShapeObject:        {"type", "properties"},
	ShapeAdditional:    {"type", "additionalProperties"},
	ShapeArray:         {"type", "items", "xml"},
	ShapeDiscriminated: {"type", "discriminator", "properties"},
}

// LegalAttributes returns the raw attributes legal for s, sorted.
func LegalAttributes(s Shape) []string {
	attrs := append([]string(nil), legalAttributes[s]...)
	sort.Strings(attrs)
	return attrs
}

// Property is one named field of an object node.
type Property struct {
	Name string `json:"name" yaml:"name"`
	Node *Node  `json:"node" yaml:"node"`
}

// XML is the wrapping metadata of an array node.
type XML struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Wrapped bool   `json:"wrapped,omitempty" yaml:"wrapped,omitempty"`
}

// Node is the structural description of one field or type.
//
// Shape determines which of the other fields are meaningful. Ref and OneOf
// are filled in by the catalog builder once names are resolved: Ref names
// the catalog type or enum a node stands for, and OneOf names the family a
// discriminated node selects from.
type Node struct {
	Shape         Shape      `json:"shape" yaml:"shape"`
	Format        string     `json:"format,omitempty" yaml:"format,omitempty"`
	Default       *bool      `json:"default,omitempty" yaml:"default,omitempty"`
	Enum          []string   `json:"enum,omitempty" yaml:"enum,omitempty"`
	Properties    []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Additional    *Node      `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	Items         *Node      `json:"items,omitempty" yaml:"items,omitempty"`
	XML           *XML       `json:"xml,omitempty" yaml:"xml,omitempty"`
	Discriminator string     `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	Ref           string     `json:"ref,omitempty" yaml:"ref,omitempty"`
	OneOf         string     `json:"oneOf,omitempty" yaml:"oneOf,omitempty"`
}

// Property returns the node of the named property.
func (n *Node) Property(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// PropertyNames returns the property names in source order.
func (n *Node) PropertyNames() []string {
	if n == nil || len(n.Properties) == 0 {
		return nil
	}
	out := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		out[i] = p.Name
	}
	return out
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Default != nil {
		d := *n.Default
		c.Default = &d
	}
	if n.Enum != nil {
		c.Enum = append([]string(nil), n.Enum...)
	}
	if n.Properties != nil {
		c.Properties = make([]Property, len(n.Properties))
		for i, p := range n.Properties {
			c.Properties[i] = Property{Name: p.Name, Node: p.Node.Clone()}
		}
	}
	c.Additional = n.Additional.Clone()
	c.Items = n.Items.Clone()
	if n.XML != nil {
		x := *n.XML
		c.XML = &x
	}
	return &c
}

// canonicalNode is the order-independent form used for equality and hashing.
type canonicalNode struct {
	Shape         Shape                     `json:"shape"`
	Format        string                    `json:"format,omitempty"`
	Default       *bool                     `json:"default,omitempty"`
	Enum          []string                  `json:"enum,omitempty"`
	Properties    map[string]*canonicalNode `json:"properties,omitempty"`
	Additional    *canonicalNode            `json:"additionalProperties,omitempty"`
	Items         *canonicalNode            `json:"items,omitempty"`
	XML           *XML                      `json:"xml,omitempty"`
	Discriminator string                    `json:"discriminator,omitempty"`
	Ref           string                    `json:"ref,omitempty"`
	OneOf         string                    `json:"oneOf,omitempty"`
}

func (n *Node) canonical() *canonicalNode {
	if n == nil {
		return nil
	}
	c := &canonicalNode{
		Shape:         n.Shape,
		Format:        n.Format,
		Default:       n.Default,
		Additional:    n.Additional.canonical(),
		Items:         n.Items.canonical(),
		XML:           n.XML,
		Discriminator: n.Discriminator,
		Ref:           n.Ref,
		OneOf:         n.OneOf,
	}
	if len(n.Enum) > 0 {
		c.Enum = append([]string(nil), n.Enum...)
		sort.Strings(c.Enum)
	}
	if len(n.Properties) > 0 {
		c.Properties = make(map[string]*canonicalNode, len(n.Properties))
		for _, p := range n.Properties {
			c.Properties[p.Name] = p.Node.canonical()
		}
	}
	return c
}

// Canonical returns the deep canonical JSON encoding of n. Property order
// and enum value order do not affect the result.
func (n *Node) Canonical() []byte {
	data, err := json.Marshal(n.canonical())
	if err != nil {
		// canonicalNode holds only strings, bools, maps and pointers.
		panic(err)
	}
	return data
}

// Hash returns the FNV-64a hash of the canonical encoding.
// Hash collisions are possible; use Equal to confirm.
func (n *Node) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write(n.Canonical())
	return h.Sum64()
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b *Node) bool {
	return bytes.Equal(a.Canonical(), b.Canonical())
}

// ToValue returns the raw attribute form of n, as it would appear in a
// source document.
func (n *Node) ToValue() *parser.Object {
	if n == nil {
		return nil
	}
	obj := parser.NewObject()
	obj.Set("type", n.Shape.rawType())
	if n.Format != "" {
		obj.Set("format", n.Format)
	}
	if n.Default != nil {
		obj.Set("default", *n.Default)
	}
	if n.Shape == ShapeEnum {
		values := make([]any, len(n.Enum))
		for i, v := range n.Enum {
			values[i] = v
		}
		obj.Set("enum", values)
	}
	if n.Shape == ShapeDiscriminated {
		obj.Set("discriminator", n.Discriminator)
	}
	if n.Shape.Composite() {
		obj.Set("properties", n.Body())
	}
	if n.Shape == ShapeAdditional {
		obj.Set("additionalProperties", n.Additional.ToValue())
	}
	if n.Shape == ShapeArray {
		obj.Set("items", n.Items.ToValue())
		if n.XML != nil {
			x := parser.NewObject()
			x.Set("name", n.XML.Name)
			x.Set("wrapped", n.XML.Wrapped)
			obj.Set("xml", x)
		}
	}
	return obj
}

// Body returns the raw property map of a composite node, in the form of a
// top-level group body.
func (n *Node) Body() *parser.Object {
	body := parser.NewObject()
	if n == nil {
		return body
	}
	for _, p := range n.Properties {
		body.Set(p.Name, p.Node.ToValue())
	}
	return body
}
