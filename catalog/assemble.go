package catalog

import (
	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/schema"
)

// assemble adds one flattened type per resolved variant and points every
// top-level group at its final type name.
func (s *state) assemble() error {
	for _, name := range maputil.SortedKeys(s.variants) {
		v := s.variants[name]
		s.cat.Types[name] = &NamedType{
			Name:    name,
			Node:    flatten(v.first().node),
			Sources: v.sources(),
		}
	}
	for _, m := range s.messages {
		m.ref.Type = m.occ.node.Ref
	}
	return nil
}

// flatten copies a type node one level deep. Nested objects and enums are
// replaced by reference stubs; each is a catalog entry of its own.
func flatten(n *schema.Node) *schema.Node {
	out := &schema.Node{Shape: n.Shape, Discriminator: n.Discriminator, OneOf: n.OneOf}
	if len(n.Properties) > 0 {
		out.Properties = make([]schema.Property, len(n.Properties))
		for i, p := range n.Properties {
			out.Properties[i] = schema.Property{Name: p.Name, Node: stub(p.Node)}
		}
	}
	return out
}

func stub(n *schema.Node) *schema.Node {
	if n == nil {
		return nil
	}
	switch n.Shape {
	case schema.ShapeEnum:
		return &schema.Node{Shape: n.Shape, Ref: n.Ref}
	case schema.ShapeObject, schema.ShapeDiscriminated:
		return &schema.Node{Shape: n.Shape, Ref: n.Ref, Discriminator: n.Discriminator, OneOf: n.OneOf}
	case schema.ShapeArray:
		out := &schema.Node{Shape: n.Shape, Items: stub(n.Items)}
		if n.XML != nil {
			x := *n.XML
			out.XML = &x
		}
		return out
	case schema.ShapeAdditional:
		return &schema.Node{Shape: n.Shape, Additional: stub(n.Additional)}
	default:
		return n.Clone()
	}
}
