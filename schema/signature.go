package schema

import (
	"encoding/json"
)

// Signature is the placeholder fingerprint of a node: its shape and scalar
// attributes with every variable sub-structure replaced by a fixed marker.
// Two nodes with the same Signature have the same outline, not necessarily
// the same content.
type Signature string

// Placeholders substituted for variable content.
const (
	PlaceholderProperties    = "<properties>"
	PlaceholderEnum          = "<enum>"
	PlaceholderItems         = "<items>"
	PlaceholderAdditional    = "<additionalProperties>"
	PlaceholderXML           = "<xml>"
	PlaceholderDiscriminator = "<discriminator>"
)

// SignatureCount is one census entry.
type SignatureCount struct {
	Signature Signature `json:"signature" yaml:"signature"`
	Count     int       `json:"count" yaml:"count"`
}

// Signature returns the placeholder signature of n. Attribute order in the
// source never affects the result.
func (n *Node) Signature() Signature {
	attrs := map[string]any{"type": n.Shape.rawType()}
	if n.Format != "" {
		attrs["format"] = n.Format
	}
	if n.Default != nil {
		attrs["default"] = *n.Default
	}
	switch n.Shape {
	case ShapeEnum:
		attrs["enum"] = PlaceholderEnum
	case ShapeObject:
		attrs["properties"] = PlaceholderProperties
	case ShapeDiscriminated:
		attrs["properties"] = PlaceholderProperties
		attrs["discriminator"] = PlaceholderDiscriminator
	case ShapeAdditional:
		attrs["additionalProperties"] = PlaceholderAdditional
	case ShapeArray:
		attrs["items"] = PlaceholderItems
		if n.XML != nil {
			attrs["xml"] = PlaceholderXML
		}
	}
	// encoding/json writes map keys in sorted order.
	data, _ := json.Marshal(attrs)
	return Signature(data)
}
