// Package schema models type nodes and canonicalizes the raw JSON attribute
// maps recovered by package parser.
//
// A raw node such as
//
//	{"type": "array", "items": {"type": "string"}, "xml": {"name": "symbols", "wrapped": true}}
//
// becomes a [Node] whose [Shape] is one of a fixed set. Each shape admits a
// fixed set of raw attributes ([LegalAttributes]); anything else is a
// *caterrors.ShapeError naming the unexpected attributes.
//
// Two fingerprints are derived from a Node:
//
//   - [Node.Signature] replaces variable content (property maps, enum
//     values, item types, xml metadata, discriminator names) with markers.
//     It tells which outlines occur in the corpus and how often.
//   - [Node.Canonical] and [Node.Hash] encode the whole structure with
//     property and enum order normalized. Two nodes are the same type when
//     their canonical encodings are equal ([Equal]).
//
// [Compare] lists path-addressed differences between two nodes, which the
// catalog uses to explain collisions.
//
// Known upstream defects on specific fields are repaired by the
// [Canonicalizer] when listed in its [Irregularities]; every repair is
// logged and recorded.
package schema
