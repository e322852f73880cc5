// Package catalog aggregates the types defined by every endpoint document of
// a corpus into one deduplicated, collision-free catalog.
//
// # Overview
//
// Each Source carries the raw request and response documents of one
// endpoint together with its method, link, query parameters and error
// codes. A Builder parses and canonicalizes every document, then resolves
// names across the whole corpus:
//
//   - Types with the same name and shape collapse into one entry.
//   - Types with the same name and different shapes are renamed from the
//     override table, falling back to numbered suffixes (Name, Name2, ...)
//     in first-seen order.
//   - Enums are deduplicated by value set regardless of field name.
//   - One-of families must be identical wherever they appear.
//   - Discriminated types are linked to the family their discriminator
//     selects among.
//
// Every aggregation step iterates names in lexicographic order, so identical
// input produces a byte-identical catalog.
//
// # Usage
//
//	b, err := catalog.NewBuilder(catalog.WithTables(t))
//	if err != nil {
//		return err
//	}
//	cat, report, err := b.Build(ctx, sources)
//	if err != nil {
//		return err
//	}
//	version, err := catalog.NewVersion(cat)
//
// Errors are the typed errors of package caterrors; use errors.As to find
// the offending document or name.
//
// # Output
//
// Marshal and WriteFile serialize a Catalog in JSON or YAML. Contribution
// cuts out the part of the catalog a single endpoint needs, and
// WriteContributions writes one such file per endpoint. NewVersion derives a
// content hash that changes whenever any part of the catalog does.
package catalog
