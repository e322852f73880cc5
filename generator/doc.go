// Package generator renders a catalog in a target schema language.
//
// Three targets are supported:
//
//   - proto: a proto2 file with one message per type, prefixed enums with an
//     UNSPECIFIED zero value, map fields for additional-properties objects,
//     a oneof inside every discriminated message, a wrapper message per
//     one-of family and an HTTP error code enum per endpoint
//   - go: structs, string enums with constants and a sealed interface per
//     one-of family, formatted with goimports
//   - openapi: an OpenAPI 3.0.3 document whose components.schemas holds
//     every type, enum and one-of, plus one operation per linked endpoint
//
// The catalog keeps types, one-ofs and enums apart, but each target has a
// single namespace. Type names are kept; a clashing one-of gets a OneOf
// suffix and a clashing enum an Enum suffix.
//
// # Quick Start
//
//	cat, err := catalog.Load("out/catalog.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := generator.Generate(cat, generator.Options{
//		Target:  generator.TargetProto,
//		Package: "tda",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, issue := range result.Issues {
//		fmt.Println(issue)
//	}
//	if err := result.File.WriteFile("tda.proto"); err != nil {
//		log.Fatal(err)
//	}
//
// Elements a target cannot express, such as nested arrays in proto2, are
// left out and reported as warnings.
package generator
