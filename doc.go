// Package apicatalog recovers a deduplicated type catalog from the comment
// annotated schema text published with the TD Ameritrade developer API.
//
// # Overview
//
// The schema scraper stores one directory per endpoint holding the raw
// request and response documents, the error code table and the endpoint
// parameters. apicatalog turns that corpus into a single catalog:
//
//   - parser: splits a raw document into labeled groups and one-of families
//     and normalizes the non-JSON notation into plain JSON
//   - schema: canonicalizes JSON schema nodes into shapes with stable
//     signatures, repairing the known irregularities of the corpus
//   - tables: the versioned override, discriminator and irregularity tables
//   - catalog: deduplicates types, one-ofs and enums across endpoints,
//     resolves name collisions and writes the catalog and its report
//   - generator: emits proto2, Go or OpenAPI 3 sources from a catalog
//
// # Quick Start
//
//	sources := []catalog.Source{
//		{Endpoint: "GetQuote", Method: "GET", Response: getQuoteText},
//		{Endpoint: "GetQuotes", Method: "GET", Response: getQuotesText},
//	}
//	cat, report, err := catalog.Build(ctx, sources)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%d types, %d collisions\n", len(cat.Types), report.TotalCollisions)
//
// The apicatalog command wraps the same steps:
//
//	apicatalog build -o out schemas
//	apicatalog generate -target proto -o api.proto out/catalog.json
package apicatalog
