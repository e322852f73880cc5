// Package corpusutil reads an on-disk schema corpus into catalog sources.
//
// A corpus is a directory tree whose leaf directories are endpoints, named
// after the endpoint. Each leaf may hold:
//
//   - request.json: the raw request document
//   - response.json: the raw response document
//   - errcodes.json: an object mapping HTTP status codes to messages
//   - endpoint.json: {"method", "link", "query_params": {name: {description, required}}}
//
// Any other file, such as example.json, is ignored. Intermediate directories
// group endpoints by category and do not contribute to names.
package corpusutil
