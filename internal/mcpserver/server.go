// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes apicatalog builds as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/apicatalog"
)

const serverInstructions = `apicatalog MCP server: builds a deduplicated type catalog from a directory of scraped endpoint schema documents and answers questions about it.

Every catalog tool takes schemas_dir, the directory with one subdirectory per endpoint (request.json, response.json, errcodes.json, endpoint.json).

Configuration: defaults are configurable via APICATALOG_MCP_* environment variables set in your MCP client config.
- APICATALOG_MCP_CACHE_ENABLED (default: true), cache built catalogs per session
- APICATALOG_MCP_CACHE_TTL (default: 15m)
- APICATALOG_MCP_LIST_LIMIT (default: 50), default page size of list_collisions
- APICATALOG_MCP_TABLES_FILE, static tables used instead of the embedded ones

Caching: a build is keyed by the directory, the newest modification time under it and the build flags, so edits invalidate it.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		builds.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "apicatalog", Version: apicatalog.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_catalog",
		Description: "Build the type catalog of a schemas directory. Returns counts, the content hash, the collisions and how they were resolved, repaired irregularities and skipped documents. Use full=true to also return the catalog JSON; for large corpora prefer lookup_type.",
	}, handleBuild)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "lookup_type",
		Description: "Look up a name in the catalog of a schemas directory. Searches types, one-of families and enums, including merged aliases, and returns the definition with the endpoints that use it.",
	}, handleLookup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_collisions",
		Description: "List the name collisions found while building the catalog of a schemas directory. Filter by resolution (override, suffix, override+suffix) or kind (type, enum). Use offset/limit to paginate.",
	}, handleListCollisions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "split_document",
		Description: "Split one raw schema document into its labeled top-level groups and one-of families without building a catalog. Useful to check why a document fails to parse.",
	}, handleSplit)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
