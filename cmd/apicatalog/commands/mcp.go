package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/apicatalog/internal/cliutil"
	"github.com/erraggy/apicatalog/internal/mcpserver"
)

// SetupMCPFlags creates the FlagSet of the mcp command, which has no flags
// of its own.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: apicatalog mcp\n\n")
		cliutil.Writef(fs.Output(), "Serve the catalog tools over MCP on stdin/stdout.\n\n")
		cliutil.Writef(fs.Output(), "Tools: build_catalog, lookup_type, list_collisions, split_document\n")
		cliutil.Writef(fs.Output(), "\nEnvironment:\n")
		cliutil.Writef(fs.Output(), "  APICATALOG_MCP_CACHE_ENABLED, APICATALOG_MCP_CACHE_MAX_SIZE, APICATALOG_MCP_CACHE_TTL\n")
		cliutil.Writef(fs.Output(), "  APICATALOG_MCP_LIST_LIMIT, APICATALOG_MCP_MAX_LIMIT, APICATALOG_MCP_TABLES_FILE\n")
	}
	return fs
}

// HandleMCP executes the mcp command
func HandleMCP(args []string) error {
	fs := SetupMCPFlags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
