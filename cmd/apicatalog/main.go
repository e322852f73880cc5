package main

import (
	"fmt"
	"os"

	"github.com/erraggy/apicatalog"
	"github.com/erraggy/apicatalog/cmd/apicatalog/commands"
)

// commandNames lists every command, for suggestions on typos.
var commandNames = []string{"build", "generate", "inspect", "split", "schema", "mcp", "version", "help"}

var handlers = map[string]func([]string) error{
	"build":    commands.HandleBuild,
	"generate": commands.HandleGenerate,
	"inspect":  commands.HandleInspect,
	"split":    commands.HandleSplit,
	"schema":   commands.HandleSchema,
	"mcp":      commands.HandleMCP,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("apicatalog %s\n", apicatalog.BuildInfo())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	handler, ok := handlers[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", s)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}
	if err := handler(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// suggestCommand returns the command closest to input, or "" when none is
// within an edit distance of 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b, with
// transpositions of adjacent characters counted as one edit.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`apicatalog - type catalog builder for scraped API documentation

Usage:
  apicatalog <command> [options]

Commands:
  build       Build the type catalog from a schemas directory
  generate    Render a catalog as protobuf, Go or OpenAPI definitions
  inspect     Show the shape census and name collisions of a corpus
  split       Print the groups and one-of families of one raw document
  schema      Print the JSON Schema of a catalog file format
  mcp         Serve the catalog tools over MCP on stdio
  version     Show version information
  help        Show this help message

Examples:
  apicatalog build -o out ./schemas
  apicatalog build -watch -report -o out ./schemas
  apicatalog generate -target proto -o tdameritrade.proto out/catalog.json
  apicatalog inspect -collisions ./schemas
  apicatalog split ./schemas/Accounts/GetAccount/response.json

Run 'apicatalog <command> --help' for more information on a command.`)
}
