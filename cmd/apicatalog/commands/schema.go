package commands

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/cliutil"
	"github.com/erraggy/apicatalog/internal/fileutil"
	"github.com/erraggy/apicatalog/tables"
)

// schemaKinds maps each document the command can describe to a zero value
// of its Go type, and a title.
var schemaKinds = map[string]struct {
	value any
	title string
}{
	"catalog": {&catalog.Catalog{}, "apicatalog catalog"},
	"report":  {&catalog.Report{}, "apicatalog build report"},
	"version": {&catalog.Version{}, "apicatalog version record"},
	"tables":  {&tables.Tables{}, "apicatalog static tables"},
}

// SchemaKinds returns the document kinds, sorted.
func SchemaKinds() []string {
	kinds := make([]string, 0, len(schemaKinds))
	for k := range schemaKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// SchemaFlags contains flags for the schema command
type SchemaFlags struct {
	Kind   string
	Output string
}

// SetupSchemaFlags creates and configures a FlagSet for the schema command.
// Returns the FlagSet and a SchemaFlags struct with bound flag variables.
func SetupSchemaFlags() (*flag.FlagSet, *SchemaFlags) {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	flags := &SchemaFlags{}

	fs.StringVar(&flags.Kind, "kind", "catalog", "document to describe: "+strings.Join(SchemaKinds(), ", "))
	fs.StringVar(&flags.Output, "o", "", "output file (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file (default: stdout)")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: apicatalog schema [flags]\n\n")
		cliutil.Writef(fs.Output(), "Print the JSON Schema of an apicatalog file format.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  apicatalog schema > catalog.schema.json\n")
		cliutil.Writef(fs.Output(), "  apicatalog schema -kind tables -o tables.schema.json\n")
	}

	return fs, flags
}

// HandleSchema executes the schema command
func HandleSchema(args []string) error {
	fs, flags := SetupSchemaFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("schema command takes no arguments")
	}

	data, err := ReflectSchema(flags.Kind)
	if err != nil {
		return err
	}
	if flags.Output == "" {
		_, err = Stdout.Write(data)
		return err
	}
	out := filepath.Clean(flags.Output)
	if err := RejectSymlinkOutput(out); err != nil {
		return err
	}
	return fileutil.WriteAtomic(out, data, fileutil.ReadableByAll)
}

// ReflectSchema returns the indented JSON Schema of one document kind.
func ReflectSchema(kind string) ([]byte, error) {
	k, ok := schemaKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown schema kind %q. Valid kinds: %s", kind, strings.Join(SchemaKinds(), ", "))
	}
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
	}
	s := r.Reflect(k.value)
	s.Title = k.title

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return append(data, '\n'), nil
}
