package commands

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/generator"
	"github.com/erraggy/apicatalog/internal/cliutil"
)

// GenerateFlags contains flags for the generate command
type GenerateFlags struct {
	Target     string
	Output     string
	Package    string
	Title      string
	NoWarnings bool
	Strict     bool
}

// SetupGenerateFlags creates and configures a FlagSet for the generate command.
// Returns the FlagSet and a GenerateFlags struct with bound flag variables.
func SetupGenerateFlags() (*flag.FlagSet, *GenerateFlags) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	flags := &GenerateFlags{}

	targets := make([]string, 0, len(generator.Targets()))
	for _, t := range generator.Targets() {
		targets = append(targets, string(t))
	}

	fs.StringVar(&flags.Target, "target", "", "output language: "+strings.Join(targets, ", ")+" (required)")
	fs.StringVar(&flags.Target, "t", "", "output language (shorthand)")
	fs.StringVar(&flags.Output, "o", "", "output file or directory (default: the suggested file name)")
	fs.StringVar(&flags.Output, "output", "", "output file or directory (default: the suggested file name)")
	fs.StringVar(&flags.Package, "p", generator.DefaultPackage, "proto or Go package name")
	fs.StringVar(&flags.Package, "package", generator.DefaultPackage, "proto or Go package name")
	fs.StringVar(&flags.Title, "title", "", "OpenAPI info title (default: the package name)")
	fs.BoolVar(&flags.NoWarnings, "no-warnings", false, "suppress warning and info messages")
	fs.BoolVar(&flags.Strict, "strict", false, "fail when anything had to be approximated")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: apicatalog generate -target <%s> [flags] <catalog file>\n\n", strings.Join(targets, "|"))
		cliutil.Writef(fs.Output(), "Render a built catalog as protobuf, Go or OpenAPI definitions.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  apicatalog generate -target proto -o tdameritrade.proto out/catalog.json\n")
		cliutil.Writef(fs.Output(), "  apicatalog generate -target go -p tdapi -o ./tdapi/ out/catalog.json\n")
		cliutil.Writef(fs.Output(), "  apicatalog generate -target openapi -title \"TD Ameritrade\" out/catalog.yaml\n")
		cliutil.Writef(fs.Output(), "\nNotes:\n")
		cliutil.Writef(fs.Output(), "  - The catalog format follows the file extension (.json, .yaml, .yml)\n")
		cliutil.Writef(fs.Output(), "  - An output path ending in a separator receives the suggested file name\n")
	}

	return fs, flags
}

// HandleGenerate executes the generate command
func HandleGenerate(args []string) error {
	fs, flags := SetupGenerateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("generate command requires exactly one catalog file")
	}
	if flags.Target == "" {
		fs.Usage()
		return fmt.Errorf("target is required (use -target)")
	}
	target, err := generator.ParseTarget(flags.Target)
	if err != nil {
		return err
	}

	catalogPath := fs.Arg(0)
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("invalid catalog %s: %w", catalogPath, err)
	}

	startTime := time.Now()
	result, err := generator.Generate(cat, generator.Options{
		Target:  target,
		Package: flags.Package,
		Title:   flags.Title,
	})
	if err != nil {
		return fmt.Errorf("generating %s: %w", target, err)
	}
	elapsed := time.Since(startTime)

	if !flags.NoWarnings {
		for _, issue := range result.Issues {
			cliutil.Writef(Stderr, "  %s\n", issue.String())
		}
	}
	if flags.Strict && result.HasWarnings() {
		return fmt.Errorf("generation produced %s (strict mode)", cliutil.Plural(result.WarningCount, "warning"))
	}

	out := flags.Output
	if out != "" {
		cleaned := filepath.Clean(out)
		if err := RejectSymlinkOutput(cleaned); err != nil {
			return err
		}
		if strings.HasSuffix(out, string(filepath.Separator)) {
			cleaned += string(filepath.Separator)
		}
		out = cleaned
	}
	if err := result.File.WriteFile(out); err != nil {
		return err
	}

	written := out
	if written == "" || strings.HasSuffix(written, string(filepath.Separator)) {
		written = filepath.Join(written, filepath.Base(result.File.Name))
	}
	cliutil.Writef(Stdout, "Generated %s (%s) in %v\n", written, cliutil.Plural(result.GeneratedTypes, "definition"), elapsed)
	if result.WarningCount > 0 || result.InfoCount > 0 {
		cliutil.Writef(Stdout, "Issues: %s, %s\n", cliutil.Plural(result.WarningCount, "warning"), cliutil.Plural(result.InfoCount, "info"))
	}
	return nil
}
