package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/cliutil"
	"github.com/erraggy/apicatalog/internal/corpusutil"
	"github.com/erraggy/apicatalog/schema"
)

// InspectFlags contains flags for the inspect command
type InspectFlags struct {
	Shapes     bool
	Collisions bool
	Format     string
	Tables     string
	Verbose    bool
}

// InspectOutput is the structured form of the inspect command's output.
type InspectOutput struct {
	Census     []schema.SignatureCount  `json:"census,omitempty" yaml:"census,omitempty"`
	Collisions []catalog.CollisionEvent `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Skipped    []string                 `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// SetupInspectFlags creates and configures a FlagSet for the inspect command.
// Returns the FlagSet and an InspectFlags struct with bound flag variables.
func SetupInspectFlags() (*flag.FlagSet, *InspectFlags) {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	flags := &InspectFlags{}

	fs.BoolVar(&flags.Shapes, "shapes", false, "print the census of shape signatures")
	fs.BoolVar(&flags.Collisions, "collisions", false, "print the name collisions and their resolution")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.StringVar(&flags.Tables, "tables", "", "static tables YAML file")
	fs.BoolVar(&flags.Verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: apicatalog inspect [flags] <schemas-dir>\n\n")
		cliutil.Writef(fs.Output(), "Show how the documents of a corpus deduplicate.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  apicatalog inspect ./schemas\n")
		cliutil.Writef(fs.Output(), "  apicatalog inspect -collisions -format json ./schemas\n")
		cliutil.Writef(fs.Output(), "\nWith neither -shapes nor -collisions, both are printed.\n")
	}

	return fs, flags
}

// HandleInspect executes the inspect command
func HandleInspect(args []string) error {
	fs, flags := SetupInspectFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("inspect command requires exactly one schemas directory")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	if !flags.Shapes && !flags.Collisions {
		flags.Shapes, flags.Collisions = true, true
	}

	cfg, logger, err := environment(flags.Verbose)
	if err != nil {
		return err
	}
	dir := fs.Arg(0)
	sources, err := corpusutil.Read(dir, logger)
	if err != nil {
		return err
	}
	t, err := cfg.Tables(flags.Tables)
	if err != nil {
		return err
	}
	_, report, err := catalog.Build(context.Background(), sources, cfg.BuildOptions(t, logger)...)
	if err != nil {
		return fmt.Errorf("build %s: %w", dir, err)
	}

	out := InspectOutput{Skipped: report.Skipped}
	if flags.Shapes {
		out.Census = report.Census
	}
	if flags.Collisions {
		out.Collisions = append(append(out.Collisions, report.Collisions...), report.Enums...)
	}

	if flags.Format != FormatText {
		return OutputStructured(out, flags.Format)
	}
	printInspect(out, flags)
	return nil
}

func printInspect(out InspectOutput, flags *InspectFlags) {
	if flags.Shapes {
		cliutil.Writef(Stdout, "Shapes (%s)\n", cliutil.Plural(len(out.Census), "signature"))
		rows := make([][]string, 0, len(out.Census))
		for _, c := range out.Census {
			rows = append(rows, []string{strconv.Itoa(c.Count), string(c.Signature)})
		}
		cliutil.WriteTable(Stdout, []string{"count", "signature"}, rows)
	}
	if flags.Shapes && flags.Collisions {
		cliutil.Writef(Stdout, "\n")
	}
	if flags.Collisions {
		cliutil.Writef(Stdout, "Collisions (%d)\n", len(out.Collisions))
		rows := make([][]string, 0, len(out.Collisions))
		for _, ev := range out.Collisions {
			finals := make([]string, 0, len(ev.Variants))
			for _, v := range ev.Variants {
				finals = append(finals, fmt.Sprintf("%s[%s]", v.Final, strings.Join(v.Sources, ",")))
			}
			rows = append(rows, []string{ev.Kind, ev.Name, ev.Resolution, strings.Join(finals, " ")})
		}
		cliutil.WriteTable(Stdout, []string{"kind", "name", "resolution", "variants"}, rows)
	}
	if len(out.Skipped) > 0 {
		cliutil.Writef(Stdout, "\nSkipped: %s\n", strings.Join(out.Skipped, ", "))
	}
}
