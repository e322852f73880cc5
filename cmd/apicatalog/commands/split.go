package commands

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/internal/cliutil"
	"github.com/erraggy/apicatalog/parser"
)

// SplitFlags contains flags for the split command
type SplitFlags struct {
	Label   string
	Format  string
	Verbose bool
}

// SplitGroup is one top-level group of a split document.
type SplitGroup struct {
	Name      string   `json:"name" yaml:"name"`
	Line      int      `json:"line" yaml:"line"`
	Undefined bool     `json:"undefined,omitempty" yaml:"undefined,omitempty"`
	Fields    []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// SplitFamily is one one-of family of a split document.
type SplitFamily struct {
	Name         string       `json:"name" yaml:"name"`
	Line         int          `json:"line" yaml:"line"`
	Alternatives []SplitGroup `json:"alternatives" yaml:"alternatives"`
}

// SplitOutput is the structured form of the split command's output.
type SplitOutput struct {
	Source   string        `json:"source" yaml:"source"`
	Skipped  bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Groups   []SplitGroup  `json:"groups,omitempty" yaml:"groups,omitempty"`
	Families []SplitFamily `json:"families,omitempty" yaml:"families,omitempty"`
}

// SetupSplitFlags creates and configures a FlagSet for the split command.
// Returns the FlagSet and a SplitFlags struct with bound flag variables.
func SetupSplitFlags() (*flag.FlagSet, *SplitFlags) {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	flags := &SplitFlags{}

	fs.StringVar(&flags.Label, "label", "", "group name of a bare object (default: the file's directory name)")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		cliutil.Writef(fs.Output(), "Usage: apicatalog split [flags] <document file>\n\n")
		cliutil.Writef(fs.Output(), "Print the labeled groups and one-of families of one raw document.\n\n")
		cliutil.Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		cliutil.Writef(fs.Output(), "\nExamples:\n")
		cliutil.Writef(fs.Output(), "  apicatalog split schemas/Accounts/GetAccount/response.json\n")
		cliutil.Writef(fs.Output(), "  apicatalog split -format json schemas/Orders/PlaceOrder/request.json\n")
	}

	return fs, flags
}

// HandleSplit executes the split command
func HandleSplit(args []string) error {
	fs, flags := SetupSplitFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("split command requires exactly one document file")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}
	_, logger, err := environment(flags.Verbose)
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path) //nolint:gosec // G304 - user-supplied document path
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	endpoint := filepath.Base(filepath.Dir(filepath.Clean(path)))
	source := endpoint + "/" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	label := flags.Label
	if label == "" {
		label = endpoint
	}

	n := parser.Normalizer{Logger: logger}
	rec, err := n.Normalize(source, label, string(data))
	if err != nil {
		return err
	}
	out := summarize(rec)

	if flags.Format != FormatText {
		return OutputStructured(out, flags.Format)
	}
	printSplit(out)
	return nil
}

func summarize(rec *parser.Record) SplitOutput {
	out := SplitOutput{Source: rec.Source, Skipped: rec.Skipped}
	for _, g := range rec.Top {
		sg := SplitGroup{Name: g.Name, Line: g.Line, Undefined: g.Undefined()}
		if g.Object != nil {
			sg.Fields = g.Object.Keys()
		}
		out.Groups = append(out.Groups, sg)
	}
	for _, f := range rec.Sub {
		sf := SplitFamily{Name: f.Name, Line: f.Line}
		for _, a := range f.Alternatives {
			alt := SplitGroup{Name: a.Name, Line: a.Line}
			if a.Object != nil {
				alt.Fields = a.Object.Keys()
			}
			sf.Alternatives = append(sf.Alternatives, alt)
		}
		out.Families = append(out.Families, sf)
	}
	return out
}

func printSplit(out SplitOutput) {
	cliutil.Writef(Stdout, "Document: %s\n", out.Source)
	if out.Skipped {
		cliutil.Writef(Stdout, "Skipped: error page\n")
		return
	}

	cliutil.Writef(Stdout, "\nGroups (%d)\n", len(out.Groups))
	rows := make([][]string, 0, len(out.Groups))
	for _, g := range out.Groups {
		fields := strings.Join(g.Fields, ", ")
		if g.Undefined {
			fields = "undefined"
		}
		rows = append(rows, []string{strconv.Itoa(g.Line), g.Name, fields})
	}
	cliutil.WriteTable(Stdout, []string{"line", "group", "fields"}, rows)

	for _, f := range out.Families {
		cliutil.Writef(Stdout, "\nFamily %s (line %d, %s)\n", f.Name, f.Line, cliutil.Plural(len(f.Alternatives), "alternative"))
		rows := make([][]string, 0, len(f.Alternatives))
		for _, a := range f.Alternatives {
			rows = append(rows, []string{strconv.Itoa(a.Line), a.Name, strings.Join(a.Fields, ", ")})
		}
		cliutil.WriteTable(Stdout, []string{"line", "alternative", "fields"}, rows)
	}
}
