package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/apicatalog/parser"
)

type splitInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a raw request or response document"`
	Content string `json:"content,omitempty" jsonschema:"Inline raw document text"`
	Label   string `json:"label,omitempty"   jsonschema:"Group name of a bare object; defaults to the file's directory name"`
}

type splitGroup struct {
	Name      string   `json:"name"`
	Line      int      `json:"line"`
	Undefined bool     `json:"undefined,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

type splitAlternative struct {
	Name   string   `json:"name"`
	Line   int      `json:"line"`
	Fields []string `json:"fields,omitempty"`
}

type splitFamily struct {
	Name         string             `json:"name"`
	Line         int                `json:"line"`
	Alternatives []splitAlternative `json:"alternatives"`
}

type splitOutput struct {
	Skipped  bool          `json:"skipped,omitempty"`
	Groups   []splitGroup  `json:"groups,omitempty"`
	Families []splitFamily `json:"families,omitempty"`
}

func handleSplit(_ context.Context, _ *mcp.CallToolRequest, input splitInput) (*mcp.CallToolResult, splitOutput, error) {
	if (input.File == "") == (input.Content == "") {
		return errResult(fmt.Errorf("exactly one of file or content must be provided")), splitOutput{}, nil
	}

	text, source, label := input.Content, "content", input.Label
	if input.File != "" {
		data, err := os.ReadFile(input.File)
		if err != nil {
			return errResult(err), splitOutput{}, nil
		}
		text = string(data)
		source = filepath.Base(filepath.Dir(input.File)) + "/" + strings.TrimSuffix(filepath.Base(input.File), filepath.Ext(input.File))
		if label == "" {
			label = filepath.Base(filepath.Dir(input.File))
		}
	}
	if int64(len(text)) > cfg.MaxInlineSize {
		return errResult(fmt.Errorf("document size %d bytes exceeds maximum %d bytes", len(text), cfg.MaxInlineSize)), splitOutput{}, nil
	}
	if label == "" {
		label = "Document"
	}

	var n parser.Normalizer
	rec, err := n.Normalize(source, label, text)
	if err != nil {
		return errResult(err), splitOutput{}, nil
	}
	return nil, summarizeRecord(rec), nil
}

func summarizeRecord(rec *parser.Record) splitOutput {
	out := splitOutput{Skipped: rec.Skipped}
	for _, g := range rec.Top {
		sg := splitGroup{Name: g.Name, Line: g.Line, Undefined: g.Undefined()}
		if g.Object != nil {
			sg.Fields = g.Object.Keys()
		}
		out.Groups = append(out.Groups, sg)
	}
	for _, f := range rec.Sub {
		sf := splitFamily{Name: f.Name, Line: f.Line}
		for _, alt := range f.Alternatives {
			sa := splitAlternative{Name: alt.Name, Line: alt.Line}
			if alt.Object != nil {
				sa.Fields = alt.Object.Keys()
			}
			sf.Alternatives = append(sf.Alternatives, sa)
		}
		out.Families = append(out.Families, sf)
	}
	return out
}
