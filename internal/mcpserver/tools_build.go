package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/apicatalog/catalog"
)

type buildInput struct {
	Corpus catalogInput `json:"corpus"         jsonschema:"The corpus to build"`
	Full   bool         `json:"full,omitempty" jsonschema:"Return the full catalog JSON in addition to the summary"`
}

type buildCollision struct {
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Resolution string   `json:"resolution"`
	Finals     []string `json:"finals"`
}

type buildOutput struct {
	Hash               string           `json:"hash"`
	TypeCount          int              `json:"type_count"`
	OneOfCount         int              `json:"one_of_count"`
	EnumCount          int              `json:"enum_count"`
	EndpointCount      int              `json:"endpoint_count"`
	TotalCollisions    int              `json:"total_collisions"`
	ResolvedByOverride int              `json:"resolved_by_override"`
	ResolvedBySuffix   int              `json:"resolved_by_suffix"`
	Collisions         []buildCollision `json:"collisions,omitempty"`
	RepairCount        int              `json:"repair_count"`
	Skipped            []string         `json:"skipped,omitempty"`
	Catalog            string           `json:"catalog,omitempty"`
}

func handleBuild(ctx context.Context, _ *mcp.CallToolRequest, input buildInput) (*mcp.CallToolResult, buildOutput, error) {
	res, err := input.Corpus.build(ctx)
	if err != nil {
		return errResult(err), buildOutput{}, nil
	}
	cat, report := res.catalog, res.report

	hash, err := catalog.ContentHash(cat)
	if err != nil {
		return errResult(err), buildOutput{}, nil
	}
	output := buildOutput{
		Hash:               hash,
		TypeCount:          len(cat.Types),
		OneOfCount:         len(cat.OneOfs),
		EnumCount:          len(cat.Enums),
		EndpointCount:      len(cat.Endpoints),
		TotalCollisions:    report.TotalCollisions,
		ResolvedByOverride: report.ResolvedByOverride,
		ResolvedBySuffix:   report.ResolvedBySuffix,
		RepairCount:        len(report.Repairs),
		Skipped:            report.Skipped,
	}
	for _, events := range [][]catalog.CollisionEvent{report.Collisions, report.Enums} {
		for _, e := range events {
			output.Collisions = append(output.Collisions, summarizeCollision(e))
		}
	}

	if input.Full {
		data, err := catalog.Marshal(cat, catalog.FormatJSON)
		if err != nil {
			return errResult(err), buildOutput{}, nil
		}
		output.Catalog = string(data)
	}
	return nil, output, nil
}

func summarizeCollision(e catalog.CollisionEvent) buildCollision {
	c := buildCollision{Kind: e.Kind, Name: e.Name, Resolution: e.Resolution}
	for _, v := range e.Variants {
		c.Finals = append(c.Finals, v.Final)
	}
	return c
}
