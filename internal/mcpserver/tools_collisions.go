package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/apicatalog/catalog"
)

type collisionsInput struct {
	Corpus     catalogInput `json:"corpus"               jsonschema:"The corpus to build"`
	Resolution string       `json:"resolution,omitempty" jsonschema:"Only events with this resolution: override, suffix or override+suffix"`
	Kind       string       `json:"kind,omitempty"       jsonschema:"Only events of this kind: type or enum"`
	Offset     int          `json:"offset,omitempty"     jsonschema:"Skip this many events"`
	Limit      int          `json:"limit,omitempty"      jsonschema:"Maximum events to return"`
}

type collisionsOutput struct {
	Total    int                      `json:"total"`
	Returned int                      `json:"returned"`
	Events   []catalog.CollisionEvent `json:"events,omitempty"`
}

var validResolutions = map[string]bool{
	catalog.ResolutionOverride: true,
	catalog.ResolutionSuffix:   true,
	catalog.ResolutionMixed:    true,
}

func handleListCollisions(ctx context.Context, _ *mcp.CallToolRequest, input collisionsInput) (*mcp.CallToolResult, collisionsOutput, error) {
	if input.Resolution != "" && !validResolutions[input.Resolution] {
		return errResult(fmt.Errorf("invalid resolution %q; valid values: override, suffix, override+suffix", input.Resolution)), collisionsOutput{}, nil
	}
	if input.Kind != "" && input.Kind != "type" && input.Kind != "enum" {
		return errResult(fmt.Errorf("invalid kind %q; valid values: type, enum", input.Kind)), collisionsOutput{}, nil
	}
	res, err := input.Corpus.build(ctx)
	if err != nil {
		return errResult(err), collisionsOutput{}, nil
	}

	var all []catalog.CollisionEvent
	for _, e := range append(append([]catalog.CollisionEvent(nil), res.report.Collisions...), res.report.Enums...) {
		if input.Resolution != "" && e.Resolution != input.Resolution {
			continue
		}
		if input.Kind != "" && e.Kind != input.Kind {
			continue
		}
		all = append(all, e)
	}
	page := paginate(all, input.Offset, input.Limit)
	return nil, collisionsOutput{Total: len(all), Returned: len(page), Events: page}, nil
}
