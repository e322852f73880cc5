package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/schema"
)

type lookupInput struct {
	Corpus catalogInput `json:"corpus" jsonschema:"The corpus to search"`
	Name   string       `json:"name"   jsonschema:"Type, one-of or enum name; merged aliases are resolved"`
}

type lookupOutput struct {
	Name string `json:"name"`
	// Kinds lists the namespaces holding the name: type, one_of, enum
	Kinds   []string `json:"kinds"`
	AliasOf string   `json:"alias_of,omitempty"`
	// Type is a catalog.NamedType as a JSON object; its node tree is
	// recursive and has no finite output schema
	Type      map[string]any   `json:"type,omitempty" jsonschema:"The type definition: name, node, sources and aliases"`
	OneOf     *catalog.OneOf   `json:"one_of,omitempty"`
	Enum      *catalog.EnumDef `json:"enum,omitempty"`
	Endpoints []string         `json:"endpoints,omitempty"`
	// ReferencedBy lists the types with a field of this name
	ReferencedBy []string `json:"referenced_by,omitempty"`
}

func handleLookup(ctx context.Context, _ *mcp.CallToolRequest, input lookupInput) (*mcp.CallToolResult, lookupOutput, error) {
	if input.Name == "" {
		return errResult(fmt.Errorf("name is required")), lookupOutput{}, nil
	}
	res, err := input.Corpus.build(ctx)
	if err != nil {
		return errResult(err), lookupOutput{}, nil
	}
	cat := res.catalog

	target := input.Name
	output := lookupOutput{Name: input.Name}
	if _, ok := cat.Types[target]; !ok {
		if into, ok := aliasOf(cat, target); ok {
			output.AliasOf = into
			target = into
		}
	}
	if t := cat.Types[target]; t != nil {
		obj, err := jsonObject(t)
		if err != nil {
			return errResult(err), lookupOutput{}, nil
		}
		output.Kinds = append(output.Kinds, "type")
		output.Type = obj
	}
	if o := cat.OneOfs[target]; o != nil {
		output.Kinds = append(output.Kinds, "one_of")
		output.OneOf = o
	}
	if e := cat.Enums[target]; e != nil {
		output.Kinds = append(output.Kinds, "enum")
		output.Enum = e
	}
	if len(output.Kinds) == 0 {
		return errResult(fmt.Errorf("no type, one-of or enum named %q", input.Name)), lookupOutput{}, nil
	}

	output.Endpoints = usingEndpoints(cat, target)
	output.ReferencedBy = referencedBy(cat, target)
	return nil, output, nil
}

func jsonObject(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func aliasOf(cat *catalog.Catalog, name string) (string, bool) {
	for _, n := range cat.TypeNames() {
		for _, a := range cat.Types[n].Aliases {
			if a == name {
				return n, true
			}
		}
	}
	return "", false
}

// usingEndpoints returns the endpoints whose contribution includes name.
func usingEndpoints(cat *catalog.Catalog, name string) []string {
	var out []string
	for _, ep := range cat.EndpointNames() {
		part, err := cat.Contribution(ep)
		if err != nil {
			continue
		}
		if part.Types[name] != nil || part.OneOfs[name] != nil || part.Enums[name] != nil {
			out = append(out, ep)
		}
	}
	return out
}

func referencedBy(cat *catalog.Catalog, name string) []string {
	seen := make(map[string]bool)
	for _, n := range cat.TypeNames() {
		t := cat.Types[n]
		if t.Node.OneOf == name || refersTo(t.Node, name) {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func refersTo(n *schema.Node, name string) bool {
	if n == nil {
		return false
	}
	for _, p := range n.Properties {
		if p.Node.Ref == name || refersTo(p.Node, name) {
			return true
		}
	}
	for _, child := range []*schema.Node{n.Items, n.Additional} {
		if child != nil && (child.Ref == name || refersTo(child, name)) {
			return true
		}
	}
	return false
}
