package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/parser"
)

func mustObject(t *testing.T, text string) *parser.Object {
	t.Helper()
	v, err := parser.ParseFragment(text)
	require.NoError(t, err)
	obj, ok := v.(*parser.Object)
	require.True(t, ok, "fragment is not an object: %s", text)
	return obj
}

func TestCanonicalizeNodeShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shape Shape
		check func(t *testing.T, n *Node)
	}{
		{
			name:  "boolean with default",
			raw:   `{"type": "boolean", "default": false}`,
			shape: ShapeBoolean,
			check: func(t *testing.T, n *Node) {
				require.NotNil(t, n.Default)
				assert.False(t, *n.Default)
			},
		},
		{
			name:  "integer with format",
			raw:   `{"type": "integer", "format": "int64"}`,
			shape: ShapeInteger,
			check: func(t *testing.T, n *Node) { assert.Equal(t, "int64", n.Format) },
		},
		{
			name:  "number",
			raw:   `{"format": "double", "type": "number"}`,
			shape: ShapeNumber,
		},
		{
			name:  "date-time string",
			raw:   `{"type": "string", "format": "date-time"}`,
			shape: ShapeString,
		},
		{
			name:  "enum",
			raw:   `{"type": "string", "enum": ["PUT", "CALL"]}`,
			shape: ShapeEnum,
			check: func(t *testing.T, n *Node) { assert.Equal(t, []string{"PUT", "CALL"}, n.Enum) },
		},
		{
			name:  "object",
			raw:   `{"type": "object", "properties": {"b": {"type": "string"}, "a": {"type": "integer", "format": "int32"}}}`,
			shape: ShapeObject,
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, []string{"b", "a"}, n.PropertyNames())
				a, ok := n.Property("a")
				require.True(t, ok)
				assert.Equal(t, ShapeInteger, a.Shape)
			},
		},
		{
			name:  "additional properties",
			raw:   `{"type": "object", "additionalProperties": {"type": "number", "format": "double"}}`,
			shape: ShapeAdditional,
			check: func(t *testing.T, n *Node) {
				require.NotNil(t, n.Additional)
				assert.Equal(t, ShapeNumber, n.Additional.Shape)
			},
		},
		{
			name:  "array",
			raw:   `{"type": "array", "items": {"type": "string"}, "xml": {"name": "symbols", "wrapped": true}}`,
			shape: ShapeArray,
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, ShapeString, n.Items.Shape)
				assert.Equal(t, &XML{Name: "symbols", Wrapped: true}, n.XML)
			},
		},
		{
			name:  "discriminated union",
			raw:   `{"type": "object", "discriminator": "assetType", "properties": {"assetType": {"type": "string", "enum": ["EQUITY", "OPTION"]}}}`,
			shape: ShapeDiscriminated,
			check: func(t *testing.T, n *Node) { assert.Equal(t, "assetType", n.Discriminator) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Canonicalizer
			n, err := c.CanonicalizeNode("test", "Quote.field", mustObject(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, n.Shape)
			if tt.check != nil {
				tt.check(t, n)
			}
		})
	}
}

func TestCanonicalizeNodeErrors(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		shape      string
		unexpected []string
	}{
		{"unexpected attributes", `{"type": "number", "format": "double", "minimum": 0, "maximum": 1}`, "number", []string{"maximum", "minimum"}},
		{"format on boolean", `{"type": "boolean", "format": "bool"}`, "boolean", []string{"format"}},
		{"discriminator with additional properties", `{"type": "object", "discriminator": "t", "additionalProperties": {"type": "string"}, "properties": {"t": {"type": "string"}}}`, "discriminatedUnion", []string{"additionalProperties"}},
		{"missing type", `{"format": "int32"}`, "", nil},
		{"unknown type", `{"type": "file"}`, "", nil},
		{"non-string type", `{"type": ["string", "null"]}`, "", nil},
		{"object without properties", `{"type": "object"}`, "object", nil},
		{"array without items", `{"type": "array", "xml": {"name": "x", "wrapped": true}}`, "array", nil},
		{"array without xml", `{"type": "array", "items": {"type": "string"}}`, "array", nil},
		{"empty enum", `{"type": "string", "enum": []}`, "enum", nil},
		{"numeric enum values", `{"type": "string", "enum": [1, 2]}`, "enum", nil},
		{"boolean default not a boolean", `{"type": "boolean", "default": "false"}`, "boolean", nil},
		{"discriminator not a property", `{"type": "object", "discriminator": "kind", "properties": {"type": {"type": "string"}}}`, "discriminatedUnion", nil},
		{"nested failure", `{"type": "object", "properties": {"legs": {"type": "array", "items": {"type": "object", "nope": 1}}}}`, "object", []string{"nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Canonicalizer
			_, err := c.CanonicalizeNode("GetOrder/response", "Order.x", mustObject(t, tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, caterrors.ErrShape))

			var sErr *caterrors.ShapeError
			require.True(t, errors.As(err, &sErr))
			assert.Equal(t, tt.shape, sErr.Shape)
			assert.Equal(t, tt.unexpected, sErr.Unexpected)
			assert.Equal(t, "GetOrder/response", sErr.Source)
		})
	}

	t.Run("nested failure path", func(t *testing.T) {
		var c Canonicalizer
		raw := mustObject(t, `{"type": "object", "properties": {"legs": {"type": "array", "xml": {"name": "legs", "wrapped": true}, "items": {"type": "objekt"}}}}`)
		_, err := c.CanonicalizeNode("s", "Order.child", raw)
		var sErr *caterrors.ShapeError
		require.True(t, errors.As(err, &sErr))
		assert.Equal(t, "Order.child.legs[]", sErr.Path)
	})

	t.Run("non-object node", func(t *testing.T) {
		var c Canonicalizer
		_, err := c.CanonicalizeNode("s", "Order.x", "string")
		assert.True(t, errors.Is(err, caterrors.ErrShape))
	})
}

func TestCanonicalizerRepairs(t *testing.T) {
	c := Canonicalizer{Irregularities: Irregularities{
		MissingProperties: []string{"cashEquivalent"},
		MissingItems:      []string{"accountIds"},
		MissingXML:        []string{"accountIds", "legs"},
	}}

	t.Run("missing properties", func(t *testing.T) {
		n, err := c.CanonicalizeNode("s", "Account.cashEquivalent", mustObject(t, `{"type": "object"}`))
		require.NoError(t, err)
		assert.Equal(t, ShapeObject, n.Shape)
		assert.Empty(t, n.Properties)
	})

	t.Run("missing items and xml", func(t *testing.T) {
		n, err := c.CanonicalizeNode("s", "Preferences.accountIds", mustObject(t, `{"type": "array"}`))
		require.NoError(t, err)
		assert.Equal(t, ShapeString, n.Items.Shape)
		assert.Equal(t, &XML{Name: "accountIds", Wrapped: true}, n.XML)
	})

	t.Run("listed field only", func(t *testing.T) {
		_, err := c.CanonicalizeNode("s", "Account.other", mustObject(t, `{"type": "object"}`))
		assert.Error(t, err)
	})

	t.Run("enum prose is expanded", func(t *testing.T) {
		n, err := c.CanonicalizeNode("s", "Account.type", mustObject(t, `{"type": "string", "enum": ["'CASH' or 'MARGIN'"]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"CASH", "MARGIN"}, n.Enum)
	})

	repairs := c.Repairs()
	require.Len(t, repairs, 4)
	assert.Equal(t, RepairMissingProperties, repairs[0].Kind)
	assert.Equal(t, "Account.cashEquivalent", repairs[0].Path)
	assert.Equal(t, RepairMissingItems, repairs[1].Kind)
	assert.Equal(t, RepairMissingXML, repairs[2].Kind)
	assert.Equal(t, RepairEnumExpanded, repairs[3].Kind)
	assert.Equal(t, `["CASH","MARGIN"]`, repairs[3].Default)
}

func TestCanonicalizeType(t *testing.T) {
	var c Canonicalizer
	body := mustObject(t, `{
		"symbol": {"type": "string"},
		"bidPrice": {"type": "number", "format": "double"},
		"delayed": {"type": "boolean", "default": false}
	}`)
	n, err := c.CanonicalizeType("GetQuote/response", "Quote", body)
	require.NoError(t, err)
	assert.Equal(t, ShapeObject, n.Shape)
	assert.Equal(t, []string{"symbol", "bidPrice", "delayed"}, n.PropertyNames())

	census := c.Census()
	require.NotEmpty(t, census)
	total := 0
	for _, sc := range census {
		total += sc.Count
	}
	assert.Equal(t, 4, total, "three fields and the type itself")
}

func TestCanonicalizeIdempotent(t *testing.T) {
	irr := Irregularities{MissingItems: []string{"ids"}, MissingXML: []string{"ids"}, MissingProperties: []string{"extra"}}
	first := Canonicalizer{Irregularities: irr}
	body := mustObject(t, `{
		"ids": {"type": "array"},
		"extra": {"type": "object"},
		"legs": {"type": "array", "xml": {"name": "legs", "wrapped": true}, "items": {"type": "object", "properties": {
			"instrument": {"type": "object", "discriminator": "assetType", "properties": {
				"assetType": {"type": "string", "enum": ["EQUITY", "OPTION"]},
				"cusip": {"type": "string"}
			}},
			"quantity": {"type": "number", "format": "double"}
		}}},
		"prices": {"type": "object", "additionalProperties": {"type": "number", "format": "double"}},
		"kind": {"type": "string", "enum": ["'A' or 'B'"]}
	}`)
	n1, err := first.CanonicalizeType("s", "Order", body)
	require.NoError(t, err)

	// The repaired form no longer needs any repair.
	var second Canonicalizer
	reparsed := mustObject(t, mustJSON(t, n1.Body()))
	n2, err := second.CanonicalizeType("s", "Order", reparsed)
	require.NoError(t, err)

	assert.True(t, Equal(n1, n2))
	assert.Equal(t, string(n1.Canonical()), string(n2.Canonical()))
	assert.Equal(t, first.Census(), second.Census())
	assert.Empty(t, second.Repairs())
}
