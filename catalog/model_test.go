package catalog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/schema"
)

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	var sources []Source
	for _, ep := range []string{"GetOrder", "PlaceOrder"} {
		sources = append(sources, Source{Endpoint: ep, Method: "GET", Response: orderDocument("")})
	}
	sources = append(sources, Source{
		Endpoint: "GetAccount",
		Link:     "https://api.tdameritrade.com/v1/accounts/{accountId}",
		Errors:   map[string]string{"400": "Bad request", "404": "Not found"},
		Response: `//Account:
{"accountId": {"type": "string"}, "roundTrips": {"type": "integer", "format": "int32"}, "isDayTrader": {"type": "boolean", "default": false}}`,
	})
	cat, _ := build(t, sources)
	return cat
}

func TestValidate(t *testing.T) {
	cat := sampleCatalog(t)
	require.NoError(t, cat.Validate())

	tests := []struct {
		name   string
		mutate func(c *Catalog)
		want   string
	}{
		{"unknown enum", func(c *Catalog) {
			p, _ := c.Types["Order"].Node.Property("status")
			p.Ref = "Missing"
		}, `Order.status: unknown enum "Missing"`},
		{"unknown alternative", func(c *Catalog) {
			c.OneOfs["OrderLegCollection"].Alternatives[0] = "Nope"
		}, "one-of OrderLegCollection: unknown alternative Nope"},
		{"unknown message type", func(c *Catalog) {
			c.Endpoints["GetAccount"].Response[0].Type = "Gone"
		}, "endpoint GetAccount: group Account names unknown type Gone"},
		{"misfiled entry", func(c *Catalog) {
			c.Types["Other"] = &NamedType{Name: "Account", Node: &schema.Node{Shape: schema.ShapeObject}}
		}, "type Account stored under Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleCatalog(t)
			tt.mutate(c)
			err := c.Validate()
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Problems, tt.want)
		})
	}
}

func TestContribution(t *testing.T) {
	cat := sampleCatalog(t)

	sub, err := cat.Contribution("PlaceOrder")
	require.NoError(t, err)
	assert.Equal(t, []string{"PlaceOrder"}, sub.EndpointNames())
	assert.Equal(t, []string{"EquityLeg", "OptionLeg", "Order"}, sub.TypeNames())
	assert.Equal(t, []string{"OrderLegCollection"}, sub.OneOfNames())
	assert.Equal(t, []string{"Instruction", "Instruction2", "Status"}, sub.EnumNames())
	require.NoError(t, sub.Validate())

	acct, err := cat.Contribution("GetAccount")
	require.NoError(t, err)
	assert.Equal(t, []string{"Account"}, acct.TypeNames())
	assert.Empty(t, acct.OneOfs)

	_, err = cat.Contribution("Nope")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	cat := sampleCatalog(t)
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Marshal(cat, f)
			require.NoError(t, err)
			back, err := Unmarshal(data, f)
			require.NoError(t, err)
			require.NoError(t, back.Validate())

			want, err := Marshal(cat, FormatJSON)
			require.NoError(t, err)
			got, err := Marshal(back, FormatJSON)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	cat := sampleCatalog(t)
	dir := t.TempDir()

	for _, name := range []string{"catalog.json", "catalog.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, cat))
		back, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cat.TypeNames(), back.TypeNames())
	}

	require.NoError(t, WriteContributions(filepath.Join(dir, "endpoints"), cat, FormatJSON))
	sub, err := Load(filepath.Join(dir, "endpoints", "GetOrder.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GetOrder"}, sub.EndpointNames())

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("out/catalog.YML"))
	assert.Equal(t, FormatJSON, FormatFromPath("catalog"))

	f, err := ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	cat := sampleCatalog(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))

	v, err := newVersion(cat, now, "run-1")
	require.NoError(t, err)
	assert.Len(t, v.Hash, 64)
	assert.Equal(t, "2024-03-01T17:00:00Z", v.Timestamp)
	assert.Equal(t, "run-1", v.RunID)
	assert.Equal(t, len(cat.Types), v.Types)
	assert.Equal(t, 3, v.Endpoints)

	again, err := NewVersion(sampleCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, v.Hash, again.Hash)
	assert.NotEqual(t, v.RunID, again.RunID)
	assert.False(t, again.Changed(v))
	assert.True(t, again.Changed(nil))

	cat.Endpoints["GetAccount"].Errors["500"] = "Server error"
	changed, err := NewVersion(cat)
	require.NoError(t, err)
	assert.True(t, changed.Changed(v))
}

func TestURLParamNames(t *testing.T) {
	assert.Equal(t, []string{"accountId", "orderId"},
		URLParamNames("https://api/v1/accounts/{accountId}/orders/{orderId}?x={accountId}"))
	assert.Empty(t, URLParamNames("https://api/v1/marketdata/quotes"))
}
