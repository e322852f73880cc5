package corpusutil

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/caterrors"
)

func TestReadFS_Layout(t *testing.T) {
	fsys := fstest.MapFS{
		"Quotes/GetQuote/response.json": {Data: []byte("//Quote:\n{}")},
		"Quotes/GetQuote/endpoint.json": {Data: []byte(`{
			"method": "GET",
			"link": "https://api/v1/marketdata/{symbol}/quotes",
			"query_params": {
				"zeta": {"description": "last", "required": true},
				"apikey": {"description": "first"}
			}
		}`)},
		"Quotes/GetQuote/errcodes.json":  {Data: []byte(`{"401": "Unauthorized"}`)},
		"Quotes/GetQuote/example.json":   {Data: []byte(`not json at all`)},
		"Orders/PlaceOrder/request.json": {Data: []byte("//Order:\n{}")},
	}

	sources, err := ReadFS(fsys, nil)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "GetQuote", sources[0].Endpoint)
	assert.Equal(t, "GET", sources[0].Method)
	assert.Equal(t, "https://api/v1/marketdata/{symbol}/quotes", sources[0].Link)
	assert.Equal(t, "//Quote:\n{}", sources[0].Response)
	assert.Empty(t, sources[0].Request)
	assert.Equal(t, map[string]string{"401": "Unauthorized"}, sources[0].Errors)
	assert.Equal(t, []catalog.QueryParam{
		{Name: "apikey", Description: "first"},
		{Name: "zeta", Description: "last", Required: true},
	}, sources[0].QueryParams)

	assert.Equal(t, "PlaceOrder", sources[1].Endpoint)
	assert.Equal(t, "//Order:\n{}", sources[1].Request)
	assert.Empty(t, sources[1].Method)
}

func TestReadFS_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fsys     fstest.MapFS
		sentinel error
	}{
		{
			name: "duplicate endpoint",
			fsys: fstest.MapFS{
				"A/GetQuote/response.json": {Data: []byte("{}")},
				"B/GetQuote/response.json": {Data: []byte("{}")},
			},
			sentinel: caterrors.ErrConfig,
		},
		{
			name:     "bad errcodes",
			fsys:     fstest.MapFS{"GetQuote/errcodes.json": {Data: []byte(`{"401": `)}},
			sentinel: caterrors.ErrParse,
		},
		{
			name:     "bad endpoint file",
			fsys:     fstest.MapFS{"GetQuote/endpoint.json": {Data: []byte(`{"query_params": []}`)}},
			sentinel: caterrors.ErrParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFS(tt.fsys, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}

func TestRead_Testdata(t *testing.T) {
	SkipIfNoTestdata(t)

	sources, err := Read(TestdataDir(), nil)
	require.NoError(t, err)

	var names []string
	for _, s := range sources {
		names = append(names, s.Endpoint)
	}
	assert.Equal(t, []string{"GetAccount", "GetMovers", "GetOrder", "GetQuote", "GetQuotes", "GetUserPrincipals", "PlaceOrder"}, names)

	cat, report, err := catalog.Build(context.Background(), sources)
	require.NoError(t, err)
	require.NoError(t, cat.Validate())

	// Option collides three ways: the Instrument alternative, the GetQuote
	// quote (overridden) and the GetQuotes quote (suffixed).
	assert.Contains(t, cat.Types, "Option")
	assert.Contains(t, cat.Types, "OptionQuote")
	assert.Contains(t, cat.Types, "Option2")
	assert.Equal(t, "OptionQuote", cat.Endpoints["GetQuote"].Response[1].Type)
	assert.Equal(t, "Option2", cat.Endpoints["GetQuotes"].Response[1].Type)
	ev, ok := report.Collision("Option")
	require.True(t, ok)
	assert.Equal(t, catalog.ResolutionMixed, ev.Resolution)

	// The quote Equity is shared by both quote endpoints.
	assert.Equal(t, []string{"GetQuote", "GetQuotes"}, cat.Types["Equity2"].Sources)

	// The expanded "'P' or 'C'" enum matches the clean one.
	assert.Equal(t, []string{"GetQuote", "GetQuotes"}, cat.Enums["ContractType"].Sources)

	inst := cat.OneOfs["Instrument"]
	require.NotNil(t, inst)
	assert.Equal(t, "assetType", inst.Discriminator)
	assert.Equal(t, map[string]string{"EQUITY": "Equity", "FIXED_INCOME": "FixedIncome", "OPTION": "Option"}, inst.Tags)

	assert.Equal(t, []string{"GetOrder", "PlaceOrder"}, cat.Types["Order"].Sources)
	assert.Equal(t, []string{"GetOrder", "PlaceOrder"}, cat.OneOfs["OrderActivity"].Sources)
	assert.Equal(t, "Order", cat.Endpoints["PlaceOrder"].Request[0].Type)

	assert.Equal(t, []string{"response"}, cat.Endpoints["GetMovers"].Skipped)
	assert.Contains(t, cat.Enums, "Direction", "parameters of skipped endpoints are still typed")
	assert.Contains(t, cat.Types, "GetUserPrincipals")

	kinds := make(map[string]int)
	for _, r := range report.Repairs {
		kinds[r.Kind]++
	}
	assert.Equal(t, 1, kinds["enum-expanded"])
	assert.Equal(t, 3, kinds["missing-items"], "childOrderStrategies twice, accountIds once")
	assert.Equal(t, 1, kinds["missing-properties"])
}
