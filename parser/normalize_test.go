package parser

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/caterrors"
)

func TestNormalizeDocument(t *testing.T) {
	t.Run("bare object gets the directory label", func(t *testing.T) {
		rec, err := NormalizeDocument("GetQuote", "\n  {\"symbol\": {\"type\": \"string\"}}\n")
		require.NoError(t, err)
		require.Len(t, rec.Top, 1)
		assert.Equal(t, "GetQuote", rec.Top[0].Name)
		assert.Equal(t, []string{"symbol"}, rec.Top[0].Object.Keys())
		assert.Empty(t, rec.Sub)
		assert.False(t, rec.Skipped)
	})

	t.Run("bracketed list with undefined group", func(t *testing.T) {
		doc := "[\n//Quote:\n{\"a\": {\"type\": \"boolean\", \"default\": false}}\n//Option:\nundefined\n]\n"
		rec, err := NormalizeDocument("GetQuote", doc)
		require.NoError(t, err)
		require.Len(t, rec.Top, 2)

		assert.Equal(t, "Quote", rec.Top[0].Name)
		assert.False(t, rec.Top[0].Undefined())

		opt, ok := rec.Group("Option")
		require.True(t, ok)
		assert.True(t, opt.Undefined())
		assert.Nil(t, opt.Object)
	})

	t.Run("bare labeled content is wrapped", func(t *testing.T) {
		doc := "//Account:\n{\"id\": {\"type\": \"string\"}}\n" + instrumentBlock
		rec, err := NormalizeDocument("GetAccount", doc)
		require.NoError(t, err)
		require.Len(t, rec.Top, 1)

		assert.Equal(t, "Account", rec.Top[0].Name)
		fam, ok := rec.Family("Instrument")
		require.True(t, ok)
		assert.Equal(t, []string{"Equity", "FixedIncome", "Option"}, fam.Names())
		assert.Equal(t, 3, fam.Line, "family line counts from the normalized text")
	})

	t.Run("bracketed list followed by families", func(t *testing.T) {
		doc := "[\n//Order:\n{\"orderId\": {\"type\": \"integer\", \"format\": \"int64\"}}\n]\n" + instrumentBlock
		rec, err := NormalizeDocument("GetOrder", doc)
		require.NoError(t, err)
		assert.Equal(t, "Order", rec.Top[0].Name)
		require.Len(t, rec.Sub, 1)
		assert.Equal(t, "Instrument", rec.Sub[0].Name)
	})

	t.Run("bare object followed by families", func(t *testing.T) {
		doc := "{\"instrument\": {\"type\": \"object\", \"discriminator\": \"assetType\", \"properties\": {}}}\n" + instrumentBlock
		rec, err := NormalizeDocument("SearchInstruments", doc)
		require.NoError(t, err)
		assert.Equal(t, "SearchInstruments", rec.Top[0].Name)
		assert.Len(t, rec.Sub, 1)
	})

	t.Run("empty document", func(t *testing.T) {
		rec, err := NormalizeDocument("CancelOrder", " \n")
		require.NoError(t, err)
		assert.True(t, rec.Empty())
		assert.False(t, rec.Skipped)
	})

	t.Run("error page is skipped", func(t *testing.T) {
		rec, err := NormalizeDocument("GetMovers", `{"error": "WebServiceError: internal"}`)
		require.NoError(t, err)
		assert.True(t, rec.Skipped)
		assert.True(t, rec.Empty())
	})

	t.Run("word boundary on error page signature", func(t *testing.T) {
		rec, err := NormalizeDocument("GetMovers", `{"MyWebServiceErrors": {"type": "string"}}`)
		require.NoError(t, err)
		assert.False(t, rec.Skipped)
	})
}

func TestNormalizerOptions(t *testing.T) {
	n := Normalizer{ErrorPage: regexp.MustCompile(`Service Unavailable`)}

	rec, err := n.Normalize("GetQuote/response", "GetQuote", "<html>Service Unavailable</html>")
	require.NoError(t, err)
	assert.True(t, rec.Skipped)
	assert.Equal(t, "GetQuote/response", rec.Source)
}

func TestNormalizeDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind error
		rule string
	}{
		{"unclosed list", "[\n//Quote:\n{}\n", caterrors.ErrGrammar, "unterminated-list"},
		{"unlabeled list content", "[\n{\"a\": 1}\n]", caterrors.ErrGrammar, "leading-content"},
		{"scalar group", "[\n//Quote:\n42\n]", caterrors.ErrParse, ""},
		{"broken JSON", "//Quote:\n{\"a\": }", caterrors.ErrParse, ""},
		{"broken family", "//Quote:\n{}\n//The class <X> has the following subclasses: listed below:\n//A:\n{}\n//OR\n", caterrors.ErrGrammar, "or-count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeDocument("GetQuote", tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "unexpected error: %v", err)
			if tt.rule != "" {
				var gErr *caterrors.GrammarError
				require.True(t, errors.As(err, &gErr))
				assert.Equal(t, tt.rule, gErr.Rule)
				assert.Equal(t, "GetQuote", gErr.Source)
			}
		})
	}
}
