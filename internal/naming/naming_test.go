package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"orderLegCollection", "OrderLegCollection"},
		{"fixed_income", "FixedIncome"},
		{"cash-equivalent", "CashEquivalent"},
		{"price history", "PriceHistory"},
		{"a.b/c", "ABC"},
		{"Quote", "Quote"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPascalCase(tt.input))
		})
	}
}

func TestToCamelCase(t *testing.T) {
	assert.Equal(t, "orderLegCollection", ToCamelCase("OrderLegCollection"))
	assert.Equal(t, "fixedIncome", ToCamelCase("fixed_income"))
	assert.Equal(t, "", ToCamelCase(""))
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"orderLegCollection", "order_leg_collection"},
		{"CUSIPNumber", "cusip_number"},
		{"isDayTrader", "is_day_trader"},
		{"FIXED_INCOME", "fixed_income"},
		{"symbol-search", "symbol_search"},
		{"week52High", "week52_high"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSnakeCase(tt.input))
		})
	}
}

func TestToScreamingSnake(t *testing.T) {
	assert.Equal(t, "SYMBOL_SEARCH", ToScreamingSnake("symbol-search"))
	assert.Equal(t, "FIXED_INCOME", ToScreamingSnake("FIXED_INCOME"))
	assert.Equal(t, "ASSET_TYPE", ToScreamingSnake("assetType"))
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "GetPriceHistory", CleanName("get price history"))
	assert.Equal(t, "GetQuotes", CleanName("GetQuotes"))
	assert.Equal(t, "CreateSavedOrder", CleanName(" Create SAVED order "))
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "fixedincome", NormalizeKey("FIXED_INCOME"))
	assert.Equal(t, NormalizeKey("FixedIncome"), NormalizeKey("FIXED_INCOME"))
	assert.Equal(t, "cashequivalent", NormalizeKey("Cash Equivalent"))
	assert.NotEqual(t, NormalizeKey("Equity"), NormalizeKey("Option"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "a_b", Identifier("a-b"))
	assert.Equal(t, "_52week", Identifier("52week"))
	assert.Equal(t, "_", Identifier(""))
}

func TestGoIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"type", "Type"},
		{"52WeekHigh", "X52WeekHigh"},
		{"symbol-search", "SymbolSearch"},
		{"", "X"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GoIdentifier(tt.input))
		})
	}
}
