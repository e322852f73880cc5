package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/apicatalog/caterrors"
)

func TestParseFragment(t *testing.T) {
	t.Run("undefined token", func(t *testing.T) {
		v, err := ParseFragment("  undefined \n")
		require.NoError(t, err)
		assert.True(t, IsUndefined(v))
		assert.NotNil(t, v, "undefined must differ from JSON null")
	})

	t.Run("null stays distinct from undefined", func(t *testing.T) {
		v, err := ParseFragment("null")
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.False(t, IsUndefined(v))
	})

	t.Run("object keeps key order and numbers", func(t *testing.T) {
		v, err := ParseFragment(`{"zeta": 1, "alpha": {"type": "number", "format": "double"}, "mid": [true, "x"]}`)
		require.NoError(t, err)
		obj, ok := v.(*Object)
		require.True(t, ok)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, obj.SortedKeys())

		zeta, _ := obj.Get("zeta")
		assert.Equal(t, json.Number("1"), zeta)

		alpha, _ := obj.Get("alpha")
		inner, ok := alpha.(*Object)
		require.True(t, ok)
		assert.Equal(t, []string{"type", "format"}, inner.Keys())

		mid, _ := obj.Get("mid")
		assert.Equal(t, []any{true, "x"}, mid)
	})

	t.Run("empty array is not nil", func(t *testing.T) {
		v, err := ParseFragment(`[]`)
		require.NoError(t, err)
		assert.Equal(t, []any{}, v)
	})

	tests := []struct {
		name     string
		fragment string
		message  string
	}{
		{"empty", "   ", "empty fragment"},
		{"truncated", `{"a":`, "invalid JSON"},
		{"bare word", "undefinedish", "invalid JSON"},
		{"duplicate key", `{"a": 1, "a": 2}`, "invalid JSON"},
		{"trailing data", `{"a": 1} {"b": 2}`, "trailing data after JSON value"},
		{"trailing undefined", `undefined undefined`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run("error/"+tt.name, func(t *testing.T) {
			_, err := ParseFragment(tt.fragment)
			require.Error(t, err)
			assert.True(t, errors.Is(err, caterrors.ErrParse))

			var pErr *caterrors.ParseError
			require.True(t, errors.As(err, &pErr))
			assert.Equal(t, tt.message, pErr.Message)
		})
	}

	t.Run("error carries fragment", func(t *testing.T) {
		_, err := parseFragment("GetQuote/response", "Quote", " {\"a\": nope} ")
		var pErr *caterrors.ParseError
		require.True(t, errors.As(err, &pErr))
		assert.Equal(t, `{"a": nope}`, pErr.Fragment)
		assert.Equal(t, "Quote", pErr.Label)
		assert.Contains(t, err.Error(), "GetQuote/response")
	})

	t.Run("duplicate key names the key", func(t *testing.T) {
		_, err := ParseFragment(`{"symbol": 1, "symbol": 2}`)
		assert.True(t, errors.Is(err, errDuplicateKey))
		assert.Contains(t, err.Error(), `"symbol"`)
	})
}

func TestObjectMarshalJSON(t *testing.T) {
	v, err := ParseFragment(`{"b": 1, "a": {"y": undefinedValue, "x": 2}}`)
	require.Error(t, err, "undefined is only recognized as a whole fragment")
	assert.Nil(t, v)

	obj := NewObject()
	obj.Set("b", json.Number("1"))
	inner := NewObject()
	inner.Set("y", "s")
	inner.Set("x", Undefined)
	obj.Set("a", inner)
	obj.Set("b", json.Number("3"))

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"b":3,"a":{"y":"s","x":null}}`, string(data))
	assert.Equal(t, 2, obj.Len())
}

func TestObjectNilSafety(t *testing.T) {
	var obj *Object
	assert.Equal(t, 0, obj.Len())
	assert.Nil(t, obj.Keys())
	assert.False(t, obj.Has("x"))

	data, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
