package parser

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
)

const undefinedToken = "undefined"

// ParseFragment decodes one group body as JSON.
//
// The fragment is trimmed first. A fragment consisting of exactly the token
// undefined yields Undefined. Objects decode to *Object, arrays to []any and
// numbers to json.Number. Duplicate keys and trailing data are rejected. Every
// failure is a *caterrors.ParseError carrying the fragment.
func ParseFragment(fragment string) (any, error) {
	return parseFragment("", "", fragment)
}

func parseFragment(source, label, fragment string) (any, error) {
	text := strings.TrimSpace(fragment)
	fail := func(msg string, cause error) error {
		return &caterrors.ParseError{Source: source, Label: label, Fragment: text, Message: msg, Cause: cause}
	}

	if text == "" {
		return nil, fail("empty fragment", nil)
	}
	if text == undefinedToken {
		return Undefined, nil
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fail("invalid JSON", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fail("trailing data after JSON value", nil)
	}
	return v, nil
}

var errDuplicateKey = errors.New("duplicate object key")

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key := keyTok.(string)
			if obj.Has(key) {
				return nil, &keyError{key: key}
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		var arr []any
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if arr == nil {
			arr = []any{}
		}
		return arr, nil
	default:
		return nil, errors.New("unexpected delimiter " + delim.String())
	}
}

type keyError struct{ key string }

func (e *keyError) Error() string { return errDuplicateKey.Error() + " " + strconv.Quote(e.key) }

func (e *keyError) Unwrap() error { return errDuplicateKey }
