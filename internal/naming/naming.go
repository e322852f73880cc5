// Package naming provides case conversion and identifier helpers.
package naming

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '/' || r == ' ' || r == '\t'
}

// ToPascalCase converts a string to PascalCase.
// Separators (underscore, hyphen, dot, slash, blank) trigger capitalization of
// the next letter; other letters are kept as they are.
// Example: "orderLegCollection" -> "OrderLegCollection"
// Example: "fixed_income" -> "FixedIncome"
func ToPascalCase(s string) string {
	var result strings.Builder
	capitalizeNext := true

	for _, r := range s {
		if isSeparator(r) {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			result.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// ToCamelCase is ToPascalCase with a lowercase first letter.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// words splits s on separators and lower-to-upper case transitions. A run
// of capitals stays together, so "CUSIPNumber" yields "CUSIP", "Number".
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// ToSnakeCase converts a string to snake_case.
// Example: "orderLegCollection" -> "order_leg_collection"
// Example: "CUSIPNumber" -> "cusip_number"
func ToSnakeCase(s string) string {
	parts := words(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}

// ToScreamingSnake converts a string to SCREAMING_SNAKE_CASE.
// Example: "symbol-search" -> "SYMBOL_SEARCH"
// Example: "FIXED_INCOME" -> "FIXED_INCOME"
func ToScreamingSnake(s string) string {
	return strings.ToUpper(ToSnakeCase(s))
}

// CleanName turns a free-text title into a PascalCase name using title casing.
// Letters inside a word are lowercased unless the whole title has no blanks.
// Example: "get price history" -> "GetPriceHistory"
// Example: "GetQuotes" -> "GetQuotes"
func CleanName(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, " \t-_") {
		return ToPascalCase(s)
	}
	titled := cases.Title(language.English).String(strings.ToLower(s))
	return ToPascalCase(titled)
}

// NormalizeKey reduces s to lowercase letters and digits, so that
// "FIXED_INCOME" and "FixedIncome" compare equal.
func NormalizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Identifier sanitizes s into an identifier: invalid runes become
// underscores and a leading digit gets an underscore prefix. An empty
// result is "_".
func Identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// GoIdentifier returns an exported Go identifier for s. Keywords cannot
// occur since exported names start with an uppercase letter; names that
// start with a digit or underscore get an "X" prefix.
func GoIdentifier(s string) string {
	id := ToPascalCase(Identifier(s))
	if id == "" || !unicode.IsUpper([]rune(id)[0]) {
		id = "X" + id
	}
	if !token.IsIdentifier(id) {
		id = "X" + strings.TrimLeft(id, "_")
	}
	return id
}
