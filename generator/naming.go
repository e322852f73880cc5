// This file assigns target identifiers to catalog names. The catalog keeps
// types, one-ofs and enums in separate namespaces; every target has one.

package generator

import (
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/naming"
)

// maxCommentLength is the maximum length of a generated comment line before
// truncation.
const maxCommentLength = 200

// names maps catalog names to unique target identifiers.
//
// Types keep their names. A one-of that shares a type's name gets a OneOf
// suffix, and an enum that shares a type or one-of name gets an Enum suffix.
type names struct {
	types  map[string]string
	oneOfs map[string]string
	enums  map[string]string
	taken  map[string]bool
}

func newNames(cat *catalog.Catalog) *names {
	n := &names{
		types:  make(map[string]string, len(cat.Types)),
		oneOfs: make(map[string]string, len(cat.OneOfs)),
		enums:  make(map[string]string, len(cat.Enums)),
		taken:  make(map[string]bool),
	}
	for _, name := range cat.TypeNames() {
		n.types[name] = n.reserve(naming.GoIdentifier(name), "")
	}
	for _, name := range cat.OneOfNames() {
		n.oneOfs[name] = n.reserve(naming.GoIdentifier(name), "OneOf")
	}
	for _, name := range cat.EnumNames() {
		n.enums[name] = n.reserve(naming.GoIdentifier(name), "Enum")
	}
	return n
}

// reserve claims base, or base+suffix when base is taken, numbering further
// clashes.
func (n *names) reserve(base, suffix string) string {
	if !n.taken[base] {
		n.taken[base] = true
		return base
	}
	candidate := base + suffix
	for i := 2; n.taken[candidate]; i++ {
		candidate = base + suffix + strconv.Itoa(i)
	}
	n.taken[candidate] = true
	return candidate
}

// fieldNames hands out unique member names within one message or struct.
type fieldNames map[string]bool

func (f fieldNames) next(name string) string {
	candidate := name
	for i := 2; f[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	f[candidate] = true
	return candidate
}

// protoFieldName converts a JSON property name to a proto field name.
// Example: "orderLegCollection" -> "order_leg_collection"
func protoFieldName(s string) string {
	name := strings.Trim(naming.Identifier(naming.ToSnakeCase(s)), "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "field_" + name
	}
	return name
}

// enumValueName builds a prefixed SCREAMING_SNAKE enum value name.
// Example: ("Status", "PENDING_ACTIVATION") -> "STATUS_PENDING_ACTIVATION"
func enumValueName(prefix, value string) string {
	v := strings.Trim(naming.Identifier(naming.ToScreamingSnake(value)), "_")
	if v == "" {
		v = "VALUE"
	}
	return prefix + "_" + v
}

// goConstName builds the Go constant name for an enum value.
// Example: ("AssetType", "FIXED_INCOME") -> "AssetTypeFixedIncome"
func goConstName(enum, value string) string {
	v := naming.ToPascalCase(naming.Identifier(strings.ToLower(naming.ToSnakeCase(value))))
	if v == "" || v == "_" {
		v = "Value"
	}
	return enum + v
}

// cleanComment flattens s to a single line and truncates it.
func cleanComment(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > maxCommentLength {
		s = string(runes[:maxCommentLength-3]) + "..."
	}
	return s
}

// joinNames lists names for a comment: "A", "A and B", "A, B and C".
func joinNames(list []string) string {
	switch len(list) {
	case 0:
		return ""
	case 1:
		return list[0]
	}
	return strings.Join(list[:len(list)-1], ", ") + " and " + list[len(list)-1]
}
