package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/parser"
)

// Irregularities lists the field names whose known defects may be repaired.
// Anything not listed here fails.
type Irregularities struct {
	// MissingProperties lists objects declared without a properties map
	MissingProperties []string `json:"missing_properties,omitempty" yaml:"missing_properties,omitempty"`
	// MissingItems lists arrays declared without an item type
	MissingItems []string `json:"missing_items,omitempty" yaml:"missing_items,omitempty"`
	// MissingXML lists arrays declared without xml wrapping metadata
	MissingXML []string `json:"missing_xml,omitempty" yaml:"missing_xml,omitempty"`
}

// Repair kinds.
const (
	RepairMissingProperties = "missing-properties"
	RepairMissingItems      = "missing-items"
	RepairMissingXML        = "missing-xml"
	RepairEnumExpanded      = "enum-expanded"
)

// Repair records one known irregularity that was patched with a default.
type Repair struct {
	Source  string `json:"source" yaml:"source"`
	Path    string `json:"path" yaml:"path"`
	Field   string `json:"field" yaml:"field"`
	Kind    string `json:"kind" yaml:"kind"`
	Default string `json:"default" yaml:"default"`
}

// Canonicalizer validates raw type nodes, converts them to Nodes and keeps a
// census of placeholder signatures. The zero value is ready to use but
// repairs nothing.
//
// A Canonicalizer is not safe for concurrent use.
type Canonicalizer struct {
	// Logger receives repair warnings. Nil discards them.
	Logger parser.Logger
	// Irregularities lists the fields that may be repaired.
	Irregularities Irregularities

	census  map[Signature]int
	repairs []Repair
}

type walkContext struct {
	source string
	path   string
	field  string
}

func (w walkContext) child(field string) walkContext {
	return walkContext{source: w.source, path: w.path + "." + field, field: field}
}

func (w walkContext) suffixed(suffix string) walkContext {
	return walkContext{source: w.source, path: w.path + suffix, field: w.field}
}

func (w walkContext) shapeError(shape Shape, msg string, args ...any) error {
	return &caterrors.ShapeError{Source: w.source, Path: w.path, Shape: string(shape), Message: fmt.Sprintf(msg, args...)}
}

// CanonicalizeType converts a top-level group or one-of alternative body
// into an object node. body maps field names to raw type nodes.
func (c *Canonicalizer) CanonicalizeType(source, name string, body *parser.Object) (*Node, error) {
	w := walkContext{source: source, path: name, field: name}
	props, err := c.properties(w, body)
	if err != nil {
		return nil, err
	}
	n := &Node{Shape: ShapeObject, Properties: props}
	c.count(n.Signature())
	return n, nil
}

// CanonicalizeNode converts one raw type node. path names it in errors;
// its last element is the field name used to look up irregularities.
func (c *Canonicalizer) CanonicalizeNode(source, path string, raw any) (*Node, error) {
	field := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		field = path[i+1:]
	}
	return c.node(walkContext{source: source, path: path, field: field}, raw)
}

// Census returns the observed signatures with their occurrence counts, most
// frequent first and lexicographically within a count.
func (c *Canonicalizer) Census() []SignatureCount {
	out := make([]SignatureCount, 0, len(c.census))
	for sig, n := range c.census {
		out = append(out, SignatureCount{Signature: sig, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Signature < out[j].Signature
	})
	return out
}

// Repairs returns the repairs applied so far, in the order they happened.
func (c *Canonicalizer) Repairs() []Repair {
	return append([]Repair(nil), c.repairs...)
}

func (c *Canonicalizer) count(sig Signature) {
	if c.census == nil {
		c.census = make(map[Signature]int)
	}
	c.census[sig]++
}

func (c *Canonicalizer) repair(w walkContext, kind, def string) {
	r := Repair{Source: w.source, Path: w.path, Field: w.field, Kind: kind, Default: def}
	c.repairs = append(c.repairs, r)
	parser.LoggerOrNop(c.Logger).Warn("repaired known irregularity",
		"source", r.Source, "path", r.Path, "kind", r.Kind, "default", r.Default)
}

func classify(w walkContext, obj *parser.Object) (Shape, error) {
	rawType, ok := obj.Get("type")
	if !ok {
		return "", w.shapeError("", "missing type attribute")
	}
	typ, ok := rawType.(string)
	if !ok {
		return "", w.shapeError("", "type attribute must be a string, got %s", describe(rawType))
	}
	switch typ {
	case "boolean":
		return ShapeBoolean, nil
	case "integer":
		return ShapeInteger, nil
	case "number":
		return ShapeNumber, nil
	case "string":
		if obj.Has("enum") {
			return ShapeEnum, nil
		}
		return ShapeString, nil
	case "object":
		switch {
		case obj.Has("discriminator"):
			return ShapeDiscriminated, nil
		case obj.Has("additionalProperties"):
			return ShapeAdditional, nil
		default:
			return ShapeObject, nil
		}
	case "array":
		return ShapeArray, nil
	default:
		return "", w.shapeError("", "unknown type %q", typ)
	}
}

func checkAttributes(w walkContext, shape Shape, obj *parser.Object) error {
	legal := legalAttributes[shape]
	var unexpected []string
	for _, k := range obj.Keys() {
		found := false
		for _, l := range legal {
			if k == l {
				found = true
				break
			}
		}
		if !found {
			unexpected = append(unexpected, k)
		}
	}
	if len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	return &caterrors.ShapeError{Source: w.source, Path: w.path, Shape: string(shape), Unexpected: unexpected}
}

func (c *Canonicalizer) node(w walkContext, raw any) (*Node, error) {
	obj, ok := raw.(*parser.Object)
	if !ok {
		return nil, w.shapeError("", "type node must be an object, got %s", describe(raw))
	}
	shape, err := classify(w, obj)
	if err != nil {
		return nil, err
	}
	if err := checkAttributes(w, shape, obj); err != nil {
		return nil, err
	}

	n := &Node{Shape: shape}
	if v, ok := obj.Get("format"); ok {
		s, ok := v.(string)
		if !ok {
			return nil, w.shapeError(shape, "format must be a string")
		}
		n.Format = s
	}

	switch shape {
	case ShapeBoolean:
		if v, ok := obj.Get("default"); ok {
			b, ok := v.(bool)
			if !ok {
				return nil, w.shapeError(shape, "default must be a boolean")
			}
			n.Default = &b
		}
	case ShapeEnum:
		values, err := c.enumValues(w, obj)
		if err != nil {
			return nil, err
		}
		n.Enum = values
	case ShapeObject, ShapeDiscriminated:
		rawProps, ok := obj.Get("properties")
		if !ok {
			if shape != ShapeObject || !contains(c.Irregularities.MissingProperties, w.field) {
				return nil, w.shapeError(shape, "object without properties")
			}
			c.repair(w, RepairMissingProperties, "{}")
			break
		}
		props, ok := rawProps.(*parser.Object)
		if !ok {
			return nil, w.shapeError(shape, "properties must be an object")
		}
		n.Properties, err = c.properties(w, props)
		if err != nil {
			return nil, err
		}
		if shape == ShapeDiscriminated {
			d, ok := obj.Get("discriminator")
			name, isString := d.(string)
			if !ok || !isString || name == "" {
				return nil, w.shapeError(shape, "discriminator must be a field name")
			}
			if _, ok := n.Property(name); !ok {
				return nil, w.shapeError(shape, "discriminator %q is not a property", name)
			}
			n.Discriminator = name
		}
	case ShapeAdditional:
		n.Additional, err = c.node(w.suffixed("{}"), mustGet(obj, "additionalProperties"))
		if err != nil {
			return nil, err
		}
	case ShapeArray:
		if rawItems, ok := obj.Get("items"); ok {
			n.Items, err = c.node(w.suffixed("[]"), rawItems)
			if err != nil {
				return nil, err
			}
		} else {
			if !contains(c.Irregularities.MissingItems, w.field) {
				return nil, w.shapeError(shape, "array without items")
			}
			c.repair(w, RepairMissingItems, `{"type":"string"}`)
			n.Items = &Node{Shape: ShapeString}
			c.count(n.Items.Signature())
		}
		if rawXML, ok := obj.Get("xml"); ok {
			n.XML, err = decodeXML(w, rawXML)
			if err != nil {
				return nil, err
			}
		} else {
			if !contains(c.Irregularities.MissingXML, w.field) {
				return nil, w.shapeError(shape, "array without xml metadata")
			}
			n.XML = &XML{Name: w.field, Wrapped: true}
			c.repair(w, RepairMissingXML, fmt.Sprintf(`{"name":%q,"wrapped":true}`, w.field))
		}
	}

	c.count(n.Signature())
	return n, nil
}

func (c *Canonicalizer) properties(w walkContext, body *parser.Object) ([]Property, error) {
	if body.Len() == 0 {
		return nil, nil
	}
	props := make([]Property, 0, body.Len())
	for _, name := range body.Keys() {
		raw, _ := body.Get(name)
		child, err := c.node(w.child(name), raw)
		if err != nil {
			return nil, err
		}
		props = append(props, Property{Name: name, Node: child})
	}
	return props, nil
}

// quotedAlternatives matches a single enum value that lists its members in
// prose, e.g. "'CASH' or 'MARGIN'".
var (
	quotedAlternatives = regexp.MustCompile(`^'[^']*'(\s*(,|or|,\s*or)\s*'[^']*')+$`)
	quotedValue        = regexp.MustCompile(`'([^']*)'`)
)

func (c *Canonicalizer) enumValues(w walkContext, obj *parser.Object) ([]string, error) {
	raw, _ := obj.Get("enum")
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, w.shapeError(ShapeEnum, "enum must be a non-empty list")
	}
	values := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, w.shapeError(ShapeEnum, "enum values must be strings, got %s", describe(v))
		}
		values = append(values, s)
	}
	if len(values) == 1 && quotedAlternatives.MatchString(values[0]) {
		expanded := make([]string, 0, 2)
		for _, m := range quotedValue.FindAllStringSubmatch(values[0], -1) {
			expanded = append(expanded, m[1])
		}
		data, _ := json.Marshal(expanded)
		c.repair(w, RepairEnumExpanded, string(data))
		values = expanded
	}
	return values, nil
}

func decodeXML(w walkContext, raw any) (*XML, error) {
	obj, ok := raw.(*parser.Object)
	if !ok {
		return nil, w.shapeError(ShapeArray, "xml must be an object")
	}
	x := &XML{}
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		switch k {
		case "name":
			s, ok := v.(string)
			if !ok {
				return nil, w.shapeError(ShapeArray, "xml name must be a string")
			}
			x.Name = s
		case "wrapped":
			b, ok := v.(bool)
			if !ok {
				return nil, w.shapeError(ShapeArray, "xml wrapped must be a boolean")
			}
			x.Wrapped = b
		default:
			return nil, &caterrors.ShapeError{Source: w.source, Path: w.path + ".xml", Shape: string(ShapeArray), Unexpected: []string{k}}
		}
	}
	return x, nil
}

func mustGet(obj *parser.Object, key string) any {
	v, _ := obj.Get(key)
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case *parser.Object:
		return "object"
	default:
		if parser.IsUndefined(v) {
			return "undefined"
		}
		return fmt.Sprintf("%T", v)
	}
}
