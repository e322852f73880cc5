package generator

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/internal/naming"
	"github.com/erraggy/apicatalog/schema"
)

const goHeader = "// Code generated by apicatalog. DO NOT EDIT.\n\n"

// goFile accumulates Go source for one catalog.
type goFile struct {
	*emitter
	buf    bytes.Buffer
	consts fieldNames
}

// golang renders the catalog as Go: a string type with constants per enum,
// a struct per type and a sealed interface per one-of.
func (e *emitter) golang() (*GeneratedFile, error) {
	g := &goFile{emitter: e, consts: fieldNames{}}
	for name := range e.names.taken {
		g.consts[name] = true
	}
	g.printf("%spackage %s\n\n", goHeader, e.pkg)

	for _, n := range e.cat.EnumNames() {
		g.enum(e.cat.Enums[n])
	}
	for _, n := range e.cat.TypeNames() {
		g.structType(e.cat.Types[n])
	}
	for _, n := range e.cat.OneOfNames() {
		g.oneOf(e.cat.OneOfs[n])
	}
	e.count = len(e.cat.Types)

	name := e.pkg + ".go"
	src, err := formatAndFixImports(name, g.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("generator: format go source: %w", err)
	}
	return &GeneratedFile{Name: name, Content: src}, nil
}

func (g *goFile) printf(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *goFile) enum(def *catalog.EnumDef) {
	name := g.names.enums[def.Name]
	if def.Field != "" {
		g.printf("// %s is a value of %s.\n", name, def.Field)
	}
	g.printf("type %s string\n\n", name)
	if len(def.Values) == 0 {
		return
	}
	g.printf("const (\n")
	for _, v := range def.Values {
		g.printf("\t%s %s = %s\n", g.consts.next(goConstName(name, v)), name, strconv.Quote(v))
	}
	g.printf(")\n\n")
}

func (g *goFile) structType(t *catalog.NamedType) {
	name := g.names.types[t.Name]
	if len(t.Sources) > 0 {
		g.printf("// %s\n", cleanComment(fmt.Sprintf("%s is defined by %s.", name, joinNames(t.Sources))))
	}
	if fam, ok := g.cat.OneOfs[t.Node.OneOf]; ok && t.Node.Discriminator != "" {
		g.printf("// Its %s field selects a member of %s.\n", t.Node.Discriminator, g.names.oneOfs[fam.Name])
	}
	g.printf("type %s struct {\n", name)
	used := fieldNames{}
	for _, p := range t.Node.Properties {
		typ := g.goType(t.Name+"."+p.Name, p.Node, true)
		g.printf("\t%s %s `json:%s`\n", used.next(naming.GoIdentifier(p.Name)), typ, strconv.Quote(p.Name+",omitempty"))
	}
	g.printf("}\n\n")
}

// goType returns the Go type of a node. Optional scalars and messages are
// pointers; elements and map values are not.
func (g *goFile) goType(path string, n *schema.Node, optional bool) string {
	ptr := ""
	if optional {
		ptr = "*"
	}
	switch n.Shape {
	case schema.ShapeArray:
		return "[]" + g.goType(path+"[]", orString(n.Items), false)
	case schema.ShapeAdditional:
		return "map[string]" + g.goType(path+"{}", orString(n.Additional), false)
	case schema.ShapeEnum:
		if name, ok := g.names.enums[n.Ref]; ok {
			return ptr + name
		}
		g.warn(path, "unknown enum %q; emitted as string", n.Ref)
		return ptr + "string"
	case schema.ShapeObject, schema.ShapeDiscriminated:
		if name, ok := g.names.types[n.Ref]; ok {
			return ptr + name
		}
		g.warn(path, "unknown type %q; emitted as json.RawMessage", n.Ref)
		return "json.RawMessage"
	default:
		return ptr + goScalar(n)
	}
}

// oneOf emits a sealed interface, the marker methods of its members and,
// when the discriminator is known, a constructor keyed by tag.
func (g *goFile) oneOf(fam *catalog.OneOf) {
	iface := g.names.oneOfs[fam.Name]
	marker := "is" + iface
	var members []string
	for _, alt := range fam.Alternatives {
		if name, ok := g.names.types[alt]; ok {
			members = append(members, name)
		} else {
			g.warn(fam.Name, "unknown alternative %s", alt)
		}
	}

	g.printf("// %s\n", cleanComment(fmt.Sprintf("%s is implemented by %s.", iface, joinNames(members))))
	g.printf("type %s interface {\n\t%s()\n}\n\n", iface, marker)
	for _, m := range members {
		g.printf("func (*%s) %s() {}\n\n", m, marker)
	}

	if fam.Discriminator == "" || len(fam.Tags) == 0 {
		return
	}
	ctor := g.consts.next("New" + iface)
	g.printf("// %s returns an empty member of %s for a %s value.\n", ctor, iface, fam.Discriminator)
	g.printf("func %s(tag string) (%s, bool) {\n\tswitch tag {\n", ctor, iface)
	for _, tag := range maputil.SortedKeys(fam.Tags) {
		member, ok := g.names.types[fam.Tags[tag]]
		if !ok {
			continue
		}
		g.printf("\tcase %s:\n\t\treturn new(%s), true\n", strconv.Quote(tag), member)
	}
	g.printf("\t}\n\treturn nil, false\n}\n\n")
}

