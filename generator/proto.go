package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jhump/protoreflect/desc/builder"
	"github.com/jhump/protoreflect/desc/protoprint"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/naming"
	"github.com/erraggy/apicatalog/schema"
)

const protoHeader = "// Code generated by apicatalog. DO NOT EDIT.\n\n"

// protoFile holds the builders of one proto file while fields are wired.
type protoFile struct {
	*emitter
	messages map[string]*builder.MessageBuilder
	wrappers map[string]*builder.MessageBuilder
	enums    map[string]*builder.EnumBuilder
}

// proto renders the catalog as a proto2 file: one message per type, one
// enum per value set, a wrapper message per one-of and an error code enum
// per endpoint.
func (e *emitter) proto() (*GeneratedFile, error) {
	p := &protoFile{
		emitter:  e,
		messages: make(map[string]*builder.MessageBuilder),
		wrappers: make(map[string]*builder.MessageBuilder),
		enums:    make(map[string]*builder.EnumBuilder),
	}
	name := strings.ReplaceAll(e.pkg, ".", "_") + ".proto"
	file := builder.NewFile(name).SetPackageName(e.pkg).SetProto3(false)

	for _, n := range e.cat.EnumNames() {
		p.enums[n] = p.enum(e.cat.Enums[n])
	}
	for _, n := range e.cat.TypeNames() {
		p.messages[n] = builder.NewMessage(e.names.types[n])
	}
	for _, n := range e.cat.OneOfNames() {
		p.wrappers[n] = builder.NewMessage(e.names.oneOfs[n])
	}

	for _, n := range e.cat.TypeNames() {
		t := e.cat.Types[n]
		mb := p.messages[n]
		if len(t.Sources) > 0 {
			mb.SetComments(builder.Comments{LeadingComment: cleanComment(" Defined by " + joinNames(t.Sources) + ".")})
		}
		if err := p.fill(n, mb, t.Node); err != nil {
			return nil, err
		}
	}
	for _, n := range e.cat.OneOfNames() {
		if err := p.wrapper(e.cat.OneOfs[n], p.wrappers[n]); err != nil {
			return nil, err
		}
	}

	for _, n := range e.cat.EnumNames() {
		if err := file.TryAddEnum(p.enums[n]); err != nil {
			return nil, fmt.Errorf("generator: enum %s: %w", n, err)
		}
	}
	for _, n := range e.cat.TypeNames() {
		if err := file.TryAddMessage(p.messages[n]); err != nil {
			return nil, fmt.Errorf("generator: message %s: %w", n, err)
		}
	}
	for _, n := range e.cat.OneOfNames() {
		if err := file.TryAddMessage(p.wrappers[n]); err != nil {
			return nil, fmt.Errorf("generator: one-of %s: %w", n, err)
		}
	}
	for _, ep := range e.cat.EndpointNames() {
		eb := p.errorEnum(e.cat.Endpoints[ep])
		if eb == nil {
			continue
		}
		if err := file.TryAddEnum(eb); err != nil {
			return nil, fmt.Errorf("generator: endpoint %s: %w", ep, err)
		}
	}
	e.count = len(p.messages) + len(p.wrappers)

	fd, err := file.Build()
	if err != nil {
		return nil, fmt.Errorf("generator: build proto descriptor: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(protoHeader)
	printer := protoprint.Printer{Indent: "  "}
	if err := printer.PrintProtoFile(fd, &buf); err != nil {
		return nil, fmt.Errorf("generator: print proto: %w", err)
	}
	return &GeneratedFile{Name: name, Content: buf.Bytes()}, nil
}

// enum builds a value set with a zero UNSPECIFIED entry. Values are
// prefixed with the enum name since proto enum values share the package
// scope.
func (p *protoFile) enum(def *catalog.EnumDef) *builder.EnumBuilder {
	name := p.names.enums[def.Name]
	prefix := naming.ToScreamingSnake(name)
	eb := builder.NewEnum(name)
	used := fieldNames{}
	eb.AddValue(builder.NewEnumValue(used.next(prefix + "_UNSPECIFIED")).SetNumber(0))
	for i, v := range def.Values {
		value := used.next(enumValueName(prefix, v))
		evb := builder.NewEnumValue(value).SetNumber(int32(i + 1))
		if value != prefix+"_"+v {
			evb.SetComments(builder.Comments{TrailingComment: cleanComment(" " + v)})
		}
		eb.AddValue(evb)
	}
	return eb
}

// fill adds the properties of n to mb, numbered by source position. A
// discriminated node also gets a oneof over the members of its family.
func (p *protoFile) fill(path string, mb *builder.MessageBuilder, n *schema.Node) error {
	used := fieldNames{}
	for i, prop := range n.Properties {
		fb := p.field(path+"."+prop.Name, used.next(protoFieldName(prop.Name)), prop.Node)
		if fb == nil {
			continue
		}
		fb.SetNumber(int32(i + 1)).SetJsonName(prop.Name)
		if err := mb.TryAddField(fb); err != nil {
			return fmt.Errorf("generator: %s.%s: %w", path, prop.Name, err)
		}
	}
	if n.OneOf == "" {
		return nil
	}
	fam, ok := p.cat.OneOfs[n.OneOf]
	if !ok {
		p.warn(path, "unknown one-of %s", n.OneOf)
		return nil
	}
	oob := builder.NewOneOf(used.next(protoFieldName(p.names.oneOfs[fam.Name])))
	next := int32(len(n.Properties) + 1)
	if err := p.choices(path, oob, fam, used, next); err != nil {
		return err
	}
	if err := mb.TryAddOneOf(oob); err != nil {
		return fmt.Errorf("generator: %s: %w", path, err)
	}
	return nil
}

// wrapper fills the standalone message of a one-of family.
func (p *protoFile) wrapper(fam *catalog.OneOf, mb *builder.MessageBuilder) error {
	comment := " One of " + joinNames(fam.Alternatives) + "."
	if fam.Discriminator != "" {
		comment += " Selected by " + fam.Discriminator + "."
	}
	mb.SetComments(builder.Comments{LeadingComment: cleanComment(comment)})
	oob := builder.NewOneOf("value")
	if err := p.choices(fam.Name, oob, fam, fieldNames{"value": true}, 1); err != nil {
		return err
	}
	if err := mb.TryAddOneOf(oob); err != nil {
		return fmt.Errorf("generator: one-of %s: %w", fam.Name, err)
	}
	return nil
}

func (p *protoFile) choices(path string, oob *builder.OneOfBuilder, fam *catalog.OneOf, used fieldNames, next int32) error {
	for i, alt := range fam.Alternatives {
		mb, ok := p.messages[alt]
		if !ok {
			p.warn(path, "unknown alternative %s", alt)
			continue
		}
		fb := builder.NewField(used.next(protoFieldName(p.names.types[alt])), builder.FieldTypeMessage(mb)).
			SetNumber(next + int32(i))
		if err := oob.TryAddChoice(fb); err != nil {
			return fmt.Errorf("generator: %s: choice %s: %w", path, alt, err)
		}
	}
	return nil
}

// field returns the field for a property, or nil when proto2 cannot express
// it.
func (p *protoFile) field(path, name string, n *schema.Node) *builder.FieldBuilder {
	switch n.Shape {
	case schema.ShapeArray:
		item := orString(n.Items)
		if collection(item) {
			p.warn(path, "nested %s has no proto2 form; field omitted", item.Shape)
			return nil
		}
		return builder.NewField(name, p.fieldType(path+"[]", item)).SetRepeated()
	case schema.ShapeAdditional:
		value := orString(n.Additional)
		if collection(value) {
			p.warn(path, "map of %s has no proto2 form; field omitted", value.Shape)
			return nil
		}
		return builder.NewMapField(name, builder.FieldTypeString(), p.fieldType(path+"{}", value))
	}
	fb := builder.NewField(name, p.fieldType(path, n)).SetOptional()
	if n.Shape == schema.ShapeBoolean && n.Default != nil {
		fb.SetDefaultValue(strconv.FormatBool(*n.Default))
	}
	return fb
}

func (p *protoFile) fieldType(path string, n *schema.Node) *builder.FieldType {
	switch n.Shape {
	case schema.ShapeEnum:
		if eb, ok := p.enums[n.Ref]; ok {
			return builder.FieldTypeEnum(eb)
		}
		p.warn(path, "unknown enum %q; emitted as string", n.Ref)
	case schema.ShapeObject, schema.ShapeDiscriminated:
		if mb, ok := p.messages[n.Ref]; ok {
			return builder.FieldTypeMessage(mb)
		}
		p.warn(path, "unknown type %q; emitted as string", n.Ref)
	default:
		return builder.FieldTypeScalar(protoScalar(n))
	}
	return builder.FieldTypeString()
}

// errorEnum lists the HTTP error codes of an endpoint, with the message of
// each code as its comment.
func (p *protoFile) errorEnum(ep *catalog.Endpoint) *builder.EnumBuilder {
	if len(ep.Errors) == 0 {
		return nil
	}
	name := p.names.reserve(naming.GoIdentifier(ep.Name)+"Error", "Codes")
	prefix := naming.ToScreamingSnake(name)
	eb := builder.NewEnum(name).
		SetComments(builder.Comments{LeadingComment: cleanComment(" Error codes of " + ep.Name + ".")})
	eb.AddValue(builder.NewEnumValue(prefix + "_UNSPECIFIED").SetNumber(0))
	used := fieldNames{prefix + "_UNSPECIFIED": true}
	for i, code := range sortedCodes(ep.Errors) {
		evb := builder.NewEnumValue(used.next(enumValueName(prefix+"_HTTP", code))).SetNumber(int32(i + 1))
		if msg := cleanComment(ep.Errors[code]); msg != "" {
			evb.SetComments(builder.Comments{LeadingComment: " " + msg})
		}
		eb.AddValue(evb)
	}
	return eb
}

// sortedCodes orders status codes numerically, non-numeric codes last.
func sortedCodes(m map[string]string) []string {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool {
		a, errA := strconv.Atoi(codes[i])
		b, errB := strconv.Atoi(codes[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return codes[i] < codes[j]
	})
	return codes
}
