package generator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/erraggy/apicatalog"
	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/schema"
)

const (
	openAPIVersion = "3.0.3"
	componentsRef  = "#/components/schemas/"
)

// openAPIDoc builds one document.
type openAPIDoc struct {
	*emitter
	schemas openapi3.Schemas
}

// openAPI renders the catalog as an OpenAPI 3.0.3 document: every type, enum
// and one-of under components.schemas, and one operation per endpoint with
// a link.
func (e *emitter) openAPI() (*GeneratedFile, error) {
	d := &openAPIDoc{emitter: e, schemas: make(openapi3.Schemas)}

	// Declare every component first so references carry their target.
	for _, n := range e.cat.TypeNames() {
		d.schemas[e.names.types[n]] = &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}
	}
	for _, n := range e.cat.OneOfNames() {
		d.schemas[e.names.oneOfs[n]] = &openapi3.SchemaRef{Value: &openapi3.Schema{}}
	}
	for _, n := range e.cat.EnumNames() {
		d.schemas[e.names.enums[n]] = &openapi3.SchemaRef{Value: openapi3.NewStringSchema()}
	}

	for _, n := range e.cat.EnumNames() {
		def := e.cat.Enums[n]
		s := d.schemas[e.names.enums[n]].Value
		for _, v := range def.Values {
			s.Enum = append(s.Enum, v)
		}
	}
	for _, n := range e.cat.TypeNames() {
		t := e.cat.Types[n]
		s := d.schemas[e.names.types[n]].Value
		d.object(n, s, t.Node)
		if len(t.Sources) > 0 {
			s.Description = cleanComment("Defined by " + joinNames(t.Sources) + ".")
		}
	}
	for _, n := range e.cat.OneOfNames() {
		fam := e.cat.OneOfs[n]
		d.union(n, d.schemas[e.names.oneOfs[n]].Value, fam)
	}
	e.count = len(d.schemas)

	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info: &openapi3.Info{
			Title:   e.title,
			Version: apicatalog.Version(),
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: d.schemas},
	}
	servers := make(map[string]bool)
	for _, n := range e.cat.EndpointNames() {
		if server := d.operation(doc.Paths, e.cat.Endpoints[n]); server != "" {
			servers[server] = true
		}
	}
	for _, s := range maputil.SortedKeys(servers) {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: s})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("generator: encode openapi: %w", err)
	}
	return &GeneratedFile{Name: e.pkg + ".openapi.json", Content: append(data, '\n')}, nil
}

func (d *openAPIDoc) ref(name string) *openapi3.SchemaRef {
	target := d.schemas[name]
	return &openapi3.SchemaRef{Ref: componentsRef + name, Value: target.Value}
}

func (d *openAPIDoc) object(path string, s *openapi3.Schema, n *schema.Node) {
	for _, p := range n.Properties {
		s.Properties[p.Name] = d.property(path+"."+p.Name, p.Node)
	}
	if n.OneOf == "" {
		return
	}
	fam, ok := d.cat.OneOfs[n.OneOf]
	if !ok {
		d.warn(path, "unknown one-of %s", n.OneOf)
		return
	}
	d.members(path, s, fam)
	if s.Discriminator == nil && n.Discriminator != "" {
		s.Discriminator = &openapi3.Discriminator{PropertyName: n.Discriminator}
	}
}

// union fills the component of a one-of family: oneOf over its members and,
// when the selecting field is known, a discriminator mapping.
func (d *openAPIDoc) union(path string, s *openapi3.Schema, fam *catalog.OneOf) {
	s.Description = cleanComment("One of " + joinNames(fam.Alternatives) + ".")
	d.members(path, s, fam)
}

func (d *openAPIDoc) members(path string, s *openapi3.Schema, fam *catalog.OneOf) {
	for _, alt := range fam.Alternatives {
		name, ok := d.names.types[alt]
		if !ok {
			d.warn(path, "unknown alternative %s", alt)
			continue
		}
		s.OneOf = append(s.OneOf, d.ref(name))
	}
	if fam.Discriminator == "" {
		return
	}
	mapping := make(map[string]string, len(fam.Tags))
	for tag, alt := range fam.Tags {
		if name, ok := d.names.types[alt]; ok {
			mapping[tag] = componentsRef + name
		}
	}
	s.Discriminator = &openapi3.Discriminator{PropertyName: fam.Discriminator, Mapping: mapping}
}

func (d *openAPIDoc) property(path string, n *schema.Node) *openapi3.SchemaRef {
	switch n.Shape {
	case schema.ShapeEnum:
		if name, ok := d.names.enums[n.Ref]; ok {
			return d.ref(name)
		}
		d.warn(path, "unknown enum %q; emitted as string", n.Ref)
		return &openapi3.SchemaRef{Value: openapi3.NewStringSchema()}
	case schema.ShapeObject, schema.ShapeDiscriminated:
		if name, ok := d.names.types[n.Ref]; ok {
			return d.ref(name)
		}
		d.warn(path, "unknown type %q; emitted as a free-form object", n.Ref)
		return &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}
	case schema.ShapeArray:
		s := openapi3.NewArraySchema()
		s.Items = d.property(path+"[]", orString(n.Items))
		if n.XML != nil {
			s.XML = &openapi3.XML{Name: n.XML.Name, Wrapped: n.XML.Wrapped}
		}
		return &openapi3.SchemaRef{Value: s}
	case schema.ShapeAdditional:
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: d.property(path+"{}", orString(n.Additional))}
		return &openapi3.SchemaRef{Value: s}
	}
	s := &openapi3.Schema{Type: &openapi3.Types{openAPIType(n.Shape)}, Format: n.Format}
	if n.Default != nil {
		s.Default = *n.Default
	}
	return &openapi3.SchemaRef{Value: s}
}

// operation adds the endpoint to paths and returns its server URL. Endpoints
// without a link are described by components only.
func (d *openAPIDoc) operation(paths *openapi3.Paths, ep *catalog.Endpoint) string {
	if ep.Link == "" {
		return ""
	}
	server, path := splitLink(ep.Link)
	method := strings.ToUpper(ep.Method)
	if method == "" {
		method = http.MethodGet
	}

	item := paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
		paths.Set(path, item)
	}
	if item.GetOperation(method) != nil {
		d.warn(ep.Name, "%s %s is already taken; operation omitted", method, path)
		return server
	}

	op := openapi3.NewOperation()
	op.OperationID = ep.Name
	for _, p := range ep.URLParams {
		param := openapi3.NewPathParameter(p.Name).WithSchema(d.paramSchema(ep.Name, p))
		param.Description = p.Description
		op.AddParameter(param)
	}
	for _, p := range ep.QueryParams {
		param := openapi3.NewQueryParameter(p.Name).WithSchema(d.paramSchema(ep.Name, p)).WithRequired(p.Required)
		param.Description = p.Description
		op.AddParameter(param)
	}

	if body := d.groups(ep.Request); body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithJSONSchemaRef(body)}
	}
	op.Responses = openapi3.NewResponses()
	op.Responses.Delete("default")
	ok := openapi3.NewResponse().WithDescription("OK")
	if body := d.groups(ep.Response); body != nil {
		ok.WithJSONSchemaRef(body)
	}
	op.AddResponse(http.StatusOK, ok)
	for _, code := range sortedCodes(ep.Errors) {
		msg := cleanComment(ep.Errors[code])
		if msg == "" {
			msg = "HTTP " + code
		}
		op.Responses.Set(code, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(msg)})
	}

	item.SetOperation(method, op)
	return server
}

func (d *openAPIDoc) paramSchema(endpoint string, p catalog.Param) *openapi3.Schema {
	if p.Type == nil {
		return openapi3.NewStringSchema()
	}
	ref := d.property(endpoint+"."+p.Name, p.Type)
	if ref.Ref != "" {
		return &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}}
	}
	return ref.Value
}

// groups returns the body schema of a document's top-level groups: the
// single type, or oneOf over several.
func (d *openAPIDoc) groups(refs []catalog.MessageRef) *openapi3.SchemaRef {
	var out openapi3.SchemaRefs
	for _, m := range refs {
		if m.Undefined {
			continue
		}
		name, ok := d.names.types[m.Type]
		if !ok {
			d.warn(m.Name, "unknown type %q", m.Type)
			continue
		}
		out = append(out, d.ref(name))
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{OneOf: out}}
}

// splitLink separates "https://host/v1/x?y" into "https://host" and "/v1/x".
func splitLink(link string) (server, path string) {
	rest := link
	if i := strings.Index(rest, "://"); i >= 0 {
		j := strings.Index(rest[i+3:], "/")
		if j < 0 {
			return rest, "/"
		}
		server, rest = rest[:i+3+j], rest[i+3+j:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return server, rest
}

