package catalog

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/internal/naming"
	"github.com/erraggy/apicatalog/parser"
	"github.com/erraggy/apicatalog/schema"
	"github.com/erraggy/apicatalog/tables"
)

// Builder turns endpoint sources into a Catalog.
//
// A build is a single synchronous pass: parse and canonicalize every
// document, resolve type and enum names across the whole corpus, check and
// build the one-of families, then reconcile discriminators. Aggregation
// always runs in lexicographic order of names and endpoint names, so the
// same input yields a byte-identical catalog.
type Builder struct {
	cfg *buildConfig
}

// NewBuilder creates a Builder.
//
//	b, err := catalog.NewBuilder(
//		catalog.WithTables(t),
//		catalog.WithLogger(logger),
//		catalog.WithSuffixFallback(false),
//	)
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.tables == nil {
		cfg.tables = tables.Default()
	}
	if cfg.normalizer.Logger == nil {
		cfg.normalizer.Logger = cfg.logger
	}
	return &Builder{cfg: cfg}, nil
}

// Build runs one batch over sources. Nothing is returned on error; a fatal
// error identifies the offending document or name.
func Build(ctx context.Context, sources []Source, opts ...Option) (*Catalog, *Report, error) {
	b, err := NewBuilder(opts...)
	if err != nil {
		return nil, nil, err
	}
	return b.Build(ctx, sources)
}

// Build runs one batch over sources.
func (b *Builder) Build(ctx context.Context, sources []Source) (*Catalog, *Report, error) {
	ctx, span := b.cfg.tracer.Start(ctx, "catalog.Build", trace.WithAttributes(attribute.Int("catalog.sources", len(sources))))
	defer span.End()

	s := newState(b.cfg)
	cat, err := s.run(ctx, sources)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	s.report.Census = s.canon.Census()
	s.report.Repairs = s.canon.Repairs()
	span.SetAttributes(
		attribute.Int("catalog.types", len(cat.Types)),
		attribute.Int("catalog.oneofs", len(cat.OneOfs)),
		attribute.Int("catalog.enums", len(cat.Enums)),
		attribute.Int("catalog.collisions", len(s.report.Collisions)),
	)
	return cat, s.report, nil
}

// Occurrence kinds.
const (
	KindTop         = "top"
	KindAlternative = "alternative"
	KindNested      = "nested"
	KindParameter   = "parameter"
)

// occurrence is one place a named type was seen.
type occurrence struct {
	seq       int
	name      string
	endpoint  string
	direction Direction
	kind      string
	path      string
	node      *schema.Node
	canon     []byte
	hash      uint64
}

func (o *occurrence) source() string {
	if o.direction == "" {
		return o.endpoint
	}
	return o.endpoint + "/" + string(o.direction)
}

type enumOccurrence struct {
	seq      int
	field    string
	endpoint string
	path     string
	node     *schema.Node
}

type familyAlt struct {
	label string
	occ   *occurrence
}

type familyDef struct {
	name     string
	endpoint string
	source   string
	alts     []familyAlt
}

type messageSlot struct {
	ref *MessageRef
	occ *occurrence
}

type state struct {
	cfg    *buildConfig
	log    parser.Logger
	canon  *schema.Canonicalizer
	report *Report

	seq      int
	types    map[string][]*occurrence
	enums    []*enumOccurrence
	families map[string][]*familyDef
	messages []messageSlot

	// set during resolution
	variants map[string]*variant // final type name -> variant
	oneOfs   map[string]*oneOfInfo
	cat      *Catalog
}

func newState(cfg *buildConfig) *state {
	return &state{
		cfg: cfg,
		log: cfg.logger,
		canon: &schema.Canonicalizer{
			Logger:         cfg.logger,
			Irregularities: cfg.tables.Irregularities,
		},
		report:   NewReport(),
		types:    make(map[string][]*occurrence),
		families: make(map[string][]*familyDef),
		variants: make(map[string]*variant),
		cat:      New(),
	}
}

func (s *state) run(ctx context.Context, sources []Source) (*Catalog, error) {
	sorted := make([]Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Endpoint < sorted[j].Endpoint })
	for i := range sorted {
		if sorted[i].Endpoint == "" {
			return nil, &caterrors.ConfigError{Option: "sources", Message: "source without an endpoint name"}
		}
		if i > 0 && sorted[i].Endpoint == sorted[i-1].Endpoint {
			return nil, &caterrors.ConfigError{Option: "sources", Value: sorted[i].Endpoint, Message: "duplicate endpoint"}
		}
	}

	stages := []struct {
		name string
		run  func() error
	}{
		{"parse", func() error {
			for i := range sorted {
				if err := s.addSource(&sorted[i]); err != nil {
					return err
				}
			}
			return nil
		}},
		{"resolve", func() error {
			if err := s.resolveTypes(); err != nil {
				return err
			}
			return s.resolveEnums()
		}},
		{"oneofs", s.buildOneOfs},
		{"reconcile", s.reconcileDiscriminators},
		{"assemble", s.assemble},
	}
	for _, st := range stages {
		_, span := s.cfg.tracer.Start(ctx, "catalog."+st.name)
		err := st.run()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if err != nil {
			return nil, err
		}
	}

	if s.cfg.mergeEquiv {
		s.mergeEquivalent()
	}
	if err := s.cat.Validate(); err != nil {
		return nil, err
	}
	return s.cat, nil
}

func (s *state) addSource(src *Source) error {
	ep := &Endpoint{
		Name:   src.Endpoint,
		Method: src.Method,
		Link:   src.Link,
		Errors: maps.Clone(src.Errors),
	}
	s.cat.Endpoints[ep.Name] = ep

	for _, dir := range directions {
		doc := src.Document(dir)
		if doc == "" {
			continue
		}
		source := ep.Name + "/" + string(dir)
		rec, err := s.cfg.normalizer.Normalize(source, ep.Name, doc)
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		if rec.Skipped {
			ep.Skipped = append(ep.Skipped, string(dir))
			s.report.Skipped = append(s.report.Skipped, source)
			continue
		}
		if err := s.addRecord(ep, dir, rec); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	}
	return s.addParams(ep, src)
}

func (s *state) addRecord(ep *Endpoint, dir Direction, rec *parser.Record) error {
	refs := make([]MessageRef, len(rec.Top))
	for i, g := range rec.Top {
		refs[i] = MessageRef{Name: g.Name, Undefined: g.Undefined()}
	}
	if dir == Request {
		ep.Request = refs
	} else {
		ep.Response = refs
	}

	for i, g := range rec.Top {
		if g.Undefined() {
			continue
		}
		node, err := s.canon.CanonicalizeType(rec.Source, g.Name, g.Object)
		if err != nil {
			return err
		}
		occ := s.addType(g.Name, ep.Name, dir, KindTop, g.Name, node)
		s.walkProperties(occ, g.Name, node)
		slot := messageSlot{occ: occ}
		if dir == Request {
			slot.ref = &ep.Request[i]
		} else {
			slot.ref = &ep.Response[i]
		}
		s.messages = append(s.messages, slot)
	}

	for _, fam := range rec.Sub {
		def := &familyDef{name: fam.Name, endpoint: ep.Name, source: rec.Source}
		for _, alt := range fam.Alternatives {
			path := fam.Name + "." + alt.Name
			node, err := s.canon.CanonicalizeType(rec.Source, path, alt.Object)
			if err != nil {
				return err
			}
			occ := s.addType(alt.Name, ep.Name, dir, KindAlternative, path, node)
			s.walkProperties(occ, path, node)
			def.alts = append(def.alts, familyAlt{label: alt.Name, occ: occ})
		}
		s.families[fam.Name] = append(s.families[fam.Name], def)
		if !containsString(ep.OneOfs, fam.Name) {
			ep.OneOfs = append(ep.OneOfs, fam.Name)
		}
	}
	return nil
}

func (s *state) addType(name, endpoint string, dir Direction, kind, path string, node *schema.Node) *occurrence {
	s.seq++
	occ := &occurrence{
		seq:       s.seq,
		name:      name,
		endpoint:  endpoint,
		direction: dir,
		kind:      kind,
		path:      path,
		node:      node,
		canon:     node.Canonical(),
		hash:      node.Hash(),
	}
	s.types[name] = append(s.types[name], occ)
	return occ
}

func (s *state) addEnum(field, endpoint, path string, node *schema.Node) {
	s.seq++
	s.enums = append(s.enums, &enumOccurrence{seq: s.seq, field: field, endpoint: endpoint, path: path, node: node})
}

// walkProperties registers the nested object and enum nodes below a type.
func (s *state) walkProperties(owner *occurrence, path string, n *schema.Node) {
	for _, p := range n.Properties {
		s.visit(owner, p.Name, path+"."+p.Name, p.Node)
	}
}

func (s *state) visit(owner *occurrence, field, path string, n *schema.Node) {
	if n == nil {
		return
	}
	switch n.Shape {
	case schema.ShapeEnum:
		s.addEnum(field, owner.endpoint, path, n)
	case schema.ShapeObject, schema.ShapeDiscriminated:
		occ := s.addType(naming.ToPascalCase(field), owner.endpoint, owner.direction, KindNested, path, n)
		s.walkProperties(occ, path, n)
	case schema.ShapeArray:
		s.visit(owner, field, path+"[]", n.Items)
	case schema.ShapeAdditional:
		s.visit(owner, field, path+"{}", n.Additional)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
