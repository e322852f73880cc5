package catalog

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/internal/naming"
	"github.com/erraggy/apicatalog/schema"
)

// variant is one distinct shape seen under a type name.
type variant struct {
	name       string
	final      string
	overridden bool
	occs       []*occurrence
}

func (v *variant) first() *occurrence { return v.occs[0] }

func (v *variant) sources() []string {
	return uniqueSorted(len(v.occs), func(i int) string { return v.occs[i].endpoint })
}

// groupVariants splits occurrences into structurally distinct variants in
// first-seen order. The hash narrows candidates; canonical bytes decide.
func groupVariants(name string, occs []*occurrence) []*variant {
	var out []*variant
	byHash := make(map[uint64][]*variant)
	for _, occ := range occs {
		var match *variant
		for _, v := range byHash[occ.hash] {
			if bytes.Equal(v.first().canon, occ.canon) {
				match = v
				break
			}
		}
		if match == nil {
			match = &variant{name: name}
			byHash[occ.hash] = append(byHash[occ.hash], match)
			out = append(out, match)
		}
		match.occs = append(match.occs, occ)
	}
	return out
}

// resolveTypes assigns a final, unique name to every type variant. Names are
// visited in sorted order and variants in first-seen order, so the result
// does not depend on the order sources were supplied in.
func (s *state) resolveTypes() error {
	var all []*variant
	for _, name := range maputil.SortedKeys(s.types) {
		vs := groupVariants(name, s.types[name])

		var plain []*variant
		for _, v := range vs {
			rename, err := s.overrideFor(v)
			if err != nil {
				return err
			}
			if rename != "" {
				v.final = rename
				v.overridden = true
				continue
			}
			plain = append(plain, v)
		}
		if len(plain) > 1 && !s.cfg.suffixFallback {
			return &caterrors.CollisionError{
				Kind:        "type",
				Name:        name,
				Sources:     variantSources(plain),
				Differences: differenceStrings(name, plain),
				Message:     "distinct shapes without an override and suffix fallback is disabled",
			}
		}
		n := 1
		for i, v := range plain {
			v.final = name
			if i == 0 {
				continue
			}
			for {
				n++
				candidate := name + strconv.Itoa(n)
				if _, exists := s.types[candidate]; exists {
					continue
				}
				if _, taken := s.variants[candidate]; taken {
					continue
				}
				v.final = candidate
				break
			}
		}

		for _, v := range vs {
			prev, ok := s.variants[v.final]
			if !ok {
				s.variants[v.final] = v
				all = append(all, v)
				continue
			}
			if !bytes.Equal(prev.first().canon, v.first().canon) {
				return &caterrors.CollisionError{
					Kind:        "type",
					Name:        v.final,
					Sources:     append(prev.sources(), v.sources()...),
					Differences: stringsOf(schema.Compare(v.final, prev.first().node, v.first().node)),
					Message:     fmt.Sprintf("%s and %s both resolve to %s", prev.name, v.name, v.final),
				}
			}
			// Same shape under the same final name: one entry.
			prev.occs = append(prev.occs, v.occs...)
		}

		if len(vs) > 1 {
			s.report.AddCollision(collisionEvent("type", name, vs))
			s.log.Info("resolved type collision", "name", name, "variants", len(vs))
		}
	}

	for _, v := range all {
		for _, occ := range v.occs {
			occ.node.Ref = v.final
		}
	}
	return nil
}

// overrideFor returns the override rename for a variant, if any of its
// occurrences has one. All occurrences of one variant must agree.
func (s *state) overrideFor(v *variant) (string, error) {
	var rename, from string
	for _, occ := range v.occs {
		r, ok := s.cfg.tables.Override(v.name, occ.endpoint)
		if !ok {
			continue
		}
		if rename == "" {
			rename, from = r, occ.endpoint
			continue
		}
		if r != rename {
			return "", &caterrors.CollisionError{
				Kind:    "type",
				Name:    v.name,
				Sources: []string{from, occ.endpoint},
				Message: fmt.Sprintf("conflicting overrides %s and %s for one shape", rename, r),
			}
		}
	}
	return rename, nil
}

func collisionEvent(kind, name string, vs []*variant) CollisionEvent {
	event := CollisionEvent{Kind: kind, Name: name}
	var overridden, suffixed int
	for i, v := range vs {
		event.Variants = append(event.Variants, Variant{Final: v.final, Sources: v.sources(), Overridden: v.overridden})
		if v.overridden {
			overridden++
		} else if v.final != name {
			suffixed++
		}
		if i > 0 {
			event.Differences = append(event.Differences, schema.Compare(name, vs[0].first().node, v.first().node)...)
		}
	}
	switch {
	case overridden > 0 && suffixed > 0:
		event.Resolution = ResolutionMixed
	case overridden > 0:
		event.Resolution = ResolutionOverride
	default:
		event.Resolution = ResolutionSuffix
	}
	return event
}

func variantSources(vs []*variant) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.first().endpoint)
	}
	return out
}

func differenceStrings(name string, vs []*variant) []string {
	var out []string
	for _, v := range vs[1:] {
		out = append(out, stringsOf(schema.Compare(name, vs[0].first().node, v.first().node))...)
	}
	return out
}

func stringsOf(diffs []schema.Difference) []string {
	out := make([]string, len(diffs))
	for i, d := range diffs {
		out[i] = d.String()
	}
	return out
}

// enumGroup is one distinct enum value set.
type enumGroup struct {
	def    *EnumDef
	sorted []string
	occs   []*enumOccurrence
}

// resolveEnums deduplicates enums by their sorted value sequence. A value set
// is named after the first field it was seen under; distinct sets sharing a
// base name get numbered suffixes in first-seen order.
func (s *state) resolveEnums() error {
	occs := make([]*enumOccurrence, len(s.enums))
	copy(occs, s.enums)
	sort.SliceStable(occs, func(i, j int) bool { return occs[i].seq < occs[j].seq })

	var groups []*enumGroup
	byKey := make(map[string]*enumGroup)
	perBase := make(map[string][]*enumGroup)
	for _, occ := range occs {
		sorted := append([]string(nil), occ.node.Enum...)
		sort.Strings(sorted)
		key := strings.Join(sorted, "\x00")
		g, ok := byKey[key]
		if !ok {
			base := naming.ToPascalCase(occ.field)
			if base == "" {
				base = "Enum"
			}
			name := base
			for n := len(perBase[base]) + 1; ; n++ {
				if n > 1 {
					name = base + strconv.Itoa(n)
				}
				if _, taken := s.cat.Enums[name]; !taken {
					break
				}
			}
			g = &enumGroup{
				def:    &EnumDef{Name: name, Field: occ.field, Values: append([]string(nil), occ.node.Enum...)},
				sorted: sorted,
			}
			byKey[key] = g
			perBase[base] = append(perBase[base], g)
			groups = append(groups, g)
			s.cat.Enums[name] = g.def
		}
		g.occs = append(g.occs, occ)
		occ.node.Ref = g.def.Name
	}

	for _, g := range groups {
		g.def.Sources = uniqueSorted(len(g.occs), func(i int) string { return g.occs[i].endpoint })
	}
	for _, base := range maputil.SortedKeys(perBase) {
		gs := perBase[base]
		if len(gs) < 2 {
			continue
		}
		event := CollisionEvent{Kind: "enum", Name: base, Resolution: ResolutionSuffix}
		for i, g := range gs {
			event.Variants = append(event.Variants, Variant{Final: g.def.Name, Sources: g.def.Sources})
			if i > 0 {
				event.Differences = append(event.Differences, schema.Compare(base,
					&schema.Node{Shape: schema.ShapeEnum, Enum: gs[0].def.Values},
					&schema.Node{Shape: schema.ShapeEnum, Enum: g.def.Values})...)
			}
		}
		s.report.Enums = append(s.report.Enums, event)
	}
	return nil
}

// uniqueSorted collects n strings and returns them sorted without duplicates.
func uniqueSorted(n int, at func(int) string) []string {
	seen := make(map[string]struct{}, n)
	var out []string
	for i := 0; i < n; i++ {
		v := at(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
