package catalog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/internal/naming"
	"github.com/erraggy/apicatalog/schema"
)

// oneOfInfo keeps the source labels of a family next to the catalog entry,
// for matching discriminator values.
type oneOfInfo struct {
	def    *OneOf
	labels []string
}

// buildOneOfs checks that every endpoint defining a family defines it
// identically and adds one catalog entry per family.
func (s *state) buildOneOfs() error {
	s.oneOfs = make(map[string]*oneOfInfo)
	for _, name := range maputil.SortedKeys(s.families) {
		defs := s.families[name]
		first := defs[0]
		for _, other := range defs[1:] {
			if diffs := compareFamilies(name, first, other); len(diffs) > 0 {
				return &caterrors.CollisionError{
					Kind:        "oneof",
					Name:        name,
					Sources:     []string{first.source, other.source},
					Differences: diffs,
					Message:     "one-of family differs between endpoints",
				}
			}
		}

		info := &oneOfInfo{def: &OneOf{Name: name}}
		for _, alt := range first.alts {
			info.def.Alternatives = append(info.def.Alternatives, alt.occ.node.Ref)
			info.labels = append(info.labels, alt.label)
		}
		info.def.Sources = uniqueSorted(len(defs), func(i int) string { return defs[i].endpoint })
		s.oneOfs[name] = info
		s.cat.OneOfs[name] = info.def
	}
	return nil
}

func compareFamilies(name string, a, b *familyDef) []string {
	var diffs []string
	index := func(d *familyDef) map[string]*occurrence {
		m := make(map[string]*occurrence, len(d.alts))
		for _, alt := range d.alts {
			m[alt.label] = alt.occ
		}
		return m
	}
	left, right := index(a), index(b)
	for _, label := range maputil.SortedKeys(left) {
		r, ok := right[label]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("%s.%s: alternative missing from %s", name, label, b.source))
			continue
		}
		if l := left[label]; !bytes.Equal(l.canon, r.canon) {
			diffs = append(diffs, stringsOf(schema.Compare(name+"."+label, withoutRefs(l.node), withoutRefs(r.node)))...)
		}
	}
	for _, label := range maputil.SortedKeys(right) {
		if _, ok := left[label]; !ok {
			diffs = append(diffs, fmt.Sprintf("%s.%s: alternative missing from %s", name, label, a.source))
		}
	}
	return diffs
}

// withoutRefs returns a copy of n with resolved names cleared, so a
// comparison shows only source differences.
func withoutRefs(n *schema.Node) *schema.Node {
	c := n.Clone()
	var strip func(*schema.Node)
	strip = func(n *schema.Node) {
		if n == nil {
			return
		}
		n.Ref, n.OneOf = "", ""
		for _, p := range n.Properties {
			strip(p.Node)
		}
		strip(n.Items)
		strip(n.Additional)
	}
	strip(c)
	return c
}

// discriminated is one discriminated type variant with its value set.
type discriminated struct {
	v      *variant
	field  string
	values []string
}

// reconcileDiscriminators links every discriminated type to the one-of
// family its discriminator selects among.
//
// The family comes from the discriminator table when it names a family that
// exists. Otherwise the family whose normalized member names equal the
// normalized discriminator values is used. Unmatched discriminators are
// reported as warnings and left unattached.
func (s *state) reconcileDiscriminators() error {
	var found []discriminated
	for _, name := range maputil.SortedKeys(s.variants) {
		v := s.variants[name]
		n := v.first().node
		if n.Shape != schema.ShapeDiscriminated {
			continue
		}
		d := discriminated{v: v, field: n.Discriminator}
		if p, ok := n.Property(n.Discriminator); ok {
			d.values = p.Enum
		}
		found = append(found, d)
	}

	valueSets := make(map[string]discriminated)
	for _, d := range found {
		prev, ok := valueSets[d.field]
		if !ok {
			valueSets[d.field] = d
			continue
		}
		if !sameSet(prev.values, d.values) {
			return &caterrors.CollisionError{
				Kind:    "discriminator",
				Name:    d.field,
				Sources: []string{prev.v.final, d.v.final},
				Differences: stringsOf(schema.Compare(d.field,
					&schema.Node{Shape: schema.ShapeEnum, Enum: prev.values},
					&schema.Node{Shape: schema.ShapeEnum, Enum: d.values})),
				Message: "discriminator value sets differ",
			}
		}
	}

	for _, d := range found {
		info := s.familyFor(d)
		if info == nil {
			s.report.Warn(d.v.final, SeverityWarning, fmt.Sprintf("no one-of family matches discriminator %s", d.field))
			continue
		}
		fam := info.def
		if fam.Discriminator != "" && fam.Discriminator != d.field {
			s.report.Warn(d.v.final, SeverityWarning,
				fmt.Sprintf("one-of %s already selected by %s, not %s", fam.Name, fam.Discriminator, d.field))
			continue
		}
		fam.Discriminator = d.field
		if fam.Tags == nil {
			fam.Tags = make(map[string]string)
		}
		for _, value := range d.values {
			i := matchTag(value, info.labels)
			if i < 0 {
				s.report.Warn(fam.Name, SeverityInfo, fmt.Sprintf("discriminator value %s matches no alternative", value))
				continue
			}
			fam.Tags[value] = fam.Alternatives[i]
		}
		for _, occ := range d.v.occs {
			occ.node.OneOf = fam.Name
		}
		s.log.Debug("attached discriminator", "type", d.v.final, "field", d.field, "oneOf", fam.Name)
	}
	return nil
}

func (s *state) familyFor(d discriminated) *oneOfInfo {
	if name, ok := s.cfg.tables.Discriminator(d.field); ok {
		if info, ok := s.oneOfs[name]; ok {
			return info
		}
		s.report.Warn(d.v.final, SeverityWarning, fmt.Sprintf("discriminator %s maps to unknown one-of %s", d.field, name))
	}
	want := normalizedSet(d.values)
	for _, name := range maputil.SortedKeys(s.oneOfs) {
		info := s.oneOfs[name]
		if len(want) > 0 && sameSet(normalizedSet(info.labels), want) {
			return info
		}
	}
	return nil
}

// matchTag returns the index of the label a discriminator value selects:
// an exact normalized match, else the single label the value is a prefix of
// (CASH selects CashAccount).
func matchTag(value string, labels []string) int {
	key := naming.NormalizeKey(value)
	if key == "" {
		return -1
	}
	prefix := -1
	for i, label := range labels {
		l := naming.NormalizeKey(label)
		if l == key {
			return i
		}
		if strings.HasPrefix(l, key) {
			if prefix >= 0 {
				prefix = -2
			} else if prefix == -1 {
				prefix = i
			}
		}
	}
	if prefix < 0 {
		return -1
	}
	return prefix
}

func normalizedSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, naming.NormalizeKey(v))
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
