package catalog

import (
	"sort"

	"github.com/erraggy/apicatalog/internal/maputil"
	"github.com/erraggy/apicatalog/schema"
)

// mergeEquivalent folds differently named types of identical flattened shape
// into the alphabetically first name. Merging repeats until no two types are
// equal, since renamed references can make parents equal in turn. One-of
// alternatives are never merged.
func (s *state) mergeEquivalent() {
	members := make(map[string]bool)
	for _, o := range s.cat.OneOfs {
		for _, alt := range o.Alternatives {
			members[alt] = true
		}
	}

	for {
		groups := make(map[string][]string)
		for _, name := range s.cat.TypeNames() {
			if members[name] {
				continue
			}
			key := string(s.cat.Types[name].Node.Canonical())
			groups[key] = append(groups[key], name)
		}
		renames := make(map[string]string)
		for _, key := range maputil.SortedKeys(groups) {
			names := groups[key]
			for _, alias := range names[1:] {
				renames[alias] = names[0]
			}
		}
		if len(renames) == 0 {
			break
		}
		s.applyRenames(renames)
	}

	for _, name := range s.cat.TypeNames() {
		t := s.cat.Types[name]
		if len(t.Aliases) == 0 {
			continue
		}
		sort.Strings(t.Aliases)
		s.report.Merges = append(s.report.Merges, Merge{Into: name, Aliases: append([]string(nil), t.Aliases...)})
		s.log.Info("merged equivalent types", "into", name, "aliases", len(t.Aliases))
	}
}

func (s *state) applyRenames(renames map[string]string) {
	for _, alias := range maputil.SortedKeys(renames) {
		into := s.cat.Types[renames[alias]]
		gone := s.cat.Types[alias]
		into.Aliases = append(into.Aliases, alias)
		into.Aliases = append(into.Aliases, gone.Aliases...)
		into.Sources = mergeSorted(into.Sources, gone.Sources)
		delete(s.cat.Types, alias)
	}

	for _, t := range s.cat.Types {
		renameRefs(t.Node, renames)
	}
	for _, o := range s.cat.OneOfs {
		for tag, alt := range o.Tags {
			if to, ok := renames[alt]; ok {
				o.Tags[tag] = to
			}
		}
	}
	for _, ep := range s.cat.Endpoints {
		for i := range ep.Request {
			if to, ok := renames[ep.Request[i].Type]; ok {
				ep.Request[i].Type = to
			}
		}
		for i := range ep.Response {
			if to, ok := renames[ep.Response[i].Type]; ok {
				ep.Response[i].Type = to
			}
		}
	}
}

func renameRefs(n *schema.Node, renames map[string]string) {
	if n == nil {
		return
	}
	if n.Shape.Composite() {
		if to, ok := renames[n.Ref]; ok {
			n.Ref = to
		}
	}
	for _, p := range n.Properties {
		renameRefs(p.Node, renames)
	}
	renameRefs(n.Items, renames)
	renameRefs(n.Additional, renames)
}

func mergeSorted(a, b []string) []string {
	all := append(append([]string(nil), a...), b...)
	return uniqueSorted(len(all), func(i int) string { return all[i] })
}
