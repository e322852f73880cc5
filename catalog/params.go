package catalog

import (
	"fmt"
	"regexp"

	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/schema"
)

var urlParamPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// URLParamNames returns the {name} placeholders of a link template in order,
// without duplicates.
func URLParamNames(link string) []string {
	var names []string
	for _, m := range urlParamPattern.FindAllStringSubmatch(link, -1) {
		if !containsString(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// addParams types the URL and query parameters of an endpoint from the
// tables. Enum-typed parameters take part in enum deduplication.
func (s *state) addParams(ep *Endpoint, src *Source) error {
	for _, name := range URLParamNames(src.Link) {
		p := Param{Name: name, Required: true}
		if ts, ok := s.cfg.tables.URLParamType(name); ok {
			p.Type = ts.Node()
			s.registerParamEnums(ep.Name, name, p.Type)
		} else {
			s.report.Warn(ep.Name, SeverityWarning, fmt.Sprintf("no type for URL parameter %s", name))
		}
		ep.URLParams = append(ep.URLParams, p)
	}

	seen := make(map[string]struct{}, len(src.QueryParams))
	for _, qp := range src.QueryParams {
		if _, dup := seen[qp.Name]; dup {
			return &caterrors.ConfigError{Option: ep.Name + ".query_params", Value: qp.Name, Message: "duplicate query parameter"}
		}
		seen[qp.Name] = struct{}{}
		p := Param{Name: qp.Name, Description: qp.Description, Required: qp.Required}
		if ts, ok := s.cfg.tables.QueryParamType(qp.Name, qp.Description); ok {
			p.Type = ts.Node()
			s.registerParamEnums(ep.Name, qp.Name, p.Type)
		} else {
			s.report.Warn(ep.Name, SeverityWarning, fmt.Sprintf("no type for query parameter %s", qp.Name))
		}
		ep.QueryParams = append(ep.QueryParams, p)
	}
	return nil
}

func (s *state) registerParamEnums(endpoint, name string, n *schema.Node) {
	path := endpoint + "?" + name
	for n != nil {
		switch n.Shape {
		case schema.ShapeEnum:
			s.addEnum(name, endpoint, path, n)
			return
		case schema.ShapeArray:
			n, path = n.Items, path+"[]"
		default:
			return
		}
	}
}
