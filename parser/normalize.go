package parser

import (
	"regexp"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
)

// DefaultErrorPage matches documents where the vendor served its error
// template instead of a schema.
var DefaultErrorPage = regexp.MustCompile(`\bWebServiceError\b`)

const classMarkerPrefix = "//The class"

// Group is one top-level message group. Object is nil when the body was
// undefined.
type Group struct {
	Name   string
	Line   int
	Object *Object
}

// Undefined reports whether the group body was the undefined token.
func (g Group) Undefined() bool { return g.Object == nil }

// Record is the normalized form of one raw document.
type Record struct {
	// Source identifies the document, e.g. "GetQuote/response"
	Source string
	// Top holds the top-level groups in document order
	Top []Group
	// Sub holds the one-of families in document order
	Sub []Family
	// Skipped is set when the document was recognized as an error page
	Skipped bool
}

// Group returns the top-level group named name.
func (r *Record) Group(name string) (Group, bool) {
	for _, g := range r.Top {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Family returns the one-of family named name.
func (r *Record) Family(name string) (*Family, bool) {
	for i := range r.Sub {
		if r.Sub[i].Name == name {
			return &r.Sub[i], true
		}
	}
	return nil, false
}

// Empty reports whether the record contributes nothing.
func (r *Record) Empty() bool {
	return len(r.Top) == 0 && len(r.Sub) == 0
}

// Normalizer turns raw documents into records.
// The zero value is ready to use.
type Normalizer struct {
	// Logger receives debug and info events. Nil discards them.
	Logger Logger
	// ErrorPage overrides DefaultErrorPage.
	ErrorPage *regexp.Regexp
}

// NormalizeDocument normalizes contents with a zero Normalizer.
// label names the document's group when the body is a bare object; it is
// normally the endpoint's directory name.
func NormalizeDocument(label, contents string) (*Record, error) {
	var n Normalizer
	return n.Normalize(label, label, contents)
}

// Normalize classifies one raw document and splits it into top-level groups and
// one-of families.
//
// source identifies the document in errors and logs. A bare object is labeled
// with label. Bracketed content is used as-is, and bare labeled content is
// treated as if it were bracketed. The top list ends at the first subclass
// marker; everything from there on is handed to SplitSubtypes.
func (n *Normalizer) Normalize(source, label, contents string) (*Record, error) {
	log := LoggerOrNop(n.Logger).With("source", source)
	rec := &Record{Source: source}

	errorPage := n.ErrorPage
	if errorPage == nil {
		errorPage = DefaultErrorPage
	}
	if errorPage.MatchString(contents) {
		log.Info("skipping error page")
		rec.Skipped = true
		return rec, nil
	}

	text := strings.TrimLeft(contents, " \t\r\n")
	if text == "" {
		log.Debug("empty document")
		return rec, nil
	}
	if strings.HasPrefix(text, "{") {
		text = commentMarker + label + ":\n" + text
	}

	head, remainder, remainderLine := splitAtClassMarker(text)
	inner, err := unwrapList(source, head)
	if err != nil {
		return nil, err
	}

	sections, err := splitSections(source, inner, 0)
	if err != nil {
		return nil, err
	}
	for _, sec := range sections {
		v, err := parseFragment(source, sec.Label, sec.Body)
		if err != nil {
			return nil, err
		}
		g := Group{Name: sec.Label, Line: sec.Line}
		switch val := v.(type) {
		case *Object:
			g.Object = val
		default:
			if !IsUndefined(v) {
				return nil, &caterrors.ParseError{
					Source:   source,
					Label:    sec.Label,
					Fragment: sec.Body,
					Message:  "top-level group must be an object or undefined",
				}
			}
		}
		log.Debug("parsed group", "group", g.Name, "undefined", g.Undefined())
		rec.Top = append(rec.Top, g)
	}

	if strings.TrimSpace(remainder) != "" {
		fams, err := splitSubtypes(source, remainder, remainderLine)
		if err != nil {
			return nil, err
		}
		for _, f := range fams {
			log.Debug("parsed family", "family", f.Name, "alternatives", len(f.Alternatives))
		}
		rec.Sub = fams
	}
	return rec, nil
}

// splitAtClassMarker cuts text before the first line that opens a subclass
// block. It returns the number of lines preceding the remainder.
func splitAtClassMarker(text string) (head, remainder string, line int) {
	offset := 0
	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		var cur string
		if end < 0 {
			cur = text[offset:]
		} else {
			cur = text[offset : offset+end]
		}
		if strings.HasPrefix(strings.TrimLeft(cur, " \t"), classMarkerPrefix) {
			return text[:offset], text[offset:], line
		}
		if end < 0 {
			break
		}
		offset += end + 1
		line++
	}
	return text, "", 0
}

// unwrapList strips the brackets around a top-level list.
func unwrapList(source, head string) (string, error) {
	trimmed := strings.TrimSpace(head)
	if !strings.HasPrefix(trimmed, "[") {
		return head, nil
	}
	if !strings.HasSuffix(trimmed, "]") {
		return "", &caterrors.GrammarError{
			Source:  source,
			Rule:    "unterminated-list",
			Message: "top-level list is not closed before the subclass blocks",
		}
	}
	return trimmed[1 : len(trimmed)-1], nil
}
