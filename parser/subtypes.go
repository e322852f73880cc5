package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
)

var familyMarker = regexp.MustCompile(`^//The class <([A-Za-z]+)> has the following subclasses:`)

const (
	headerEnd = "listed below:"
	orMarker  = "//OR"
)

// Alternative is one named member of a one-of family.
type Alternative struct {
	Name   string
	Line   int
	Object *Object
}

// Family is a one-of family: the subclasses of one class.
type Family struct {
	// Name is the class named in the marker line
	Name string
	// Line is the 1-based line of the marker
	Line int
	// Segments is the number of OR-separated segments in the body
	Segments int
	// Alternatives holds the parsed members, in document order
	Alternatives []Alternative
}

// Lookup returns the alternative named name.
func (f *Family) Lookup(name string) (*Object, bool) {
	for _, alt := range f.Alternatives {
		if alt.Name == name {
			return alt.Object, true
		}
	}
	return nil, false
}

// Names returns the alternative names in document order.
func (f *Family) Names() []string {
	out := make([]string, 0, len(f.Alternatives))
	for _, alt := range f.Alternatives {
		out = append(out, alt.Name)
	}
	return out
}

type subtypeState int

const (
	expectMarker subtypeState = iota
	inHeader
	inBody
)

type pendingFamily struct {
	name      string
	line      int
	bodyStart int
	ors       int
	body      strings.Builder
}

// SplitSubtypes scans the text that follows the top-level groups for
// "The class <X> has the following subclasses" blocks.
//
// Each block header may span several comment lines and ends with a line
// ending in "listed below:". The block body holds the alternatives separated
// by //OR lines. The number of segments must equal the number of labeled
// alternatives, and every alternative must decode to a JSON object.
func SplitSubtypes(remainder string) ([]Family, error) {
	return splitSubtypes("", remainder, 0)
}

func splitSubtypes(source, remainder string, lineOffset int) ([]Family, error) {
	var (
		out   []Family
		state = expectMarker
		cur   *pendingFamily
		seen  = make(map[string]int)
	)

	for i, line := range strings.Split(remainder, "\n") {
		lineNo := lineOffset + i + 1
		trimmed := strings.TrimLeft(line, " \t")

		if m := familyMarker.FindStringSubmatch(trimmed); m != nil {
			if state == inHeader {
				return nil, unterminatedHeader(source, cur)
			}
			if cur != nil {
				fam, err := cur.finish(source)
				if err != nil {
					return nil, err
				}
				out = append(out, fam)
			}
			name := m[1]
			if first, dup := seen[name]; dup {
				return nil, &caterrors.GrammarError{
					Source:  source,
					Line:    lineNo,
					Rule:    "duplicate-family",
					Message: "family " + name + " already defined at line " + strconv.Itoa(first),
				}
			}
			seen[name] = lineNo
			cur = &pendingFamily{name: name, line: lineNo}
			state = inHeader
		}

		switch state {
		case expectMarker:
			if strings.TrimSpace(line) != "" {
				return nil, &caterrors.GrammarError{
					Source:  source,
					Line:    lineNo,
					Rule:    "leading-content",
					Message: "content before the first subclass marker",
				}
			}
		case inHeader:
			if strings.HasSuffix(strings.TrimRight(line, " \t\r"), headerEnd) {
				state = inBody
				cur.bodyStart = lineNo
			}
		case inBody:
			if strings.TrimSpace(line) == orMarker {
				cur.ors++
				cur.body.WriteByte('\n')
				continue
			}
			cur.body.WriteString(line)
			cur.body.WriteByte('\n')
		}
	}

	if state == inHeader {
		return nil, unterminatedHeader(source, cur)
	}
	if cur != nil {
		fam, err := cur.finish(source)
		if err != nil {
			return nil, err
		}
		out = append(out, fam)
	}
	return out, nil
}

func unterminatedHeader(source string, cur *pendingFamily) error {
	return &caterrors.GrammarError{
		Source:  source,
		Line:    cur.line,
		Rule:    "unterminated-header",
		Message: "subclass marker for " + cur.name + " never reaches \"" + headerEnd + "\"",
	}
}

func (p *pendingFamily) finish(source string) (Family, error) {
	sections, err := splitSections(source, p.body.String(), p.bodyStart)
	if err != nil {
		return Family{}, err
	}
	segments := p.ors + 1
	if segments != len(sections) {
		return Family{}, &caterrors.GrammarError{
			Source: source,
			Line:   p.line,
			Rule:   "or-count",
			Message: p.name + ": " + strconv.Itoa(segments) + " OR-separated segments but " +
				strconv.Itoa(len(sections)) + " named alternatives",
		}
	}

	fam := Family{Name: p.name, Line: p.line, Segments: segments}
	for _, sec := range sections {
		label := p.name + "." + sec.Label
		v, err := parseFragment(source, label, sec.Body)
		if err != nil {
			return Family{}, err
		}
		obj, ok := v.(*Object)
		if !ok {
			return Family{}, &caterrors.ParseError{
				Source:   source,
				Label:    label,
				Fragment: sec.Body,
				Message:  "subclass body must be a JSON object",
			}
		}
		fam.Alternatives = append(fam.Alternatives, Alternative{Name: sec.Label, Line: sec.Line, Object: obj})
	}
	return fam, nil
}
