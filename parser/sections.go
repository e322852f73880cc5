package parser

import (
	"strconv"
	"strings"

	"github.com/erraggy/apicatalog/caterrors"
)

// Section is one labeled span of text.
type Section struct {
	// Label is the text between the comment marker and the last colon
	Label string
	// Body is the trimmed text up to the next label line
	Body string
	// Line is the 1-based line of the label within the scanned text
	Line int
}

// Sections is an ordered list of labeled spans, in document order.
type Sections []Section

// Lookup returns the body stored under label.
func (s Sections) Lookup(label string) (string, bool) {
	for _, sec := range s {
		if sec.Label == label {
			return sec.Body, true
		}
	}
	return "", false
}

// Labels returns the labels in document order.
func (s Sections) Labels() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	for i, sec := range s {
		out[i] = sec.Label
	}
	return out
}

// Map returns the sections as a label to body map.
func (s Sections) Map() map[string]string {
	out := make(map[string]string, len(s))
	for _, sec := range s {
		out[sec.Label] = sec.Body
	}
	return out
}

const commentMarker = "//"

// labelOf reports whether line is a label line and returns its label and the
// text following the label's colon.
func labelOf(line string) (label, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, commentMarker) {
		return "", "", false
	}
	body := trimmed[len(commentMarker):]
	idx := strings.LastIndexByte(body, ':')
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(body[:idx]), body[idx+1:], true
}

type sectionState int

const (
	expectLabel sectionState = iota
	inSection
)

// SplitSections cuts text into labeled sections.
//
// A label line starts (after optional blanks) with "//" and contains a colon;
// the label runs up to the last colon on the line. Everything up to the next
// label line belongs to the section. Empty text yields no sections. Content
// before the first label, an empty label and a repeated label are grammar
// errors.
func SplitSections(text string) (Sections, error) {
	return splitSections("", text, 0)
}

func splitSections(source, text string, lineOffset int) (Sections, error) {
	var (
		out   Sections
		state = expectLabel
		body  strings.Builder
		seen  = make(map[string]int)
	)
	flush := func() {
		if state != inSection {
			return
		}
		out[len(out)-1].Body = strings.TrimSpace(body.String())
		body.Reset()
	}

	for i, line := range strings.Split(text, "\n") {
		lineNo := lineOffset + i + 1
		label, rest, ok := labelOf(line)
		if !ok {
			switch state {
			case expectLabel:
				if strings.TrimSpace(line) != "" {
					return nil, &caterrors.GrammarError{
						Source:  source,
						Line:    lineNo,
						Rule:    "leading-content",
						Message: "content before the first label",
					}
				}
			case inSection:
				body.WriteString(line)
				body.WriteByte('\n')
			}
			continue
		}

		if label == "" {
			return nil, &caterrors.GrammarError{Source: source, Line: lineNo, Rule: "empty-label", Message: "label line without a name"}
		}
		if first, dup := seen[label]; dup {
			return nil, &caterrors.GrammarError{
				Source:  source,
				Line:    lineNo,
				Rule:    "duplicate-label",
				Message: "label " + label + " already defined at line " + strconv.Itoa(first),
			}
		}
		seen[label] = lineNo

		flush()
		out = append(out, Section{Label: label, Line: lineNo})
		state = inSection
		if strings.TrimSpace(rest) != "" {
			body.WriteString(rest)
			body.WriteByte('\n')
		}
	}
	flush()
	return out, nil
}
