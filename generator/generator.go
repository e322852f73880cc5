package generator

import (
	"fmt"
	"strings"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/caterrors"
	"github.com/erraggy/apicatalog/internal/issues"
	"github.com/erraggy/apicatalog/internal/severity"
)

// Severity indicates the severity level of a generation issue
type Severity = severity.Severity

const (
	// SeverityInfo indicates informational messages about generation choices
	SeverityInfo = severity.Info
	// SeverityWarning indicates catalog elements that have no exact form in the target
	SeverityWarning = severity.Warning
)

// Issue represents a single generation issue or limitation
type Issue = issues.Issue

// Target selects the output language.
type Target string

const (
	// TargetProto emits a proto2 file
	TargetProto Target = "proto"
	// TargetGo emits Go source
	TargetGo Target = "go"
	// TargetOpenAPI emits an OpenAPI 3.0.3 document in JSON
	TargetOpenAPI Target = "openapi"
)

// Targets returns every supported target.
func Targets() []Target {
	return []Target{TargetProto, TargetGo, TargetOpenAPI}
}

// ParseTarget returns the target named by s.
func ParseTarget(s string) (Target, error) {
	for _, t := range Targets() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", &caterrors.ConfigError{Option: "target", Value: s, Message: "expected proto, go or openapi"}
}

// DefaultPackage is the package name used when Options.Package is empty.
const DefaultPackage = "apicatalog"

// Options configures one generation run.
type Options struct {
	// Target is the output language
	Target Target
	// Package is the proto or Go package name. Defaults to DefaultPackage.
	Package string
	// Title is the OpenAPI info title. Defaults to the package name.
	Title string
}

// GeneratedFile represents a single generated file
type GeneratedFile struct {
	// Name is the suggested file name (e.g., "apicatalog.proto")
	Name string
	// Content is the generated source
	Content []byte
}

// Result contains the generated file and the issues met on the way.
type Result struct {
	Target  Target
	Package string
	File    GeneratedFile
	// Issues lists catalog elements that were approximated or left out
	Issues       []Issue
	InfoCount    int
	WarningCount int
	// GeneratedTypes counts the messages, structs or schemas emitted
	GeneratedTypes int
}

// HasWarnings returns true if there are any warnings
func (r *Result) HasWarnings() bool {
	return r.WarningCount > 0
}

// Generate renders the catalog in the requested target language.
func Generate(cat *catalog.Catalog, opts Options) (*Result, error) {
	if cat == nil {
		return nil, &caterrors.ConfigError{Option: "catalog", Message: "catalog is nil"}
	}
	pkg := opts.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	if err := checkPackage(opts.Target, pkg); err != nil {
		return nil, err
	}

	e := &emitter{cat: cat, pkg: pkg, title: opts.Title, names: newNames(cat)}
	if e.title == "" {
		e.title = pkg
	}

	var (
		file *GeneratedFile
		err  error
	)
	switch opts.Target {
	case TargetProto:
		file, err = e.proto()
	case TargetGo:
		file, err = e.golang()
	case TargetOpenAPI:
		file, err = e.openAPI()
	default:
		_, err = ParseTarget(string(opts.Target))
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Target:         opts.Target,
		Package:        pkg,
		File:           *file,
		Issues:         e.issues,
		GeneratedTypes: e.count,
	}
	result.InfoCount, result.WarningCount, _ = issues.Count(e.issues)
	return result, nil
}

func checkPackage(t Target, pkg string) error {
	valid := true
	for _, part := range strings.Split(pkg, ".") {
		if part == "" || !isIdent(part) {
			valid = false
		}
	}
	if t == TargetGo && strings.Contains(pkg, ".") {
		valid = false
	}
	if !valid {
		return &caterrors.ConfigError{Option: "package", Value: pkg, Message: "not a valid package name"}
	}
	return nil
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}

// emitter carries the state shared by the three targets.
type emitter struct {
	cat    *catalog.Catalog
	pkg    string
	title  string
	names  *names
	issues []Issue
	count  int
}

func (e *emitter) warn(path, format string, args ...any) {
	e.issues = append(e.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

func (e *emitter) info(path, format string, args ...any) {
	e.issues = append(e.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityInfo})
}
