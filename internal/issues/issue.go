// Package issues provides the issue type shared by the emitters and the CLI.
package issues

import (
	"fmt"

	"github.com/erraggy/apicatalog/internal/severity"
)

// Issue represents a single problem found while emitting a catalog.
type Issue struct {
	// Path names the catalog element, e.g. "Order.orderLegCollection"
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity severity.Severity
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.Error:
		symbol = "✗"
	case severity.Warning:
		symbol = "⚠"
	case severity.Info:
		symbol = "ℹ"
	default:
		symbol = "?"
	}
	return fmt.Sprintf("%s %s: %s", symbol, i.Path, i.Message)
}

// Count returns the number of issues at each severity.
func Count(list []Issue) (info, warnings, errors int) {
	for _, i := range list {
		switch i.Severity {
		case severity.Error:
			errors++
		case severity.Warning:
			warnings++
		default:
			info++
		}
	}
	return info, warnings, errors
}
