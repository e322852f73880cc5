// Package severity provides the severity levels attached to build report
// entries.
//
// The levels are ordered from least to most severe:
// Info < Warning < Error
package severity

import "fmt"

// Severity indicates how much attention a report entry needs.
type Severity int

const (
	// Info marks notices about choices the build made, such as a skipped
	// error page or a repaired irregularity.
	Info Severity = iota

	// Warning marks something that was handled but probably deserves a table
	// entry, such as a discriminator without a matching family.
	Warning

	// Error marks a problem that failed the build.
	Error
)

// String returns the lowercase name of the level.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a level name.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Parse returns the level with the given name.
func Parse(name string) (Severity, error) {
	switch name {
	case "info":
		return Info, nil
	case "warning":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return 0, fmt.Errorf("severity: unknown level %q", name)
}
