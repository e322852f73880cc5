package catalog

import (
	"github.com/erraggy/apicatalog/internal/severity"
	"github.com/erraggy/apicatalog/schema"
)

// Severity levels of report warnings.
type Severity = severity.Severity

const (
	SeverityInfo    = severity.Info
	SeverityWarning = severity.Warning
	SeverityError   = severity.Error
)

// Collision resolutions.
const (
	ResolutionOverride = "override"
	ResolutionSuffix   = "suffix"
	ResolutionMixed    = "override+suffix"
)

// Report is the structured side output of a build: every collision and how
// it was resolved, the irregularities repaired, the documents skipped and
// the shape census.
type Report struct {
	TotalCollisions    int `json:"totalCollisions" yaml:"totalCollisions"`
	ResolvedByOverride int `json:"resolvedByOverride" yaml:"resolvedByOverride"`
	ResolvedBySuffix   int `json:"resolvedBySuffix" yaml:"resolvedBySuffix"`

	Collisions []CollisionEvent        `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Enums      []CollisionEvent        `json:"enumCollisions,omitempty" yaml:"enumCollisions,omitempty"`
	Merges     []Merge                 `json:"merges,omitempty" yaml:"merges,omitempty"`
	Repairs    []schema.Repair         `json:"repairs,omitempty" yaml:"repairs,omitempty"`
	Warnings   []Warning               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Skipped    []string                `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Census     []schema.SignatureCount `json:"census,omitempty" yaml:"census,omitempty"`
}

// CollisionEvent records one name that had more than one distinct shape.
type CollisionEvent struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
	// Variants are listed in first-seen order
	Variants []Variant `json:"variants" yaml:"variants"`
	// Differences compares each later variant against the first
	Differences []schema.Difference `json:"differences,omitempty" yaml:"differences,omitempty"`
	Resolution  string              `json:"resolution" yaml:"resolution"`
}

// Variant is one distinct shape behind a colliding name.
type Variant struct {
	Final      string   `json:"final" yaml:"final"`
	Sources    []string `json:"sources" yaml:"sources"`
	Overridden bool     `json:"overridden,omitempty" yaml:"overridden,omitempty"`
}

// Merge records types folded together by WithMergeEquivalent.
type Merge struct {
	Into    string   `json:"into" yaml:"into"`
	Aliases []string `json:"aliases" yaml:"aliases"`
}

// Warning is a non-fatal finding.
type Warning struct {
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// AddCollision adds a type collision event and updates the counters.
func (r *Report) AddCollision(event CollisionEvent) {
	r.Collisions = append(r.Collisions, event)
	r.TotalCollisions++

	switch event.Resolution {
	case ResolutionOverride:
		r.ResolvedByOverride++
	case ResolutionSuffix:
		r.ResolvedBySuffix++
	case ResolutionMixed:
		r.ResolvedByOverride++
		r.ResolvedBySuffix++
	}
}

// Warn adds a warning.
func (r *Report) Warn(source string, sev Severity, message string) {
	r.Warnings = append(r.Warnings, Warning{Source: source, Message: message, Severity: sev})
}

// Collision returns the type collision event for name, if any.
func (r *Report) Collision(name string) (CollisionEvent, bool) {
	for _, e := range r.Collisions {
		if e.Name == name {
			return e, true
		}
	}
	return CollisionEvent{}, false
}

// GetByResolution returns collision events with a specific resolution.
func (r *Report) GetByResolution(resolution string) []CollisionEvent {
	var filtered []CollisionEvent
	for _, e := range r.Collisions {
		if e.Resolution == resolution {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// WarningsAtLeast returns the warnings at or above min.
func (r *Report) WarningsAtLeast(min Severity) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}
