// Package caterrors provides structured error types for apicatalog.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between the categories of
// failure a catalog build can hit and to identify the offending document.
//
// # Error Categories
//
//   - ParseError: a JSON fragment that could not be decoded
//   - GrammarError: labeled-comment text that diverges from the expected grammar
//   - ShapeError: a type node whose attributes do not match any known shape
//   - CollisionError: definitions sharing a name that cannot be reconciled
//   - ConfigError: invalid tables, options or inputs
//
// # Usage with errors.As
//
//	cat, _, err := b.Build()
//	if err != nil {
//	    var collErr *caterrors.CollisionError
//	    if errors.As(err, &collErr) {
//	        fmt.Println("add an override for", collErr.Name)
//	    }
//	}
package caterrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a JSON fragment failed to decode.
	ErrParse = errors.New("parse error")

	// ErrGrammar indicates the comment-marker grammar was violated.
	ErrGrammar = errors.New("grammar error")

	// ErrShape indicates a type node with an unknown or inconsistent shape.
	ErrShape = errors.New("shape error")

	// ErrCollision indicates an unresolvable name collision.
	ErrCollision = errors.New("collision error")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// maxFragment bounds how much of an offending fragment is echoed in messages.
const maxFragment = 240

// ParseError represents a JSON fragment that could not be decoded.
type ParseError struct {
	// Source identifies the document (endpoint and direction)
	Source string
	// Label is the group label the fragment was found under, if any
	Label string
	// Fragment is the offending text
	Fragment string
	// Message describes the failure
	Message string
	// Cause is the underlying decode error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Label != "" {
		msg += " (" + e.Label + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Fragment != "" {
		msg += fmt.Sprintf(" in fragment %q", truncate(e.Fragment))
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// GrammarError represents text that does not follow the labeled-comment grammar.
type GrammarError struct {
	// Source identifies the document
	Source string
	// Line is the 1-based line number within the scanned text (0 if unknown)
	Line int
	// Rule names the violated rule, e.g. "leading-content" or "or-count"
	Rule string
	// Message describes the violation
	Message string
}

// Error returns a human-readable error message.
func (e *GrammarError) Error() string {
	msg := "grammar error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Rule != "" {
		msg += " [" + e.Rule + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *GrammarError) Is(target error) bool {
	return target == ErrGrammar
}

// ShapeError represents a type node that matches none of the known shapes.
type ShapeError struct {
	// Source identifies the document
	Source string
	// Path is the dotted path to the node, e.g. "Order.orderLegCollection.items"
	Path string
	// Shape is the shape the node was classified as, if classification succeeded
	Shape string
	// Unexpected lists attributes that are not legal for Shape
	Unexpected []string
	// Message describes the failure
	Message string
}

// Error returns a human-readable error message.
func (e *ShapeError) Error() string {
	msg := "shape error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Shape != "" {
		msg += " (" + e.Shape + ")"
	}
	if len(e.Unexpected) > 0 {
		msg += ": unexpected attributes " + strings.Join(e.Unexpected, ", ")
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// CollisionError represents definitions sharing a name that could not be reconciled.
type CollisionError struct {
	// Kind is "type", "oneof", "enum" or "discriminator"
	Kind string
	// Name is the colliding name
	Name string
	// Sources lists the endpoints involved, in first-seen order
	Sources []string
	// Differences describes what differs, one entry per structural difference
	Differences []string
	// Message describes why the collision is fatal
	Message string
}

// Error returns a human-readable error message.
func (e *CollisionError) Error() string {
	msg := "collision error"
	if e.Kind != "" {
		msg += " for " + e.Kind
	}
	if e.Name != "" {
		msg += " " + e.Name
	}
	if len(e.Sources) > 0 {
		msg += " (" + strings.Join(e.Sources, ", ") + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Differences) > 0 {
		msg += ": " + strings.Join(e.Differences, "; ")
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func truncate(s string) string {
	if len(s) <= maxFragment {
		return s
	}
	return s[:maxFragment] + "..."
}
