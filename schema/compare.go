package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/erraggy/apicatalog/internal/maputil"
)

// Difference describes one structural difference between two nodes.
type Difference struct {
	Path        string `json:"path" yaml:"path"`
	Left        any    `json:"left,omitempty" yaml:"left,omitempty"`
	Right       any    `json:"right,omitempty" yaml:"right,omitempty"`
	Description string `json:"description" yaml:"description"`
}

// String formats the difference as "path: description".
func (d Difference) String() string {
	return d.Path + ": " + d.Description
}

// Compare returns the structural differences between left and right,
// addressed by dotted path below root. Property order and enum value order
// are ignored, matching Equal.
func Compare(root string, left, right *Node) []Difference {
	var diffs []Difference
	compareNodes(root, left, right, &diffs)
	return diffs
}

func compareNodes(path string, left, right *Node, diffs *[]Difference) {
	if left == nil && right == nil {
		return
	}
	if left == nil || right == nil {
		*diffs = append(*diffs, Difference{Path: path, Description: "present on one side only"})
		return
	}
	if left.Shape != right.Shape {
		*diffs = append(*diffs, Difference{
			Path: path, Left: string(left.Shape), Right: string(right.Shape),
			Description: fmt.Sprintf("shape differs: %s vs %s", left.Shape, right.Shape),
		})
		return
	}

	scalar := func(field string, l, r any) {
		if !reflect.DeepEqual(l, r) {
			*diffs = append(*diffs, Difference{
				Path: path + "." + field, Left: l, Right: r,
				Description: fmt.Sprintf("%s differs: %v vs %v", field, l, r),
			})
		}
	}
	scalar("format", left.Format, right.Format)
	scalar("discriminator", left.Discriminator, right.Discriminator)
	scalar("ref", left.Ref, right.Ref)
	scalar("oneOf", left.OneOf, right.OneOf)
	scalar("default", boolValue(left.Default), boolValue(right.Default))
	scalar("xml", xmlValue(left.XML), xmlValue(right.XML))
	compareEnums(path, left.Enum, right.Enum, diffs)

	compareNodes(path+".items", left.Items, right.Items, diffs)
	compareNodes(path+".additionalProperties", left.Additional, right.Additional, diffs)

	names := make(map[string]struct{})
	for _, p := range left.Properties {
		names[p.Name] = struct{}{}
	}
	for _, p := range right.Properties {
		names[p.Name] = struct{}{}
	}
	for _, name := range maputil.SortedKeys(names) {
		l, inLeft := left.Property(name)
		r, inRight := right.Property(name)
		switch {
		case !inRight:
			*diffs = append(*diffs, Difference{Path: path + "." + name, Description: "removed"})
		case !inLeft:
			*diffs = append(*diffs, Difference{Path: path + "." + name, Description: "added"})
		default:
			compareNodes(path+"."+name, l, r, diffs)
		}
	}
}

// compareEnums reports enum values by multiplicity, matching canonical
// equality: a value repeated on one side only is a difference.
func compareEnums(path string, left, right []string, diffs *[]Difference) {
	counts := make(map[string]int, len(left)+len(right))
	for _, v := range left {
		counts[v]--
	}
	for _, v := range right {
		counts[v]++
	}
	var added, removed []string
	for _, v := range maputil.SortedKeys(counts) {
		for n := counts[v]; n > 0; n-- {
			added = append(added, v)
		}
		for n := counts[v]; n < 0; n++ {
			removed = append(removed, v)
		}
	}
	if len(added) == 0 && len(removed) == 0 {
		return
	}
	var parts []string
	if len(added) > 0 {
		parts = append(parts, "added "+strings.Join(added, ", "))
	}
	if len(removed) > 0 {
		parts = append(parts, "removed "+strings.Join(removed, ", "))
	}
	*diffs = append(*diffs, Difference{
		Path: path + ".enum", Left: left, Right: right,
		Description: "enum values " + strings.Join(parts, "; "),
	})
}

func boolValue(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func xmlValue(x *XML) any {
	if x == nil {
		return nil
	}
	return *x
}
