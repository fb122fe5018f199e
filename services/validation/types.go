// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation models SHACL constraint violations and extracts them
// from validation report graphs.
//
// The validation engine itself is external: it runs the shapes against the
// data and produces a standard SHACL report graph. This package turns each
// sh:ValidationResult in that report into a ConstraintViolation carrying
// everything the explanation pipeline needs (focus node, source shape,
// constraint component, path, value, message, severity, and constraint
// parameters read back from the shapes graph).
package validation

import (
	"sort"
	"strings"
)

// ViolationType categorizes a SHACL constraint violation.
//
// The taxonomy is closed: the justification tree builder switches
// exhaustively over these values and routes anything it does not
// recognize through TypeOther.
type ViolationType int

const (
	// TypeCardinality covers sh:minCount and sh:maxCount.
	TypeCardinality ViolationType = iota

	// TypeValueType covers sh:datatype, sh:class and sh:nodeKind.
	TypeValueType

	// TypeValueRange covers sh:minExclusive, sh:minInclusive,
	// sh:maxExclusive and sh:maxInclusive.
	TypeValueRange

	// TypePattern covers sh:pattern (and sh:flags).
	TypePattern

	// TypePropertyPair covers sh:equals, sh:disjoint, sh:lessThan and
	// sh:lessThanOrEquals.
	TypePropertyPair

	// TypeLogical covers sh:not, sh:and, sh:or and sh:xone.
	TypeLogical

	// TypeOther covers every constraint component not in the taxonomy.
	TypeOther
)

// String returns the canonical lowercase name of the violation type.
func (t ViolationType) String() string {
	switch t {
	case TypeCardinality:
		return "cardinality"
	case TypeValueType:
		return "value_type"
	case TypeValueRange:
		return "value_range"
	case TypePattern:
		return "pattern"
	case TypePropertyPair:
		return "property_pair"
	case TypeLogical:
		return "logical"
	case TypeOther:
		return "other"
	default:
		return "other"
	}
}

// ConstraintViolation describes one detected constraint failure.
//
// A violation is created once by the extractor and treated as immutable
// thereafter; the pipeline owns it for the duration of a run.
//
// Optional fields use pointers so that "absent" and "present but empty"
// stay distinguishable all the way into the signature canonicalizer: a
// nil PropertyPath means the validation result carried no sh:resultPath,
// while an empty string would be a present, empty value.
type ConstraintViolation struct {
	// FocusNode is the IRI (or blank node label) of the offending entity.
	FocusNode string `json:"focus_node"`

	// ShapeID is the IRI of the shape the node was validated against.
	ShapeID string `json:"shape_id"`

	// ConstraintID is the IRI of the constraint component that failed,
	// e.g. sh:MinCountConstraintComponent.
	ConstraintID string `json:"constraint_id"`

	// ViolationType is the taxonomy category of the failure.
	ViolationType ViolationType `json:"violation_type"`

	// PropertyPath is the result path, when the result has one.
	PropertyPath *string `json:"property_path,omitempty"`

	// Value is the offending value, when the result reports one.
	Value *string `json:"value,omitempty"`

	// Message is the validator's own human-readable message, if any.
	Message *string `json:"message,omitempty"`

	// Severity is the result severity fragment. Defaults to "Violation".
	Severity string `json:"severity"`

	// Context holds constraint parameters read back from the shapes graph
	// (e.g. minCount, actualCount). Rendered in sorted key order wherever
	// it is serialized.
	Context map[string]string `json:"context,omitempty"`
}

// Path returns the property path or the empty string when absent.
func (v *ConstraintViolation) Path() string {
	if v.PropertyPath == nil {
		return ""
	}
	return *v.PropertyPath
}

// HasPath reports whether the violation carries a property path.
func (v *ConstraintViolation) HasPath() bool {
	return v.PropertyPath != nil
}

// ValueText returns the offending value or the empty string when absent.
func (v *ConstraintViolation) ValueText() string {
	if v.Value == nil {
		return ""
	}
	return *v.Value
}

// MessageText returns the validator message or the empty string.
func (v *ConstraintViolation) MessageText() string {
	if v.Message == nil {
		return ""
	}
	return *v.Message
}

// ContextKeys returns the context keys in sorted order.
func (v *ConstraintViolation) ContextKeys() []string {
	keys := make([]string, 0, len(v.Context))
	for k := range v.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContextSummary renders the context as "k=v" pairs in sorted key order.
func (v *ConstraintViolation) ContextSummary() string {
	parts := make([]string, 0, len(v.Context))
	for _, k := range v.ContextKeys() {
		parts = append(parts, k+"="+v.Context[k])
	}
	return strings.Join(parts, ", ")
}

// StringPtr returns a pointer to s. Convenience for building violations
// in tests and adapters.
func StringPtr(s string) *string {
	return &s
}
