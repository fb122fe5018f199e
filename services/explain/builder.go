// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// Builder constructs justification trees from violations and the two
// read-only graphs.
//
// Both graphs are shared across pipeline workers; the builder holds no
// mutable state, so a single instance is safe for concurrent use.
type Builder struct {
	data   *rdf.Graph
	shapes *rdf.Graph
}

// NewBuilder creates a tree builder over the validated data graph and the
// shapes graph it was validated against.
func NewBuilder(data, shapes *rdf.Graph) *Builder {
	return &Builder{data: data, shapes: shapes}
}

// Build constructs a justification tree for a violation.
//
// Build never fails: branches that cannot find a required precondition
// (such as a missing property path) attach a single Error-kind child and
// return a degenerate tree. The root is always a Conclusion node.
func (b *Builder) Build(v validation.ConstraintViolation) *JustificationTree {
	root := NewNode(KindConclusion, fmt.Sprintf(
		"Node %s fails to conform to shape %s",
		rdf.FormatIRI(v.FocusNode), rdf.FormatIRI(v.ShapeID),
	))

	switch v.ViolationType {
	case validation.TypeCardinality:
		b.buildCardinality(v, root)
	case validation.TypeValueType:
		b.buildValueType(v, root)
	case validation.TypeValueRange:
		b.buildValueRange(v, root)
	case validation.TypePattern:
		b.buildPattern(v, root)
	case validation.TypePropertyPair:
		b.buildPropertyPair(v, root)
	case validation.TypeLogical:
		b.buildLogical(v, root)
	case validation.TypeOther:
		b.buildGeneric(v, root)
	default:
		b.buildGeneric(v, root)
	}

	return &JustificationTree{Root: root, Violation: v}
}

// buildGeneric handles TypeOther and anything unclassifiable: one Unknown
// child carrying the validator's message verbatim.
func (b *Builder) buildGeneric(v validation.ConstraintViolation, root *JustificationNode) {
	message := v.MessageText()
	if message == "" {
		message = "Unknown violation"
	}
	root.AddChild(NewNode(KindUnknown,
		"Generic justification for violation: "+message,
	))
}

// parameterPredicates maps constraint component IRI name fragments to the
// shape predicate carrying the configured constraint value.
var parameterPredicates = []struct {
	component string
	predicate string
}{
	{"MinCountConstraintComponent", rdf.SHMinCount},
	{"MaxCountConstraintComponent", rdf.SHMaxCount},
	{"DatatypeConstraintComponent", rdf.SHDatatype},
	{"ClassConstraintComponent", rdf.SHClass},
	{"NodeKindConstraintComponent", rdf.SHNodeKind},
	{"MinExclusiveConstraintComponent", rdf.SHMinExclusive},
	{"MinInclusiveConstraintComponent", rdf.SHMinInclusive},
	{"MaxExclusiveConstraintComponent", rdf.SHMaxExclusive},
	{"MaxInclusiveConstraintComponent", rdf.SHMaxInclusive},
	{"PatternConstraintComponent", rdf.SHPattern},
	{"EqualsConstraintComponent", rdf.SHEquals},
	{"DisjointConstraintComponent", rdf.SHDisjoint},
	{"LessThanOrEqualsConstraintComponent", rdf.SHLessThanOrEquals},
	{"LessThanConstraintComponent", rdf.SHLessThan},
	{"NotConstraintComponent", rdf.SHNot},
	{"AndConstraintComponent", rdf.SHAnd},
	{"OrConstraintComponent", rdf.SHOr},
	{"XoneConstraintComponent", rdf.SHXone},
}

// parameterPredicate resolves the shape predicate for a constraint
// component IRI. LessThanOrEquals is listed before LessThan so the longer
// fragment wins.
func parameterPredicate(constraintID string) (string, bool) {
	for _, entry := range parameterPredicates {
		if strings.Contains(constraintID, entry.component) {
			return entry.predicate, true
		}
	}
	return "", false
}

// constraintValue reads the configured value for a violation's constraint
// from the shapes graph. When a shape carries several values for the same
// predicate, the one whose text sorts first is taken; this is the
// documented deterministic-first-match contract.
func (b *Builder) constraintValue(v validation.ConstraintViolation) (string, bool) {
	pred, ok := parameterPredicate(v.ConstraintID)
	if !ok {
		return "", false
	}
	obj, ok := b.shapes.FirstObject(v.ShapeID, pred)
	if !ok {
		return "", false
	}
	return obj.String(), true
}

// addPremise attaches the shape-requirement Premise node, citing the
// shape id as evidence.
func (b *Builder) addPremise(v validation.ConstraintViolation, root *JustificationNode) {
	var statement string
	if value, ok := b.constraintValue(v); ok {
		statement = fmt.Sprintf("The shape %s has a constraint %s with value %s.",
			rdf.FormatIRI(v.ShapeID), rdf.FormatIRI(v.ConstraintID), value)
	} else {
		statement = fmt.Sprintf("The shape %s has a constraint %s.",
			rdf.FormatIRI(v.ShapeID), rdf.FormatIRI(v.ConstraintID))
	}
	root.AddChild(NewNode(KindPremise, statement).
		WithEvidence("From shape definition: " + v.ShapeID))
}

// dataEvidence renders the matching data-graph facts for a focus node and
// property in N-Triples form, one fact per line.
func (b *Builder) dataEvidence(focusNode, propertyPath string) string {
	return rdf.FormatFacts(b.data.Triples(focusNode, propertyPath, rdf.Any))
}

// typeEvidence renders the declared rdf:type facts of a focus node.
func (b *Builder) typeEvidence(focusNode string) string {
	return rdf.FormatFacts(b.data.Triples(focusNode, rdf.RDFType, rdf.Any))
}

// pairedValues returns the sorted object texts of (focusNode, property, *)
// in the data graph.
func (b *Builder) pairedValues(focusNode, property string) []string {
	objs := b.data.Objects(focusNode, property)
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.String())
	}
	return out
}

// missingPathError attaches the degenerate Error child used when a branch
// requires a property path the violation does not carry.
func missingPathError(root *JustificationNode, constraintKind string) {
	root.AddChild(NewNode(KindError,
		"Missing property path information for "+constraintKind+" constraint",
	))
}
