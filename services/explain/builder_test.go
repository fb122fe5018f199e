// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

const (
	shapeIRI = "http://example.org/PersonShape"
	focusIRI = "http://example.org/alice"
	nameProp = "http://example.org/hasName"
	ageProp  = "http://example.org/hasAge"
	shaclNS  = "http://www.w3.org/ns/shacl#"
)

func violation(component string, vType validation.ViolationType) validation.ConstraintViolation {
	return validation.ConstraintViolation{
		FocusNode:     focusIRI,
		ShapeID:       shapeIRI,
		ConstraintID:  shaclNS + component,
		ViolationType: vType,
		PropertyPath:  validation.StringPtr(nameProp),
		Severity:      "Violation",
		Context:       map[string]string{},
	}
}

// TestBuildMinCountScenario covers the minCount=2, one-value scenario:
// the observation cites the actual count and the inference compares it
// against the configured minimum with a "<" relation.
func TestBuildMinCountScenario(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, nameProp, rdf.MustLiteral("Alice")))

	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHMinCount, rdf.MustLiteral("2")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	tree := NewBuilder(data, shapes).Build(v)

	require.Equal(t, KindConclusion, tree.Root.Kind)

	observations := tree.Root.ChildrenOfKind(KindObservation)
	require.Len(t, observations, 1)
	assert.Contains(t, observations[0].Statement, "1")
	assert.Contains(t, observations[0].Evidence, `"Alice"`)
	assert.True(t, strings.HasSuffix(observations[0].Evidence, " ."))

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "1")
	assert.Contains(t, inferences[0].Statement, "2")
	assert.Contains(t, inferences[0].Statement, "<")
}

// TestBuildMaxCount verifies the "X > at most Y" direction.
func TestBuildMaxCount(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, nameProp, rdf.MustLiteral("Alice")))
	data.Add(rdf.Triple(focusIRI, nameProp, rdf.MustLiteral("Ally")))
	data.Add(rdf.Triple(focusIRI, nameProp, rdf.MustLiteral("Al")))

	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHMaxCount, rdf.MustLiteral("1")))

	v := violation("MaxCountConstraintComponent", validation.TypeCardinality)
	tree := NewBuilder(data, shapes).Build(v)

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "3 > at most 1")
}

// TestBuildCardinalityPrefersReportedCount verifies the context count
// wins over recounting the data graph.
func TestBuildCardinalityPrefersReportedCount(t *testing.T) {
	data := rdf.NewGraph() // empty on purpose
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHMinCount, rdf.MustLiteral("2")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	v.Context["actualCount"] = "1"
	tree := NewBuilder(data, shapes).Build(v)

	observations := tree.Root.ChildrenOfKind(KindObservation)
	require.Len(t, observations, 1)
	assert.Contains(t, observations[0].Statement, "has 1 values")
}

// TestBuildCardinalityMissingPath verifies the degenerate Error branch.
func TestBuildCardinalityMissingPath(t *testing.T) {
	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	v.PropertyPath = nil
	tree := NewBuilder(rdf.NewGraph(), rdf.NewGraph()).Build(v)

	require.Len(t, tree.Root.Children, 1)
	assert.Equal(t, KindError, tree.Root.Children[0].Kind)
	assert.Contains(t, tree.Root.Children[0].Statement, "property path")
}

// TestBuildOtherScenario: violation type Other with a message yields one
// Unknown child carrying the message verbatim.
func TestBuildOtherScenario(t *testing.T) {
	v := violation("ClosedConstraintComponent", validation.TypeOther)
	v.Message = validation.StringPtr("custom failure")
	tree := NewBuilder(rdf.NewGraph(), rdf.NewGraph()).Build(v)

	require.Len(t, tree.Root.Children, 1)
	child := tree.Root.Children[0]
	assert.Equal(t, KindUnknown, child.Kind)
	assert.Contains(t, child.Statement, "custom failure")
}

func TestBuildOtherWithoutMessage(t *testing.T) {
	v := violation("ClosedConstraintComponent", validation.TypeOther)
	tree := NewBuilder(rdf.NewGraph(), rdf.NewGraph()).Build(v)

	require.Len(t, tree.Root.Children, 1)
	assert.Contains(t, tree.Root.Children[0].Statement, "Unknown violation")
}

// TestBuildPatternScenario: pattern and flags appear in separate
// Inference nodes, each citing the configured text literally.
func TestBuildPatternScenario(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHPattern, rdf.MustLiteral("^[A-Z]+$")))
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHFlags, rdf.MustLiteral("i")))

	v := violation("PatternConstraintComponent", validation.TypePattern)
	v.Value = validation.StringPtr("abc123")
	tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 2)
	assert.Contains(t, inferences[0].Statement, "^[A-Z]+$")
	assert.NotContains(t, inferences[0].Statement, "flags")
	assert.Contains(t, inferences[1].Statement, "i")
	assert.Contains(t, inferences[1].Statement, "flags")
}

// TestBuildValueRangeWording verifies the four sub-cases produce distinct
// inference wording.
func TestBuildValueRangeWording(t *testing.T) {
	cases := []struct {
		component string
		predicate string
		want      string
	}{
		{"MinExclusiveConstraintComponent", rdf.SHMinExclusive, "strictly greater than"},
		{"MinInclusiveConstraintComponent", rdf.SHMinInclusive, "greater than or equal to"},
		{"MaxExclusiveConstraintComponent", rdf.SHMaxExclusive, "strictly less than"},
		{"MaxInclusiveConstraintComponent", rdf.SHMaxInclusive, "less than or equal to"},
	}

	for _, tc := range cases {
		t.Run(tc.component, func(t *testing.T) {
			shapes := rdf.NewGraph()
			shapes.Add(rdf.Triple(shapeIRI, tc.predicate, rdf.MustLiteral("18")))

			v := violation(tc.component, validation.TypeValueRange)
			v.PropertyPath = validation.StringPtr(ageProp)
			v.Value = validation.StringPtr("12")
			tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

			inferences := tree.Root.ChildrenOfKind(KindInference)
			require.Len(t, inferences, 1)
			assert.Contains(t, inferences[0].Statement, "12")
			assert.Contains(t, inferences[0].Statement, "18")
			assert.Contains(t, inferences[0].Statement, tc.want)
		})
	}
}

// TestBuildValueTypeClassWithoutValue verifies the node-level class
// membership wording and rdf:type evidence.
func TestBuildValueTypeClassWithoutValue(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, rdf.RDFType, rdf.MustIRI("http://example.org/Robot")))

	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHClass, rdf.MustIRI("http://example.org/Person")))

	v := violation("ClassConstraintComponent", validation.TypeValueType)
	v.Value = nil
	tree := NewBuilder(data, shapes).Build(v)

	observations := tree.Root.ChildrenOfKind(KindObservation)
	require.Len(t, observations, 1)
	assert.Contains(t, observations[0].Statement, "is not an instance of the required class")
	assert.Contains(t, observations[0].Evidence, "Robot")

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "http://example.org/Person")
}

func TestBuildValueTypeDatatype(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHDatatype, rdf.MustIRI(rdf.NamespaceXSD+"integer")))

	v := violation("DatatypeConstraintComponent", validation.TypeValueType)
	v.Value = validation.StringPtr("not-a-number")
	tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "integer")
}

// TestBuildPropertyPairReportsPairedValues verifies the paired property's
// actual values appear in the inference.
func TestBuildPropertyPairReportsPairedValues(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, ageProp, rdf.MustLiteral("30")))

	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHLessThan, rdf.MustIRI(ageProp)))

	v := violation("LessThanConstraintComponent", validation.TypePropertyPair)
	v.Value = validation.StringPtr("45")
	tree := NewBuilder(data, shapes).Build(v)

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "less than")
	assert.Contains(t, inferences[0].Statement, "30")
}

// TestBuildPropertyPairNoPairedValues verifies absence is stated, not
// silently omitted.
func TestBuildPropertyPairNoPairedValues(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHEquals, rdf.MustIRI(ageProp)))

	v := violation("EqualsConstraintComponent", validation.TypePropertyPair)
	tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "no value was found")
}

// TestBuildLogical verifies each combinator names its rule.
func TestBuildLogical(t *testing.T) {
	cases := []struct {
		component string
		predicate string
		rule      string
	}{
		{"NotConstraintComponent", rdf.SHNot, "negation"},
		{"AndConstraintComponent", rdf.SHAnd, "conjunction"},
		{"OrConstraintComponent", rdf.SHOr, "disjunction"},
		{"XoneConstraintComponent", rdf.SHXone, "exclusive disjunction"},
	}

	for _, tc := range cases {
		t.Run(tc.component, func(t *testing.T) {
			shapes := rdf.NewGraph()
			shapes.Add(rdf.Triple(shapeIRI, tc.predicate, rdf.MustIRI("http://example.org/NestedShape")))

			v := violation(tc.component, validation.TypeLogical)
			tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

			inferences := tree.Root.ChildrenOfKind(KindInference)
			require.Len(t, inferences, 1)
			assert.Contains(t, inferences[0].Statement, tc.rule)
			assert.Contains(t, inferences[0].Statement, "NestedShape")
		})
	}
}

// TestBuildDeterministicFirstMatch verifies that when a shape carries two
// values for the same constraint predicate, the lexicographically first
// object is interpolated.
func TestBuildDeterministicFirstMatch(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHPattern, rdf.MustLiteral("zzz")))
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHPattern, rdf.MustLiteral("aaa")))

	v := violation("PatternConstraintComponent", validation.TypePattern)
	tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

	inferences := tree.Root.ChildrenOfKind(KindInference)
	require.Len(t, inferences, 1)
	assert.Contains(t, inferences[0].Statement, "aaa")
	assert.NotContains(t, inferences[0].Statement, "zzz")
}

// TestBuildPremiseCitesShape verifies every non-degenerate branch starts
// with a Premise citing the shape definition.
func TestBuildPremiseCitesShape(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHMinCount, rdf.MustLiteral("2")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

	premises := tree.Root.ChildrenOfKind(KindPremise)
	require.Len(t, premises, 1)
	assert.Contains(t, premises[0].Statement, shapeIRI)
	assert.Contains(t, premises[0].Evidence, shapeIRI)
	// Premise comes before the observation and inference.
	assert.Same(t, premises[0], tree.Root.Children[0])
}

func TestTreeJSONRoundTrip(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.SHMinCount, rdf.MustLiteral("2")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	tree := NewBuilder(rdf.NewGraph(), shapes).Build(v)

	data, err := tree.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conclusion"`)
	assert.Contains(t, string(data), `"premise"`)
}
