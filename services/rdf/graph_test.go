// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rdf

import (
	"strings"
	"testing"

	knakk "github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exNode = "http://example.org/node1"
	exProp = "http://example.org/hasName"
)

func buildTestGraph() *Graph {
	g := NewGraph()
	g.Add(Triple(exNode, exProp, MustLiteral("Alice")))
	g.Add(Triple(exNode, exProp, MustLiteral("Bob")))
	g.Add(Triple(exNode, RDFType, MustIRI("http://example.org/Person")))
	g.Add(Triple("http://example.org/node2", exProp, MustLiteral("Carol")))
	return g
}

// TestTriplesPatternMatch verifies subject/predicate/object filtering.
func TestTriplesPatternMatch(t *testing.T) {
	g := buildTestGraph()

	assert.Len(t, g.Triples(exNode, exProp, Any), 2)
	assert.Len(t, g.Triples(exNode, Any, Any), 3)
	assert.Len(t, g.Triples(Any, exProp, Any), 3)
	assert.Len(t, g.Triples(Any, Any, Any), 4)
	assert.Len(t, g.Triples(exNode, exProp, "Alice"), 1)
	assert.Empty(t, g.Triples(exNode, exProp, "Dave"))
}

// TestQueryOrderIsDeterministic verifies results sort by object text
// regardless of insertion order.
func TestQueryOrderIsDeterministic(t *testing.T) {
	g := NewGraph()
	g.Add(Triple(exNode, exProp, MustLiteral("zeta")))
	g.Add(Triple(exNode, exProp, MustLiteral("alpha")))
	g.Add(Triple(exNode, exProp, MustLiteral("mid")))

	objs := g.Objects(exNode, exProp)
	require.Len(t, objs, 3)
	assert.Equal(t, "alpha", objs[0].String())
	assert.Equal(t, "mid", objs[1].String())
	assert.Equal(t, "zeta", objs[2].String())

	first, ok := g.FirstObject(exNode, exProp)
	require.True(t, ok)
	assert.Equal(t, "alpha", first.String())
}

// TestFirstObjectAbsent verifies the miss path.
func TestFirstObjectAbsent(t *testing.T) {
	g := buildTestGraph()

	_, ok := g.FirstObject(exNode, "http://example.org/missing")
	assert.False(t, ok)
}

func TestCount(t *testing.T) {
	g := buildTestGraph()

	assert.Equal(t, 2, g.Count(exNode, exProp))
	assert.Equal(t, 0, g.Count(exNode, "http://example.org/missing"))
}

func TestSubjects(t *testing.T) {
	g := buildTestGraph()

	subjects := g.Subjects(exProp, Any)
	require.Len(t, subjects, 2)
	// Sorted
	assert.Equal(t, exNode, subjects[0])
	assert.Equal(t, "http://example.org/node2", subjects[1])
}

// TestParseNTriples verifies round-tripping through the decoder.
func TestParseNTriples(t *testing.T) {
	input := `<http://example.org/node1> <http://example.org/hasName> "Alice" .
<http://example.org/node1> <http://example.org/hasAge> "42" .
`
	g, err := Parse(strings.NewReader(input), knakk.NTriples)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())
	obj, ok := g.FirstObject(exNode, exProp)
	require.True(t, ok)
	assert.Equal(t, "Alice", obj.String())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(strings.NewReader("this is not rdf at all {"), knakk.NTriples)
	assert.Error(t, err)
}

// TestFormatFact verifies evidence lines are period-terminated N-Triples.
func TestFormatFact(t *testing.T) {
	g := buildTestGraph()
	matches := g.Triples(exNode, exProp, "Alice")
	require.Len(t, matches, 1)

	fact := FormatFact(matches[0])
	assert.Contains(t, fact, "<http://example.org/node1>")
	assert.Contains(t, fact, "<http://example.org/hasName>")
	assert.Contains(t, fact, `"Alice"`)
	assert.True(t, strings.HasSuffix(fact, " ."))
}

func TestFormatFactsOnePerLine(t *testing.T) {
	g := buildTestGraph()
	facts := FormatFacts(g.Triples(exNode, exProp, Any))

	lines := strings.Split(facts, "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, " ."))
	}
}

func TestFormatIRI(t *testing.T) {
	assert.Equal(t, "<http://example.org/x>", FormatIRI("http://example.org/x"))
	assert.Equal(t, "<https://example.org/x>", FormatIRI("https://example.org/x"))
	assert.Equal(t, "plain literal", FormatIRI("plain literal"))
	assert.Equal(t, "_:b0", FormatIRI("_:b0"))
}
