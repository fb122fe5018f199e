// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

const personClass = "http://example.org/Person"

func TestRetrieveOntologyFragments(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, rdf.RDFType, rdf.MustIRI(personClass)))
	data.Add(rdf.Triple(focusIRI, ageProp, rdf.MustLiteral("30")))
	data.Add(rdf.Triple("http://example.org/bob", ageProp, rdf.MustLiteral("40")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	ctx := NewContextRetriever(data, rdf.NewGraph()).Retrieve(v)

	require.Len(t, ctx.OntologyFragments, 2)
	for _, f := range ctx.OntologyFragments {
		assert.Contains(t, f, focusIRI)
	}
}

func TestRetrieveShapeDocumentation(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple(shapeIRI, rdf.RDFSComment, rdf.MustLiteral("Every person needs a name.")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	ctx := NewContextRetriever(rdf.NewGraph(), shapes).Retrieve(v)

	require.Len(t, ctx.ShapeDocumentation, 1)
	assert.Equal(t, "Every person needs a name.", ctx.ShapeDocumentation[0])
}

func TestRetrieveSimilarCases(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, rdf.RDFType, rdf.MustIRI(personClass)))
	// Bob shares the type and also lacks the property: similar.
	data.Add(rdf.Triple("http://example.org/bob", rdf.RDFType, rdf.MustIRI(personClass)))
	// Carol shares the type but has the property: not similar.
	data.Add(rdf.Triple("http://example.org/carol", rdf.RDFType, rdf.MustIRI(personClass)))
	data.Add(rdf.Triple("http://example.org/carol", nameProp, rdf.MustLiteral("Carol")))
	// Dave lacks the property but has a different type: not similar.
	data.Add(rdf.Triple("http://example.org/dave", rdf.RDFType, rdf.MustIRI("http://example.org/Robot")))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	ctx := NewContextRetriever(data, rdf.NewGraph()).Retrieve(v)

	assert.Equal(t, []string{"http://example.org/bob"}, ctx.SimilarCases)
}

func TestRetrieveSimilarCasesExcludesFocusAndNeedsPath(t *testing.T) {
	data := rdf.NewGraph()
	data.Add(rdf.Triple(focusIRI, rdf.RDFType, rdf.MustIRI(personClass)))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	ctx := NewContextRetriever(data, rdf.NewGraph()).Retrieve(v)
	assert.Empty(t, ctx.SimilarCases)

	v.PropertyPath = nil
	ctx = NewContextRetriever(data, rdf.NewGraph()).Retrieve(v)
	assert.Empty(t, ctx.SimilarCases)
}

func TestRetrieveDomainRules(t *testing.T) {
	shapes := rdf.NewGraph()
	shapes.Add(rdf.Triple("http://example.org/NameRule", rdf.XSHAppliesToProperty, rdf.MustIRI(nameProp)))
	shapes.Add(rdf.Triple("http://example.org/NameRule", rdf.RDFSComment, rdf.MustLiteral("Names are mandatory.")))
	shapes.Add(rdf.Triple("http://example.org/BareRule", rdf.XSHAppliesToProperty, rdf.MustIRI(nameProp)))
	shapes.Add(rdf.Triple("http://example.org/AgeRule", rdf.XSHAppliesToProperty, rdf.MustIRI(ageProp)))

	v := violation("MinCountConstraintComponent", validation.TypeCardinality)
	ctx := NewContextRetriever(rdf.NewGraph(), shapes).Retrieve(v)

	assert.Equal(t, []string{
		"http://example.org/BareRule",
		"http://example.org/NameRule: Names are mandatory.",
	}, ctx.DomainRules)
}
