// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"sort"

	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// DomainContext carries the background material handed to the generation
// backend alongside a justification tree.
type DomainContext struct {
	// OntologyFragments are the data-graph facts about the focus node,
	// rendered as N-Triples.
	OntologyFragments []string `json:"ontology_fragments,omitempty"`

	// ShapeDocumentation holds the rdfs:comment texts attached to the
	// violated shape.
	ShapeDocumentation []string `json:"shape_documentation,omitempty"`

	// SimilarCases lists other nodes of the focus node's type that are
	// missing the same property, as IRIs.
	SimilarCases []string `json:"similar_cases,omitempty"`

	// DomainRules holds the rules declared with xsh:appliesToProperty
	// for the violated property, each optionally suffixed with its
	// rdfs:comment.
	DomainRules []string `json:"domain_rules,omitempty"`
}

// ContextRetriever gathers domain context for a violation from the data
// and shapes graphs. Like the tree builder it is stateless and safe for
// concurrent use.
type ContextRetriever struct {
	data   *rdf.Graph
	shapes *rdf.Graph
}

// NewContextRetriever creates a retriever over the two read-only graphs.
func NewContextRetriever(data, shapes *rdf.Graph) *ContextRetriever {
	return &ContextRetriever{data: data, shapes: shapes}
}

// Retrieve collects all four context categories for a violation.
//
// Description:
//
//	Every category is best-effort: an empty graph or a violation without
//	a property path yields empty slices, never an error. Results in each
//	category are deterministically ordered.
func (r *ContextRetriever) Retrieve(v validation.ConstraintViolation) DomainContext {
	return DomainContext{
		OntologyFragments:  r.ontologyFragments(v.FocusNode),
		ShapeDocumentation: r.shapeDocumentation(v.ShapeID),
		SimilarCases:       r.similarCases(v),
		DomainRules:        r.domainRules(v),
	}
}

func (r *ContextRetriever) ontologyFragments(focusNode string) []string {
	triples := r.data.Triples(focusNode, rdf.Any, rdf.Any)
	fragments := make([]string, 0, len(triples))
	for _, t := range triples {
		fragments = append(fragments, rdf.FormatFact(t))
	}
	return fragments
}

func (r *ContextRetriever) shapeDocumentation(shapeID string) []string {
	docs := make([]string, 0)
	for _, o := range r.shapes.Objects(shapeID, rdf.RDFSComment) {
		docs = append(docs, o.String())
	}
	return docs
}

// similarCases finds other nodes sharing a declared type with the focus
// node that also lack the violated property. The focus node itself is
// excluded and the result is sorted.
func (r *ContextRetriever) similarCases(v validation.ConstraintViolation) []string {
	if !v.HasPath() {
		return nil
	}

	seen := make(map[string]struct{})
	for _, typ := range r.data.Objects(v.FocusNode, rdf.RDFType) {
		for _, node := range r.data.Subjects(rdf.RDFType, typ.String()) {
			if node == v.FocusNode {
				continue
			}
			if r.data.Count(node, v.Path()) > 0 {
				continue
			}
			seen[node] = struct{}{}
		}
	}

	cases := make([]string, 0, len(seen))
	for node := range seen {
		cases = append(cases, node)
	}
	sort.Strings(cases)
	return cases
}

// domainRules looks up subjects declaring xsh:appliesToProperty for the
// violated property and formats each as "<rule>" or "<rule>: <comment>".
func (r *ContextRetriever) domainRules(v validation.ConstraintViolation) []string {
	if !v.HasPath() {
		return nil
	}

	rules := r.shapes.Subjects(rdf.XSHAppliesToProperty, v.Path())
	sort.Strings(rules)

	out := make([]string, 0, len(rules))
	for _, rule := range rules {
		if comment, ok := r.shapes.FirstObject(rule, rdf.RDFSComment); ok {
			out = append(out, rule+": "+comment.String())
		} else {
			out = append(out, rule)
		}
	}
	return out
}
