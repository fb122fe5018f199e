// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rdf provides an immutable, indexed triple store over parsed RDF
// graphs, with deterministic pattern queries.
//
// Graphs are loaded once (data graph, shapes graph, validation report) and
// then shared read-only across pipeline workers. Parsing and term
// serialization are delegated to github.com/knakk/rdf; this package adds
// subject/predicate indexes and a stable iteration order so that repeated
// runs over the same inputs produce identical query results.
//
// # Determinism
//
// All query methods return results sorted by (subject, predicate, object)
// text. Callers that take "the first match" therefore get the triple whose
// object text sorts first, which is a documented contract rather than an
// accident of map iteration.
//
// Thread Safety: a Graph is safe for concurrent readers once fully built.
// Add must not be called concurrently with queries.
package rdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	knakk "github.com/knakk/rdf"
)

// Any matches any term in a pattern query. IRIs and literals are never
// empty in well-formed graphs, so the empty string is free to act as the
// wildcard.
const Any = ""

// Graph is an in-memory triple store with subject and predicate indexes.
type Graph struct {
	triples []knakk.Triple
	bySubj  map[string][]int
	byPred  map[string][]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		bySubj: make(map[string][]int),
		byPred: make(map[string][]int),
	}
}

// Add appends a triple and indexes it. Not safe to call concurrently
// with queries.
func (g *Graph) Add(t knakk.Triple) {
	idx := len(g.triples)
	g.triples = append(g.triples, t)
	g.bySubj[t.Subj.String()] = append(g.bySubj[t.Subj.String()], idx)
	g.byPred[t.Pred.String()] = append(g.byPred[t.Pred.String()], idx)
}

// Len returns the number of triples in the graph.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Parse reads all triples from r in the given serialization format.
//
// Outputs:
//   - *Graph: The parsed graph, indexed and ready for queries.
//   - error: Non-nil if the input is not well-formed.
func Parse(r io.Reader, format knakk.Format) (*Graph, error) {
	dec := knakk.NewTripleDecoder(r, format)
	triples, err := dec.DecodeAll()
	if err != nil {
		return nil, fmt.Errorf("decode triples: %w", err)
	}
	g := NewGraph()
	for _, t := range triples {
		g.Add(t)
	}
	return g, nil
}

// ParseFile loads a graph from disk, inferring the serialization format
// from the file extension (.nt for N-Triples, Turtle otherwise).
func ParseFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	format := knakk.Turtle
	if filepath.Ext(path) == ".nt" {
		format = knakk.NTriples
	}
	g, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

// Triples returns all triples matching the pattern, sorted by
// (subject, predicate, object) text. Any ("") matches any term.
// Objects are matched on their raw text value, so a literal "5" and an
// IRI ending in "5" are distinguished only by full text.
func (g *Graph) Triples(subj, pred, obj string) []knakk.Triple {
	candidates := g.candidateIndexes(subj, pred)

	var out []knakk.Triple
	for _, i := range candidates {
		t := g.triples[i]
		if subj != Any && t.Subj.String() != subj {
			continue
		}
		if pred != Any && t.Pred.String() != pred {
			continue
		}
		if obj != Any && t.Obj.String() != obj {
			continue
		}
		out = append(out, t)
	}
	sortTriples(out)
	return out
}

// Objects returns the object terms of all (subj, pred, *) triples,
// sorted by object text.
func (g *Graph) Objects(subj, pred string) []knakk.Term {
	matches := g.Triples(subj, pred, Any)
	out := make([]knakk.Term, 0, len(matches))
	for _, t := range matches {
		out = append(out, t.Obj)
	}
	return out
}

// FirstObject returns the object of the (subj, pred, *) triple whose
// object text sorts first, or false if no triple matches. When a shape
// unexpectedly carries several values for the same constraint predicate
// this picks the lexicographically smallest, which keeps output
// deterministic across runs.
func (g *Graph) FirstObject(subj, pred string) (knakk.Term, bool) {
	objs := g.Objects(subj, pred)
	if len(objs) == 0 {
		return nil, false
	}
	return objs[0], true
}

// Count returns the number of (subj, pred, *) triples.
func (g *Graph) Count(subj, pred string) int {
	return len(g.Triples(subj, pred, Any))
}

// Subjects returns the distinct subjects of all (*, pred, obj) triples,
// sorted.
func (g *Graph) Subjects(pred, obj string) []string {
	seen := make(map[string]struct{})
	for _, t := range g.Triples(Any, pred, obj) {
		seen[t.Subj.String()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// candidateIndexes narrows the scan using the most selective index
// available for the pattern.
func (g *Graph) candidateIndexes(subj, pred string) []int {
	switch {
	case subj != Any:
		return g.bySubj[subj]
	case pred != Any:
		return g.byPred[pred]
	default:
		all := make([]int, len(g.triples))
		for i := range g.triples {
			all[i] = i
		}
		return all
	}
}

func sortTriples(ts []knakk.Triple) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Subj.String() != ts[j].Subj.String() {
			return ts[i].Subj.String() < ts[j].Subj.String()
		}
		if ts[i].Pred.String() != ts[j].Pred.String() {
			return ts[i].Pred.String() < ts[j].Pred.String()
		}
		return ts[i].Obj.String() < ts[j].Obj.String()
	})
}

// FormatFact renders a triple as a single N-Triples line terminated by
// a period. Used for evidence text in justification trees.
func FormatFact(t knakk.Triple) string {
	return fmt.Sprintf("%s %s %s .",
		t.Subj.Serialize(knakk.NTriples),
		t.Pred.Serialize(knakk.NTriples),
		t.Obj.Serialize(knakk.NTriples),
	)
}

// FormatFacts renders a list of triples as N-Triples, one fact per line.
func FormatFacts(ts []knakk.Triple) string {
	lines := make([]string, 0, len(ts))
	for _, t := range ts {
		lines = append(lines, FormatFact(t))
	}
	return strings.Join(lines, "\n")
}

// FormatIRI wraps full IRIs in angle brackets for human-readable output.
// Non-IRI values (literals, blank node labels) are returned verbatim.
func FormatIRI(value string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return "<" + value + ">"
	}
	return value
}

// MustIRI builds an IRI term from a known-good string. It panics on
// malformed input and is intended for vocabulary constants and tests.
func MustIRI(iri string) knakk.IRI {
	term, err := knakk.NewIRI(iri)
	if err != nil {
		panic(fmt.Sprintf("invalid IRI %q: %v", iri, err))
	}
	return term
}

// MustLiteral builds a literal term from a known-good value. It panics
// on malformed input and is intended for tests.
func MustLiteral(value string) knakk.Literal {
	term, err := knakk.NewLiteral(value)
	if err != nil {
		panic(fmt.Sprintf("invalid literal %q: %v", value, err))
	}
	return term
}

// Triple is a convenience constructor for building graphs in code.
func Triple(subj, pred string, obj knakk.Term) knakk.Triple {
	return knakk.Triple{
		Subj: MustIRI(subj),
		Pred: MustIRI(pred),
		Obj:  obj.(knakk.Object),
	}
}
