// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// buildCardinality explains sh:minCount / sh:maxCount failures.
//
// The actual count comes from the violation context when the validator
// already reported it, otherwise it is recomputed by counting matching
// triples in the data graph.
func (b *Builder) buildCardinality(v validation.ConstraintViolation, root *JustificationNode) {
	if !v.HasPath() {
		missingPathError(root, "cardinality")
		return
	}
	path := v.Path()

	b.addPremise(v, root)

	actual := b.actualCount(v, path)

	observation := fmt.Sprintf(
		"The data shows that node %s has %d values for property %s",
		rdf.FormatIRI(v.FocusNode), actual, rdf.FormatIRI(path),
	)
	root.AddChild(NewNode(KindObservation, observation).
		WithEvidence(b.dataEvidence(v.FocusNode, path)))

	switch {
	case strings.Contains(v.ConstraintID, "MinCountConstraintComponent"):
		minCount := b.configuredBound(v, "minCount", rdf.SHMinCount, "1")
		root.AddChild(NewNode(KindInference, fmt.Sprintf(
			"Since %d < at least %s, the node violates the minimum cardinality constraint of the shape",
			actual, minCount,
		)))
	case strings.Contains(v.ConstraintID, "MaxCountConstraintComponent"):
		maxCount := b.configuredBound(v, "maxCount", rdf.SHMaxCount, "1")
		root.AddChild(NewNode(KindInference, fmt.Sprintf(
			"Since %d > at most %s, the node violates the maximum cardinality constraint of the shape",
			actual, maxCount,
		)))
	default:
		root.AddChild(NewNode(KindError,
			"Cardinality violation with unrecognized constraint component: "+v.ConstraintID,
		))
	}
}

// actualCount prefers the count the validator already attached, falling
// back to a data-graph count for (focusNode, path, *).
func (b *Builder) actualCount(v validation.ConstraintViolation, path string) int {
	if raw, ok := v.Context["actualCount"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return b.data.Count(v.FocusNode, path)
}

// configuredBound reads the configured cardinality bound, preferring the
// violation context, then the shapes graph, then the SHACL default.
func (b *Builder) configuredBound(v validation.ConstraintViolation, contextKey, predicate, fallback string) string {
	if raw, ok := v.Context[contextKey]; ok && raw != "" {
		return raw
	}
	if obj, ok := b.shapes.FirstObject(v.ShapeID, predicate); ok {
		return obj.String()
	}
	return fallback
}
