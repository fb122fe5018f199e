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

// buildPropertyPair explains sh:equals, sh:disjoint, sh:lessThan and
// sh:lessThanOrEquals failures. The paired property's actual values are
// resolved from the data graph and reported; when the paired property has
// no values that is stated explicitly rather than silently omitted.
func (b *Builder) buildPropertyPair(v validation.ConstraintViolation, root *JustificationNode) {
	b.addPremise(v, root)

	if v.HasPath() && v.Value != nil {
		root.AddChild(NewNode(KindObservation, fmt.Sprintf(
			"The data shows that node %s has value %s for property %s.",
			rdf.FormatIRI(v.FocusNode), v.ValueText(), rdf.FormatIRI(v.Path()),
		)).WithEvidence(b.dataEvidence(v.FocusNode, v.Path())))
	}

	pathText := rdf.FormatIRI(v.Path())

	switch {
	case strings.Contains(v.ConstraintID, "EqualsConstraintComponent"):
		b.pairInference(v, root, rdf.SHEquals, pathText,
			"must have the same values as")
	case strings.Contains(v.ConstraintID, "DisjointConstraintComponent"):
		b.pairInference(v, root, rdf.SHDisjoint, pathText,
			"must not have any of the same values as")
	case strings.Contains(v.ConstraintID, "LessThanOrEqualsConstraintComponent"):
		b.pairInference(v, root, rdf.SHLessThanOrEquals, pathText,
			"must have values less than or equal to the values of")
	case strings.Contains(v.ConstraintID, "LessThanConstraintComponent"):
		b.pairInference(v, root, rdf.SHLessThan, pathText,
			"must have values less than the values of")
	default:
		root.AddChild(NewNode(KindError,
			"Property pair violation with unrecognized constraint component: "+v.ConstraintID,
		))
	}
}

// pairInference resolves the paired property from the shapes graph and
// its actual values from the data graph, then states the governing rule.
func (b *Builder) pairInference(v validation.ConstraintViolation, root *JustificationNode, predicate, pathText, rule string) {
	paired, ok := b.shapes.FirstObject(v.ShapeID, predicate)
	if !ok {
		root.AddChild(NewNode(KindError,
			"The shape does not declare the paired property for this constraint",
		))
		return
	}
	pairedText := rdf.FormatIRI(paired.String())

	values := b.pairedValues(v.FocusNode, paired.String())
	var statement string
	if len(values) > 0 {
		statement = fmt.Sprintf(
			"The shape states that property %s %s %s, which currently has values [%s].",
			pathText, rule, pairedText, strings.Join(values, ", "),
		)
	} else {
		statement = fmt.Sprintf(
			"The shape states that property %s %s %s, but no value was found for %s.",
			pathText, rule, pairedText, pairedText,
		)
	}
	root.AddChild(NewNode(KindInference, statement).
		WithEvidence(b.dataEvidence(v.FocusNode, paired.String())))
}
