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

// buildLogical explains sh:not, sh:and, sh:or and sh:xone failures. It
// names the referenced shape (or shape list) and the governing
// combination rule without evaluating the nested shapes.
func (b *Builder) buildLogical(v validation.ConstraintViolation, root *JustificationNode) {
	b.addPremise(v, root)

	type rule struct {
		component string
		predicate string
		name      string
		meaning   string
	}
	rules := []rule{
		{"NotConstraintComponent", rdf.SHNot, "negation",
			"it must not conform to the rules of"},
		{"AndConstraintComponent", rdf.SHAnd, "conjunction",
			"it must conform to all of the shapes listed in"},
		{"OrConstraintComponent", rdf.SHOr, "disjunction",
			"it must conform to at least one of the shapes listed in"},
		{"XoneConstraintComponent", rdf.SHXone, "exclusive disjunction",
			"it must conform to exactly one of the shapes listed in"},
	}

	for _, r := range rules {
		if !strings.Contains(v.ConstraintID, r.component) {
			continue
		}
		nested, ok := b.shapes.FirstObject(v.ShapeID, r.predicate)
		if !ok {
			root.AddChild(NewNode(KindError, fmt.Sprintf(
				"The shape %s does not declare the nested shape for its %s constraint",
				rdf.FormatIRI(v.ShapeID), r.name,
			)))
			return
		}
		root.AddChild(NewNode(KindInference, fmt.Sprintf(
			"The shape %s includes a %s of the shape %s. For the node to be valid, %s %s",
			rdf.FormatIRI(v.ShapeID), r.name, rdf.FormatIRI(nested.String()),
			r.meaning, rdf.FormatIRI(nested.String()),
		)))
		return
	}

	root.AddChild(NewNode(KindError,
		"Logical violation with unrecognized constraint component: "+v.ConstraintID,
	))
}
