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

// buildValueType explains sh:datatype, sh:class and sh:nodeKind failures.
func (b *Builder) buildValueType(v validation.ConstraintViolation, root *JustificationNode) {
	pathText := "this node"
	if v.HasPath() {
		pathText = rdf.FormatIRI(v.Path())
	}

	b.addPremise(v, root)

	isClassConstraint := strings.Contains(v.ConstraintID, "ClassConstraintComponent")
	if v.Value == nil && isClassConstraint {
		// No offending value means the focus node itself lacks the
		// required type; its declared types are the relevant evidence.
		root.AddChild(NewNode(KindObservation, fmt.Sprintf(
			"The node %s is not an instance of the required class",
			rdf.FormatIRI(v.FocusNode),
		)).WithEvidence(b.typeEvidence(v.FocusNode)))
	} else {
		root.AddChild(NewNode(KindObservation, fmt.Sprintf(
			"The value %s for property %s of node %s has an incompatible type",
			rdf.FormatIRI(v.ValueText()), pathText, rdf.FormatIRI(v.FocusNode),
		)).WithEvidence(b.dataEvidence(v.FocusNode, v.Path())))
	}

	switch {
	case strings.Contains(v.ConstraintID, "DatatypeConstraintComponent"):
		if datatype, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHDatatype); ok {
			root.AddChild(NewNode(KindInference,
				"The value does not match the required datatype "+rdf.FormatIRI(datatype.String()),
			))
		}
	case isClassConstraint:
		if class, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHClass); ok {
			root.AddChild(NewNode(KindInference,
				"The value is not an instance of the required class "+rdf.FormatIRI(class.String()),
			))
		}
	case strings.Contains(v.ConstraintID, "NodeKindConstraintComponent"):
		if kind, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHNodeKind); ok {
			root.AddChild(NewNode(KindInference,
				"The value does not match the required node kind "+rdf.FormatIRI(kind.String()),
			))
		}
	}
}

// buildValueRange explains the four range sub-cases, each with its own
// inference wording so inclusive and exclusive bounds read differently.
func (b *Builder) buildValueRange(v validation.ConstraintViolation, root *JustificationNode) {
	if !v.HasPath() {
		missingPathError(root, "value range")
		return
	}
	path := v.Path()

	b.addPremise(v, root)

	root.AddChild(NewNode(KindObservation, fmt.Sprintf(
		"The data shows that property %s of node %s has value %s",
		rdf.FormatIRI(path), rdf.FormatIRI(v.FocusNode), v.ValueText(),
	)).WithEvidence(b.dataEvidence(v.FocusNode, path)))

	switch {
	case strings.Contains(v.ConstraintID, "MinExclusiveConstraintComponent"):
		if bound, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHMinExclusive); ok {
			root.AddChild(NewNode(KindInference, fmt.Sprintf(
				"The value %s does not comply with the exclusive minimum %s: it must be strictly greater than %s",
				v.ValueText(), bound.String(), bound.String(),
			)))
		}
	case strings.Contains(v.ConstraintID, "MinInclusiveConstraintComponent"):
		if bound, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHMinInclusive); ok {
			root.AddChild(NewNode(KindInference, fmt.Sprintf(
				"The value %s does not comply with the inclusive minimum %s: it must be greater than or equal to %s",
				v.ValueText(), bound.String(), bound.String(),
			)))
		}
	case strings.Contains(v.ConstraintID, "MaxExclusiveConstraintComponent"):
		if bound, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHMaxExclusive); ok {
			root.AddChild(NewNode(KindInference, fmt.Sprintf(
				"The value %s does not comply with the exclusive maximum %s: it must be strictly less than %s",
				v.ValueText(), bound.String(), bound.String(),
			)))
		}
	case strings.Contains(v.ConstraintID, "MaxInclusiveConstraintComponent"):
		if bound, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHMaxInclusive); ok {
			root.AddChild(NewNode(KindInference, fmt.Sprintf(
				"The value %s does not comply with the inclusive maximum %s: it must be less than or equal to %s",
				v.ValueText(), bound.String(), bound.String(),
			)))
		}
	}
}
