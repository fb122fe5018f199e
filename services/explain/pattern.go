// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"fmt"

	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// buildPattern explains sh:pattern failures. The configured regex and its
// flags, when present, are reported in separate Inference nodes.
func (b *Builder) buildPattern(v validation.ConstraintViolation, root *JustificationNode) {
	b.addPremise(v, root)

	if v.HasPath() && v.Value != nil {
		root.AddChild(NewNode(KindObservation, fmt.Sprintf(
			"The data shows that node %s has value %s for property %s.",
			rdf.FormatIRI(v.FocusNode), v.ValueText(), rdf.FormatIRI(v.Path()),
		)).WithEvidence(b.dataEvidence(v.FocusNode, v.Path())))
	}

	pattern, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHPattern)
	if !ok {
		root.AddChild(NewNode(KindError,
			"The shape does not declare the pattern the value was matched against",
		))
		return
	}
	root.AddChild(NewNode(KindInference,
		"The value provided does not comply with the pattern "+pattern.String()+".",
	))

	if flags, ok := b.shapes.FirstObject(v.ShapeID, rdf.SHFlags); ok {
		root.AddChild(NewNode(KindInference,
			"The pattern uses flags "+flags.String()+".",
		))
	}
}
