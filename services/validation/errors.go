// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import "errors"

// Sentinel errors for report extraction. Each one marks a required field
// missing from a single validation result; the extractor skips that
// result and continues, so none of these is fatal for a run.
var (
	// ErrMissingFocusNode indicates a result without sh:focusNode.
	ErrMissingFocusNode = errors.New("validation result has no focus node")

	// ErrMissingSourceShape indicates a result without sh:sourceShape.
	ErrMissingSourceShape = errors.New("validation result has no source shape")

	// ErrMissingConstraintComponent indicates a result without
	// sh:sourceConstraintComponent.
	ErrMissingConstraintComponent = errors.New("validation result has no source constraint component")
)
