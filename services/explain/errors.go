// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import "errors"

// Sentinel errors for the explanation pipeline.
var (
	// ErrMissingConstraintID indicates a violation without a constraint
	// component IRI. Such a violation cannot be canonicalized and is
	// skipped, not fatal for the run.
	ErrMissingConstraintID = errors.New("violation has no constraint id")

	// ErrNoLanguages indicates an empty requested language set.
	ErrNoLanguages = errors.New("no target languages configured")
)
