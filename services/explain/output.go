// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import "github.com/AleutianAI/xshacl/services/validation"

// ExplanationOutput is one explained violation in one target language.
// A pipeline run yields one output per input violation per language, in
// input order.
type ExplanationOutput struct {
	Violation     validation.ConstraintViolation `json:"violation"`
	Justification *JustificationNode             `json:"justification"`

	SignatureDigest string `json:"signature_digest"`
	Language        string `json:"language"`

	NaturalLanguageText   string   `json:"natural_language_text"`
	CorrectionSuggestions []string `json:"correction_suggestions,omitempty"`

	// ProvidedBy names the backend that produced the text, or "error"
	// for degraded records whose generation failed.
	ProvidedBy string `json:"provided_by"`

	// FromCache is true when the text was served from the knowledge
	// base rather than generated during this run.
	FromCache bool `json:"from_cache"`
}
