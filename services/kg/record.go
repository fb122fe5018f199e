// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package kg

import (
	"encoding/json"
	"time"

	"github.com/AleutianAI/xshacl/services/validation"
)

// ExplanationRecord is one cached explanation for a violation signature
// in one target language.
type ExplanationRecord struct {
	// SignatureDigest identifies the violation signature this record
	// explains.
	SignatureDigest string `json:"signature_digest"`

	// Language is the target language tag the text was generated in.
	Language string `json:"language"`

	NaturalLanguageText   string   `json:"natural_language_text"`
	CorrectionSuggestions []string `json:"correction_suggestions,omitempty"`

	// ProvidedBy names the backend and model that generated the text.
	ProvidedBy string `json:"provided_by"`

	CreatedAt time.Time `json:"created_at"`

	// Violation is the representative violation the record was built
	// from, kept for auditability.
	Violation validation.ConstraintViolation `json:"violation"`

	// Justification is the serialized justification tree, kept for
	// auditability. Opaque to this package.
	Justification json.RawMessage `json:"justification,omitempty"`
}

// Key returns the store key for this record.
func (r ExplanationRecord) Key() string {
	return recordKey(r.SignatureDigest, r.Language)
}

func recordKey(digest, language string) string {
	return "sig/" + digest + "/" + language
}
