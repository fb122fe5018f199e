// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"

	"github.com/AleutianAI/xshacl/services/validation"
)

// ViolationSignature is the canonical, entity-independent identity of a
// violation type. Two violations with the same signature are explained
// exactly once per language.
//
// PropertyPath keeps the absent/present distinction from the violation:
// nil means the violation carried no path, while a pointer to the empty
// string is a present, empty value. The two canonicalize differently.
type ViolationSignature struct {
	ConstraintID  string                   `json:"constraint_id"`
	PropertyPath  *string                  `json:"property_path,omitempty"`
	ViolationType validation.ViolationType `json:"violation_type"`
	Params        map[string]string        `json:"constraint_params,omitempty"`
}

// SignatureOf canonicalizes a violation into its type-level signature.
// Pure function, no I/O.
//
// The constraint parameters are copied from the violation's context so
// that, for example, a minCount=2 violation and a minCount=3 violation on
// the same property are distinct signatures.
//
// Outputs:
//   - ViolationSignature: The canonical identity.
//   - error: ErrMissingConstraintID when the violation has no constraint
//     component IRI. Fatal for this violation instance only.
func SignatureOf(v validation.ConstraintViolation) (ViolationSignature, error) {
	if v.ConstraintID == "" {
		return ViolationSignature{}, ErrMissingConstraintID
	}

	params := make(map[string]string, len(v.Context))
	for k, val := range v.Context {
		params[k] = val
	}

	sig := ViolationSignature{
		ConstraintID:  v.ConstraintID,
		ViolationType: v.ViolationType,
		Params:        params,
	}
	if v.PropertyPath != nil {
		path := *v.PropertyPath
		sig.PropertyPath = &path
	}
	return sig, nil
}

// Equal reports whether two signatures denote the same violation type.
// Params compare as unordered maps; insertion order never matters.
func (s ViolationSignature) Equal(other ViolationSignature) bool {
	if s.ConstraintID != other.ConstraintID {
		return false
	}
	if s.ViolationType != other.ViolationType {
		return false
	}
	if (s.PropertyPath == nil) != (other.PropertyPath == nil) {
		return false
	}
	if s.PropertyPath != nil && *s.PropertyPath != *other.PropertyPath {
		return false
	}
	if len(s.Params) != len(other.Params) {
		return false
	}
	for k, v := range s.Params {
		if ov, ok := other.Params[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Digest returns the stable hex SHA-256 digest of the signature.
//
// The digest is a pure function of the canonical field tuple: every field
// is written length-prefixed (so no separator can be forged by field
// content), the path carries an explicit presence byte (absent and empty
// hash differently), and params are written in sorted key order. The
// result is reproducible across process restarts.
func (s ViolationSignature) Digest() string {
	h := sha256.New()
	writeField(h, s.ConstraintID)

	if s.PropertyPath == nil {
		h.Write([]byte{0})
	} else {
		h.Write([]byte{1})
		writeField(h, *s.PropertyPath)
	}

	writeField(h, s.ViolationType.String())

	keys := make([]string, 0, len(s.Params))
	for k := range s.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(h, k)
		writeField(h, s.Params[k])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed string into the hash.
func writeField(h hash.Hash, s string) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
	h.Write(lenBuf[:])
	h.Write([]byte(s))
}
