// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package explain builds formal justification trees for SHACL constraint
// violations, canonicalizes violations into type-level signatures, and
// coordinates the explanation pipeline.
//
// The flow through the package:
//
//	violations → SignatureOf → grouped by digest
//	           → Builder.Build (justification tree, once per signature)
//	           → ContextRetriever.Retrieve (domain context, once per signature)
//	           → Knowledge Cache lookup → Generator on miss
//	           → per-instance ExplanationOutput expansion
//
// Tree building never fails: missing preconditions degrade to Error-kind
// children so every violation is answerable, if only degenerately.
package explain

import (
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/xshacl/services/validation"
)

// NodeKind categorizes one step of reasoning in a justification tree.
type NodeKind int

const (
	// KindPremise states the shape's requirement.
	KindPremise NodeKind = iota

	// KindObservation cites the actual data found for the focus node.
	KindObservation

	// KindInference states why the observation contradicts the premise.
	KindInference

	// KindConclusion is the root statement of every tree.
	KindConclusion

	// KindError marks a missing precondition (degenerate branch).
	KindError

	// KindUnknown carries the raw message for unclassified violations.
	KindUnknown
)

var kindNames = map[NodeKind]string{
	KindPremise:     "premise",
	KindObservation: "observation",
	KindInference:   "inference",
	KindConclusion:  "conclusion",
	KindError:       "error",
	KindUnknown:     "unknown",
}

var kindValues = map[string]NodeKind{
	"premise":     KindPremise,
	"observation": KindObservation,
	"inference":   KindInference,
	"conclusion":  KindConclusion,
	"error":       KindError,
	"unknown":     KindUnknown,
}

// String returns the canonical lowercase name of the kind.
func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the kind as its string name.
func (k NodeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON restores a kind from its string name. Unrecognized names
// deserialize as KindUnknown rather than failing, so audit payloads from
// older versions stay loadable.
func (k *NodeKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("node kind: %w", err)
	}
	if v, ok := kindValues[name]; ok {
		*k = v
	} else {
		*k = KindUnknown
	}
	return nil
}

// JustificationNode is one step of reasoning. Children are owned and
// ordered; the structure is a tree, never a DAG.
type JustificationNode struct {
	Statement string               `json:"statement"`
	Kind      NodeKind             `json:"kind"`
	Evidence  string               `json:"evidence,omitempty"`
	Children  []*JustificationNode `json:"children,omitempty"`
}

// NewNode creates a leaf node.
func NewNode(kind NodeKind, statement string) *JustificationNode {
	return &JustificationNode{Kind: kind, Statement: statement}
}

// WithEvidence attaches supporting fact text and returns the node for
// chaining.
func (n *JustificationNode) WithEvidence(evidence string) *JustificationNode {
	n.Evidence = evidence
	return n
}

// AddChild appends a child, preserving insertion order.
func (n *JustificationNode) AddChild(child *JustificationNode) {
	n.Children = append(n.Children, child)
}

// ChildrenOfKind returns the direct children with the given kind, in order.
func (n *JustificationNode) ChildrenOfKind(kind NodeKind) []*JustificationNode {
	var out []*JustificationNode
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// JustificationTree is the structured explanation for one violation
// signature. One tree is built per unique signature per run, not per
// violation instance.
type JustificationTree struct {
	Root      *JustificationNode            `json:"justification"`
	Violation validation.ConstraintViolation `json:"violation"`
}

// JSON renders the tree for prompting and audit storage.
func (t *JustificationTree) JSON() ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal justification tree: %w", err)
	}
	return data, nil
}
