// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/xshacl/services/llm"
	"github.com/AleutianAI/xshacl/services/validation"
)

// GeneratedExplanation is the raw output of one backend call pair for a
// single violation signature and target language.
type GeneratedExplanation struct {
	Language              string   `json:"language"`
	NaturalLanguageText   string   `json:"natural_language_text"`
	CorrectionSuggestions []string `json:"correction_suggestions"`
	ProvidedBy            string   `json:"provided_by"`
}

// Generator turns a justification tree and its domain context into
// natural language via an LLM backend.
//
// Thread Safety:
//
//	A Generator holds no mutable state beyond the backend client, which
//	is itself safe for concurrent use, so one instance serves all
//	pipeline workers.
type Generator struct {
	client llm.LLMClient
	logger *slog.Logger
}

// NewGenerator creates a generator over a backend client. A nil logger
// falls back to slog.Default().
func NewGenerator(client llm.LLMClient, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Generate produces the explanation text and correction suggestions for
// one violation in the given target language. It issues two backend
// calls, one per artifact, mirroring how the two prompts differ.
func (g *Generator) Generate(
	ctx context.Context,
	v validation.ConstraintViolation,
	tree *JustificationTree,
	domain DomainContext,
	language string,
) (GeneratedExplanation, error) {
	explanation, err := g.explanationText(ctx, v, tree, domain, language)
	if err != nil {
		return GeneratedExplanation{}, err
	}

	suggestions, err := g.correctionSuggestions(ctx, v, domain, language)
	if err != nil {
		return GeneratedExplanation{}, err
	}

	return GeneratedExplanation{
		Language:              language,
		NaturalLanguageText:   explanation,
		CorrectionSuggestions: suggestions,
		ProvidedBy:            g.client.Model(),
	}, nil
}

func (g *Generator) explanationText(
	ctx context.Context,
	v validation.ConstraintViolation,
	tree *JustificationTree,
	domain DomainContext,
	language string,
) (string, error) {
	treeJSON, err := tree.JSON()
	if err != nil {
		return "", fmt.Errorf("marshal justification tree: %w", err)
	}
	contextJSON, err := json.Marshal(domain)
	if err != nil {
		return "", fmt.Errorf("marshal domain context: %w", err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Explain the following SHACL violation: %s. ", violationMessage(v))
	fmt.Fprintf(&prompt, "Justification: %s. ", treeJSON)
	fmt.Fprintf(&prompt, "Relevant context: %s. ", contextJSON)
	prompt.WriteString("Generate a short and concise human-readable explanation.")
	fmt.Fprintf(&prompt, " Respond in %s.", language)

	g.logger.Debug("Requesting explanation text",
		"constraint_id", v.ConstraintID, "language", language)

	out, err := g.client.Generate(ctx, prompt.String(), llm.GenerationParams{})
	if err != nil {
		return "", fmt.Errorf("explanation generation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *Generator) correctionSuggestions(
	ctx context.Context,
	v validation.ConstraintViolation,
	domain DomainContext,
	language string,
) ([]string, error) {
	contextJSON, err := json.Marshal(domain)
	if err != nil {
		return nil, fmt.Errorf("marshal domain context: %w", err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Given the following SHACL violation: %s. ", violationMessage(v))
	fmt.Fprintf(&prompt, "Relevant context: %s. ", contextJSON)
	prompt.WriteString("Suggest possible corrections, one suggestion per line. " +
		"Be short and concise, and only suggest fixes for what was reported as the violation.")
	fmt.Fprintf(&prompt, " Respond in %s.", language)

	g.logger.Debug("Requesting correction suggestions",
		"constraint_id", v.ConstraintID, "language", language)

	out, err := g.client.Generate(ctx, prompt.String(), llm.GenerationParams{})
	if err != nil {
		return nil, fmt.Errorf("suggestion generation failed: %w", err)
	}
	return parseSuggestions(out), nil
}

func violationMessage(v validation.ConstraintViolation) string {
	if msg := v.MessageText(); msg != "" {
		return msg
	}
	return "Unknown violation"
}

// parseSuggestions splits backend output into one suggestion per
// non-empty line, stripping common bullet and numbering prefixes so the
// stored list stays uniform across backends.
func parseSuggestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		for i := 0; i < len(line); i++ {
			if line[i] >= '0' && line[i] <= '9' {
				continue
			}
			if (line[i] == '.' || line[i] == ')') && i > 0 {
				line = strings.TrimSpace(line[i+1:])
			}
			break
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
