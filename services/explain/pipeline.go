// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/xshacl/services/kg"
	"github.com/AleutianAI/xshacl/services/llm"
	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// PipelineConfig controls one explanation run.
type PipelineConfig struct {
	// Languages are the target language tags to explain in. Must not
	// be empty.
	Languages []string

	// Workers bounds concurrent signature processing. Values below 1
	// fall back to 1.
	Workers int

	// GenerationTimeout bounds each backend call pair. Zero disables
	// the per-call timeout.
	GenerationTimeout time.Duration

	// ForceRefresh regenerates every explanation even when a cached
	// record exists.
	ForceRefresh bool
}

// ExplanationCache is the slice of the knowledge base the pipeline
// uses. *kg.Cache implements it.
type ExplanationCache interface {
	Has(digest, language string) bool
	Get(digest, language string) (kg.ExplanationRecord, bool)
	Put(rec kg.ExplanationRecord) bool
	ForceRefresh(rec kg.ExplanationRecord)
	Save() error
}

// Pipeline coordinates extraction output into explained violations:
// signatures are computed, duplicates collapsed, trees and context built
// once per signature, and the generation backend is called only for
// signature and language pairs missing from the knowledge base.
type Pipeline struct {
	builder   *Builder
	retriever *ContextRetriever
	generator *Generator
	cache     ExplanationCache
	logger    *slog.Logger
	cfg       PipelineConfig
}

// NewPipeline assembles a pipeline over the two graphs, a generation
// backend and the explanation cache.
func NewPipeline(
	data, shapes *rdf.Graph,
	client llm.LLMClient,
	cache ExplanationCache,
	logger *slog.Logger,
	cfg PipelineConfig,
) (*Pipeline, error) {
	if len(cfg.Languages) == 0 {
		return nil, ErrNoLanguages
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		builder:   NewBuilder(data, shapes),
		retriever: NewContextRetriever(data, shapes),
		generator: NewGenerator(client, logger),
		cache:     cache,
		logger:    logger,
		cfg:       cfg,
	}, nil
}

// signatureGroup is one unique signature with its representative
// violation, shared tree and context.
type signatureGroup struct {
	digest    string
	violation validation.ConstraintViolation
	tree      *JustificationTree
	domain    DomainContext
}

// Run explains a batch of violations.
//
// Description:
//
//	Violations with equal signatures share one justification tree, one
//	context retrieval and at most one generation call per language.
//	Cached records are reused without touching the backend, so re-running
//	over an unchanged report performs no generation at all. A failed
//	generation degrades to an inline error record for this run; it is
//	not persisted, so the next run retries it. The cache is saved exactly
//	once; a persistence failure is logged and the in-memory results are
//	returned anyway.
//
// Outputs:
//
//	One ExplanationOutput per explainable input violation per language,
//	preserving input order. Violations whose signature cannot be
//	computed are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, violations []validation.ConstraintViolation) ([]ExplanationOutput, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.violations", len(violations)),
		attribute.Int("run.languages", len(p.cfg.Languages)),
	)

	logger := p.logger.With("run_id", runID)
	logger.Info("Starting explanation run",
		"violations", len(violations),
		"languages", p.cfg.Languages,
		"workers", p.cfg.Workers)

	digests, groups := p.groupBySignature(logger, violations)
	span.SetAttributes(attribute.Int("run.signatures", len(groups)))
	logger.Info("Grouped violations by signature", "signatures", len(groups))

	state := &runState{
		degraded: make(map[string]kg.ExplanationRecord),
		fresh:    make(map[string]struct{}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, group := range groups {
		group := group
		g.Go(func() error {
			return p.processGroup(gctx, logger, group, state)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The generated records already live in memory; a failed flush must
	// not discard them.
	if err := p.cache.Save(); err != nil {
		logger.Error("Failed to persist explanation cache", "error", err)
	}

	outputs := p.expand(violations, digests, groups, state)
	logger.Info("Explanation run complete", "outputs", len(outputs))
	return outputs, nil
}

// groupBySignature computes each violation's signature digest and
// collapses duplicates. The first violation seen for a digest becomes
// the group's representative. The returned digest slice is parallel to
// the input; an empty string marks a skipped violation.
func (p *Pipeline) groupBySignature(
	logger *slog.Logger,
	violations []validation.ConstraintViolation,
) ([]string, map[string]*signatureGroup) {
	digests := make([]string, len(violations))
	groups := make(map[string]*signatureGroup)

	for i, v := range violations {
		sig, err := SignatureOf(v)
		if err != nil {
			logger.Warn("Skipping violation without a signature",
				"focus_node", v.FocusNode, "error", err)
			continue
		}
		digest := sig.Digest()
		digests[i] = digest
		if _, seen := groups[digest]; seen {
			continue
		}
		groups[digest] = &signatureGroup{digest: digest, violation: v}
	}
	return digests, groups
}

// runState accumulates per-run bookkeeping shared across workers.
type runState struct {
	mu sync.Mutex

	// degraded holds error records from failed generations, keyed by
	// digest/language. They live only for this run.
	degraded map[string]kg.ExplanationRecord

	// fresh marks digest/language pairs generated during this run, so
	// output expansion can tell them apart from warm cache hits.
	fresh map[string]struct{}
}

func (s *runState) addDegraded(key string, rec kg.ExplanationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.degraded[key] = rec
}

func (s *runState) markFresh(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fresh[key] = struct{}{}
}

func resultKey(digest, language string) string {
	return digest + "/" + language
}

// processGroup builds the shared artifacts for one signature and fills
// every missing language.
func (p *Pipeline) processGroup(
	ctx context.Context,
	logger *slog.Logger,
	group *signatureGroup,
	state *runState,
) error {
	group.tree = p.builder.Build(group.violation)
	group.domain = p.retriever.Retrieve(group.violation)

	for _, language := range p.cfg.Languages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.cfg.ForceRefresh && p.cache.Has(group.digest, language) {
			recordCacheHit(ctx, language)
			continue
		}
		recordCacheMiss(ctx, language)

		rec, err := p.generate(ctx, group, language)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Generation failed, degrading to error record",
				"digest", group.digest, "language", language, "error", err)
			state.addDegraded(resultKey(group.digest, language), errorRecord(group, language, err))
			continue
		}

		state.markFresh(resultKey(group.digest, language))
		if p.cfg.ForceRefresh {
			p.cache.ForceRefresh(rec)
		} else {
			p.cache.Put(rec)
		}
	}
	return nil
}

// generate performs the backend call pair for one signature and
// language under the configured timeout.
func (p *Pipeline) generate(ctx context.Context, group *signatureGroup, language string) (kg.ExplanationRecord, error) {
	callCtx := ctx
	if p.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.cfg.GenerationTimeout)
		defer cancel()
	}

	start := time.Now()
	out, err := p.generator.Generate(callCtx, group.violation, group.tree, group.domain, language)
	recordGeneration(ctx, time.Since(start), err == nil)
	if err != nil {
		return kg.ExplanationRecord{}, err
	}

	treeJSON, err := group.tree.JSON()
	if err != nil {
		return kg.ExplanationRecord{}, err
	}

	return kg.ExplanationRecord{
		SignatureDigest:       group.digest,
		Language:              language,
		NaturalLanguageText:   out.NaturalLanguageText,
		CorrectionSuggestions: out.CorrectionSuggestions,
		ProvidedBy:            out.ProvidedBy,
		CreatedAt:             time.Now().UTC(),
		Violation:             group.violation,
		Justification:         treeJSON,
	}, nil
}

// errorRecord builds the inline record used when generation failed.
func errorRecord(group *signatureGroup, language string, err error) kg.ExplanationRecord {
	return kg.ExplanationRecord{
		SignatureDigest:     group.digest,
		Language:            language,
		NaturalLanguageText: "Error generating explanation: " + err.Error(),
		ProvidedBy:          "error",
		CreatedAt:           time.Now().UTC(),
		Violation:           group.violation,
	}
}

// expand maps the per-signature records back onto the input violations
// in order.
func (p *Pipeline) expand(
	violations []validation.ConstraintViolation,
	digests []string,
	groups map[string]*signatureGroup,
	state *runState,
) []ExplanationOutput {
	outputs := make([]ExplanationOutput, 0, len(violations)*len(p.cfg.Languages))
	for i, v := range violations {
		digest := digests[i]
		if digest == "" {
			continue
		}
		group := groups[digest]

		for _, language := range p.cfg.Languages {
			out := ExplanationOutput{
				Violation:       v,
				Justification:   group.tree.Root,
				SignatureDigest: digest,
				Language:        language,
			}
			key := resultKey(digest, language)
			if rec, ok := p.cache.Get(digest, language); ok {
				out.NaturalLanguageText = rec.NaturalLanguageText
				out.CorrectionSuggestions = rec.CorrectionSuggestions
				out.ProvidedBy = rec.ProvidedBy
				_, generated := state.fresh[key]
				out.FromCache = !generated
			} else if rec, ok := state.degraded[key]; ok {
				out.NaturalLanguageText = rec.NaturalLanguageText
				out.ProvidedBy = rec.ProvidedBy
			}
			outputs = append(outputs, out)
		}
	}
	return outputs
}
