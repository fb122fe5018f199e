// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/xshacl/services/kg"
	"github.com/AleutianAI/xshacl/services/llm"
	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// countingLLM is a concurrency-safe backend fake for pipeline tests.
type countingLLM struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingLLM) Generate(_ context.Context, _ string, _ llm.GenerationParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "generated text", nil
}

func (c *countingLLM) Model() string { return "fake/counting" }

func (c *countingLLM) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func openTestCache(t *testing.T) *kg.Cache {
	t.Helper()
	db, err := kg.OpenStore(kg.InMemoryStoreConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return kg.NewCache(db, nil)
}

// failingSaveCache wraps a working cache with a store that rejects
// every flush.
type failingSaveCache struct {
	*kg.Cache
}

func (c *failingSaveCache) Save() error { return errors.New("disk full") }

func newTestPipeline(t *testing.T, client llm.LLMClient, cache ExplanationCache, cfg PipelineConfig) *Pipeline {
	t.Helper()
	p, err := NewPipeline(rdf.NewGraph(), rdf.NewGraph(), client, cache, nil, cfg)
	require.NoError(t, err)
	return p
}

// sameSignatureViolations returns two violations on different focus
// nodes that canonicalize to the same signature.
func sameSignatureViolations() []validation.ConstraintViolation {
	a := violation("MinCountConstraintComponent", validation.TypeCardinality)
	b := violation("MinCountConstraintComponent", validation.TypeCardinality)
	b.FocusNode = "http://example.org/bob"
	return []validation.ConstraintViolation{a, b}
}

func TestPipelineRequiresLanguages(t *testing.T) {
	_, err := NewPipeline(rdf.NewGraph(), rdf.NewGraph(), &countingLLM{}, openTestCache(t), nil, PipelineConfig{})
	require.ErrorIs(t, err, ErrNoLanguages)
}

func TestPipelineDeduplicatesBySignature(t *testing.T) {
	client := &countingLLM{}
	pipeline := newTestPipeline(t, client, openTestCache(t), PipelineConfig{
		Languages: []string{"en", "de"},
		Workers:   2,
	})

	outputs, err := pipeline.Run(context.Background(), sameSignatureViolations())
	require.NoError(t, err)

	// Two violations, one signature, two languages: one output per
	// violation per language, but only one generation pair per
	// signature and language (each pair is two backend calls).
	assert.Len(t, outputs, 4)
	assert.Equal(t, 4, client.callCount())

	assert.Equal(t, outputs[0].SignatureDigest, outputs[2].SignatureDigest)
	assert.Equal(t, "http://example.org/alice", outputs[0].Violation.FocusNode)
	assert.Equal(t, "en", outputs[0].Language)
	assert.Equal(t, "de", outputs[1].Language)
	assert.Equal(t, "http://example.org/bob", outputs[2].Violation.FocusNode)

	for _, out := range outputs {
		assert.Equal(t, "generated text", out.NaturalLanguageText)
		assert.Equal(t, "fake/counting", out.ProvidedBy)
		assert.False(t, out.FromCache)
		assert.NotNil(t, out.Justification)
	}
}

func TestPipelineIdempotentRerun(t *testing.T) {
	client := &countingLLM{}
	pipeline := newTestPipeline(t, client, openTestCache(t), PipelineConfig{
		Languages: []string{"en"},
	})

	violations := sameSignatureViolations()
	_, err := pipeline.Run(context.Background(), violations)
	require.NoError(t, err)
	firstCalls := client.callCount()

	outputs, err := pipeline.Run(context.Background(), violations)
	require.NoError(t, err)

	assert.Equal(t, firstCalls, client.callCount(), "re-run must not call the backend")
	for _, out := range outputs {
		assert.True(t, out.FromCache)
		assert.Equal(t, "generated text", out.NaturalLanguageText)
	}
}

func TestPipelineWarmCacheAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := kg.OpenStore(kg.DefaultStoreConfig(dir))
	require.NoError(t, err)
	client := &countingLLM{}
	pipeline := newTestPipeline(t, client, kg.NewCache(db, nil), PipelineConfig{Languages: []string{"en"}})

	violations := sameSignatureViolations()
	_, err = pipeline.Run(context.Background(), violations)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = kg.OpenStore(kg.DefaultStoreConfig(dir))
	require.NoError(t, err)
	defer db.Close()
	cache := kg.NewCache(db, nil)
	require.NoError(t, cache.Load())

	fresh := &countingLLM{}
	pipeline = newTestPipeline(t, fresh, cache, PipelineConfig{Languages: []string{"en"}})
	outputs, err := pipeline.Run(context.Background(), violations)
	require.NoError(t, err)

	assert.Equal(t, 0, fresh.callCount())
	for _, out := range outputs {
		assert.True(t, out.FromCache)
	}
}

func TestPipelineForceRefresh(t *testing.T) {
	client := &countingLLM{}
	cache := openTestCache(t)
	pipeline := newTestPipeline(t, client, cache, PipelineConfig{Languages: []string{"en"}})

	violations := sameSignatureViolations()
	_, err := pipeline.Run(context.Background(), violations)
	require.NoError(t, err)
	firstCalls := client.callCount()

	refresher := newTestPipeline(t, client, cache, PipelineConfig{
		Languages:    []string{"en"},
		ForceRefresh: true,
	})
	outputs, err := refresher.Run(context.Background(), violations)
	require.NoError(t, err)

	assert.Equal(t, firstCalls*2, client.callCount())
	for _, out := range outputs {
		assert.False(t, out.FromCache)
	}
}

func TestPipelineDegradesOnBackendFailure(t *testing.T) {
	client := &countingLLM{err: errors.New("backend down")}
	cache := openTestCache(t)
	pipeline := newTestPipeline(t, client, cache, PipelineConfig{Languages: []string{"en"}})

	violations := sameSignatureViolations()
	outputs, err := pipeline.Run(context.Background(), violations)
	require.NoError(t, err)

	require.Len(t, outputs, 2)
	for _, out := range outputs {
		assert.Contains(t, out.NaturalLanguageText, "Error generating explanation")
		assert.Contains(t, out.NaturalLanguageText, "backend down")
		assert.Equal(t, "error", out.ProvidedBy)
		assert.False(t, out.FromCache)
	}

	// Failed generations are not persisted, so the next run retries.
	assert.Equal(t, 0, cache.Size())
	before := client.callCount()
	_, err = pipeline.Run(context.Background(), violations)
	require.NoError(t, err)
	assert.Greater(t, client.callCount(), before)
}

func TestPipelineReturnsOutputsWhenSaveFails(t *testing.T) {
	client := &countingLLM{}
	cache := &failingSaveCache{Cache: openTestCache(t)}
	pipeline := newTestPipeline(t, client, cache, PipelineConfig{Languages: []string{"en"}})

	outputs, err := pipeline.Run(context.Background(), sameSignatureViolations())
	require.NoError(t, err, "a failed flush must not fail the run")

	require.Len(t, outputs, 2)
	for _, out := range outputs {
		assert.Equal(t, "generated text", out.NaturalLanguageText)
		assert.Equal(t, "fake/counting", out.ProvidedBy)
		assert.False(t, out.FromCache)
	}
}

func TestPipelineSkipsUnsignableViolations(t *testing.T) {
	client := &countingLLM{}
	pipeline := newTestPipeline(t, client, openTestCache(t), PipelineConfig{Languages: []string{"en"}})

	bad := violation("MinCountConstraintComponent", validation.TypeCardinality)
	bad.ConstraintID = ""
	good := violation("MinCountConstraintComponent", validation.TypeCardinality)

	outputs, err := pipeline.Run(context.Background(), []validation.ConstraintViolation{bad, good})
	require.NoError(t, err)

	require.Len(t, outputs, 1)
	assert.Equal(t, good.FocusNode, outputs[0].Violation.FocusNode)
}

func TestPipelineEmptyInput(t *testing.T) {
	client := &countingLLM{}
	pipeline := newTestPipeline(t, client, openTestCache(t), PipelineConfig{Languages: []string{"en"}})

	outputs, err := pipeline.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outputs)
	assert.Equal(t, 0, client.callCount())
}
