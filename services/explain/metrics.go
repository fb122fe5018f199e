// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package explain

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for the explanation pipeline.
var (
	tracer = otel.Tracer("xshacl.explain")
	meter  = otel.Meter("xshacl.explain")
)

// Metrics for pipeline runs.
var (
	cacheHits         metric.Int64Counter
	cacheMisses       metric.Int64Counter
	generationCalls   metric.Int64Counter
	generationLatency metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		cacheHits, err = meter.Int64Counter(
			"explanation_cache_hits_total",
			metric.WithDescription("Total number of explanation cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheMisses, err = meter.Int64Counter(
			"explanation_cache_misses_total",
			metric.WithDescription("Total number of explanation cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		generationCalls, err = meter.Int64Counter(
			"explanation_generation_calls_total",
			metric.WithDescription("Total number of LLM generation calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		generationLatency, err = meter.Float64Histogram(
			"explanation_generation_duration_seconds",
			metric.WithDescription("Duration of LLM generation calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordCacheHit records a cache hit metric.
func recordCacheHit(ctx context.Context, language string) {
	if err := initMetrics(); err != nil {
		return
	}
	cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("language", language)))
}

// recordCacheMiss records a cache miss metric.
func recordCacheMiss(ctx context.Context, language string) {
	if err := initMetrics(); err != nil {
		return
	}
	cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("language", language)))
}

// recordGeneration records one generation call and its latency.
func recordGeneration(ctx context.Context, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	generationCalls.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	generationLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("success", success)),
	)
}
