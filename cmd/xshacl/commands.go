// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "xshacl",
		Short: "Explainable SHACL validation",
		Long: `xshacl turns SHACL validation reports into human-readable
explanations: it builds a justification tree for each violation,
retrieves domain context from the data and shapes graphs, and generates
natural language explanations through a local or remote LLM backend.
Generated explanations are cached in an embedded knowledge base keyed
by violation signature, so repeated violations never trigger repeated
generation.`,
	}

	explainCmd = &cobra.Command{
		Use:   "explain",
		Short: "Explain the violations in a SHACL validation report",
		Long: `Reads the data graph, shapes graph and validation report,
groups violations by signature, and prints one explanation per
violation per target language as JSON.`,
		RunE: runExplain,
	}

	configPath   string
	dataPath     string
	shapesPath   string
	reportPath   string
	cacheDir     string
	languages    []string
	backend      string
	model        string
	workers      int
	forceRefresh bool
	outputPath   string
	verbose      bool

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Manage the explanation knowledge base",
	}
	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show the number of cached explanation records",
		RunE:  runCacheStats,
	}
	cacheClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "DANGER: Delete all cached explanation records",
		RunE:  runCacheClear,
	}
)

func init() {
	explainCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	explainCmd.Flags().StringVar(&dataPath, "data", "", "Path to the RDF data graph")
	explainCmd.Flags().StringVar(&shapesPath, "shapes", "", "Path to the SHACL shapes graph")
	explainCmd.Flags().StringVar(&reportPath, "report", "", "Path to the SHACL validation report")
	explainCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "BadgerDB directory for the knowledge base")
	explainCmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "Target language tags (repeatable)")
	explainCmd.Flags().StringVar(&backend, "backend", "", "Generation backend: ollama or openai")
	explainCmd.Flags().StringVar(&model, "model", "", "Model override for the backend")
	explainCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent signature workers")
	explainCmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "Regenerate explanations even when cached")
	explainCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write JSON output to a file instead of stdout")
	explainCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cacheStatsCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "BadgerDB directory for the knowledge base")
	cacheClearCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "BadgerDB directory for the knowledge base")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(cacheCmd)
}
