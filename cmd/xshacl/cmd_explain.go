// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/xshacl/pkg/config"
	"github.com/AleutianAI/xshacl/pkg/logging"
	"github.com/AleutianAI/xshacl/services/explain"
	"github.com/AleutianAI/xshacl/services/kg"
	"github.com/AleutianAI/xshacl/services/llm"
	"github.com/AleutianAI/xshacl/services/rdf"
	"github.com/AleutianAI/xshacl/services/validation"
)

// resolveConfig layers flag overrides on top of the config file (or the
// defaults when no file is given).
func resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}

	if dataPath != "" {
		cfg.DataGraph = dataPath
	}
	if shapesPath != "" {
		cfg.ShapesGraph = shapesPath
	}
	if reportPath != "" {
		cfg.Report = reportPath
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if len(languages) > 0 {
		cfg.Languages = languages
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if model != "" {
		cfg.Model = model
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if forceRefresh {
		cfg.ForceRefresh = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setupLogging installs the configured logger as the process default.
func setupLogging(cfg config.Config) *logging.Logger {
	level := logging.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	if verbose {
		level = logging.LevelDebug
	}

	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Log.Dir,
		Service: "xshacl",
		JSON:    cfg.Log.JSON,
		Quiet:   cfg.Log.Quiet,
	})
	slog.SetDefault(logger.Slog())
	return logger
}

// expandHome expands a leading ~ in the cache directory.
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func runExplain(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	logger := setupLogging(cfg)
	defer logger.Close()

	dataGraph, err := rdf.ParseFile(cfg.DataGraph)
	if err != nil {
		return fmt.Errorf("load data graph: %w", err)
	}
	shapesGraph, err := rdf.ParseFile(cfg.ShapesGraph)
	if err != nil {
		return fmt.Errorf("load shapes graph: %w", err)
	}
	reportGraph, err := rdf.ParseFile(cfg.Report)
	if err != nil {
		return fmt.Errorf("load validation report: %w", err)
	}

	violations := validation.NewExtractor(shapesGraph, logger.Slog()).Extract(reportGraph)
	if len(violations) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Data conforms: no violations found.")
		return nil
	}
	logger.Info("Extracted violations from report", "count", len(violations))

	db, err := kg.OpenStore(kg.DefaultStoreConfig(expandHome(cfg.CacheDir)))
	if err != nil {
		return fmt.Errorf("open knowledge base: %w", err)
	}
	defer db.Close()

	cache := kg.NewCache(db, logger.Slog())
	if err := cache.Load(); err != nil {
		return err
	}

	client, err := llm.NewClient(cfg.Backend, cfg.Model)
	if err != nil {
		return err
	}

	pipeline, err := explain.NewPipeline(dataGraph, shapesGraph, client, cache, logger.Slog(), explain.PipelineConfig{
		Languages:         cfg.Languages,
		Workers:           cfg.Workers,
		GenerationTimeout: cfg.GenerationTimeout,
		ForceRefresh:      cfg.ForceRefresh,
	})
	if err != nil {
		return err
	}

	outputs, err := pipeline.Run(cmd.Context(), violations)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, append(encoded, '\n'), 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", outputPath, err)
		}
		logger.Info("Wrote explanations", "path", outputPath, "count", len(outputs))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
