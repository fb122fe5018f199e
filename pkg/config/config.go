// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config provides YAML configuration loading for xshacl runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxYAMLFileSize is the maximum allowed config file size (1MB).
// Prevents memory issues from large files.
const MaxYAMLFileSize = 1024 * 1024

// Config holds everything one explanation run needs: input graph paths,
// the knowledge base location, target languages and backend settings.
type Config struct {
	// DataGraph is the path to the validated RDF data graph.
	DataGraph string `yaml:"data_graph"`

	// ShapesGraph is the path to the SHACL shapes graph.
	ShapesGraph string `yaml:"shapes_graph"`

	// Report is the path to the SHACL validation report graph.
	Report string `yaml:"report"`

	// CacheDir is the BadgerDB directory for the explanation knowledge
	// base.
	CacheDir string `yaml:"cache_dir"`

	// Languages are the target language tags for explanations.
	Languages []string `yaml:"languages"`

	// Backend selects the generation backend: "ollama" or "openai".
	Backend string `yaml:"backend"`

	// Model overrides the backend's default model.
	Model string `yaml:"model"`

	// Workers bounds concurrent signature processing.
	Workers int `yaml:"workers"`

	// GenerationTimeout bounds each backend call pair.
	GenerationTimeout time.Duration `yaml:"generation_timeout"`

	// ForceRefresh regenerates explanations even when cached.
	ForceRefresh bool `yaml:"force_refresh"`

	Log LogConfig `yaml:"log"`
}

// LogConfig mirrors pkg/logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
	Quiet bool   `yaml:"quiet"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CacheDir:          "~/.xshacl/kg",
		Languages:         []string{"en"},
		Backend:           "ollama",
		Workers:           4,
		GenerationTimeout: 2 * time.Minute,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.Size() > MaxYAMLFileSize {
		return Config{}, fmt.Errorf("config %s exceeds %d bytes", path, MaxYAMLFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv overrides file values with XSHACL_* environment variables.
// Environment ranks above the file and below command-line flags.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("XSHACL_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("XSHACL_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("XSHACL_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("XSHACL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if len(c.Languages) == 0 {
		c.Languages = def.Languages
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.Workers < 1 {
		c.Workers = def.Workers
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = def.GenerationTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate checks that the config names the three required input
// graphs.
func (c Config) Validate() error {
	var errs []error
	if c.DataGraph == "" {
		errs = append(errs, errors.New("data_graph is required"))
	}
	if c.ShapesGraph == "" {
		errs = append(errs, errors.New("shapes_graph is required"))
	}
	if c.Report == "" {
		errs = append(errs, errors.New("report is required"))
	}
	return errors.Join(errs...)
}
