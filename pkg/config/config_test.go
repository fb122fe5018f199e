// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xshacl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
data_graph: testdata/data.ttl
shapes_graph: testdata/shapes.ttl
report: testdata/report.ttl
cache_dir: /tmp/xshacl-kg
languages: [en, de]
backend: openai
model: gpt-4o-mini
workers: 8
force_refresh: true
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "testdata/data.ttl", cfg.DataGraph)
	assert.Equal(t, "testdata/shapes.ttl", cfg.ShapesGraph)
	assert.Equal(t, "testdata/report.ttl", cfg.Report)
	assert.Equal(t, "/tmp/xshacl-kg", cfg.CacheDir)
	assert.Equal(t, []string{"en", "de"}, cfg.Languages)
	assert.Equal(t, "openai", cfg.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.ForceRefresh)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	// Unset fields keep their defaults.
	assert.Equal(t, 2*time.Minute, cfg.GenerationTimeout)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_graph: d.ttl
shapes_graph: s.ttl
report: r.ttl
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.CacheDir, cfg.CacheDir)
	assert.Equal(t, def.Languages, cfg.Languages)
	assert.Equal(t, def.Backend, cfg.Backend)
	assert.Equal(t, def.Workers, cfg.Workers)
	assert.Equal(t, def.GenerationTimeout, cfg.GenerationTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
data_graph: d.ttl
shapes_graph: s.ttl
report: r.ttl
backend: ollama
model: llama3
`)
	t.Setenv("XSHACL_BACKEND", "openai")
	t.Setenv("XSHACL_MODEL", "gpt-4o-mini")
	t.Setenv("XSHACL_CACHE_DIR", "/tmp/xshacl-env-kg")
	t.Setenv("XSHACL_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "/tmp/xshacl-env-kg", cfg.CacheDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "languages: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_graph is required")
	assert.Contains(t, err.Error(), "shapes_graph is required")
	assert.Contains(t, err.Error(), "report is required")

	cfg.DataGraph = "d.ttl"
	cfg.ShapesGraph = "s.ttl"
	cfg.Report = "r.ttl"
	assert.NoError(t, cfg.Validate())
}
