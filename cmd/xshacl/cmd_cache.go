// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/xshacl/pkg/config"
	"github.com/AleutianAI/xshacl/services/kg"
)

// openCache opens the knowledge base at the flagged or default
// directory and loads it.
func openCache() (*kg.Cache, error) {
	dir := cacheDir
	if dir == "" {
		dir = config.Default().CacheDir
	}

	db, err := kg.OpenStore(kg.DefaultStoreConfig(expandHome(dir)))
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}

	cache := kg.NewCache(db, nil)
	if err := cache.Load(); err != nil {
		cache.Close()
		return nil, err
	}
	return cache, nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Cached explanation records: %d\n", cache.Size())
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	before := cache.Size()
	if err := cache.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d explanation records.\n", before)
	return nil
}
