// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package kg

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "sig/"

// ErrCorruptRecord marks a persisted record that failed to decode.
// Load treats these as misses; they are reported in logs, never
// returned from Load itself.
var ErrCorruptRecord = errors.New("corrupt explanation record")

// Cache is the explanation knowledge base: an in-memory map of
// explanation records with explicit Load/Save persistence through
// BadgerDB.
//
// Description:
//
//	Put follows first-write-wins semantics: once a record exists for a
//	signature and language it is never silently replaced. Callers that
//	explicitly want regeneration use ForceRefresh.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. Load and Save serialize
//	against writers through the same mutex.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]ExplanationRecord
	db      *badger.DB
	logger  *slog.Logger
}

// NewCache creates a cache over an opened store. A nil logger falls
// back to slog.Default().
func NewCache(db *badger.DB, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]ExplanationRecord),
		db:      db,
		logger:  logger,
	}
}

// Has reports whether a record exists for the signature digest and
// language.
func (c *Cache) Has(digest, language string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[recordKey(digest, language)]
	return ok
}

// Get returns the record for the signature digest and language.
func (c *Cache) Get(digest, language string) (ExplanationRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[recordKey(digest, language)]
	return rec, ok
}

// Put stores a record unless one already exists for its signature and
// language. It returns true when the record was stored.
func (c *Cache) Put(rec ExplanationRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := rec.Key()
	if _, exists := c.entries[key]; exists {
		return false
	}
	c.entries[key] = rec
	return true
}

// ForceRefresh stores a record, replacing any existing one for its
// signature and language.
func (c *Cache) ForceRefresh(rec ExplanationRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rec.Key()] = rec
}

// Size returns the number of records currently held.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load reads all persisted records into memory.
//
// Description:
//
//	Records already in memory win over persisted ones, so calling Load
//	twice is a no-op. A value that fails to unmarshal is logged and
//	skipped rather than failing the load; it stays on disk until the
//	next Save overwrites the store.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if _, exists := c.entries[key]; exists {
				continue
			}
			err := item.Value(func(val []byte) error {
				var rec ExplanationRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					c.logger.Warn("Skipping corrupt cache record",
						"key", key,
						"error", fmt.Errorf("%w: %w", ErrCorruptRecord, err))
					return nil
				}
				c.entries[key] = rec
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load explanation cache: %w", err)
	}

	c.logger.Info("Loaded explanation cache", "records", len(c.entries))
	return nil
}

// Save persists the full in-memory state to the store.
func (c *Cache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for key, rec := range c.entries {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal cache record %s: %w", key, err)
		}
		if err := wb.Set([]byte(key), data); err != nil {
			return fmt.Errorf("write cache record %s: %w", key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("save explanation cache: %w", err)
	}

	c.logger.Info("Saved explanation cache", "records", len(c.entries))
	return nil
}

// Clear removes all records from memory and the store.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]ExplanationRecord)
	if err := c.db.DropPrefix([]byte(keyPrefix)); err != nil {
		return fmt.Errorf("clear explanation cache: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}
