// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package perldoc

import (
	"strings"
	"sync"
)

// Cache stores lookup results for the lifetime chosen by the caller.
type Cache interface {
	Get(key string) (*LookupResult, bool)
	Put(key string, result *LookupResult)
}

// MemoryCache is a map-backed Cache.
//
// Thread Safety: Safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*LookupResult
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*LookupResult)}
}

// Get returns the cached result for key.
func (c *MemoryCache) Get(key string) (*LookupResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// Put stores result under key.
func (c *MemoryCache) Put(key string, result *LookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(term string, modes []Mode) string {
	var b strings.Builder
	for _, m := range modes {
		b.WriteString(m.String())
		b.WriteByte(',')
	}
	b.WriteString(term)
	return b.String()
}

var _ Cache = (*MemoryCache)(nil)
