// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/jcodagnone/fotogeo/utils"
)

// ResultCache memoizes successful resolutions, keyed by image content hash
// plus the folded hint. It is best-effort: a miss always means "compute
// fresh", and entries are only written after a validated resolution.
// Safe for concurrent use.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*ResolvedLocation
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]*ResolvedLocation),
	}
}

// CacheKey derives the cache key for an image and hint. The same photo
// with a different usable hint resolves independently.
func CacheKey(image []byte, hint string) string {
	sum := sha256.Sum256(image)

	return hex.EncodeToString(sum[:]) + "|" + utils.LowerASCIIFolding(hint)
}

// Get returns the cached resolution for the key, or nil.
func (c *ResultCache) Get(key string) *ResolvedLocation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.entries[key]; ok {
		clone := *cached
		clone.ContributingSources = append([]SourceKind(nil), cached.ContributingSources...)

		return &clone
	}

	return nil
}

// Put stores a resolution. Nil and unvalidated results are ignored.
func (c *ResultCache) Put(key string, resolved *ResolvedLocation) {
	if resolved == nil || !resolved.Validated {
		return
	}

	clone := *resolved
	clone.ContributingSources = append([]SourceKind(nil), resolved.ContributingSources...)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &clone
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
