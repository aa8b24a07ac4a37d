// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/fotogeo/spatial"
)

func TestCacheKeyDependsOnImageAndHint(t *testing.T) {
	imageA := []byte("imagebytes-a")
	imageB := []byte("imagebytes-b")

	assert.Equal(t, CacheKey(imageA, "Moscow"), CacheKey(imageA, "  MOSCOW "))
	assert.NotEqual(t, CacheKey(imageA, "Moscow"), CacheKey(imageA, "Kazan"))
	assert.NotEqual(t, CacheKey(imageA, "Moscow"), CacheKey(imageB, "Moscow"))
}

func TestResultCachePutGet(t *testing.T) {
	cache := NewResultCache()
	key := CacheKey([]byte("img"), "hint")

	assert.Nil(t, cache.Get(key))

	resolved := &ResolvedLocation{
		Point:               spatial.Point{Lat: 55.7558, Lng: 37.6176},
		Confidence:          0.9,
		PrimarySource:       SourceGpsExif,
		ContributingSources: []SourceKind{SourceGpsExif},
		Validated:           true,
	}

	cache.Put(key, resolved)
	require.Equal(t, 1, cache.Len())

	got := cache.Get(key)
	require.NotNil(t, got)
	assert.Equal(t, resolved, got)

	// The cached entry is isolated from caller mutation.
	got.ContributingSources[0] = SourceOcrAddress

	again := cache.Get(key)
	assert.Equal(t, SourceGpsExif, again.ContributingSources[0])
}

func TestResultCacheIgnoresUnvalidated(t *testing.T) {
	cache := NewResultCache()
	key := CacheKey([]byte("img"), "")

	cache.Put(key, nil)
	cache.Put(key, &ResolvedLocation{Validated: false})

	assert.Zero(t, cache.Len())
	assert.Nil(t, cache.Get(key))
}
