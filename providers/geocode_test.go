// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/fotogeo/geoloc"
)

func TestSearchProviderGeocodesHint(t *testing.T) {
	geocoder := &fakeGeocoder{
		result: &GeocodingResult{
			Latitude:    55.7558,
			Longitude:   37.6176,
			Confidence:  0.9,
			Provider:    "google_maps",
			DisplayName: "Red Square, Moscow, Russia",
		},
	}
	provider := NewSearchProvider(geoloc.SourceGeocoderA, geocoder)

	assert.Equal(t, geoloc.SourceGeocoderA, provider.Kind())

	candidate, err := provider.Propose(context.Background(), &geoloc.Request{Hint: "  Red Square, Moscow  "})
	require.NoError(t, err)
	require.NotNil(t, candidate)

	assert.Equal(t, geoloc.SourceGeocoderA, candidate.Source)
	assert.Equal(t, moscowPoint, candidate.Point)
	assert.InDelta(t, 0.9, candidate.Confidence, 1e-9)

	require.Len(t, geocoder.queries, 1)
	assert.Equal(t, "Red Square, Moscow", geocoder.queries[0])
}

func TestSearchProviderSkipsPlaceholderHints(t *testing.T) {
	placeholders := []string{
		"",
		"   ",
		"none",
		"NULL",
		"unknown",
		"n/a",
		"detected objects",
		"не определено",
		"...",
	}

	geocoder := &fakeGeocoder{result: &GeocodingResult{Latitude: 1, Longitude: 1}}
	provider := NewSearchProvider(geoloc.SourceGeocoderB, geocoder)

	for _, hint := range placeholders {
		candidate, err := provider.Propose(context.Background(), &geoloc.Request{Hint: hint})
		require.NoError(t, err)
		assert.Nil(t, candidate, "hint %q must not produce a candidate", hint)
	}

	// None of the placeholders reached the geocoder.
	assert.Empty(t, geocoder.queries)
}

func TestSearchProviderAbsentOnNoMatch(t *testing.T) {
	provider := NewSearchProvider(geoloc.SourceGeocoderA, &fakeGeocoder{})

	candidate, err := provider.Propose(context.Background(), &geoloc.Request{Hint: "somewhere on Mars"})
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestHintProviderKind(t *testing.T) {
	geocoder := &fakeGeocoder{
		result: &GeocodingResult{Latitude: 55.7558, Longitude: 37.6176, Confidence: 0.95},
	}
	provider := NewHintProvider(geocoder)

	candidate, err := provider.Propose(context.Background(), &geoloc.Request{Hint: "Тверская улица 1, Москва"})
	require.NoError(t, err)
	require.NotNil(t, candidate)

	assert.Equal(t, geoloc.SourceLocationHint, candidate.Source)
	assert.Equal(t, geoloc.SourceLocationHint, provider.Kind())
}
