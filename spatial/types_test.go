// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        Point
		b        Point
		expected float64 // meters
		delta    float64
	}{
		{
			"same point",
			Point{Lat: 55.7558, Lng: 37.6176},
			Point{Lat: 55.7558, Lng: 37.6176},
			0, 0.001,
		},
		{
			"red square to bolshoi",
			Point{Lat: 55.7539, Lng: 37.6208},
			Point{Lat: 55.7601, Lng: 37.6186},
			700, 50,
		},
		{
			"moscow to saint petersburg",
			Point{Lat: 55.7558, Lng: 37.6176},
			Point{Lat: 59.9311, Lng: 30.3609},
			634000, 5000,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.a.HaversineDistance(&tc.b)
			assert.InDelta(t, tc.expected, d, tc.delta)

			// Symmetric
			assert.InDelta(t, d, tc.b.HaversineDistance(&tc.a), 0.001)
		})
	}
}

func TestPointScan(t *testing.T) {
	var p Point

	require.NoError(t, p.Scan([]byte("POINT (37.617600 55.755800)")))
	assert.InDelta(t, 55.7558, p.Lat, 1e-6)
	assert.InDelta(t, 37.6176, p.Lng, 1e-6)

	require.NoError(t, p.Scan(map[string]interface{}{"x": 30.3609, "y": 59.9311}))
	assert.InDelta(t, 59.9311, p.Lat, 1e-6)
	assert.InDelta(t, 30.3609, p.Lng, 1e-6)

	require.NoError(t, p.Scan(nil))
	assert.Zero(t, p.Lat)
	assert.Zero(t, p.Lng)

	assert.Error(t, p.Scan(42))
	assert.Error(t, p.Scan(map[string]interface{}{"x": "nope"}))
}

func TestPointValue(t *testing.T) {
	p := Point{Lat: 55.7558, Lng: 37.6176}

	v, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, "POINT(37.617600 55.755800)", v)
}

func TestRegionContains(t *testing.T) {
	moscow := Region{Name: "Moscow", MinLat: 55.1, MaxLat: 56.1, MinLng: 36.8, MaxLng: 38.5}

	assert.True(t, moscow.Contains(Point{Lat: 55.7558, Lng: 37.6176}))
	assert.True(t, moscow.Contains(Point{Lat: 55.1, Lng: 36.8})) // boundary is inside
	assert.False(t, moscow.Contains(Point{Lat: 59.9311, Lng: 30.3609}))
	assert.False(t, moscow.Contains(Point{Lat: 55.7558, Lng: 40.0}))
}

func TestRegionCenter(t *testing.T) {
	r := Region{MinLat: 55.0, MaxLat: 56.0, MinLng: 37.0, MaxLng: 39.0}

	center := r.Center()
	assert.InDelta(t, 55.5, center.Lat, 1e-9)
	assert.InDelta(t, 38.0, center.Lng, 1e-9)

	assert.True(t, r.Contains(center))
}
