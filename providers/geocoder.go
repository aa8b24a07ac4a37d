// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import "context"

// GeocodingResult represents a geocoding result from any provider.
type GeocodingResult struct {
	Latitude    float64
	Longitude   float64
	Confidence  float64 // in [0, 1]
	Provider    string
	DisplayName string
}

// Geocoder interface for different geocoding providers. A nil result with
// a nil error means the query produced no match.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeocodingResult, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
