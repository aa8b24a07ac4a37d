// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"

	"github.com/jcodagnone/fotogeo/geoloc"
	"github.com/jcodagnone/fotogeo/spatial"
)

// SearchProvider turns a map-search geocoder into a candidate source.
// Each external geocoding API is registered as its own SearchProvider so
// their agreement or conflict is resolved in the aggregation engine, never
// merged inside one adapter.
type SearchProvider struct {
	kind     geoloc.SourceKind
	geocoder Geocoder
}

// NewSearchProvider wraps a geocoder under the given source kind
// (SourceGeocoderA, SourceGeocoderB).
func NewSearchProvider(kind geoloc.SourceKind, geocoder Geocoder) *SearchProvider {
	return &SearchProvider{kind: kind, geocoder: geocoder}
}

func (p *SearchProvider) Kind() geoloc.SourceKind {
	return p.kind
}

// Propose geocodes the request hint. A placeholder hint never reaches the
// geocoder; no match is expected absence.
func (p *SearchProvider) Propose(ctx context.Context, req *geoloc.Request) (*geoloc.Candidate, error) {
	if !geoloc.UsableHint(req.Hint) {
		return nil, nil
	}

	result, err := p.geocoder.Geocode(ctx, geoloc.SanitizeHint(req.Hint))
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	return &geoloc.Candidate{
		Point:      spatial.Point{Lat: result.Latitude, Lng: result.Longitude},
		Source:     p.kind,
		Confidence: result.Confidence,
		Metadata: map[string]any{
			"provider":     result.Provider,
			"display_name": result.DisplayName,
			"query":        geoloc.SanitizeHint(req.Hint),
		},
	}, nil
}

// HintProvider geocodes a precise caller-supplied location hint under the
// high-trust SourceLocationHint kind. Meant for deployments where the hint
// field carries a structured address rather than free text.
type HintProvider struct {
	geocoder Geocoder
}

// NewHintProvider creates a location-hint provider over one geocoder.
func NewHintProvider(geocoder Geocoder) *HintProvider {
	return &HintProvider{geocoder: geocoder}
}

func (p *HintProvider) Kind() geoloc.SourceKind {
	return geoloc.SourceLocationHint
}

func (p *HintProvider) Propose(ctx context.Context, req *geoloc.Request) (*geoloc.Candidate, error) {
	if !geoloc.UsableHint(req.Hint) {
		return nil, nil
	}

	result, err := p.geocoder.Geocode(ctx, geoloc.SanitizeHint(req.Hint))
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	return &geoloc.Candidate{
		Point:      spatial.Point{Lat: result.Latitude, Lng: result.Longitude},
		Source:     geoloc.SourceLocationHint,
		Confidence: result.Confidence,
		Metadata: map[string]any{
			"provider":     result.Provider,
			"display_name": result.DisplayName,
		},
	}, nil
}
