// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"

	"github.com/jcodagnone/fotogeo/geoloc"
)

const (
	// satelliteSearchRadius is how far around the seed coordinate to fetch
	// reference tiles, in meters.
	satelliteSearchRadius = 1000.0

	// satelliteMinSimilarity is the floor below which a tile match is
	// noise rather than a signal.
	satelliteMinSimilarity = 0.7
)

// SatelliteProvider compares the query photo against satellite tiles near
// an already-proposed coordinate. It is a refiner: without a seed there is
// no area to search in.
type SatelliteProvider struct {
	imagery ImageryProvider
}

// NewSatelliteProvider creates the satellite comparison refiner.
func NewSatelliteProvider(imagery ImageryProvider) *SatelliteProvider {
	return &SatelliteProvider{imagery: imagery}
}

func (p *SatelliteProvider) Kind() geoloc.SourceKind {
	return geoloc.SourceSatellite
}

// Refine fetches tiles around the seed and proposes the best perceptual
// match. No tile similar enough is expected absence.
func (p *SatelliteProvider) Refine(ctx context.Context, req *geoloc.Request, seed *geoloc.Candidate) (*geoloc.Candidate, error) {
	if seed == nil || req.Decoded == nil {
		return nil, nil
	}

	refs, err := p.imagery.FetchNearby(ctx, seed.Point.Lat, seed.Point.Lng, satelliteSearchRadius)
	if err != nil {
		return nil, err
	}

	match, similarity := bestImageryMatch(req.Decoded, refs, satelliteMinSimilarity)
	if match == nil {
		return nil, nil
	}

	return &geoloc.Candidate{
		Point:      match.Point,
		Source:     geoloc.SourceSatellite,
		Confidence: similarity,
		Metadata: map[string]any{
			"similarity": similarity,
			"seed":       seed.Source.String(),
		},
	}, nil
}
