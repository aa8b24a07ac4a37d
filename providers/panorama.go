// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"

	"github.com/jcodagnone/fotogeo/geoloc"
)

const (
	// panoramaSearchRadius is tighter than the satellite radius: street
	// panoramas only make sense within walking distance of the seed.
	panoramaSearchRadius = 300.0

	// panoramaMinSimilarity is stricter than the satellite floor because a
	// street-level match carries near-GPS trust.
	panoramaMinSimilarity = 0.8
)

// PanoramaProvider compares the query photo against street-level panorama
// frames near an already-proposed coordinate. Like the satellite
// comparator it is a refiner, but a strong panorama match pins the exact
// spot, so its source kind carries near-GPS weight.
type PanoramaProvider struct {
	imagery ImageryProvider
}

// NewPanoramaProvider creates the panorama comparison refiner.
func NewPanoramaProvider(imagery ImageryProvider) *PanoramaProvider {
	return &PanoramaProvider{imagery: imagery}
}

func (p *PanoramaProvider) Kind() geoloc.SourceKind {
	return geoloc.SourcePanorama
}

func (p *PanoramaProvider) Refine(ctx context.Context, req *geoloc.Request, seed *geoloc.Candidate) (*geoloc.Candidate, error) {
	if seed == nil || req.Decoded == nil {
		return nil, nil
	}

	refs, err := p.imagery.FetchNearby(ctx, seed.Point.Lat, seed.Point.Lng, panoramaSearchRadius)
	if err != nil {
		return nil, err
	}

	match, similarity := bestImageryMatch(req.Decoded, refs, panoramaMinSimilarity)
	if match == nil {
		return nil, nil
	}

	return &geoloc.Candidate{
		Point:      match.Point,
		Source:     geoloc.SourcePanorama,
		Confidence: similarity,
		Metadata: map[string]any{
			"similarity": similarity,
			"seed":       seed.Source.String(),
		},
	}, nil
}
