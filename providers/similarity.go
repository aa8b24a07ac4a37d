// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"

	"github.com/corona10/goimagehash"

	"github.com/jcodagnone/fotogeo/geoloc"
)

const (
	// similarityMaxDistance is the maximum Hamming distance between
	// difference hashes for two photos to count as the same place.
	similarityMaxDistance = 12

	// similarityBaseConfidence scales the hash similarity into candidate
	// confidence: even an exact hash match is circumstantial.
	similarityBaseConfidence = 0.9
)

// GeoImageSource is the slice of the repository the similarity provider
// needs: the geotagged-image index.
type GeoImageSource interface {
	AllGeoImages() ([]*geoloc.GeoImage, error)
}

// SimilarityProvider matches the query photo against previously geotagged
// photos by perceptual hash. A close match means the same scene was
// already located once, so its stored coordinate becomes a candidate.
type SimilarityProvider struct {
	index GeoImageSource
}

// NewSimilarityProvider creates the reverse-image provider over the
// geotagged-image index.
func NewSimilarityProvider(index GeoImageSource) *SimilarityProvider {
	return &SimilarityProvider{index: index}
}

func (p *SimilarityProvider) Kind() geoloc.SourceKind {
	return geoloc.SourceReverseImage
}

func (p *SimilarityProvider) Propose(_ context.Context, req *geoloc.Request) (*geoloc.Candidate, error) {
	if req.Decoded == nil {
		return nil, nil
	}

	queryHash, err := goimagehash.DifferenceHash(req.Decoded)
	if err != nil {
		// Unhashable image: nothing to match against.
		return nil, nil
	}

	images, err := p.index.AllGeoImages()
	if err != nil {
		return nil, err
	}

	var (
		best     *geoloc.GeoImage
		bestDist = similarityMaxDistance + 1
	)

	for _, img := range images {
		stored := goimagehash.NewImageHash(img.Hash, goimagehash.DHash)

		dist, err := queryHash.Distance(stored)
		if err != nil {
			continue
		}

		if dist < bestDist {
			best = img
			bestDist = dist
		}
	}

	if best == nil {
		return nil, nil
	}

	similarity := 1 - float64(bestDist)/hashBits

	return &geoloc.Candidate{
		Point:      best.Point,
		Source:     geoloc.SourceReverseImage,
		Confidence: similarity * similarityBaseConfidence,
		Metadata: map[string]any{
			"matched_image_id": best.DbID,
			"hash_distance":    bestDist,
		},
	}, nil
}
