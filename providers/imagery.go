// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"image"

	"github.com/corona10/goimagehash"

	"github.com/jcodagnone/fotogeo/spatial"
)

// hashBits is the size of a difference hash in bits.
const hashBits = 64

// ReferenceImage is one reference tile/panorama frame with the coordinate
// it depicts.
type ReferenceImage struct {
	Image image.Image
	Point spatial.Point
}

// ImageryProvider is the external reference-imagery collaborator: given a
// coordinate and a radius in meters, it returns nearby reference imagery.
// Transport and auth are out of scope.
type ImageryProvider interface {
	FetchNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]ReferenceImage, error)
}

// bestImageryMatch hashes the query image and every reference image and
// returns the closest reference with its similarity in [0, 1].
// Returns (nil, 0) when hashing fails or no reference beats the minimum
// similarity - graceful degradation, never an error.
func bestImageryMatch(query image.Image, refs []ReferenceImage, minSimilarity float64) (*ReferenceImage, float64) {
	queryHash, err := goimagehash.DifferenceHash(query)
	if err != nil {
		return nil, 0
	}

	var (
		best           *ReferenceImage
		bestSimilarity float64
	)

	for i := range refs {
		refHash, err := goimagehash.DifferenceHash(refs[i].Image)
		if err != nil {
			continue
		}

		dist, err := queryHash.Distance(refHash)
		if err != nil {
			continue
		}

		similarity := 1 - float64(dist)/hashBits
		if similarity > bestSimilarity {
			best = &refs[i]
			bestSimilarity = similarity
		}
	}

	if best == nil || bestSimilarity < minSimilarity {
		return nil, 0
	}

	return best, bestSimilarity
}
