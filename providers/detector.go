// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"image"

	"github.com/jcodagnone/fotogeo/geoloc"
)

// Detection is one labeled box from the object/violation detector.
type Detection struct {
	Category   string
	Confidence float64
	Box        image.Rectangle
	// RegionHint is optional place-name text the detector associated with
	// the object (a recognized city sign, a known landmark label).
	RegionHint string
}

// Detector is the object-detection collaborator. Model internals are out
// of scope: it is a black-box classifier returning labeled boxes.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

// detectionConfidenceScale discounts detector confidence further: even a
// confident landmark detection only narrows the answer to a region center.
const detectionConfidenceScale = 0.8

// DetectionProvider derives a coarse region guess from detected objects.
// It only contributes when a detection's region hint maps to the known
// region table; with no mapping it stays absent rather than defaulting to
// an arbitrary world location.
type DetectionProvider struct {
	detector Detector
	regions  *geoloc.RegionIndex
}

// NewDetectionProvider creates the object-detection provider.
func NewDetectionProvider(detector Detector, regions *geoloc.RegionIndex) *DetectionProvider {
	return &DetectionProvider{detector: detector, regions: regions}
}

func (p *DetectionProvider) Kind() geoloc.SourceKind {
	return geoloc.SourceObjectDetection
}

func (p *DetectionProvider) Propose(ctx context.Context, req *geoloc.Request) (*geoloc.Candidate, error) {
	if p.regions == nil {
		return nil, nil
	}

	detections, err := p.detector.Detect(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	// Pick the most confident detection that maps to a known region.
	best := -1

	for i, d := range detections {
		if d.RegionHint == "" {
			continue
		}

		if p.regions.Match(d.RegionHint) == nil {
			continue
		}

		if best == -1 || d.Confidence > detections[best].Confidence {
			best = i
		}
	}

	if best == -1 {
		return nil, nil
	}

	detection := detections[best]
	region := p.regions.Match(detection.RegionHint)

	return &geoloc.Candidate{
		Point:      region.Center(),
		Source:     geoloc.SourceObjectDetection,
		Confidence: detection.Confidence * detectionConfidenceScale,
		Metadata: map[string]any{
			"category":    detection.Category,
			"region":      region.Name,
			"region_hint": detection.RegionHint,
		},
	}, nil
}
