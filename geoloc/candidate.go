// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"fmt"

	"github.com/jcodagnone/fotogeo/spatial"
)

// SourceKind identifies which signal produced a coordinate candidate.
// Declaration order is the trust order: when two candidates score equal,
// the kind declared first wins the tie.
type SourceKind int

const (
	// SourceGpsExif is a GPS fix embedded in the image metadata.
	SourceGpsExif SourceKind = iota
	// SourcePanorama is a street-level panorama comparison match.
	SourcePanorama
	// SourceLocationHint is the caller's free-text hint, geocoded.
	SourceLocationHint
	// SourceReverseImage is a perceptual-hash match against previously
	// geotagged photos.
	SourceReverseImage
	// SourceGeocoderA is the primary geocoding provider (Google Maps).
	SourceGeocoderA
	// SourceSatellite is a satellite-tile comparison match.
	SourceSatellite
	// SourceGeocoderB is the secondary geocoding provider (Nominatim).
	SourceGeocoderB
	// SourceOcrAddress is an address extracted from visible text/signage.
	SourceOcrAddress
	// SourceObjectDetection is a coarse region guess derived from detected
	// objects. Lowest trust, only ever a tiebreaker.
	SourceObjectDetection

	numSourceKinds
)

var sourceNames = map[SourceKind]string{
	SourceGpsExif:         "gps_exif",
	SourcePanorama:        "panorama_analysis",
	SourceLocationHint:    "location_hint",
	SourceReverseImage:    "reverse_image_match",
	SourceGeocoderA:       "geocoder_google",
	SourceSatellite:       "satellite_match",
	SourceGeocoderB:       "geocoder_nominatim",
	SourceOcrAddress:      "ocr_address",
	SourceObjectDetection: "object_detection",
}

func (k SourceKind) String() string {
	if name, ok := sourceNames[k]; ok {
		return name
	}

	return fmt.Sprintf("source(%d)", int(k))
}

// ParseSourceKind maps a persisted source name back to its kind.
func ParseSourceKind(name string) (SourceKind, bool) {
	for kind, n := range sourceNames {
		if n == name {
			return kind, true
		}
	}

	return 0, false
}

// sourceWeights is the static trust weight per source kind. Weights are
// monotonic with trust and independent of the per-candidate confidence
// reported by the provider.
var sourceWeights = map[SourceKind]float64{
	SourceGpsExif:         1.0,
	SourcePanorama:        0.92,
	SourceLocationHint:    0.9,
	SourceReverseImage:    0.87,
	SourceGeocoderA:       0.82,
	SourceSatellite:       0.8,
	SourceGeocoderB:       0.78,
	SourceOcrAddress:      0.76,
	SourceObjectDetection: 0.35,
}

// Weight returns the static trust weight for the source kind.
func (k SourceKind) Weight() float64 {
	return sourceWeights[k]
}

// Candidate is a single location estimate proposed by one provider.
// Candidates are created fresh per request and never mutated.
type Candidate struct {
	Point      spatial.Point  `json:"point"`
	Source     SourceKind     `json:"source"`
	Confidence float64        `json:"confidence"` // provider-reported, in [0, 1]
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Score is the aggregation score: static source weight times the
// provider-reported confidence.
func (c *Candidate) Score() float64 {
	return c.Source.Weight() * c.Confidence
}

// ResolvedLocation is the aggregated answer for one image.
// ContributingSources is non-empty exactly when Validated is true.
type ResolvedLocation struct {
	Point               spatial.Point `json:"point"`
	Confidence          float64       `json:"confidence"`
	PrimarySource       SourceKind    `json:"primary_source"`
	ContributingSources []SourceKind  `json:"contributing_sources"`
	Validated           bool          `json:"validated"`
}

// Contributed reports whether the given source agreed with the chosen point.
func (r *ResolvedLocation) Contributed(kind SourceKind) bool {
	for _, s := range r.ContributingSources {
		if s == kind {
			return true
		}
	}

	return false
}

// Suggestion is an explicitly-labeled fallback: the center of a region
// bucket matched from the hint. It is never a measured result and is never
// merged into a ResolvedLocation.
type Suggestion struct {
	Point  spatial.Point `json:"point"`
	Region string        `json:"region"`
}
