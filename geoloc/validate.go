// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"fmt"
	"math"

	"github.com/jcodagnone/fotogeo/spatial"
)

// poisonEpsilon is the per-axis tolerance, in degrees, when comparing a
// candidate against a known-bad default point.
const poisonEpsilon = 0.1

// Validator sanity-checks coordinates. It is pure: no I/O, no clock, no
// network. Used both as a pre-filter on candidates and a post-check on the
// aggregation output.
type Validator struct {
	regions *RegionIndex
	poison  []spatial.Point
}

// DefaultPoisonPoints lists coordinates that must always be rejected. The
// Beijing point is the fallback a previous resolver hard-coded whenever
// every signal failed; images stamped with it are artifacts of that bug,
// never real answers.
func DefaultPoisonPoints() []spatial.Point {
	return []spatial.Point{
		{Lat: 39.9042, Lng: 116.4074}, // Beijing city center
	}
}

// NewValidator creates a validator with the given region table and poison
// list. Both may be nil/empty.
func NewValidator(regions *RegionIndex, poison []spatial.Point) *Validator {
	return &Validator{regions: regions, poison: poison}
}

// ValidateCoordinates checks global range bounds and the degenerate (0,0)
// point.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return fmt.Errorf("coordinates are not finite: (%f, %f)", lat, lng)
	}

	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f)", lng)
	}

	if lat == 0 && lng == 0 {
		return fmt.Errorf("null island (0, 0) is not a real location")
	}

	return nil
}

// IsPoisoned reports whether the point matches a known-bad default within
// the poison epsilon.
func (v *Validator) IsPoisoned(p spatial.Point) bool {
	for i := range v.poison {
		if math.Abs(p.Lat-v.poison[i].Lat) <= poisonEpsilon &&
			math.Abs(p.Lng-v.poison[i].Lng) <= poisonEpsilon {
			return true
		}
	}

	return false
}

// ValidatePoint checks range bounds and the poison list. It carries no
// hint-derived region advice, so it applies to any point regardless of
// which source produced it.
func (v *Validator) ValidatePoint(p spatial.Point) error {
	if err := ValidateCoordinates(p.Lat, p.Lng); err != nil {
		return err
	}

	if v.IsPoisoned(p) {
		return fmt.Errorf("point %s matches a known-bad default coordinate", p.String())
	}

	return nil
}

// Validate checks a candidate against range bounds, the poison list, and
// the advisory region bound derived from the hint.
//
// The region check is advisory: it only rejects low-trust candidates.
// A GPS fix or panorama match outside the hinted region survives, because
// a mistyped hint must never throw away direct sensor data.
func (v *Validator) Validate(c *Candidate, hint string) error {
	if err := v.ValidatePoint(c.Point); err != nil {
		return err
	}

	if c.Source == SourceGpsExif || c.Source == SourcePanorama {
		return nil
	}

	if v.regions != nil && UsableHint(hint) {
		if region := v.regions.Match(hint); region != nil && !region.Contains(c.Point) {
			return fmt.Errorf("point %s is outside the hinted region %q", c.Point.String(), region.Name)
		}
	}

	return nil
}

// ValidateResolved post-checks an aggregation result. Region advice does
// not apply here; the result inherits its candidates' region checks.
func (v *Validator) ValidateResolved(r *ResolvedLocation) error {
	if r == nil {
		return fmt.Errorf("resolved location is nil")
	}

	return v.ValidatePoint(r.Point)
}
