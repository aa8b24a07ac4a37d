// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"log"
	"sort"

	"github.com/jcodagnone/fotogeo/spatial"
)

const (
	// defaultClusterRadius is the great-circle distance, in meters, within
	// which two candidates are considered the same place.
	defaultClusterRadius = 500.0

	// agreementBoost is added to the anchor confidence when at least one
	// other source agrees with it.
	agreementBoost = 0.10

	// memberBoost is added per cluster member beyond the second.
	memberBoost = 0.02

	// regionHintBonus multiplies the confidence when the hint names a known
	// region and the anchor falls inside it.
	regionHintBonus = 1.1
)

// Engine turns a list of candidates into at most one resolved location.
// It is pure, synchronous computation: deterministic for a fixed candidate
// set regardless of the order providers completed in.
type Engine struct {
	validator     *Validator
	regions       *RegionIndex
	clusterRadius float64
}

// NewEngine creates an aggregation engine. regions may be nil; the
// region-hint bonus and suggestions are then disabled.
func NewEngine(validator *Validator, regions *RegionIndex) *Engine {
	return &Engine{
		validator:     validator,
		regions:       regions,
		clusterRadius: defaultClusterRadius,
	}
}

// Resolve aggregates candidates into one answer, or nil when nothing
// survives validation. It never fabricates a coordinate: an empty or fully
// rejected candidate list yields nil, not a fallback.
func (e *Engine) Resolve(candidates []*Candidate, hint string) *ResolvedLocation {
	survivors := e.prefilter(candidates, hint)
	if len(survivors) == 0 {
		return nil
	}

	anchor := pickAnchor(survivors)
	cluster := e.cluster(anchor, survivors)

	point := anchor.Point
	if len(cluster) >= 2 {
		point = weightedCentroid(cluster)
	}

	confidence := blendConfidence(anchor, cluster)
	confidence = e.applyRegionBonus(confidence, point, hint)

	sources := make([]SourceKind, 0, len(cluster))
	for _, c := range cluster {
		sources = append(sources, c.Source)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	resolved := &ResolvedLocation{
		Point:               point,
		Confidence:          confidence,
		PrimarySource:       anchor.Source,
		ContributingSources: sources,
		Validated:           true,
	}

	// The merged centroid cannot leave the cluster's neighborhood, but the
	// post-check keeps the contract honest if the radius ever grows.
	if err := e.validator.ValidateResolved(resolved); err != nil {
		log.Printf("Aggregation result rejected - %v", err)

		return nil
	}

	return resolved
}

// Suggest returns the labeled region-bucket fallback for a hint, or nil.
// A suggestion is diagnostic output only; it never becomes a resolved
// location.
func (e *Engine) Suggest(hint string) *Suggestion {
	if e.regions == nil || !UsableHint(hint) {
		return nil
	}

	region := e.regions.Match(hint)
	if region == nil {
		return nil
	}

	return &Suggestion{
		Point:  region.Center(),
		Region: region.Name,
	}
}

// prefilter drops invalid candidates and logs each rejection for
// diagnostics. Rejection is not an error.
func (e *Engine) prefilter(candidates []*Candidate, hint string) []*Candidate {
	survivors := make([]*Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil {
			continue
		}

		if err := e.validator.Validate(c, hint); err != nil {
			log.Printf("Candidate from %s rejected - %v", c.Source, err)

			continue
		}

		survivors = append(survivors, c)
	}

	return survivors
}

// pickAnchor returns the candidate with the maximum score. Ties break by
// source priority: the kind declared first in SourceKind wins.
func pickAnchor(candidates []*Candidate) *Candidate {
	anchor := candidates[0]

	for _, c := range candidates[1:] {
		if c.Score() > anchor.Score() ||
			(c.Score() == anchor.Score() && c.Source < anchor.Source) {
			anchor = c
		}
	}

	return anchor
}

// cluster gathers every candidate within the proximity radius of the
// anchor, anchor included. At most one candidate per source kind joins:
// a provider cannot agree with itself twice.
func (e *Engine) cluster(anchor *Candidate, candidates []*Candidate) []*Candidate {
	cluster := []*Candidate{anchor}
	seen := map[SourceKind]bool{anchor.Source: true}

	for _, c := range candidates {
		if c == anchor || seen[c.Source] {
			continue
		}

		if anchor.Point.HaversineDistance(&c.Point) <= e.clusterRadius {
			cluster = append(cluster, c)
			seen[c.Source] = true
		}
	}

	return cluster
}

// weightedCentroid computes the score-weighted arithmetic mean of the
// cluster's coordinates. At sub-kilometer scale the arithmetic mean is
// indistinguishable from a true spherical average.
func weightedCentroid(cluster []*Candidate) spatial.Point {
	var sumLat, sumLng, sumScore float64

	for _, c := range cluster {
		score := c.Score()
		sumLat += c.Point.Lat * score
		sumLng += c.Point.Lng * score
		sumScore += score
	}

	if sumScore == 0 {
		return cluster[0].Point
	}

	return spatial.Point{
		Lat: sumLat / sumScore,
		Lng: sumLng / sumScore,
	}
}

// blendConfidence starts from the anchor's own confidence and boosts it for
// cross-source agreement, capped at 1.0.
func blendConfidence(anchor *Candidate, cluster []*Candidate) float64 {
	confidence := anchor.Confidence

	if len(cluster) >= 2 {
		confidence += agreementBoost
		confidence += float64(len(cluster)-2) * memberBoost
	}

	return clamp01(confidence)
}

// applyRegionBonus multiplies the confidence when the hint names a region
// that contains the point. Disagreement is a soft signal only: nothing is
// rejected here.
func (e *Engine) applyRegionBonus(confidence float64, point spatial.Point, hint string) float64 {
	if e.regions == nil || !UsableHint(hint) {
		return confidence
	}

	region := e.regions.Match(hint)
	if region == nil || !region.Contains(point) {
		return confidence
	}

	return clamp01(confidence * regionHintBonus)
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}

	if v < 0 {
		return 0
	}

	return v
}
