// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// defaultProviderTimeout bounds each individual provider call. A slow
// geocoder must not hold up the whole aggregation.
const defaultProviderTimeout = 10 * time.Second

// Collector fans a request out to every registered provider, tolerating
// partial failure, and gathers the raw candidates for the engine.
type Collector struct {
	providers []Provider
	refiners  []Refiner
	validator *Validator
	timeout   time.Duration
}

// NewCollector creates a collector over the given providers and refiners.
// Providers run concurrently; refiners run afterwards, seeded with the
// best primary candidate that passes the validator's coordinate and
// poison checks. A nil validator disables seed screening.
func NewCollector(providers []Provider, refiners []Refiner, validator *Validator) *Collector {
	return &Collector{
		providers: providers,
		refiners:  refiners,
		validator: validator,
		timeout:   defaultProviderTimeout,
	}
}

// SetTimeout overrides the per-provider timeout.
func (c *Collector) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Collect invokes all providers for the request and returns their
// candidates plus a record of every provider that failed. The returned
// candidate order is normalized by source priority, so downstream
// aggregation does not depend on call-completion order.
func (c *Collector) Collect(ctx context.Context, req *Request) ([]*Candidate, []ProviderFailure) {
	type outcome struct {
		candidate *Candidate
		failure   *ProviderFailure
	}

	results := make(chan outcome, len(c.providers))

	var wg sync.WaitGroup

	for _, p := range c.providers {
		wg.Add(1)

		go func(p Provider) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			candidate, err := p.Propose(callCtx, req)
			if err != nil {
				results <- outcome{failure: &ProviderFailure{
					Source: p.Kind(),
					Err:    err,
					Reason: err.Error(),
				}}

				return
			}

			results <- outcome{candidate: candidate}
		}(p)
	}

	wg.Wait()
	close(results)

	var (
		candidates []*Candidate
		failures   []ProviderFailure
	)

	for out := range results {
		switch {
		case out.failure != nil:
			log.Printf("Provider %s failed - %s", out.failure.Source, out.failure.Reason)
			failures = append(failures, *out.failure)
		case out.candidate != nil:
			candidates = append(candidates, out.candidate)
		}
	}

	candidates, refineFailures := c.refine(ctx, req, candidates)
	failures = append(failures, refineFailures...)

	normalize(candidates)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Source < failures[j].Source })

	return candidates, failures
}

// refine runs second-phase providers seeded with the best primary
// candidate. With no usable primary candidate there is nothing to refine
// against, so refiners are skipped entirely rather than guessing an area.
func (c *Collector) refine(ctx context.Context, req *Request, candidates []*Candidate) ([]*Candidate, []ProviderFailure) {
	if len(c.refiners) == 0 {
		return candidates, nil
	}

	seed := c.pickSeed(candidates)
	if seed == nil {
		return candidates, nil
	}

	var failures []ProviderFailure

	for _, r := range c.refiners {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)

		candidate, err := r.Refine(callCtx, req, seed)

		cancel()

		if err != nil {
			log.Printf("Refiner %s failed - %v", r.Kind(), err)
			failures = append(failures, ProviderFailure{
				Source: r.Kind(),
				Err:    err,
				Reason: err.Error(),
			})

			continue
		}

		if candidate != nil {
			candidates = append(candidates, candidate)
		}
	}

	return candidates, failures
}

// pickSeed returns the highest-scoring candidate that passes the
// coordinate and poison checks. A poisoned top scorer would aim the
// imagery search at the wrong area, so unsound candidates never seed it,
// no matter how confident their provider was.
func (c *Collector) pickSeed(candidates []*Candidate) *Candidate {
	var seed *Candidate

	for _, cand := range candidates {
		if c.validator != nil && c.validator.ValidatePoint(cand.Point) != nil {
			continue
		}

		if seed == nil || cand.Score() > seed.Score() ||
			(cand.Score() == seed.Score() && cand.Source < seed.Source) {
			seed = cand
		}
	}

	return seed
}

// normalize sorts candidates by source priority, then score, so the list
// is stable for a fixed set of inputs.
func normalize(candidates []*Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Source != candidates[j].Source {
			return candidates[i].Source < candidates[j].Source
		}

		return candidates[i].Score() > candidates[j].Score()
	})
}
