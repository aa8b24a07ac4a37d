// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"context"
	"image"
)

// Request carries one image and the caller's optional free-text hint
// through the provider fan-out. Decoded is populated once by the service
// so providers that need pixels do not re-decode.
type Request struct {
	Image   []byte
	Decoded image.Image
	Hint    string
}

// Provider is the uniform adapter contract for a signal source.
//
// Propose returns (nil, nil) for expected absence: no GPS tag, zero search
// results, no matching index entry. An error means the provider failed
// unexpectedly; the collector records it and continues without the
// provider. Propose must honor ctx cancellation.
type Provider interface {
	Kind() SourceKind
	Propose(ctx context.Context, req *Request) (*Candidate, error)
}

// Refiner is a second-phase provider that needs an approximate coordinate
// to have an area to search in. Satellite and panorama comparison are
// refiners: without a seed there is no tile to fetch.
type Refiner interface {
	Kind() SourceKind
	Refine(ctx context.Context, req *Request, seed *Candidate) (*Candidate, error)
}

// ProviderFailure records one provider that produced no candidate because
// of an unexpected error. Diagnostics only: failures never stop
// aggregation.
type ProviderFailure struct {
	Source SourceKind `json:"source"`
	Err    error      `json:"-"`
	Reason string     `json:"reason"`
}
