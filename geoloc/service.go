// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log"
	"sync"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp" // register decoder
)

// defaultBatchConcurrency bounds how many images a batch call processes at
// once, so rate-limited geocoders are not overwhelmed.
const defaultBatchConcurrency = 4

// Result is the full outcome of one resolve call. Location is nil when no
// candidate survived validation; Suggestion may still name a region bucket
// derived from the hint, explicitly labeled as a non-measured fallback.
type Result struct {
	Location   *ResolvedLocation `json:"location,omitempty"`
	Suggestion *Suggestion       `json:"suggestion,omitempty"`
	Failures   []ProviderFailure `json:"failures,omitempty"`
	Candidates int               `json:"candidates"`
	FromCache  bool              `json:"from_cache"`
}

// BatchOutcome is one independent item of a batch resolve.
type BatchOutcome struct {
	Result *Result
	Err    error
}

// Service is the public entry point: it wires the collector, the
// aggregation engine, the optional cache, and the optional repository.
// All collaborators are injected; nothing is a package-level singleton.
type Service struct {
	collector        *Collector
	engine           *Engine
	cache            *ResultCache
	repo             LocationRepository
	batchConcurrency int
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithCache attaches a result cache.
func WithCache(cache *ResultCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithRepository attaches a repository; resolved locations and their image
// hashes are persisted, feeding the reverse-image index.
func WithRepository(repo LocationRepository) ServiceOption {
	return func(s *Service) { s.repo = repo }
}

// WithBatchConcurrency bounds the batch worker count.
func WithBatchConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// NewService creates a resolve service.
func NewService(collector *Collector, engine *Engine, opts ...ServiceOption) *Service {
	s := &Service{
		collector:        collector,
		engine:           engine,
		batchConcurrency: defaultBatchConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ResolveLocation resolves one image. It returns (nil, nil) when no
// location could be determined; the only error is ErrInvalidImage for an
// unusable image.
func (s *Service) ResolveLocation(ctx context.Context, imageData []byte, hint string) (*ResolvedLocation, error) {
	result, err := s.Resolve(ctx, imageData, hint)
	if err != nil {
		return nil, err
	}

	return result.Location, nil
}

// Resolve resolves one image and returns the full outcome including
// provider failure diagnostics and the optional region suggestion.
func (s *Service) Resolve(ctx context.Context, imageData []byte, hint string) (*Result, error) {
	decoded, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}

	hint = SanitizeHint(hint)

	var key string
	if s.cache != nil {
		key = CacheKey(imageData, hint)
		if cached := s.cache.Get(key); cached != nil {
			return &Result{Location: cached, FromCache: true}, nil
		}
	}

	req := &Request{Image: imageData, Decoded: decoded, Hint: hint}

	candidates, failures := s.collector.Collect(ctx, req)
	resolved := s.engine.Resolve(candidates, hint)

	result := &Result{
		Location:   resolved,
		Failures:   failures,
		Candidates: len(candidates),
	}

	if resolved == nil {
		result.Suggestion = s.engine.Suggest(hint)

		return result, nil
	}

	if s.cache != nil {
		s.cache.Put(key, resolved)
	}

	s.persist(decoded, hint, resolved)

	return result, nil
}

// ResolveLocationBatch applies the single-image contract to each item
// independently, with bounded concurrency. hints may be nil or shorter
// than images; missing hints are treated as empty.
func (s *Service) ResolveLocationBatch(ctx context.Context, images [][]byte, hints []string) []BatchOutcome {
	outcomes := make([]BatchOutcome, len(images))

	var wg sync.WaitGroup

	semaphore := make(chan struct{}, s.batchConcurrency)

	for i := range images {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			hint := ""
			if i < len(hints) {
				hint = hints[i]
			}

			result, err := s.Resolve(ctx, images[i], hint)
			outcomes[i] = BatchOutcome{Result: result, Err: err}
		}(i)
	}

	wg.Wait()

	return outcomes
}

// persist stores the resolved location and the image's perceptual hash so
// future requests can match against it. Persistence failures are logged,
// never surfaced: storage is a side effect of resolution, not part of it.
func (s *Service) persist(decoded image.Image, hint string, resolved *ResolvedLocation) {
	if s.repo == nil {
		return
	}

	record := &ResolvedRecord{
		Point:               resolved.Point,
		Confidence:          resolved.Confidence,
		PrimarySource:       resolved.PrimarySource,
		ContributingSources: resolved.ContributingSources,
		Hint:                hint,
	}

	if err := s.repo.SaveResolved(record); err != nil {
		log.Printf("Saving resolved location failed - %v", err)

		return
	}

	dhash, err := goimagehash.DifferenceHash(decoded)
	if err != nil {
		log.Printf("Hashing image for the geo index failed - %v", err)

		return
	}

	if err := s.repo.SaveGeoImage(&GeoImage{
		Hash:  dhash.GetHash(),
		Point: resolved.Point,
	}); err != nil {
		log.Printf("Saving geo image failed - %v", err)
	}
}

// decodeImage decodes raw image bytes, mapping any decode failure to
// ErrInvalidImage.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidImage)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return img, nil
}
