// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/fotogeo/spatial"
)

// testPNG encodes a small solid-color image, enough for the decoder and
// the perceptual hasher.
func testPNG(t *testing.T, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer

	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// memoryRepository records persistence calls without a database.
type memoryRepository struct {
	resolved []*ResolvedRecord
	images   []*GeoImage
	saveErr  error
}

func (r *memoryRepository) CreateSchema() error { return nil }

func (r *memoryRepository) SaveResolved(record *ResolvedRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}

	r.resolved = append(r.resolved, record)

	return nil
}

func (r *memoryRepository) ListResolved(limit, offset int) ([]*ResolvedRecord, error) {
	if offset >= len(r.resolved) {
		return nil, nil
	}

	end := offset + limit
	if limit <= 0 || end > len(r.resolved) {
		end = len(r.resolved)
	}

	return r.resolved[offset:end], nil
}

func (r *memoryRepository) CountResolved() (int, error) { return len(r.resolved), nil }

func (r *memoryRepository) SaveGeoImage(img *GeoImage) error {
	r.images = append(r.images, img)

	return nil
}

func (r *memoryRepository) AllGeoImages() ([]*GeoImage, error) { return r.images, nil }

func (r *memoryRepository) NearbyGeoImages(spatial.Point) ([]*GeoImage, error) {
	return r.images, nil
}

func (r *memoryRepository) DB() *sql.DB { return nil }

func newTestService(providers []Provider, opts ...ServiceOption) *Service {
	return NewService(NewCollector(providers, nil, nil), newTestEngine(), opts...)
}

func TestResolveRejectsInvalidImage(t *testing.T) {
	service := newTestService(nil)

	testCases := []struct {
		name  string
		image []byte
	}{
		{"empty", nil},
		{"not an image", []byte("definitely not an image")},
		{"truncated png", testPNG(t, color.White)[:8]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Resolve(context.Background(), tc.image, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestResolveReturnsLocation(t *testing.T) {
	gps := &stubProvider{
		kind:      SourceGpsExif,
		candidate: &Candidate{Point: spatial.Point{Lat: 55.7558, Lng: 37.6176}, Source: SourceGpsExif, Confidence: 0.97},
	}
	service := newTestService([]Provider{gps})

	result, err := service.Resolve(context.Background(), testPNG(t, color.White), "")
	require.NoError(t, err)
	require.NotNil(t, result.Location)

	assert.Equal(t, SourceGpsExif, result.Location.PrimarySource)
	assert.Equal(t, 1, result.Candidates)
	assert.False(t, result.FromCache)
	assert.Empty(t, result.Failures)
}

func TestResolveNoLocationIsNotAnError(t *testing.T) {
	service := newTestService(nil)

	resolved, err := service.ResolveLocation(context.Background(), testPNG(t, color.White), "")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolveSuggestionOnMiss(t *testing.T) {
	service := newTestService(nil)

	result, err := service.Resolve(context.Background(), testPNG(t, color.White), "где-то в Казани, точно Казань")
	require.NoError(t, err)

	assert.Nil(t, result.Location)
	require.NotNil(t, result.Suggestion)
	assert.Equal(t, "Kazan", result.Suggestion.Region)
}

func TestResolveCacheHit(t *testing.T) {
	gps := &stubProvider{
		kind:      SourceGpsExif,
		candidate: &Candidate{Point: spatial.Point{Lat: 55.7558, Lng: 37.6176}, Source: SourceGpsExif, Confidence: 0.97},
	}
	service := newTestService([]Provider{gps}, WithCache(NewResultCache()))

	img := testPNG(t, color.White)

	first, err := service.Resolve(context.Background(), img, "Moscow")
	require.NoError(t, err)
	require.NotNil(t, first.Location)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, gps.calls)

	second, err := service.Resolve(context.Background(), img, "  MOSCOW  ")
	require.NoError(t, err)
	require.NotNil(t, second.Location)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Location.Point, second.Location.Point)

	// The provider was not consulted again.
	assert.Equal(t, 1, gps.calls)

	// A different hint is a different request.
	_, err = service.Resolve(context.Background(), img, "Kazan")
	require.NoError(t, err)
	assert.Equal(t, 2, gps.calls)
}

func TestResolveMissesAreNotCached(t *testing.T) {
	service := newTestService(nil, WithCache(NewResultCache()))

	img := testPNG(t, color.White)

	for i := 0; i < 2; i++ {
		result, err := service.Resolve(context.Background(), img, "")
		require.NoError(t, err)
		assert.Nil(t, result.Location)
		assert.False(t, result.FromCache)
	}
}

func TestResolvePersistsLocationAndHash(t *testing.T) {
	gps := &stubProvider{
		kind:      SourceGpsExif,
		candidate: &Candidate{Point: spatial.Point{Lat: 55.7558, Lng: 37.6176}, Source: SourceGpsExif, Confidence: 0.97},
	}
	repo := &memoryRepository{}
	service := newTestService([]Provider{gps}, WithRepository(repo))

	_, err := service.Resolve(context.Background(), testPNG(t, color.White), "Red Square")
	require.NoError(t, err)

	require.Len(t, repo.resolved, 1)
	assert.Equal(t, spatial.Point{Lat: 55.7558, Lng: 37.6176}, repo.resolved[0].Point)
	assert.Equal(t, "Red Square", repo.resolved[0].Hint)

	require.Len(t, repo.images, 1)
	assert.Equal(t, spatial.Point{Lat: 55.7558, Lng: 37.6176}, repo.images[0].Point)
}

func TestResolvePersistenceFailureIsSwallowed(t *testing.T) {
	gps := &stubProvider{
		kind:      SourceGpsExif,
		candidate: &Candidate{Point: spatial.Point{Lat: 55.7558, Lng: 37.6176}, Source: SourceGpsExif, Confidence: 0.97},
	}
	repo := &memoryRepository{saveErr: errors.New("disk full")}
	service := newTestService([]Provider{gps}, WithRepository(repo))

	result, err := service.Resolve(context.Background(), testPNG(t, color.White), "")
	require.NoError(t, err)
	assert.NotNil(t, result.Location)
}

func TestResolveLocationBatch(t *testing.T) {
	gps := &stubProvider{
		kind:      SourceGpsExif,
		candidate: &Candidate{Point: spatial.Point{Lat: 55.7558, Lng: 37.6176}, Source: SourceGpsExif, Confidence: 0.97},
	}
	service := newTestService([]Provider{gps}, WithBatchConcurrency(2))

	images := [][]byte{
		testPNG(t, color.White),
		[]byte("broken"),
		testPNG(t, color.Black),
	}

	outcomes := service.ResolveLocationBatch(context.Background(), images, []string{"Moscow"})
	require.Len(t, outcomes, 3)

	require.NoError(t, outcomes[0].Err)
	assert.NotNil(t, outcomes[0].Result.Location)

	// A broken image fails its own slot and nothing else.
	assert.ErrorIs(t, outcomes[1].Err, ErrInvalidImage)
	assert.Nil(t, outcomes[1].Result)

	require.NoError(t, outcomes[2].Err)
	assert.NotNil(t, outcomes[2].Result.Location)
}
