// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"image"
	"image/color"

	"github.com/jcodagnone/fotogeo/geoloc"
	"github.com/jcodagnone/fotogeo/spatial"
)

// fakeGeocoder returns a canned result and records its queries.
type fakeGeocoder struct {
	result  *GeocodingResult
	err     error
	queries []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) (*GeocodingResult, error) {
	g.queries = append(g.queries, query)

	return g.result, g.err
}

func (g *fakeGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", nil
}

// fakeExtractor returns canned OCR text.
type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) ExtractText(context.Context, []byte) (string, error) {
	return e.text, e.err
}

// fakeDetector returns canned detections.
type fakeDetector struct {
	detections []Detection
	err        error
}

func (d *fakeDetector) Detect(context.Context, []byte) ([]Detection, error) {
	return d.detections, d.err
}

// fakeImagery returns canned reference imagery and records the query area.
type fakeImagery struct {
	refs   []ReferenceImage
	err    error
	lat    float64
	lng    float64
	radius float64
	calls  int
}

func (f *fakeImagery) FetchNearby(_ context.Context, lat, lng, radiusMeters float64) ([]ReferenceImage, error) {
	f.calls++
	f.lat, f.lng, f.radius = lat, lng, radiusMeters

	return f.refs, f.err
}

// fakeGeoIndex is a canned geotagged-image index.
type fakeGeoIndex struct {
	images []*geoloc.GeoImage
	err    error
}

func (f *fakeGeoIndex) AllGeoImages() ([]*geoloc.GeoImage, error) {
	return f.images, f.err
}

// solidImage is a uniform-color image; its difference hash is all zero
// bits, which makes hash distances in tests predictable.
func solidImage(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}

	return img
}

// stripedImage alternates dark and light columns, putting its difference
// hash far from any solid image's.
func stripedImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x%2 == 0 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}

	return img
}

var moscowPoint = spatial.Point{Lat: 55.7558, Lng: 37.6176}
