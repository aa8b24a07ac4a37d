// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"bytes"
	"context"
	"strings"

	"github.com/bep/imagemeta"

	"github.com/jcodagnone/fotogeo/geoloc"
	"github.com/jcodagnone/fotogeo/spatial"
)

// exifConfidence is the fixed confidence for an embedded GPS fix: direct
// sensor data, the strongest signal we have.
const exifConfidence = 0.97

// ExifProvider extracts the GPS fix embedded in image metadata. The
// degrees/minutes/seconds values and hemisphere refs are converted to
// signed decimal degrees.
type ExifProvider struct{}

// NewExifProvider creates the GPS EXIF provider.
func NewExifProvider() *ExifProvider {
	return &ExifProvider{}
}

func (p *ExifProvider) Kind() geoloc.SourceKind {
	return geoloc.SourceGpsExif
}

// Propose parses the GPS tags out of the raw image bytes. Images without
// GPS metadata are expected absence, not an error.
func (p *ExifProvider) Propose(_ context.Context, req *geoloc.Request) (*geoloc.Candidate, error) {
	var tags imagemeta.Tags

	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(req.Image),
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return strings.HasPrefix(ti.Tag, "GPS")
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			tags.Add(ti)

			return nil
		},
	})
	if err != nil {
		// Unparseable metadata in an otherwise decodable image: no fix.
		return nil, nil
	}

	lat, lng, err := tags.GetLatLong()
	if err != nil || (lat == 0 && lng == 0) {
		return nil, nil
	}

	return &geoloc.Candidate{
		Point:      spatial.Point{Lat: lat, Lng: lng},
		Source:     geoloc.SourceGpsExif,
		Confidence: exifConfidence,
	}, nil
}
