// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"regexp"
	"strings"

	"github.com/jcodagnone/fotogeo/geoloc"
	"github.com/jcodagnone/fotogeo/spatial"
)

// ocrConfidencePenalty discounts the geocoder's confidence for
// OCR-extracted addresses: the text itself may be misread.
const ocrConfidencePenalty = 0.85

// TextExtractor is the OCR collaborator: plain text out of an image,
// language-agnostic. Internals are out of scope.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// addressPatterns match address-shaped substrings in OCR output: a street
// keyword plus a name and house number, in Russian or English signage.
var addressPatterns = []*regexp.Regexp{
	// "ул. Ленина, 12", "улица Ленина 12", "просп. Мира, д. 5"
	regexp.MustCompile(`(?i)(?:ул\.?|улица|просп\.?|проспект|пер\.?|переулок|ш\.?|шоссе|наб\.?|набережная|пл\.?|площадь)\s+[А-Яа-яЁё][А-Яа-яЁё\s-]*(?:,?\s*(?:д\.?\s*)?\d+[а-я]?)`),
	// "12 Main Street", "221B Baker St"
	regexp.MustCompile(`(?i)\d+[a-z]?\s+[A-Z][A-Za-z\s-]*(?:street|st\.?|avenue|ave\.?|road|rd\.?|boulevard|blvd\.?|lane|ln\.?|square|sq\.?)`),
	// "Main Street 12"
	regexp.MustCompile(`(?i)[A-Z][A-Za-z\s-]*(?:street|st\.|avenue|ave\.|road|rd\.|boulevard|blvd\.)\s*,?\s*\d+[a-z]?`),
}

// ExtractAddress returns the first address-shaped substring in the text,
// or "" when nothing address-like is present.
func ExtractAddress(text string) string {
	for _, pattern := range addressPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}

	return ""
}

// OcrAddressProvider runs text extraction over the image, pattern-matches
// an address-shaped substring, and geocodes it. When no address-shaped
// text is found it stays absent; it never geocodes empty or generic text.
type OcrAddressProvider struct {
	extractor TextExtractor
	geocoder  Geocoder
}

// NewOcrAddressProvider creates the OCR address provider.
func NewOcrAddressProvider(extractor TextExtractor, geocoder Geocoder) *OcrAddressProvider {
	return &OcrAddressProvider{extractor: extractor, geocoder: geocoder}
}

func (p *OcrAddressProvider) Kind() geoloc.SourceKind {
	return geoloc.SourceOcrAddress
}

func (p *OcrAddressProvider) Propose(ctx context.Context, req *geoloc.Request) (*geoloc.Candidate, error) {
	text, err := p.extractor.ExtractText(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	address := ExtractAddress(text)
	if address == "" || !geoloc.UsableHint(address) {
		return nil, nil
	}

	result, err := p.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, nil
	}

	return &geoloc.Candidate{
		Point:      spatial.Point{Lat: result.Latitude, Lng: result.Longitude},
		Source:     geoloc.SourceOcrAddress,
		Confidence: result.Confidence * ocrConfidencePenalty,
		Metadata: map[string]any{
			"address":      address,
			"display_name": result.DisplayName,
		},
	}, nil
}
