// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jcodagnone/fotogeo/geoloc"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder uses the OpenStreetMap Nominatim API. It is the
// second, independent geocoding provider; its results are reconciled with
// Google's only in the aggregation engine, never here.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a Nominatim geocoder. Nominatim's usage
// policy requires an identifying User-Agent.
func NewNominatimGeocoder(userAgent string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   nominatimBaseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Geocode returns the top search result for a free-text query, or nil when
// there is none.
func (n *NominatimGeocoder) Geocode(ctx context.Context, query string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []nominatimResult
	if err := n.do(ctx, n.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, nil
	}

	top := results[0]

	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing nominatim latitude %q: %w", top.Lat, err)
	}

	lng, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing nominatim longitude %q: %w", top.Lon, err)
	}

	// Nominatim importance is roughly [0, 1] already; clamp and floor it
	// so an obscure match still carries some weight.
	confidence := top.Importance
	if confidence < 0.3 {
		confidence = 0.3
	}

	if confidence > 0.9 {
		confidence = 0.9
	}

	return &GeocodingResult{
		Latitude:    lat,
		Longitude:   lng,
		Confidence:  confidence,
		Provider:    "nominatim",
		DisplayName: top.DisplayName,
	}, nil
}

// ReverseGeocode returns the display name for a coordinate, or "".
func (n *NominatimGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("format", "json")

	var result nominatimResult
	if err := n.do(ctx, n.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		return "", err
	}

	return result.DisplayName, nil
}

func (n *NominatimGeocoder) do(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building nominatim request: %w", err)
	}

	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geoloc.ClassifyHTTPError(geoloc.SourceGeocoderB, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding nominatim response: %w", err)
	}

	return nil
}
