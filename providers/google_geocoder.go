// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"

	"github.com/jcodagnone/fotogeo/geoloc"
)

// GoogleMapsGeocoder uses the Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(apiKey string) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIKeyFromADC retrieves the Geocoding API key via Application Default
// Credentials when GOOGLE_MAPS_API_KEY is not set in the environment.
func APIKeyFromADC(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID found in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	const targetDisplayName = "FotoGeo Geocoding Key"

	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != targetDisplayName {
			continue
		}

		// ListKeys redacts the KeyString; GetKeyString returns the secret.
		log.Printf("Found key resource '%s', retrieving secret...", key.Name)

		getReq := &apikeyspb.GetKeyStringRequest{
			Name: key.Name,
		}

		resp, err := client.GetKeyString(ctx, getReq)
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but KeyString is empty after GetKeyString", targetDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", targetDisplayName, projectID)
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, etc.
}

// Geocode returns the top search result for a free-text query, or nil when
// the query matches nothing.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, query string) (*GeocodingResult, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)

	reqURL := "https://maps.googleapis.com/maps/api/geocode/json?" + params.Encode()

	gmResp, err := g.do(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if gmResp.Status == "ZERO_RESULTS" || len(gmResp.Results) == 0 {
		return nil, nil
	}

	if gmResp.Status != "OK" {
		return nil, fmt.Errorf("google maps status: %s", gmResp.Status)
	}

	result := gmResp.Results[0]

	// location_type reflects how precise the match is
	confidence := 0.5

	switch result.Geometry.LocationType {
	case "ROOFTOP":
		confidence = 0.9
	case "RANGE_INTERPOLATED":
		confidence = 0.85
	case "GEOMETRIC_CENTER":
		confidence = 0.7
	case "APPROXIMATE":
		confidence = 0.5
	}

	return &GeocodingResult{
		Latitude:    result.Geometry.Location.Lat,
		Longitude:   result.Geometry.Location.Lng,
		Confidence:  confidence,
		Provider:    "google_maps",
		DisplayName: result.FormattedAddress,
	}, nil
}

// ReverseGeocode returns the formatted address of the top result for a
// coordinate, or "" when there is none.
func (g *GoogleMapsGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("key", g.apiKey)

	reqURL := "https://maps.googleapis.com/maps/api/geocode/json?" + params.Encode()

	gmResp, err := g.do(ctx, reqURL)
	if err != nil {
		return "", err
	}

	if gmResp.Status == "ZERO_RESULTS" || len(gmResp.Results) == 0 {
		return "", nil
	}

	if gmResp.Status != "OK" {
		return "", fmt.Errorf("google maps status: %s", gmResp.Status)
	}

	return gmResp.Results[0].FormattedAddress, nil
}

func (g *GoogleMapsGeocoder) do(ctx context.Context, reqURL string) (*googleMapsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, geoloc.ClassifyHTTPError(geoloc.SourceGeocoderA, resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &gmResp, nil
}
