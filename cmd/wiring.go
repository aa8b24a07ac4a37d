// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver

	"github.com/jcodagnone/fotogeo/geoloc"
	"github.com/jcodagnone/fotogeo/providers"
)

// buildRegions loads the region table from the given file, falling back to
// the built-in table when no file is configured.
func buildRegions(regionsFile string) (*geoloc.RegionIndex, error) {
	if regionsFile == "" {
		return geoloc.DefaultRegionIndex(), nil
	}

	regions, err := geoloc.LoadRegions(regionsFile)
	if err != nil {
		return nil, fmt.Errorf("loading regions: %w", err)
	}

	return regions, nil
}

// buildGeocoders creates the two independent geocoding providers. The
// Google key comes from GOOGLE_MAPS_API_KEY or, failing that, from
// Application Default Credentials.
func buildGeocoders(ctx context.Context) (providers.Geocoder, providers.Geocoder) {
	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

		var err error

		apiKey, err = providers.APIKeyFromADC(ctx)
		if err != nil {
			log.Printf("Failed to retrieve API key via ADC: %v", err)
			log.Print("Google Maps geocoding will be unavailable for this run.")
		}
	}

	var google providers.Geocoder
	if apiKey != "" {
		google = providers.NewGoogleMapsGeocoder(apiKey)
	}

	nominatim := providers.NewNominatimGeocoder("fotogeo/" + Version)

	return google, nominatim
}

// buildService wires the standard provider set: EXIF GPS, both geocoders,
// and - when a repository is attached - the reverse-image index.
func buildService(ctx context.Context, regions *geoloc.RegionIndex, repo geoloc.LocationRepository) *geoloc.Service {
	google, nominatim := buildGeocoders(ctx)

	providerList := []geoloc.Provider{
		providers.NewExifProvider(),
	}

	if google != nil {
		providerList = append(providerList, providers.NewSearchProvider(geoloc.SourceGeocoderA, google))
	}

	providerList = append(providerList, providers.NewSearchProvider(geoloc.SourceGeocoderB, nominatim))

	if repo != nil {
		providerList = append(providerList, providers.NewSimilarityProvider(repo))
	}

	validator := geoloc.NewValidator(regions, geoloc.DefaultPoisonPoints())
	engine := geoloc.NewEngine(validator, regions)
	collector := geoloc.NewCollector(providerList, nil, validator)

	opts := []geoloc.ServiceOption{geoloc.WithCache(geoloc.NewResultCache())}
	if repo != nil {
		opts = append(opts, geoloc.WithRepository(repo))
	}

	return geoloc.NewService(collector, engine, opts...)
}

// openRepository opens (or creates) the DuckDB database and its schema.
func openRepository(dbpath string) (geoloc.LocationRepository, *sql.DB, error) {
	db, err := sql.Open("duckdb", dbpath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := geoloc.NewLocationRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return repo, db, nil
}
