// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jcodagnone/fotogeo/spatial"
	"github.com/uber/h3-go/v4"
)

// geoImageH3Res is the h3 resolution used to bucket geotagged images for
// nearby lookups. Res 6 cells are roughly 36 km² - a city district.
const geoImageH3Res = 6

// ResolvedRecord is a persisted resolution: the answer plus the hint it
// was computed for.
type ResolvedRecord struct {
	DbID                int           `json:"db_id"`
	Point               spatial.Point `json:"point"`
	Confidence          float64       `json:"confidence"`
	PrimarySource       SourceKind    `json:"primary_source"`
	ContributingSources []SourceKind  `json:"contributing_sources"`
	Hint                string        `json:"hint,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	H3Res1              int64         `json:"-"`
	H3Res2              int64         `json:"-"`
	H3Res3              int64         `json:"-"`
	H3Res4              int64         `json:"-"`
	H3Res5              int64         `json:"-"`
	H3Res6              int64         `json:"-"`
	H3Res7              int64         `json:"-"`
	H3Res8              int64         `json:"-"`
}

func (record *ResolvedRecord) computeH3() error {
	latLng := h3.NewLatLng(record.Point.Lat, record.Point.Lng)
	for res := 1; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 1:
			record.H3Res1 = int64(cell)
		case 2:
			record.H3Res2 = int64(cell)
		case 3:
			record.H3Res3 = int64(cell)
		case 4:
			record.H3Res4 = int64(cell)
		case 5:
			record.H3Res5 = int64(cell)
		case 6:
			record.H3Res6 = int64(cell)
		case 7:
			record.H3Res7 = int64(cell)
		case 8:
			record.H3Res8 = int64(cell)
		}
	}

	return nil
}

// GeoImage is one previously geotagged photo in the reverse-image index:
// its perceptual hash and where it was taken.
type GeoImage struct {
	DbID      int           `json:"db_id"`
	Hash      uint64        `json:"hash"`
	Point     spatial.Point `json:"point"`
	H3Cell    int64         `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

func (img *GeoImage) computeH3() error {
	cell, err := h3.LatLngToCell(h3.NewLatLng(img.Point.Lat, img.Point.Lng), geoImageH3Res)
	if err != nil {
		return fmt.Errorf("error converting to h3 cell at res %d: %w", geoImageH3Res, err)
	}

	img.H3Cell = int64(cell)

	return nil
}

// LocationRepository handles persistence of resolved locations and the
// geotagged-image index.
type LocationRepository interface {
	// CreateSchema creates the resolved_locations and geo_images tables
	CreateSchema() error

	// SaveResolved stores one resolved location
	SaveResolved(record *ResolvedRecord) error

	// ListResolved returns stored resolutions, newest first
	ListResolved(limit, offset int) ([]*ResolvedRecord, error)

	// CountResolved returns the total number of stored resolutions
	CountResolved() (int, error)

	// SaveGeoImage adds one geotagged image hash to the index
	SaveGeoImage(img *GeoImage) error

	// AllGeoImages returns the whole geotagged-image index
	AllGeoImages() ([]*GeoImage, error)

	// NearbyGeoImages returns indexed images whose h3 cell is the point's
	// cell or one of its immediate neighbors
	NearbyGeoImages(p spatial.Point) ([]*GeoImage, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlLocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a DuckDB-backed repository.
func NewLocationRepository(db *sql.DB) LocationRepository {
	return &sqlLocationRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlLocationRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlLocationRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS resolved_locations_seq START 1;

		CREATE TABLE IF NOT EXISTS resolved_locations (
			id INTEGER PRIMARY KEY DEFAULT nextval('resolved_locations_seq'),
			point POINT_2D NOT NULL,
			confidence DOUBLE NOT NULL,
			primary_source VARCHAR NOT NULL,
			contributing_sources VARCHAR NOT NULL,
			hint VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);

		CREATE SEQUENCE IF NOT EXISTS geo_images_seq START 1;

		CREATE TABLE IF NOT EXISTS geo_images (
			id INTEGER PRIMARY KEY DEFAULT nextval('geo_images_seq'),
			dhash UBIGINT NOT NULL,
			point POINT_2D NOT NULL,
			h3_cell UBIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

func (r *sqlLocationRepository) SaveResolved(record *ResolvedRecord) error {
	if err := record.computeH3(); err != nil {
		return err
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO resolved_locations(
			point,
			confidence,
			primary_source,
			contributing_sources,
			hint,
			created_at,
			h3_res1,
			h3_res2,
			h3_res3,
			h3_res4,
			h3_res5,
			h3_res6,
			h3_res7,
			h3_res8
		)
		VALUES (ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.Point.Lng,
		record.Point.Lat,
		record.Confidence,
		record.PrimarySource.String(),
		joinSources(record.ContributingSources),
		record.Hint,
		record.CreatedAt,
		record.H3Res1,
		record.H3Res2,
		record.H3Res3,
		record.H3Res4,
		record.H3Res5,
		record.H3Res6,
		record.H3Res7,
		record.H3Res8,
	)

	return err
}

func (r *sqlLocationRepository) ListResolved(limit, offset int) ([]*ResolvedRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(`
		SELECT id, point, confidence, primary_source, contributing_sources,
		       hint, created_at
		FROM resolved_locations
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ResolvedRecord

	for rows.Next() {
		record := &ResolvedRecord{}

		var primary, contributing string

		var hint sql.NullString

		err := rows.Scan(
			&record.DbID,
			&record.Point,
			&record.Confidence,
			&primary,
			&contributing,
			&hint,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if kind, ok := ParseSourceKind(primary); ok {
			record.PrimarySource = kind
		}

		record.ContributingSources = splitSources(contributing)

		if hint.Valid {
			record.Hint = hint.String
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (r *sqlLocationRepository) CountResolved() (int, error) {
	var count int

	err := r.db.QueryRow(`SELECT COUNT(*) FROM resolved_locations`).Scan(&count)

	return count, err
}

func (r *sqlLocationRepository) SaveGeoImage(img *GeoImage) error {
	if err := img.computeH3(); err != nil {
		return err
	}

	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO geo_images(dhash, point, h3_cell, created_at)
		VALUES (?, ST_Point(?, ?), ?, ?)
	`,
		img.Hash,
		img.Point.Lng,
		img.Point.Lat,
		img.H3Cell,
		img.CreatedAt,
	)

	return err
}

func (r *sqlLocationRepository) AllGeoImages() ([]*GeoImage, error) {
	return r.listGeoImages(`
		SELECT id, dhash, point, h3_cell, created_at
		FROM geo_images
		ORDER BY id
	`, nil)
}

func (r *sqlLocationRepository) NearbyGeoImages(p spatial.Point) ([]*GeoImage, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), geoImageH3Res)
	if err != nil {
		return nil, fmt.Errorf("error converting to h3 cell: %w", err)
	}

	// The cell itself plus its first ring of neighbors
	disk, err := h3.GridDisk(cell, 1)
	if err != nil {
		return nil, fmt.Errorf("error computing h3 grid disk: %w", err)
	}

	placeholders := make([]string, len(disk))
	args := make([]any, len(disk))

	for i, c := range disk {
		placeholders[i] = "?"
		args[i] = int64(c)
	}

	query := fmt.Sprintf(`
		SELECT id, dhash, point, h3_cell, created_at
		FROM geo_images
		WHERE h3_cell IN (%s)
		ORDER BY id
	`, strings.Join(placeholders, ", "))

	return r.listGeoImages(query, args)
}

func (r *sqlLocationRepository) listGeoImages(query string, args []any) ([]*GeoImage, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*GeoImage

	for rows.Next() {
		img := &GeoImage{}

		err := rows.Scan(&img.DbID, &img.Hash, &img.Point, &img.H3Cell, &img.CreatedAt)
		if err != nil {
			return nil, err
		}

		images = append(images, img)
	}

	return images, rows.Err()
}

func joinSources(sources []SourceKind) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.String()
	}

	return strings.Join(names, ",")
}

func splitSources(joined string) []SourceKind {
	var sources []SourceKind

	for _, name := range strings.Split(joined, ",") {
		if kind, ok := ParseSourceKind(strings.TrimSpace(name)); ok {
			sources = append(sources, kind)
		}
	}

	return sources
}
