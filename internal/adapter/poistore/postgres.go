// Package poistore provides the candidate store of points of interest:
// Postgres in production, an in-memory slice for tests and credential-less
// startup. Both implement domain.CandidateStore with miles-denominated
// ascending-distance proximity queries.
package poistore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// Postgres queries the points_of_interest table. Distance is computed in
// SQL with the haversine formula over the same 3959-mile Earth radius the
// domain package uses, so store ordering and engine arithmetic agree.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to the database at url and verifies the connection.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

const nearestQuery = `
SELECT id, name, latitude, longitude, category,
       COALESCE(phone, ''), COALESCE(website, ''), COALESCE(amenities, ''),
       3959 * 2 * asin(least(1.0, sqrt(
           pow(sin(radians(latitude - $1) / 2), 2) +
           cos(radians($1)) * cos(radians(latitude)) *
           pow(sin(radians(longitude - $2) / 2), 2)
       ))) AS distance_miles
FROM points_of_interest
ORDER BY distance_miles ASC
LIMIT $3`

// NearestTo returns up to limit POIs ordered by ascending distance from
// origin.
func (p *Postgres) NearestTo(ctx context.Context, origin domain.Coordinate, limit int) ([]domain.RankedPOI, error) {
	rows, err := p.db.QueryContext(ctx, nearestQuery, origin.Latitude, origin.Longitude, limit)
	if err != nil {
		return nil, fmt.Errorf("query nearest POIs: %w", err)
	}
	defer rows.Close()

	var out []domain.RankedPOI
	for rows.Next() {
		var poi domain.RankedPOI
		var amenities string
		if err := rows.Scan(
			&poi.ID, &poi.Name,
			&poi.Coordinate.Latitude, &poi.Coordinate.Longitude,
			&poi.Category, &poi.Phone, &poi.Website, &amenities,
			&poi.DistanceMiles,
		); err != nil {
			return nil, fmt.Errorf("scan POI row: %w", err)
		}
		poi.Amenities = splitAmenities(amenities)
		out = append(out, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate POI rows: %w", err)
	}
	return out, nil
}

const importanceQuery = `
SELECT id, name, latitude, longitude, category,
       COALESCE(phone, ''), COALESCE(website, ''), COALESCE(amenities, '')
FROM points_of_interest
ORDER BY importance DESC, name ASC
LIMIT $1`

// AllByImportance returns up to limit POIs ordered by descending importance
// rank.
func (p *Postgres) AllByImportance(ctx context.Context, limit int) ([]domain.PointOfInterest, error) {
	rows, err := p.db.QueryContext(ctx, importanceQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query POIs by importance: %w", err)
	}
	defer rows.Close()

	var out []domain.PointOfInterest
	for rows.Next() {
		var poi domain.PointOfInterest
		var amenities string
		if err := rows.Scan(
			&poi.ID, &poi.Name,
			&poi.Coordinate.Latitude, &poi.Coordinate.Longitude,
			&poi.Category, &poi.Phone, &poi.Website, &amenities,
		); err != nil {
			return nil, fmt.Errorf("scan POI row: %w", err)
		}
		poi.Amenities = splitAmenities(amenities)
		out = append(out, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate POI rows: %w", err)
	}
	return out, nil
}

// splitAmenities parses the semicolon-separated amenities column written by
// the seed tooling. An empty column means no amenities, not one empty entry.
func splitAmenities(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}

// Ping reports connectivity for the infrastructure status endpoint.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
