// Command seedpois validates a CSV of points of interest and loads it into
// the points_of_interest table. It checks coordinate ranges, required
// fields, and duplicate IDs before writing anything, so a bad row never
// reaches the database.
//
// Usage:
//
//	go run ./cmd/seedpois \
//	  -csv data/seed/minnesota_pois.csv \
//	  -database-url postgres://localhost/discovery?sslmode=disable
//
// With -dry-run the command validates and prints stats without connecting
// to the database.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// seedRow is one parsed CSV row. Columns: id, name, latitude, longitude,
// category, importance, phone, website, amenities (semicolon separated).
type seedRow struct {
	lineNum    int
	poi        domain.PointOfInterest
	importance int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "path to POI seed CSV")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	dryRun := flag.Bool("dry-run", false, "validate and report without loading")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv")
	}
	if !*dryRun && *databaseURL == "" {
		flag.Usage()
		return fmt.Errorf("missing -database-url (or DATABASE_URL) without -dry-run")
	}

	rows, errs := loadSeedCSV(*csvPath)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		return fmt.Errorf("%s: %d invalid rows, nothing loaded", *csvPath, len(errs))
	}

	log.Printf("%s: %d valid rows", *csvPath, len(rows))
	printStats(rows)

	if *dryRun {
		log.Printf("dry run, skipping load")
		return nil
	}

	ctx := context.Background()
	n, err := loadPostgres(ctx, *databaseURL, rows)
	if err != nil {
		return fmt.Errorf("loading postgres: %w", err)
	}
	log.Printf("loaded %d rows", n)
	return nil
}

func loadSeedCSV(path string) ([]seedRow, []string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, []string{err.Error()}
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, []string{err.Error()}
	}
	if len(all) < 2 {
		return nil, []string{"no data rows"}
	}

	colIdx := map[string]int{}
	for i, h := range all[0] {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows []seedRow
	var errs []string
	seen := map[string]int{}

	for i, raw := range all[1:] {
		lineNum := i + 2
		get := func(col string) string {
			j, ok := colIdx[col]
			if !ok || j >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[j])
		}

		row := seedRow{lineNum: lineNum}
		row.poi.ID = get("id")
		row.poi.Name = get("name")
		row.poi.Category = get("category")
		row.poi.Phone = get("phone")
		row.poi.Website = get("website")
		if a := get("amenities"); a != "" {
			row.poi.Amenities = strings.Split(a, ";")
		}

		if row.poi.ID == "" {
			errs = append(errs, fmt.Sprintf("line %d: missing id", lineNum))
			continue
		}
		if prev, dup := seen[row.poi.ID]; dup {
			errs = append(errs, fmt.Sprintf("line %d: duplicate id %q (first at line %d)", lineNum, row.poi.ID, prev))
			continue
		}
		seen[row.poi.ID] = lineNum

		if row.poi.Name == "" {
			errs = append(errs, fmt.Sprintf("line %d: missing name", lineNum))
			continue
		}

		lat, latErr := strconv.ParseFloat(get("latitude"), 64)
		lon, lonErr := strconv.ParseFloat(get("longitude"), 64)
		if latErr != nil || lonErr != nil {
			errs = append(errs, fmt.Sprintf("line %d: unparseable coordinates", lineNum))
			continue
		}
		row.poi.Coordinate = domain.Coordinate{Latitude: lat, Longitude: lon}
		if err := row.poi.Coordinate.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("line %d: %v", lineNum, err))
			continue
		}

		imp, err := strconv.Atoi(get("importance"))
		if err != nil || imp < 0 || imp > 10 {
			errs = append(errs, fmt.Sprintf("line %d: importance must be an integer in [0,10]", lineNum))
			continue
		}
		row.importance = imp

		rows = append(rows, row)
	}

	return rows, errs
}

func loadPostgres(ctx context.Context, url string, rows []seedRow) (int, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const upsert = `
		INSERT INTO points_of_interest
			(id, name, latitude, longitude, category, importance, phone, website, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			category = EXCLUDED.category,
			importance = EXCLUDED.importance,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			amenities = EXCLUDED.amenities`

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.poi.ID, row.poi.Name,
			row.poi.Coordinate.Latitude, row.poi.Coordinate.Longitude,
			row.poi.Category, row.importance,
			row.poi.Phone, row.poi.Website,
			strings.Join(row.poi.Amenities, ";"),
		)
		if err != nil {
			return 0, fmt.Errorf("row %q: %w", row.poi.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

type categoryCount struct {
	category string
	count    int
}

func printStats(rows []seedRow) {
	counts := map[string]int{}
	var withImportance int
	for _, row := range rows {
		counts[row.poi.Category]++
		if row.importance > 0 {
			withImportance++
		}
	}

	cc := make([]categoryCount, 0, len(counts))
	for c, n := range counts {
		cc = append(cc, categoryCount{c, n})
	}
	sort.Slice(cc, func(i, j int) bool { return cc[i].count > cc[j].count })

	fmt.Printf("Categories (%d): ", len(cc))
	for _, c := range cc {
		fmt.Printf("%s=%d ", c.category, c.count)
	}
	fmt.Println()
	fmt.Printf("With nonzero importance: %d\n", withImportance)
}
