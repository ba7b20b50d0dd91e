// Package geoip implements domain.IPLocator against a local MaxMind
// GeoLite2 City database.
package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/couchcryptid/nice-weather-discovery/internal/domain"
)

// Locator maps client IPs to approximate coordinates from an mmdb file.
type Locator struct {
	reader *geoip2.Reader
}

// Open loads the GeoLite2 City database at path.
func Open(path string) (*Locator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &Locator{reader: reader}, nil
}

// Locate returns the coordinate recorded for ip. Private, malformed, and
// unlisted addresses all return an error; callers treat any failure as a
// silent tier miss.
func (l *Locator) Locate(ip string) (domain.Coordinate, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return domain.Coordinate{}, fmt.Errorf("malformed ip %q", ip)
	}

	city, err := l.reader.City(parsed)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("geoip lookup: %w", err)
	}
	if city.Location.Latitude == 0 && city.Location.Longitude == 0 {
		return domain.Coordinate{}, fmt.Errorf("no location recorded for %s", ip)
	}

	return domain.Coordinate{
		Latitude:  city.Location.Latitude,
		Longitude: city.Location.Longitude,
	}, nil
}

// Close releases the underlying database handle.
func (l *Locator) Close() error {
	return l.reader.Close()
}
