package geoip

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no geo lookup capability has been configured.
var ErrUnavailable = errors.New("geoip: lookup capability is not available, configure GEOIP_DATABASE_PATH")

// defaultLanguage selects the localized name written to events.
const defaultLanguage = "en"

// Names maps a language code to a localized name.
type Names map[string]string

// Default returns the English name, or "" when the record has none.
func (n Names) Default() string {
	return n[defaultLanguage]
}

type City struct {
	Names Names `maxminddb:"names" json:"names,omitempty"`
}

type Country struct {
	Names   Names  `maxminddb:"names" json:"names,omitempty"`
	IsoCode string `maxminddb:"iso_code" json:"iso_code,omitempty"`
}

type Continent struct {
	Names Names  `maxminddb:"names" json:"names,omitempty"`
	Code  string `maxminddb:"code" json:"code,omitempty"`
}

type Postal struct {
	Code string `maxminddb:"code" json:"code,omitempty"`
}

// Location carries coordinates and the IANA time zone of a network.
type Location struct {
	Latitude  *float64 `maxminddb:"latitude" json:"latitude,omitempty"`
	Longitude *float64 `maxminddb:"longitude" json:"longitude,omitempty"`
	TimeZone  string   `maxminddb:"time_zone" json:"time_zone,omitempty"`
}

type Subdivision struct {
	Names   Names  `maxminddb:"names" json:"names,omitempty"`
	IsoCode string `maxminddb:"iso_code" json:"iso_code,omitempty"`
}

// LocationResult is the outcome of a geo lookup. A nil facet means the database
// holds no data for it.
type LocationResult struct {
	City         *City         `maxminddb:"city" json:"city,omitempty"`
	Country      *Country      `maxminddb:"country" json:"country,omitempty"`
	Continent    *Continent    `maxminddb:"continent" json:"continent,omitempty"`
	Postal       *Postal       `maxminddb:"postal" json:"postal,omitempty"`
	Location     *Location     `maxminddb:"location" json:"location,omitempty"`
	Subdivisions []Subdivision `maxminddb:"subdivisions" json:"subdivisions,omitempty"`
}

// Locator resolves an IP address to a location. It returns nil, nil when the
// address is not covered.
type Locator interface {
	Locate(ctx context.Context, ip string) (*LocationResult, error)
}
