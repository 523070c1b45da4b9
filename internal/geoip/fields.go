package geoip

import "fmt"

// Toggle switches a single facet on or off.
type Toggle string

const (
	Enabled  Toggle = "enabled"
	Disabled Toggle = "disabled"
)

// Facet identifies one independently configurable category of geo data.
type Facet int

const (
	FacetCity Facet = iota
	FacetCountry
	FacetTimezone
	FacetContinent
	FacetCoordinates
	FacetPostalCode
)

func (f Facet) String() string {
	switch f {
	case FacetCity:
		return "city"
	case FacetCountry:
		return "country"
	case FacetTimezone:
		return "timezone"
	case FacetContinent:
		return "continent"
	case FacetCoordinates:
		return "coordinates"
	case FacetPostalCode:
		return "postal_code"
	default:
		return fmt.Sprintf("facet(%d)", int(f))
	}
}

// FieldConfig holds one toggle per facet.
type FieldConfig struct {
	City        Toggle `json:"city"`
	Country     Toggle `json:"country"`
	Timezone    Toggle `json:"timezone"`
	Continent   Toggle `json:"continent"`
	Coordinates Toggle `json:"coordinates"`
	PostalCode  Toggle `json:"postal_code"`
}

// DefaultFieldConfig enables every facet.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		City:        Enabled,
		Country:     Enabled,
		Timezone:    Enabled,
		Continent:   Enabled,
		Coordinates: Enabled,
		PostalCode:  Enabled,
	}
}

func (c FieldConfig) toggle(f Facet) Toggle {
	switch f {
	case FacetCity:
		return c.City
	case FacetCountry:
		return c.Country
	case FacetTimezone:
		return c.Timezone
	case FacetContinent:
		return c.Continent
	case FacetCoordinates:
		return c.Coordinates
	case FacetPostalCode:
		return c.PostalCode
	default:
		return ""
	}
}

// Enabled reports whether the facet is switched on. Only the exact value
// "enabled" counts; an unset toggle is off.
func (c FieldConfig) Enabled(f Facet) bool {
	return c.toggle(f) == Enabled
}

// Validate rejects toggles other than enabled/disabled.
func (c FieldConfig) Validate() error {
	for f := FacetCity; f <= FacetPostalCode; f++ {
		switch c.toggle(f) {
		case Enabled, Disabled:
		default:
			return fmt.Errorf("%s must be %q or %q, got %q", f, Enabled, Disabled, c.toggle(f))
		}
	}
	return nil
}
