package geoip

import "fmt"

// Attributes maps unprefixed geo attribute names (city_name, latitude, ...) to
// string or float64 values.
type Attributes map[string]interface{}

// Extract flattens a lookup result into attributes. A facet contributes keys only
// when it is enabled and present in the result; values missing inside a present
// facet are left out. Subdivisions are always emitted, 1-indexed in result order.
func Extract(result *LocationResult, cfg FieldConfig) Attributes {
	attrs := Attributes{}
	if result == nil {
		return attrs
	}

	if cfg.Enabled(FacetCity) && result.City != nil {
		attrs.putString("city_name", result.City.Names.Default())
	}
	if cfg.Enabled(FacetCountry) && result.Country != nil {
		attrs.putString("country_name", result.Country.Names.Default())
		attrs.putString("country_code", result.Country.IsoCode)
	}
	if cfg.Enabled(FacetContinent) && result.Continent != nil {
		attrs.putString("continent_name", result.Continent.Names.Default())
		attrs.putString("continent_code", result.Continent.Code)
	}
	if cfg.Enabled(FacetPostalCode) && result.Postal != nil {
		attrs.putString("postal_code", result.Postal.Code)
	}
	if loc := result.Location; loc != nil {
		if cfg.Enabled(FacetCoordinates) {
			attrs.putFloat("latitude", loc.Latitude)
			attrs.putFloat("longitude", loc.Longitude)
		}
		if cfg.Enabled(FacetTimezone) && loc.TimeZone != "" {
			attrs["time_zone"] = loc.TimeZone
		}
	}

	for i, sub := range result.Subdivisions {
		n := i + 1
		attrs.putString(fmt.Sprintf("subdivision_%d_code", n), sub.IsoCode)
		attrs.putString(fmt.Sprintf("subdivision_%d_name", n), sub.Names.Default())
	}

	return attrs
}

func (a Attributes) putString(key, value string) {
	if value != "" {
		a[key] = value
	}
}

func (a Attributes) putFloat(key string, value *float64) {
	if value != nil {
		a[key] = *value
	}
}
