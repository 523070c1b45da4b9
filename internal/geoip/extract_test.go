package geoip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func float(v float64) *float64 {
	return &v
}

func sydneyResult() *LocationResult {
	return &LocationResult{
		City:      &City{Names: Names{"en": "Sydney", "de": "Sydney"}},
		Country:   &Country{Names: Names{"en": "Australia"}, IsoCode: "AU"},
		Continent: &Continent{Names: Names{"en": "Oceania"}, Code: "OC"},
		Postal:    &Postal{Code: "2000"},
		Location: &Location{
			Latitude:  float(-33.8591),
			Longitude: float(151.2002),
			TimeZone:  "Australia/Sydney",
		},
		Subdivisions: []Subdivision{
			{IsoCode: "NSW", Names: Names{"en": "New South Wales"}},
		},
	}
}

func TestExtract_AllFacetsEnabled(t *testing.T) {
	attrs := Extract(sydneyResult(), DefaultFieldConfig())

	assert.Equal(t, Attributes{
		"city_name":          "Sydney",
		"country_name":       "Australia",
		"country_code":       "AU",
		"continent_name":     "Oceania",
		"continent_code":     "OC",
		"postal_code":        "2000",
		"latitude":           -33.8591,
		"longitude":          151.2002,
		"time_zone":          "Australia/Sydney",
		"subdivision_1_code": "NSW",
		"subdivision_1_name": "New South Wales",
	}, attrs)
}

func TestExtract_DisabledFacetsAreOmitted(t *testing.T) {
	cfg := DefaultFieldConfig()
	cfg.City = Disabled
	cfg.Country = Disabled
	cfg.PostalCode = Disabled

	attrs := Extract(sydneyResult(), cfg)

	assert.NotContains(t, attrs, "city_name")
	assert.NotContains(t, attrs, "country_name")
	assert.NotContains(t, attrs, "country_code")
	assert.NotContains(t, attrs, "postal_code")
	assert.Equal(t, "Oceania", attrs["continent_name"])
}

func TestExtract_CoordinatesIndependentOfTimezone(t *testing.T) {
	cfg := DefaultFieldConfig()
	cfg.Timezone = Disabled

	attrs := Extract(sydneyResult(), cfg)

	assert.Equal(t, -33.8591, attrs["latitude"])
	assert.Equal(t, 151.2002, attrs["longitude"])
	assert.NotContains(t, attrs, "time_zone")

	cfg = DefaultFieldConfig()
	cfg.Coordinates = Disabled

	attrs = Extract(sydneyResult(), cfg)

	assert.NotContains(t, attrs, "latitude")
	assert.NotContains(t, attrs, "longitude")
	assert.Equal(t, "Australia/Sydney", attrs["time_zone"])
}

func TestExtract_MissingFacetsSuppressKeys(t *testing.T) {
	result := &LocationResult{
		Country:  &Country{Names: Names{"en": "Germany"}, IsoCode: "DE"},
		Location: &Location{Latitude: float(51.2993), Longitude: float(9.491)},
	}

	attrs := Extract(result, DefaultFieldConfig())

	assert.Equal(t, Attributes{
		"country_name": "Germany",
		"country_code": "DE",
		"latitude":     51.2993,
		"longitude":    9.491,
	}, attrs)
}

func TestExtract_MissingNameInsidePresentFacet(t *testing.T) {
	result := &LocationResult{
		City:    &City{Names: Names{"fr": "Genève"}},
		Country: &Country{IsoCode: "CH"},
	}

	attrs := Extract(result, DefaultFieldConfig())

	assert.Equal(t, Attributes{"country_code": "CH"}, attrs)
}

func TestExtract_SubdivisionsIgnoreConfig(t *testing.T) {
	result := &LocationResult{
		Subdivisions: []Subdivision{
			{IsoCode: "CA", Names: Names{"en": "California"}},
			{IsoCode: "NV", Names: Names{"en": "Nevada"}},
		},
	}
	cfg := FieldConfig{
		City:        Disabled,
		Country:     Disabled,
		Timezone:    Disabled,
		Continent:   Disabled,
		Coordinates: Disabled,
		PostalCode:  Disabled,
	}

	attrs := Extract(result, cfg)

	assert.Equal(t, Attributes{
		"subdivision_1_code": "CA",
		"subdivision_1_name": "California",
		"subdivision_2_code": "NV",
		"subdivision_2_name": "Nevada",
	}, attrs)
}

func TestExtract_NilResult(t *testing.T) {
	assert.Empty(t, Extract(nil, DefaultFieldConfig()))
}
