package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SERVICE_ENVIRONMENT", "test")
	t.Setenv("SQS_QUEUE_URL", "http://localhost:9324/queue/events")
	t.Setenv("SQS_REGION", "eu-central-1")
	t.Setenv("CLICKHOUSE_HOST", "localhost")
	t.Setenv("CLICKHOUSE_PORT", "9000")
	t.Setenv("CLICKHOUSE_DB", "events")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Service.Environment)
	assert.Equal(t, "8080", cfg.Service.APIPort)
	assert.Equal(t, 2000, cfg.Consumer.BatchSizeMax)
	assert.Empty(t, cfg.Valkey.Host)
	assert.True(t, cfg.Valkey.FailOpen)
	assert.Equal(t, geoip.DefaultFieldConfig(), cfg.GeoIP.Fields())
}

func TestLoad_GeoIPToggles(t *testing.T) {
	setRequired(t)
	t.Setenv("GEOIP_DATABASE_PATH", "/data/GeoLite2-City.mmdb")
	t.Setenv("GEOIP_POSTAL_CODE", "disabled")
	t.Setenv("GEOIP_COORDINATES", "disabled")
	t.Setenv("VALKEY_HOST", "valkey")
	t.Setenv("VALKEY_LEDGER_FAIL_OPEN", "false")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/data/GeoLite2-City.mmdb", cfg.GeoIP.DatabasePath)
	fields := cfg.GeoIP.Fields()
	assert.False(t, fields.Enabled(geoip.FacetPostalCode))
	assert.False(t, fields.Enabled(geoip.FacetCoordinates))
	assert.True(t, fields.Enabled(geoip.FacetCity))
	assert.Equal(t, "valkey:6379", cfg.Valkey.Addr())
	assert.False(t, cfg.Valkey.FailOpen)
}

func TestLoad_InvalidToggle(t *testing.T) {
	setRequired(t)
	t.Setenv("GEOIP_CITY", "yes")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid geoip config")
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("SQS_QUEUE_URL"))

	_, err := Load()

	assert.Error(t, err)
}
