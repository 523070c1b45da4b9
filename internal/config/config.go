package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
)

type Config struct {
	Service    Service
	SQS        SQS
	ClickHouse ClickHouse
	Consumer   Consumer
	Valkey     Valkey
	GeoIP      GeoIP
}

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Consumer struct {
	BatchSizeMin    int    `envconfig:"CONSUMER_BATCH_SIZE_MIN" default:"100"`
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Valkey holds the connection for the last-IP ledger. An empty Host selects the
// in-process memory cache, which is only suitable for a single replica.
type Valkey struct {
	Host     string `envconfig:"VALKEY_HOST"`
	Port     string `envconfig:"VALKEY_PORT" default:"6379"`
	Password string `envconfig:"VALKEY_PASSWORD" default:""`
	DB       int    `envconfig:"VALKEY_DB" default:"0"`
	FailOpen bool   `envconfig:"VALKEY_LEDGER_FAIL_OPEN" default:"true"`
}

type GeoIP struct {
	DatabasePath string       `envconfig:"GEOIP_DATABASE_PATH"`
	City         geoip.Toggle `envconfig:"GEOIP_CITY" default:"enabled"`
	Country      geoip.Toggle `envconfig:"GEOIP_COUNTRY" default:"enabled"`
	Timezone     geoip.Toggle `envconfig:"GEOIP_TIMEZONE" default:"enabled"`
	Continent    geoip.Toggle `envconfig:"GEOIP_CONTINENT" default:"enabled"`
	Coordinates  geoip.Toggle `envconfig:"GEOIP_COORDINATES" default:"enabled"`
	PostalCode   geoip.Toggle `envconfig:"GEOIP_POSTAL_CODE" default:"enabled"`
}

// Fields returns the facet toggles as the enrichment field configuration.
func (g GeoIP) Fields() geoip.FieldConfig {
	return geoip.FieldConfig{
		City:        g.City,
		Country:     g.Country,
		Timezone:    g.Timezone,
		Continent:   g.Continent,
		Coordinates: g.Coordinates,
		PostalCode:  g.PostalCode,
	}
}

// Addr returns the host:port pair of the Valkey server.
func (v Valkey) Addr() string {
	return fmt.Sprintf("%s:%s", v.Host, v.Port)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.GeoIP.Fields().Validate(); err != nil {
		return nil, fmt.Errorf("invalid geoip config: %w", err)
	}

	return &cfg, nil
}
