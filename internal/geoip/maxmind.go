package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/maxminddb-golang"
	"go.uber.org/zap"
)

// MaxMindLocator implements Locator on top of a GeoIP2 or GeoLite2 City database.
type MaxMindLocator struct {
	reader *maxminddb.Reader
	log    *zap.Logger
}

// NewMaxMindLocator opens the .mmdb file at path. An empty path yields ErrUnavailable.
func NewMaxMindLocator(path string, log *zap.Logger) (*MaxMindLocator, error) {
	if path == "" {
		return nil, ErrUnavailable
	}

	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}

	log.Info("GeoIP database loaded",
		zap.String("path", path),
		zap.String("database_type", reader.Metadata.DatabaseType),
		zap.Uint("build_epoch", reader.Metadata.BuildEpoch))

	return &MaxMindLocator{reader: reader, log: log}, nil
}

// Locate looks up ip. Unparsable addresses and addresses outside the database
// return nil, nil.
func (l *MaxMindLocator) Locate(ctx context.Context, ip string) (*LocationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		l.log.Debug("Skipping lookup for unparsable IP", zap.String("ip", ip))
		return nil, nil
	}

	var result LocationResult
	_, ok, err := l.reader.LookupNetwork(parsed, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", ip, err)
	}
	if !ok {
		return nil, nil
	}

	return &result, nil
}

// Close releases the memory-mapped database.
func (l *MaxMindLocator) Close() error {
	return l.reader.Close()
}
