package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/config"
)

// Client wraps a go-redis client connected to Valkey.
type Client struct {
	*redis.Client
	log *zap.Logger
}

// NewClient connects to Valkey and verifies the connection.
// Returns nil, nil if no host is configured.
func NewClient(ctx context.Context, cfg config.Valkey, log *zap.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping valkey at %s: %w", cfg.Addr(), err)
	}

	log.Info("Valkey connection established", zap.String("addr", cfg.Addr()))

	return &Client{Client: client, log: log}, nil
}

// Health checks if the Valkey connection is alive.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Valkey connection.
func (c *Client) Close() error {
	c.log.Info("Closing Valkey connection")
	return c.Client.Close()
}
