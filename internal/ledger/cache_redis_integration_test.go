//go:build integration

package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
)

type RedisCacheSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	ledger    *ledger.Ledger
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "valkey/valkey:8-alpine")
	s.Require().NoError(err)
	s.container = container

	addr, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(addr)
	s.Require().NoError(err)

	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())

	s.ledger = ledger.New(ledger.NewRedisCache(s.client), zap.NewNop())
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisCacheSuite) TestRecordThenLookup() {
	ctx := context.Background()

	s.Require().NoError(s.ledger.Record(ctx, "user-1", "1.2.3.4", "2024-03-01T12:00:00Z"))

	entry, found, err := s.ledger.Lookup(ctx, "user-1")
	s.Require().NoError(err)
	s.True(found)
	s.Equal(ledger.Entry{IP: "1.2.3.4", Timestamp: "2024-03-01T12:00:00Z"}, entry)

	raw, err := s.client.Get(ctx, "geoip:last_ip:user-1").Result()
	s.Require().NoError(err)
	s.Equal("1.2.3.4|2024-03-01T12:00:00Z", raw)
}

func (s *RedisCacheSuite) TestEntryExpiresAfterRetention() {
	ctx := context.Background()

	s.Require().NoError(s.ledger.Record(ctx, "user-2", "1.2.3.4", ""))

	ttl, err := s.client.TTL(ctx, "geoip:last_ip:user-2").Result()
	s.Require().NoError(err)
	s.InDelta(ledger.Retention.Seconds(), ttl.Seconds(), 5)
	s.LessOrEqual(ttl, 24*time.Hour)
}

func (s *RedisCacheSuite) TestOrderingAcrossEvents() {
	ctx := context.Background()

	ok, err := s.ledger.ShouldUpdate(ctx, "user-3", "10.0.0.1", "2024-03-01T12:00:00Z")
	s.Require().NoError(err)
	s.True(ok)
	s.Require().NoError(s.ledger.Record(ctx, "user-3", "10.0.0.1", "2024-03-01T12:00:00Z"))

	ok, err = s.ledger.ShouldUpdate(ctx, "user-3", "10.0.0.2", "2024-03-01T11:00:00Z")
	s.Require().NoError(err)
	s.False(ok, "late event must not update")

	ok, err = s.ledger.ShouldUpdate(ctx, "user-3", "10.0.0.1", "2024-03-01T13:00:00Z")
	s.Require().NoError(err)
	s.False(ok, "same IP must not update")
}

func (s *RedisCacheSuite) TestMissingKey() {
	value, found, err := ledger.NewRedisCache(s.client).Get(context.Background(), "geoip:last_ip:nobody")
	s.Require().NoError(err)
	s.False(found)
	s.Empty(value)
}
