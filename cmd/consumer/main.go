package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/config"
	"github.com/BarkinBalci/event-geoip-service/internal/consumer"
	"github.com/BarkinBalci/event-geoip-service/internal/enricher"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
	"github.com/BarkinBalci/event-geoip-service/internal/logger"
	"github.com/BarkinBalci/event-geoip-service/internal/metrics"
	"github.com/BarkinBalci/event-geoip-service/internal/queue/sqs"
	"github.com/BarkinBalci/event-geoip-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/event-geoip-service/internal/valkey"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, "consumer")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting consumer service",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	// The geo database is checked first so a misconfigured deployment never
	// receives a message
	locator, err := geoip.NewMaxMindLocator(cfg.GeoIP.DatabasePath, log)
	if err != nil {
		log.Fatal("GeoIP database is not available, set GEOIP_DATABASE_PATH to a readable .mmdb file",
			zap.String("path", cfg.GeoIP.DatabasePath),
			zap.Error(err))
	}
	defer func() {
		if err := locator.Close(); err != nil {
			log.Error("Failed to close GeoIP database", zap.Error(err))
		}
	}()

	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	repo := clickhouse.NewRepository(chClient, log)

	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	valkeyClient, err := valkey.NewClient(ctx, cfg.Valkey, log)
	if err != nil {
		log.Fatal("Failed to connect to Valkey", zap.Error(err))
	}

	var cache ledger.Cache
	if valkeyClient != nil {
		defer func() {
			if err := valkeyClient.Close(); err != nil {
				log.Error("Failed to close Valkey client", zap.Error(err))
			}
		}()
		cache = ledger.NewRedisCache(valkeyClient)
	} else {
		log.Warn("VALKEY_HOST not set, using in-process IP ledger; run a single consumer replica")
		cache = ledger.NewMemoryCache()
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	geoEnricher, err := enricher.New(locator, ledger.New(cache, log, ledger.WithFailOpen(cfg.Valkey.FailOpen)), log, m)
	if err != nil {
		log.Fatal("Failed to create enricher", zap.Error(err))
	}

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	c := consumer.NewConsumer(cfg, sqsClient, geoEnricher, repo, log, m)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := repo.Ping(r.Context()); err != nil {
			log.Warn("Health check failed", zap.String("dependency", "clickhouse"), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if valkeyClient != nil {
			if err := valkeyClient.Health(r.Context()); err != nil {
				log.Warn("Health check failed", zap.String("dependency", "valkey"), zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	healthServer := &http.Server{
		Addr:              ":" + cfg.Consumer.HealthCheckPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Health check server starting", zap.String("address", healthServer.Addr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("Consumer starting")
		if err := c.Start(consumerCtx); err != nil {
			log.Error("Consumer error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down consumer gracefully")
	cancel()
	<-done

	shutdownCtx, stop := context.WithTimeout(ctx, 5*time.Second)
	defer stop()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Health check server shutdown error", zap.Error(err))
	}
}
