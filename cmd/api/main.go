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

	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/docs"
	"github.com/BarkinBalci/event-geoip-service/internal/config"
	"github.com/BarkinBalci/event-geoip-service/internal/enricher"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/handler"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
	"github.com/BarkinBalci/event-geoip-service/internal/logger"
	"github.com/BarkinBalci/event-geoip-service/internal/queue/sqs"
	"github.com/BarkinBalci/event-geoip-service/internal/repository/clickhouse"
	"github.com/BarkinBalci/event-geoip-service/internal/service"
	"github.com/BarkinBalci/event-geoip-service/internal/valkey"
)

// @title Event GeoIP Service API
// @version 1.0
// @description API for ingesting events and enriching them with IP geolocation
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	repo := clickhouse.NewRepository(clickhouseClient, log)

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
		log.Warn("VALKEY_HOST not set, enrichment previews read an in-process IP ledger not shared with the consumer")
		cache = ledger.NewMemoryCache()
	}

	ipLedger := ledger.New(cache, log, ledger.WithFailOpen(cfg.Valkey.FailOpen))

	geoEnricher, err := enricher.New(locator, ipLedger, log, nil)
	if err != nil {
		log.Fatal("Failed to create enricher", zap.Error(err))
	}

	eventService := service.NewEventService(sqsClient, repo, geoEnricher, cfg.GeoIP.Fields(), log)

	h := handler.NewHandler(eventService, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.APIPort),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("API server shutdown error", zap.Error(err))
	}
}
