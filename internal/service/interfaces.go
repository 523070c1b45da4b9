package service

import (
	"context"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/dto"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
)

// EventServicer defines the interface for event service operations
type EventServicer interface {
	ProcessEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error)
	ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error)
	EnrichEvent(ctx context.Context, req *dto.EnrichEventRequest) (*dto.EnrichEventResponse, error)
	GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error)
}

// EventEnricher adds geo attributes to a single event, returning the pending
// profile update separately from the event
type EventEnricher interface {
	EnrichDeferred(ctx context.Context, event *domain.Event, cfg geoip.FieldConfig) (*domain.Event, *ledger.Reservation, error)
}
