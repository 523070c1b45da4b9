package consumer

import (
	"context"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
)

// MessageParser defines the interface for parsing raw message bytes into events
type MessageParser interface {
	Parse(body []byte) (*domain.Event, error)
}

// EventEnricher adds geo attributes to a single event. A non-nil reservation is
// the profile update to record once the event is stored.
type EventEnricher interface {
	EnrichDeferred(ctx context.Context, event *domain.Event, cfg geoip.FieldConfig) (*domain.Event, *ledger.Reservation, error)
}
