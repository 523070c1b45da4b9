package consumer

import (
	"context"

	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
)

// EnrichStage adds geo attributes to every envelope's event
type EnrichStage struct {
	enricher EventEnricher
	fields   geoip.FieldConfig
	log      *zap.Logger
}

// NewEnrichStage creates a new enrich stage using fields for every event
func NewEnrichStage(enricher EventEnricher, fields geoip.FieldConfig, log *zap.Logger) *EnrichStage {
	return &EnrichStage{
		enricher: enricher,
		fields:   fields,
		log:      log,
	}
}

// Start enriches envelopes from in and forwards them to out. Envelopes whose
// enrichment fails are nacked and not forwarded. The ledger write for a profile
// update travels with the envelope and is settled by the batch writer.
func (s *EnrichStage) Start(ctx context.Context, in <-chan *Envelope, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Enrich stage shutting down")
			return
		case envelope, ok := <-in:
			if !ok {
				s.log.Info("Enrich stage input channel closed")
				return
			}

			_, res, err := s.enricher.EnrichDeferred(ctx, envelope.Event, s.fields)
			if err != nil {
				s.log.Error("Failed to enrich event",
					zap.String("message_id", envelope.MessageID),
					zap.String("distinct_id", envelope.Event.DistinctID),
					zap.Error(err))
				if err := envelope.Nack(ctx); err != nil {
					s.log.Error("Failed to nack envelope", zap.Error(err))
				}
				continue
			}
			envelope.Reserve(res)

			select {
			case <-ctx.Done():
				envelope.ReleaseProfile()
				return
			case out <- envelope:
			}
		}
	}
}
