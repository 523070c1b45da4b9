package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/metrics"
	"github.com/BarkinBalci/event-geoip-service/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter batches enriched events into the repository
type BatchWriter struct {
	repository repository.EventRepository
	config     BatchWriterConfig
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// NewBatchWriter creates a new batch writer. m may be nil.
func NewBatchWriter(repo repository.EventRepository, config BatchWriterConfig, log *zap.Logger, m *metrics.Metrics) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
		metrics:    m,
	}
}

// Start collects envelopes and flushes them on size or timeout. Pending
// envelopes are flushed before returning.
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			w.flushFinal(ctx, batch)
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				w.flushFinal(ctx, batch)
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Debug("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Debug("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

func (w *BatchWriter) flushFinal(ctx context.Context, batch []*Envelope) {
	if len(batch) == 0 {
		return
	}
	w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
	// The pipeline context is already cancelled here; give the last insert its own deadline
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	w.processBatch(flushCtx, batch)
}

// processBatch inserts the batch, then acks every envelope on success or nacks
// every envelope on any failure. Profile updates are recorded in the ledger only
// for envelopes that were stored and acked, so a redelivered event is judged
// afresh.
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	events := make([]*domain.Event, len(envelopes))
	for i, env := range envelopes {
		events[i] = env.Event
	}

	insertedCount, err := w.repository.InsertBatch(ctx, events)

	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("event_count", len(events)))
		w.metrics.IncrementBatchWrite("failed")
		w.nackAll(ctx, envelopes)
		return
	}

	if insertedCount != len(events) {
		w.log.Warn("Partial insert success",
			zap.Int("inserted", insertedCount),
			zap.Int("expected", len(events)))
		w.metrics.IncrementBatchWrite("failed")
		w.nackAll(ctx, envelopes)
		return
	}

	w.log.Info("Inserted enriched events", zap.Int("count", insertedCount))
	w.metrics.IncrementBatchWrite("inserted")
	w.ackAll(ctx, envelopes)
}

func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope",
				zap.String("message_id", env.MessageID),
				zap.Error(err))
			env.ReleaseProfile()
			continue
		}
		if err := env.CommitProfile(ctx); err != nil {
			w.log.Warn("Failed to record last profile IP",
				zap.String("message_id", env.MessageID),
				zap.String("distinct_id", env.Event.DistinctID),
				zap.Error(err))
		}
	}
}

func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		env.ReleaseProfile()
		if err := env.Nack(ctx); err != nil {
			w.log.Error("Failed to nack envelope",
				zap.String("message_id", env.MessageID),
				zap.Error(err))
		}
	}
}
