package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/config"
	"github.com/BarkinBalci/event-geoip-service/internal/metrics"
	"github.com/BarkinBalci/event-geoip-service/internal/queue"
	"github.com/BarkinBalci/event-geoip-service/internal/repository"
)

const stageBufferSize = 100

// Consumer runs the receive -> parse -> enrich -> write pipeline
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	enrich      *EnrichStage
	batchWriter *BatchWriter
}

// NewConsumer wires the pipeline stages from configuration
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, enricher EventEnricher, repo repository.EventRepository, log *zap.Logger, m *metrics.Metrics) *Consumer {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 20,
		BufferSize:      stageBufferSize,
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONEventParser(), log)

	enrich := NewEnrichStage(enricher, cfg.GeoIP.Fields(), log)

	batchWriter := NewBatchWriter(repo, BatchWriterConfig{
		MaxBatchSize: cfg.Consumer.BatchSizeMax,
		FlushTimeout: time.Duration(cfg.Consumer.BatchTimeoutSec) * time.Second,
	}, log, m)

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		enrich:      enrich,
		batchWriter: batchWriter,
	}
}

// Start runs all stages and blocks until every stage has stopped
func (c *Consumer) Start(ctx context.Context) error {
	messageChan := make(chan types.Message, stageBufferSize)
	parsedChan := make(chan *Envelope, stageBufferSize)
	enrichedChan := make(chan *Envelope, stageBufferSize)

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messageChan)
	}()

	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messageChan, parsedChan)
	}()

	go func() {
		defer wg.Done()
		c.enrich.Start(ctx, parsedChan, enrichedChan)
	}()

	go func() {
		defer wg.Done()
		c.batchWriter.Start(ctx, enrichedChan)
	}()

	wg.Wait()
	return nil
}
