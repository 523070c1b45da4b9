package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/enricher"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
	"github.com/BarkinBalci/event-geoip-service/internal/metrics"
	"github.com/BarkinBalci/event-geoip-service/internal/repository"
)

// MockEventRepository is a mock implementation of repository.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockEventRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockEventRepository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MetricsResult), args.Error(1)
}

// countingSettler counts acks and nacks across goroutines
type countingSettler struct {
	mu     sync.Mutex
	acked  []string
	nacked []string
}

func (s *countingSettler) envelope(id string) *Envelope {
	event := &domain.Event{
		UUID:       id,
		Event:      "$pageview",
		DistinctID: "user-" + id,
		Timestamp:  testTimestamp,
	}
	return NewEnvelope("msg-"+id, event,
		func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.acked = append(s.acked, id)
			return nil
		},
		func(context.Context) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.nacked = append(s.nacked, id)
			return nil
		})
}

func (s *countingSettler) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.acked), len(s.nacked)
}

func batchOf(n int) interface{} {
	return mock.MatchedBy(func(events []*domain.Event) bool { return len(events) == n })
}

func TestBatchWriter_Start_BatchSizeThreshold(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(3)).Return(3, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: 10 * time.Second}, zap.NewNop(), nil)
	settler := &countingSettler{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan *Envelope, 5)
	go writer.Start(ctx, in)

	for i := 0; i < 3; i++ {
		in <- settler.envelope(fmt.Sprint(i))
	}

	assert.Eventually(t, func() bool {
		acked, _ := settler.counts()
		return acked == 3
	}, time.Second, 10*time.Millisecond)
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_TimeoutFlush(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(2)).Return(2, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 50 * time.Millisecond}, zap.NewNop(), nil)
	settler := &countingSettler{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan *Envelope, 5)
	go writer.Start(ctx, in)

	in <- settler.envelope("1")
	in <- settler.envelope("2")

	assert.Eventually(t, func() bool {
		acked, _ := settler.counts()
		return acked == 2
	}, time.Second, 10*time.Millisecond)
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_InsertFailureNacksBatch(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(2)).Return(0, errors.New("clickhouse unavailable"))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Second}, zap.NewNop(), m)
	settler := &countingSettler{}

	in := make(chan *Envelope, 2)
	in <- settler.envelope("1")
	in <- settler.envelope("2")
	close(in)

	writer.Start(context.Background(), in)

	acked, nacked := settler.counts()
	assert.Zero(t, acked)
	assert.Equal(t, 2, nacked)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchWrites.WithLabelValues("failed")))
}

func TestBatchWriter_Start_PartialInsertNacksBatch(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(3)).Return(2, nil)

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Second}, zap.NewNop(), nil)
	settler := &countingSettler{}

	in := make(chan *Envelope, 3)
	for i := 0; i < 3; i++ {
		in <- settler.envelope(fmt.Sprint(i))
	}
	close(in)

	writer.Start(context.Background(), in)

	acked, nacked := settler.counts()
	assert.Zero(t, acked)
	assert.Equal(t, 3, nacked)
}

func TestBatchWriter_Start_RecordsInsertedBatches(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(2)).Return(2, nil)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Second}, zap.NewNop(), m)
	settler := &countingSettler{}

	in := make(chan *Envelope, 4)
	for i := 0; i < 4; i++ {
		in <- settler.envelope(fmt.Sprint(i))
	}
	close(in)

	writer.Start(context.Background(), in)

	acked, _ := settler.counts()
	assert.Equal(t, 4, acked)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.BatchWrites.WithLabelValues("inserted")))
	mockRepo.AssertNumberOfCalls(t, "InsertBatch", 2)
}

func TestBatchWriter_Start_FlushesPendingOnShutdown(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), batchOf(2)).Return(2, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 10 * time.Second}, zap.NewNop(), nil)
	settler := &countingSettler{}

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan *Envelope, 2)

	done := make(chan struct{})
	go func() {
		writer.Start(ctx, in)
		close(done)
	}()

	in <- settler.envelope("1")
	in <- settler.envelope("2")
	assert.Eventually(t, func() bool { return len(in) == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch writer did not stop")
	}

	acked, _ := settler.counts()
	assert.Equal(t, 2, acked)
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_InputClosedWithPending(t *testing.T) {
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(1)).Return(1, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 10 * time.Second}, zap.NewNop(), nil)
	settler := &countingSettler{}

	in := make(chan *Envelope, 1)
	in <- settler.envelope("1")
	close(in)

	writer.Start(context.Background(), in)

	acked, _ := settler.counts()
	assert.Equal(t, 1, acked)
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_EmptyBatchNotFlushed(t *testing.T) {
	mockRepo := new(MockEventRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 10 * time.Millisecond}, zap.NewNop(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	writer.Start(ctx, make(chan *Envelope))

	mockRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

type profileFixture struct {
	enricher *enricher.Enricher
	ledger   *ledger.Ledger
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	locator := geoip.NewStaticLocator(map[string]*geoip.LocationResult{
		"89.160.20.129": {Country: &geoip.Country{IsoCode: "SE"}},
	})
	l := ledger.New(ledger.NewMemoryCache(), zap.NewNop())
	e, err := enricher.New(locator, l, zap.NewNop(), nil)
	require.NoError(t, err)
	return &profileFixture{enricher: e, ledger: l}
}

// deliver enriches a fresh copy of the same message, as a redelivery would.
func (f *profileFixture) deliver(t *testing.T, settler *countingSettler) *Envelope {
	t.Helper()
	env := settler.envelope("1")
	env.Event.IP = "89.160.20.129"
	_, res, err := f.enricher.EnrichDeferred(context.Background(), env.Event, geoip.DefaultFieldConfig())
	require.NoError(t, err)
	env.Reserve(res)
	return env
}

func (f *profileFixture) recorded(t *testing.T) bool {
	t.Helper()
	_, found, err := f.ledger.Lookup(context.Background(), "user-1")
	require.NoError(t, err)
	return found
}

func TestBatchWriter_Start_RedeliveredEventKeepsProfileUpdate(t *testing.T) {
	f := newProfileFixture(t)
	settler := &countingSettler{}

	var stored []*domain.Event
	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(1)).Return(0, errors.New("clickhouse unavailable")).Once()
	mockRepo.On("InsertBatch", mock.Anything, batchOf(1)).
		Run(func(args mock.Arguments) { stored = args.Get(1).([]*domain.Event) }).
		Return(1, nil).Once()

	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 1, FlushTimeout: time.Second}, zap.NewNop(), nil)

	first := make(chan *Envelope, 1)
	first <- f.deliver(t, settler)
	close(first)
	writer.Start(context.Background(), first)

	_, nacked := settler.counts()
	assert.Equal(t, 1, nacked)
	assert.False(t, f.recorded(t), "failed insert must not advance the ledger")

	second := make(chan *Envelope, 1)
	second <- f.deliver(t, settler)
	close(second)
	writer.Start(context.Background(), second)

	require.Len(t, stored, 1)
	assert.Equal(t, "SE", stored[0].Set["$geoip_country_code"])
	assert.Equal(t, "SE", stored[0].SetOnce["$initial_geoip_country_code"])
	assert.True(t, f.recorded(t))
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_AckFailureReleasesProfileUpdate(t *testing.T) {
	f := newProfileFixture(t)
	settler := &countingSettler{}

	mockRepo := new(MockEventRepository)
	mockRepo.On("InsertBatch", mock.Anything, batchOf(1)).Return(1, nil).Once()
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 1, FlushTimeout: time.Second}, zap.NewNop(), nil)

	env := f.deliver(t, settler)
	env.ack = func(context.Context) error { return errors.New("receipt handle expired") }

	in := make(chan *Envelope, 1)
	in <- env
	close(in)
	writer.Start(context.Background(), in)

	assert.False(t, f.recorded(t))

	retry := f.deliver(t, settler)
	assert.Equal(t, "SE", retry.Event.Set["$geoip_country_code"])
}
