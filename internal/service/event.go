package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/dto"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/queue"
	"github.com/BarkinBalci/event-geoip-service/internal/repository"
)

// ErrValidation marks request errors that are the caller's fault
var ErrValidation = errors.New("validation error")

const maxHourlyRange = 90 * 24 * time.Hour

// EventService represents event service
type EventService struct {
	publisher  queue.QueuePublisher
	repository repository.EventRepository
	enricher   EventEnricher
	fields     geoip.FieldConfig
	log        *zap.Logger
	now        func() time.Time
}

// NewEventService creates a new event service. fields are the default facet
// toggles for synchronous enrichment.
func NewEventService(publisher queue.QueuePublisher, repo repository.EventRepository, enricher EventEnricher, fields geoip.FieldConfig, log *zap.Logger) *EventService {
	return &EventService{
		publisher:  publisher,
		repository: repo,
		enricher:   enricher,
		fields:     fields,
		log:        log,
		now:        time.Now,
	}
}

func toDomainEvent(req *dto.PublishEventRequest) *domain.Event {
	return &domain.Event{
		UUID:       req.UUID,
		Event:      req.Event,
		DistinctID: req.DistinctID,
		IP:         req.IP,
		Timestamp:  req.Timestamp,
		Properties: req.Properties,
		Set:        req.Set,
		SetOnce:    req.SetOnce,
	}
}

func fromDomainEvent(event *domain.Event) dto.PublishEventRequest {
	return dto.PublishEventRequest{
		UUID:       event.UUID,
		Event:      event.Event,
		DistinctID: event.DistinctID,
		IP:         event.IP,
		Timestamp:  event.Timestamp,
		Properties: event.Properties,
		Set:        event.Set,
		SetOnce:    event.SetOnce,
	}
}

// prepareEvent validates req and fills in the UUID when absent. A missing
// timestamp is set to now only when fillTimestamp is true.
func (s *EventService) prepareEvent(req *dto.PublishEventRequest, fillTimestamp bool) (*domain.Event, error) {
	if req.DistinctID == "" {
		return nil, fmt.Errorf("%w: distinct_id is required", ErrValidation)
	}
	if req.Event == "" {
		return nil, fmt.Errorf("%w: event is required", ErrValidation)
	}

	event := toDomainEvent(req)
	now := s.now().UTC()

	if event.Timestamp == "" {
		if fillTimestamp {
			event.Timestamp = now.Format(time.RFC3339Nano)
		}
	} else {
		ts, err := domain.ParseTimestamp(event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if ts.After(now.Add(time.Second)) {
			s.log.Warn("Timestamp validation failed: future timestamp",
				zap.Time("event_timestamp", ts),
				zap.Time("current_time", now),
				zap.String("event_name", event.Event))
			return nil, fmt.Errorf("%w: timestamp cannot be in the future: %s", ErrValidation, event.Timestamp)
		}
	}

	if event.UUID == "" {
		event.UUID = event.ComputeID()
	}

	return event, nil
}

// ProcessEvent validates a single event and publishes it for enrichment
func (s *EventService) ProcessEvent(ctx context.Context, req *dto.PublishEventRequest) (string, error) {
	event, err := s.prepareEvent(req, true)
	if err != nil {
		return "", err
	}

	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		return "", fmt.Errorf("failed to publish event to queue: %w", err)
	}

	return event.UUID, nil
}

// ProcessBulkEvents validates and processes multiple events
func (s *EventService) ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error) {
	var eventIDs []string
	var errs []string

	for i := range events {
		eventID, err := s.ProcessEvent(ctx, &events[i])
		if err != nil {
			errs = append(errs, fmt.Sprintf("event %d: %s", i, err.Error()))
			s.log.Warn("Failed to process event in bulk",
				zap.Int("index", i),
				zap.Error(err),
				zap.String("event_name", events[i].Event))
			continue
		}
		eventIDs = append(eventIDs, eventID)
	}

	return eventIDs, errs, nil
}

// EnrichEvent runs geo enrichment synchronously and returns the result without
// publishing it. The preview never advances the IP ledger, and a missing
// timestamp stays empty so the event is judged exactly as the pipeline would.
func (s *EventService) EnrichEvent(ctx context.Context, req *dto.EnrichEventRequest) (*dto.EnrichEventResponse, error) {
	fields := s.fields
	if req.GeoIPConfig != nil {
		if err := req.GeoIPConfig.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		fields = *req.GeoIPConfig
	}

	event, err := s.prepareEvent(&req.Event, false)
	if err != nil {
		return nil, err
	}

	enriched, res, err := s.enricher.EnrichDeferred(ctx, event, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to enrich event: %w", err)
	}
	res.Release()

	return &dto.EnrichEventResponse{Event: fromDomainEvent(enriched)}, nil
}

// GetMetrics retrieves aggregated metrics from the repository
func (s *EventService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	if req.From > req.To {
		s.log.Warn("Invalid time range for metrics",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("event_name", req.EventName))
		return nil, fmt.Errorf("%w: from timestamp must be less than or equal to to timestamp", ErrValidation)
	}

	if req.GroupBy != "" {
		if !repository.ValidGroupBy(req.GroupBy) {
			s.log.Warn("Invalid group_by value", zap.String("group_by", req.GroupBy))
			return nil, fmt.Errorf("%w: invalid group_by value: %s (supported: country, hour, day)", ErrValidation, req.GroupBy)
		}

		rangeDays := (req.To - req.From) / (24 * 3600)
		if req.GroupBy == repository.GroupByHour && time.Duration(req.To-req.From)*time.Second > maxHourlyRange {
			s.log.Warn("Large time range for hourly grouping", zap.Int64("range_days", rangeDays))
			return nil, fmt.Errorf("%w: time range too large for hourly grouping (max 90 days, got %d days)", ErrValidation, rangeDays)
		}
	}

	query := repository.MetricsQuery{
		EventName: req.EventName,
		From:      req.From,
		To:        req.To,
		GroupBy:   req.GroupBy,
	}

	s.log.Info("Querying metrics",
		zap.String("event_name", req.EventName),
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("group_by", req.GroupBy))

	result, err := s.repository.GetMetrics(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics from repository: %w", err)
	}

	response := &dto.GetMetricsResponse{
		EventName:   req.EventName,
		From:        req.From,
		To:          req.To,
		TotalCount:  result.TotalCount,
		UniqueCount: result.UniqueCount,
		GroupBy:     req.GroupBy,
		Groups:      make([]dto.MetricsGroupData, 0, len(result.Groups)),
	}

	for _, group := range result.Groups {
		response.Groups = append(response.Groups, dto.MetricsGroupData{
			GroupValue: group.GroupValue,
			TotalCount: group.TotalCount,
		})
	}

	return response, nil
}
