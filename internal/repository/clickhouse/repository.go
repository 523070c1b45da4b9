package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/repository"
)

const countryCodeProperty = "$geoip_country_code"

// Repository implements EventRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
	now    func() time.Time
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
		now:    time.Now,
	}
}

// InitSchema initializes the ClickHouse schema with ReplacingMergeTree engine
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		event_id String,
		event_name LowCardinality(String),
		distinct_id String,
		ip String,
		timestamp DateTime64(3, 'UTC'),
		country_code LowCardinality(String),
		properties String,
		person_set String,
		person_set_once String,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id, timestamp)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of enriched events into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	processedAt := r.now().UTC()
	insertedCount := 0
	for _, event := range events {
		stored, err := toStoredEvent(event, processedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to convert event %s: %w", event.UUID, err)
		}

		if err := batch.AppendStruct(stored); err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// toStoredEvent flattens an enriched event into its ClickHouse row. Events whose
// timestamp is missing or unparsable are stored at processedAt.
func toStoredEvent(event *domain.Event, processedAt time.Time) (*domain.StoredEvent, error) {
	properties, err := marshalMap(event.Properties)
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	set, err := marshalMap(event.Set)
	if err != nil {
		return nil, fmt.Errorf("$set: %w", err)
	}
	setOnce, err := marshalMap(event.SetOnce)
	if err != nil {
		return nil, fmt.Errorf("$set_once: %w", err)
	}

	timestamp := processedAt
	if event.Timestamp != "" {
		if parsed, err := domain.ParseTimestamp(event.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	countryCode, _ := event.Properties[countryCodeProperty].(string)

	return &domain.StoredEvent{
		EventID:     event.UUID,
		EventName:   event.Event,
		DistinctID:  event.DistinctID,
		IP:          event.IP,
		Timestamp:   timestamp,
		CountryCode: countryCode,
		Properties:  properties,
		Set:         set,
		SetOnce:     setOnce,
		ProcessedAt: processedAt,
		Version:     uint64(processedAt.UnixNano()),
	}, nil
}

func marshalMap(m map[string]interface{}) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// GetMetrics retrieves aggregated metrics from ClickHouse
func (r *Repository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	result := &repository.MetricsResult{
		Groups: []repository.MetricsGroupResult{},
	}

	whereClause := "WHERE event_name = ? AND timestamp >= ? AND timestamp <= ?"
	args := []interface{}{query.EventName, time.Unix(query.From, 0).UTC(), time.Unix(query.To, 0).UTC()}

	overallQuery := fmt.Sprintf(`
		SELECT
			count() as total_count,
			uniq(distinct_id) as unique_count
		FROM events FINAL
		%s
	`, whereClause)

	row := r.client.Conn().QueryRow(ctx, overallQuery, args...)
	if err := row.Scan(&result.TotalCount, &result.UniqueCount); err != nil {
		return nil, fmt.Errorf("failed to query overall metrics: %w", err)
	}

	if query.GroupBy == "" {
		return result, nil
	}

	var selectField, groupByClause, orderBy string
	switch query.GroupBy {
	case repository.GroupByCountry:
		selectField = "if(country_code = '', 'unknown', country_code)"
		groupByClause = "GROUP BY group_value"
		orderBy = "ORDER BY total_count DESC"
	case repository.GroupByHour:
		selectField = "formatDateTime(toStartOfHour(timestamp), '%Y-%m-%d %H:00:00')"
		groupByClause = "GROUP BY group_value"
		orderBy = "ORDER BY group_value ASC"
	case repository.GroupByDay:
		selectField = "formatDateTime(toStartOfDay(timestamp), '%Y-%m-%d')"
		groupByClause = "GROUP BY group_value"
		orderBy = "ORDER BY group_value ASC"
	default:
		return nil, fmt.Errorf("unsupported group_by value: %s (supported: country, hour, day)", query.GroupBy)
	}

	groupedQuery := fmt.Sprintf(`
		SELECT
			%s as group_value,
			count() as total_count
		FROM events FINAL
		%s
		%s
		%s
	`, selectField, whereClause, groupByClause, orderBy)

	rows, err := r.client.Conn().Query(ctx, groupedQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped metrics: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close grouped metrics rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var group repository.MetricsGroupResult
		if err := rows.Scan(&group.GroupValue, &group.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan grouped metrics row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped metrics rows: %w", err)
	}

	return result, nil
}
