package enricher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
	"github.com/BarkinBalci/event-geoip-service/internal/geoip"
	"github.com/BarkinBalci/event-geoip-service/internal/ledger"
	"github.com/BarkinBalci/event-geoip-service/internal/metrics"
)

const (
	loopbackIP = "127.0.0.1"
	// placeholderIP is an Australian address looked up instead of loopback so
	// local development traffic still gets enriched.
	placeholderIP = "13.106.122.3"

	eventPrefix   = "$geoip_"
	setOncePrefix = "$initial_geoip_"
)

// personFields are always present in $set / $set_once when an event updates the
// profile, as null when the current lookup did not produce them.
var personFields = []string{
	"city_name",
	"country_name",
	"country_code",
	"continent_name",
	"continent_code",
	"postal_code",
	"latitude",
	"longitude",
	"time_zone",
}

// IPLedger adjudicates which events may rewrite profile geo properties. A nil
// reservation means the event must not update the profile.
type IPLedger interface {
	Reserve(ctx context.Context, identity, ip, timestamp string) (*ledger.Reservation, error)
}

// Enricher adds geo attributes to events and, when the ledger allows it, to
// the person profile.
type Enricher struct {
	locator geoip.Locator
	ledger  IPLedger
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New creates an enricher. A nil locator is a configuration error and yields
// geoip.ErrUnavailable.
func New(locator geoip.Locator, ledger IPLedger, log *zap.Logger, m *metrics.Metrics) (*Enricher, error) {
	if locator == nil {
		return nil, geoip.ErrUnavailable
	}
	if ledger == nil {
		return nil, errors.New("enricher: ip ledger is required")
	}
	return &Enricher{
		locator: locator,
		ledger:  ledger,
		log:     log,
		metrics: m,
	}, nil
}

// Enrich mutates and returns event, recording a profile update in the ledger
// straight away. Events without an IP, with $geoip_disable set, or without a
// lookup match are returned untouched. An error is only returned for lookup or
// ledger read failures, in which case the event is also untouched.
func (e *Enricher) Enrich(ctx context.Context, event *domain.Event, cfg geoip.FieldConfig) (*domain.Event, error) {
	event, res, err := e.EnrichDeferred(ctx, event, cfg)
	if err != nil {
		return event, err
	}

	// A lost entry only costs a redundant profile update on the next event.
	if err := res.Commit(ctx); err != nil {
		e.log.Warn("Failed to record last profile IP",
			zap.String("distinct_id", event.DistinctID),
			zap.Error(err))
	}
	return event, nil
}

// EnrichDeferred behaves like Enrich but leaves the ledger write to the caller.
// When the event updates the profile, the returned reservation must be committed
// once the event is stored, or released if it never will be.
func (e *Enricher) EnrichDeferred(ctx context.Context, event *domain.Event, cfg geoip.FieldConfig) (*domain.Event, *ledger.Reservation, error) {
	ip, ok := effectiveIP(event)
	if !ok {
		e.metrics.IncrementOutcome(metrics.OutcomeSkippedNoIP)
		return event, nil, nil
	}
	if truthy(event.Properties[domain.PropertyGeoIPDisable]) {
		e.metrics.IncrementOutcome(metrics.OutcomeSkippedDisabled)
		return event, nil, nil
	}

	if ip == loopbackIP {
		ip = placeholderIP
	}

	start := time.Now()
	result, err := e.locator.Locate(ctx, ip)
	e.metrics.ObserveLookupLatency(time.Since(start))
	if err != nil {
		e.metrics.IncrementOutcome(metrics.OutcomeError)
		return event, nil, fmt.Errorf("failed to locate ip: %w", err)
	}
	if result == nil {
		e.metrics.IncrementOutcome(metrics.OutcomeNoMatch)
		return event, nil, nil
	}

	attrs := geoip.Extract(result, cfg)

	res, err := e.ledger.Reserve(ctx, event.DistinctID, ip, event.Timestamp)
	if err != nil {
		e.metrics.IncrementOutcome(metrics.OutcomeError)
		return event, nil, fmt.Errorf("failed to check ip ledger: %w", err)
	}
	setPersonProps := res != nil

	if event.Properties == nil {
		event.Properties = make(map[string]interface{}, len(attrs))
	}
	if setPersonProps {
		event.Set = withDefaults(eventPrefix, event.Set)
		event.SetOnce = withDefaults(setOncePrefix, event.SetOnce)
	}

	for k, v := range attrs {
		event.Properties[eventPrefix+k] = v
		if setPersonProps {
			event.Set[eventPrefix+k] = v
			event.SetOnce[setOncePrefix+k] = v
		}
	}

	if !setPersonProps {
		e.metrics.IncrementOutcome(metrics.OutcomeEventOnly)
		return event, nil, nil
	}

	e.metrics.IncrementOutcome(metrics.OutcomePersonUpdated)
	e.log.Debug("Updated person geo properties",
		zap.String("distinct_id", event.DistinctID),
		zap.String("event_id", event.UUID),
		zap.Int("attribute_count", len(attrs)))

	return event, res, nil
}

// withDefaults returns a new map holding a null for every person field under
// prefix, overlaid with the caller's values.
func withDefaults(prefix string, existing map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(personFields)+len(existing))
	for _, field := range personFields {
		merged[prefix+field] = nil
	}
	for k, v := range existing {
		merged[k] = v
	}
	return merged
}

// effectiveIP prefers properties.$ip over the transport-level ip.
func effectiveIP(event *domain.Event) (string, bool) {
	if v, ok := event.Properties[domain.PropertyIP]; ok && truthy(v) {
		if s, isString := v.(string); isString {
			return s, true
		}
		return fmt.Sprint(v), true
	}
	if event.IP != "" {
		return event.IP, true
	}
	return "", false
}

// truthy reports whether a decoded JSON value counts as set: null, false, 0, NaN
// and "" do not.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}
