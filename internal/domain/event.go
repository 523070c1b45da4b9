package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Property keys read from or written to event payloads
const (
	PropertyIP           = "$ip"
	PropertyGeoIPDisable = "$geoip_disable"
)

// Event is an analytics event as it travels through ingestion and enrichment.
// Properties, Set and SetOnce are created on demand by the enricher.
type Event struct {
	UUID       string                 `json:"uuid,omitempty"`
	Event      string                 `json:"event"`
	DistinctID string                 `json:"distinct_id"`
	IP         string                 `json:"ip,omitempty"`
	Timestamp  string                 `json:"timestamp,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Set        map[string]interface{} `json:"$set,omitempty"`
	SetOnce    map[string]interface{} `json:"$set_once,omitempty"`
}

// ComputeID derives a name-based UUID from the fields that identify an event, so
// retried submissions collapse onto one row
func (e *Event) ComputeID() string {
	data := fmt.Sprintf("%s|%s|%s", e.DistinctID, e.Event, e.Timestamp)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)).String()
}

// StoredEvent represents an enriched event stored in ClickHouse
type StoredEvent struct {
	EventID     string    `ch:"event_id"`
	EventName   string    `ch:"event_name"`
	DistinctID  string    `ch:"distinct_id"`
	IP          string    `ch:"ip"`
	Timestamp   time.Time `ch:"timestamp"`
	CountryCode string    `ch:"country_code"`
	Properties  string    `ch:"properties"`
	Set         string    `ch:"person_set"`
	SetOnce     string    `ch:"person_set_once"`
	ProcessedAt time.Time `ch:"processed_at"`
	Version     uint64    `ch:"version"`
}
