package consumer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BarkinBalci/event-geoip-service/internal/domain"
)

// JSONEventParser implements MessageParser for JSON-formatted event messages
type JSONEventParser struct{}

// NewJSONEventParser creates a new JSON event parser
func NewJSONEventParser() *JSONEventParser {
	return &JSONEventParser{}
}

// Parse decodes a message body into an Event. Events without a distinct_id
// cannot be attributed to a person and are rejected. A missing uuid is derived
// from the event's identifying fields.
func (p *JSONEventParser) Parse(body []byte) (*domain.Event, error) {
	var event domain.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	if event.DistinctID == "" {
		return nil, errors.New("event has no distinct_id")
	}
	if event.UUID == "" {
		event.UUID = event.ComputeID()
	}

	return &event, nil
}
