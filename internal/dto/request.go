package dto

import "github.com/BarkinBalci/event-geoip-service/internal/geoip"

// PublishEventRequest represents a publish event request
type PublishEventRequest struct {
	UUID       string                 `json:"uuid,omitempty" example:"0190f6a4-5c2b-7d1e-9f3a-2b4c6d8e0f12"`
	Event      string                 `json:"event" binding:"required" example:"$pageview"`
	DistinctID string                 `json:"distinct_id" binding:"required" example:"user_123"`
	IP         string                 `json:"ip,omitempty" example:"89.160.20.129"`
	Timestamp  string                 `json:"timestamp,omitempty" example:"2024-03-01T12:00:00Z"`
	Properties map[string]interface{} `json:"properties,omitempty" swaggertype:"object"`
	Set        map[string]interface{} `json:"$set,omitempty" swaggertype:"object"`
	SetOnce    map[string]interface{} `json:"$set_once,omitempty" swaggertype:"object"`
}

// PublishEventsBulkRequest represents a publish bulk event request
type PublishEventsBulkRequest struct {
	Events []PublishEventRequest `json:"events" binding:"required,min=1,max=1000,dive"`
}

// EnrichEventRequest asks for synchronous enrichment of one event. GeoIPConfig
// replaces the service's facet toggles for this request only.
type EnrichEventRequest struct {
	Event       PublishEventRequest `json:"event"`
	GeoIPConfig *geoip.FieldConfig  `json:"geoip_config,omitempty"`
}

// GetMetricsRequest represents a metrics query request
type GetMetricsRequest struct {
	EventName string `form:"event_name" binding:"required" example:"$pageview"`
	From      int64  `form:"from" binding:"required" example:"1723475612"`
	To        int64  `form:"to" binding:"required" example:"1723562012"`
	GroupBy   string `form:"group_by" example:"country"`
}
