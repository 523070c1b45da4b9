package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"distinct_id is required"`
}

// PublishEventResponse represents a successful event ingestion response
type PublishEventResponse struct {
	EventID string `json:"event_id" example:"6f1c2a3b-4d5e-5f60-8a7b-9c0d1e2f3a4b"`
	Status  string `json:"status" example:"accepted"`
}

// PublishBulkEventsResponse represents a successful bulk event ingestion response
type PublishBulkEventsResponse struct {
	Accepted int      `json:"accepted" example:"5"`
	Rejected int      `json:"rejected" example:"0"`
	EventIDs []string `json:"event_ids,omitempty"`
	Errors   []string `json:"errors,omitempty" example:"event 3: distinct_id is required"`
}

// EnrichEventResponse carries the enriched event
type EnrichEventResponse struct {
	Event PublishEventRequest `json:"event"`
}

// MetricsGroupData represents aggregated metrics for a specific group
type MetricsGroupData struct {
	GroupValue string `json:"group_value" example:"SE"`
	TotalCount uint64 `json:"total_count" example:"1500"`
}

// GetMetricsResponse represents the metrics query response
type GetMetricsResponse struct {
	EventName   string             `json:"event_name" example:"$pageview"`
	From        int64              `json:"from" example:"1723475612"`
	To          int64              `json:"to" example:"1723562012"`
	TotalCount  uint64             `json:"total_count" example:"5000"`
	UniqueCount uint64             `json:"unique_count" example:"2500"`
	GroupBy     string             `json:"group_by,omitempty" example:"country"`
	Groups      []MetricsGroupData `json:"groups,omitempty"`
}
