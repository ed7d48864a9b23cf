package models

import "time"

// ResolveResponse represents the response from a resolve request.
type ResolveResponse struct {
	Success        bool          `json:"success"`
	Ad             *NormalizedAd `json:"ad,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Engine         string        `json:"engine_used"`
	Cached         bool          `json:"cached"`
	RequestID      string        `json:"request_id"`
}

// DetectResponse represents the response from a snapshot detection request.
type DetectResponse struct {
	Success        bool          `json:"success"`
	Cards          []AdCard      `json:"cards"`
	PageURL        string        `json:"page_url,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
