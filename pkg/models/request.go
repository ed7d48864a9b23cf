package models

import "time"

// ResolveRequest represents the request payload for resolving an ad URL into
// a normalized record.
type ResolveRequest struct {
	AdURL   string          `json:"ad_url" validate:"required,url"`
	Options *ResolveOptions `json:"options,omitempty"`
}

// ResolveOptions provides additional configuration for resolve requests.
type ResolveOptions struct {
	Engine    string        `json:"engine,omitempty"`     // "static", "browser", "auto"
	Timeout   time.Duration `json:"timeout,omitempty"`    // Request timeout
	SkipCache bool          `json:"skip_cache,omitempty"` // Bypass the resolve cache
	UserAgent string        `json:"user_agent,omitempty"` // Custom user agent
}

// DetectRequest carries a DOM snapshot captured by the extension content
// script for server-side ad-card detection.
type DetectRequest struct {
	HTML    string `json:"html" validate:"required"`
	PageURL string `json:"page_url" validate:"omitempty,url"`
}
