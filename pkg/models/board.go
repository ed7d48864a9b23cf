package models

import "time"

// Board is a user-defined collection of saved ads, as summarized by the web
// app's boards endpoint.
type Board struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AssetCount int       `json:"asset_count,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// SaveResult is the web app's response to an ad submission.
type SaveResult struct {
	ID        string      `json:"id"`
	FBAdID    string      `json:"fb_ad_id"`
	BrandName string      `json:"brand_name,omitempty"`
	Headline  string      `json:"headline,omitempty"`
	CTA       string      `json:"cta,omitempty"`
	Media     []MediaItem `json:"media,omitempty"`
	BoardID   string      `json:"board_id,omitempty"`
	// Status is "created" for new assets and "existing" when the ad was
	// already saved.
	Status string `json:"status"`
}
