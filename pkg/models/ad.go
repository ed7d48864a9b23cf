package models

import (
	"math"
	"time"
)

// MediaType distinguishes image and video media discovered on an ad.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaItem is a single piece of creative media discovered during extraction.
// Source records which discovery path produced the URL (selector tag, og meta,
// background-image, snapshot) so downstream consumers can rank confidence.
type MediaItem struct {
	URL    string    `json:"url"`
	Type   MediaType `json:"type"`
	Source string    `json:"source"`
	Alt    string    `json:"alt,omitempty"`
}

// NormalizedAd is the canonical extraction output shared by the scraper
// pipeline and the in-page detector. AdID is never empty for a record handed
// to persistence; every other field is best-effort.
type NormalizedAd struct {
	AdID        string      `json:"ad_id"`
	PageID      string      `json:"page_id,omitempty"`
	BrandName   string      `json:"brand_name,omitempty"`
	Headline    string      `json:"headline,omitempty"`
	AdText      string      `json:"ad_text,omitempty"`
	CTA         string      `json:"cta,omitempty"`
	Description string      `json:"description,omitempty"`
	MediaItems  []MediaItem `json:"media_items"`
	SnapshotURL string      `json:"snapshot_url,omitempty"`

	FirstSeenDate *time.Time `json:"first_seen_date,omitempty"`
	LastSeenDate  *time.Time `json:"last_seen_date,omitempty"`

	SourceURL string `json:"source_url"`

	// ResolvedBy names the pipeline stage that produced the record
	// (archive_api, html_scrape, synthesized, detector).
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// RuntimeDays returns the number of days the ad has been running, rounded up,
// or nil when either date is missing.
func (a *NormalizedAd) RuntimeDays() *int {
	if a.FirstSeenDate == nil || a.LastSeenDate == nil {
		return nil
	}
	diff := a.LastSeenDate.Sub(*a.FirstSeenDate)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	return &days
}

// PrimaryMedia returns the first media item, which consumers treat as the
// lead creative.
func (a *NormalizedAd) PrimaryMedia() *MediaItem {
	if len(a.MediaItems) == 0 {
		return nil
	}
	return &a.MediaItems[0]
}

// AdCard is an ad unit detected inside a captured DOM snapshot. AdID carries
// the Library ID digits for primary matches, or a synthetic sponsored_ id for
// image-only ads without one.
type AdCard struct {
	AdID      string      `json:"ad_id"`
	BrandName string      `json:"brand_name,omitempty"`
	AdText    string      `json:"ad_text,omitempty"`
	Media     []MediaItem `json:"media"`

	// Signal records which detection path matched: library_id or sponsored.
	Signal string `json:"signal"`
}

// ToNormalizedAd converts a detected card into the canonical record shape for
// persistence, stamping the page URL the snapshot came from.
func (c *AdCard) ToNormalizedAd(pageURL string) *NormalizedAd {
	return &NormalizedAd{
		AdID:       c.AdID,
		BrandName:  c.BrandName,
		AdText:     c.AdText,
		MediaItems: c.Media,
		SourceURL:  pageURL,
		ResolvedBy: "detector",
	}
}
