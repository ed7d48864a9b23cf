package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/pkg/models"
)

// archiveFields is the field list requested from the ads-archive endpoint.
const archiveFields = "id,page_id,page_name,ad_creation_time,ad_delivery_start_time,ad_delivery_stop_time," +
	"ad_creative_bodies,ad_creative_link_titles,ad_creative_link_captions,ad_creative_link_descriptions," +
	"ad_snapshot_url,publisher_platforms,languages"

// archiveClient queries the official ads-archive search API. Lookups run
// through progressively broader strategies and stop at the first exact id
// match.
type archiveClient struct {
	cfg    *config.Config
	client *http.Client
	logger logging.Logger
}

type archiveAd struct {
	ID                  string   `json:"id"`
	PageID              string   `json:"page_id"`
	PageName            string   `json:"page_name"`
	AdCreationTime      string   `json:"ad_creation_time"`
	AdDeliveryStartTime string   `json:"ad_delivery_start_time"`
	AdDeliveryStopTime  string   `json:"ad_delivery_stop_time"`
	CreativeBodies      []string `json:"ad_creative_bodies"`
	CreativeTitles      []string `json:"ad_creative_link_titles"`
	CreativeCaptions    []string `json:"ad_creative_link_captions"`
	CreativeDescs       []string `json:"ad_creative_link_descriptions"`
	SnapshotURL         string   `json:"ad_snapshot_url"`
}

type archiveResponse struct {
	Data []archiveAd `json:"data"`
}

// archiveStrategy is one search attempt against the archive endpoint.
type archiveStrategy struct {
	name   string
	params url.Values
}

func newArchiveClient(cfg *config.Config) *archiveClient {
	return &archiveClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Archive.Timeout},
		logger: logging.GetGlobalLogger().WithField("component", "archive_client"),
	}
}

// tryResolve looks the ad up by id. Returns nil, nil when the archive stage
// cannot produce a record (no token, no id, no match, upstream failure) so
// the pipeline moves on.
func (c *archiveClient) tryResolve(ctx context.Context, ref adRef) (*models.NormalizedAd, error) {
	if c.cfg.Archive.AccessToken == "" || ref.AdID == "" {
		return nil, nil
	}

	for _, strategy := range c.strategies(ref.AdID) {
		ads, err := c.search(ctx, strategy.params)
		if err != nil {
			c.logger.Debug("Archive strategy failed", map[string]interface{}{
				"strategy": strategy.name,
				"ad_id":    ref.AdID,
				"error":    err.Error(),
			})
			continue
		}

		for _, ad := range ads {
			if ad.ID == ref.AdID {
				c.logger.Info("Archive match found", map[string]interface{}{
					"strategy": strategy.name,
					"ad_id":    ref.AdID,
				})
				return c.mapAd(ad, ref), nil
			}
		}
	}

	return nil, nil
}

// strategies builds the ordered search attempts: the id as a search term in
// one country, the same search across all configured countries, then a
// search restricted to known page ids.
func (c *archiveClient) strategies(adID string) []archiveStrategy {
	countries := c.cfg.Archive.Countries
	if len(countries) == 0 {
		countries = []string{"US"}
	}

	out := []archiveStrategy{
		{
			name: "single_country",
			params: url.Values{
				"search_terms":         {adID},
				"ad_reached_countries": {countryList(countries[:1])},
			},
		},
		{
			name: "all_countries",
			params: url.Values{
				"search_terms":         {adID},
				"ad_reached_countries": {countryList(countries)},
			},
		},
	}

	if len(c.cfg.Archive.PageIDs) > 0 {
		out = append(out, archiveStrategy{
			name: "known_pages",
			params: url.Values{
				"search_page_ids":      {strings.Join(c.cfg.Archive.PageIDs, ",")},
				"ad_reached_countries": {countryList(countries[:1])},
			},
		})
	}

	return out
}

func (c *archiveClient) search(ctx context.Context, params url.Values) ([]archiveAd, error) {
	params.Set("access_token", c.cfg.Archive.AccessToken)
	params.Set("ad_active_status", "ALL")
	params.Set("fields", archiveFields)
	params.Set("limit", fmt.Sprintf("%d", c.cfg.Archive.Limit))

	endpoint := strings.TrimSuffix(c.cfg.Archive.BaseURL, "/") + "/ads_archive?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from ads_archive", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var parsed archiveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return parsed.Data, nil
}

// mapAd converts an archive entry into the normalized record. Media is left
// empty; the snapshot URL stands in for the visual creative.
func (c *archiveClient) mapAd(ad archiveAd, ref adRef) *models.NormalizedAd {
	out := &models.NormalizedAd{
		AdID:        ad.ID,
		PageID:      ad.PageID,
		BrandName:   ad.PageName,
		SnapshotURL: ad.SnapshotURL,
		SourceURL:   ref.URL,
		MediaItems:  []models.MediaItem{},
		ResolvedBy:  "archive_api",
	}

	if len(ad.CreativeBodies) > 0 {
		out.AdText = ad.CreativeBodies[0]
	}
	if len(ad.CreativeTitles) > 0 {
		out.Headline = ad.CreativeTitles[0]
	}
	if len(ad.CreativeDescs) > 0 {
		out.Description = ad.CreativeDescs[0]
	} else if len(ad.CreativeCaptions) > 0 {
		out.Description = ad.CreativeCaptions[0]
	}

	if t := parseArchiveTime(ad.AdDeliveryStartTime); t != nil {
		out.FirstSeenDate = t
	} else if t := parseArchiveTime(ad.AdCreationTime); t != nil {
		out.FirstSeenDate = t
	}
	if t := parseArchiveTime(ad.AdDeliveryStopTime); t != nil {
		out.LastSeenDate = t
	}

	return out
}

func parseArchiveTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// countryList renders the JSON-array country parameter the archive endpoint
// expects, e.g. ["US","GB"].
func countryList(countries []string) string {
	quoted := make([]string, len(countries))
	for i, country := range countries {
		quoted[i] = `"` + country + `"`
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
