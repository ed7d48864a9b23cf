package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/pkg/models"
)

func testResolver(cfg *config.Config, stages []stage) *Resolver {
	return &Resolver{
		cfg:    cfg,
		engine: &stubEngine{},
		stages: stages,
		logger: logging.GetGlobalLogger(),
	}
}

func archiveTestConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Archive.AccessToken = "test-token"
	cfg.Archive.BaseURL = baseURL
	cfg.Archive.Countries = []string{"US"}
	cfg.Archive.Limit = 25
	cfg.Archive.Timeout = 0
	cfg.Scraper.MinHTMLLength = 100
	return cfg
}

func TestResolvePrefersArchiveMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ads_archive", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("access_token"))

		json.NewEncoder(w).Encode(archiveResponse{Data: []archiveAd{{
			ID:                  "1234567890",
			PageID:              "555",
			PageName:            "Glow Labs",
			AdDeliveryStartTime: "2024-01-01",
			AdDeliveryStopTime:  "2024-01-10",
			CreativeBodies:      []string{"Our serum is back in stock."},
			CreativeTitles:      []string{"New Season Serum"},
			SnapshotURL:         "https://www.facebook.com/ads/archive/render_ad/?id=1234567890",
		}}})
	}))
	defer server.Close()

	cfg := archiveTestConfig(server.URL)
	archive := newArchiveClient(cfg)
	r := testResolver(cfg, []stage{{name: "archive_api", run: archive.tryResolve}})

	ad, cached, err := r.Resolve(context.Background(), "https://www.facebook.com/ads/library/?id=1234567890", nil)
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, "1234567890", ad.AdID)
	assert.Equal(t, "Glow Labs", ad.BrandName)
	assert.Equal(t, "New Season Serum", ad.Headline)
	assert.Equal(t, "archive_api", ad.ResolvedBy)

	days := ad.RuntimeDays()
	require.NotNil(t, days)
	assert.Equal(t, 9, *days)
}

func TestResolveIgnoresNonExactArchiveMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(archiveResponse{Data: []archiveAd{{
			ID:       "999999999",
			PageName: "Wrong Ad",
		}}})
	}))
	defer server.Close()

	cfg := archiveTestConfig(server.URL)
	archive := newArchiveClient(cfg)
	r := testResolver(cfg, []stage{{name: "archive_api", run: archive.tryResolve}})

	ad, _, err := r.Resolve(context.Background(), "https://www.facebook.com/ads/library/?id=1234567890", nil)
	require.NoError(t, err)
	assert.Equal(t, "synthesized", ad.ResolvedBy)
	assert.Equal(t, "1234567890", ad.AdID)
}

func TestResolveFallsThroughToSynthesisWhenUnreachable(t *testing.T) {
	// No archive token, page fetch fails: resolution still succeeds.
	cfg := &config.Config{}
	cfg.Scraper.MinHTMLLength = 100

	archive := newArchiveClient(cfg)
	page := newPageScraper(cfg, &stubEngine{err: assert.AnError})
	r := testResolver(cfg, []stage{
		{name: "archive_api", run: archive.tryResolve},
		{name: "html_scrape", run: page.tryResolve},
	})

	ad, cached, err := r.Resolve(context.Background(), "https://www.facebook.com/ads/library/?id=777000777", nil)
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, "777000777", ad.AdID)
	assert.Equal(t, "synthesized", ad.ResolvedBy)
	assert.NotEmpty(t, ad.BrandName)
	assert.NotEmpty(t, ad.MediaItems)
	assert.NotNil(t, ad.MediaItems)
}

func TestResolveRejectsInvalidURLBeforeAnyStage(t *testing.T) {
	stageCalled := false
	r := testResolver(&config.Config{}, []stage{{
		name: "recorder",
		run: func(ctx context.Context, ref adRef) (*models.NormalizedAd, error) {
			stageCalled = true
			return nil, nil
		},
	}})

	ad, _, err := r.Resolve(context.Background(), "https://example.com/not-facebook", nil)
	assert.ErrorIs(t, err, ErrInvalidAdURL)
	assert.Nil(t, ad)
	assert.False(t, stageCalled)
}

func TestResolveAbsorbsStageErrors(t *testing.T) {
	r := testResolver(&config.Config{}, []stage{{
		name: "boom",
		run: func(ctx context.Context, ref adRef) (*models.NormalizedAd, error) {
			return nil, assert.AnError
		},
	}})

	ad, _, err := r.Resolve(context.Background(), "https://www.facebook.com/ads/library/?id=42000042", nil)
	require.NoError(t, err)
	assert.Equal(t, "synthesized", ad.ResolvedBy)
}
