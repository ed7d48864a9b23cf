package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipeboard-utils/internal/config"
)

// stubEngine returns canned HTML without touching the network.
type stubEngine struct {
	html string
	err  error
}

func (s *stubEngine) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	return s.html, s.err
}
func (s *stubEngine) Name() string { return "stub" }
func (s *stubEngine) Cleanup()     {}

const adPageFixture = `<!DOCTYPE html>
<html>
<head>
<title>Glow Labs | Facebook</title>
<meta property="og:title" content="New Season Serum Drop">
<meta property="og:image" content="https://example.com/og.jpg">
</head>
<body>
<script>{"page_id":"100200300400"}</script>
<div>Started running on Jan 5, 2024</div>
<div>
  <a aria-label="advertiser">Glow Labs</a>
  <div role="heading">Meet the serum everyone is talking about</div>
  <div style="white-space: pre-wrap;">Our vitamin C serum sold out three times last year. It is finally back in stock.</div>
  <img src="https://scontent-lax3-1.xx.fbcdn.net/v/t45/creative_1080x1080.jpg" alt="serum bottle">
  <img src="https://example.com/tracking.gif">
  <a role="button"><span>Shop Now</span></a>
</div>
</body>
</html>`

func testPageScraper(html string, err error) *pageScraper {
	cfg := &config.Config{}
	cfg.Scraper.MinHTMLLength = 100
	return newPageScraper(cfg, &stubEngine{html: html, err: err})
}

func TestPageScraperExtractsAdFields(t *testing.T) {
	s := testPageScraper(adPageFixture, nil)
	ref := newAdRef("https://www.facebook.com/ads/library/?id=1234567890")

	ad, err := s.tryResolve(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, ad)

	assert.Equal(t, "1234567890", ad.AdID)
	assert.Equal(t, "Glow Labs", ad.BrandName)
	assert.Equal(t, "Meet the serum everyone is talking about", ad.Headline)
	assert.Contains(t, ad.AdText, "vitamin C serum")
	assert.Equal(t, "Shop Now", ad.CTA)
	assert.Equal(t, "100200300400", ad.PageID)
	assert.Equal(t, "html_scrape", ad.ResolvedBy)

	require.NotNil(t, ad.FirstSeenDate)
	assert.Equal(t, 2024, ad.FirstSeenDate.Year())
}

func TestPageScraperMediaPrefersCDNHosts(t *testing.T) {
	s := testPageScraper(adPageFixture, nil)
	ref := newAdRef("https://www.facebook.com/ads/library/?id=1234567890")

	ad, err := s.tryResolve(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, ad)

	require.NotEmpty(t, ad.MediaItems)
	assert.Contains(t, ad.MediaItems[0].URL, "fbcdn.net")
	// Off-CDN images and the og:image fallback stay out once CDN-hosted
	// creative is found.
	for _, m := range ad.MediaItems {
		assert.NotContains(t, m.URL, "example.com")
	}
}

func TestPageScraperPassesOnFetchError(t *testing.T) {
	s := testPageScraper("", errors.New("connection refused"))
	ref := newAdRef("https://www.facebook.com/ads/library/?id=1234567890")

	ad, err := s.tryResolve(context.Background(), ref)
	assert.NoError(t, err)
	assert.Nil(t, ad)
}

func TestPageScraperPassesOnShortHTML(t *testing.T) {
	s := testPageScraper("<html></html>", nil)
	ref := newAdRef("https://www.facebook.com/ads/library/?id=1234567890")

	ad, err := s.tryResolve(context.Background(), ref)
	assert.NoError(t, err)
	assert.Nil(t, ad)
}

func TestPageScraperPassesOnLoginWall(t *testing.T) {
	wall := `<html><body><h1>Log in or sign up to continue</h1>` +
		`<p>You must log in to continue using this page. Padding padding padding padding padding.</p></body></html>`
	s := testPageScraper(wall, nil)
	ref := newAdRef("https://www.facebook.com/ads/library/?id=1234567890")

	ad, err := s.tryResolve(context.Background(), ref)
	assert.NoError(t, err)
	assert.Nil(t, ad)
}

func TestPageScraperDateRange(t *testing.T) {
	html := adPageFixture[:len(adPageFixture)-len("</body>\n</html>")] +
		`<div>Jan 5, 2024 - Mar 10, 2024</div></body></html>`
	s := testPageScraper(html, nil)
	ref := newAdRef("https://www.facebook.com/ads/library/?id=1234567890")

	ad, err := s.tryResolve(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, ad)

	require.NotNil(t, ad.FirstSeenDate)
	require.NotNil(t, ad.LastSeenDate)
	assert.Equal(t, "2024-01-05", ad.FirstSeenDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-10", ad.LastSeenDate.Format("2006-01-02"))
}

func TestIsCDNHosted(t *testing.T) {
	assert.True(t, isCDNHosted("https://scontent-lax3-1.xx.fbcdn.net/v/t45/x.jpg"))
	assert.True(t, isCDNHosted("https://video.fbsbx.com/v/clip.mp4"))
	assert.False(t, isCDNHosted("https://example.com/x.jpg"))
	assert.False(t, isCDNHosted("https://evil-fbcdn.net.example.com/x.jpg"))
}
