package scraper

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/scraper/engines"
	"swipeboard-utils/internal/selectors"
	"swipeboard-utils/pkg/models"
)

// wallMarkers flag responses that are a login interstitial or an error shell
// rather than ad content.
var wallMarkers = []string{
	"log in or sign up",
	"you must log in to continue",
	"content isn't available right now",
	"sorry, something went wrong",
	"checkpoint_required",
}

// ctaLabels are the button labels recognized as calls to action.
var ctaLabels = []string{
	"Shop Now", "Learn More", "Sign Up", "Download", "Get Offer",
	"Book Now", "Contact Us", "Subscribe", "Apply Now", "Watch More",
	"Order Now", "Get Quote", "Play Game", "Install Now",
}

// brandBoilerplate are phrases that disqualify a candidate brand name.
var brandBoilerplate = []string{
	"sponsored", "see ad details", "library id", "ad library",
	"active", "inactive", "log in", "sign up", "facebook",
}

var (
	rePageIDJSON   = regexp.MustCompile(`"page_?[iI][dD]"\s*:\s*"?(\d+)"?`)
	rePageIDParam  = regexp.MustCompile(`page_id=(\d+)`)
	reStartedDate  = regexp.MustCompile(`Started running on ([A-Z][a-z]{2} \d{1,2}, \d{4})`)
	reDateRange    = regexp.MustCompile(`([A-Z][a-z]{2} \d{1,2}, \d{4})\s*[-–]\s*([A-Z][a-z]{2} \d{1,2}, \d{4})`)
	reBackground   = regexp.MustCompile(`background-image:\s*url\((['"]?)([^'")]+)`)
	reFBCDNPattern = regexp.MustCompile(`(^|\.)fbcdn\.net$|(^|\.)fbsbx\.com$`)
)

const scrapeDateLayout = "Jan 2, 2006"

// pageScraper resolves ads by fetching and parsing the live HTML page with
// cascades of heuristic selectors.
type pageScraper struct {
	cfg    *config.Config
	engine engines.Engine
	logger logging.Logger
}

func newPageScraper(cfg *config.Config, engine engines.Engine) *pageScraper {
	return &pageScraper{
		cfg:    cfg,
		engine: engine,
		logger: logging.GetGlobalLogger().WithField("component", "page_scraper"),
	}
}

// tryResolve fetches the ad page and extracts fields. Returns nil, nil when
// the page is unreachable, walled, or yields no usable content, so the
// pipeline falls through to synthesis.
func (s *pageScraper) tryResolve(ctx context.Context, ref adRef) (*models.NormalizedAd, error) {
	html, err := s.engine.FetchHTML(ctx, ref.URL)
	if err != nil {
		s.logger.Debug("Page fetch failed", map[string]interface{}{
			"url":   ref.URL,
			"error": err.Error(),
		})
		return nil, nil
	}

	if len(html) < s.cfg.Scraper.MinHTMLLength {
		s.logger.Debug("Page HTML too short, skipping scrape", map[string]interface{}{
			"url":    ref.URL,
			"length": len(html),
		})
		return nil, nil
	}

	lower := strings.ToLower(html)
	for _, marker := range wallMarkers {
		if strings.Contains(lower, marker) {
			s.logger.Debug("Login wall or error marker detected", map[string]interface{}{
				"url":    ref.URL,
				"marker": marker,
			})
			return nil, nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.logger.Warn("Failed to parse page HTML", map[string]interface{}{
			"url":   ref.URL,
			"error": err.Error(),
		})
		return nil, nil
	}

	ad := s.extract(doc, html, ref)
	if ad.AdText == "" && ad.Headline == "" && len(ad.MediaItems) == 0 {
		s.logger.Debug("Scrape yielded no usable content", map[string]interface{}{
			"url": ref.URL,
		})
		return nil, nil
	}

	return ad, nil
}

func (s *pageScraper) extract(doc *goquery.Document, rawHTML string, ref adRef) *models.NormalizedAd {
	root := doc.Selection

	brandFilter := selectors.Filter{MinLen: 2, MaxLen: 100, Excluded: brandBoilerplate}
	brandChain := selectors.Chain{
		selectors.Text(`a[aria-label]`, brandFilter),
		selectors.Text(`a[role="link"] span`, brandFilter),
		selectors.Attr(`img[alt]`, "alt", brandFilter),
		selectors.Text(`h1, h2, h3, h4`, brandFilter),
	}

	headlineFilter := selectors.Filter{MinLen: 3, MaxLen: 200, Excluded: brandBoilerplate}
	headlineChain := selectors.Chain{
		selectors.Text(`div[role="heading"]`, headlineFilter),
		selectors.Attr(`meta[property="og:title"]`, "content", headlineFilter),
		titleTagExtractor(headlineFilter),
	}

	bodyFilter := selectors.Filter{MinLen: 20, MaxLen: 1000, Excluded: []string{"see ad details", "library id"}}
	bodyChain := selectors.Chain{
		preWrapTextExtractor(bodyFilter),
		selectors.Text(`div[data-ad-preview="message"]`, bodyFilter),
		selectors.Attr(`meta[property="og:description"]`, "content", bodyFilter),
		selectors.Text(`div[dir="auto"]`, bodyFilter),
	}

	ctaChain := selectors.Chain{
		selectors.OneOf(`div[role="button"] span`, ctaLabels),
		selectors.OneOf(`a[role="button"] span`, ctaLabels),
		selectors.OneOf(`button`, ctaLabels),
	}

	ad := &models.NormalizedAd{
		AdID:       ref.AdID,
		BrandName:  brandChain.First(root),
		Headline:   headlineChain.First(root),
		AdText:     bodyChain.First(root),
		CTA:        ctaChain.First(root),
		MediaItems: s.extractMedia(doc),
		SourceURL:  ref.URL,
		ResolvedBy: "html_scrape",
	}

	if ad.AdID == "" {
		ad.AdID = scrapedAdID(ref.URL)
	}

	if m := rePageIDJSON.FindStringSubmatch(rawHTML); m != nil {
		ad.PageID = m[1]
	} else if m := rePageIDParam.FindStringSubmatch(rawHTML); m != nil {
		ad.PageID = m[1]
	}

	s.extractDates(rawHTML, ad)

	return ad
}

// extractMedia collects image and video URLs hosted on Facebook's CDNs,
// background-image styles, and Open Graph metadata, in that priority order.
func (s *pageScraper) extractMedia(doc *goquery.Document) []models.MediaItem {
	items := []models.MediaItem{}
	seen := map[string]bool{}

	add := func(rawURL string, mediaType models.MediaType, source, alt string) {
		rawURL = strings.TrimSpace(rawURL)
		if rawURL == "" || seen[rawURL] {
			return
		}
		seen[rawURL] = true
		items = append(items, models.MediaItem{URL: rawURL, Type: mediaType, Source: source, Alt: alt})
	}

	doc.Find("video").Each(func(_ int, el *goquery.Selection) {
		if src, ok := el.Attr("src"); ok && isCDNHosted(src) {
			add(src, models.MediaVideo, "video_src", "")
		}
		if poster, ok := el.Attr("poster"); ok && isCDNHosted(poster) {
			add(poster, models.MediaImage, "video_poster", "")
		}
	})

	doc.Find("img").Each(func(_ int, el *goquery.Selection) {
		src, ok := el.Attr("src")
		if !ok || !isCDNHosted(src) {
			return
		}
		alt, _ := el.Attr("alt")
		add(src, models.MediaImage, "img_src", alt)
	})

	doc.Find("[style*='background-image']").Each(func(_ int, el *goquery.Selection) {
		style, _ := el.Attr("style")
		if m := reBackground.FindStringSubmatch(style); m != nil && isCDNHosted(m[2]) {
			add(m[2], models.MediaImage, "background_image", "")
		}
	})

	// Open Graph fallbacks accept any host
	if len(items) == 0 {
		if content, ok := doc.Find(`meta[property="og:video"]`).Attr("content"); ok {
			add(content, models.MediaVideo, "og_video", "")
		}
		if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
			add(content, models.MediaImage, "og_image", "")
		}
	}

	return items
}

func (s *pageScraper) extractDates(rawHTML string, ad *models.NormalizedAd) {
	if m := reDateRange.FindStringSubmatch(rawHTML); m != nil {
		if t, err := time.Parse(scrapeDateLayout, m[1]); err == nil {
			ad.FirstSeenDate = &t
		}
		if t, err := time.Parse(scrapeDateLayout, m[2]); err == nil {
			ad.LastSeenDate = &t
		}
		return
	}

	if m := reStartedDate.FindStringSubmatch(rawHTML); m != nil {
		if t, err := time.Parse(scrapeDateLayout, m[1]); err == nil {
			ad.FirstSeenDate = &t
			now := time.Now()
			ad.LastSeenDate = &now
		}
	}
}

// isCDNHosted reports whether the URL points at a Facebook CDN host.
func isCDNHosted(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return reFBCDNPattern.MatchString(strings.ToLower(u.Hostname()))
}

// titleTagExtractor pulls the document title, trimming the site suffix.
func titleTagExtractor(filter selectors.Filter) selectors.Extractor {
	return func(s *goquery.Selection) string {
		title := strings.TrimSpace(s.Find("title").First().Text())
		for _, suffix := range []string{" | Facebook", " - Facebook", " | Ad Library"} {
			title = strings.TrimSuffix(title, suffix)
		}
		v, _ := filter.Accept(title)
		return v
	}
}

// preWrapTextExtractor prefers elements styled to preserve whitespace, which
// is where ad body copy keeps its line breaks.
func preWrapTextExtractor(filter selectors.Filter) selectors.Extractor {
	return func(s *goquery.Selection) string {
		var out string
		s.Find(`[style*="white-space"]`).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if v, ok := filter.Accept(el.Text()); ok {
				out = v
				return false
			}
			return true
		})
		return out
	}
}

// scrapedAdID synthesizes a stable id for scraped pages without a resolvable
// numeric id.
func scrapedAdID(pageURL string) string {
	h := fnv.New32a()
	h.Write([]byte(pageURL))
	return fmt.Sprintf("fb_%x", h.Sum32())
}
