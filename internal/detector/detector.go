// Package detector finds ad cards inside captured DOM snapshots of
// Facebook pages. It identifies ad-unit containers by a "Library ID" text
// pattern or a sponsored-content heuristic, deduplicates them, and extracts
// brand, body text, and media through cascades of selector attempts.
package detector

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/selectors"
	"swipeboard-utils/pkg/models"
)

// ProcessedAttr marks containers the content script has already handled.
// Containers carrying it are skipped on rescan.
const ProcessedAttr = "data-swipeboard-processed"

const (
	// minCardTextLen stands in for the rendered bounding-box minimum a live
	// DOM scan would use: containers with less text than this are nested
	// fragments, not full cards.
	minCardTextLen = 80

	// hashPrefixLen is how much card text seeds the synthetic sponsored id.
	hashPrefixLen = 200
)

var (
	reLibraryID = regexp.MustCompile(`Library ID:?\s*(\d+)`)
	reNewlines  = regexp.MustCompile(`\n{3,}`)
)

var cardBoilerplate = []string{
	"sponsored", "see ad details", "library id", "ad library",
	"log in", "sign up", "create new account",
}

// Detector scans DOM snapshots for ad cards.
type Detector struct {
	logger logging.Logger
	now    func() time.Time
}

// New creates a detector.
func New() *Detector {
	return &Detector{
		logger: logging.GetGlobalLogger().WithField("component", "detector"),
		now:    time.Now,
	}
}

// Scan parses the snapshot and returns the detected ad cards in DOM
// traversal order, deduplicated by ad id within this pass. pageURL is the
// page the snapshot was captured from and is only used for log context.
func (d *Detector) Scan(html, pageURL string) ([]models.AdCard, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	cards := []models.AdCard{}
	seen := map[string]bool{}

	doc.Find("div").Each(func(_ int, el *goquery.Selection) {
		if _, processed := el.Attr(ProcessedAttr); processed {
			return
		}

		card, ok := d.matchContainer(el)
		if !ok {
			return
		}

		if seen[card.AdID] {
			return
		}
		seen[card.AdID] = true

		cards = append(cards, card)
	})

	d.logger.Debug("Snapshot scan complete", map[string]interface{}{
		"cards": len(cards),
		"page":  pageURL,
	})

	return cards, nil
}

// matchContainer tests one container element against the primary (Library
// ID) and secondary (sponsored + media) signals and extracts its fields.
func (d *Detector) matchContainer(el *goquery.Selection) (models.AdCard, bool) {
	text := el.Text()
	if len(text) < minCardTextLen {
		return models.AdCard{}, false
	}

	if m := reLibraryID.FindStringSubmatch(text); m != nil {
		// Take the smallest container that still holds the marker: if a
		// child div also matches, this element is an ancestor wrapper.
		if d.hasMatchingChild(el, func(child *goquery.Selection) bool {
			return reLibraryID.MatchString(child.Text()) && len(child.Text()) >= minCardTextLen
		}) {
			return models.AdCard{}, false
		}

		return d.extractCard(el, m[1], "library_id"), true
	}

	if d.isSponsoredCard(el) {
		if d.hasMatchingChild(el, d.isSponsoredCard) {
			return models.AdCard{}, false
		}

		return d.extractCard(el, d.sponsoredID(text), "sponsored"), true
	}

	return models.AdCard{}, false
}

// isSponsoredCard is the secondary signal for image-only ads without a
// Library ID: a Sponsored marker, at least one large content image, and an
// ad-detail or active-status marker.
func (d *Detector) isSponsoredCard(el *goquery.Selection) bool {
	text := el.Text()
	if len(text) < minCardTextLen {
		return false
	}
	if !strings.Contains(text, "Sponsored") {
		return false
	}
	if !strings.Contains(text, "See ad details") && !containsWord(text, "Active") {
		return false
	}
	return hasLargeImage(el)
}

// sponsoredID synthesizes an id from a hash of the card's leading text plus
// the current timestamp. Identical ads therefore get fresh ids on every
// scan; missing an ad is considered worse than double-saving one.
func (d *Detector) sponsoredID(text string) string {
	prefix := text
	if len(prefix) > hashPrefixLen {
		prefix = prefix[:hashPrefixLen]
	}

	h := fnv.New32a()
	h.Write([]byte(prefix))
	return fmt.Sprintf("sponsored_%x_%d", h.Sum32(), d.now().UnixMilli())
}

func (d *Detector) extractCard(el *goquery.Selection, adID, signal string) models.AdCard {
	brandFilter := selectors.Filter{MinLen: 2, MaxLen: 80, Excluded: cardBoilerplate}
	brandChain := selectors.Chain{
		selectors.Text(`a[aria-label]`, brandFilter),
		selectors.Text(`a span`, brandFilter),
		selectors.Attr(`img[alt]`, "alt", brandFilter),
		selectors.Text(`h1, h2, h3, h4, strong`, brandFilter),
	}

	return models.AdCard{
		AdID:      adID,
		BrandName: brandChain.First(el),
		AdText:    extractBodyText(el),
		Media:     extractMedia(el),
		Signal:    signal,
	}
}

// hasMatchingChild reports whether any descendant div satisfies the
// predicate.
func (d *Detector) hasMatchingChild(el *goquery.Selection, match func(*goquery.Selection) bool) bool {
	found := false
	el.Find("div").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if match(child) {
			found = true
			return false
		}
		return true
	})
	return found
}

// containsWord matches the marker as a standalone word so "Active" does not
// fire on e.g. "Interactive".
func containsWord(text, word string) bool {
	for _, field := range strings.Fields(text) {
		if strings.Trim(field, ".,:;") == word {
			return true
		}
	}
	return false
}
