package detector

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libraryCardFixture = `<html><body>
<div id="feed">
  <div class="card">
    <span>Library ID: 1234567890</span>
    <a aria-label="advertiser"><span>Glow Labs</span></a>
    <div dir="auto">Our vitamin C serum sold out three times last year.<br>It is finally back in stock.</div>
    <img src="https://scontent.xx.fbcdn.net/v/t45/creative_1080x1080.jpg" alt="serum">
    <span>See ad details</span>
  </div>
</div>
</body></html>`

func testDetector(now time.Time) *Detector {
	d := New()
	d.now = func() time.Time { return now }
	return d
}

func TestScanFindsLibraryIDCard(t *testing.T) {
	d := testDetector(time.Now())

	cards, err := d.Scan(libraryCardFixture, "https://www.facebook.com/ads/library/")
	require.NoError(t, err)
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, "1234567890", card.AdID)
	assert.Equal(t, "library_id", card.Signal)
	assert.Equal(t, "Glow Labs", card.BrandName)
	assert.Contains(t, card.AdText, "vitamin C serum")
	require.Len(t, card.Media, 1)
	assert.Contains(t, card.Media[0].URL, "creative_1080x1080")
}

func TestScanPicksInnermostContainer(t *testing.T) {
	// The card sits inside two wrapper divs that also contain the marker
	// text; only the innermost container may produce a card.
	nested := `<html><body><div class="outer"><div class="middle">` +
		strings.TrimPrefix(strings.TrimSuffix(libraryCardFixture, "</body></html>"), "<html><body>") +
		`</div></div></body></html>`

	d := testDetector(time.Now())
	cards, err := d.Scan(nested, "https://www.facebook.com/")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestScanDeduplicatesByAdID(t *testing.T) {
	card := `<div class="card">
      <span>Library ID: 555000111</span>
      <a aria-label="advertiser"><span>Peak Performance</span></a>
      <div dir="auto">Train harder with our new resistance bands, built for daily use.</div>
      <img src="https://scontent.xx.fbcdn.net/v/t45/bands_600x600.jpg">
    </div>`
	html := fmt.Sprintf("<html><body><div>%s</div><div>%s</div></body></html>", card, card)

	d := testDetector(time.Now())
	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestScanSkipsProcessedContainers(t *testing.T) {
	html := strings.Replace(libraryCardFixture,
		`<div class="card">`,
		`<div class="card" `+ProcessedAttr+`="1">`, 1)

	d := testDetector(time.Now())
	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestScanSponsoredSignal(t *testing.T) {
	html := `<html><body>
<div class="card">
  <a aria-label="advertiser"><span>Urban Thread</span></a>
  <span>Sponsored</span>
  <div dir="auto">Wardrobe staples cut for real life. Free returns on every order.</div>
  <img src="https://scontent.xx.fbcdn.net/v/t39/look_960x960.jpg">
  <span>See ad details</span>
</div>
</body></html>`

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := testDetector(now)

	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, "sponsored", card.Signal)
	assert.True(t, strings.HasPrefix(card.AdID, "sponsored_"))
	assert.True(t, strings.HasSuffix(card.AdID, fmt.Sprintf("_%d", now.UnixMilli())))
	assert.Equal(t, "Urban Thread", card.BrandName)
}

func TestScanSponsoredRequiresLargeImage(t *testing.T) {
	html := `<html><body>
<div class="card">
  <span>Sponsored</span>
  <div dir="auto">Wardrobe staples cut for real life. Free returns on every order.</div>
  <img src="https://scontent.xx.fbcdn.net/v/t39/avatar_s60x60.jpg">
  <span>See ad details</span>
</div>
</body></html>`

	d := testDetector(time.Now())
	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestScanSponsoredActiveWordBoundary(t *testing.T) {
	// "Interactive" must not satisfy the Active marker.
	html := `<html><body>
<div class="card">
  <span>Sponsored</span>
  <div dir="auto">Interactive experiences for your whole team, delivered to your door every single month.</div>
  <img src="https://scontent.xx.fbcdn.net/v/t39/box_800x800.jpg">
</div>
</body></html>`

	d := testDetector(time.Now())
	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestScanIgnoresShortFragments(t *testing.T) {
	html := `<html><body><div>Library ID: 12345</div></body></html>`

	d := testDetector(time.Now())
	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestScanDistinctSponsoredCardsGetDistinctIDs(t *testing.T) {
	html := `<html><body>
<div>
<div class="card">
  <span>Sponsored</span>
  <div dir="auto">First creative body with enough text to pass the card minimum easily.</div>
  <img src="https://scontent.xx.fbcdn.net/v/t39/a_800x800.jpg">
  <span>See ad details</span>
</div>
<div class="card">
  <span>Sponsored</span>
  <div dir="auto">Second creative body, different from the first, also long enough to pass.</div>
  <img src="https://scontent.xx.fbcdn.net/v/t39/b_800x800.jpg">
  <span>See ad details</span>
</div>
</div>
</body></html>`

	d := testDetector(time.Now())
	cards, err := d.Scan(html, "https://www.facebook.com/")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.NotEqual(t, cards[0].AdID, cards[1].AdID)
}
