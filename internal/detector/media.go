package detector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"swipeboard-utils/pkg/models"
)

const (
	// minURLSize is the minimum dimension embedded in a media URL for it to
	// count as content rather than chrome.
	minURLSize = 200

	// minAttrSize is the minimum width/height attribute value accepted when
	// the URL carries no size information.
	minAttrSize = 100
)

// profileIconPatterns are URL fragments of fixed-size avatars, reaction
// icons, and static assets that are never ad creative.
var profileIconPatterns = []string{
	"s60x60", "p50x50", "s32x32", "p24x24", "cp0_dst",
	"/rsrc.php/", "static.xx", "emoji", "spacer.gif",
}

var reURLSize = regexp.MustCompile(`(\d{2,4})x(\d{2,4})`)

// extractMedia collects the card's media, videos first (src and poster),
// then images large enough to be creative content.
func extractMedia(el *goquery.Selection) []models.MediaItem {
	items := []models.MediaItem{}
	seen := map[string]bool{}

	add := func(url string, mediaType models.MediaType, source, alt string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		items = append(items, models.MediaItem{URL: url, Type: mediaType, Source: source, Alt: alt})
	}

	el.Find("video").Each(func(_ int, video *goquery.Selection) {
		if src, ok := video.Attr("src"); ok {
			add(src, models.MediaVideo, "video_src", "")
		}
		if poster, ok := video.Attr("poster"); ok {
			add(poster, models.MediaImage, "video_poster", "")
		}
	})

	el.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || !isContentImage(img, src) {
			return
		}
		alt, _ := img.Attr("alt")
		add(src, models.MediaImage, "img_src", alt)
	})

	return items
}

// hasLargeImage reports whether the container holds at least one image that
// qualifies as content, which the sponsored-card signal requires.
func hasLargeImage(el *goquery.Selection) bool {
	found := false
	el.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		if src, ok := img.Attr("src"); ok && isContentImage(img, src) {
			found = true
			return false
		}
		return true
	})
	return found
}

// isContentImage filters out profile icons and chrome: the URL must not
// match a known icon pattern, and either the URL embeds a dimension of at
// least 200px or the element declares a rendered size of at least 100px.
func isContentImage(img *goquery.Selection, src string) bool {
	for _, pattern := range profileIconPatterns {
		if strings.Contains(src, pattern) {
			return false
		}
	}

	if m := reURLSize.FindStringSubmatch(src); m != nil {
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		return w >= minURLSize || h >= minURLSize
	}

	return attrSize(img, "width") >= minAttrSize || attrSize(img, "height") >= minAttrSize
}

func attrSize(img *goquery.Selection, attr string) int {
	v, ok := img.Attr(attr)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
