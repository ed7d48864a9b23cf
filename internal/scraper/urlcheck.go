package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidAdURL is returned when a URL fails Facebook host or path
// validation. It is the only error Resolve surfaces; everything past
// validation degrades to fallback synthesis.
var ErrInvalidAdURL = errors.New("invalid ad url")

var (
	reQueryID      = regexp.MustCompile(`[?&]id=(\d+)`)
	reNumericPath  = regexp.MustCompile(`/(\d{6,})(?:/|$|\?)`)
	reLongNumeric  = regexp.MustCompile(`(\d{13,})`)
	reDigitsOnly   = regexp.MustCompile(`^\d+$`)
	searchCtxKeys  = []string{"q", "search_terms", "brand", "view_all_page_id"}
	facebookSuffix = ".facebook.com"
)

// adRef is a validated ad reference flowing through the resolver stages.
type adRef struct {
	URL           string
	AdID          string
	SearchContext string
}

// ValidateAdURL checks that the URL points at a Facebook Ad Library entry
// (id query parameter) or a Facebook post with a numeric path segment.
func ValidateAdURL(adURL string) error {
	u, err := url.Parse(adURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAdURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAdURL, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host != "facebook.com" && !strings.HasSuffix(host, facebookSuffix) {
		return fmt.Errorf("%w: host %q is not a Facebook domain", ErrInvalidAdURL, host)
	}

	if strings.HasPrefix(u.Path, "/ads/library") {
		if reDigitsOnly.MatchString(u.Query().Get("id")) {
			return nil
		}
		return fmt.Errorf("%w: ad library URL missing numeric id parameter", ErrInvalidAdURL)
	}

	if reNumericPath.MatchString(u.Path + "/") {
		return nil
	}

	return fmt.Errorf("%w: path %q matches neither ad library nor post pattern", ErrInvalidAdURL, u.Path)
}

// ExtractAdID pulls the numeric ad id out of the URL, preferring the id query
// parameter, then numeric path segments, then any long digit run. Returns ""
// when nothing resolvable is found.
func ExtractAdID(adURL string) string {
	if u, err := url.Parse(adURL); err == nil {
		if id := u.Query().Get("id"); reDigitsOnly.MatchString(id) {
			return id
		}
	}

	if m := reQueryID.FindStringSubmatch(adURL); m != nil {
		return m[1]
	}
	if m := reNumericPath.FindStringSubmatch(adURL); m != nil {
		return m[1]
	}
	if m := reLongNumeric.FindStringSubmatch(adURL); m != nil {
		return m[1]
	}
	return ""
}

// extractSearchContext returns any search terms carried on the URL, used by
// fallback synthesis to steer the brand guess.
func extractSearchContext(adURL string) string {
	u, err := url.Parse(adURL)
	if err != nil {
		return ""
	}

	q := u.Query()
	for _, key := range searchCtxKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" && !reDigitsOnly.MatchString(v) {
			return v
		}
	}
	return ""
}

func newAdRef(adURL string) adRef {
	return adRef{
		URL:           adURL,
		AdID:          ExtractAdID(adURL),
		SearchContext: extractSearchContext(adURL),
	}
}
