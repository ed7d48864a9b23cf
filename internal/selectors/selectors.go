// Package selectors implements the cascading-selector pattern shared by the
// page scraper and the ad-card detector: an ordered list of extractors is
// tried against a selection and the first non-empty, length-bounded match
// wins.
package selectors

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls a candidate string out of a selection, returning "" when it
// has nothing usable.
type Extractor func(*goquery.Selection) string

// Chain is an ordered cascade of extractors.
type Chain []Extractor

// First returns the first non-empty result in chain order.
func (c Chain) First(s *goquery.Selection) string {
	for _, extract := range c {
		if v := extract(s); v != "" {
			return v
		}
	}
	return ""
}

// Filter constrains candidate strings by length and an exclusion list.
// Exclusions are matched case-insensitively as substrings.
type Filter struct {
	MinLen   int
	MaxLen   int
	Excluded []string
}

// Accept reports whether the trimmed candidate passes the filter, returning
// the trimmed value.
func (f Filter) Accept(v string) (string, bool) {
	v = strings.TrimSpace(v)
	n := len([]rune(v))
	if n == 0 || n < f.MinLen || (f.MaxLen > 0 && n > f.MaxLen) {
		return "", false
	}

	lower := strings.ToLower(v)
	for _, ex := range f.Excluded {
		if strings.Contains(lower, strings.ToLower(ex)) {
			return "", false
		}
	}
	return v, true
}

// Text extracts the trimmed text of the first element matching the selector.
func Text(selector string, filter Filter) Extractor {
	return func(s *goquery.Selection) string {
		var out string
		s.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if v, ok := filter.Accept(el.Text()); ok {
				out = v
				return false
			}
			return true
		})
		return out
	}
}

// Attr extracts an attribute of the first element matching the selector.
func Attr(selector, attr string, filter Filter) Extractor {
	return func(s *goquery.Selection) string {
		var out string
		s.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if raw, exists := el.Attr(attr); exists {
				if v, ok := filter.Accept(raw); ok {
					out = v
					return false
				}
			}
			return true
		})
		return out
	}
}

// OneOf extracts the first text matching the selector whose trimmed value is
// in the allowed set. Used for CTA button labels.
func OneOf(selector string, allowed []string) Extractor {
	set := make(map[string]string, len(allowed))
	for _, a := range allowed {
		set[strings.ToLower(a)] = a
	}

	return func(s *goquery.Selection) string {
		var out string
		s.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if canonical, ok := set[strings.ToLower(strings.TrimSpace(el.Text()))]; ok {
				out = canonical
				return false
			}
			return true
		})
		return out
	}
}
