package selectors

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d.Selection
}

func TestChainFirstStopsAtFirstMatch(t *testing.T) {
	s := doc(t, `<div><span class="a">alpha</span><span class="b">beta</span></div>`)

	chain := Chain{
		Text(".missing", Filter{}),
		Text(".b", Filter{}),
		Text(".a", Filter{}),
	}
	assert.Equal(t, "beta", chain.First(s))
}

func TestChainFirstEmptyWhenNothingMatches(t *testing.T) {
	s := doc(t, `<div></div>`)
	chain := Chain{Text(".missing", Filter{})}
	assert.Empty(t, chain.First(s))
}

func TestFilterLengthBounds(t *testing.T) {
	f := Filter{MinLen: 3, MaxLen: 5}

	_, ok := f.Accept("ab")
	assert.False(t, ok)

	v, ok := f.Accept("  abc  ")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = f.Accept("abcdef")
	assert.False(t, ok)
}

func TestFilterExclusionsAreCaseInsensitive(t *testing.T) {
	f := Filter{MinLen: 1, Excluded: []string{"sponsored"}}

	_, ok := f.Accept("SPONSORED content")
	assert.False(t, ok)

	v, ok := f.Accept("Glow Labs")
	assert.True(t, ok)
	assert.Equal(t, "Glow Labs", v)
}

func TestFilterCountsRunesNotBytes(t *testing.T) {
	f := Filter{MinLen: 1, MaxLen: 4}
	v, ok := f.Accept("héll") // 4 runes, 5 bytes
	assert.True(t, ok)
	assert.Equal(t, "héll", v)

	_, ok = f.Accept("héllo")
	assert.False(t, ok)
}

func TestAttrExtractor(t *testing.T) {
	s := doc(t, `<div><img alt=""><img alt="serum bottle"></div>`)
	got := Attr("img", "alt", Filter{MinLen: 2})(s)
	assert.Equal(t, "serum bottle", got)
}

func TestOneOfReturnsCanonicalLabel(t *testing.T) {
	s := doc(t, `<div><button> shop now </button></div>`)
	got := OneOf("button", []string{"Shop Now", "Learn More"})(s)
	assert.Equal(t, "Shop Now", got)
}

func TestOneOfSkipsUnknownLabels(t *testing.T) {
	s := doc(t, `<div><button>Click here</button></div>`)
	got := OneOf("button", []string{"Shop Now"})(s)
	assert.Empty(t, got)
}
