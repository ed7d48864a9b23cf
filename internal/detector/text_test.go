package detector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selection(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body").Children().First()
}

func TestExtractBodyTextConvertsBreaks(t *testing.T) {
	el := selection(t, `<html><body><div>
<div dir="auto">Line one of the creative copy.<br>Line two follows after a break.</div>
</body></html>`)

	text := extractBodyText(el)
	assert.Equal(t, "Line one of the creative copy.\nLine two follows after a break.", text)
}

func TestExtractBodyTextCollapsesNewlineRuns(t *testing.T) {
	el := selection(t, `<html><body><div>
<div dir="auto">First paragraph of creative copy.<br><br><br><br>Second paragraph here.</div>
</body></html>`)

	text := extractBodyText(el)
	assert.Equal(t, "First paragraph of creative copy.\n\nSecond paragraph here.", text)
}

func TestExtractBodyTextPrefersWhitespacePreserving(t *testing.T) {
	el := selection(t, `<html><body><div>
<div dir="auto">A generic container with some long enough text in it.</div>
<div style="white-space: pre-wrap;">The real creative body copy lives in here.</div>
</body></html>`)

	text := extractBodyText(el)
	assert.Equal(t, "The real creative body copy lives in here.", text)
}

func TestExtractBodyTextSkipsBoilerplate(t *testing.T) {
	el := selection(t, `<html><body><div>
<div dir="auto">See ad details and other controls for this sponsored unit.</div>
<div dir="auto">Actual creative body text that should be selected instead.</div>
</body></html>`)

	text := extractBodyText(el)
	assert.Equal(t, "Actual creative body text that should be selected instead.", text)
}

func TestExtractBodyTextIgnoresScriptContent(t *testing.T) {
	el := selection(t, `<html><body><div>
<div dir="auto">Visible creative text long enough to pass.<script>var x = "hidden payload";</script></div>
</body></html>`)

	text := extractBodyText(el)
	assert.Equal(t, "Visible creative text long enough to pass.", text)
}

func TestExtractBodyTextEmptyWhenNothingQualifies(t *testing.T) {
	el := selection(t, `<html><body><div><div dir="auto">too short</div></body></html>`)
	assert.Empty(t, extractBodyText(el))
}
