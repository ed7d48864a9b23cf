package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipeboard-utils/pkg/models"
)

func TestExtractMediaVideosFirst(t *testing.T) {
	el := selection(t, `<html><body><div>
<img src="https://scontent.xx.fbcdn.net/v/t39/still_720x720.jpg">
<video src="https://video.xx.fbcdn.net/v/clip.mp4" poster="https://scontent.xx.fbcdn.net/v/t39/poster_720x720.jpg"></video>
</body></html>`)

	media := extractMedia(el)
	require.Len(t, media, 3)
	assert.Equal(t, models.MediaVideo, media[0].Type)
	assert.Equal(t, "video_src", media[0].Source)
	assert.Equal(t, "video_poster", media[1].Source)
	assert.Equal(t, "img_src", media[2].Source)
}

func TestExtractMediaFiltersProfileIcons(t *testing.T) {
	el := selection(t, `<html><body><div>
<img src="https://scontent.xx.fbcdn.net/v/t39/avatar_s60x60.jpg">
<img src="https://static.xx.fbcdn.net/rsrc.php/ui.png" width="400">
<img src="https://scontent.xx.fbcdn.net/v/t39/emoji_pack.png" width="400">
<img src="https://scontent.xx.fbcdn.net/v/t39/creative_1080x1080.jpg">
</body></html>`)

	media := extractMedia(el)
	require.Len(t, media, 1)
	assert.Contains(t, media[0].URL, "creative_1080x1080")
}

func TestExtractMediaDeduplicatesURLs(t *testing.T) {
	el := selection(t, `<html><body><div>
<img src="https://scontent.xx.fbcdn.net/v/t39/creative_800x800.jpg">
<img src="https://scontent.xx.fbcdn.net/v/t39/creative_800x800.jpg">
</body></html>`)

	assert.Len(t, extractMedia(el), 1)
}

func TestIsContentImageSizeRules(t *testing.T) {
	// URL-embedded dimensions decide when present.
	small := selection(t, `<html><body><img src="https://scontent.xx.fbcdn.net/v/t39/x_150x150.jpg" width="500"></body></html>`)
	assert.False(t, isContentImage(small, "https://scontent.xx.fbcdn.net/v/t39/x_150x150.jpg"))

	// Attribute size decides when the URL carries no dimensions.
	attr := selection(t, `<html><body><img src="https://scontent.xx.fbcdn.net/v/t39/x.jpg" width="250"></body></html>`)
	assert.True(t, isContentImage(attr, "https://scontent.xx.fbcdn.net/v/t39/x.jpg"))

	tiny := selection(t, `<html><body><img src="https://scontent.xx.fbcdn.net/v/t39/x.jpg" width="40" height="40"></body></html>`)
	assert.False(t, isContentImage(tiny, "https://scontent.xx.fbcdn.net/v/t39/x.jpg"))
}

func TestHasLargeImage(t *testing.T) {
	with := selection(t, `<html><body><div><img src="https://scontent.xx.fbcdn.net/v/t39/a_600x600.jpg"></div></body></html>`)
	assert.True(t, hasLargeImage(with))

	without := selection(t, `<html><body><div><img src="https://scontent.xx.fbcdn.net/v/t39/a_s60x60.jpg"></div></body></html>`)
	assert.False(t, hasLargeImage(without))
}
