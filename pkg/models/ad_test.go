package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestRuntimeDays(t *testing.T) {
	ad := &NormalizedAd{
		FirstSeenDate: date("2024-01-01"),
		LastSeenDate:  date("2024-01-10"),
	}

	days := ad.RuntimeDays()
	require.NotNil(t, days)
	assert.Equal(t, 9, *days)
}

func TestRuntimeDaysRoundsUpPartialDays(t *testing.T) {
	first := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC)

	ad := &NormalizedAd{FirstSeenDate: &first, LastSeenDate: &last}

	days := ad.RuntimeDays()
	require.NotNil(t, days)
	assert.Equal(t, 2, *days)
}

func TestRuntimeDaysReversedDates(t *testing.T) {
	ad := &NormalizedAd{
		FirstSeenDate: date("2024-01-10"),
		LastSeenDate:  date("2024-01-01"),
	}

	days := ad.RuntimeDays()
	require.NotNil(t, days)
	assert.Equal(t, 9, *days)
}

func TestRuntimeDaysMissingDates(t *testing.T) {
	assert.Nil(t, (&NormalizedAd{}).RuntimeDays())
	assert.Nil(t, (&NormalizedAd{FirstSeenDate: date("2024-01-01")}).RuntimeDays())
	assert.Nil(t, (&NormalizedAd{LastSeenDate: date("2024-01-01")}).RuntimeDays())
}

func TestPrimaryMedia(t *testing.T) {
	ad := &NormalizedAd{}
	assert.Nil(t, ad.PrimaryMedia())

	ad.MediaItems = []MediaItem{
		{URL: "https://example.com/a.jpg", Type: MediaImage},
		{URL: "https://example.com/b.jpg", Type: MediaImage},
	}
	primary := ad.PrimaryMedia()
	require.NotNil(t, primary)
	assert.Equal(t, "https://example.com/a.jpg", primary.URL)
}

func TestAdCardToNormalizedAd(t *testing.T) {
	card := &AdCard{
		AdID:      "123456789",
		BrandName: "Glow Labs",
		AdText:    "Try our new serum",
		Media:     []MediaItem{{URL: "https://scontent.fbcdn.net/a.jpg", Type: MediaImage}},
		Signal:    "library_id",
	}

	ad := card.ToNormalizedAd("https://www.facebook.com/somepage")
	assert.Equal(t, "123456789", ad.AdID)
	assert.Equal(t, "Glow Labs", ad.BrandName)
	assert.Equal(t, "detector", ad.ResolvedBy)
	assert.Equal(t, "https://www.facebook.com/somepage", ad.SourceURL)
	assert.Len(t, ad.MediaItems, 1)
}
