package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/pkg/models"
)

func testClientConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Upstream.BaseURL = baseURL
	cfg.Upstream.Token = "test-token"
	cfg.Upstream.SessionCookie = "next-auth.session-token"
	cfg.Upstream.Timeout = 5 * time.Second
	cfg.Upstream.MaxRetries = 3
	cfg.Upstream.RetryBaseDelay = time.Millisecond
	cfg.Relay.SessionTTL = 60 * time.Second
	cfg.Relay.BoardsTTL = 5 * time.Minute
	return cfg
}

func TestNormalizeBoardsEnvelopes(t *testing.T) {
	expected := []models.Board{{ID: "b1", Name: "Inspiration"}}

	cases := map[string]string{
		"raw array":      `[{"id":"b1","name":"Inspiration"}]`,
		"data wrapper":   `{"data":[{"id":"b1","name":"Inspiration"}]}`,
		"boards wrapper": `{"boards":[{"id":"b1","name":"Inspiration"}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, expected, NormalizeBoards([]byte(raw)))
		})
	}
}

func TestNormalizeBoardsUnknownShapesYieldEmpty(t *testing.T) {
	for _, raw := range []string{
		`{"items":[{"id":"b1"}]}`,
		`"just a string"`,
		`42`,
		`null`,
		`not json at all`,
	} {
		boards := NormalizeBoards([]byte(raw))
		assert.NotNil(t, boards, "raw=%s", raw)
		assert.Empty(t, boards, "raw=%s", raw)
	}
}

func TestCheckSessionValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sessionPath, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"user":{"name":"someone"},"expires":"2026-01-01"}`))
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	valid, err := c.CheckSession(context.Background())
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestCheckSessionAnonymous(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	valid, err := c.CheckSession(context.Background())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestCheckSessionUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	valid, err := c.CheckSession(context.Background())
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestSaveAdUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	_, err := c.SaveAd(context.Background(), &models.SaveAdData{AdURL: "https://www.facebook.com/ads/library/?id=1"}, false)
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestSaveAdServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	_, err := c.SaveAd(context.Background(), &models.SaveAdData{AdURL: "https://www.facebook.com/ads/library/?id=1"}, false)
	require.Error(t, err)
	assert.True(t, isTransient(err))
}

func TestSaveAdClientErrorIsNotTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad board id", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	_, err := c.SaveAd(context.Background(), &models.SaveAdData{AdURL: "https://www.facebook.com/ads/library/?id=1"}, false)
	require.Error(t, err)
	assert.False(t, isTransient(err))
}

func TestSaveAdAltPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"asset-1","fb_ad_id":"123","status":"created"}`))
	}))
	defer server.Close()

	c := NewClient(testClientConfig(server.URL))
	result, err := c.SaveAd(context.Background(), &models.SaveAdData{AdURL: "https://www.facebook.com/ads/library/?id=123"}, true)
	require.NoError(t, err)
	assert.Equal(t, saveAltPath, gotPath)
	assert.Equal(t, "asset-1", result.ID)
	assert.Equal(t, "created", result.Status)
}
