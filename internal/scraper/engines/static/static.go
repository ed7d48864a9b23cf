// Package static fetches pages over plain HTTP with browser-like header
// sets. A failed desktop-profile request is retried once with a mobile
// profile before giving up.
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
)

const (
	desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	mobileUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	// maxBodySize caps response reads at 10 MB.
	maxBodySize = 10 * 1024 * 1024
)

// Engine is the plain-HTTP fetch engine.
type Engine struct {
	client *http.Client
	cfg    *config.Config
	logger logging.Logger
}

// New creates a static fetch engine.
func New(cfg *config.Config) *Engine {
	return &Engine{
		client: &http.Client{Timeout: cfg.Scraper.RequestTimeout},
		cfg:    cfg,
		logger: logging.GetGlobalLogger().WithField("engine", "static"),
	}
}

// FetchHTML retrieves the page, trying a desktop header profile first and a
// mobile profile on a non-OK response.
func (e *Engine) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	html, desktopErr := e.fetch(ctx, pageURL, e.desktopHeaders())
	if desktopErr == nil {
		return html, nil
	}

	e.logger.Debug("Desktop fetch failed, retrying with mobile headers", map[string]interface{}{
		"url":   pageURL,
		"error": desktopErr.Error(),
	})

	html, mobileErr := e.fetch(ctx, pageURL, e.mobileHeaders())
	if mobileErr == nil {
		return html, nil
	}

	return "", fmt.Errorf("static fetch failed: desktop: %v, mobile: %w", desktopErr, mobileErr)
}

func (e *Engine) fetch(ctx context.Context, pageURL string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

func (e *Engine) desktopHeaders() map[string]string {
	ua := e.cfg.Scraper.UserAgent
	if ua == "" {
		ua = desktopUA
	}
	return map[string]string{
		"User-Agent":      ua,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"Sec-Fetch-Dest":  "document",
		"Sec-Fetch-Mode":  "navigate",
	}
}

func (e *Engine) mobileHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      mobileUA,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "static"
}

// Cleanup releases idle connections.
func (e *Engine) Cleanup() {
	e.client.CloseIdleConnections()
}
