// Package firecrawl fetches pages through the hosted Firecrawl API. It is an
// opt-in alternative to the local engines for deployments that cannot run a
// headless browser themselves.
package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/mendableai/firecrawl-go"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
)

// Engine is the Firecrawl-backed fetch engine.
type Engine struct {
	cfg    *config.Config
	app    *firecrawl.FirecrawlApp
	logger logging.Logger
}

// New creates a Firecrawl fetch engine. It fails when no API key is
// configured or the client cannot be initialized.
func New(cfg *config.Config) (*Engine, error) {
	app, err := firecrawl.NewFirecrawlApp(cfg.Firecrawl.APIKey, cfg.Firecrawl.APIURL)
	if err != nil {
		return nil, fmt.Errorf("initialize firecrawl client: %w", err)
	}

	return &Engine{
		cfg:    cfg,
		app:    app,
		logger: logging.GetGlobalLogger().WithField("engine", "firecrawl"),
	}, nil
}

// FetchHTML retrieves the page HTML through the Firecrawl API, retrying with
// linear backoff. Context cancellation is honored between attempts; the SDK
// manages its own request timeout.
func (e *Engine) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	params := &firecrawl.ScrapeParams{
		Formats: e.cfg.Firecrawl.Formats,
	}

	var doc *firecrawl.FirecrawlDocument
	var err error

	for attempt := 1; attempt <= e.cfg.Firecrawl.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		doc, err = e.app.ScrapeURL(pageURL, params)
		if err == nil {
			break
		}

		e.logger.Debug("Firecrawl scrape attempt failed", map[string]interface{}{
			"attempt": attempt,
			"url":     pageURL,
			"error":   err.Error(),
		})

		if attempt < e.cfg.Firecrawl.MaxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	if err != nil {
		return "", fmt.Errorf("firecrawl fetch failed after %d attempts: %w", e.cfg.Firecrawl.MaxRetries, err)
	}
	if doc == nil || doc.HTML == "" {
		return "", fmt.Errorf("no HTML in firecrawl response for %s", pageURL)
	}

	return doc.HTML, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "firecrawl"
}

// Cleanup releases engine resources. The Firecrawl client holds none.
func (e *Engine) Cleanup() {}
