package scraper

import (
	"context"
	"fmt"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/scraper/engines"
	"swipeboard-utils/internal/scraper/engines/browser"
	"swipeboard-utils/internal/scraper/engines/firecrawl"
	"swipeboard-utils/internal/scraper/engines/static"
	"swipeboard-utils/pkg/utils"
)

// NewEngine creates a fetch engine for the configured engine type. "auto"
// composes static and browser, preferring static.
func NewEngine(cfg *config.Config, engineType string) (engines.Engine, error) {
	if engineType == "" {
		engineType = cfg.Scraper.Engine
	}

	switch engineType {
	case "static", "":
		return static.New(cfg), nil
	case "browser":
		return browser.New(cfg), nil
	case "firecrawl":
		return firecrawl.New(cfg)
	case "auto":
		return &autoEngine{
			static:  static.New(cfg),
			browser: browser.New(cfg),
			logger:  logging.GetGlobalLogger().WithField("engine", "auto"),
		}, nil
	default:
		return nil, utils.NewValidationError(fmt.Sprintf("unsupported engine type: %s", engineType))
	}
}

// autoEngine tries the static engine first and falls back to the headless
// browser when the static fetch fails outright.
type autoEngine struct {
	static  engines.Engine
	browser engines.Engine
	logger  logging.Logger
}

func (e *autoEngine) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	html, err := e.static.FetchHTML(ctx, pageURL)
	if err == nil {
		return html, nil
	}

	e.logger.Info("Static fetch failed, escalating to browser engine", map[string]interface{}{
		"url":   pageURL,
		"error": err.Error(),
	})

	return e.browser.FetchHTML(ctx, pageURL)
}

func (e *autoEngine) Name() string {
	return "auto"
}

func (e *autoEngine) Cleanup() {
	e.static.Cleanup()
	e.browser.Cleanup()
}
