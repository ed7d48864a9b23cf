// Package browser fetches pages with a headless Chromium instance via rod.
// It is the fallback for pages the static engine cannot retrieve (login
// interstitials, JS-rendered shells).
package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
)

// Engine is the rod-backed fetch engine. The browser process is launched
// lazily on first use and shared across fetches.
type Engine struct {
	cfg      *config.Config
	logger   logging.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// New creates a browser fetch engine without starting the browser.
func New(cfg *config.Config) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logging.GetGlobalLogger().WithField("engine", "browser"),
	}
}

// FetchHTML navigates a stealth page to the URL and returns the rendered
// HTML once the load event fires.
func (e *Engine) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	browser, err := e.getBrowser()
	if err != nil {
		return "", fmt.Errorf("browser unavailable: %w", err)
	}

	var page *rod.Page
	if e.cfg.Scraper.StealthMode {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(e.cfg.Scraper.RequestTimeout)

	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	// Dynamic ad cards render after the load event
	time.Sleep(2 * time.Second)

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}

	return html, nil
}

func (e *Engine) getBrowser() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	l := launcher.New().
		Headless(e.cfg.Scraper.HeadlessMode).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	if chromePath := systemChromePath(); chromePath != "" {
		l = l.Bin(chromePath)
		e.logger.Info("Using system Chrome browser", map[string]interface{}{
			"chrome_path": chromePath,
		})
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	e.launcher = l
	e.browser = browser
	return browser, nil
}

// systemChromePath finds an installed Chrome/Chromium so rod does not
// download its own.
func systemChromePath() string {
	candidates := []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "browser"
}

// Cleanup closes the browser process.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			e.logger.Warn("Failed to close browser", map[string]interface{}{
				"error": err.Error(),
			})
		}
		e.browser = nil
	}
	if e.launcher != nil {
		e.launcher.Cleanup()
		e.launcher = nil
	}
}
