package engines

import "context"

// Engine fetches raw page HTML for the scrape stage. Implementations decide
// how the page is retrieved (plain HTTP, headless browser).
type Engine interface {
	// FetchHTML retrieves the page at the given URL and returns its HTML.
	FetchHTML(ctx context.Context, pageURL string) (string, error)

	// Name returns the engine identifier used in logs and responses.
	Name() string

	// Cleanup releases any resources held by the engine.
	Cleanup()
}
