package scraper

import (
	"context"
	"time"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/scraper/engines"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"
)

// stage is one resolution attempt in the pipeline. A nil record with a nil
// error means "pass, try the next stage".
type stage struct {
	name string
	run  func(ctx context.Context, ref adRef) (*models.NormalizedAd, error)
}

// Resolver turns an ad URL into a normalized record through an ordered
// pipeline: archive API lookup, HTML scrape, fallback synthesis. Once a URL
// passes validation, Resolve always succeeds.
type Resolver struct {
	cfg    *config.Config
	engine engines.Engine
	stages []stage
	cache  *utils.RedisClient
	logger logging.Logger
}

// NewResolver builds a resolver with the configured fetch engine. cache may
// be nil when the resolve cache is disabled.
func NewResolver(cfg *config.Config, cache *utils.RedisClient) (*Resolver, error) {
	engine, err := NewEngine(cfg, "")
	if err != nil {
		return nil, err
	}

	archive := newArchiveClient(cfg)
	page := newPageScraper(cfg, engine)

	r := &Resolver{
		cfg:    cfg,
		engine: engine,
		cache:  cache,
		logger: logging.GetGlobalLogger().WithField("component", "resolver"),
	}
	r.stages = []stage{
		{name: "archive_api", run: archive.tryResolve},
		{name: "html_scrape", run: page.tryResolve},
	}

	return r, nil
}

// Resolve validates the URL and runs the pipeline. ErrInvalidAdURL is the
// only error returned; upstream failures degrade stage by stage down to
// synthesis, which always yields a record with a non-empty AdID. The bool
// reports whether the record came from the resolve cache. opts may be nil.
func (r *Resolver) Resolve(ctx context.Context, adURL string, opts *models.ResolveOptions) (*models.NormalizedAd, bool, error) {
	if err := ValidateAdURL(adURL); err != nil {
		return nil, false, err
	}

	ref := newAdRef(adURL)

	if opts == nil || !opts.SkipCache {
		if cached := r.cache.GetResolvedAd(ctx, ref.AdID); cached != nil {
			r.logger.Debug("Resolve cache hit", map[string]interface{}{"ad_id": ref.AdID})
			return cached, true, nil
		}
	}

	for _, s := range r.stages {
		ad, err := s.run(ctx, ref)
		if err != nil {
			// Stage errors are absorbed; the next stage gets its chance
			r.logger.Warn("Resolution stage errored", map[string]interface{}{
				"stage": s.name,
				"url":   adURL,
				"error": err.Error(),
			})
			continue
		}
		if ad != nil {
			r.finalize(ctx, ad, ref)
			return ad, false, nil
		}
	}

	ad := synthesize(ref, time.Now())
	r.logger.Info("Falling back to synthesized record", map[string]interface{}{
		"ad_id": ad.AdID,
		"url":   adURL,
	})
	r.finalize(ctx, ad, ref)
	return ad, false, nil
}

// EngineName reports the configured fetch engine.
func (r *Resolver) EngineName() string {
	return r.engine.Name()
}

// Cleanup releases engine resources.
func (r *Resolver) Cleanup() {
	r.engine.Cleanup()
}

func (r *Resolver) finalize(ctx context.Context, ad *models.NormalizedAd, ref adRef) {
	if ad.AdID == "" {
		ad.AdID = scrapedAdID(ref.URL)
	}
	if ad.MediaItems == nil {
		ad.MediaItems = []models.MediaItem{}
	}
	r.cache.SetResolvedAd(ctx, ad)
}
