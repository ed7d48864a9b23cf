package workers

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
)

// hostLimiter tracks rate limiting state for one host
type hostLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	requests int64
}

// RateLimiter manages per-host request rate limiting
type RateLimiter struct {
	config        *config.Config
	hostLimiters  map[string]*hostLimiter
	mu            sync.Mutex
	logger        logging.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan bool
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	rl := &RateLimiter{
		config:        cfg,
		hostLimiters:  make(map[string]*hostLimiter),
		logger:        logging.GetGlobalLogger().WithField("component", "rate_limiter"),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan bool),
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow checks if a request to the given host is allowed
func (rl *RateLimiter) Allow(host string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	host = strings.ToLower(host)
	hl := rl.getHostLimiter(host)

	allowed := hl.limiter.Allow()
	if allowed {
		hl.requests++
		hl.lastSeen = time.Now()
	} else {
		rl.logger.Debug("Request rejected by rate limiter", map[string]interface{}{
			"host": host,
		})
	}

	return allowed
}

// getHostLimiter returns the limiter for a host, creating it on first use.
// Caller must hold rl.mu.
func (rl *RateLimiter) getHostLimiter(host string) *hostLimiter {
	if hl, ok := rl.hostLimiters[host]; ok {
		return hl
	}

	// RateLimit is requests/minute; burst allows short spikes
	perSecond := rate.Limit(float64(rl.config.Workers.RateLimit) / 60.0)
	hl := &hostLimiter{
		limiter:  rate.NewLimiter(perSecond, rl.config.Workers.RateLimit/6+1),
		lastSeen: time.Now(),
	}
	rl.hostLimiters[host] = hl
	return hl
}

// GetAllStats returns request counts per host
func (rl *RateLimiter) GetAllStats() map[string]map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := make(map[string]map[string]interface{}, len(rl.hostLimiters))
	for host, hl := range rl.hostLimiters {
		stats[host] = map[string]interface{}{
			"requests":  hl.requests,
			"last_seen": hl.lastSeen,
		}
	}
	return stats
}

// Stop stops the cleanup routine
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.stopCleanup)
}

// cleanupRoutine drops limiters idle for over an hour
func (rl *RateLimiter) cleanupRoutine() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			cutoff := time.Now().Add(-1 * time.Hour)
			rl.mu.Lock()
			for host, hl := range rl.hostLimiters {
				if hl.lastSeen.Before(cutoff) {
					delete(rl.hostLimiters, host)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// extractHost pulls the lowercase hostname from a URL for rate limiting
func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
